package dashboard

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControllerRenderTemplate(t *testing.T) {
	f := newServiceFixture()
	renderer := &stubRenderer{}
	controller := NewController(ControllerOptions{
		Service:  f.service,
		Renderer: renderer,
		BasePath: "/admin/",
	})

	session := controller.Open(context.Background())
	var buf bytes.Buffer
	require.NoError(t, controller.RenderTemplate(context.Background(), session, &buf))

	assert.Equal(t, "dashboard.html", renderer.lastTemplate)
	assert.NotZero(t, buf.Len())
	assert.Equal(t, "/admin/dashboard/s/"+session, renderer.lastPayload["session_path"])
	assert.Equal(t, session, renderer.lastPayload["session"])

	lookup, ok := renderer.lastPayload["customer_lookup"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "idle", lookup["state"])
	visualization, ok := renderer.lastPayload["cluster_visualization"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "success", visualization["state"])
}

func TestControllerUnknownSession(t *testing.T) {
	f := newServiceFixture()
	controller := NewController(ControllerOptions{Service: f.service, Renderer: &stubRenderer{}})

	var buf bytes.Buffer
	err := controller.RenderTemplate(context.Background(), "nope", &buf)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = controller.StatePayload(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestControllerRequiresRenderer(t *testing.T) {
	f := newServiceFixture()
	controller := NewController(ControllerOptions{Service: f.service})
	session := controller.Open(context.Background())
	assert.Error(t, controller.RenderTemplate(context.Background(), session, &bytes.Buffer{}))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, 200, HTTPStatus(nil))
	assert.Equal(t, 404, HTTPStatus(ErrSessionNotFound))
	assert.Equal(t, 422, HTTPStatus(NewValidationError("x")))
	assert.Equal(t, 200, HTTPStatus(NewNetworkError("x", nil)))
	assert.Equal(t, 500, HTTPStatus(errMissingRenderer))
}

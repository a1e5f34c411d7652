package gorouter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	router "github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-rfm-dashboard/components/dashboard"
	"github.com/goliatone/go-rfm-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-rfm-dashboard/components/dashboard/httpapi"
)

func TestRegisterValidatesConfig(t *testing.T) {
	err := Register(Config{})
	if err == nil {
		t.Fatalf("expected error when router/controller missing")
	}
}

func TestRegisterMountsRoutes(t *testing.T) {
	fx := newFixture()
	mock := newMockRouter()
	require.NoError(t, Register(Config{
		Router:     mock,
		Controller: fx.controller,
		API:        fx.api,
		Broadcast:  dashboard.NewBroadcastHook(),
	}))

	for _, key := range []string{
		"GET:/admin/dashboard",
		"GET:/admin/dashboard/s/:session",
		"GET:/admin/dashboard/s/:session/state",
		"POST:/admin/dashboard/s/:session/customer/lookup",
		"POST:/admin/dashboard/s/:session/customer/clear",
		"POST:/admin/dashboard/s/:session/clusters/calculate",
		"POST:/admin/dashboard/s/:session/clusters/visualize",
	} {
		_, ok := mock.routes[key]
		assert.True(t, ok, "missing route %s", key)
	}
	_, ok := mock.ws["/admin/dashboard/ws"]
	assert.True(t, ok)
}

func TestOpenPageRendersHTML(t *testing.T) {
	fx := newFixture()
	h := newHandlers(Config{Controller: fx.controller, API: fx.api})

	ctx := newMockContext()
	require.NoError(t, h.openPage(ctx))
	assert.Equal(t, "text/html; charset=utf-8", ctx.headers["Content-Type"])
	assert.Equal(t, "ok", string(ctx.body))
	assert.Equal(t, 1, fx.renderer.calls)
}

func TestRenderUnknownSessionIs404(t *testing.T) {
	fx := newFixture()
	h := newHandlers(Config{Controller: fx.controller, API: fx.api})

	ctx := newMockContext()
	ctx.params["session"] = "missing"
	require.NoError(t, h.renderPage(ctx))
	assert.Equal(t, http.StatusNotFound, ctx.status)
}

func TestLookupJSON(t *testing.T) {
	fx := newFixture()
	h := newHandlers(Config{Controller: fx.controller, API: fx.api})
	session := fx.controller.Open(context.Background())

	ctx := newMockContext()
	ctx.params["session"] = session
	ctx.body = []byte(`{"code":"6000007393575"}`)
	require.NoError(t, h.lookup(ctx))

	assert.Equal(t, http.StatusOK, ctx.status)
	var view map[string]any
	require.NoError(t, json.Unmarshal(ctx.body, &view))
	assert.Equal(t, "success", view["state"])
	customer := view["customer"].(map[string]any)
	assert.Equal(t, "Female", customer["gender_label"])
}

func TestLookupBlankCodeIs422(t *testing.T) {
	fx := newFixture()
	h := newHandlers(Config{Controller: fx.controller, API: fx.api})
	session := fx.controller.Open(context.Background())

	ctx := newMockContext()
	ctx.params["session"] = session
	ctx.body = []byte(`{"code":"  "}`)
	require.NoError(t, h.lookup(ctx))
	assert.Equal(t, http.StatusUnprocessableEntity, ctx.status)
}

func TestCalculateFormRedirects(t *testing.T) {
	fx := newFixture()
	h := newHandlers(Config{Controller: fx.controller, API: fx.api, BasePath: "/ops"})
	session := fx.controller.Open(context.Background())

	ctx := newMockContext()
	ctx.params["session"] = session
	ctx.body = []byte("cluster=1&year=2009&function=avg")
	require.NoError(t, h.calculate(ctx))

	assert.Equal(t, http.StatusSeeOther, ctx.status)
	assert.Equal(t, "/ops/dashboard/s/"+session, ctx.headers["Location"])
	state, err := fx.controller.StatePayload(context.Background(), session)
	require.NoError(t, err)
	assert.Len(t, state.Parameters.Results, 1)
}

func TestVisualizeFormKeepsUnsetFields(t *testing.T) {
	fx := newFixture()
	h := newHandlers(Config{Controller: fx.controller, API: fx.api})
	session := fx.controller.Open(context.Background())

	ctx := newMockContext()
	ctx.params["session"] = session
	ctx.body = []byte("chart_type=bar")
	require.NoError(t, h.visualize(ctx))

	state, err := fx.controller.StatePayload(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, dashboard.ChartBar, state.Visualization.ChartType)
	assert.Equal(t, dashboard.DefaultMetric, state.Visualization.Selection.Metric)
	assert.Equal(t, 1, fx.metrics.calls)
}

func TestStateJSON(t *testing.T) {
	fx := newFixture()
	h := newHandlers(Config{Controller: fx.controller, API: fx.api})
	session := fx.controller.Open(context.Background())

	ctx := newMockContext()
	ctx.params["session"] = session
	require.NoError(t, h.state(ctx))
	assert.Equal(t, http.StatusOK, ctx.status)
	assert.Contains(t, string(ctx.body), `"cluster_visualization"`)
}

func TestDecodeBody(t *testing.T) {
	form, err := decodeBody([]byte(" "), nil)
	require.NoError(t, err)
	assert.Nil(t, form)

	var payload dashboard.LookupRequest
	form, err = decodeBody([]byte(`{"code":"7"}`), &payload)
	require.NoError(t, err)
	assert.Nil(t, form)
	assert.Equal(t, "7", payload.Code)

	form, err = decodeBody([]byte("code=8"), &payload)
	require.NoError(t, err)
	assert.Equal(t, "8", form.Get("code"))
	assert.Nil(t, formValue(form, "metric"))
}

// --- Test helpers ---

type fixture struct {
	controller *dashboard.Controller
	api        *httpapi.Handlers
	renderer   *stubRenderer
	metrics    *stubMetrics
}

func newFixture() fixture {
	renderer := &stubRenderer{}
	metrics := &stubMetrics{}
	service := dashboard.NewService(dashboard.Options{
		Page: dashboard.PageOptions{
			Customers:    stubCustomers{},
			Calculations: stubCalculations{},
			Metrics:      metrics,
			Renderer:     stubChart{},
		},
		SessionTTL: time.Minute,
	})
	controller := dashboard.NewController(dashboard.ControllerOptions{
		Service:  service,
		Renderer: renderer,
	})
	api := &httpapi.Handlers{
		Lookup:    commands.NewLookupCustomerCommand(service, nil),
		Clear:     commands.NewClearLookupCommand(service, nil),
		Calculate: commands.NewCalculateClustersCommand(service, nil),
		Visualize: commands.NewVisualizeClustersCommand(service, nil),
		State:     service,
	}
	return fixture{controller: controller, api: api, renderer: renderer, metrics: metrics}
}

type stubCustomers struct{}

func (stubCustomers) FetchCustomer(context.Context, string) (dashboard.CustomerRecord, error) {
	return dashboard.CustomerRecord{
		Code:         "6000007393575",
		Gender:       dashboard.GenderFemale,
		Age:          34,
		Transactions: []dashboard.TransactionSummary{{LastPurchaseDate: "2010-12-01", Monetary: 1234.5}},
	}, nil
}

type stubCalculations struct{}

func (stubCalculations) CalculateClusters(context.Context, dashboard.CalculationQuery) (dashboard.ClusterMetrics, error) {
	return dashboard.ClusterMetrics{"1": {"Monetary": 500.125}}, nil
}

type stubMetrics struct {
	calls int
}

func (s *stubMetrics) FetchClusterMetrics(context.Context, dashboard.ClusterQuery) (dashboard.ClusterMetrics, error) {
	s.calls++
	return dashboard.ClusterMetrics{"0": {"Monetary": 1.0}, "1": {"Monetary": 2.0}}, nil
}

type stubChart struct{}

func (stubChart) Render(_ context.Context, chartType dashboard.ChartType, _ string, _ dashboard.ChartSeries) (string, error) {
	return "<div>" + string(chartType) + "</div>", nil
}

type stubRenderer struct {
	calls int
}

func (s *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	s.calls++
	if len(out) > 0 && out[0] != nil {
		out[0].Write([]byte("ok"))
	}
	return "ok", nil
}

type mockRouter struct {
	routes map[string]router.HandlerFunc
	ws     map[string]func(router.WebSocketContext) error
}

func newMockRouter() *mockRouter {
	return &mockRouter{
		routes: map[string]router.HandlerFunc{},
		ws:     map[string]func(router.WebSocketContext) error{},
	}
}

func (m *mockRouter) Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.routes["GET:"+path] = handler
	return nil
}

func (m *mockRouter) Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.routes["POST:"+path] = handler
	return nil
}

func (m *mockRouter) WebSocket(path string, cfg router.WebSocketConfig, handler func(router.WebSocketContext) error) router.RouteInfo {
	m.ws[path] = handler
	return nil
}

type mockContext struct {
	ctx     context.Context
	headers map[string]string
	body    []byte
	params  map[string]string
	status  int
}

func newMockContext() *mockContext {
	return &mockContext{
		ctx:     context.Background(),
		headers: map[string]string{},
		params:  map[string]string{},
	}
}

func (m *mockContext) Context() context.Context {
	return m.ctx
}

func (m *mockContext) SetHeader(k, v string) router.Context {
	m.headers[k] = v
	return nil
}

func (m *mockContext) Send(b []byte) error {
	m.body = append([]byte{}, b...)
	return nil
}

func (m *mockContext) JSON(code int, v any) error {
	m.status = code
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.body = data
	return nil
}

func (m *mockContext) Body() []byte { return m.body }

func (m *mockContext) Param(name string, defaultValue ...string) string {
	if v, ok := m.params[name]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

const defaultTemplate = "dashboard.html"

var errMissingRenderer = errors.New("dashboard: template renderer not configured")

// ControllerOptions wires a Controller.
type ControllerOptions struct {
	Service  *Service
	Renderer Renderer
	Template string
	// BasePath prefixes the form actions and socket URL in the page.
	BasePath string
}

// Controller turns session state into HTML pages and JSON payloads.
type Controller struct {
	service  *Service
	renderer Renderer
	template string
	basePath string
}

// NewController wires the service into a controller.
func NewController(opts ControllerOptions) *Controller {
	tpl := opts.Template
	if tpl == "" {
		tpl = defaultTemplate
	}
	return &Controller{
		service:  opts.Service,
		renderer: opts.Renderer,
		template: tpl,
		basePath: strings.TrimRight(opts.BasePath, "/"),
	}
}

// Service returns the underlying service.
func (c *Controller) Service() *Service {
	return c.service
}

// Open starts a new page session and returns its id.
func (c *Controller) Open(ctx context.Context) string {
	return c.service.OpenPage(ctx).ID
}

// StatePayload returns the JSON state of every panel in a session.
func (c *Controller) StatePayload(ctx context.Context, session string) (PageView, error) {
	return c.service.State(ctx, session)
}

// RenderTemplate renders the dashboard page of a session into out.
func (c *Controller) RenderTemplate(ctx context.Context, session string, out io.Writer) error {
	if c.renderer == nil {
		return errMissingRenderer
	}
	view, err := c.service.State(ctx, session)
	if err != nil {
		return err
	}
	payload, err := c.templatePayload(view)
	if err != nil {
		return err
	}
	if _, err := c.renderer.Render(c.template, payload, out); err != nil {
		return fmt.Errorf("dashboard: render %s: %w", c.template, err)
	}
	return nil
}

// templatePayload exposes the views under their JSON names.
func (c *Controller) templatePayload(view PageView) (map[string]any, error) {
	data, err := json.Marshal(view)
	if err != nil {
		return nil, fmt.Errorf("dashboard: encode page view: %w", err)
	}
	payload := map[string]any{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("dashboard: decode page view: %w", err)
	}
	base := c.basePath + "/dashboard/s/" + view.Session
	payload["base_path"] = c.basePath
	payload["session_path"] = base
	payload["ws_path"] = c.basePath + "/dashboard/ws?session=" + view.Session
	payload["placeholder"] = CustomerCodeHint
	return payload, nil
}

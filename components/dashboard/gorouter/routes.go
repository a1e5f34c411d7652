package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-rfm-dashboard/components/dashboard"
	"github.com/goliatone/go-rfm-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-rfm-dashboard/components/dashboard/httpapi"
)

// Routes is the subset of router.Router used to mount the dashboard.
type Routes interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	WebSocket(path string, cfg router.WebSocketConfig, handler func(router.WebSocketContext) error) router.RouteInfo
}

// Config wires go-router with the dashboard controller, commands, and hooks.
type Config struct {
	Router     Routes
	Controller *dashboard.Controller
	// API supplies the commands behind the POST routes.
	API       *httpapi.Handlers
	Broadcast *dashboard.BroadcastHook
	BasePath  string
	Routes    RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML      string
	Session   string
	State     string
	Lookup    string
	Clear     string
	Calculate string
	Visualize string
	WebSocket string
}

// requestContext is the part of router.Context the handlers touch.
type requestContext interface {
	Context() context.Context
	Body() []byte
	Param(name string, defaultValue ...string) string
	SetHeader(key, value string) router.Context
	Send(body []byte) error
	JSON(code int, v any) error
}

// Register mounts dashboard routes (HTML, JSON, WebSocket) on a go-router router.
func Register(cfg Config) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	h := newHandlers(cfg)
	routes := h.routes
	base := h.base

	cfg.Router.Get(base+routes.HTML, wrap(h.openPage))
	cfg.Router.Get(base+routes.Session, wrap(h.renderPage))
	cfg.Router.Get(base+routes.State, wrap(h.state))

	if cfg.API != nil {
		cfg.Router.Post(base+routes.Lookup, wrap(h.lookup))
		cfg.Router.Post(base+routes.Clear, wrap(h.clear))
		cfg.Router.Post(base+routes.Calculate, wrap(h.calculate))
		cfg.Router.Post(base+routes.Visualize, wrap(h.visualize))
	}

	if cfg.Broadcast != nil {
		registerWebSocket(cfg.Router, cfg.Broadcast, base+routes.WebSocket)
	}
	return nil
}

func wrap(handler func(requestContext) error) router.HandlerFunc {
	return router.WrapHandler(func(ctx router.Context) error {
		return handler(ctx)
	})
}

type handlers struct {
	controller *dashboard.Controller
	api        *httpapi.Handlers
	routes     RouteConfig
	base       string
}

func newHandlers(cfg Config) *handlers {
	base := strings.TrimRight(cfg.BasePath, "/")
	if cfg.BasePath == "" {
		base = "/admin"
	}
	return &handlers{
		controller: cfg.Controller,
		api:        cfg.API,
		routes:     defaultRouteConfig(cfg.Routes),
		base:       base,
	}
}

func (h *handlers) openPage(ctx requestContext) error {
	session := h.controller.Open(ctx.Context())
	return h.render(ctx, session)
}

func (h *handlers) renderPage(ctx requestContext) error {
	return h.render(ctx, ctx.Param("session"))
}

func (h *handlers) render(ctx requestContext, session string) error {
	var buf bytes.Buffer
	if err := h.controller.RenderTemplate(ctx.Context(), session, &buf); err != nil {
		return respondError(ctx, dashboard.HTTPStatus(err), err)
	}
	ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
	return ctx.Send(buf.Bytes())
}

func (h *handlers) state(ctx requestContext) error {
	view, err := h.controller.StatePayload(ctx.Context(), ctx.Param("session"))
	if err != nil {
		return respondError(ctx, dashboard.HTTPStatus(err), err)
	}
	return ctx.JSON(http.StatusOK, view)
}

func (h *handlers) lookup(ctx requestContext) error {
	var payload dashboard.LookupRequest
	form, err := decodeBody(ctx.Body(), &payload)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, err)
	}
	if form != nil {
		payload.Code = form.Get("code")
	}
	payload.Session = ctx.Param("session")
	err = h.api.Lookup.Execute(ctx.Context(), payload)
	return h.respond(ctx, form != nil, payload.Session, err, func(v dashboard.PageView) any { return v.Lookup })
}

func (h *handlers) clear(ctx requestContext) error {
	session := ctx.Param("session")
	form, _ := decodeBody(ctx.Body(), nil)
	err := h.api.Clear.Execute(ctx.Context(), commands.ClearLookupInput{Session: session})
	return h.respond(ctx, form != nil, session, err, func(v dashboard.PageView) any { return v.Lookup })
}

func (h *handlers) calculate(ctx requestContext) error {
	var payload dashboard.CalculateRequest
	form, err := decodeBody(ctx.Body(), &payload)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, err)
	}
	if form != nil {
		payload.Cluster = form.Get("cluster")
		payload.Year = form.Get("year")
		payload.Function = form.Get("function")
	}
	payload.Session = ctx.Param("session")
	err = h.api.Calculate.Execute(ctx.Context(), payload)
	return h.respond(ctx, form != nil, payload.Session, err, func(v dashboard.PageView) any { return v.Parameters })
}

func (h *handlers) visualize(ctx requestContext) error {
	var payload dashboard.VisualizeRequest
	form, err := decodeBody(ctx.Body(), &payload)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, err)
	}
	if form != nil {
		payload.Metric = formValue(form, "metric")
		payload.Aggregation = formValue(form, "aggregation")
		payload.ChartType = formValue(form, "chart_type")
	}
	payload.Session = ctx.Param("session")
	err = h.api.Visualize.Execute(ctx.Context(), payload)
	return h.respond(ctx, form != nil, payload.Session, err, func(v dashboard.PageView) any { return v.Visualization })
}

// respond redirects form posts back to the page and answers JSON posts
// with the affected panel view.
func (h *handlers) respond(ctx requestContext, form bool, session string, err error, pick func(dashboard.PageView) any) error {
	status := dashboard.HTTPStatus(err)
	if status == http.StatusNotFound || status == http.StatusInternalServerError {
		return respondError(ctx, status, err)
	}
	if form {
		ctx.SetHeader("Location", h.base+strings.Replace(h.routes.Session, ":session", url.PathEscape(session), 1))
		return ctx.JSON(http.StatusSeeOther, map[string]string{"session": session})
	}
	view, stateErr := h.controller.StatePayload(ctx.Context(), session)
	if stateErr != nil {
		return respondError(ctx, dashboard.HTTPStatus(stateErr), stateErr)
	}
	return ctx.JSON(status, pick(view))
}

// decodeBody reads JSON into payload, or returns form values for
// url-encoded bodies. An empty body decodes to nothing.
func decodeBody(body []byte, payload any) (url.Values, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '{' {
		if payload == nil {
			return nil, nil
		}
		return nil, json.Unmarshal(trimmed, payload)
	}
	return url.ParseQuery(string(trimmed))
}

func formValue(form url.Values, key string) *string {
	if !form.Has(key) {
		return nil
	}
	v := form.Get(key)
	return &v
}

func registerWebSocket(r Routes, hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe("")
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func respondError(ctx requestContext, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/dashboard"
	}
	if routes.Session == "" {
		routes.Session = "/dashboard/s/:session"
	}
	if routes.State == "" {
		routes.State = "/dashboard/s/:session/state"
	}
	if routes.Lookup == "" {
		routes.Lookup = "/dashboard/s/:session/customer/lookup"
	}
	if routes.Clear == "" {
		routes.Clear = "/dashboard/s/:session/customer/clear"
	}
	if routes.Calculate == "" {
		routes.Calculate = "/dashboard/s/:session/clusters/calculate"
	}
	if routes.Visualize == "" {
		routes.Visualize = "/dashboard/s/:session/clusters/visualize"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/dashboard/ws"
	}
	return routes
}

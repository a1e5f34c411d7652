package dashboard

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("dashboard: session not found")

// Options configures the dashboard Service.
type Options struct {
	Page       PageOptions
	SessionTTL time.Duration
	Telemetry  Telemetry
	// Sessions overrides the store built from Page and SessionTTL.
	Sessions *SessionStore
}

// Service runs panel operations against the page of a session.
type Service struct {
	sessions  *SessionStore
	telemetry Telemetry
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.Page.Telemetry == nil {
		opts.Page.Telemetry = opts.Telemetry
	}
	if opts.Sessions == nil {
		opts.Sessions = NewSessionStore(opts.Page, opts.SessionTTL)
	}
	return &Service{sessions: opts.Sessions, telemetry: opts.Telemetry}
}

// Sessions exposes the underlying store.
func (s *Service) Sessions() *SessionStore {
	return s.sessions
}

// OpenPage creates a page and runs its initial fetch. A failed initial
// fetch is reported on the page itself, not returned.
func (s *Service) OpenPage(ctx context.Context) *Page {
	page := s.sessions.Open(ctx)
	_ = page.Mount(ctx)
	return page
}

// Page resolves a session id.
func (s *Service) Page(session string) (*Page, error) {
	page, ok := s.sessions.Get(strings.TrimSpace(session))
	if !ok {
		return nil, ErrSessionNotFound
	}
	return page, nil
}

// State renders every panel of a session.
func (s *Service) State(ctx context.Context, session string) (PageView, error) {
	page, err := s.Page(session)
	if err != nil {
		return PageView{}, err
	}
	return page.View(ctx), nil
}

// LookupRequest asks the lookup panel for a customer.
type LookupRequest struct {
	Session string `json:"session"`
	Code    string `json:"code"`
}

// LookupCustomer runs a lookup on the session's page.
func (s *Service) LookupCustomer(ctx context.Context, req LookupRequest) (CustomerLookupView, error) {
	page, err := s.Page(req.Session)
	if err != nil {
		return CustomerLookupView{}, err
	}
	return page.Lookup.SubmitLookup(ctx, req.Code)
}

// ClearLookup resets the lookup panel.
func (s *Service) ClearLookup(ctx context.Context, session string) (CustomerLookupView, error) {
	page, err := s.Page(session)
	if err != nil {
		return CustomerLookupView{}, err
	}
	return page.Lookup.Clear(ctx), nil
}

// CalculateRequest carries the parameter panel form.
type CalculateRequest struct {
	Session string `json:"session"`
	ParameterSelection
}

// CalculateClusters applies the form and fetches aggregated metrics.
func (s *Service) CalculateClusters(ctx context.Context, req CalculateRequest) (ClusterParameterView, error) {
	page, err := s.Page(req.Session)
	if err != nil {
		return ClusterParameterView{}, err
	}
	page.Parameters.Apply(req.ParameterSelection)
	return page.Parameters.Calculate(ctx)
}

// VisualizeRequest changes the visualization selection. Nil fields keep
// their current value.
type VisualizeRequest struct {
	Session     string  `json:"session"`
	Metric      *string `json:"metric,omitempty"`
	Aggregation *string `json:"aggregation,omitempty"`
	ChartType   *string `json:"chart_type,omitempty"`
}

// VisualizeClusters updates the visualization panel, refetching only when
// the metric or aggregation changed.
func (s *Service) VisualizeClusters(ctx context.Context, req VisualizeRequest) (ClusterVisualizationView, error) {
	page, err := s.Page(req.Session)
	if err != nil {
		return ClusterVisualizationView{}, err
	}
	panel := page.Visualization
	if req.ChartType != nil {
		chartType, err := ParseChartType(*req.ChartType)
		if err != nil {
			return panel.View(ctx), err
		}
		panel.SetChartType(chartType)
	}
	sel := panel.Selection()
	if req.Metric != nil {
		sel.Metric = *req.Metric
	}
	if req.Aggregation != nil {
		sel.Aggregation = *req.Aggregation
	}
	err = panel.Select(ctx, sel)
	return panel.View(ctx), err
}

// CloseSession unmounts the session's page.
func (s *Service) CloseSession(ctx context.Context, session string) error {
	if !s.sessions.Close(ctx, strings.TrimSpace(session)) {
		return ErrSessionNotFound
	}
	return nil
}

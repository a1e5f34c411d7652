package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-rfm-dashboard/components/dashboard"
)

// PageStateInput identifies the page session to render.
type PageStateInput struct {
	Session string `json:"session"`
}

type stateService interface {
	State(ctx context.Context, session string) (dashboard.PageView, error)
}

// PageStateQuery renders every panel of a session without touching its state.
type PageStateQuery struct {
	service stateService
}

// NewPageStateQuery builds the query.
func NewPageStateQuery(service stateService) *PageStateQuery {
	return &PageStateQuery{service: service}
}

var _ gocommand.Querier[PageStateInput, dashboard.PageView] = (*PageStateQuery)(nil)

// Query resolves the page view for the session.
func (q *PageStateQuery) Query(ctx context.Context, input PageStateInput) (dashboard.PageView, error) {
	if input.Session == "" {
		return dashboard.PageView{}, dashboard.ErrSessionNotFound
	}
	return q.service.State(ctx, input.Session)
}

// State lets the query stand in wherever a session state reader is expected.
func (q *PageStateQuery) State(ctx context.Context, session string) (dashboard.PageView, error) {
	return q.Query(ctx, PageStateInput{Session: session})
}

package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
)

// HealthInput carries no parameters.
type HealthInput struct{}

// Health is the liveness payload served by the ops listener.
type Health struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

type sessionCounter interface {
	Len() int
}

// HealthQuery reports the number of open page sessions.
type HealthQuery struct {
	sessions sessionCounter
}

// NewHealthQuery builds the query.
func NewHealthQuery(sessions sessionCounter) *HealthQuery {
	return &HealthQuery{sessions: sessions}
}

var _ gocommand.Querier[HealthInput, Health] = (*HealthQuery)(nil)

// Query returns the current health snapshot.
func (q *HealthQuery) Query(context.Context, HealthInput) (Health, error) {
	return Health{Status: "ok", Sessions: q.sessions.Len()}, nil
}

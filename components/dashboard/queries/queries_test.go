package queries

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-rfm-dashboard/components/dashboard"
)

type stubStateService struct {
	calls   int
	session string
}

func (s *stubStateService) State(_ context.Context, session string) (dashboard.PageView, error) {
	s.calls++
	s.session = session
	return dashboard.PageView{Session: session}, nil
}

type stubCounter int

func (c stubCounter) Len() int { return int(c) }

func TestPageStateQuery(t *testing.T) {
	service := &stubStateService{}
	query := NewPageStateQuery(service)
	view, err := query.Query(context.Background(), PageStateInput{Session: "abc"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if service.calls != 1 || service.session != "abc" {
		t.Fatalf("expected 1 call for abc, got %d for %q", service.calls, service.session)
	}
	if view.Session != "abc" {
		t.Fatalf("unexpected session %q", view.Session)
	}
}

func TestPageStateQueryRequiresSession(t *testing.T) {
	service := &stubStateService{}
	_, err := NewPageStateQuery(service).State(context.Background(), "")
	if !errors.Is(err, dashboard.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if service.calls != 0 {
		t.Fatalf("expected no service call, got %d", service.calls)
	}
}

func TestHealthQuery(t *testing.T) {
	health, err := NewHealthQuery(stubCounter(2)).Query(context.Background(), HealthInput{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if health.Status != "ok" || health.Sessions != 2 {
		t.Fatalf("unexpected health %+v", health)
	}
}

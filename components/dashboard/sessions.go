package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long an untouched page is kept.
const DefaultSessionTTL = 30 * time.Minute

// SessionStore keeps the open pages in memory, keyed by session id.
type SessionStore struct {
	opts      PageOptions
	ttl       time.Duration
	now       func() time.Time
	newID     func() string
	telemetry Telemetry

	mu    sync.RWMutex
	pages map[string]*sessionEntry
}

type sessionEntry struct {
	page     *Page
	lastSeen time.Time
}

// SessionOption customizes a SessionStore.
type SessionOption func(*SessionStore)

// WithSessionClock overrides the clock used for expiry.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *SessionStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSessionIDs overrides session id generation.
func WithSessionIDs(next func() string) SessionOption {
	return func(s *SessionStore) {
		if next != nil {
			s.newID = next
		}
	}
}

// NewSessionStore builds a store creating pages from opts. A non-positive
// ttl uses DefaultSessionTTL.
func NewSessionStore(opts PageOptions, ttl time.Duration, options ...SessionOption) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	s := &SessionStore{
		opts:      opts,
		ttl:       ttl,
		now:       time.Now,
		newID:     uuid.NewString,
		telemetry: normalizeTelemetry(opts.Telemetry),
		pages:     make(map[string]*sessionEntry),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Open creates a new page under a fresh session id.
func (s *SessionStore) Open(ctx context.Context) *Page {
	id := s.newID()
	page := NewPage(id, s.opts)
	s.mu.Lock()
	s.pages[id] = &sessionEntry{page: page, lastSeen: s.now()}
	count := len(s.pages)
	s.mu.Unlock()
	s.telemetry.Record(ctx, EventSessionOpen, map[string]any{
		"session": id,
		"open":    count,
	})
	return page
}

// Get returns the page for id and marks it as used.
func (s *SessionStore) Get(id string) (*Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.pages[id]
	if !ok {
		return nil, false
	}
	entry.lastSeen = s.now()
	return entry.page, true
}

// Close unmounts and forgets the page for id.
func (s *SessionStore) Close(ctx context.Context, id string) bool {
	s.mu.Lock()
	entry, ok := s.pages[id]
	if ok {
		delete(s.pages, id)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	entry.page.Close()
	s.telemetry.Record(ctx, EventSessionClose, map[string]any{
		"session": id,
		"reason":  "closed",
	})
	return true
}

// Sweep closes pages idle for longer than the ttl and returns how many.
func (s *SessionStore) Sweep(ctx context.Context) int {
	cutoff := s.now().Add(-s.ttl)
	s.mu.Lock()
	var expired []*sessionEntry
	for id, entry := range s.pages {
		if entry.lastSeen.Before(cutoff) {
			expired = append(expired, entry)
			delete(s.pages, id)
		}
	}
	s.mu.Unlock()
	for _, entry := range expired {
		entry.page.Close()
		s.telemetry.Record(ctx, EventSessionClose, map[string]any{
			"session": entry.page.ID,
			"reason":  "expired",
		})
	}
	return len(expired)
}

// Len returns the number of open pages.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pages)
}

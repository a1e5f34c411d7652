package dashboard

import (
	"context"
	"sync"
	"time"
)

// FetchState is the lifecycle state of a panel request.
type FetchState int

const (
	StateIdle FetchState = iota
	StateLoading
	StateSuccess
	StateError
)

func (s FetchState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// MarshalText renders the state name in JSON payloads.
func (s FetchState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is a consistent read of a Remote.
type Snapshot[T any] struct {
	State      FetchState
	Data       T
	Err        error
	Generation uint64
	UpdatedAt  time.Time
}

// Busy reports whether a request is in flight.
func (s Snapshot[T]) Busy() bool { return s.State == StateLoading }

// FetchFunc performs the remote call for a Remote.
type FetchFunc[T any] func(ctx context.Context) (T, error)

type remoteConfig struct {
	panel     string
	session   string
	telemetry Telemetry
	hook      RefreshHook
	now       func() time.Time
}

// RemoteOption customizes a Remote.
type RemoteOption func(*remoteConfig)

// WithRemoteTelemetry records fetch outcomes.
func WithRemoteTelemetry(t Telemetry) RemoteOption {
	return func(c *remoteConfig) {
		c.telemetry = t
	}
}

// WithRemoteHook publishes state transitions.
func WithRemoteHook(hook RefreshHook) RemoteOption {
	return func(c *remoteConfig) {
		c.hook = hook
	}
}

// WithRemoteSession tags events with the owning page session.
func WithRemoteSession(session string) RemoteOption {
	return func(c *remoteConfig) {
		c.session = session
	}
}

// WithRemoteClock overrides the clock used for timestamps and durations.
func WithRemoteClock(now func() time.Time) RemoteOption {
	return func(c *remoteConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// Remote owns the request lifecycle of one panel. Each request gets a
// generation; only the latest issued generation may settle the state, and
// issuing a new one cancels the previous request's context.
type Remote[T any] struct {
	cfg remoteConfig

	mu        sync.Mutex
	state     FetchState
	data      T
	err       error
	issued    uint64
	cancel    context.CancelFunc
	closed    bool
	updatedAt time.Time
}

// NewRemote builds an idle Remote for the named panel.
func NewRemote[T any](panel string, opts ...RemoteOption) *Remote[T] {
	cfg := remoteConfig{
		panel: panel,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.telemetry = normalizeTelemetry(cfg.telemetry)
	if cfg.hook == nil {
		cfg.hook = noopRefreshHook{}
	}
	return &Remote[T]{cfg: cfg}
}

// Snapshot returns the current state.
func (r *Remote[T]) Snapshot() Snapshot[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Remote[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		State:      r.state,
		Data:       r.data,
		Err:        r.err,
		Generation: r.issued,
		UpdatedAt:  r.updatedAt,
	}
}

// Do runs fn as the newest request and blocks until it settles. The bool
// reports whether the result was applied; false means a newer request (or
// Close) superseded it.
func (r *Remote[T]) Do(ctx context.Context, fn FetchFunc[T]) (Snapshot[T], bool) {
	gen, fetchCtx, ok := r.begin(ctx)
	if !ok {
		return r.Snapshot(), false
	}
	start := r.cfg.now()
	data, err := fn(fetchCtx)
	applied := r.settle(ctx, gen, data, err, start)
	return r.Snapshot(), applied
}

// Go starts fn as the newest request without waiting and returns its generation.
// Zero means the Remote is closed.
func (r *Remote[T]) Go(ctx context.Context, fn FetchFunc[T]) uint64 {
	gen, fetchCtx, ok := r.begin(ctx)
	if !ok {
		return 0
	}
	start := r.cfg.now()
	go func() {
		data, err := fn(fetchCtx)
		r.settle(context.WithoutCancel(ctx), gen, data, err, start)
	}()
	return gen
}

// Fail moves to the error state without issuing a request.
func (r *Remote[T]) Fail(ctx context.Context, err error) Snapshot[T] {
	r.mu.Lock()
	r.supersedeLocked()
	var zero T
	r.state = StateError
	r.data = zero
	r.err = err
	r.updatedAt = r.cfg.now()
	snap := r.snapshotLocked()
	r.mu.Unlock()
	r.publish(ctx, snap)
	return snap
}

// Reset returns to idle, abandoning any request in flight.
func (r *Remote[T]) Reset(ctx context.Context) Snapshot[T] {
	r.mu.Lock()
	r.supersedeLocked()
	var zero T
	r.state = StateIdle
	r.data = zero
	r.err = nil
	r.updatedAt = r.cfg.now()
	snap := r.snapshotLocked()
	r.mu.Unlock()
	r.publish(ctx, snap)
	return snap
}

// Close cancels the in-flight request; results arriving later are dropped.
func (r *Remote[T]) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *Remote[T]) begin(ctx context.Context) (uint64, context.Context, bool) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return 0, nil, false
	}
	r.supersedeLocked()
	fetchCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	var zero T
	r.state = StateLoading
	r.data = zero
	r.err = nil
	r.updatedAt = r.cfg.now()
	gen := r.issued
	snap := r.snapshotLocked()
	r.mu.Unlock()
	r.publish(ctx, snap)
	return gen, fetchCtx, true
}

// supersedeLocked invalidates the current generation.
func (r *Remote[T]) supersedeLocked() {
	r.issued++
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *Remote[T]) settle(ctx context.Context, gen uint64, data T, err error, start time.Time) bool {
	r.mu.Lock()
	duration := r.cfg.now().Sub(start)
	if r.closed || gen != r.issued {
		r.mu.Unlock()
		r.record(ctx, gen, "stale", duration, err)
		return false
	}
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	if err != nil {
		var zero T
		r.state = StateError
		r.data = zero
		r.err = err
	} else {
		r.state = StateSuccess
		r.data = data
		r.err = nil
	}
	r.updatedAt = r.cfg.now()
	snap := r.snapshotLocked()
	r.mu.Unlock()

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	r.record(ctx, gen, outcome, duration, err)
	r.publish(ctx, snap)
	return true
}

func (r *Remote[T]) record(ctx context.Context, gen uint64, outcome string, duration time.Duration, err error) {
	payload := map[string]any{
		"panel":       r.cfg.panel,
		"session":     r.cfg.session,
		"generation":  gen,
		"outcome":     outcome,
		"duration_ms": float64(duration) / float64(time.Millisecond),
	}
	if err != nil {
		payload["error"] = err.Error()
		payload["error_kind"] = string(KindOf(err))
	}
	r.cfg.telemetry.Record(ctx, EventPanelFetch, payload)
}

func (r *Remote[T]) publish(ctx context.Context, snap Snapshot[T]) {
	event := PanelEvent{
		Session:    r.cfg.session,
		Panel:      r.cfg.panel,
		State:      snap.State,
		Generation: snap.Generation,
	}
	if snap.Err != nil {
		event.Error = UserMessage(snap.Err)
		event.ErrorKind = KindOf(snap.Err)
	}
	if err := r.cfg.hook.PanelUpdated(ctx, event); err != nil {
		r.cfg.telemetry.Record(ctx, EventHookError, map[string]any{
			"panel": r.cfg.panel,
			"error": err.Error(),
		})
	}
}

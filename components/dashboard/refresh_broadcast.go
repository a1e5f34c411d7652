package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// PanelEvent describes a panel state transition that transports might care about.
type PanelEvent struct {
	Session    string     `json:"session"`
	Panel      string     `json:"panel"`
	State      FetchState `json:"state"`
	Generation uint64     `json:"generation"`
	Error      string     `json:"error,omitempty"`
	ErrorKind  ErrorKind  `json:"error_kind,omitempty"`
}

// RefreshHook notifies transports (WebSocket/SSE) about panel changes.
type RefreshHook interface {
	PanelUpdated(ctx context.Context, event PanelEvent) error
}

type noopRefreshHook struct{}

func (noopRefreshHook) PanelUpdated(context.Context, PanelEvent) error {
	return nil
}

// BroadcastHook fans out panel events to in-process subscribers.
type BroadcastHook struct {
	mu   sync.RWMutex
	subs map[int]subscription
	next int
}

type subscription struct {
	session string
	ch      chan PanelEvent
}

// NewBroadcastHook creates a broadcast hook.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{
		subs: make(map[int]subscription),
	}
}

// PanelUpdated satisfies RefreshHook. Slow subscribers miss events instead of
// blocking panels.
func (h *BroadcastHook) PanelUpdated(ctx context.Context, event PanelEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if sub.session != "" && sub.session != event.Session {
			continue
		}
		select {
		case sub.ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of panel events and a cancel func. An empty
// session receives events from every page.
func (h *BroadcastHook) Subscribe(session string) (<-chan PanelEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan PanelEvent, 8)
	h.subs[id] = subscription{session: session, ch: ch}
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub.ch)
		}
	}
	return ch, cancel
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams panel events as JSON.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer conn.Close()

	events, cancel := h.Subscribe(r.URL.Query().Get("session"))
	defer cancel()

	// hijacked connections never cancel r.Context, so watch the read side
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-gone:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}

// ServeSSE provides a Server-Sent Events endpoint for panel events.
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	events, cancel := h.Subscribe(r.URL.Query().Get("session"))
	defer cancel()

	encoder := json.NewEncoder(w)
	flusher, _ := w.(http.Flusher)

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			w.Write([]byte("data: "))
			if err := encoder.Encode(event); err != nil {
				return
			}
			w.Write([]byte("\n"))
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

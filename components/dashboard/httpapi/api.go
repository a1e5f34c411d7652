package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-rfm-dashboard/components/dashboard"
	"github.com/goliatone/go-rfm-dashboard/components/dashboard/commands"
)

// StateReader renders the panels of a session after a command ran.
type StateReader interface {
	State(ctx context.Context, session string) (dashboard.PageView, error)
}

// SessionOpener starts a page session.
type SessionOpener interface {
	OpenPage(ctx context.Context) *dashboard.Page
}

// Handlers exposes HTTP endpoints backed by shared commands.
type Handlers struct {
	Lookup    gocommand.Commander[dashboard.LookupRequest]
	Clear     gocommand.Commander[commands.ClearLookupInput]
	Calculate gocommand.Commander[dashboard.CalculateRequest]
	Visualize gocommand.Commander[dashboard.VisualizeRequest]
	Close     gocommand.Commander[commands.CloseSessionInput]
	Sessions  SessionOpener
	State     StateReader
}

// Mount registers the handlers on mux under prefix using path patterns.
func (h *Handlers) Mount(mux *http.ServeMux, prefix string) {
	prefix = strings.TrimRight(prefix, "/")
	session := func(fn func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			fn(w, r, r.PathValue("session"))
		}
	}
	if h.Sessions != nil {
		mux.HandleFunc("POST "+prefix+"/sessions", h.HandleOpen)
	}
	if h.Close != nil {
		mux.HandleFunc("DELETE "+prefix+"/sessions/{session}", session(h.HandleClose))
	}
	mux.HandleFunc("GET "+prefix+"/sessions/{session}", session(h.HandleState))
	mux.HandleFunc("POST "+prefix+"/sessions/{session}/customer/lookup", session(h.HandleLookup))
	mux.HandleFunc("POST "+prefix+"/sessions/{session}/customer/clear", session(h.HandleClear))
	mux.HandleFunc("POST "+prefix+"/sessions/{session}/clusters/calculate", session(h.HandleCalculate))
	mux.HandleFunc("POST "+prefix+"/sessions/{session}/clusters/visualize", session(h.HandleVisualize))
}

// HandleOpen creates a page session and answers with its full state.
func (h *Handlers) HandleOpen(w http.ResponseWriter, r *http.Request) {
	page := h.Sessions.OpenPage(r.Context())
	writeJSON(w, http.StatusCreated, page.View(r.Context()))
}

// HandleClose unmounts a page session.
func (h *Handlers) HandleClose(w http.ResponseWriter, r *http.Request, session string) {
	if err := h.Close.Execute(r.Context(), commands.CloseSessionInput{Session: session}); err != nil {
		writeJSON(w, dashboard.HTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleState(w http.ResponseWriter, r *http.Request, session string) {
	h.respond(w, r, session, nil, func(view dashboard.PageView) any { return view })
}

func (h *Handlers) HandleLookup(w http.ResponseWriter, r *http.Request, session string) {
	var payload dashboard.LookupRequest
	if !decode(w, r, &payload) {
		return
	}
	payload.Session = session
	err := h.Lookup.Execute(r.Context(), payload)
	h.respond(w, r, session, err, func(view dashboard.PageView) any { return view.Lookup })
}

func (h *Handlers) HandleClear(w http.ResponseWriter, r *http.Request, session string) {
	err := h.Clear.Execute(r.Context(), commands.ClearLookupInput{Session: session})
	h.respond(w, r, session, err, func(view dashboard.PageView) any { return view.Lookup })
}

func (h *Handlers) HandleCalculate(w http.ResponseWriter, r *http.Request, session string) {
	var payload dashboard.CalculateRequest
	if !decode(w, r, &payload) {
		return
	}
	payload.Session = session
	err := h.Calculate.Execute(r.Context(), payload)
	h.respond(w, r, session, err, func(view dashboard.PageView) any { return view.Parameters })
}

func (h *Handlers) HandleVisualize(w http.ResponseWriter, r *http.Request, session string) {
	var payload dashboard.VisualizeRequest
	if !decode(w, r, &payload) {
		return
	}
	payload.Session = session
	err := h.Visualize.Execute(r.Context(), payload)
	h.respond(w, r, session, err, func(view dashboard.PageView) any { return view.Visualization })
}

func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, session string, err error, pick func(dashboard.PageView) any) {
	status := dashboard.HTTPStatus(err)
	if status == http.StatusNotFound || status == http.StatusInternalServerError {
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	view, stateErr := h.State.State(r.Context(), session)
	if stateErr != nil {
		writeJSON(w, dashboard.HTTPStatus(stateErr), map[string]string{"error": stateErr.Error()})
		return
	}
	writeJSON(w, status, pick(view))
}

// decode accepts an empty body as an empty payload.
func decode(w http.ResponseWriter, r *http.Request, payload any) bool {
	err := json.NewDecoder(r.Body).Decode(payload)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
	return false
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

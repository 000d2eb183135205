package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parleychat/parley/internal/chat"
)

// sessionSummary is the list-view projection of a session.
type sessionSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	MessageCount int    `json:"messageCount"`
	LastActivity string `json:"lastActivity"`
	IsActive     bool   `json:"isActive"`
}

func summarize(s chat.ChatSession) sessionSummary {
	return sessionSummary{
		ID:           s.ID,
		Title:        s.Title,
		MessageCount: len(s.Messages),
		LastActivity: s.LastActivity.UTC().Format("2006-01-02T15:04:05.000Z"),
		IsActive:     s.IsActive,
	}
}

// handleListSessions returns an http.HandlerFunc for GET /api/sessions.
func (g *Gateway) handleListSessions() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		sessions := g.store.Sessions()
		out := make([]sessionSummary, len(sessions))
		for i, s := range sessions {
			out[i] = summarize(s)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// handleCreateSession returns an http.HandlerFunc for POST /api/sessions.
func (g *Gateway) handleCreateSession() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		id := g.store.CreateSession()
		sess, _ := g.store.Session(id)
		writeJSON(w, http.StatusCreated, sess)
	}
}

// handleGetSession returns an http.HandlerFunc for GET /api/sessions/{id}.
func (g *Gateway) handleGetSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := g.store.Session(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

// handleActivateSession returns an http.HandlerFunc for
// POST /api/sessions/{id}/activate.
func (g *Gateway) handleActivateSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, ok := g.store.Session(id); !ok {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		g.store.SwitchSession(id)
		sess, _ := g.store.Session(id)
		writeJSON(w, http.StatusOK, sess)
	}
}

// handleDeleteSession returns an http.HandlerFunc for DELETE /api/sessions/{id}.
func (g *Gateway) handleDeleteSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, ok := g.store.Session(id); !ok {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		g.store.DeleteSession(r.Context(), id)
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleClearMessages returns an http.HandlerFunc for
// POST /api/sessions/active/clear.
func (g *Gateway) handleClearMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		g.store.ClearActiveSessionMessages()
		w.WriteHeader(http.StatusNoContent)
	}
}

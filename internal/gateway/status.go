package gateway

import (
	"net/http"
	"time"

	"github.com/parleychat/parley/internal/provider"
)

// HealthResponse is the JSON response for GET /healthz.
type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

// handleHealth returns an http.HandlerFunc for GET /healthz.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := HealthResponse{Status: "ok"}
		if g.store != nil {
			resp.Sessions = len(g.store.Sessions())
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	UptimeSeconds  float64 `json:"uptime_seconds"`
	Sessions       int     `json:"sessions"`
	Messages       int     `json:"messages"`
	ActiveProvider string  `json:"activeProvider"`
	Typing         bool    `json:"typing"`
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		sessions := g.store.Sessions()
		messages := 0
		for _, s := range sessions {
			messages += len(s.Messages)
		}
		resp := StatusResponse{
			UptimeSeconds:  time.Since(g.startedAt).Truncate(time.Second).Seconds(),
			Sessions:       len(sessions),
			Messages:       messages,
			ActiveProvider: provider.NameSimulated,
			Typing:         g.store.Typing(),
		}
		if g.settings != nil {
			if key, ok := g.settings.Active(); ok {
				resp.ActiveProvider = key.Kind().String()
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Public — no auth required.
	r.Get("/healthz", g.handleHealth())
	r.Handle("/metrics", promhttp.Handler())

	api := func(r chi.Router) {
		r.With(writeDeadline(g.config.WriteTimeout)).Get("/status", g.handleStatus())

		r.Route("/api", func(r chi.Router) {
			// The events stream holds its connection open, so it
			// skips the write deadline the other routes get.
			r.Get("/events", g.handleEvents())

			r.Group(func(r chi.Router) {
				r.Use(writeDeadline(g.config.WriteTimeout))
				g.apiRoutes(r)
			})
		})
	}

	if g.config.Auth.IsConfigured() {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(g.config.Auth))
			api(r)
		})
	} else {
		api(r)
	}

	return r
}

func (g *Gateway) apiRoutes(r chi.Router) {
	r.Get("/sessions", g.handleListSessions())
	r.Post("/sessions", g.handleCreateSession())
	r.Get("/sessions/{id}", g.handleGetSession())
	r.Post("/sessions/{id}/activate", g.handleActivateSession())
	r.Delete("/sessions/{id}", g.handleDeleteSession())
	r.Post("/sessions/active/clear", g.handleClearMessages())

	r.Post("/messages", g.handleSendMessage())
	r.Delete("/messages/{id}", g.handleDeleteMessage())

	r.Get("/settings/keys", g.handleListKeys())
	r.Post("/settings/keys", g.handleAddKey())
	r.Put("/settings/keys/{id}", g.handleUpdateKey())
	r.Delete("/settings/keys/{id}", g.handleDeleteKey())
	r.Post("/settings/keys/{id}/toggle", g.handleToggleKey())
	r.Post("/settings/keys/{id}/test", g.handleTestKey())
	r.Get("/settings/optimization", g.handleGetOptimization())
	r.Put("/settings/optimization", g.handleSetOptimization())

	r.Get("/export", g.handleExport())
	r.Post("/import", g.handleImport())
	r.Post("/clear", g.handleClearAll())
}

// writeDeadline bounds response writes on plain request/response
// routes. Connections that do not support deadlines (httptest
// recorders) are left alone.
func writeDeadline(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if d > 0 {
				_ = http.NewResponseController(w).SetWriteDeadline(time.Now().Add(d))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
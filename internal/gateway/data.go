package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/parleychat/parley/internal/chat"
)

// handleExport returns an http.HandlerFunc for GET /api/export: the full
// archive as a downloadable JSON document.
func (g *Gateway) handleExport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.durable == nil {
			writeError(w, http.StatusServiceUnavailable, "no durable storage configured")
			return
		}
		archive, err := g.durable.ExportAll(r.Context())
		if err != nil {
			g.logger.Error("export failed", "error", err)
			writeError(w, http.StatusInternalServerError, "export failed")
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="parley-export.json"`)
		writeJSON(w, http.StatusOK, archive)
	}
}

// handleImport returns an http.HandlerFunc for POST /api/import. The
// store reloads from durable storage after a successful import.
func (g *Gateway) handleImport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.durable == nil {
			writeError(w, http.StatusServiceUnavailable, "no durable storage configured")
			return
		}
		var archive chat.Archive
		if err := json.NewDecoder(r.Body).Decode(&archive); err != nil {
			writeError(w, http.StatusBadRequest, "invalid archive")
			return
		}
		if err := g.durable.ImportAll(r.Context(), archive); err != nil {
			g.logger.Error("import failed", "error", err)
			writeError(w, http.StatusInternalServerError, "import failed")
			return
		}
		g.store.Load(r.Context())
		if g.settings != nil {
			g.settings.Load(r.Context())
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleClearAll returns an http.HandlerFunc for POST /api/clear: wipe
// durable state and restart the store with a fresh default session.
func (g *Gateway) handleClearAll() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.durable != nil {
			if err := g.durable.ClearAll(r.Context()); err != nil {
				g.logger.Error("clear failed", "error", err)
				writeError(w, http.StatusInternalServerError, "clear failed")
				return
			}
		}
		g.store.Load(r.Context())
		if g.settings != nil {
			g.settings.Load(r.Context())
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

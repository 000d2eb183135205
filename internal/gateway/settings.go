package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parleychat/parley/internal/provider"
	"github.com/parleychat/parley/internal/settings"
)

// redactedKey is the API projection of a key entry: the key material is
// masked, everything else passes through.
type redactedKey struct {
	settings.APIKey
	Key string `json:"apiKey"`
}

func redact(k settings.APIKey) redactedKey {
	masked := ""
	if n := len(k.Key); n > 4 {
		masked = "..." + k.Key[n-4:]
	} else if n > 0 {
		masked = "..."
	}
	return redactedKey{APIKey: k, Key: masked}
}

// handleListKeys returns an http.HandlerFunc for GET /api/settings/keys.
func (g *Gateway) handleListKeys() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		keys := g.settings.APIKeys()
		out := make([]redactedKey, len(keys))
		for i, k := range keys {
			out[i] = redact(k)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// handleAddKey returns an http.HandlerFunc for POST /api/settings/keys.
func (g *Gateway) handleAddKey() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var k settings.APIKey
		if err := json.NewDecoder(r.Body).Decode(&k); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if k.Name == "" || k.Provider == "" || k.Key == "" {
			writeError(w, http.StatusBadRequest, "name, provider, and apiKey are required")
			return
		}
		added := g.settings.AddKey(k)
		writeJSON(w, http.StatusCreated, redact(added))
	}
}

// handleUpdateKey returns an http.HandlerFunc for PUT /api/settings/keys/{id}.
func (g *Gateway) handleUpdateKey() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var k settings.APIKey
		if err := json.NewDecoder(r.Body).Decode(&k); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		k.ID = chi.URLParam(r, "id")
		if err := g.settings.UpdateKey(k); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, redact(k))
	}
}

// handleDeleteKey returns an http.HandlerFunc for DELETE /api/settings/keys/{id}.
func (g *Gateway) handleDeleteKey() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := g.settings.DeleteKey(chi.URLParam(r, "id")); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleToggleKey returns an http.HandlerFunc for
// POST /api/settings/keys/{id}/toggle.
func (g *Gateway) handleToggleKey() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := g.settings.ToggleKey(chi.URLParam(r, "id")); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleTestKey returns an http.HandlerFunc for
// POST /api/settings/keys/{id}/test.
func (g *Gateway) handleTestKey() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		registry := g.registry()
		if registry == nil {
			writeError(w, http.StatusServiceUnavailable, "provider registry not available")
			return
		}

		err := g.settings.TestKey(r.Context(), id, registry)
		if errors.Is(err, settings.ErrKeyNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}

		status := settings.TestSuccess
		if err != nil {
			status = settings.TestError
		}
		writeJSON(w, http.StatusOK, map[string]settings.TestStatus{"testStatus": status})
	}
}

// handleGetOptimization returns an http.HandlerFunc for
// GET /api/settings/optimization.
func (g *Gateway) handleGetOptimization() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, g.settings.Optimization())
	}
}

// handleSetOptimization returns an http.HandlerFunc for
// PUT /api/settings/optimization.
func (g *Gateway) handleSetOptimization() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var opt settings.Optimization
		if err := json.NewDecoder(r.Body).Decode(&opt); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := g.settings.SetOptimization(opt); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, opt)
	}
}

func (g *Gateway) registry() *provider.Registry {
	svc, ok := g.appCtx.Service("provider.registry")
	if !ok {
		return nil
	}
	registry, ok := svc.(*provider.Registry)
	if !ok {
		return nil
	}
	return registry
}

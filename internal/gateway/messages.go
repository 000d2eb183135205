package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parleychat/parley/internal/chat"
	"github.com/parleychat/parley/internal/provider"
)

// sendRequest is the POST /api/messages body.
type sendRequest struct {
	Content string `json:"content"`
}

// sendResponse carries the assistant reply. When the provider failed,
// Error holds a short description and Reply is the apologetic bubble
// already appended to the transcript.
type sendResponse struct {
	Reply chat.Message `json:"reply"`
	Error string       `json:"error,omitempty"`
}

// handleSendMessage returns an http.HandlerFunc for POST /api/messages.
// The call blocks until the assistant reply (or the error bubble) has
// been appended.
func (g *Gateway) handleSendMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.responder == nil {
			writeError(w, http.StatusServiceUnavailable, "responder not available")
			return
		}

		var req sendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		reply, err := g.responder.Send(r.Context(), req.Content)
		switch {
		case errors.Is(err, chat.ErrEmptyMessage):
			writeError(w, http.StatusBadRequest, "message content is empty")
		case errors.Is(err, chat.ErrNoActiveSession):
			writeError(w, http.StatusConflict, "no active session")
		case err != nil:
			resp := sendResponse{Reply: reply}
			if perr, ok := provider.AsError(err); ok {
				resp.Error = perr.Error()
			} else {
				resp.Error = err.Error()
			}
			writeJSON(w, http.StatusBadGateway, resp)
		default:
			writeJSON(w, http.StatusOK, sendResponse{Reply: reply})
		}
	}
}

// handleDeleteMessage returns an http.HandlerFunc for DELETE /api/messages/{id}.
func (g *Gateway) handleDeleteMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g.store.DeleteMessage(chi.URLParam(r, "id"))
		w.WriteHeader(http.StatusNoContent)
	}
}

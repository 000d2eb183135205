package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"
)

// handleEvents returns an http.HandlerFunc for GET /api/events: a
// WebSocket stream relaying store change events. Each event is one JSON
// text frame; the stream ends when the client disconnects.
func (g *Gateway) handleEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			g.logger.Warn("websocket accept failed", "error", err)
			return
		}
		defer func() { _ = conn.Close(websocket.StatusInternalError, "unexpected close") }()

		events, cancel := g.store.Subscribe()
		defer cancel()

		ctx := r.Context()
		for {
			select {
			case <-ctx.Done():
				_ = conn.Close(websocket.StatusGoingAway, "client gone")
				return
			case evt, ok := <-events:
				if !ok {
					_ = conn.Close(websocket.StatusGoingAway, "store closed")
					return
				}
				data, err := json.Marshal(evt)
				if err != nil {
					continue
				}
				if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
					return
				}
			}
		}
	}
}

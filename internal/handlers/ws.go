package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/ktfth/roleta-online/internal/signaling"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,

	// Browsers enforce same-origin on the pages that open these sockets and
	// room access is gated by the registry, not the Origin header.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocket handles GET /ws: upgrades the connection and hands it to the
// signaling relay. Join parameters travel in the query string, matching the
// web client.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := signaling.JoinParams{
		RoomID:     q.Get("roomId"),
		HasCamera:  q.Get("hasCamera") == "true",
		UserName:   sanitizeName(q.Get("userName")),
		IsPrivate:  q.Get("isPrivate") == "true",
		Password:   q.Get("password"),
		ChatOnly:   q.Get("chatOnly") == "true",
		StreamOnly: q.Get("streamOnly") == "true",
	}
	if params.UserName == "" {
		params.UserName = "Anonymous"
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	// Serve blocks until the participant disconnects; the connection is
	// hijacked, so holding this goroutine is fine.
	h.relay.Serve(conn, params)
}

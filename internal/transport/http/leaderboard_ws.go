package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const wsWriteWait = 10 * time.Second

type wsMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ServeLeaderboardWS streams an event's leaderboard over a websocket. The first frame is
// the current standings; later frames follow every score change. Inbound frames are
// read only to notice when the client goes away.
func (h *Handler) ServeLeaderboardWS(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	updates, cancel, err := h.play.Subscribe(r.Context(), principal(r), eventID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "event_id", eventID, "error", err)
		return
	}
	defer conn.Close()
	// The server's read timeout would otherwise cut the stream.
	_ = conn.SetReadDeadline(time.Time{})

	closed := make(chan struct{})
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for {
			select {
			case lb, ok := <-updates:
				if !ok {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteJSON(wsMessage{Type: "leaderboard", Payload: lb}); err != nil {
					h.logger.Debug("ws write failed", "event_id", eventID, "error", err)
					return
				}
			case <-closed:
				return
			}
		}
	}()

	for {
		if _, _, err := conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("ws closed", "event_id", eventID, "error", err)
			}
			break
		}
	}

	close(closed)
	<-writerDone
}

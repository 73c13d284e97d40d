package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chatter-dev/chatter/internal/logger"
	"github.com/chatter-dev/chatter/internal/timeline"
	"github.com/chatter-dev/chatter/internal/utils"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// StreamMessages upgrades to a websocket and pushes the scope's change
// events as they happen. Each event carries the whole message; clients
// apply it as a replacement, never a patch.
func (h *Handler) StreamMessages(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	workspaceId, err := pathId(r, "workspace")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	scope, err := scopeFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Authorize before upgrading so rejections stay plain HTTP
	sub, err := h.message.Watch(r.Context(), user.Id, workspaceId, scope)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == h.cfg.Public.CorsOrigin
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		sub.Cancel()
		logger.Log.Debug("websocket upgrade failed", "error", err)
		return
	}

	go readPump(conn, sub.Cancel)
	writePump(conn, sub.C)
}

// readPump consumes client frames until the peer goes away, then cancels
// the subscription which ends writePump.
func readPump(conn *websocket.Conn, cancel func()) {
	defer cancel()
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(conn *websocket.Conn, events <-chan timeline.Event) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case event, ok := <-events:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Subscription cancelled or hub dropped us
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

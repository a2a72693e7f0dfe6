package handlers

import (
	"net/http"
	"sync"
	"time"

	"taskdesk/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 5 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
)

// wsConn adapts a websocket connection to realtime.Client. Publishers on
// different requests may send at once; gorilla allows one writer.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsConn) Send(message []byte) bool {
	if w == nil || w.conn == nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return w.conn.WriteMessage(websocket.TextMessage, message) == nil
}

func (w *wsConn) Close() {
	if w != nil && w.conn != nil {
		_ = w.conn.Close()
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is handled by the gin middleware
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Events handles GET /api/ws
// Upgrades the connection and streams task change events until the peer goes away.
func (h *Handler) Events(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		respondError(c, http.StatusUnauthorized, "User not authorized")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &wsConn{conn: conn}
	h.hub.Register(userID, client)
	h.log.WithField("user_id", userID).Debug("event subscriber connected")

	pingTicker := time.NewTicker(wsPingPeriod)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-pingTicker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(wsWriteWait)); err != nil {
					return
				}
			}
		}
	}()
	defer func() {
		close(done)
		pingTicker.Stop()
		h.hub.Unregister(userID, client)
		client.Close()
		h.log.WithField("user_id", userID).Debug("event subscriber disconnected")
	}()

	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/soulkill3r/pythia/internal/logging"
	"github.com/soulkill3r/pythia/internal/models"
)

// writeWait bounds each send so a peer that stopped reading errors out and
// gets pruned instead of blocking the hub.
const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Local-network deployment, no origin restrictions
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConn adapts a WebSocket connection to the hub's send-only Conn
// capability. All sends happen under the hub's lock, so no extra write
// serialization is needed here.
type wsConn struct {
	conn     *websocket.Conn
	deadline time.Duration
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{conn: conn, deadline: writeWait}
}

func (c *wsConn) Send(event models.EvaluatedEvent) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.deadline)); err != nil {
		return err
	}
	return c.conn.WriteJSON(event)
}

// Subscribe upgrades the request to a WebSocket, registers it with the hub
// (replaying history) and then blocks reading until the peer goes away.
// Inbound messages are discarded; they only serve liveness detection.
func (h *Handlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", logging.Error(err))
		return
	}

	sub := newWSConn(conn)
	h.hub.Connect(sub)

	defer func() {
		h.hub.Disconnect(sub)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

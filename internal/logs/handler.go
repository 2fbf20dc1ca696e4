package logs

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/adscout/backend/internal/models"
	"github.com/adscout/backend/pkg/response"
)

const (
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second
	streamBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // same policy as CORS_ALLOWED_ORIGINS="*"
	},
}

// Handler serves captured log entries.
type Handler struct {
	buf    *Buffer
	logger *zap.Logger
}

// NewHandler creates a logs handler.
func NewHandler(buf *Buffer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{buf: buf, logger: logger}
}

// List handles GET /api/logs.
func (h *Handler) List(c *gin.Context) {
	response.OK(c, h.buf.Entries())
}

// Stream handles GET /api/logs/stream: upgrades to WebSocket and pushes each new entry as JSON.
func (h *Handler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Debug("log stream upgrade failed", zap.Error(err))
		return
	}
	entries, cancel := h.buf.Subscribe(streamBuffer)
	defer cancel()

	done := make(chan struct{})
	go readPump(conn, done)
	writePump(conn, entries, done)
}

// readPump discards client messages and closes done when the peer goes away.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(conn *websocket.Conn, entries <-chan models.LogEntry, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case <-done:
			return
		case e, ok := <-entries:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package logs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adscout/backend/internal/models"
)

func newRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/logs", h.List)
	r.GET("/api/logs/stream", h.Stream)
	return r
}

func TestHandler_List(t *testing.T) {
	buf := NewBuffer(10)
	buf.Append(models.LogEntry{Type: "info", Message: "hello", Timestamp: time.Now()})
	r := newRouter(NewHandler(buf, nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/logs", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got []models.LogEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Message)
}

func TestHandler_ListEmptyIsArray(t *testing.T) {
	r := newRouter(NewHandler(NewBuffer(10), nil))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/logs", nil))
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestHandler_StreamPushesNewEntries(t *testing.T) {
	buf := NewBuffer(10)
	srv := httptest.NewServer(newRouter(NewHandler(buf, nil)))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/logs/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// The subscription is registered after the upgrade; append until the client sees an entry.
	received := make(chan models.LogEntry, 1)
	go func() {
		var e models.LogEntry
		if err := conn.ReadJSON(&e); err == nil {
			received <- e
		}
	}()
	deadline := time.After(2 * time.Second)
	for {
		buf.Append(models.LogEntry{Type: "info", Message: "live", Timestamp: time.Now()})
		select {
		case e := <-received:
			assert.Equal(t, "live", e.Message)
			return
		case <-deadline:
			t.Fatal("no entry streamed")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

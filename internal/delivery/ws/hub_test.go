package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/lumi/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, hub *Hub, latest func(*gin.Context) *domain.TrendSnapshot) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/ws/trends", hub.Handler(latest))
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/trends"
}

func waitForCount(t *testing.T, hub *Hub, want int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Count() == want }, time.Second, 5*time.Millisecond)
}

func TestHub_SendsLatestOnConnect(t *testing.T) {
	hub := NewHub()
	url := newTestServer(t, hub, func(*gin.Context) *domain.TrendSnapshot {
		return &domain.TrendSnapshot{RefreshID: "01HZY", Warning: "Unable to refresh trends right now."}
	})

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "trends", msg.Type)
	require.NotNil(t, msg.Snapshot)
	assert.Equal(t, "01HZY", msg.Snapshot.RefreshID)
}

func TestHub_BroadcastReachesSubscribers(t *testing.T) {
	hub := NewHub()
	url := newTestServer(t, hub, nil)

	first, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer first.Close()
	second, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer second.Close()

	waitForCount(t, hub, 2)

	hub.BroadcastSnapshot(&domain.TrendSnapshot{RefreshID: "01J00"})

	for _, conn := range []*websocket.Conn{first, second} {
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, "01J00", msg.Snapshot.RefreshID)
	}
}

func TestHub_RemovesDisconnectedSubscribers(t *testing.T) {
	hub := NewHub()
	url := newTestServer(t, hub, nil)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	waitForCount(t, hub, 1)

	conn.Close()
	waitForCount(t, hub, 0)
}

func TestHub_BroadcastWithoutSubscribers(t *testing.T) {
	hub := NewHub()
	assert.NotPanics(t, func() { hub.BroadcastSnapshot(&domain.TrendSnapshot{}) })
	assert.Equal(t, 0, hub.Count())
}

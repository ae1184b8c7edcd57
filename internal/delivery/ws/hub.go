// Package ws pushes trend snapshots to browsers over websockets.
package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/lumi/backend/internal/domain"
)

const writeTimeout = 2 * time.Second

// Message is the envelope sent to subscribers
type Message struct {
	Type     string                `json:"type"`
	Snapshot *domain.TrendSnapshot `json:"snapshot,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS policy is enforced by the HTTP middleware
	},
}

// Hub tracks websocket subscribers and fans snapshots out to them
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

// Count returns the number of connected subscribers
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// BroadcastSnapshot sends a snapshot to every subscriber, dropping those that fail
func (h *Hub) BroadcastSnapshot(snapshot *domain.TrendSnapshot) {
	h.BroadcastJSON(Message{Type: "trends", Snapshot: snapshot})
}

// BroadcastJSON sends v to every subscriber, dropping those that fail
func (h *Hub) BroadcastJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("[WS] Failed to encode broadcast: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			_ = conn.Close()
			delete(h.clients, conn)
		}
	}
}

// Handler upgrades the request and keeps the subscriber registered until it
// disconnects. When latest is non-nil its snapshot is sent first.
func (h *Hub) Handler(latest func(c *gin.Context) *domain.TrendSnapshot) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade failed: %v", err)
			return
		}

		// Written before registering so no broadcast can interleave
		if latest != nil {
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(Message{Type: "trends", Snapshot: latest(c)}); err != nil {
				_ = conn.Close()
				return
			}
		}

		h.add(conn)
		log.Printf("[WS] Subscriber connected (%d total)", h.Count())

		// Incoming messages are ignored; reading detects the disconnect
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		h.remove(conn)
		log.Printf("[WS] Subscriber disconnected (%d total)", h.Count())
	}
}

package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"podium/internal/stream"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	// In production, adjust the CheckOrigin function to allow only trusted origins.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub manages spectator WebSocket connections per room. It implements the
// coordinator's Broadcaster and the stream consumer's RoomHub.
type Hub struct {
	rooms map[string]*feed
	mu    sync.RWMutex
}

// feed holds the connections watching a single room.
type feed struct {
	roomID   string
	clients  map[*websocket.Conn]*client
	mu       sync.Mutex
	consumer *stream.Consumer
}

// client is one connected spectator.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]*feed)}
}

// register adds a connection to a room's feed, starting the Redis consumer
// for that room on first use when Redis is configured.
func (h *Hub) register(roomID string, conn *websocket.Conn) *client {
	h.mu.Lock()
	f, exists := h.rooms[roomID]
	if !exists {
		f = &feed{
			roomID:   roomID,
			clients:  make(map[*websocket.Conn]*client),
			consumer: stream.NewConsumer(h),
		}
		h.rooms[roomID] = f
		if f.consumer != nil {
			f.consumer.Start(roomID)
		}
	}
	h.mu.Unlock()

	cl := &client{conn: conn}
	f.mu.Lock()
	f.clients[conn] = cl
	f.mu.Unlock()
	return cl
}

// unregister drops a connection, deleting the feed when it empties.
func (h *Hub) unregister(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	f, exists := h.rooms[roomID]
	h.mu.Unlock()
	if !exists {
		return
	}

	f.mu.Lock()
	delete(f.clients, conn)
	empty := len(f.clients) == 0
	f.mu.Unlock()

	if empty {
		h.mu.Lock()
		if cur, ok := h.rooms[roomID]; ok && cur == f {
			delete(h.rooms, roomID)
		}
		h.mu.Unlock()
		// A later spectator starts a fresh consumer; this one must not linger.
		f.consumer.Stop()
	}
}

// BroadcastToRoom forwards an event to every spectator watching the room.
func (h *Hub) BroadcastToRoom(roomID string, event *stream.Event) {
	h.mu.RLock()
	f, exists := h.rooms[roomID]
	h.mu.RUnlock()
	if !exists {
		return
	}

	f.mu.Lock()
	clients := make([]*client, 0, len(f.clients))
	for _, cl := range f.clients {
		clients = append(clients, cl)
	}
	f.mu.Unlock()

	var payload interface{}
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		payload = json.RawMessage(event.Payload)
	}
	frame := map[string]interface{}{
		"type":      event.Type,
		"payload":   payload,
		"timestamp": event.Timestamp,
	}

	for _, cl := range clients {
		cl.writeMu.Lock()
		if err := cl.conn.WriteJSON(frame); err != nil {
			log.Printf("WebSocket write error in room %s: %v", roomID, err)
		}
		cl.writeMu.Unlock()
	}
}

// FeedHandler upgrades GET /rooms/:id/ws into a spectator event feed.
func (h *Hub) FeedHandler(c *gin.Context) {
	roomID := c.Param("id")
	if roomID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing room id"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}

	h.register(roomID, conn)
	defer func() {
		h.unregister(roomID, conn)
		conn.Close()
	}()

	conn.SetReadLimit(1024)
	conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	// The feed is one-way; reads only keep the connection alive.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
		conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	}
}

package events

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sentimenthq/pulse/pkg/logging"
)

// Event types pushed to dashboard consumers
const (
	TypeTrendUpdate     = "trend_update"
	TypeAnalyticsUpdate = "analytics_update"
	TypeAlert           = "alert"
)

// Event is the envelope broadcast over the websocket channel. Delivery is
// at-least-once; consumers deduplicate on (id, timestamp).
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent builds an event envelope stamped with a fresh id
func NewEvent(eventType string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// Broadcaster delivers events to dashboard consumers. The in-process Hub
// fans out to websocket clients directly; the Publisher forwards across
// processes.
type Broadcaster interface {
	Broadcast(event Event)
}

const (
	writeTimeout = 5 * time.Second
	sendBuffer   = 64
)

// client is one websocket subscriber. All frames go through the send
// channel; writeLoop is the connection's only writer, since the websocket
// allows at most one concurrent writer. The send channel is never closed;
// done signals the writer to exit, so broadcasters can never hit a closed
// channel.
type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// Hub fans events out to connected websocket clients
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHub creates an event hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser dashboard connects cross-origin; auth happens at
			// the token layer, not via Origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logging.WithComponent("events"),
	}
}

// Subscribe upgrades the request to a websocket and registers the client
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("Client subscribed", zap.Int("clients", n))

	go h.writeLoop(c)

	// Drain control/read frames; unregister on close
	go func() {
		defer h.remove(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	return nil
}

// writeLoop drains the client's send channel onto the connection. It exits
// when the client is removed or a write fails.
func (h *Hub) writeLoop(c *client) {
	defer h.remove(c)
	for {
		select {
		case <-c.done:
			return
		case raw := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

// Broadcast queues the event for every connected client. Clients whose send
// buffer is full are dropped rather than blocking the rest.
func (h *Hub) Broadcast(event Event) {
	raw, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to marshal event", zap.Error(err))
		return
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- raw:
		case <-c.done:
		default:
			h.remove(c)
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

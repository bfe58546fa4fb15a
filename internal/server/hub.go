package server

import (
	"bytes"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/yaklabco/mdcat/internal/logging"
	"github.com/yaklabco/mdcat/internal/metrics"
)

const (
	sendBuffer     = 16
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
)

// client is one connected WebSocket peer.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans state messages out to every connected client. A client whose
// buffer is full is dropped rather than slowing the broadcaster.
type Hub struct {
	logger  *log.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	clients map[*client]struct{}
	current []byte
	closed  bool
}

// NewHub creates an empty hub.
func NewHub(logger *log.Logger, m *metrics.Metrics) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	return &Hub{
		logger:  logger,
		metrics: m,
		clients: make(map[*client]struct{}),
	}
}

// Broadcast records data as the current message and queues it for every
// client. A message identical to the current one is not resent.
func (h *Hub) Broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || bytes.Equal(h.current, data) {
		return
	}
	h.current = data
	h.metrics.RecordBroadcast()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("dropping slow client", logging.FieldAddr, c.conn.RemoteAddr().String())
			h.removeLocked(c)
		}
	}
}

// Current returns the last broadcast message.
func (h *Hub) Current() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// register adds c and queues the current message for it.
func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	if h.current != nil {
		c.send <- h.current
	}
	h.metrics.ClientConnected(1)
	h.logger.Debug("client connected",
		logging.FieldAddr, c.conn.RemoteAddr().String(),
		logging.FieldClients, len(h.clients))
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.metrics.ClientConnected(-1)
	h.logger.Debug("client disconnected", logging.FieldClients, len(h.clients))
}

// Close disconnects every client. Later registrations fail.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

// writePump sends queued messages and keepalive pings until the send
// channel closes or a write fails.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump hands every text frame to handle until the peer goes away.
func (c *client) readPump(handle func([]byte)) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if kind == websocket.TextMessage {
			handle(data)
		}
	}
}

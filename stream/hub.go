package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	sendBuffer     = 8
	commandBuffer  = 32
	maxMessageSize = 4096
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans snapshots out to websocket subscribers. Publish never blocks:
// a client that falls sendBuffer messages behind is dropped.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader
	commands chan Command

	mu        sync.Mutex
	clients   map[*client]struct{}
	last      *Snapshot
	obstacles []ObstacleState // most recent layout seen
	hasLayout bool
	closed    bool
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		commands: make(chan Command, commandBuffer),
		clients:  make(map[*client]struct{}),
	}
}

// Commands delivers client commands. The simulation drains it once per tick.
func (h *Hub) Commands() <-chan Command { return h.commands }

// Clients returns the number of connected subscribers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Handler upgrades requests to websocket subscriptions. New subscribers
// receive the latest snapshot straight away.
func (h *Hub) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}
		conn.SetReadLimit(maxMessageSize)

		c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
		h.mu.Lock()
		if h.closed {
			h.mu.Unlock()
			conn.Close()
			return
		}
		h.clients[c] = struct{}{}
		if data, err := h.replay(); err == nil && data != nil {
			c.send <- data
		}
		n := len(h.clients)
		h.mu.Unlock()

		h.logger.Info("stream subscriber connected", "remote", r.RemoteAddr, "clients", n)
		go h.writePump(c)
		h.readPump(c)
	})
}

// SnapshotHandler serves the latest snapshot as plain JSON.
func (h *Hub) SnapshotHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		data, err := h.replay()
		h.mu.Unlock()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if data == nil {
			http.Error(w, "no snapshot yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.remove(c)
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) readPump(c *client) {
	defer h.remove(c)
	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd Command
		if err := json.Unmarshal(payload, &cmd); err != nil {
			h.logger.Warn("discarding malformed command", "error", err)
			continue
		}
		switch cmd.Type {
		case CommandRally, CommandClearRally, CommandMoveObstacle:
		default:
			h.logger.Warn("discarding unknown command", "type", cmd.Type)
			continue
		}
		select {
		case h.commands <- cmd:
		default:
			h.logger.Warn("command queue full, dropping", "type", cmd.Type)
		}
	}
}

// remove unregisters c. It is safe to call more than once.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// replay encodes the latest snapshot together with the latest layout.
// The caller holds h.mu.
func (h *Hub) replay() ([]byte, error) {
	if h.last == nil {
		return nil, nil
	}
	s := *h.last
	s.Layout = h.hasLayout
	s.Obstacles = h.obstacles
	return encode(s)
}

func encode(s Snapshot) ([]byte, error) {
	if s.Type == "" {
		s.Type = "snapshot"
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// Publish encodes s and queues it for every subscriber.
func (h *Hub) Publish(s Snapshot) error {
	data, err := encode(s)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.last = &s
	if s.Layout {
		h.obstacles = s.Obstacles
		h.hasLayout = true
	}
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("stream subscriber too slow, dropping", "remote", c.conn.RemoteAddr().String())
			delete(h.clients, c)
			close(c.send)
		}
	}
	return nil
}

// Close disconnects every subscriber. Later Publish calls are ignored.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

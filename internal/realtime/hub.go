package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"signage-panel/internal/logger"
	"signage-panel/internal/metrics"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"
)

const defaultClientBuffer = 16

type client struct {
	id   string
	send chan Event
}

// Hub fans events out to every connected player websocket. A client whose
// buffer is full misses the event; players re-fetch on their refresh timer.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}

	buffer int
	logger *slog.Logger
}

func NewHub(l *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		buffer:  defaultClientBuffer,
		logger:  logger.Or(l),
	}
}

// Publish queues ev for every connected client without blocking.
func (h *Hub) Publish(_ context.Context, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- ev:
			metrics.RecordEvent(ev.Type, "sent")
		default:
			metrics.RecordEvent(ev.Type, "dropped")
			h.logger.Warn("player buffer full, event dropped",
				"event", "ws_event_dropped", "module", "realtime", "client_id", c.id, "type", ev.Type)
		}
	}
}

// Clients returns the number of connected players.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Handler upgrades player connections. Incoming frames are read and ignored.
func (h *Hub) Handler() http.Handler {
	return websocket.Server{
		Handshake: func(*websocket.Config, *http.Request) error { return nil },
		Handler:   h.serve,
	}
}

func (h *Hub) serve(conn *websocket.Conn) {
	defer conn.Close()

	c := &client{id: uuid.NewString(), send: make(chan Event, h.buffer)}
	h.add(c)
	defer h.remove(c)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var discard string
			if err := websocket.Message.Receive(conn, &discard); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev := <-c.send:
			if err := websocket.JSON.Send(conn, ev); err != nil {
				h.logger.Debug("player write failed", "module", "realtime", "client_id", c.id, "error", err)
				return
			}
		case <-done:
			return
		}
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	metrics.PlayersConnected.Inc()
	h.logger.Info("player connected", "event", "ws_connect", "module", "realtime", "client_id", c.id, "clients", n)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	metrics.PlayersConnected.Dec()
	h.logger.Info("player disconnected", "event", "ws_disconnect", "module", "realtime", "client_id", c.id, "clients", n)
}

package ws

import (
	"context"
	"sync"

	"jobmatch/internal/logger"

	"go.uber.org/zap"
)

// Hub fans broadcast messages out to every connected client. All membership
// changes go through Run's loop.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	logger     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 1024),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		logger:     logger.Named(log, "ws"),
	}
}

// Run serves the hub until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Debug("client connected", zap.Int("total_clients", total))

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Debug("client disconnected", zap.Int("total_clients", total))

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// slow consumer
					delete(h.clients, client)
					close(client.send)
				}
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Debug("broadcast", zap.Int("clients", total))
		}
	}
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	h.unregister <- client
}

func (h *Hub) Broadcast(message []byte) {
	if h == nil {
		return
	}
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("broadcast dropped", zap.String("reason", "buffer_full"))
	}
}

func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"gym-statistics/internal/pkg/logger"

	"github.com/google/uuid"
)

// Hub fans dashboard notifications out to every open websocket.
type Hub struct {
	// Registered clients by connection ID.
	clients map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client
	done       chan struct{} // closed when Run returns

	mu sync.RWMutex

	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[uuid.UUID]*Client),
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				close(client.Send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"conn_id": client.ID, "clients": count})

		case client := <-h.unregister:
			if h.remove(client) {
				h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"conn_id": client.ID})
			}
		}
	}
}

// remove drops client and closes its queue, once.
func (h *Hub) remove(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if current, ok := h.clients[client.ID]; !ok || current != client {
		return false
	}
	delete(h.clients, client.ID)
	close(client.Send)
	return true
}

// Broadcast queues data for every client. Clients whose queue is full are dropped.
func (h *Hub) Broadcast(data []byte) {
	var slow []*Client

	h.mu.RLock()
	for _, client := range h.clients {
		select {
		case client.Send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		if h.remove(client) {
			h.logger.Warn("Hub", "Client Send buffer full, dropping connection", map[string]interface{}{"conn_id": client.ID})
		}
	}
}

// BroadcastRefresh tells dashboards that a new snapshot is available.
func (h *Hub) BroadcastRefresh(version uint64) {
	data, err := json.Marshal(map[string]interface{}{
		"type":    "refreshed",
		"version": version,
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode refresh message", map[string]interface{}{"error": err.Error()})
		return
	}
	h.Broadcast(data)
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

package hub

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/config"
	pkglog "github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/log"
)

// Hub tracks every open socket on this instance and owns their send
// buffers. Room membership lives in the registry, not here.
type Hub struct {
	clients    map[string]*Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	config     config.WebSocketConfig
}

func NewHub(cfg config.WebSocketConfig) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		config:     cfg,
	}
}

// Run serves unregistration until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	l := pkglog.L()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				delete(h.clients, id)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.ID]; ok && current == client {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()
			l.Debug().Str(pkglog.FieldConnID, client.ID).Msg("client unregistered")
		}
	}
}

// Register makes the client addressable before its read pump starts.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()
	l := pkglog.L()
	l.Debug().Str(pkglog.FieldConnID, client.ID).Msg("client registered")
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SendToClient queues message for one connection. Unknown ids are ignored.
func (h *Hub) SendToClient(clientID string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if client, ok := h.clients[clientID]; ok {
		h.deliverLocked(client, data)
	}
	return nil
}

// SendToClients queues the same frame for each listed connection in order.
func (h *Hub) SendToClients(clientIDs []string, message interface{}) error {
	if len(clientIDs) == 0 {
		return nil
	}
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, id := range clientIDs {
		if client, ok := h.clients[id]; ok {
			h.deliverLocked(client, data)
		}
	}
	return nil
}

// BroadcastAll queues message for every connection on this instance. Like
// SendToClient it enqueues before returning, so frames keep emission order.
func (h *Hub) BroadcastAll(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		h.deliverLocked(client, data)
	}
	return nil
}

// IsConnected reports whether clientID has an open socket here.
func (h *Hub) IsConnected(clientID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[clientID]
	return ok
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// deliverLocked must be called with h.mu held for reading.
func (h *Hub) deliverLocked(client *Client, data []byte) {
	select {
	case client.Send <- data:
	default:
		// Client's send buffer is full
		go h.Unregister(client)
	}
}

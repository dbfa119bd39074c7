package hub

import (
	"encoding/json"
	"sync"

	"gamecatalog/backend/internal/logging"
)

// AdminChannel carries catalog activity to the admin panel.
const AdminChannel = "admin"

// Event types published on AdminChannel.
const (
	EventGameImported      = "game.imported"
	EventMessageCreated    = "message.created"
	EventWishlistSuggested = "wishlist.suggested"
)

// Event represents a real-time event to be sent to clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client is a subscriber's outbound queue. The SSE handler drains it.
type Client chan []byte

// Hub fans events out to subscribers grouped by channel name.
type Hub struct {
	channels map[string]map[Client]bool
	mu       sync.RWMutex
}

// GlobalHub is the process-wide hub used by the handlers.
var GlobalHub = NewHub()

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		channels: make(map[string]map[Client]bool),
	}
}

// Subscribe adds a client to a channel.
func (h *Hub) Subscribe(channel string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.channels[channel]; !ok {
		h.channels[channel] = make(map[Client]bool)
	}
	h.channels[channel][client] = true
}

// Unsubscribe removes a client and closes its queue.
func (h *Hub) Unsubscribe(channel string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.channels[channel]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client)
			if len(clients) == 0 {
				delete(h.channels, channel)
			}
		}
	}
}

// Subscribers returns the number of clients on a channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

// Broadcast sends an event to every client on a channel.
// Slow clients with a full queue miss the event rather than block the caller.
func (h *Hub) Broadcast(channel string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.channels[channel]
	if !ok {
		return
	}
	messageBytes, err := json.Marshal(event)
	if err != nil {
		logging.Error().Err(err).Str("type", event.Type).Msg("failed to encode hub event")
		return
	}

	for client := range clients {
		select {
		case client <- messageBytes:
		default:
		}
	}
}

package ws

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// Event is a refresh signal pushed to UI clients.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// registerEvent routes an event to the clients of one register.
type registerEvent struct {
	RegisterID uuid.UUID
	Event      Event
}

// Hub maintains the set of active clients and broadcasts refresh events to
// them, grouped by register.
type Hub struct {
	// Registered clients by register ID
	rooms map[uuid.UUID]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	broadcast chan *registerEvent

	mu sync.RWMutex
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *registerEvent, 256),
	}
}

// Run starts the hub's main loop.
// This should be called as a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.registerID] == nil {
				h.rooms[client.registerID] = make(map[*Client]bool)
			}
			h.rooms[client.registerID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.registerID]; ok {
				if _, exists := clients[client]; exists {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.rooms, client.registerID)
					}
				}
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.Lock()
			clients := h.rooms[event.RegisterID]

			message, err := json.Marshal(event.Event)
			if err != nil {
				h.mu.Unlock()
				continue
			}

			for client := range clients {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, close and unregister
					close(client.send)
					delete(h.rooms[event.RegisterID], client)
					if len(h.rooms[event.RegisterID]) == 0 {
						delete(h.rooms, event.RegisterID)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToRegister sends an event to all clients watching a register.
func (h *Hub) BroadcastToRegister(registerID uuid.UUID, event Event) {
	h.broadcast <- &registerEvent{
		RegisterID: registerID,
		Event:      event,
	}
}

package realtime

import (
	"encoding/json"
	"sync"
)

// Event types published when the task collection changes.
const (
	EventTaskCreated  = "task_created"
	EventTaskUpdated  = "task_updated"
	EventTaskDeleted  = "task_deleted"
	EventFileUploaded = "file_uploaded"
	EventFileDeleted  = "file_deleted"
)

// Event is the message pushed to websocket clients.
type Event struct {
	Type    string `json:"type"`
	TaskID  int64  `json:"taskId"`
	FileID  int64  `json:"fileId,omitempty"`
	UserID  int64  `json:"userId"`
	Version int    `json:"version"`
}

// Client is one subscriber connection. Send reports false when the message
// could not be queued.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Hub maintains active user connections and broadcasts events to them.
type Hub struct {
	mu              sync.RWMutex
	userIDToClients map[int64]map[Client]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{
		userIDToClients: make(map[int64]map[Client]struct{}),
	}
}

// Register adds a client under a user ID.
func (h *Hub) Register(userID int64, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.userIDToClients[userID]; !ok {
		h.userIDToClients[userID] = make(map[Client]struct{})
	}
	h.userIDToClients[userID][client] = struct{}{}
}

// Unregister removes a client; if user has no more clients, cleans up map.
func (h *Hub) Unregister(userID int64, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.userIDToClients[userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.userIDToClients, userID)
		}
	}
}

// Broadcast sends a message to all clients of a user.
func (h *Hub) Broadcast(userID int64, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.userIDToClients[userID] {
		// a failed write is cleaned up by the handler's reader loop
		_ = c.Send(message)
	}
}

// BroadcastAll sends a message to every connected client. Task lists are
// team-wide, so every change concerns every user.
func (h *Hub) BroadcastAll(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.userIDToClients {
		for c := range clients {
			_ = c.Send(message)
		}
	}
}

// Publish encodes evt and sends it to everyone.
func (h *Hub) Publish(evt Event) {
	if evt.Version == 0 {
		evt.Version = 1
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	h.BroadcastAll(b)
}

// Connections returns the number of registered clients.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.userIDToClients {
		n += len(clients)
	}
	return n
}

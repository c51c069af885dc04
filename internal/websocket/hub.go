// Package websocket pushes group-change notifications to watching clients.
// Clients subscribe to one group and receive a small event whenever any
// member's sync writes touch that group's documents; they react by
// re-fetching, so a dropped event only delays convergence until the next
// poll.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Event is one change notification scoped to a group.
type Event struct {
	Type       string `json:"type"`
	GroupID    string `json:"groupId"`
	Collection string `json:"collection,omitempty"`
	DocID      string `json:"docId,omitempty"`
	ActorUID   string `json:"actorUid,omitempty"`
}

const (
	// EventChanged signals that one or more documents under the group
	// changed and watchers should re-fetch.
	EventChanged = "changed"
	// EventDeleted signals that the group itself was dissolved.
	EventDeleted = "deleted"
)

// Hub tracks the watchers of each group and fans events out to them.
type Hub struct {
	mu       sync.RWMutex
	watchers map[string]map[*Client]struct{}
	logger   *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		watchers: make(map[string]map[*Client]struct{}),
		logger:   logger,
	}
}

// Register adds a client as a watcher of its group.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	set, ok := h.watchers[c.groupID]
	if !ok {
		set = make(map[*Client]struct{})
		h.watchers[c.groupID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if set, ok := h.watchers[c.groupID]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			close(c.send)
		}
		if len(set) == 0 {
			delete(h.watchers, c.groupID)
		}
	}
	h.mu.Unlock()
}

// Broadcast sends an event to every watcher of its group. Slow clients
// with a full buffer miss the event rather than block the writer.
func (h *Hub) Broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal event", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.watchers[ev.GroupID] {
		select {
		case c.send <- data:
		default:
		}
	}
}

// WatcherCount returns the number of clients watching a group.
func (h *Hub) WatcherCount(groupID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers[groupID])
}

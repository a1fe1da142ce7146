package service

import (
	"log/slog"
	"sync"
)

var hub = NewHub()

// Hub is the connection registry. Buckets are keyed by user id so
// fan-out for one user never contends with attach/detach for another.
type Hub struct {
	mu      sync.RWMutex
	buckets map[string]*bucket
}

type bucket struct {
	mu    sync.Mutex
	conns map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		buckets: make(map[string]*bucket),
	}
}

func GetHub() *Hub {
	return hub
}

// Attach registers a live connection and reports whether it is the
// user's first one.
func (h *Hub) Attach(client *Client) bool {
	h.mu.Lock()
	b, ok := h.buckets[client.userID]
	if !ok {
		b = &bucket{conns: make(map[*Client]struct{})}
		h.buckets[client.userID] = b
	}

	// insert under the registry lock so a concurrent Detach cannot
	// drop the bucket between lookup and insert
	b.mu.Lock()
	b.conns[client] = struct{}{}
	first := len(b.conns) == 1
	b.mu.Unlock()
	h.mu.Unlock()

	slog.Info("User connected", "user_id", client.userID, "first", first)
	return first
}

// Detach removes a connection and reports whether it was the user's
// last one. Idempotent.
func (h *Hub) Detach(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, ok := h.buckets[client.userID]
	if !ok {
		return false
	}

	b.mu.Lock()
	_, present := b.conns[client]
	delete(b.conns, client)
	empty := len(b.conns) == 0
	b.mu.Unlock()

	if empty {
		delete(h.buckets, client.userID)
	}

	if present {
		slog.Info("User disconnected", "user_id", client.userID, "last", empty)
	}
	return present && empty
}

// ForUser returns a snapshot so callers can iterate without holding
// any registry lock across network writes.
func (h *Hub) ForUser(userID string) []*Client {
	h.mu.RLock()
	b, ok := h.buckets[userID]
	h.mu.RUnlock()
	if !ok {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	snapshot := make([]*Client, 0, len(b.conns))
	for c := range b.conns {
		snapshot = append(snapshot, c)
	}
	return snapshot
}

func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	b, ok := h.buckets[userID]
	h.mu.RUnlock()
	if !ok {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.conns) > 0
}

// CloseAll shuts every live connection down; used on server exit.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	buckets := make([]*bucket, 0, len(h.buckets))
	for _, b := range h.buckets {
		buckets = append(buckets, b)
	}
	h.buckets = make(map[string]*bucket)
	h.mu.Unlock()

	for _, b := range buckets {
		b.mu.Lock()
		for c := range b.conns {
			c.shutdown()
		}
		b.mu.Unlock()
	}
}

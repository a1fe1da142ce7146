package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/ssaritan18/clubchat/internal/domain"
)

// PresenceService derives online state from the hub's connection
// counts and mirrors it into redis for sibling services. Transitions
// for one user are serialized: the per-user lock spans the hub change
// and the fan-out enqueue, so friends observe updates in transition
// order.
type PresenceService struct {
	hub     *Hub
	router  *Router
	friends friendResolver
	mirror  PresenceMirrorIn

	mu          sync.Mutex
	transitions map[string]*sync.Mutex
}

func NewPresenceService(hub *Hub, router *Router, friends friendResolver, mirror PresenceMirrorIn) *PresenceService {
	return &PresenceService{
		hub:         hub,
		router:      router,
		friends:     friends,
		mirror:      mirror,
		transitions: make(map[string]*sync.Mutex),
	}
}

func (ps *PresenceService) transitionLock(userID string) *sync.Mutex {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	l, ok := ps.transitions[userID]
	if !ok {
		l = &sync.Mutex{}
		ps.transitions[userID] = l
	}
	return l
}

// SendSnapshot pushes the friend-presence map onto a connection. Call
// it before attaching the client so the bulk frame precedes every
// other event on that connection.
func (ps *PresenceService) SendSnapshot(ctx context.Context, client *Client) error {
	friendIDs, err := ps.friends.GetFriendIDs(ctx, client.userID)
	if err != nil {
		return err
	}

	online := make(map[string]bool, len(friendIDs))
	for _, friendID := range friendIDs {
		online[friendID] = ps.hub.IsOnline(friendID)
	}

	data, err := json.Marshal(&PresenceBulkEvent{
		Type:   domain.EventPresenceBulk,
		Online: online,
	})
	if err != nil {
		return err
	}

	client.Enqueue(data)
	return nil
}

// Attach registers the connection; only the user's first one flips
// them online.
func (ps *PresenceService) Attach(ctx context.Context, client *Client) {
	l := ps.transitionLock(client.userID)
	l.Lock()
	defer l.Unlock()

	if !ps.hub.Attach(client) {
		return
	}

	if err := ps.mirror.SetOnline(ctx, client.userID); err != nil {
		slog.Warn("Failed to mirror online status", "user_id", client.userID, "error", err)
	}

	ps.router.SendToFriends(ctx, client.userID, &PresenceUpdateEvent{
		Type:   domain.EventPresenceUpdate,
		UserID: client.userID,
		Online: true,
	})
}

// Detach drops the connection; only the user's last one flips them
// offline.
func (ps *PresenceService) Detach(ctx context.Context, client *Client) {
	l := ps.transitionLock(client.userID)
	l.Lock()
	defer l.Unlock()

	if !ps.hub.Detach(client) {
		return
	}

	if err := ps.mirror.SetOffline(ctx, client.userID); err != nil {
		slog.Warn("Failed to mirror offline status", "user_id", client.userID, "error", err)
	}

	ps.router.SendToFriends(ctx, client.userID, &PresenceUpdateEvent{
		Type:   domain.EventPresenceUpdate,
		UserID: client.userID,
		Online: false,
	})
}

// Refresh re-arms the mirror TTL; driven by heartbeats on the read
// pump.
func (ps *PresenceService) Refresh(ctx context.Context, userID string) {
	if !ps.hub.IsOnline(userID) {
		return
	}
	if err := ps.mirror.SetOnline(ctx, userID); err != nil {
		slog.Warn("Failed to refresh online status", "user_id", userID, "error", err)
	}
}

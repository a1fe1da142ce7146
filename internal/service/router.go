package service

import (
	"context"
	"encoding/json"
	"log/slog"
)

type memberResolver interface {
	GetMembers(ctx context.Context, chatID string) ([]string, error)
}

type friendResolver interface {
	GetFriendIDs(ctx context.Context, userID string) ([]string, error)
}

// Router is the single component that reads the registry and pushes
// frames to live peers. Delivery is best effort: the durable copy, if
// any, already sits in the message log.
type Router struct {
	hub     *Hub
	members memberResolver
	friends friendResolver
}

func NewRouter(hub *Hub, members memberResolver, friends friendResolver) *Router {
	return &Router{
		hub:     hub,
		members: members,
		friends: friends,
	}
}

func (r *Router) SendToUser(userID string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal event", "error", err)
		return
	}
	r.sendRaw(userID, data)
}

func (r *Router) sendRaw(userID string, data []byte) {
	for _, client := range r.hub.ForUser(userID) {
		if !client.Enqueue(data) {
			// dead or backed-up peer; its pump deregisters on close
			slog.Warn("Dropping unresponsive connection", "user_id", userID)
			client.shutdown()
		}
	}
}

// SendToChat serializes once and fans out to every member except the
// optional excluded one (typically the sender, who got the response
// synchronously).
func (r *Router) SendToChat(ctx context.Context, chatID string, event any, excludeUserID string) {
	members, err := r.members.GetMembers(ctx, chatID)
	if err != nil {
		slog.Error("Failed to resolve chat members for fan-out", "chat_id", chatID, "error", err)
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal event", "error", err)
		return
	}

	for _, memberID := range members {
		if memberID != excludeUserID {
			r.sendRaw(memberID, data)
		}
	}
}

func (r *Router) SendToFriends(ctx context.Context, userID string, event any) {
	friendIDs, err := r.friends.GetFriendIDs(ctx, userID)
	if err != nil {
		slog.Error("Failed to resolve friends for fan-out", "user_id", userID, "error", err)
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal event", "error", err)
		return
	}

	for _, friendID := range friendIDs {
		r.sendRaw(friendID, data)
	}
}

package service

import (
	"github.com/ssaritan18/clubchat/internal/domain"
)

// Events for clients. Every frame carries its payload at the top level
// next to the type tag.

type NewMessageEvent struct {
	Type    domain.EventType `json:"type"`
	ChatID  string           `json:"chat_id"`
	Message *domain.Message  `json:"message"`
}

type MessageReactionEvent struct {
	Type             domain.EventType    `json:"type"`
	ChatID           string              `json:"chat_id"`
	MessageID        string              `json:"message_id"`
	ReactionType     domain.ReactionKind `json:"reaction_type"`
	UserID           string              `json:"user_id"`
	UpdatedReactions domain.Reactions    `json:"updated_reactions"`
}

type PresenceBulkEvent struct {
	Type   domain.EventType `json:"type"`
	Online map[string]bool  `json:"online"`
}

type PresenceUpdateEvent struct {
	Type   domain.EventType `json:"type"`
	UserID string           `json:"user_id"`
	Online bool             `json:"online"`
}

type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type FriendRequestIncomingEvent struct {
	Type      domain.EventType `json:"type"`
	RequestID string           `json:"request_id"`
	From      UserRef          `json:"from"`
}

type FriendRequestResolvedEvent struct {
	Type domain.EventType `json:"type"`
	By   UserRef          `json:"by"`
}

type FriendsListUpdateEvent struct {
	Type domain.EventType `json:"type"`
}

type PongEvent struct {
	Type domain.EventType `json:"type"`
}

// Inbound ws frames. Only heartbeats arrive on the channel; everything
// else goes through the request/response surface.
type InboundFrame struct {
	Type domain.EventType `json:"type"`
}

// Request payloads handed down from the API surface.

type SendMessageInput struct {
	Type       domain.MessageType
	Text       string
	VoiceURL   string
	DurationMs int
	MediaURL   string
}

// FindUserResult flags ambiguity instead of failing when a name query
// matches more than one user.
type FindUserResult struct {
	User      *domain.User
	Ambiguous bool
}

func userRef(u *domain.User) UserRef {
	return UserRef{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}

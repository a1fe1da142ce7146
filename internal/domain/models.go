package domain

import "time"

type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Verified     bool      `json:"verified" db:"verified"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type FriendRequest struct {
	ID         string        `json:"id" db:"id"`
	FromUserID string        `json:"from_user_id" db:"from_user_id"`
	ToUserID   string        `json:"to_user_id" db:"to_user_id"`
	Status     RequestStatus `json:"status" db:"status"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at" db:"updated_at"`
}

type Chat struct {
	ID         string    `json:"id" db:"id"`
	Type       ChatType  `json:"type" db:"type"`
	Title      *string   `json:"title,omitempty" db:"title"`
	InviteCode *string   `json:"invite_code,omitempty" db:"invite_code"`
	CreatedBy  string    `json:"created_by" db:"created_by"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	Members    []string  `json:"members"`
}

// Reactions always carries all four counters so every producer path
// serializes the same shape.
type Reactions struct {
	Like  int `json:"like"`
	Heart int `json:"heart"`
	Clap  int `json:"clap"`
	Star  int `json:"star"`
}

func (r Reactions) Count(kind ReactionKind) int {
	switch kind {
	case ReactionLike:
		return r.Like
	case ReactionHeart:
		return r.Heart
	case ReactionClap:
		return r.Clap
	case ReactionStar:
		return r.Star
	}
	return 0
}

// Message is the normalized envelope. The append response, the history
// fetch and the fan-out broadcast all emit exactly this shape.
type Message struct {
	ID              string        `json:"id"`
	ChatID          string        `json:"chat_id"`
	AuthorID        string        `json:"author_id"`
	AuthorName      string        `json:"author_name"`
	Type            MessageType   `json:"type"`
	Status          MessageStatus `json:"status"`
	Text            string        `json:"text,omitempty"`
	VoiceURL        string        `json:"voice_url,omitempty"`
	DurationMs      int           `json:"duration_ms,omitempty"`
	MediaURL        string        `json:"media_url,omitempty"`
	Reactions       Reactions     `json:"reactions"`
	CreatedAt       time.Time     `json:"created_at"`
	ServerTimestamp time.Time     `json:"server_timestamp"`
}

type TodayStats struct {
	MessagesSent   int `json:"messages_sent" db:"messages_sent"`
	ReactionsGiven int `json:"reactions_given" db:"reactions_given"`
}

type ReactionRecord struct {
	ID        string       `json:"id" db:"id"`
	MessageID string       `json:"message_id" db:"message_id"`
	UserID    string       `json:"user_id" db:"user_id"`
	Type      ReactionKind `json:"type" db:"type"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

type (
	ChatType string

	MessageType string

	MessageStatus string

	ReactionKind string

	RequestStatus string

	EventType string
)

const (
	ChatGroup  ChatType = "GROUP"
	ChatDirect ChatType = "DIRECT"

	MessageText  MessageType = "text"
	MessageVoice MessageType = "voice"
	MessageMedia MessageType = "media"

	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"

	ReactionLike  ReactionKind = "like"
	ReactionHeart ReactionKind = "heart"
	ReactionClap  ReactionKind = "clap"
	ReactionStar  ReactionKind = "star"

	RequestPending  RequestStatus = "PENDING"
	RequestAccepted RequestStatus = "ACCEPTED"
	RequestRejected RequestStatus = "REJECTED"

	// events
	EventNewMessage       EventType = "chat:new_message"
	EventMessageReaction  EventType = "chat:message_reaction"
	EventPresenceBulk     EventType = "presence:bulk"
	EventPresenceUpdate   EventType = "presence:update"
	EventRequestIncoming  EventType = "friend_request:incoming"
	EventRequestAccepted  EventType = "friend_request:accepted"
	EventRequestRejected  EventType = "friend_request:rejected"
	EventFriendsListDirty EventType = "friends:list:update"

	EventPing EventType = "ping"
	EventPong EventType = "pong"
)

func ValidReactionKind(k ReactionKind) bool {
	switch k {
	case ReactionLike, ReactionHeart, ReactionClap, ReactionStar:
		return true
	}
	return false
}

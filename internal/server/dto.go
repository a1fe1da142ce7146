package server

import (
	"github.com/ssaritan18/clubchat/internal/domain"
)

type RegisterJSON struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginJSON struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type FriendRequestJSON struct {
	ToEmail string `json:"to_email"`
}

type AcceptRequestJSON struct {
	RequestID string `json:"request_id"`
}

type RejectRequestJSON struct {
	RequestID string `json:"request_id"`
}

type NewGroupJSON struct {
	Title string `json:"title"`
}

type JoinGroupJSON struct {
	Code string `json:"code"`
}

type SendMessageJSON struct {
	Type       domain.MessageType `json:"type"`
	Text       string             `json:"text,omitempty"`
	VoiceURL   string             `json:"voice_url,omitempty"`
	DurationMs int                `json:"duration_ms,omitempty"`
	MediaURL   string             `json:"media_url,omitempty"`
}

type ReactJSON struct {
	Type domain.ReactionKind `json:"type"`
}

// responses

type RegisteredResponse struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type MeResponse struct {
	User  *domain.User       `json:"user"`
	Today *domain.TodayStats `json:"today"`
}

type AcceptedResponse struct {
	Accepted bool   `json:"accepted"`
	ChatID   string `json:"chat_id"`
}

type RejectedResponse struct {
	Rejected bool `json:"rejected"`
}

type FriendsResponse struct {
	Friends []domain.User `json:"friends"`
}

type RequestsResponse struct {
	Requests []domain.FriendRequest `json:"requests"`
}

type FoundUserResponse struct {
	User      *domain.User `json:"user"`
	Ambiguous bool         `json:"ambiguous"`
}

type ChatsResponse struct {
	Chats []domain.Chat `json:"chats"`
}

type MessagesResponse struct {
	Messages []domain.Message `json:"messages"`
}

type ReactedResponse struct {
	Reacted   bool                `json:"reacted"`
	Type      domain.ReactionKind `json:"type"`
	Reactions domain.Reactions    `json:"reactions"`
}

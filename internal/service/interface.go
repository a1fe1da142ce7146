package service

import (
	"context"

	"github.com/ssaritan18/clubchat/internal/domain"
)

type UserRepoIn interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	SearchUsersByName(ctx context.Context, q string) ([]domain.User, error)

	CreateFriendRequest(ctx context.Context, req *domain.FriendRequest) error
	GetPendingRequest(ctx context.Context, fromUserID, toUserID string) (*domain.FriendRequest, error)
	GetFriendRequest(ctx context.Context, requestID string) (*domain.FriendRequest, error)
	ListIncomingRequests(ctx context.Context, userID string) ([]domain.FriendRequest, error)
	AcceptFriendRequest(ctx context.Context, req *domain.FriendRequest, directChatID string) error
	RejectFriendRequest(ctx context.Context, requestID string) error

	ListFriends(ctx context.Context, userID string) ([]domain.User, error)
	GetFriendIDs(ctx context.Context, userID string) ([]string, error)
	AreFriends(ctx context.Context, userID, otherID string) (bool, error)
}

type ChatRepoIn interface {
	CreateGroupChat(ctx context.Context, chat *domain.Chat) error
	CreateDirectChat(ctx context.Context, chatID, userID, friendID string) error
	GetChat(ctx context.Context, chatID string) (*domain.Chat, error)
	GetChatByInviteCode(ctx context.Context, code string) (*domain.Chat, error)
	AddMember(ctx context.Context, chatID, userID string) error
	GetMembers(ctx context.Context, chatID string) ([]string, error)
	IsMember(ctx context.Context, chatID, userID string) (bool, error)
	ListUserChats(ctx context.Context, userID string) ([]domain.Chat, error)
}

type MessageRepoIn interface {
	InsertMessage(ctx context.Context, msg *domain.Message) error
	ListRecent(ctx context.Context, chatID string, limit int) ([]domain.Message, error)
	GetMessage(ctx context.Context, messageID string) (*domain.Message, error)
	ToggleReaction(ctx context.Context, chatID string, rec *domain.ReactionRecord) (bool, domain.Reactions, error)
	GetTodayStats(ctx context.Context, userID string) (*domain.TodayStats, error)
}

// PresenceMirrorIn exposes liveness to sibling services that cannot see
// the in-process hub.
type PresenceMirrorIn interface {
	SetOnline(ctx context.Context, userID string) error
	SetOffline(ctx context.Context, userID string) error
}

// Notifier is the email/push collaborator. Delivery is external; the
// core only hands over (recipient, kind, payload).
type Notifier interface {
	Send(ctx context.Context, recipient, kind string, payload map[string]any) error
}

// BlobStore is the media storage collaborator; it returns opaque URLs.
type BlobStore interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ssaritan18/clubchat/internal/domain"
	"github.com/ssaritan18/clubchat/internal/utils"
)

var directChatNamespace = uuid.MustParse("6f1c24b2-93e7-4de4-9a92-75c0c0a3b8f1")

// DirectChatID derives the chat id from the sorted user pair, so both
// sides of a friendship always resolve to the same chat without
// coordination.
func DirectChatID(userID, otherID string) string {
	a, b := userID, otherID
	if b < a {
		a, b = b, a
	}
	return uuid.NewSHA1(directChatNamespace, []byte(a+":"+b)).String()
}

type ChatService struct {
	chats ChatRepoIn
	users UserRepoIn
}

func NewChatService(chats ChatRepoIn, users UserRepoIn) *ChatService {
	return &ChatService{
		chats: chats,
		users: users,
	}
}

const inviteCodeAttempts = 5

func (cs *ChatService) CreateGroup(ctx context.Context, creatorID, title string) (*domain.Chat, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.ErrInvalidRequest.WithMessage("Title is required")
	}

	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		code, err := utils.GenerateInviteCode()
		if err != nil {
			return nil, err
		}

		chat := &domain.Chat{
			ID:         uuid.NewString(),
			Type:       domain.ChatGroup,
			Title:      &title,
			InviteCode: &code,
			CreatedBy:  creatorID,
			CreatedAt:  time.Now().UTC(),
			Members:    []string{creatorID},
		}

		err = cs.chats.CreateGroupChat(ctx, chat)
		if err == nil {
			return chat, nil
		}

		var appErr *domain.AppError
		if errors.As(err, &appErr) && appErr.Code == domain.ErrConflict.Code {
			slog.Warn("Invite code collision, retrying", "attempt", attempt)
			continue
		}
		return nil, err
	}
	return nil, domain.ErrInternalServerError.WithMessage("Could not allocate invite code")
}

// JoinByInvite is idempotent: joining a group you are already in
// simply returns it.
func (cs *ChatService) JoinByInvite(ctx context.Context, userID, code string) (*domain.Chat, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != utils.InviteCodeLength {
		return nil, domain.ErrNotFound.WithMessage("Invalid invite code")
	}

	chat, err := cs.chats.GetChatByInviteCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := cs.chats.AddMember(ctx, chat.ID, userID); err != nil {
		return nil, err
	}

	return cs.chats.GetChat(ctx, chat.ID)
}

// OpenDirect resolves (and lazily creates) the direct chat between two
// mutual friends. Symmetric and idempotent thanks to the deterministic
// id.
func (cs *ChatService) OpenDirect(ctx context.Context, userID, friendID string) (*domain.Chat, error) {
	if userID == friendID {
		return nil, domain.ErrInvalidRequest.WithMessage("Cannot open a direct chat with yourself")
	}

	friends, err := cs.users.AreFriends(ctx, userID, friendID)
	if err != nil {
		return nil, err
	}
	if !friends {
		return nil, domain.ErrForbidden.WithMessage("Direct chats require friendship")
	}

	chatID := DirectChatID(userID, friendID)
	if err := cs.chats.CreateDirectChat(ctx, chatID, userID, friendID); err != nil {
		return nil, err
	}

	return cs.chats.GetChat(ctx, chatID)
}

func (cs *ChatService) ListChats(ctx context.Context, userID string) ([]domain.Chat, error) {
	return cs.chats.ListUserChats(ctx, userID)
}

// RequireMember gates chat operations: forbidden for non-members of an
// existing chat, not-found for a missing chat.
func (cs *ChatService) RequireMember(ctx context.Context, userID, chatID string) error {
	member, err := cs.chats.IsMember(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if member {
		return nil
	}

	if _, err := cs.chats.GetChat(ctx, chatID); err != nil {
		return err
	}
	return domain.ErrForbidden.WithMessage("Not a member of this chat")
}

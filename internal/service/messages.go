package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ssaritan18/clubchat/internal/domain"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 100
)

type MessageService struct {
	msgs    MessageRepoIn
	chats   *ChatService
	users   UserRepoIn
	router  *Router
	limiter *RateLimiter
}

func NewMessageService(msgs MessageRepoIn, chats *ChatService, users UserRepoIn, router *Router, limiter *RateLimiter) *MessageService {
	return &MessageService{
		msgs:    msgs,
		chats:   chats,
		users:   users,
		router:  router,
		limiter: limiter,
	}
}

func validatePayload(in *SendMessageInput) error {
	switch in.Type {
	case domain.MessageText:
		if strings.TrimSpace(in.Text) == "" {
			return domain.ErrInvalidRequest.WithMessage("Text must not be empty")
		}
	case domain.MessageVoice:
		if in.VoiceURL == "" || in.DurationMs <= 0 {
			return domain.ErrInvalidRequest.WithMessage("Voice messages need a url and a positive duration")
		}
	case domain.MessageMedia:
		if in.MediaURL == "" {
			return domain.ErrInvalidRequest.WithMessage("Media messages need a url")
		}
	default:
		return domain.ErrInvalidRequest.WithMessage("Unknown message type")
	}
	return nil
}

// AppendMessage persists the normalized envelope and fans it out to
// the other chat members. The sender gets the same envelope back
// synchronously, even when nobody is reachable.
func (ms *MessageService) AppendMessage(ctx context.Context, authorID, chatID string, in *SendMessageInput) (*domain.Message, error) {
	class := ClassMessageSend
	if in.Type == domain.MessageVoice {
		class = ClassVoiceUpload
	}
	if !ms.limiter.Admit(authorID, class) {
		return nil, domain.ErrRateLimited
	}

	if err := ms.chats.RequireMember(ctx, authorID, chatID); err != nil {
		return nil, err
	}

	if err := validatePayload(in); err != nil {
		return nil, err
	}

	author, err := ms.users.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	// timestamps are assigned by the store inside the per-chat
	// serialized append
	msg := &domain.Message{
		ID:       uuid.NewString(),
		ChatID:   chatID,
		AuthorID: authorID,
		// snapshot of the display name; history must not change when
		// the author renames later
		AuthorName: author.Name,
		Type:       in.Type,
		Status:     domain.StatusSent,
		Text:       strings.TrimSpace(in.Text),
		VoiceURL:   in.VoiceURL,
		DurationMs: in.DurationMs,
		MediaURL:   in.MediaURL,
	}
	if msg.Type != domain.MessageText {
		msg.Text = ""
	}
	if msg.Type != domain.MessageVoice {
		msg.VoiceURL = ""
		msg.DurationMs = 0
	}
	if msg.Type != domain.MessageMedia {
		msg.MediaURL = ""
	}

	if err := ms.msgs.InsertMessage(ctx, msg); err != nil {
		slog.Error("Failed to persist message", "chat_id", chatID, "error", err)
		return nil, err
	}

	ms.router.SendToChat(ctx, chatID, &NewMessageEvent{
		Type:    domain.EventNewMessage,
		ChatID:  chatID,
		Message: msg,
	}, authorID)

	return msg, nil
}

// ListMessages returns the most recent window in ascending time order.
func (ms *MessageService) ListMessages(ctx context.Context, userID, chatID string, limit int) ([]domain.Message, error) {
	if err := ms.chats.RequireMember(ctx, userID, chatID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	messages, err := ms.msgs.ListRecent(ctx, chatID, limit)
	if err != nil {
		return nil, err
	}

	// repo returns newest first
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// ReactToMessage toggles the (message, user, kind) record and
// broadcasts the updated counters to the whole chat.
func (ms *MessageService) ReactToMessage(ctx context.Context, userID, chatID, messageID string, kind domain.ReactionKind) (bool, domain.Reactions, error) {
	if !domain.ValidReactionKind(kind) {
		return false, domain.Reactions{}, domain.ErrInvalidRequest.WithMessage("Unknown reaction type")
	}

	if !ms.limiter.Admit(userID, ClassReactionToggle) {
		return false, domain.Reactions{}, domain.ErrRateLimited
	}

	if err := ms.chats.RequireMember(ctx, userID, chatID); err != nil {
		return false, domain.Reactions{}, err
	}

	msg, err := ms.msgs.GetMessage(ctx, messageID)
	if err != nil {
		return false, domain.Reactions{}, err
	}
	if msg.ChatID != chatID {
		return false, domain.Reactions{}, domain.ErrNotFound
	}

	rec := &domain.ReactionRecord{
		ID:        uuid.NewString(),
		MessageID: messageID,
		UserID:    userID,
		Type:      kind,
		CreatedAt: time.Now().UTC(),
	}

	reacted, counters, err := ms.msgs.ToggleReaction(ctx, chatID, rec)
	if err != nil {
		return false, domain.Reactions{}, err
	}

	ms.router.SendToChat(ctx, chatID, &MessageReactionEvent{
		Type:             domain.EventMessageReaction,
		ChatID:           chatID,
		MessageID:        messageID,
		ReactionType:     kind,
		UserID:           userID,
		UpdatedReactions: counters,
	}, "")

	return reacted, counters, nil
}

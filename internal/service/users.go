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

type UserService struct {
	users    UserRepoIn
	msgs     MessageRepoIn
	router   *Router
	notifier Notifier

	jwtSecret string
	tokenTTL  time.Duration
}

func NewUserService(users UserRepoIn, msgs MessageRepoIn, router *Router, notifier Notifier, jwtSecret string, tokenTTL time.Duration) *UserService {
	return &UserService{
		users:     users,
		msgs:      msgs,
		router:    router,
		notifier:  notifier,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

func (us *UserService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" || email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidRequest.WithMessage("Name and email are required")
	}
	if len(password) < 6 {
		return nil, domain.ErrInvalidRequest.WithMessage("Password must be at least 6 characters")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		slog.Error("Failed to hash password", "error", err)
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := us.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	if err := us.notifier.Send(ctx, email, "verification", map[string]any{
		"user_id": user.ID,
		"name":    user.Name,
	}); err != nil {
		slog.Warn("Failed to send verification notification", "user_id", user.ID, "error", err)
	}

	return user, nil
}

func (us *UserService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := us.users.GetUserByEmail(ctx, email)
	if err != nil {
		var appErr *domain.AppError
		if errors.As(err, &appErr) && appErr.Code == domain.ErrNotFound.Code {
			return "", domain.ErrInvalidToken.WithMessage("Invalid email or password")
		}
		return "", err
	}

	if !utils.CheckPassword(user.PasswordHash, password) {
		return "", domain.ErrInvalidToken.WithMessage("Invalid email or password")
	}

	return utils.IssueToken(user.ID, user.Email, us.jwtSecret, us.tokenTTL)
}

func (us *UserService) Me(ctx context.Context, userID string) (*domain.User, *domain.TodayStats, error) {
	user, err := us.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	stats, err := us.msgs.GetTodayStats(ctx, userID)
	if err != nil {
		slog.Error("Failed to get today stats", "user_id", userID, "error", err)
		return nil, nil, err
	}
	return user, stats, nil
}

// FindUser treats queries containing '@' as exact email lookups and
// anything else as a name search capped at two matches.
func (us *UserService) FindUser(ctx context.Context, query string) (*FindUserResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidRequest.WithMessage("Empty query")
	}

	if strings.Contains(query, "@") {
		user, err := us.users.GetUserByEmail(ctx, query)
		if err != nil {
			return nil, err
		}
		return &FindUserResult{User: user}, nil
	}

	matches, err := us.users.SearchUsersByName(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, domain.ErrNotFound
	}
	return &FindUserResult{
		User:      &matches[0],
		Ambiguous: len(matches) > 1,
	}, nil
}

// CreateFriendRequest is idempotent: an existing pending request for
// the same ordered pair is returned instead of duplicated.
func (us *UserService) CreateFriendRequest(ctx context.Context, fromUserID, toEmail string) (*domain.FriendRequest, error) {
	target, err := us.users.GetUserByEmail(ctx, toEmail)
	if err != nil {
		return nil, err
	}

	if target.ID == fromUserID {
		return nil, domain.ErrInvalidRequest.WithMessage("Cannot send a friend request to yourself")
	}

	if existing, err := us.users.GetPendingRequest(ctx, fromUserID, target.ID); err == nil {
		return existing, nil
	}

	req := &domain.FriendRequest{
		ID:         uuid.NewString(),
		FromUserID: fromUserID,
		ToUserID:   target.ID,
		Status:     domain.RequestPending,
		CreatedAt:  time.Now().UTC(),
	}

	if err := us.users.CreateFriendRequest(ctx, req); err != nil {
		var appErr *domain.AppError
		if errors.As(err, &appErr) && appErr.Code == domain.ErrConflict.Code {
			// lost the race, someone inserted the pending row first
			return us.users.GetPendingRequest(ctx, fromUserID, target.ID)
		}
		return nil, err
	}

	sender, err := us.users.GetUserByID(ctx, fromUserID)
	if err != nil {
		slog.Error("Failed to load sender for notification", "user_id", fromUserID, "error", err)
		return req, nil
	}

	us.router.SendToUser(target.ID, &FriendRequestIncomingEvent{
		Type:      domain.EventRequestIncoming,
		RequestID: req.ID,
		From:      userRef(sender),
	})

	return req, nil
}

// AcceptFriendRequest performs the compound transition: request to
// ACCEPTED, both friend sets linked, direct chat materialized. Returns
// the deterministic direct chat id.
func (us *UserService) AcceptFriendRequest(ctx context.Context, userID, requestID string) (string, error) {
	req, err := us.users.GetFriendRequest(ctx, requestID)
	if err != nil {
		return "", err
	}
	if req.ToUserID != userID {
		return "", domain.ErrNotFound
	}
	if req.Status != domain.RequestPending {
		return "", domain.ErrNotFound.WithMessage("Request is not pending")
	}

	chatID := DirectChatID(req.FromUserID, req.ToUserID)
	if err := us.users.AcceptFriendRequest(ctx, req, chatID); err != nil {
		return "", err
	}

	accepter, err := us.users.GetUserByID(ctx, userID)
	if err != nil {
		slog.Error("Failed to load accepter for notification", "user_id", userID, "error", err)
		return chatID, nil
	}

	us.router.SendToUser(req.FromUserID, &FriendRequestResolvedEvent{
		Type: domain.EventRequestAccepted,
		By:   userRef(accepter),
	})

	dirty := &FriendsListUpdateEvent{Type: domain.EventFriendsListDirty}
	us.router.SendToUser(req.FromUserID, dirty)
	us.router.SendToUser(req.ToUserID, dirty)

	return chatID, nil
}

func (us *UserService) RejectFriendRequest(ctx context.Context, userID, requestID string) error {
	req, err := us.users.GetFriendRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req.ToUserID != userID {
		return domain.ErrNotFound
	}

	if err := us.users.RejectFriendRequest(ctx, req.ID); err != nil {
		return err
	}

	rejecter, err := us.users.GetUserByID(ctx, userID)
	if err != nil {
		slog.Error("Failed to load rejecter for notification", "user_id", userID, "error", err)
		return nil
	}

	us.router.SendToUser(req.FromUserID, &FriendRequestResolvedEvent{
		Type: domain.EventRequestRejected,
		By:   userRef(rejecter),
	})
	return nil
}

func (us *UserService) ListFriends(ctx context.Context, userID string) ([]domain.User, error) {
	return us.users.ListFriends(ctx, userID)
}

func (us *UserService) ListIncomingRequests(ctx context.Context, userID string) ([]domain.FriendRequest, error) {
	return us.users.ListIncomingRequests(ctx, userID)
}

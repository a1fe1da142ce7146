package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/ssaritan18/clubchat/internal/domain"
)

type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{
		db: db,
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (ur *UserRepo) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, name, password_hash, verified, created_at, updated_at)
		VALUES ($1, LOWER($2), $3, $4, $5, $6, $6);
	`

	_, err := ur.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, user.Verified, user.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrConflict.WithMessage("Email already registered")
	}
	return err
}

func (ur *UserRepo) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT * FROM users WHERE email = LOWER($1);
	`

	var user domain.User
	err := ur.db.GetContext(ctx, &user, query, email)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (ur *UserRepo) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `
		SELECT * FROM users WHERE id = $1;
	`

	var user domain.User
	err := ur.db.GetContext(ctx, &user, query, userID)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// escapeLikePattern neutralizes ILIKE metacharacters so user input
// only ever matches literally.
func escapeLikePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(q)
}

// SearchUsersByName matches case-insensitive substrings, capped at two
// rows so the caller can detect ambiguity.
func (ur *UserRepo) SearchUsersByName(ctx context.Context, q string) ([]domain.User, error) {
	query := `
		SELECT * FROM users
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name ASC
		LIMIT 2;
	`

	var users []domain.User
	err := ur.db.SelectContext(ctx, &users, query, escapeLikePattern(q))
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	return users, nil
}

// friend requests

func (ur *UserRepo) CreateFriendRequest(ctx context.Context, req *domain.FriendRequest) error {
	query := `
		INSERT INTO friend_requests (id, from_user_id, to_user_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5);
	`

	_, err := ur.db.ExecContext(ctx, query,
		req.ID, req.FromUserID, req.ToUserID, req.Status, req.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

func (ur *UserRepo) GetPendingRequest(ctx context.Context, fromUserID, toUserID string) (*domain.FriendRequest, error) {
	query := `
		SELECT * FROM friend_requests
		WHERE from_user_id = $1 AND to_user_id = $2 AND status = 'PENDING';
	`

	var req domain.FriendRequest
	err := ur.db.GetContext(ctx, &req, query, fromUserID, toUserID)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (ur *UserRepo) GetFriendRequest(ctx context.Context, requestID string) (*domain.FriendRequest, error) {
	query := `
		SELECT * FROM friend_requests WHERE id = $1;
	`

	var req domain.FriendRequest
	err := ur.db.GetContext(ctx, &req, query, requestID)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (ur *UserRepo) ListIncomingRequests(ctx context.Context, userID string) ([]domain.FriendRequest, error) {
	query := `
		SELECT * FROM friend_requests
		WHERE to_user_id = $1 AND status = 'PENDING'
		ORDER BY created_at DESC;
	`

	var requests []domain.FriendRequest
	err := ur.db.SelectContext(ctx, &requests, query, userID)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	return requests, nil
}

// AcceptFriendRequest flips the request to ACCEPTED, links both friend
// sets and materializes the direct chat in one transaction, so readers
// observe all three effects or none.
func (ur *UserRepo) AcceptFriendRequest(ctx context.Context, req *domain.FriendRequest, directChatID string) error {
	tx, err := ur.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE friend_requests
		SET status = 'ACCEPTED', updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING';
	`

	res, err := tx.ExecContext(ctx, query, req.ID)
	if err != nil {
		return err
	}

	rowsAff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAff == 0 {
		return domain.ErrNotFound.WithMessage("Request is not pending")
	}

	query = `
		INSERT INTO friendships (user_id, friend_id)
		VALUES ($1, $2), ($2, $1)
		ON CONFLICT DO NOTHING;
	`

	if _, err := tx.ExecContext(ctx, query, req.FromUserID, req.ToUserID); err != nil {
		return err
	}

	query = `
		INSERT INTO chats (id, type, created_by, created_at)
		VALUES ($1, 'DIRECT', $2, NOW())
		ON CONFLICT (id) DO NOTHING;
	`

	if _, err := tx.ExecContext(ctx, query, directChatID, req.FromUserID); err != nil {
		return err
	}

	query = `
		INSERT INTO chat_members (chat_id, user_id)
		VALUES ($1, $2), ($1, $3)
		ON CONFLICT DO NOTHING;
	`

	if _, err := tx.ExecContext(ctx, query, directChatID, req.FromUserID, req.ToUserID); err != nil {
		return err
	}

	return tx.Commit()
}

func (ur *UserRepo) RejectFriendRequest(ctx context.Context, requestID string) error {
	query := `
		UPDATE friend_requests
		SET status = 'REJECTED', updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING';
	`

	res, err := ur.db.ExecContext(ctx, query, requestID)
	if err != nil {
		return err
	}

	rowsAff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAff == 0 {
		return domain.ErrNotFound.WithMessage("Request is not pending")
	}
	return nil
}

// friendships

func (ur *UserRepo) ListFriends(ctx context.Context, userID string) ([]domain.User, error) {
	query := `
		SELECT u.*
		FROM users u
		JOIN friendships f ON u.id = f.friend_id
		WHERE f.user_id = $1
		ORDER BY u.name ASC;
	`

	var friends []domain.User
	err := ur.db.SelectContext(ctx, &friends, query, userID)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	return friends, nil
}

func (ur *UserRepo) GetFriendIDs(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT friend_id FROM friendships WHERE user_id = $1;
	`

	var friendIDs []string
	err := ur.db.SelectContext(ctx, &friendIDs, query, userID)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	return friendIDs, nil
}

func (ur *UserRepo) AreFriends(ctx context.Context, userID, otherID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM friendships WHERE user_id = $1 AND friend_id = $2
		);
	`

	var exists bool
	if err := ur.db.GetContext(ctx, &exists, query, userID, otherID); err != nil {
		return false, err
	}
	return exists, nil
}

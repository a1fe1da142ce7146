package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/ssaritan18/clubchat/internal/domain"
)

type ChatRepo struct {
	db *sqlx.DB
}

func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{
		db: db,
	}
}

type chatRow struct {
	ID         string          `db:"id"`
	Type       domain.ChatType `db:"type"`
	Title      *string         `db:"title"`
	InviteCode *string         `db:"invite_code"`
	CreatedBy  string          `db:"created_by"`
	CreatedAt  sql.NullTime    `db:"created_at"`
	Members    pq.StringArray  `db:"members"`
}

func (r chatRow) toDomain() domain.Chat {
	chat := domain.Chat{
		ID:         r.ID,
		Type:       r.Type,
		Title:      r.Title,
		InviteCode: r.InviteCode,
		CreatedBy:  r.CreatedBy,
		Members:    []string(r.Members),
	}
	if r.CreatedAt.Valid {
		chat.CreatedAt = r.CreatedAt.Time
	}
	if chat.Members == nil {
		chat.Members = []string{}
	}
	return chat
}

const chatSelect = `
	SELECT
		c.id,
		c.type,
		c.title,
		c.invite_code,
		c.created_by,
		c.created_at,
		ARRAY(
			SELECT cm.user_id FROM chat_members cm
			WHERE cm.chat_id = c.id
			ORDER BY cm.user_id
		) AS members
	FROM chats c
`

func (cr *ChatRepo) CreateGroupChat(ctx context.Context, chat *domain.Chat) error {
	tx, err := cr.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO chats (id, type, title, invite_code, created_by, created_at)
		VALUES ($1, 'GROUP', $2, $3, $4, $5);
	`

	_, err = tx.ExecContext(ctx, query,
		chat.ID, chat.Title, chat.InviteCode, chat.CreatedBy, chat.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	if err != nil {
		return err
	}

	query = `
		INSERT INTO chat_members (chat_id, user_id)
		VALUES ($1, $2);
	`

	if _, err := tx.ExecContext(ctx, query, chat.ID, chat.CreatedBy); err != nil {
		return err
	}

	return tx.Commit()
}

// CreateDirectChat is idempotent: the deterministic id makes concurrent
// calls for the same pair collapse onto one row.
func (cr *ChatRepo) CreateDirectChat(ctx context.Context, chatID, userID, friendID string) error {
	tx, err := cr.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO chats (id, type, created_by, created_at)
		VALUES ($1, 'DIRECT', $2, NOW())
		ON CONFLICT (id) DO NOTHING;
	`

	if _, err := tx.ExecContext(ctx, query, chatID, userID); err != nil {
		return err
	}

	query = `
		INSERT INTO chat_members (chat_id, user_id)
		VALUES ($1, $2), ($1, $3)
		ON CONFLICT DO NOTHING;
	`

	if _, err := tx.ExecContext(ctx, query, chatID, userID, friendID); err != nil {
		return err
	}

	return tx.Commit()
}

func (cr *ChatRepo) GetChat(ctx context.Context, chatID string) (*domain.Chat, error) {
	query := chatSelect + `WHERE c.id = $1;`

	var row chatRow
	err := cr.db.GetContext(ctx, &row, query, chatID)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	chat := row.toDomain()
	return &chat, nil
}

func (cr *ChatRepo) GetChatByInviteCode(ctx context.Context, code string) (*domain.Chat, error) {
	query := chatSelect + `WHERE c.invite_code = $1;`

	var row chatRow
	err := cr.db.GetContext(ctx, &row, query, code)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound.WithMessage("Invalid invite code")
	}
	if err != nil {
		return nil, err
	}

	chat := row.toDomain()
	return &chat, nil
}

func (cr *ChatRepo) AddMember(ctx context.Context, chatID, userID string) error {
	query := `
		INSERT INTO chat_members (chat_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING;
	`

	_, err := cr.db.ExecContext(ctx, query, chatID, userID)
	return err
}

func (cr *ChatRepo) GetMembers(ctx context.Context, chatID string) ([]string, error) {
	query := `
		SELECT user_id FROM chat_members WHERE chat_id = $1 ORDER BY user_id;
	`

	var members []string
	err := cr.db.SelectContext(ctx, &members, query, chatID)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	return members, nil
}

func (cr *ChatRepo) IsMember(ctx context.Context, chatID, userID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM chat_members WHERE chat_id = $1 AND user_id = $2
		);
	`

	var exists bool
	if err := cr.db.GetContext(ctx, &exists, query, chatID, userID); err != nil {
		return false, err
	}
	return exists, nil
}

func (cr *ChatRepo) ListUserChats(ctx context.Context, userID string) ([]domain.Chat, error) {
	query := chatSelect + `
		JOIN chat_members m ON m.chat_id = c.id
		WHERE m.user_id = $1
		ORDER BY c.created_at DESC;
	`

	var rows []chatRow
	err := cr.db.SelectContext(ctx, &rows, query, userID)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	chats := make([]domain.Chat, len(rows))
	for i, row := range rows {
		chats[i] = row.toDomain()
	}
	return chats, nil
}

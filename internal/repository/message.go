package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/ssaritan18/clubchat/internal/domain"
)

const (
	recentCacheSize = 50
	recentCacheTTL  = 10 * time.Minute
)

type MessageRepo struct {
	db    *sqlx.DB
	cache *redis.Client
	seq   *chatSequencer
}

func NewMessageRepo(db *sqlx.DB, cache *redis.Client) *MessageRepo {
	return &MessageRepo{
		db:    db,
		cache: cache,
		seq:   newChatSequencer(),
	}
}

// chatSequencer serializes appends per chat. The timestamp is handed
// out inside the critical section, so insert order, cache order and
// timestamp order always agree for one chat.
type chatSequencer struct {
	mu    sync.Mutex
	chats map[string]*sync.Mutex
	now   func() time.Time
}

func newChatSequencer() *chatSequencer {
	return &chatSequencer{
		chats: make(map[string]*sync.Mutex),
		now:   time.Now,
	}
}

func (s *chatSequencer) do(chatID string, fn func(now time.Time) error) error {
	s.mu.Lock()
	l, ok := s.chats[chatID]
	if !ok {
		l = &sync.Mutex{}
		s.chats[chatID] = l
	}
	s.mu.Unlock()

	l.Lock()
	defer l.Unlock()
	return fn(s.now().UTC())
}

type messageRow struct {
	ID              string               `db:"id"`
	ChatID          string               `db:"chat_id"`
	AuthorID        string               `db:"author_id"`
	AuthorName      string               `db:"author_name"`
	Type            domain.MessageType   `db:"type"`
	Status          domain.MessageStatus `db:"status"`
	Text            string               `db:"text"`
	VoiceURL        string               `db:"voice_url"`
	DurationMs      int                  `db:"duration_ms"`
	MediaURL        string               `db:"media_url"`
	LikeCount       int                  `db:"like_count"`
	HeartCount      int                  `db:"heart_count"`
	ClapCount       int                  `db:"clap_count"`
	StarCount       int                  `db:"star_count"`
	CreatedAt       time.Time            `db:"created_at"`
	ServerTimestamp time.Time            `db:"server_timestamp"`
}

func (r messageRow) toDomain() domain.Message {
	return domain.Message{
		ID:         r.ID,
		ChatID:     r.ChatID,
		AuthorID:   r.AuthorID,
		AuthorName: r.AuthorName,
		Type:       r.Type,
		Status:     r.Status,
		Text:       r.Text,
		VoiceURL:   r.VoiceURL,
		DurationMs: r.DurationMs,
		MediaURL:   r.MediaURL,
		Reactions: domain.Reactions{
			Like:  r.LikeCount,
			Heart: r.HeartCount,
			Clap:  r.ClapCount,
			Star:  r.StarCount,
		},
		CreatedAt:       r.CreatedAt,
		ServerTimestamp: r.ServerTimestamp,
	}
}

func recentKey(chatID string) string {
	return fmt.Sprintf("chat:recent:%s", chatID)
}

// InsertMessage appends to the chat's log. Appends within one chat
// run through the sequencer, which also assigns the server timestamp.
func (mr *MessageRepo) InsertMessage(ctx context.Context, msg *domain.Message) error {
	return mr.seq.do(msg.ChatID, func(now time.Time) error {
		msg.CreatedAt = now
		msg.ServerTimestamp = now

		query := `
			INSERT INTO messages (
				id, chat_id, author_id, author_name,
				type, status, text, voice_url, duration_ms, media_url,
				created_at, server_timestamp
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
		`

		_, err := mr.db.ExecContext(ctx, query,
			msg.ID, msg.ChatID, msg.AuthorID, msg.AuthorName,
			msg.Type, msg.Status, msg.Text, msg.VoiceURL, msg.DurationMs, msg.MediaURL,
			msg.CreatedAt, msg.ServerTimestamp)
		if err != nil {
			return err
		}

		mr.pushRecent(ctx, msg)
		return nil
	})
}

func (mr *MessageRepo) pushRecent(ctx context.Context, msg *domain.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	key := recentKey(msg.ChatID)
	pipe := mr.cache.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, recentCacheSize-1)
	pipe.Expire(ctx, key, recentCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("Failed to update recent cache", "chat_id", msg.ChatID, "error", err)
	}
}

// ListRecent returns up to limit messages, newest first. The hot
// window is served from redis; anything larger falls through to
// postgres.
func (mr *MessageRepo) ListRecent(ctx context.Context, chatID string, limit int) ([]domain.Message, error) {
	if limit <= recentCacheSize {
		if cached, ok := mr.recentFromCache(ctx, chatID, limit); ok {
			return cached, nil
		}
	}

	query := `
		SELECT * FROM messages
		WHERE chat_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2;
	`

	var rows []messageRow
	err := mr.db.SelectContext(ctx, &rows, query, chatID, limit)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	messages := make([]domain.Message, len(rows))
	for i, row := range rows {
		messages[i] = row.toDomain()
	}
	return messages, nil
}

func (mr *MessageRepo) recentFromCache(ctx context.Context, chatID string, limit int) ([]domain.Message, bool) {
	entries, err := mr.cache.LRange(ctx, recentKey(chatID), 0, int64(limit-1)).Result()
	if err != nil || len(entries) < limit {
		// A short list may just mean a short chat, but we cannot tell
		// that apart from a cold cache here.
		return nil, false
	}

	messages := make([]domain.Message, 0, len(entries))
	for _, entry := range entries {
		var msg domain.Message
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			return nil, false
		}
		messages = append(messages, msg)
	}
	return messages, true
}

func (mr *MessageRepo) GetMessage(ctx context.Context, messageID string) (*domain.Message, error) {
	query := `
		SELECT * FROM messages WHERE id = $1;
	`

	var row messageRow
	err := mr.db.GetContext(ctx, &row, query, messageID)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	msg := row.toDomain()
	return &msg, nil
}

var reactionColumns = map[domain.ReactionKind]string{
	domain.ReactionLike:  "like_count",
	domain.ReactionHeart: "heart_count",
	domain.ReactionClap:  "clap_count",
	domain.ReactionStar:  "star_count",
}

// ToggleReaction inserts-and-increments or deletes-and-decrements in a
// single transaction so the counter never drifts from the records.
func (mr *MessageRepo) ToggleReaction(ctx context.Context, chatID string, rec *domain.ReactionRecord) (bool, domain.Reactions, error) {
	column, ok := reactionColumns[rec.Type]
	if !ok {
		return false, domain.Reactions{}, domain.ErrInvalidRequest.WithMessage("Unknown reaction type")
	}

	tx, err := mr.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return false, domain.Reactions{}, err
	}
	defer tx.Rollback()

	query := `
		DELETE FROM message_reactions
		WHERE message_id = $1 AND user_id = $2 AND type = $3;
	`

	res, err := tx.ExecContext(ctx, query, rec.MessageID, rec.UserID, rec.Type)
	if err != nil {
		return false, domain.Reactions{}, err
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return false, domain.Reactions{}, err
	}

	reacted := deleted == 0
	if reacted {
		query = `
			INSERT INTO message_reactions (id, message_id, user_id, type, created_at)
			VALUES ($1, $2, $3, $4, $5);
		`

		if _, err := tx.ExecContext(ctx, query,
			rec.ID, rec.MessageID, rec.UserID, rec.Type, rec.CreatedAt); err != nil {
			return false, domain.Reactions{}, err
		}
	}

	delta := 1
	if !reacted {
		delta = -1
	}

	// column comes from the fixed map above, never from input
	query = fmt.Sprintf(`
		UPDATE messages
		SET %s = GREATEST(%s + $1, 0)
		WHERE id = $2
		RETURNING like_count, heart_count, clap_count, star_count;
	`, column, column)

	var counters struct {
		Like  int `db:"like_count"`
		Heart int `db:"heart_count"`
		Clap  int `db:"clap_count"`
		Star  int `db:"star_count"`
	}
	if err := tx.GetContext(ctx, &counters, query, delta, rec.MessageID); err != nil {
		if err == sql.ErrNoRows {
			return false, domain.Reactions{}, domain.ErrNotFound
		}
		return false, domain.Reactions{}, err
	}

	if err := tx.Commit(); err != nil {
		return false, domain.Reactions{}, err
	}

	// counters changed, the cached window is stale now
	if err := mr.cache.Del(ctx, recentKey(chatID)).Err(); err != nil {
		slog.Warn("Failed to invalidate recent cache", "chat_id", chatID, "error", err)
	}

	return reacted, domain.Reactions{
		Like:  counters.Like,
		Heart: counters.Heart,
		Clap:  counters.Clap,
		Star:  counters.Star,
	}, nil
}

func (mr *MessageRepo) GetTodayStats(ctx context.Context, userID string) (*domain.TodayStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM messages
				WHERE author_id = $1 AND created_at >= date_trunc('day', NOW())) AS messages_sent,
			(SELECT COUNT(*) FROM message_reactions
				WHERE user_id = $1 AND created_at >= date_trunc('day', NOW())) AS reactions_given;
	`

	var stats domain.TodayStats
	if err := mr.db.GetContext(ctx, &stats, query, userID); err != nil {
		return nil, err
	}
	return &stats, nil
}

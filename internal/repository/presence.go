package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PresenceRepo mirrors hub-derived liveness into redis so read-only
// siblings can observe it. The TTL guards against a crashed node
// leaving users online forever; heartbeats re-arm it.
type PresenceRepo struct {
	redis *redis.Client
}

func NewPresenceRepo(redis *redis.Client) *PresenceRepo {
	return &PresenceRepo{
		redis: redis,
	}
}

const onlineTTL = 80 * time.Second

func onlineKey(userID string) string {
	return fmt.Sprintf("online:%s", userID)
}

func (pr *PresenceRepo) SetOnline(ctx context.Context, userID string) error {
	return pr.redis.Set(ctx, onlineKey(userID), true, onlineTTL).Err()
}

func (pr *PresenceRepo) SetOffline(ctx context.Context, userID string) error {
	return pr.redis.Del(ctx, onlineKey(userID)).Err()
}

func (pr *PresenceRepo) IsOnline(ctx context.Context, userID string) (bool, error) {
	v, err := pr.redis.Get(ctx, onlineKey(userID)).Bool()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v, nil
}

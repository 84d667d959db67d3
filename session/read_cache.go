package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReadCache mirrors each user's read notification ids in a redis set and
// throttles re-syncs from the backend with a SETNX marker.
type ReadCache struct {
	rdb      *redis.Client
	ttl      time.Duration
	throttle time.Duration
}

func NewReadCache(rdb *redis.Client, ttl, throttle time.Duration) *ReadCache {
	return &ReadCache{rdb: rdb, ttl: ttl, throttle: throttle}
}

func readKey(uid string) string { return fmt.Sprintf("lend:read:%s", uid) }
func syncKey(uid string) string { return fmt.Sprintf("lend:read_sync:%s", uid) }

func (c *ReadCache) ReadIDs(ctx context.Context, userID string) ([]string, error) {
	return c.rdb.SMembers(ctx, readKey(userID)).Result()
}

func (c *ReadCache) AddReadIDs(ctx context.Context, userID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]any, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	pipe := c.rdb.TxPipeline()
	pipe.SAdd(ctx, readKey(userID), members...)
	pipe.Expire(ctx, readKey(userID), c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// SyncDue reports true at most once per throttle window per user.
func (c *ReadCache) SyncDue(ctx context.Context, userID string) (bool, error) {
	if c.throttle <= 0 {
		return true, nil
	}
	return c.rdb.SetNX(ctx, syncKey(userID), "1", c.throttle).Result()
}

// Forget drops the cached ids and sync marker of userID.
func (c *ReadCache) Forget(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, readKey(userID), syncKey(userID)).Err()
}

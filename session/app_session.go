package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"equipment_lending_client/models"
)

var ErrNoSession = errors.New("session: not found or expired")

// AppSessionStore keeps gateway sessions in redis. A session carries the
// backend bearer token, so it never outlives that token.
type AppSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

func NewAppSessionStore(rdb *redis.Client, ttl time.Duration) *AppSessionStore {
	return &AppSessionStore{rdb: rdb, ttl: ttl, now: time.Now}
}

type AppSession struct {
	UserID    string      `json:"uid"`
	Name      string      `json:"name"`
	Role      models.Role `json:"role"`
	Token     string      `json:"tok"`
	IssuedAt  int64       `json:"iat"`
	ExpiresAt int64       `json:"exp"`
}

func (s AppSession) User() models.AuthUser {
	return models.AuthUser{ID: s.UserID, Name: s.Name, Role: s.Role, IsAdmin: s.Role == models.RoleAdmin}
}

func key(id string) string         { return fmt.Sprintf("lend:sess:%s", id) }
func userSetKey(uid string) string { return fmt.Sprintf("lend:user_sessions:%s", uid) }

func NewID() string { return uuid.NewString() }

// Create stores a session for user and returns its TTL.
func (s *AppSessionStore) Create(ctx context.Context, id string, user models.AuthUser, token string) (time.Duration, error) {
	now := s.now()
	ttl := TokenTTL(token, now, s.ttl)
	if ttl <= 0 {
		return 0, ErrTokenExpired
	}
	b, err := json.Marshal(AppSession{
		UserID:    user.ID,
		Name:      user.Name,
		Role:      user.Role,
		Token:     token,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	})
	if err != nil {
		return 0, err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key(id), b, ttl)
	pipe.SAdd(ctx, userSetKey(user.ID), id)
	pipe.Expire(ctx, userSetKey(user.ID), s.ttl)
	_, err = pipe.Exec(ctx)
	return ttl, err
}

func (s *AppSessionStore) Get(ctx context.Context, id string) (*AppSession, error) {
	b, err := s.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	var as AppSession
	if err := json.Unmarshal(b, &as); err != nil {
		return nil, err
	}
	return &as, nil
}

func (s *AppSessionStore) Delete(ctx context.Context, id string) error {
	as, _ := s.Get(ctx, id)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key(id))
	if as != nil {
		pipe.SRem(ctx, userSetKey(as.UserID), id)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// RevokeAllForUser ends every session of userID and returns their ids.
func (s *AppSessionStore) RevokeAllForUser(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.rdb.SMembers(ctx, userSetKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	pipe := s.rdb.TxPipeline()
	for _, sid := range ids {
		pipe.Del(ctx, key(sid))
	}
	pipe.Del(ctx, userSetKey(userID))
	_, err = pipe.Exec(ctx)
	return ids, err
}

package cache

import (
	"context"
	"encoding/json"
	"time"

	"tourism-chat-be/internal/entity"

	"github.com/redis/go-redis/v9"
)

const shareKeyPrefix = "shared_session:"

// ISharedSessionCache fronts anonymous shared-session reads. Entries are
// invalidated whenever a session's share state or content changes, so a
// cleared share token can never be served from here.
type ISharedSessionCache interface {
	Get(ctx context.Context, shareId string) (*entity.ChatSession, bool)
	Set(ctx context.Context, session *entity.ChatSession)
	Invalidate(ctx context.Context, shareId string)
}

type RedisShareCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisShareCache accepts a nil client; every operation then degrades
// to a cache miss.
func NewRedisShareCache(rdb *redis.Client, ttl time.Duration) *RedisShareCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisShareCache{rdb: rdb, ttl: ttl}
}

func (c *RedisShareCache) Get(ctx context.Context, shareId string) (*entity.ChatSession, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, shareKeyPrefix+shareId).Bytes()
	if err != nil {
		return nil, false
	}
	var session entity.ChatSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, false
	}
	return &session, true
}

func (c *RedisShareCache) Set(ctx context.Context, session *entity.ChatSession) {
	if c == nil || c.rdb == nil || session == nil || session.ShareId == nil || !session.IsShared {
		return
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return
	}
	// Best effort; a failed write only costs a store round trip later.
	c.rdb.Set(ctx, shareKeyPrefix+*session.ShareId, raw, c.ttl)
}

func (c *RedisShareCache) Invalidate(ctx context.Context, shareId string) {
	if c == nil || c.rdb == nil || shareId == "" {
		return
	}
	c.rdb.Del(ctx, shareKeyPrefix+shareId)
}

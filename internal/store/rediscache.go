package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zeromicro/go-zero/core/logx"
)

// CachedStore wraps a Store with a read-through Redis cache in front of
// session lookups (§4.1 "Redis is a cache, never the source of truth" design
// note). A cache miss or Redis outage always falls through to the
// underlying Store; Redis failures never fail the request. Connection
// wiring is grounded on the teacher's third_party/cache.NewRedisConnection.
type CachedStore struct {
	Store
	redis *redis.Client
	ttl   time.Duration
}

// NewCachedStore decorates inner with a Redis-backed session cache. ttl
// should be short relative to the session TTL since the cache only needs to
// absorb bursts of repeated lookups for the same token, not outlive it.
func NewCachedStore(inner Store, client *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{Store: inner, redis: client, ttl: ttl}
}

type cachedSession struct {
	Session Session `json:"session"`
	User    User    `json:"user"`
}

func sessionCacheKey(token string) string {
	return "session:" + token
}

func (c *CachedStore) LookupSession(ctx context.Context, token string, now time.Time) (Session, User, error) {
	if cached, ok := c.readThrough(ctx, token); ok {
		if cached.Session.ExpiresAt.After(now) || (cached.Session.GraceUntil != nil && cached.Session.GraceUntil.After(now)) {
			return cached.Session, cached.User, nil
		}
		// Cached entry is stale; fall through to the store for a fresh read.
	}

	session, user, err := c.Store.LookupSession(ctx, token, now)
	if err != nil {
		return Session{}, User{}, err
	}

	c.writeThrough(ctx, token, session, user)
	return session, user, nil
}

func (c *CachedStore) DeleteSession(ctx context.Context, token string) error {
	if err := c.Store.DeleteSession(ctx, token); err != nil {
		return err
	}
	if err := c.redis.Del(ctx, sessionCacheKey(token)).Err(); err != nil {
		logx.Errorf("store: evict cached session: %v", err)
	}
	return nil
}

func (c *CachedStore) ExtendOrRotateSession(ctx context.Context, oldToken string, ttl, grace time.Duration, now time.Time) (string, error) {
	newToken, err := c.Store.ExtendOrRotateSession(ctx, oldToken, ttl, grace, now)
	if err != nil {
		return "", err
	}
	// The old token now carries a grace window rather than a flat expiry;
	// drop it from cache so the next lookup re-reads the authoritative row.
	if err := c.redis.Del(ctx, sessionCacheKey(oldToken)).Err(); err != nil {
		logx.Errorf("store: evict rotated session: %v", err)
	}
	return newToken, nil
}

func (c *CachedStore) readThrough(ctx context.Context, token string) (cachedSession, bool) {
	raw, err := c.redis.Get(ctx, sessionCacheKey(token)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logx.Errorf("store: session cache read: %v", err)
		}
		return cachedSession{}, false
	}
	var out cachedSession
	if err := json.Unmarshal(raw, &out); err != nil {
		logx.Errorf("store: session cache decode: %v", err)
		return cachedSession{}, false
	}
	return out, true
}

func (c *CachedStore) writeThrough(ctx context.Context, token string, session Session, user User) {
	raw, err := json.Marshal(cachedSession{Session: session, User: user})
	if err != nil {
		logx.Errorf("store: session cache encode: %v", err)
		return
	}
	if err := c.redis.Set(ctx, sessionCacheKey(token), raw, c.ttl).Err(); err != nil {
		logx.Errorf("store: session cache write: %v", err)
	}
}

// ConnectRedis opens and validates a Redis client the same
// connect-then-ping sequence the teacher's third_party/cache package uses.
func ConnectRedis(addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logx.Errorf("Failed to connect to Redis: %v", err)
		return nil, fmt.Errorf("store: connect redis: %w", err)
	}

	logx.Info("store: connected to Redis")
	return client, nil
}

package cache

import (
	"context"
	"fmt"
	"time"
)

const sessionKeyPrefix = "booking:session:"

// DefaultSessionTTL keeps an abandoned booking page around for a day.
const DefaultSessionTTL = 24 * time.Hour

// SessionKey returns the Redis key of a booking session snapshot.
func SessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

// SessionCache stores booking session snapshots. Every save refreshes the TTL.
type SessionCache struct {
	cache *Cache
	ttl   time.Duration
}

func NewSessionCache(c *Cache, ttl time.Duration) *SessionCache {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionCache{cache: c, ttl: ttl}
}

func (s *SessionCache) Save(ctx context.Context, sessionID string, snapshot interface{}) error {
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}
	return s.cache.Set(ctx, SessionKey(sessionID), snapshot, s.ttl)
}

// Load decodes the snapshot of sessionID into dest. It returns an error
// wrapping ErrNotFound when the session expired or never existed.
func (s *SessionCache) Load(ctx context.Context, sessionID string, dest interface{}) error {
	return s.cache.Get(ctx, SessionKey(sessionID), dest)
}

func (s *SessionCache) Delete(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, SessionKey(sessionID))
}

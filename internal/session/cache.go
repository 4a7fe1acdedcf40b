package session

import (
	"sync"
	"time"

	"github.com/diewo77/techfix-admin/internal/techfix"
)

// userCache caches token-to-profile resolutions with a TTL so that hot pages
// do not hit /Auth/me on every request.
type userCache struct {
	mu  sync.RWMutex
	m   map[string]cacheEntry
	ttl time.Duration
}

type cacheEntry struct {
	user      *techfix.User
	expiresAt time.Time
}

func newUserCache(ttl time.Duration) *userCache {
	return &userCache{m: make(map[string]cacheEntry), ttl: ttl}
}

func (c *userCache) get(token string) (*techfix.User, bool) {
	c.mu.RLock()
	e, ok := c.m[token]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.user, true
}

func (c *userCache) put(token string, u *techfix.User) {
	c.mu.Lock()
	c.m[token] = cacheEntry{user: u, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *userCache) invalidate(token string) {
	c.mu.Lock()
	delete(c.m, token)
	c.mu.Unlock()
}

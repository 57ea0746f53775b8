package permission

import (
	"strings"
	"sync"
	"time"
)

const cacheKeySep = "\x00"

type decision struct {
	allowed   bool
	expiresAt time.Time
}

func (d decision) isExpired(now time.Time) bool {
	return now.After(d.expiresAt)
}

// Cache stores per (identity, passage) access decisions with a TTL.
// A zero or negative TTL disables caching entirely: every Get misses
// and Put is a no-op, so each filter pass hits the authorization
// service live.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]decision
	now     func() time.Time
}

// NewCache creates a decision cache with the given TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]decision),
		now:     time.Now,
	}
}

func cacheKey(identity, passageID string) string {
	return identity + cacheKeySep + passageID
}

// Get returns the cached decision for the pair, if present and fresh.
func (c *Cache) Get(identity, passageID string) (allowed, ok bool) {
	if c.ttl <= 0 {
		return false, false
	}

	c.mu.RLock()
	d, found := c.entries[cacheKey(identity, passageID)]
	c.mu.RUnlock()

	if !found || d.isExpired(c.now()) {
		return false, false
	}
	return d.allowed, true
}

// Put stores a decision for the pair.
func (c *Cache) Put(identity, passageID string, allowed bool) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	c.entries[cacheKey(identity, passageID)] = decision{
		allowed:   allowed,
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// Invalidate drops every cached decision for the identity in one
// atomic sweep. Returns the number of entries removed.
func (c *Cache) Invalidate(identity string) int {
	prefix := identity + cacheKeySep

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of cached decisions, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

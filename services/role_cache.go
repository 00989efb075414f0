package services

import (
	"sync"
	"time"
)

// RoleCache is a small TTL cache for user roles, consulted by the admin
// middleware so every admin request doesn't hit the users table. The clock is
// injected for tests; the interface (get/set/invalidate) is the contract a
// distributed cache would also satisfy.
type RoleCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[int]roleEntry
}

type roleEntry struct {
	role      string
	expiresAt time.Time
}

func NewRoleCache(ttl time.Duration) *RoleCache {
	return &RoleCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[int]roleEntry),
	}
}

// Get returns the cached role, if present and not expired.
func (c *RoleCache) Get(userID int) (string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expiresAt) {
		return "", false
	}
	return entry.role, true
}

// Set caches the role for the configured TTL.
func (c *RoleCache) Set(userID int, role string) {
	c.mu.Lock()
	c.entries[userID] = roleEntry{role: role, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate drops the entry, forcing the next lookup to hit the database.
func (c *RoleCache) Invalidate(userID int) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.mu.Unlock()
}

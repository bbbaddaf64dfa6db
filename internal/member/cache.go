package member

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/lmguild/lootkeeper/internal/domain"
)

// cachedMemberEntry wraps a member with the time it was cached.
type cachedMemberEntry struct {
	Member   *domain.Member
	CachedAt time.Time
}

// memberCache is an in-memory LRU for member lookups with time-based
// expiration. The roster is small, the cache mostly absorbs the repeated
// by-ID reads the inventory screens generate.
type memberCache struct {
	lru *expirable.LRU[string, *cachedMemberEntry]
}

// newMemberCache creates a member cache with the given size and TTL.
func newMemberCache(size int, ttl time.Duration) *memberCache {
	return &memberCache{
		lru: expirable.NewLRU[string, *cachedMemberEntry](size, nil, ttl),
	}
}

// Get retrieves a member from the cache.
func (c *memberCache) Get(memberID string) (*domain.Member, bool) {
	entry, found := c.lru.Get(memberID)
	if !found {
		return nil, false
	}
	return entry.Member, true
}

// Set stores a member in the cache.
func (c *memberCache) Set(member *domain.Member) {
	c.lru.Add(member.ID, &cachedMemberEntry{
		Member:   member,
		CachedAt: time.Now(),
	})
}

// Invalidate removes one member from the cache after an update or delete.
func (c *memberCache) Invalidate(memberID string) {
	c.lru.Remove(memberID)
}

// Clear removes all entries from the cache.
func (c *memberCache) Clear() {
	c.lru.Purge()
}

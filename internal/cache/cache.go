// Package cache provides a TTL-bounded in-memory key/value store that sits
// in front of the market-data gateway to absorb repeat lookups.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL applies when New is given a non-positive duration.
const DefaultTTL = 5 * time.Minute

type entry struct {
	value     any
	expiresAt time.Time
}

// Stats summarizes cache occupancy. Expired entries are those awaiting lazy
// eviction, still counted until a read purges them.
type Stats struct {
	Entries int `json:"entries"`
	Active  int `json:"active"`
	Expired int `json:"expired"`
}

// Cache is a concurrency-safe TTL map. Expired entries read as misses and
// are purged on access; a racing purge is harmless (last check wins).
type Cache struct {
	mu         sync.RWMutex
	entries    map[string]entry
	defaultTTL time.Duration

	// now is swappable for tests
	now func() time.Time
}

// New creates a cache with the given default TTL.
func New(defaultTTL time.Duration) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Cache{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Get returns the value for key, or false on a miss. An expired entry is a
// miss and is removed.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; another writer may have replaced it
		if cur, ok := c.entries[key]; ok && c.now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetTTL(key, value, c.defaultTTL)
}

// SetTTL stores value under key with an explicit TTL.
func (c *Cache) SetTTL(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Delete removes key if present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats reports occupancy without evicting anything.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Stats{Entries: len(c.entries)}
	now := c.now()
	for _, e := range c.entries {
		if now.After(e.expiresAt) {
			s.Expired++
		} else {
			s.Active++
		}
	}
	return s
}

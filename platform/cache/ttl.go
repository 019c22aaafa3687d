// Package cache provides a small in-process cache with absolute expiry.
// This is part of the platform layer and contains no business logic.
package cache

import (
	"sync"
	"time"
)

// Clock returns the current time. Tests substitute a manual clock.
type Clock func() time.Time

// Config configures a TTL cache.
type Config struct {
	// Name is used in logs and stats.
	Name string
	// TTL is measured from insertion, not from last access.
	TTL time.Duration
	// MaxSize bounds the number of entries; 0 means unbounded.
	MaxSize int
	// Clock defaults to time.Now.
	Clock Clock
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits    int64
	Misses  int64
	Expires int64
	Evicted int64
	Size    int
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL is a read-through friendly cache keyed by K. Expiry is checked on
// access; there is no background sweeper. Concurrent Sets for the same key
// are last-writer-wins.
type TTL[K comparable, V any] struct {
	name    string
	ttl     time.Duration
	maxSize int
	now     Clock

	mu    sync.Mutex
	items map[K]entry[V]
	stats Stats
}

// New creates a TTL cache.
func New[K comparable, V any](cfg Config) *TTL[K, V] {
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	name := cfg.Name
	if name == "" {
		name = "unnamed"
	}
	return &TTL[K, V]{
		name:    name,
		ttl:     cfg.TTL,
		maxSize: cfg.MaxSize,
		now:     now,
		items:   make(map[K]entry[V]),
	}
}

// Name returns the cache name.
func (c *TTL[K, V]) Name() string {
	return c.name
}

// Get returns the cached value when present and not expired.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	item, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return zero, false
	}
	if !c.now().Before(item.expiresAt) {
		delete(c.items, key)
		c.stats.Misses++
		c.stats.Expires++
		return zero, false
	}
	c.stats.Hits++
	return item.value, true
}

// Set stores value with the configured TTL.
func (c *TTL[K, V]) Set(key K, value V) {
	c.SetUntil(key, value, c.now().Add(c.ttl))
}

// SetUntil stores value with an explicit expiry, clamped to the configured TTL.
// Values copied from a shared store use it so that they never outlive the
// window they were originally fetched in.
func (c *TTL[K, V]) SetUntil(key K, value V, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if limit := now.Add(c.ttl); expiresAt.After(limit) {
		expiresAt = limit
	}
	if !now.Before(expiresAt) {
		return
	}

	if _, exists := c.items[key]; !exists && c.maxSize > 0 && len(c.items) >= c.maxSize {
		c.evictOneLocked(now)
	}
	c.items[key] = entry[V]{value: value, expiresAt: expiresAt}
}

// Delete removes key. Returns whether it was present.
func (c *TTL[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.items[key]
	delete(c.items, key)
	return ok
}

// Stats returns a copy of the counters.
func (c *TTL[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Size = len(c.items)
	return stats
}

// evictOneLocked drops an expired entry if there is one, otherwise the entry
// closest to expiry.
func (c *TTL[K, V]) evictOneLocked(now time.Time) {
	var (
		victim   K
		found    bool
		earliest time.Time
	)
	for key, item := range c.items {
		if !now.Before(item.expiresAt) {
			delete(c.items, key)
			c.stats.Expires++
			return
		}
		if !found || item.expiresAt.Before(earliest) {
			victim, earliest, found = key, item.expiresAt, true
		}
	}
	if found {
		delete(c.items, victim)
		c.stats.Evicted++
	}
}

package workflow

import (
	"sync"
	"time"
)

const (
	// ContextCacheTTL is how long a rendered context stays valid. It matches
	// the 30-second bucket in the cache key so identical metadata within a
	// bucket yields the identical string.
	ContextCacheTTL = 30 * time.Second

	// ContextCacheMaxEntries triggers an opportunistic prune of expired
	// entries when exceeded.
	ContextCacheMaxEntries = 100
)

// ContextCache stores rendered workflow contexts keyed by phase, artifact
// fingerprint and time bucket. Implementations must be safe for concurrent
// use; a race on population is benign since the rendered value is a pure
// function of the key.
type ContextCache interface {
	// Get returns the cached context for key, or false when the entry is
	// absent or older than the TTL.
	Get(key string) (string, bool)

	// Set stores a rendered context under key, replacing any existing entry.
	Set(key, context string)

	// Prune removes all expired entries.
	Prune()

	// Len returns the number of entries currently held, expired or not.
	Len() int
}

type cacheEntry struct {
	context   string
	createdAt time.Time
}

// MemoryCache is the default in-process ContextCache with TTL expiry and
// size-triggered pruning.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	metrics    *CacheMetrics
}

// NewMemoryCache creates a cache with the given TTL and prune threshold.
// Non-positive arguments fall back to the package defaults.
func NewMemoryCache(ttl time.Duration, maxEntries int) *MemoryCache {
	if ttl <= 0 {
		ttl = ContextCacheTTL
	}
	if maxEntries <= 0 {
		maxEntries = ContextCacheMaxEntries
	}
	return &MemoryCache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// SetClock replaces the cache's time source. Tests use this to control
// expiry deterministically. Call before any Get/Set.
func (c *MemoryCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// SetMetrics attaches optional hit/miss/size metrics.
func (c *MemoryCache) SetMetrics(m *CacheMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = m
}

// Get returns the cached context for key if present and fresh.
func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	now := c.now()
	metrics := c.metrics
	c.mu.RUnlock()

	if !ok {
		if metrics != nil {
			metrics.RecordMiss()
		}
		return "", false
	}

	if now.Sub(entry.createdAt) >= c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		if c.metrics != nil {
			c.metrics.SetSize(len(c.entries))
		}
		c.mu.Unlock()

		// Expired counts as a miss.
		if metrics != nil {
			metrics.RecordMiss()
		}
		return "", false
	}

	if metrics != nil {
		metrics.RecordHit()
	}
	return entry.context, true
}

// Set stores context under key. When the map has grown past the threshold,
// expired entries are pruned first.
func (c *MemoryCache) Set(key, context string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) > c.maxEntries {
		c.pruneLocked()
	}

	c.entries[key] = cacheEntry{context: context, createdAt: c.now()}
	if c.metrics != nil {
		c.metrics.SetSize(len(c.entries))
	}
}

// Prune removes all entries older than the TTL.
func (c *MemoryCache) Prune() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked()
}

// Len returns the current entry count.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// pruneLocked removes expired entries. Caller must hold the write lock.
func (c *MemoryCache) pruneLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.Sub(entry.createdAt) >= c.ttl {
			delete(c.entries, key)
		}
	}
	if c.metrics != nil {
		c.metrics.SetSize(len(c.entries))
	}
}

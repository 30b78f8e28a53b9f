package matching

import (
	"container/list"
	"strings"
	"sync"
	"time"
)

// Clock abstracts time so cache TTL behavior is deterministically testable
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock returns a Clock backed by time.Now
func RealClock() Clock { return realClock{} }

// MatchCacheConfig configures the match cache
type MatchCacheConfig struct {
	MaxSize    int
	DefaultTTL time.Duration
}

// DefaultMatchCacheConfig returns sensible defaults
func DefaultMatchCacheConfig() MatchCacheConfig {
	return MatchCacheConfig{
		MaxSize:    1000,
		DefaultTTL: 5 * time.Minute,
	}
}

type cacheEntry struct {
	key          string
	value        any
	createdAt    time.Time
	ttl          time.Duration
	accessCount  int64
	lastAccessed time.Time
}

// MatchCache memoizes expensive lookups (batch results, resolved snapshots)
// with per-entry TTL and LRU eviction at capacity. Purely an optimization
// layer: a cold cache must produce identical results to a warm one.
type MatchCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recently used
	clock   Clock
	cfg     MatchCacheConfig
	hits    int64
	misses  int64
}

// NewMatchCache creates a cache with the given config and clock
func NewMatchCache(cfg MatchCacheConfig, clock Clock) *MatchCache {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMatchCacheConfig().MaxSize
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultMatchCacheConfig().DefaultTTL
	}
	if clock == nil {
		clock = RealClock()
	}
	return &MatchCache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		clock:   clock,
		cfg:     cfg,
	}
}

// Get returns the cached value for key. Expiry is re-checked on every hit:
// a present entry is never returned past its TTL.
func (c *MatchCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}

	entry := elem.Value.(*cacheEntry)
	if c.clock.Now().Sub(entry.createdAt) >= entry.ttl {
		c.removeLocked(elem)
		c.misses++
		return nil, false
	}

	entry.accessCount++
	entry.lastAccessed = c.clock.Now()
	c.order.MoveToFront(elem)
	c.hits++
	return entry.value, true
}

// Set stores a value with the given TTL (DefaultTTL when ttl <= 0), evicting
// the least-recently-used entry first when at capacity.
func (c *MatchCache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.cfg.DefaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()

	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.value = value
		entry.createdAt = now
		entry.ttl = ttl
		entry.lastAccessed = now
		c.order.MoveToFront(elem)
		return
	}

	if len(c.entries) >= c.cfg.MaxSize {
		if oldest := c.order.Back(); oldest != nil {
			c.removeLocked(oldest)
		}
	}

	elem := c.order.PushFront(&cacheEntry{
		key:          key,
		value:        value,
		createdAt:    now,
		ttl:          ttl,
		lastAccessed: now,
	})
	c.entries[key] = elem
}

// InvalidatePattern removes every entry whose key contains the pattern as a
// substring ("tenant-1:" clears one tenant's entries)
func (c *MatchCache) InvalidatePattern(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, elem := range c.entries {
		if strings.Contains(key, pattern) {
			c.removeLocked(elem)
			removed++
		}
	}
	return removed
}

// Clear removes all entries
func (c *MatchCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

// CacheStats reports cache effectiveness
type CacheStats struct {
	Size   int   `json:"size"`
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// HitRate returns hits / (hits + misses), 0 when empty
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Stats returns current cache statistics
func (c *MatchCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Size:   len(c.entries),
		Hits:   c.hits,
		Misses: c.misses,
	}
}

// removeLocked must be called with the mutex held
func (c *MatchCache) removeLocked(elem *list.Element) {
	entry := elem.Value.(*cacheEntry)
	delete(c.entries, entry.key)
	c.order.Remove(elem)
}

package matching

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests move time forward deterministically
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestCache(maxSize int, ttl time.Duration) (*MatchCache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewMatchCache(MatchCacheConfig{MaxSize: maxSize, DefaultTTL: ttl}, clock)
	return cache, clock
}

func TestMatchCacheGetSet(t *testing.T) {
	cache, _ := newTestCache(10, time.Minute)

	_, ok := cache.Get("missing")
	assert.False(t, ok)

	cache.Set("k1", "v1", 0)
	value, ok := cache.Get("k1")
	require.True(t, ok)
	assert.Equal(t, "v1", value)

	t.Run("set replaces in place", func(t *testing.T) {
		cache.Set("k1", "v2", 0)
		value, ok := cache.Get("k1")
		require.True(t, ok)
		assert.Equal(t, "v2", value)
		assert.Equal(t, 1, cache.Stats().Size)
	})
}

func TestMatchCacheTTL(t *testing.T) {
	cache, clock := newTestCache(10, time.Minute)

	cache.Set("k1", "v1", 0)

	t.Run("served before expiry", func(t *testing.T) {
		clock.Advance(59 * time.Second)
		_, ok := cache.Get("k1")
		assert.True(t, ok)
	})

	t.Run("an expired entry is never served", func(t *testing.T) {
		clock.Advance(time.Second) // exactly at TTL
		_, ok := cache.Get("k1")
		assert.False(t, ok)
		assert.Equal(t, 0, cache.Stats().Size)
	})

	t.Run("per-entry ttl overrides the default", func(t *testing.T) {
		cache.Set("k2", "v2", time.Hour)
		clock.Advance(30 * time.Minute)
		_, ok := cache.Get("k2")
		assert.True(t, ok)
	})

	t.Run("set refreshes the creation time", func(t *testing.T) {
		cache.Set("k3", "v3", time.Minute)
		clock.Advance(45 * time.Second)
		cache.Set("k3", "v3b", time.Minute)
		clock.Advance(45 * time.Second)
		value, ok := cache.Get("k3")
		require.True(t, ok)
		assert.Equal(t, "v3b", value)
	})
}

func TestMatchCacheLRUEviction(t *testing.T) {
	cache, _ := newTestCache(3, time.Hour)

	cache.Set("a", 1, 0)
	cache.Set("b", 2, 0)
	cache.Set("c", 3, 0)

	// touch "a" so "b" becomes the least recently used
	_, ok := cache.Get("a")
	require.True(t, ok)

	cache.Set("d", 4, 0)

	_, ok = cache.Get("b")
	assert.False(t, ok, "least recently used entry should be evicted")
	for _, key := range []string{"a", "c", "d"} {
		_, ok := cache.Get(key)
		assert.True(t, ok, "key %q should survive eviction", key)
	}
	assert.Equal(t, 3, cache.Stats().Size)
}

func TestMatchCacheInvalidatePattern(t *testing.T) {
	cache, _ := newTestCache(10, time.Hour)

	cache.Set("tenant-1:v1:blue dream", 1, 0)
	cache.Set("tenant-1:v1:og kush", 2, 0)
	cache.Set("tenant-2:v1:blue dream", 3, 0)

	removed := cache.InvalidatePattern("tenant-1:")
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, cache.Stats().Size)

	_, ok := cache.Get("tenant-2:v1:blue dream")
	assert.True(t, ok)
}

func TestMatchCacheClear(t *testing.T) {
	cache, _ := newTestCache(10, time.Hour)

	for i := 0; i < 5; i++ {
		cache.Set(fmt.Sprintf("k%d", i), i, 0)
	}
	cache.Clear()
	assert.Equal(t, 0, cache.Stats().Size)
}

func TestMatchCacheStats(t *testing.T) {
	cache, _ := newTestCache(10, time.Hour)

	cache.Set("k1", "v1", 0)
	cache.Get("k1")
	cache.Get("k1")
	cache.Get("nope")

	stats := cache.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 2.0/3.0, stats.HitRate(), 0.0001)

	t.Run("empty cache hit rate is zero", func(t *testing.T) {
		fresh, _ := newTestCache(10, time.Hour)
		assert.Equal(t, 0.0, fresh.Stats().HitRate())
	})
}

// Package cache memoizes expensive per-file computations (alignment,
// highlighting) keyed by a content hash.
package cache

import (
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	gocache "github.com/patrickmn/go-cache"

	"reviewdiff/internal/log"
)

const (
	DefaultExpiration      = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

// Manager is a typed view over an in-memory go-cache instance.
type Manager[V any] struct {
	useCase string
	cache   *gocache.Cache
}

func New[V any](useCase string, defaultExpiration, cleanupInterval time.Duration) *Manager[V] {
	return &Manager[V]{
		useCase: useCase,
		cache:   gocache.New(defaultExpiration, cleanupInterval),
	}
}

// Get retrieves an item from the cache by its key.
func (c *Manager[V]) Get(key string) (V, bool) {
	var zero V

	value, found := c.cache.Get(key)
	if !found {
		return zero, false
	}
	v, ok := value.(V)
	if !ok {
		log.Error(log.CatCache, "wrong type assertion when getting value", "use_case", c.useCase, "key", key)
		return zero, false
	}
	return v, true
}

// Set stores value with the default expiration.
func (c *Manager[V]) Set(key string, value V) {
	c.cache.SetDefault(key, value)
}

// GetOrCompute returns the cached value for key or stores the result of fn.
func (c *Manager[V]) GetOrCompute(key string, fn func() V) V {
	if v, ok := c.Get(key); ok {
		log.Debug(log.CatCache, "cache hit", "use_case", c.useCase, "key", key)
		return v
	}
	v := fn()
	c.Set(key, v)
	return v
}

func (c *Manager[V]) Len() int {
	return c.cache.ItemCount()
}

func (c *Manager[V]) Flush() {
	c.cache.Flush()
}

// Key hashes parts into a compact cache key. Parts are length-prefixed so
// ("ab","c") and ("a","bc") differ.
func Key(parts ...string) string {
	h := xxhash.New()
	for _, p := range parts {
		_, _ = h.WriteString(strconv.Itoa(len(p)))
		_, _ = h.WriteString(":")
		_, _ = h.WriteString(p)
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

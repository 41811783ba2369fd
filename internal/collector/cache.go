package collector

import (
	"sync"
	"time"
)

// TTLCache memoizes one expensive reading for a fixed lifetime. Failed
// fetches are not cached.
type TTLCache[T any] struct {
	ttl time.Duration

	mu      sync.Mutex
	value   T
	fetched time.Time
	valid   bool
}

// NewTTLCache creates a cache whose entries live for ttl.
func NewTTLCache[T any](ttl time.Duration) *TTLCache[T] {
	return &TTLCache[T]{ttl: ttl}
}

// Get returns the cached value while it is younger than the TTL, otherwise
// calls fetch and stores its result. fetch runs under the cache lock so
// concurrent callers share one fetch.
func (c *TTLCache[T]) Get(now time.Time, fetch func() (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && now.Sub(c.fetched) < c.ttl {
		return c.value, nil
	}

	v, err := fetch()
	if err != nil {
		var zero T
		return zero, err
	}
	c.value = v
	c.fetched = now
	c.valid = true
	return v, nil
}

// Invalidate drops the cached value.
func (c *TTLCache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
}

// Package cache provides a generic keyed TTL cache used to memoize
// expensive external lookups such as git subprocess invocations.
package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	value     V
	createdAt time.Time
	ttl       time.Duration
}

// expired is a pure function of wall-clock time at read time; an entry is
// never served at or past its expiry.
func (e entry[V]) expired(now time.Time) bool {
	return now.Sub(e.createdAt) >= e.ttl
}

// Cache is a TTL cache mapping string keys to values of type V.
// Concurrent misses on the same key are coordinated so the computation
// runs at most once in flight per key; misses on different keys do not
// contend beyond the map lock, which is never held while computing.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	group   singleflight.Group

	now func() time.Time
}

// New creates an empty cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		now:     time.Now,
	}
}

// Key builds a cache key from a logical namespace (what is being cached)
// and the working directory it was computed for, so one process can
// inspect multiple repositories with independent lifecycles.
func Key(namespace, workingDir string) string {
	return namespace + "\x00" + workingDir
}

// GetOrCompute returns the live cached value for key, or invokes fn exactly
// once, stores its result with the given ttl and returns it. Errors from fn
// are returned to every waiting caller and are not cached.
func (c *Cache[V]) GetOrCompute(key string, ttl time.Duration, fn func() (V, error)) (V, error) {
	if v, ok := c.lookup(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A concurrent caller may have stored the value while this one was
		// waiting to enter the flight.
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		value, err := fn()
		if err != nil {
			return nil, err
		}
		c.store(key, value, ttl)
		return value, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Invalidate removes the entry for key, if any.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}

// Len returns the number of stored entries, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache[V]) lookup(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || e.expired(c.now()) {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *Cache[V]) store(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, createdAt: c.now(), ttl: ttl}
}

package cache

import (
	"strings"
	"sync"
	"time"
)

// DefaultTTL is used by Set and by New when ttl <= 0.
const DefaultTTL = 5 * time.Minute

type entry[V any] struct {
	value      V
	insertedAt time.Time
	ttl        time.Duration
}

// Cache is an in-memory TTL map. Expired entries are evicted lazily on read.
type Cache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry[V]
}

// New creates a cache whose Set uses ttl (DefaultTTL when ttl <= 0).
func New[V any](ttl time.Duration) *Cache[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[V]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry[V]),
	}
}

// WithClock replaces the time source. Used by tests.
func (c *Cache[V]) WithClock(now func() time.Time) *Cache[V] {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
	return c
}

// TTL returns the default entry lifetime.
func (c *Cache[V]) TTL() time.Duration { return c.ttl }

// Get returns the value for key. An entry older than its ttl is deleted and reported absent.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.now().Sub(e.insertedAt) > e.ttl {
		delete(c.entries, key)
		return zero, false
	}
	return e.value, true
}

// Has reports whether key holds a live entry.
func (c *Cache[V]) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Set stores value under the default ttl.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value with an explicit ttl.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, insertedAt: c.now(), ttl: ttl}
	c.mu.Unlock()
}

// Delete removes key.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// DeletePrefix removes every key starting with prefix and returns how many were removed.
func (c *Cache[V]) DeletePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Clear drops every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry[V])
	c.mu.Unlock()
}

// Len counts stored entries, including expired ones not yet read.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

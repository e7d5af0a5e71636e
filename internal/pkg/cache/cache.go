// Package cache holds the named in-process TTL caches used by the services,
// with hit/miss accounting for the cache monitoring endpoints.
package cache

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	value     any
	expiresAt time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Cache is a concurrency-safe key/value store with a default TTL.
type Cache struct {
	name        string
	displayName string
	defaultTTL  time.Duration
	now         func() time.Time
	metrics     *Metrics

	mu      sync.RWMutex
	entries map[string]entry
	flight  singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

// Stats is a point-in-time snapshot of one cache.
type Stats struct {
	Name    string `json:"name"`
	Hits    int64  `json:"hits"`
	Misses  int64  `json:"misses"`
	Keys    int    `json:"keys"`
	HitRate string `json:"hitRate"`
}

// New creates a cache. displayName is what the monitoring endpoint reports.
func New(name, displayName string, defaultTTL time.Duration) *Cache {
	return &Cache{
		name:        name,
		displayName: displayName,
		defaultTTL:  defaultTTL,
		now:         time.Now,
		entries:     make(map[string]entry),
	}
}

func (c *Cache) Name() string { return c.name }

func (c *Cache) DefaultTTL() time.Duration { return c.defaultTTL }

// Get returns the live value for key and records a hit or miss.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || e.expired(c.now()) {
		c.misses.Add(1)
		c.metrics.miss(c.name)
		return nil, false
	}
	c.hits.Add(1)
	c.metrics.hit(c.name)
	return e.value, true
}

func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores value; a ttl <= 0 keeps it until deleted or flushed.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	n := len(c.entries)
	c.mu.Unlock()
	c.metrics.setKeys(c.name, n)
}

func (c *Cache) Delete(keys ...string) int {
	c.mu.Lock()
	deleted := 0
	for _, k := range keys {
		if _, ok := c.entries[k]; ok {
			delete(c.entries, k)
			deleted++
		}
	}
	n := len(c.entries)
	c.mu.Unlock()
	c.metrics.setKeys(c.name, n)
	return deleted
}

// DeleteFunc removes every key for which match returns true.
func (c *Cache) DeleteFunc(match func(key string) bool) int {
	c.mu.Lock()
	deleted := 0
	for k := range c.entries {
		if match(k) {
			delete(c.entries, k)
			deleted++
		}
	}
	n := len(c.entries)
	c.mu.Unlock()
	c.metrics.setKeys(c.name, n)
	return deleted
}

// Keys lists the live keys in sorted order.
func (c *Cache) Keys() []string {
	now := c.now()
	c.mu.RLock()
	keys := make([]string, 0, len(c.entries))
	for k, e := range c.entries {
		if !e.expired(now) {
			keys = append(keys, k)
		}
	}
	c.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Flush drops every key. Hit and miss counters are kept.
func (c *Cache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
	c.metrics.setKeys(c.name, 0)
}

// DeleteExpired evicts expired entries and returns how many were removed.
func (c *Cache) DeleteExpired() int {
	now := c.now()
	c.mu.Lock()
	evicted := 0
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
			evicted++
		}
	}
	n := len(c.entries)
	c.mu.Unlock()

	c.metrics.evict(c.name, evicted)
	c.metrics.setKeys(c.name, n)
	return evicted
}

func (c *Cache) Stats() Stats {
	hits, misses := c.hits.Load(), c.misses.Load()
	return Stats{
		Name:    c.displayName,
		Hits:    hits,
		Misses:  misses,
		Keys:    len(c.Keys()),
		HitRate: fmt.Sprintf("%.2f", HitRate(hits, misses)),
	}
}

// GetOrLoad returns the cached value or calls load once per key across
// concurrent callers and caches its result for ttl. Errors are not cached.
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(ctx context.Context) (any, error)) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err, _ := c.flight.Do(key, func() (any, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.SetWithTTL(key, v, ttl)
		return v, nil
	})
	return v, err
}

// Load is the typed form of GetOrLoad.
func Load[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return load(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		// A different type was stored under the key; reload and overwrite.
		fresh, err := load(ctx)
		if err != nil {
			var zero T
			return zero, err
		}
		c.SetWithTTL(key, fresh, ttl)
		return fresh, nil
	}
	return typed, nil
}

// HitRate is the hit percentage in [0, 100]; zero lookups yield 0.
func HitRate(hits, misses int64) float64 {
	total := hits + misses
	if total <= 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// FormatHitRate renders HitRate with two decimals and a percent sign.
func FormatHitRate(hits, misses int64) string {
	return fmt.Sprintf("%.2f%%", HitRate(hits, misses))
}

package cache

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Cache is an in-memory, TTL-bounded store of boolean flag values.
// Stale entries are evicted lazily when they are read.
type Cache struct {
	mu    sync.Mutex
	store Store
	now   func() time.Time

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
	writes    atomic.Uint64
}

// Option configures a Cache
type Option func(*Cache)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithStore replaces the store selected by Config.
func WithStore(s Store) Option {
	return func(c *Cache) {
		if s != nil {
			c.store = s
		}
	}
}

// New creates a new cache with the given config and options
func New(cfg Config, opts ...Option) (*Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Cache{now: time.Now}

	for _, opt := range opts {
		opt(c)
	}

	if c.store == nil {
		if cfg.Bounded() {
			s, err := newRistrettoStore(cfg)
			if err != nil {
				return nil, err
			}
			c.store = s
		} else {
			c.store = newMapStore()
		}
	}

	return c, nil
}

// Get returns the cached value for key if a fresh entry exists.
// A stale entry is removed as a side effect.
func (c *Cache) Get(key string) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.store.Load(key)
	if !ok {
		c.misses.Add(1)
		return false, false
	}

	if !entry.Fresh(c.now()) {
		c.store.Delete(key)
		c.evictions.Add(1)
		c.misses.Add(1)
		return false, false
	}

	c.hits.Add(1)
	return entry.Value, true
}

// Set inserts or overwrites the entry for key, stamped with the current time.
func (c *Cache) Set(key string, value bool, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.Save(key, Entry{
		Value:     value,
		Timestamp: c.now(),
		TTL:       ttl,
	})
	c.writes.Add(1)
}

// Clear removes every entry. It is safe to call repeatedly.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.Clear()
}

// Close releases the underlying store
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.store.Close()
}

// Stats returns a snapshot of the cache counters
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Writes:    c.writes.Load(),
	}
}

// Stats represents cache counters
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Writes    uint64
}

// HitRatio returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

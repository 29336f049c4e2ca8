package cache

import (
	"fmt"
)

// Config holds cache configuration
type Config struct {
	// MaxEntries bounds the number of cached flags.
	// Zero keeps every entry until it goes stale or the cache is cleared.
	MaxEntries int64

	// BufferItems is the ristretto Get buffer size, used only when MaxEntries > 0
	BufferItems int64
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		MaxEntries:  0,
		BufferItems: 64,
	}
}

// Validate validates the configuration
func (c Config) Validate() error {
	if c.MaxEntries < 0 {
		return fmt.Errorf("max entries must not be negative")
	}

	if c.MaxEntries > 0 && c.BufferItems <= 0 {
		return fmt.Errorf("buffer items must be positive when max entries is set")
	}

	return nil
}

// Bounded reports whether the config asks for a size-limited store.
func (c Config) Bounded() bool {
	return c.MaxEntries > 0
}

// String returns a human-readable description of the config
func (c Config) String() string {
	if !c.Bounded() {
		return "unbounded map store"
	}
	return fmt.Sprintf("ristretto store (max %d entries)", c.MaxEntries)
}

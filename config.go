package beacon

import (
	"time"

	"github.com/OrlandoBitencourt/beacon/internal/remote"
)

const (
	// DefaultBaseURL is the hosted flag service origin
	DefaultBaseURL = "https://flags.beacon.dev"

	// DefaultTimeout bounds each remote evaluation call
	DefaultTimeout = 5 * time.Second

	// DefaultCacheTTL is the lifetime of a cached flag value
	DefaultCacheTTL = 5 * time.Minute
)

// Config holds all configuration for a Beacon client.
// It is copied at construction and never changes afterwards.
type Config struct {
	// TeamID scopes every evaluation to a tenant. Required.
	TeamID string

	// Context is sent with every evaluation request.
	// A nil Context is left out of the request entirely.
	Context Context

	// BaseURL is the flag service origin; requests go to BaseURL + "/api/evaluate"
	BaseURL string

	// Timeout bounds each network call
	Timeout time.Duration

	// EnableCaching turns the local cache on or off
	EnableCaching bool

	// CacheTTL is how long a fetched value is served from the cache
	CacheTTL time.Duration

	// MaxCacheEntries bounds the cache size. Zero means unbounded.
	MaxCacheEntries int64

	// CircuitBreaker optionally fails calls fast while the service is down
	CircuitBreaker CircuitBreakerConfig
}

// CircuitBreakerConfig configures the circuit breaker.
// A zero Threshold disables it.
type CircuitBreakerConfig struct {
	// Threshold is the number of consecutive failures before opening
	Threshold int

	// Cooldown is how long to wait before attempting recovery
	Cooldown time.Duration
}

// DefaultConfig returns the documented defaults. TeamID is left empty.
func DefaultConfig() Config {
	return Config{
		BaseURL:       DefaultBaseURL,
		Timeout:       DefaultTimeout,
		EnableCaching: true,
		CacheTTL:      DefaultCacheTTL,
	}
}

// Validate checks the configuration and returns a *ConfigError naming the
// first invalid field.
func (c Config) Validate() error {
	if c.TeamID == "" {
		return &ConfigError{Field: "TeamID", Message: "must not be empty"}
	}

	if _, err := remote.EvaluateURL(c.BaseURL); err != nil {
		return &ConfigError{Field: "BaseURL", Message: err.Error()}
	}

	if c.Timeout <= 0 {
		return &ConfigError{Field: "Timeout", Message: "must be positive"}
	}

	if c.CacheTTL <= 0 {
		return &ConfigError{Field: "CacheTTL", Message: "must be positive"}
	}

	if c.MaxCacheEntries < 0 {
		return &ConfigError{Field: "MaxCacheEntries", Message: "must not be negative"}
	}

	if c.CircuitBreaker.Threshold < 0 {
		return &ConfigError{Field: "CircuitBreaker.Threshold", Message: "must not be negative"}
	}

	if c.CircuitBreaker.Threshold > 0 && c.CircuitBreaker.Cooldown <= 0 {
		return &ConfigError{Field: "CircuitBreaker.Cooldown", Message: "must be positive when the breaker is enabled"}
	}

	return nil
}

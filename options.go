package beacon

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/OrlandoBitencourt/beacon/internal/remote"
)

// Option configures a Beacon client.
type Option func(*clientConfig) error

// clientConfig holds internal configuration.
type clientConfig struct {
	config Config

	httpClient     Doer
	logger         logrus.FieldLogger
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider

	// test hooks
	remote remote.Client
	clock  func() time.Time
}

func newClientConfig(teamID string) *clientConfig {
	cfg := DefaultConfig()
	cfg.TeamID = teamID
	return &clientConfig{config: cfg}
}

// WithContext sets the context sent with every evaluation request.
// The map is copied; later changes by the caller are not seen.
//
// Example: beacon.WithContext(beacon.Context{"plan": "pro", "country": "BR"})
func WithContext(evalCtx Context) Option {
	return func(c *clientConfig) error {
		c.config.Context = evalCtx.clone()
		return nil
	}
}

// WithBaseURL sets the flag service origin.
// Default: DefaultBaseURL
//
// Example: beacon.WithBaseURL("http://localhost:8080")
func WithBaseURL(baseURL string) Option {
	return func(c *clientConfig) error {
		if _, err := remote.EvaluateURL(baseURL); err != nil {
			return &ConfigError{Field: "BaseURL", Message: err.Error()}
		}
		c.config.BaseURL = baseURL
		return nil
	}
}

// WithTimeout bounds each network call.
// Default: 5 seconds
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) error {
		if timeout <= 0 {
			return &ConfigError{Field: "Timeout", Message: "must be positive"}
		}
		c.config.Timeout = timeout
		return nil
	}
}

// WithCaching turns the local cache on or off.
// Default: true
func WithCaching(enabled bool) Option {
	return func(c *clientConfig) error {
		c.config.EnableCaching = enabled
		return nil
	}
}

// WithCacheTTL sets how long fetched values are served from the cache.
// Default: 5 minutes
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *clientConfig) error {
		if ttl <= 0 {
			return &ConfigError{Field: "CacheTTL", Message: "must be positive"}
		}
		c.config.CacheTTL = ttl
		return nil
	}
}

// WithMaxCacheEntries bounds the cache to roughly n entries, backed by
// ristretto. Entries dropped under pressure are fetched again on demand.
func WithMaxCacheEntries(n int64) Option {
	return func(c *clientConfig) error {
		if n < 0 {
			return &ConfigError{Field: "MaxCacheEntries", Message: "must not be negative"}
		}
		c.config.MaxCacheEntries = n
		return nil
	}
}

// WithCircuitBreaker fails evaluations fast, straight to the fallback, after
// threshold consecutive network failures, for cooldown.
//
// Example: beacon.WithCircuitBreaker(5, 30*time.Second)
func WithCircuitBreaker(threshold int, cooldown time.Duration) Option {
	return func(c *clientConfig) error {
		if threshold <= 0 {
			return &ConfigError{Field: "CircuitBreaker.Threshold", Message: "must be positive"}
		}
		if cooldown <= 0 {
			return &ConfigError{Field: "CircuitBreaker.Cooldown", Message: "must be positive"}
		}
		c.config.CircuitBreaker = CircuitBreakerConfig{Threshold: threshold, Cooldown: cooldown}
		return nil
	}
}

// WithHTTPClient replaces the transport used for evaluation calls.
// Timeouts are applied per call through the request context, so the
// client does not need its own Timeout.
func WithHTTPClient(httpClient Doer) Option {
	return func(c *clientConfig) error {
		if httpClient == nil {
			return &ConfigError{Field: "HTTPClient", Message: "must not be nil"}
		}
		c.httpClient = httpClient
		return nil
	}
}

// WithLogger sets the logger used to report swallowed failures.
// Default: a logrus logger at warn level writing to stderr.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *clientConfig) error {
		if logger == nil {
			return &ConfigError{Field: "Logger", Message: "must not be nil"}
		}
		c.logger = logger
		return nil
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider.
// Default: the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *clientConfig) error {
		c.tracerProvider = tp
		return nil
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider.
// Default: the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *clientConfig) error {
		c.meterProvider = mp
		return nil
	}
}

// WithConfig applies a full Config struct, except TeamID which always comes
// from New. This is an alternative to using individual options.
func WithConfig(cfg Config) Option {
	return func(c *clientConfig) error {
		cfg.TeamID = c.config.TeamID
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		cfg.Context = cfg.Context.clone()
		c.config = cfg
		return nil
	}
}

// toRemoteConfig converts clientConfig to the remote client configuration.
func (c *clientConfig) toRemoteConfig() remote.Config {
	return remote.Config{
		BaseURL:    c.config.BaseURL,
		TeamID:     c.config.TeamID,
		Context:    c.config.Context,
		Timeout:    c.config.Timeout,
		HTTPClient: c.httpClient,
		Breaker: remote.BreakerConfig{
			Threshold: c.config.CircuitBreaker.Threshold,
			Cooldown:  c.config.CircuitBreaker.Cooldown,
		},
	}
}

// Package beacon evaluates remotely managed boolean feature flags.
//
// Every evaluation resolves to a boolean: the value computed by the flag
// service, or the caller's fallback when the service cannot answer. Fetched
// values are cached in memory for a configurable TTL.
package beacon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/OrlandoBitencourt/beacon/internal/cache"
	"github.com/OrlandoBitencourt/beacon/internal/domain"
	"github.com/OrlandoBitencourt/beacon/internal/remote"
	"github.com/OrlandoBitencourt/beacon/internal/telemetry"
)

// Client is the main entry point for Beacon.
// It is safe for concurrent use.
type Client struct {
	config Config

	cache     *cache.Cache
	remote    remote.Client
	telemetry *telemetry.OTelProvider
	stats     *telemetry.RemoteStats
	collector *telemetry.Collector
	logger    logrus.FieldLogger
}

// New creates a new Beacon client for teamID with the given options.
// Configuration is validated once here; a *ConfigError is returned for
// anything that would make every evaluation fail.
//
// Example:
//
//	client, err := beacon.New("team-42",
//	    beacon.WithContext(beacon.Context{"userId": "user-123"}),
//	    beacon.WithTimeout(2 * time.Second),
//	)
func New(teamID string, opts ...Option) (*Client, error) {
	cfg := newClientConfig(teamID)

	// Apply options
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.config.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.logger
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		logger = l
	}

	cacheOpts := []cache.Option{}
	if cfg.clock != nil {
		cacheOpts = append(cacheOpts, cache.WithClock(cfg.clock))
	}

	cacheCfg := cache.DefaultConfig()
	cacheCfg.MaxEntries = cfg.config.MaxCacheEntries

	c, err := cache.New(cacheCfg, cacheOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	rc := cfg.remote
	if rc == nil {
		remoteCfg := cfg.toRemoteConfig()
		remoteCfg.Breaker.OnStateChange = func(from, to string) {
			logger.WithFields(logrus.Fields{
				"team_id": cfg.config.TeamID,
				"from":    from,
				"to":      to,
			}).Warn("circuit breaker state changed")
		}

		httpClient, err := remote.NewHTTPClient(remoteCfg)
		if err != nil {
			_ = c.Close()
			return nil, toConfigError(err)
		}
		rc = httpClient
	}

	otelProvider, err := telemetry.NewOTel(cfg.tracerProvider, cfg.meterProvider)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	client := &Client{
		config:    cfg.config,
		cache:     c,
		remote:    rc,
		telemetry: otelProvider,
		stats:     telemetry.NewRemoteStats(),
		logger:    logger.WithField("team_id", cfg.config.TeamID),
	}

	client.collector = telemetry.NewCollector(client.snapshot, prometheus.Labels{
		"team_id": cfg.config.TeamID,
	})

	return client, nil
}

// Evaluate returns the value of flagKey, or fallback if the flag service
// cannot produce one. It never fails and never panics.
//
// A fresh cached value is returned without a network call. Successful
// remote values are cached for the configured TTL; failures are not cached.
func (c *Client) Evaluate(ctx context.Context, flagKey string, fallback bool) bool {
	ctx, span := c.telemetry.StartSpan(ctx, "beacon.evaluate",
		attribute.String("flag.key", flagKey),
		attribute.String("team.id", c.config.TeamID),
		attribute.Bool("cache.enabled", c.config.EnableCaching),
	)
	defer span.End()

	if c.config.EnableCaching {
		if value, ok := c.cache.Get(flagKey); ok {
			c.telemetry.RecordCacheHit(ctx, flagKey)
			c.telemetry.RecordEvaluation(ctx, flagKey, telemetry.SourceCache)
			span.SetAttributes(attribute.Bool("cache.hit", true), attribute.Bool("flag.value", value))
			c.logger.WithField("flag_key", flagKey).Debug("cache hit")
			return value
		}

		c.telemetry.RecordCacheMiss(ctx, flagKey)
		span.SetAttributes(attribute.Bool("cache.hit", false))
		c.logger.WithField("flag_key", flagKey).Debug("cache miss")
	}

	outcome := c.fetch(ctx, span, flagKey)
	if !outcome.Succeeded {
		c.telemetry.RecordEvaluation(ctx, flagKey, telemetry.SourceFallback)
		span.SetAttributes(attribute.Bool("fallback", true))
		return fallback
	}

	if c.config.EnableCaching {
		c.cache.Set(flagKey, outcome.Value, c.config.CacheTTL)
	}

	c.telemetry.RecordEvaluation(ctx, flagKey, telemetry.SourceRemote)
	return outcome.Value
}

// IsEnabled is Evaluate with a false fallback.
func (c *Client) IsEnabled(ctx context.Context, flagKey string) bool {
	return c.Evaluate(ctx, flagKey, false)
}

// FlagExists reports whether the flag service currently returns a value for
// flagKey. It always calls the service and neither reads nor writes the cache.
func (c *Client) FlagExists(ctx context.Context, flagKey string) bool {
	ctx, span := c.telemetry.StartSpan(ctx, "beacon.flag_exists",
		attribute.String("flag.key", flagKey),
		attribute.String("team.id", c.config.TeamID),
	)
	defer span.End()

	return c.fetch(ctx, span, flagKey).Succeeded
}

// ClearCache removes every cached value. The next evaluation of any key
// goes to the flag service.
func (c *Client) ClearCache() {
	c.cache.Clear()
	c.logger.Debug("cache cleared")
}

// TeamID returns the configured team identifier.
func (c *Client) TeamID() string {
	return c.config.TeamID
}

// Context returns a copy of the configured evaluation context, or nil if
// none was configured.
func (c *Client) Context() Context {
	return c.config.Context.clone()
}

// Stats returns a snapshot of the client counters.
func (c *Client) Stats() Stats {
	cs := c.cache.Stats()

	return Stats{
		CacheHits:      cs.Hits,
		CacheMisses:    cs.Misses,
		CacheEvictions: cs.Evictions,
		CacheWrites:    cs.Writes,
		HitRatio:       cs.HitRatio(),
		RemoteCalls:    c.stats.Calls(),
		RemoteFailures: c.stats.Failures(),
		CircuitState:   c.circuitState(),
	}
}

// Collector returns a Prometheus collector exporting the client counters.
//
// Example:
//
//	prometheus.MustRegister(client.Collector())
func (c *Client) Collector() prometheus.Collector {
	return c.collector
}

// Close releases the cache backend. The client must not be used afterwards.
func (c *Client) Close() error {
	return c.cache.Close()
}

// fetch performs one remote evaluation and records it everywhere.
func (c *Client) fetch(ctx context.Context, span trace.Span, flagKey string) (outcome domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = domain.Outcome{
				FlagKey: flagKey,
				Err:     domain.NewRemoteError(domain.FailureTransport, flagKey, fmt.Errorf("panic: %v", r)),
			}
		}

		c.stats.Record(outcome)
		c.telemetry.RecordRemoteCall(ctx, outcome)
		telemetry.AnnotateOutcome(span, outcome)

		if !outcome.Succeeded {
			c.logFailure(outcome)
		}
	}()

	return c.remote.EvaluateFlag(ctx, flagKey)
}

func (c *Client) logFailure(outcome domain.Outcome) {
	fields := logrus.Fields{
		"flag_key": outcome.FlagKey,
		"failure":  string(outcome.Kind()),
		"duration": outcome.Duration.Round(time.Millisecond).String(),
	}

	if outcome.RequestID != "" {
		fields["request_id"] = outcome.RequestID
	}

	var remoteErr *domain.RemoteError
	if errors.As(outcome.Err, &remoteErr) && remoteErr.StatusCode != 0 {
		fields["status"] = remoteErr.StatusCode
	}

	c.logger.WithFields(fields).WithError(outcome.Err).Warn("flag evaluation failed, using fallback")
}

func (c *Client) circuitState() string {
	if b, ok := c.remote.(interface{ BreakerState() string }); ok {
		return b.BreakerState()
	}
	return "disabled"
}

func (c *Client) snapshot() telemetry.Snapshot {
	s := c.Stats()

	return telemetry.Snapshot{
		CacheHits:      s.CacheHits,
		CacheMisses:    s.CacheMisses,
		CacheEvictions: s.CacheEvictions,
		CacheWrites:    s.CacheWrites,
		RemoteCalls:    s.RemoteCalls,
		RemoteFailures: s.RemoteFailures,
	}
}

// toConfigError maps a validation failure from an internal package onto
// the public error type.
func toConfigError(err error) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return &ConfigError{Field: ve.Field, Message: ve.Message}
	}
	return &ConfigError{Field: "Config", Message: err.Error()}
}

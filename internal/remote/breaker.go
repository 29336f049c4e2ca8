package remote

import (
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/OrlandoBitencourt/beacon/internal/domain"
)

// BreakerConfig configures the optional circuit breaker.
// A zero Threshold disables it.
type BreakerConfig struct {
	// Threshold is the number of consecutive failures before opening
	Threshold int

	// Cooldown is how long the circuit stays open before a trial call
	Cooldown time.Duration

	// OnStateChange is called when state changes
	OnStateChange func(from, to string)
}

// Enabled reports whether calls go through a breaker
func (b BreakerConfig) Enabled() bool {
	return b.Threshold > 0
}

// Validate validates the breaker configuration
func (b BreakerConfig) Validate() error {
	if b.Threshold < 0 {
		return domain.NewValidationError("circuitBreaker.threshold", "must not be negative")
	}
	if b.Enabled() && b.Cooldown <= 0 {
		return domain.NewValidationError("circuitBreaker.cooldown", "must be positive when the breaker is enabled")
	}
	return nil
}

// breaker wraps gobreaker; a nil *breaker passes every call through.
type breaker struct {
	cb *gobreaker.CircuitBreaker
}

func newBreaker(config BreakerConfig) *breaker {
	if !config.Enabled() {
		return nil
	}

	threshold := uint32(config.Threshold)
	settings := gobreaker.Settings{
		Name:        "beacon-evaluate",
		MaxRequests: 1,
		Timeout:     config.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: countsAsSuccess,
	}

	if config.OnStateChange != nil {
		settings.OnStateChange = func(_ string, from, to gobreaker.State) {
			config.OnStateChange(from.String(), to.String())
		}
	}

	return &breaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// execute runs fn through the breaker, mapping rejections to circuit-open failures.
func (b *breaker) execute(flagKey string, fn func() (bool, error)) (bool, error) {
	if b == nil {
		return fn()
	}

	result, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false, domain.NewRemoteError(domain.FailureCircuitOpen, flagKey, err)
	}
	if err != nil {
		return false, err
	}

	value, _ := result.(bool)
	return value, nil
}

func (b *breaker) state() string {
	if b == nil {
		return "disabled"
	}
	return b.cb.State().String()
}

// countsAsSuccess keeps answers from a reachable, healthy service from
// tripping the breaker: only network failures, timeouts and 5xx count.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}

	var remoteErr *domain.RemoteError
	if !errors.As(err, &remoteErr) {
		return false
	}

	switch remoteErr.Kind {
	case domain.FailureTransport, domain.FailureTimeout:
		return false
	case domain.FailureHTTP:
		return remoteErr.StatusCode < 500
	default:
		return true
	}
}

// Package remote talks to the flag evaluation service.
package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/OrlandoBitencourt/beacon/internal/domain"
)

// EvaluatePath is where the service accepts evaluation envelopes.
const EvaluatePath = "/api/evaluate"

// Client evaluates one flag against the remote service.
// Implementations never panic and report every failure through the Outcome.
type Client interface {
	EvaluateFlag(ctx context.Context, flagKey string) domain.Outcome
}

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config configures the HTTP client
type Config struct {
	// BaseURL is the service origin, e.g. "https://flags.example.com"
	BaseURL string

	// TeamID scopes every evaluation
	TeamID string

	// Context is attached verbatim to every envelope; nil leaves it out
	Context map[string]any

	// Timeout bounds each call, measured from request creation to body read
	Timeout time.Duration

	// HTTPClient sends the requests; defaults to a plain *http.Client
	HTTPClient Doer

	// Breaker optionally fails calls fast after repeated failures
	Breaker BreakerConfig
}

// Validate validates the configuration
func (c Config) Validate() error {
	if c.TeamID == "" {
		return domain.NewValidationError("teamId", "must not be empty")
	}

	if c.Timeout <= 0 {
		return domain.NewValidationError("timeout", "must be positive")
	}

	if _, err := EvaluateURL(c.BaseURL); err != nil {
		return domain.NewValidationError("baseUrl", err.Error())
	}

	if err := c.Breaker.Validate(); err != nil {
		return err
	}

	return nil
}

// EvaluateURL resolves the evaluation endpoint against baseURL.
func EvaluateURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", baseURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("url %q must use http or https", baseURL)
	}

	if u.Host == "" {
		return "", fmt.Errorf("url %q has no host", baseURL)
	}

	u.Path = strings.TrimRight(u.Path, "/") + EvaluatePath
	u.RawQuery = ""
	u.Fragment = ""

	return u.String(), nil
}

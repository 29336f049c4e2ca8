package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/OrlandoBitencourt/beacon/internal/domain"
)

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 512

// HTTPClient implements Client over HTTP
type HTTPClient struct {
	endpoint   string
	teamID     string
	context    map[string]any
	timeout    time.Duration
	httpClient Doer
	breaker    *breaker
}

// NewHTTPClient creates a new HTTP client for the evaluation service
func NewHTTPClient(config Config) (*HTTPClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	endpoint, err := EvaluateURL(config.BaseURL)
	if err != nil {
		return nil, err
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		// no client-level timeout: each call carries its own deadline
		httpClient = &http.Client{}
	}

	return &HTTPClient{
		endpoint:   endpoint,
		teamID:     config.TeamID,
		context:    config.Context,
		timeout:    config.Timeout,
		httpClient: httpClient,
		breaker:    newBreaker(config.Breaker),
	}, nil
}

// Endpoint returns the resolved evaluation URL
func (c *HTTPClient) Endpoint() string {
	return c.endpoint
}

// BreakerState reports the circuit breaker state, or "disabled".
func (c *HTTPClient) BreakerState() string {
	return c.breaker.state()
}

// EvaluateFlag performs one evaluation call. No retries are attempted.
func (c *HTTPClient) EvaluateFlag(ctx context.Context, flagKey string) domain.Outcome {
	start := time.Now()
	requestID := uuid.NewString()

	value, err := c.breaker.execute(flagKey, func() (bool, error) {
		return c.doRequest(ctx, flagKey, requestID)
	})

	return domain.Outcome{
		FlagKey:   flagKey,
		Value:     value,
		Succeeded: err == nil,
		RequestID: requestID,
		Duration:  time.Since(start),
		Err:       err,
	}
}

// doRequest sends the envelope and interprets the response.
func (c *HTTPClient) doRequest(ctx context.Context, flagKey, requestID string) (bool, error) {
	body, err := json.Marshal(domain.NewEvaluationRequest(c.teamID, flagKey, c.context))
	if err != nil {
		return false, domain.NewRemoteError(domain.FailureTransport, flagKey,
			fmt.Errorf("failed to marshal request body: %w", err))
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return false, domain.NewRemoteError(domain.FailureTransport, flagKey,
			fmt.Errorf("failed to create request: %w", err))
	}

	// The service parses the body as JSON whatever the content type says.
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("X-Request-Id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, classifyTransportError(callCtx, flagKey, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, classifyTransportError(callCtx, flagKey, fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, domain.NewHTTPError(flagKey, resp.StatusCode, truncate(respBody))
	}

	return InterpretBody(flagKey, respBody)
}

// classifyTransportError tells a deadline hit apart from other network failures.
func classifyTransportError(callCtx context.Context, flagKey string, err error) error {
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return domain.NewRemoteError(domain.FailureTimeout, flagKey, err)
	}
	return domain.NewRemoteError(domain.FailureTransport, flagKey, err)
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "..."
	}
	return string(body)
}

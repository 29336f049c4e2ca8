package remote

import (
	"context"
	"sync"

	"github.com/OrlandoBitencourt/beacon/internal/domain"
)

// MockClient is a mock implementation of Client for testing
type MockClient struct {
	mu sync.RWMutex

	// Stored values, answered when EvaluateFlagFunc is nil
	values map[string]bool

	// Mock behavior
	EvaluateFlagFunc func(ctx context.Context, flagKey string) domain.Outcome

	// Call tracking
	calls map[string]int
}

// NewMockClient creates a new mock client
func NewMockClient() *MockClient {
	return &MockClient{
		values: make(map[string]bool),
		calls:  make(map[string]int),
	}
}

// SetValue makes flagKey evaluate successfully to value
func (m *MockClient) SetValue(flagKey string, value bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[flagKey] = value
}

// RemoveValue makes flagKey answer with no data
func (m *MockClient) RemoveValue(flagKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, flagKey)
}

// EvaluateFlag returns the stored value or a no-data failure
func (m *MockClient) EvaluateFlag(ctx context.Context, flagKey string) domain.Outcome {
	m.mu.Lock()
	m.calls[flagKey]++
	fn := m.EvaluateFlagFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, flagKey)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[flagKey]
	if !ok {
		return domain.Outcome{
			FlagKey: flagKey,
			Err:     domain.NewRemoteError(domain.FailureNoData, flagKey, nil),
		}
	}

	return domain.Outcome{FlagKey: flagKey, Value: value, Succeeded: true}
}

// Calls returns how many times flagKey was evaluated
func (m *MockClient) Calls(flagKey string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[flagKey]
}

// TotalCalls returns the number of evaluations across all keys
func (m *MockClient) TotalCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// Failing returns an EvaluateFlagFunc that always fails with kind
func Failing(kind domain.FailureKind) func(ctx context.Context, flagKey string) domain.Outcome {
	return func(ctx context.Context, flagKey string) domain.Outcome {
		return domain.Outcome{
			FlagKey: flagKey,
			Err:     domain.NewRemoteError(kind, flagKey, nil),
		}
	}
}

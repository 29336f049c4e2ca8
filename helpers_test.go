package beacon

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/OrlandoBitencourt/beacon/internal/remote"
)

// flagResponse is what the mock service answers for one flag key.
type flagResponse struct {
	Status int
	Body   string
	Delay  time.Duration
}

// recordedRequest is a request received by the mock service.
type recordedRequest struct {
	Method      string
	Path        string
	ContentType string
	RequestID   string
	Envelope    map[string]any
}

// MockFlagService is a mock evaluation service for testing
type MockFlagService struct {
	*httptest.Server
	mu        sync.RWMutex
	responses map[string]flagResponse
	requests  []recordedRequest
}

// NewMockFlagService creates a new mock evaluation service.
// Unknown flag keys answer 404.
func NewMockFlagService(t *testing.T) *MockFlagService {
	t.Helper()

	mock := &MockFlagService{
		responses: make(map[string]flagResponse),
	}

	mux := http.NewServeMux()

	// POST /api/evaluate - Evaluate flag
	mux.HandleFunc("/api/evaluate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		raw, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}

		var envelope map[string]any
		if err := json.Unmarshal(raw, &envelope); err != nil {
			http.Error(w, "invalid envelope", http.StatusBadRequest)
			return
		}

		flagKey, _ := envelope["flagKey"].(string)

		mock.mu.Lock()
		mock.requests = append(mock.requests, recordedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			ContentType: r.Header.Get("Content-Type"),
			RequestID:   r.Header.Get("X-Request-Id"),
			Envelope:    envelope,
		})
		resp, ok := mock.responses[flagKey]
		mock.mu.Unlock()

		if !ok {
			http.Error(w, `{"error":"flag not found"}`, http.StatusNotFound)
			return
		}

		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.Status)
		io.WriteString(w, resp.Body)
	})

	mock.Server = httptest.NewServer(mux)
	t.Cleanup(mock.Server.Close)

	return mock
}

// SetFlag makes flagKey evaluate to value
func (m *MockFlagService) SetFlag(flagKey string, value bool) {
	body, _ := json.Marshal(map[string]any{"data": value})
	m.SetResponse(flagKey, flagResponse{Status: http.StatusOK, Body: string(body)})
}

// SetResponse sets a raw response for flagKey
func (m *MockFlagService) SetResponse(flagKey string, resp flagResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[flagKey] = resp
}

// Requests returns a copy of every request received so far
func (m *MockFlagService) Requests() []recordedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]recordedRequest(nil), m.requests...)
}

// CallCount returns how many times flagKey was evaluated
func (m *MockFlagService) CallCount(flagKey string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, r := range m.requests {
		if r.Envelope["flagKey"] == flagKey {
			n++
		}
	}
	return n
}

// newTestClient creates a client pointed at the mock service
func newTestClient(t *testing.T, service *MockFlagService, opts ...Option) *Client {
	t.Helper()

	opts = append([]Option{WithBaseURL(service.URL)}, opts...)
	client, err := New("team-test", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client
}

// fakeClock is a manually advanced clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// withClock injects a clock into the cache
func withClock(now func() time.Time) Option {
	return func(c *clientConfig) error {
		c.clock = now
		return nil
	}
}

// withRemote replaces the remote client
func withRemote(rc remote.Client) Option {
	return func(c *clientConfig) error {
		c.remote = rc
		return nil
	}
}

package beacon

import (
	"github.com/OrlandoBitencourt/beacon/internal/domain"
	"github.com/OrlandoBitencourt/beacon/internal/remote"
)

// Context holds caller-supplied key-value data forwarded to the flag service
// with every evaluation. The service uses it for targeting; the client never
// inspects it.
type Context map[string]any

// clone returns a shallow copy; nil stays nil.
func (c Context) clone() Context {
	if c == nil {
		return nil
	}
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Doer sends HTTP requests for the client. *http.Client satisfies it.
type Doer = remote.Doer

// FailureKind classifies failed remote evaluations in Stats.
type FailureKind = domain.FailureKind

const (
	FailureTransport   = domain.FailureTransport
	FailureTimeout     = domain.FailureTimeout
	FailureHTTP        = domain.FailureHTTP
	FailureNoData      = domain.FailureNoData
	FailureParse       = domain.FailureParse
	FailureCircuitOpen = domain.FailureCircuitOpen
)

// Stats is a snapshot of client counters.
type Stats struct {
	// Cache statistics
	CacheHits      uint64
	CacheMisses    uint64
	CacheEvictions uint64
	CacheWrites    uint64
	HitRatio       float64

	// Remote statistics
	RemoteCalls    uint64
	RemoteFailures map[FailureKind]uint64

	// CircuitState is "closed", "open", "half-open" or "disabled"
	CircuitState string
}

package telemetry

import (
	"sync/atomic"

	"github.com/OrlandoBitencourt/beacon/internal/domain"
)

// RemoteStats counts remote calls and their failures by kind.
// The zero value is not usable; call NewRemoteStats.
type RemoteStats struct {
	calls    atomic.Uint64
	failures map[domain.FailureKind]*atomic.Uint64
}

// NewRemoteStats creates counters for every known failure kind
func NewRemoteStats() *RemoteStats {
	s := &RemoteStats{failures: make(map[domain.FailureKind]*atomic.Uint64)}
	for _, kind := range domain.FailureKinds() {
		s.failures[kind] = new(atomic.Uint64)
	}
	return s
}

// Record counts one finished call
func (s *RemoteStats) Record(outcome domain.Outcome) {
	s.calls.Add(1)
	if outcome.Succeeded {
		return
	}

	if counter, ok := s.failures[outcome.Kind()]; ok {
		counter.Add(1)
	}
}

// Calls returns the number of recorded calls
func (s *RemoteStats) Calls() uint64 {
	return s.calls.Load()
}

// Failures returns a copy of the failure counters
func (s *RemoteStats) Failures() map[domain.FailureKind]uint64 {
	out := make(map[domain.FailureKind]uint64, len(s.failures))
	for kind, counter := range s.failures {
		out[kind] = counter.Load()
	}
	return out
}

package state

import (
	"fmt"
	"sync"
	"time"
)

// Snapshot is the latest backend health seen by the poller.
type Snapshot struct {
	Healthy             bool
	HasHealth           bool
	LastChecked         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive health check failures
}

// IsOffline returns true when the backend has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Label is the header badge text: ONLINE, UNHEALTHY, OFFLINE, or UNKNOWN
// before the first answer.
func (s Snapshot) Label() string {
	switch {
	case s.IsOffline():
		return "OFFLINE"
	case !s.HasHealth:
		return "UNKNOWN"
	case s.Healthy:
		return "ONLINE"
	default:
		return "UNHEALTHY"
	}
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update records one health check result. When err is non-nil the previous health
// is kept but the error is recorded for visibility.
func (s *Store) Update(healthy bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastChecked = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Healthy = healthy
	s.snapshot.HasHealth = true
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

// Package state holds the display state for one monitor instance: the last
// node snapshot, the current error, and the loading flag. It is created empty,
// replaced wholesale on each successful poll, and discarded on teardown.
package state

import (
	"sync"
	"time"

	"github.com/meshwatch/meshwatch/pkg/api"
)

// Snapshot is an immutable copy of the display state at one point in time.
type Snapshot struct {
	// Nodes in backend response order; never re-sorted.
	Nodes []api.NodeRecord

	// Err is the failure message of the most recent poll, empty on success.
	// A failed poll sets Err but leaves Nodes at their previous value.
	Err string

	// Loading is true from creation until the first poll resolves.
	Loading bool

	// UpdatedAt is the time of the last successful poll; zero before one.
	UpdatedAt time.Time

	// Seq is the poll sequence number that produced this state.
	Seq uint64
}

// Store is a mutex-guarded display state owned by a single poller.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	onChange func(Snapshot)
}

// NewStore creates an empty store in the loading state.
func NewStore() *Store {
	return &Store{
		snapshot: Snapshot{Loading: true},
	}
}

// OnChange registers a callback invoked after every applied write with the
// new snapshot. At most one callback is supported; nil clears it. The
// callback runs on the writer's goroutine and must not call back into the
// store's write methods.
func (s *Store) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Snapshot returns a copy of the current state. The node slice is copied so
// callers can hold it across subsequent writes.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if len(s.snapshot.Nodes) > 0 {
		snap.Nodes = make([]api.NodeRecord, len(s.snapshot.Nodes))
		copy(snap.Nodes, s.snapshot.Nodes)
	}
	return snap
}

// ApplySuccess replaces the node list, clears the error and loading flag, and
// stamps the update time. The write is discarded if a newer poll has already
// been applied, so a slow response can never overwrite a fresher one.
func (s *Store) ApplySuccess(seq uint64, nodes []api.NodeRecord) bool {
	s.mu.Lock()
	if seq < s.snapshot.Seq {
		s.mu.Unlock()
		return false
	}

	s.snapshot = Snapshot{
		Nodes:     nodes,
		UpdatedAt: time.Now(),
		Seq:       seq,
	}
	snap, fn := s.snapshot, s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
	return true
}

// ApplyFailure records the error message and clears the loading flag while
// keeping the previous node list and update time. Stale failures are
// discarded on the same sequence rule as successes.
func (s *Store) ApplyFailure(seq uint64, message string) bool {
	s.mu.Lock()
	if seq < s.snapshot.Seq {
		s.mu.Unlock()
		return false
	}

	s.snapshot.Err = message
	s.snapshot.Loading = false
	s.snapshot.Seq = seq
	snap, fn := s.snapshot, s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
	return true
}

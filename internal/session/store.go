package session

import (
	"sync"

	"github.com/amishk599/sponsorscout/internal/model"
)

// Store is the exclusive owner of session state. All mutations go through
// Begin and Apply.
type Store struct {
	mu    sync.Mutex
	state State
	seq   uint64 // last issued sequence number, shared by both flows
}

// NewStore returns a store in the initial Idle state.
func NewStore() *Store {
	return &Store{}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Begin starts a new action of flow and returns its sequence number. Any
// earlier action of the same flow that has not settled becomes stale.
func (s *Store) Begin(flow model.Flow) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.state = Reduce(s.state, BeginAction{Flow: flow, Seq: s.seq})
	return s.seq
}

// TryBegin starts a new action of flow only if allow accepts the current
// state. The check and the start happen under one lock.
func (s *Store) TryBegin(flow model.Flow, allow func(State) bool) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !allow(s.state) {
		return 0, false
	}
	s.seq++
	s.state = Reduce(s.state, BeginAction{Flow: flow, Seq: s.seq})
	return s.seq, true
}

// Apply reduces t into the store. It returns false when t settles a stale
// action and was discarded.
func (s *Store) Apply(t Transition) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if flow, seq, ok := Settlement(t); ok && !s.state.IsCurrent(flow, seq) {
		return false
	}
	s.state = Reduce(s.state, t)
	return true
}

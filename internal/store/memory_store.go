package store

import (
	"sync"

	domainroster "github.com/preston-bernstein/roster-service/internal/domain/roster"
	"github.com/preston-bernstein/roster-service/internal/roster"
)

// State is the roster as last loaded plus the outcome of that load.
type State struct {
	Snapshot domainroster.Snapshot
	// Err is the human-readable message of the last failed load; empty on success.
	Err string
	// Loaded reports whether any load has completed, successful or not.
	Loaded bool
}

// MemoryStore keeps a thread-safe roster snapshot and per-session expansion state in memory.
type MemoryStore struct {
	mu         sync.RWMutex
	state      State
	expansions map[string]roster.Expansion
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		expansions: make(map[string]roster.Expansion),
	}
}

// Current returns the held state. Snapshots are immutable so the value is safe to share.
func (s *MemoryStore) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetSnapshot replaces the roster wholesale and clears any previous error.
func (s *MemoryStore) SetSnapshot(snap domainroster.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{Snapshot: snap, Loaded: true}
}

// SetFailure drops the held roster and records the load error message.
func (s *MemoryStore) SetFailure(snap domainroster.Snapshot, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{Snapshot: snap, Err: msg, Loaded: true}
}

// Expansion returns the expansion state of a session.
func (s *MemoryStore) Expansion(sessionID string) (roster.Expansion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	exp, ok := s.expansions[sessionID]
	return exp, ok
}

// SetExpansion stores the expansion state of a session.
func (s *MemoryStore) SetExpansion(sessionID string, exp roster.Expansion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expansions[sessionID] = exp
}

// UpdateExpansion applies fn to a session's state atomically and returns the result.
// Sessions without state start from fallback.
func (s *MemoryStore) UpdateExpansion(sessionID string, fallback roster.Expansion, fn func(roster.Expansion) roster.Expansion) roster.Expansion {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.expansions[sessionID]
	if !ok {
		exp = fallback
	}
	exp = fn(exp)
	s.expansions[sessionID] = exp
	return exp
}

// ClearExpansions forgets every session's view state. Sessions seen again
// start from the fully expanded tree of the held roster.
func (s *MemoryStore) ClearExpansions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.expansions)
}

// DeleteExpansion forgets a session's view state.
func (s *MemoryStore) DeleteExpansion(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.expansions, sessionID)
}

// Sessions returns how many sessions hold expansion state.
func (s *MemoryStore) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.expansions)
}

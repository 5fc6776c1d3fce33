package teststubs

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	domainroster "github.com/preston-bernstein/roster-service/internal/domain/roster"
	"github.com/preston-bernstein/roster-service/internal/snapshots"
)

// ErrSnapshotNotFound is the archive's not-found error, so handlers map stub misses like real ones.
var ErrSnapshotNotFound = snapshots.ErrNotFound

// StubProvider is a test double for providers.RosterProvider.
type StubProvider struct {
	Records []domainroster.Person
	Err     error
	Calls   atomic.Int32
	Notify  chan struct{}
}

// FetchRoster returns configured records and error while tracking calls.
func (s *StubProvider) FetchRoster(ctx context.Context) ([]domainroster.Person, error) {
	_ = ctx
	if s.Notify != nil {
		select {
		case <-s.Notify:
		default:
			close(s.Notify)
		}
	}
	s.Calls.Add(1)
	return s.Records, s.Err
}

var _ snapshots.Store = (*StubSnapshotStore)(nil)

// StubSnapshotStore is a test double for snapshots.Store.
type StubSnapshotStore struct {
	Rosters map[string]domainroster.Snapshot // keyed by date
	LoadErr error
}

// LoadRoster returns the snapshot for the given date if present in the Rosters map.
func (s *StubSnapshotStore) LoadRoster(date string) (domainroster.Snapshot, error) {
	if s.LoadErr != nil {
		return domainroster.Snapshot{}, s.LoadErr
	}
	snap, ok := s.Rosters[date]
	if !ok {
		return domainroster.Snapshot{}, ErrSnapshotNotFound
	}
	return snap, nil
}

// Dates returns the stored dates in ascending order.
func (s *StubSnapshotStore) Dates() ([]string, error) {
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	dates := make([]string, 0, len(s.Rosters))
	for d := range s.Rosters {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates, nil
}

// StubSnapshotWriter is a test double for the archive writer.
type StubSnapshotWriter struct {
	mu      sync.Mutex
	Written map[string]domainroster.Snapshot // keyed by date
	Err     error
}

// WriteRosterSnapshot records the snapshot for verification in tests.
func (w *StubSnapshotWriter) WriteRosterSnapshot(date string, snapshot domainroster.Snapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Err != nil {
		return w.Err
	}
	if w.Written == nil {
		w.Written = make(map[string]domainroster.Snapshot)
	}
	w.Written[date] = snapshot
	return nil
}

// Count returns how many dates were written.
func (w *StubSnapshotWriter) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.Written)
}

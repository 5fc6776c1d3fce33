package snapshots

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	domainroster "github.com/preston-bernstein/roster-service/internal/domain/roster"
	"github.com/preston-bernstein/roster-service/internal/timeutil"
)

var (
	// ErrNotFound is returned when no roster was archived for the date.
	ErrNotFound = errors.New("snapshot not found")
	// ErrInvalidDate is returned for dates not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("snapshot date must be YYYY-MM-DD")
)

// Store defines how archived rosters are loaded.
type Store interface {
	LoadRoster(date string) (domainroster.Snapshot, error)
}

// FSStore loads snapshots from the filesystem.
type FSStore struct {
	basePath string
}

// NewFSStore constructs an FS-backed snapshot store rooted at basePath.
func NewFSStore(basePath string) *FSStore {
	return &FSStore{basePath: basePath}
}

// LoadRoster reads the roster archived for date from {basePath}/roster/{date}.json.
func (s *FSStore) LoadRoster(date string) (domainroster.Snapshot, error) {
	if s == nil {
		return domainroster.Snapshot{}, errors.New("snapshot store not configured")
	}
	if _, err := timeutil.ParseDate(date); err != nil {
		return domainroster.Snapshot{}, ErrInvalidDate
	}

	f, err := os.Open(RosterSnapshotPath(s.basePath, date))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domainroster.Snapshot{}, ErrNotFound
		}
		return domainroster.Snapshot{}, err
	}
	defer f.Close()

	var snap domainroster.Snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return domainroster.Snapshot{}, fmt.Errorf("decode snapshot %s: %w", date, err)
	}
	return snap, nil
}

// Dates lists the archived dates in ascending order.
func (s *FSStore) Dates() ([]string, error) {
	if s == nil {
		return nil, errors.New("snapshot store not configured")
	}
	return listDates(s.basePath)
}

package snapshots

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	domainroster "github.com/preston-bernstein/roster-service/internal/domain/roster"
	"github.com/preston-bernstein/roster-service/internal/timeutil"
)

const defaultRetentionDays = 30

// Writer persists roster snapshots and the manifest, pruning past the retention window.
type Writer struct {
	basePath      string
	retentionDays int
	clock         clockwork.Clock
}

// NewWriter constructs a writer rooted at basePath with a rolling window retention.
func NewWriter(basePath string, retentionDays int) *Writer {
	return NewWriterWithClock(basePath, retentionDays, clockwork.NewRealClock())
}

// NewWriterWithClock is NewWriter with an injected clock for pruning and manifest timestamps.
func NewWriterWithClock(basePath string, retentionDays int, clock clockwork.Clock) *Writer {
	if retentionDays <= 0 {
		retentionDays = defaultRetentionDays
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Writer{
		basePath:      basePath,
		retentionDays: retentionDays,
		clock:         clock,
	}
}

// BasePath exposes the writer root path.
func (w *Writer) BasePath() string {
	if w == nil {
		return ""
	}
	return w.basePath
}

// WriteRosterSnapshot writes the roster for the given date (YYYY-MM-DD), replacing
// any earlier load of the same day, and prunes old snapshots.
func (w *Writer) WriteRosterSnapshot(date string, snapshot domainroster.Snapshot) error {
	if w == nil {
		return errors.New("snapshot writer not configured")
	}
	if _, err := timeutil.ParseDate(date); err != nil {
		return ErrInvalidDate
	}

	target := RosterSnapshotPath(w.basePath, date)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	if existing, err := os.ReadFile(target); err != nil || !bytes.Equal(existing, data) {
		tmp := target + ".tmp"
		if err := os.WriteFile(tmp, data, 0o644); err != nil {
			return err
		}
		if err := os.Rename(tmp, target); err != nil {
			return err
		}
	}

	return w.updateManifest(date, snapshot)
}

func (w *Writer) updateManifest(date string, snapshot domainroster.Snapshot) error {
	now := w.clock.Now().UTC()
	m, _ := readManifest(ManifestPath(w.basePath), w.retentionDays, now)

	dates, err := listDates(w.basePath)
	if err != nil {
		return err
	}
	if !containsDate(dates, date) {
		dates = append(dates, date)
	}

	m.GeneratedAt = now
	m.Retention.RosterDays = w.retentionDays
	m.Roster.Dates = w.pruneOldSnapshots(dates, now)
	m.Roster.LastRefreshed = snapshot.LoadedAt.UTC()
	m.Roster.Records = snapshot.Len()
	m.Roster.Source = snapshot.Source
	return writeManifest(w.basePath, m)
}

func containsDate(dates []string, date string) bool {
	for _, d := range dates {
		if d == date {
			return true
		}
	}
	return false
}

func listDates(basePath string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(basePath, rosterDir))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	dates := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		dates = append(dates, name[:len(name)-len(".json")])
	}
	sort.Strings(dates)
	return dates, nil
}

func (w *Writer) pruneOldSnapshots(dates []string, now time.Time) []string {
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -w.retentionDays)
	keep := make([]string, 0, len(dates))
	for _, d := range dates {
		parsed, err := timeutil.ParseDate(d)
		if err == nil && parsed.Before(cutoff) {
			_ = os.Remove(RosterSnapshotPath(w.basePath, d))
			continue
		}
		keep = append(keep, d)
	}
	sort.Strings(keep)
	return keep
}

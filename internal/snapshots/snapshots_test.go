package snapshots

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	domainroster "github.com/preston-bernstein/roster-service/internal/domain/roster"
)

var testNow = time.Date(2024, 6, 14, 9, 0, 0, 0, time.UTC)

func sampleSnapshot(loadedAt time.Time) domainroster.Snapshot {
	return domainroster.NewSnapshot([]domainroster.Person{
		{FirstName: "Jean", LastName: "D", Division: "L1", TeamName: "A", LicenseNumber: "1", JerseyNumber: domainroster.NewJerseyNumber("9")},
		{FirstName: "Paul", LastName: "M", Division: "L1", TeamName: "B", LicenseNumber: "2"},
	}, loadedAt, "fixture")
}

func newTestWriter(t *testing.T, retention int) (*Writer, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(testNow)
	return NewWriterWithClock(t.TempDir(), retention, clock), clock
}

func readTestManifest(t *testing.T, base string) Manifest {
	t.Helper()
	data, err := os.ReadFile(ManifestPath(base))
	if err != nil {
		t.Fatalf("expected manifest, got err %v", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	return m
}

func assertDatesEqual(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("dates length mismatch: got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("dates mismatch at %d: got %v, want %v", i, got, want)
		}
	}
}

func TestWriterWritesSnapshotAndManifest(t *testing.T) {
	w, _ := newTestWriter(t, 10)
	snap := sampleSnapshot(testNow)

	if err := w.WriteRosterSnapshot("2024-06-14", snap); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(w.BasePath(), "roster", "2024-06-14.json")); err != nil {
		t.Fatalf("expected snapshot file, got err %v", err)
	}

	m := readTestManifest(t, w.BasePath())
	assertDatesEqual(t, m.Roster.Dates, []string{"2024-06-14"})
	if m.Roster.Records != 2 || m.Roster.Source != "fixture" {
		t.Fatalf("unexpected manifest roster meta: %+v", m.Roster)
	}
	if m.Retention.RosterDays != 10 {
		t.Fatalf("expected retention 10, got %d", m.Retention.RosterDays)
	}
	if !m.GeneratedAt.Equal(testNow) {
		t.Fatalf("expected generatedAt %v, got %v", testNow, m.GeneratedAt)
	}
}

func TestWriterRoundTripsThroughFSStore(t *testing.T) {
	w, _ := newTestWriter(t, 10)
	snap := sampleSnapshot(testNow)
	if err := w.WriteRosterSnapshot("2024-06-14", snap); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, err := NewFSStore(w.BasePath()).LoadRoster("2024-06-14")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Len() != 2 || got.Records[0].FirstName != "Jean" {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
	if text, ok := got.Records[0].JerseyText(); !ok || text != "9" {
		t.Fatalf("expected jersey 9, got %q", text)
	}
	if !got.LoadedAt.Equal(testNow) || got.Source != "fixture" {
		t.Fatalf("unexpected metadata: %v %q", got.LoadedAt, got.Source)
	}
}

func TestWriterReplacesSameDay(t *testing.T) {
	w, clock := newTestWriter(t, 10)
	if err := w.WriteRosterSnapshot("2024-06-14", sampleSnapshot(testNow)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	clock.Advance(time.Hour)
	later := domainroster.NewSnapshot(nil, clock.Now(), "http")
	if err := w.WriteRosterSnapshot("2024-06-14", later); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, err := NewFSStore(w.BasePath()).LoadRoster("2024-06-14")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !got.IsEmpty() || got.Source != "http" {
		t.Fatalf("expected later load to win, got %+v", got)
	}
	m := readTestManifest(t, w.BasePath())
	assertDatesEqual(t, m.Roster.Dates, []string{"2024-06-14"})
	if m.Roster.Records != 0 {
		t.Fatalf("expected manifest to track latest load, got %d records", m.Roster.Records)
	}
}

func TestWriterPrunesOldSnapshots(t *testing.T) {
	w, _ := newTestWriter(t, 1)

	for _, d := range []string{"2024-06-01", "2024-06-13", "2024-06-14"} {
		if err := w.WriteRosterSnapshot(d, sampleSnapshot(testNow)); err != nil {
			t.Fatalf("write %s failed: %v", d, err)
		}
	}

	if _, err := os.Stat(RosterSnapshotPath(w.BasePath(), "2024-06-01")); !os.IsNotExist(err) {
		t.Fatalf("expected old snapshot pruned, stat err=%v", err)
	}
	m := readTestManifest(t, w.BasePath())
	assertDatesEqual(t, m.Roster.Dates, []string{"2024-06-13", "2024-06-14"})

	dates, err := NewFSStore(w.BasePath()).Dates()
	if err != nil {
		t.Fatalf("dates failed: %v", err)
	}
	assertDatesEqual(t, dates, []string{"2024-06-13", "2024-06-14"})
}

func TestWriterRejectsInvalidDate(t *testing.T) {
	w, _ := newTestWriter(t, 1)
	for _, d := range []string{"", "14/06/2024", "../escape"} {
		if err := w.WriteRosterSnapshot(d, sampleSnapshot(testNow)); err != ErrInvalidDate {
			t.Fatalf("expected ErrInvalidDate for %q, got %v", d, err)
		}
	}

	var nilWriter *Writer
	if err := nilWriter.WriteRosterSnapshot("2024-06-14", sampleSnapshot(testNow)); err == nil {
		t.Fatalf("expected error from nil writer")
	}
	if nilWriter.BasePath() != "" {
		t.Fatalf("expected empty base path for nil writer")
	}
}

func TestWriterDefaultsRetention(t *testing.T) {
	w := NewWriter(t.TempDir(), 0)
	if w.retentionDays != defaultRetentionDays {
		t.Fatalf("expected default retention, got %d", w.retentionDays)
	}
}

func TestFSStoreErrors(t *testing.T) {
	base := t.TempDir()
	s := NewFSStore(base)

	if _, err := s.LoadRoster("2024-06-14"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.LoadRoster("nope"); err != ErrInvalidDate {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}

	if err := os.MkdirAll(filepath.Join(base, "roster"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(RosterSnapshotPath(base, "2024-06-14"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadRoster("2024-06-14"); err == nil || err == ErrNotFound {
		t.Fatalf("expected decode error, got %v", err)
	}

	dates, err := NewFSStore(filepath.Join(base, "missing")).Dates()
	if err != nil || len(dates) != 0 {
		t.Fatalf("expected no dates for missing dir, got %v %v", dates, err)
	}

	var nilStore *FSStore
	if _, err := nilStore.LoadRoster("2024-06-14"); err == nil {
		t.Fatalf("expected error from nil store")
	}
}

package roster

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainroster "github.com/preston-bernstein/roster-service/internal/domain/roster"
	"github.com/preston-bernstein/roster-service/internal/metrics"
	"github.com/preston-bernstein/roster-service/internal/providers"
	engine "github.com/preston-bernstein/roster-service/internal/roster"
	"github.com/preston-bernstein/roster-service/internal/store"
	"github.com/preston-bernstein/roster-service/internal/teststubs"
)

func sampleRecords() []domainroster.Person {
	return []domainroster.Person{
		{FirstName: "Jean", Division: "L1", TeamName: "A", TeamInitial: "TA", LicenseNumber: "1", Category: "ELITE", RoleType: domainroster.RolePlayer, BirthDate: "2000-06-15"},
		{FirstName: "Paul", Division: "L1", TeamName: "B", TeamInitial: "TB", LicenseNumber: "2", Category: "U21", RoleType: domainroster.RoleOfficial},
		{FirstName: "Marc", Division: "L2", TeamName: "A", TeamInitial: "TA", LicenseNumber: "3", Category: "ELITE", RoleType: domainroster.RolePlayer},
	}
}

type fixture struct {
	svc      *Service
	provider *teststubs.StubProvider
	store    *store.MemoryStore
	archive  *teststubs.StubSnapshotWriter
	recorder *metrics.Recorder
	clock    *clockwork.FakeClock
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{
		provider: &teststubs.StubProvider{Records: sampleRecords()},
		store:    store.NewMemoryStore(),
		archive:  &teststubs.StubSnapshotWriter{},
		recorder: metrics.NewRecorder(),
		clock:    clockwork.NewFakeClockAt(time.Date(2024, 6, 14, 12, 30, 5, 0, time.UTC)),
	}
	f.svc = NewService(f.provider, f.store, Options{
		Source:   "test",
		Locale:   "fr-FR",
		Clock:    f.clock,
		Recorder: f.recorder,
		Archive:  f.archive,
	})
	return f
}

func TestRefreshLoadsSnapshotAndArchives(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Refresh(context.Background()))

	st := f.svc.Status()
	assert.True(t, st.Ready())
	assert.Equal(t, 3, st.Records)
	assert.Equal(t, "test", st.Source)
	assert.Equal(t, 3, f.recorder.RosterSize())
	require.Contains(t, f.archive.Written, "2024-06-14")
	assert.Equal(t, 3, f.archive.Written["2024-06-14"].Len())
}

func TestRefreshFailureDropsRosterAndReportsMessage(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.Refresh(context.Background()))

	f.provider.Err = errors.New("connection refused")
	err := f.svc.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, "failed to load roster: connection refused", err.Error())

	res := f.svc.View("s1", engine.Criteria{})
	assert.Zero(t, res.Count)
	assert.Empty(t, res.Outline)
	assert.Equal(t, "failed to load roster: connection refused", res.Error)
	assert.False(t, f.svc.Status().Ready())

	_, failed := f.recorder.Refreshes()
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, f.archive.Count())
}

func TestRefreshWithoutProvider(t *testing.T) {
	svc := NewService(nil, store.NewMemoryStore(), Options{})
	err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, providers.ErrProviderUnavailable)
}

func TestRefreshArchiveErrorDoesNotFailLoad(t *testing.T) {
	f := newFixture(t)
	f.archive.Err = errors.New("disk full")
	assert.NoError(t, f.svc.Refresh(context.Background()))
	assert.True(t, f.svc.Status().Ready())
}

func TestViewFiltersAndFormats(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.Refresh(context.Background()))

	res := f.svc.View("s1", engine.Criteria{Division: "L1"})
	require.Equal(t, 2, res.Count)
	require.Len(t, res.Outline, 1)
	assert.Equal(t, "L1", res.Outline[0].Division)
	assert.Equal(t, 2, res.Outline[0].TeamCount)
	assert.True(t, res.Outline[0].Expanded)
	assert.Equal(t, 23, res.Records[0].Age)
	assert.Equal(t, "15/06/2000", res.Records[0].BirthDateDisplay)
	assert.Equal(t, "14/06/2024 12:30:05", res.LastUpdated)
	assert.Empty(t, res.Error)
	assert.Equal(t, []string{engine.All, "L1", "L2"}, res.Facets.Divisions)

	res = f.svc.View("s1", engine.Criteria{Search: "paul"})
	assert.Equal(t, 1, res.Count)
}

func TestViewBeforeFirstLoad(t *testing.T) {
	f := newFixture(t)
	res := f.svc.View("s1", engine.Criteria{})
	assert.Zero(t, res.Count)
	assert.Empty(t, res.LastUpdated)
	assert.False(t, f.svc.Status().Loaded)
}

func TestTogglesArePerSessionAndResetOnLoad(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.Refresh(context.Background()))

	exp := f.svc.ToggleDivision("s1", "L1")
	assert.False(t, exp.IsDivisionExpanded("L1"))
	assert.True(t, f.svc.Expansion("s2").IsDivisionExpanded("L1"), "other sessions unaffected")

	exp = f.svc.ToggleTeam("s1", engine.TeamNodeKey("L2", "TA"))
	assert.False(t, exp.IsTeamExpanded("L2-TA"))

	res := f.svc.View("s1", engine.Criteria{})
	assert.False(t, res.Outline[0].Expanded)
	assert.False(t, res.Outline[1].Teams[0].Expanded)

	again := f.svc.ToggleDivision("s1", "L1")
	assert.True(t, again.IsDivisionExpanded("L1"))

	f.svc.ToggleDivision("s1", "L1")
	require.NoError(t, f.svc.Refresh(context.Background()))
	assert.True(t, f.svc.Expansion("s1").IsDivisionExpanded("L1"), "load expands everything")
	assert.True(t, f.svc.Expansion("s1").IsTeamExpanded("L2-TA"))
}

func TestRefreshForgetsSessionState(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.Refresh(context.Background()))
	f.svc.ToggleDivision("s1", "L1")
	f.svc.Expansion("s2")
	require.Equal(t, 2, f.store.Sessions())

	require.NoError(t, f.svc.Refresh(context.Background()))
	assert.Zero(t, f.store.Sessions())

	f.provider.Err = errors.New("connection refused")
	f.svc.ToggleDivision("s3", "L1")
	require.Error(t, f.svc.Refresh(context.Background()))
	assert.Zero(t, f.store.Sessions())
	assert.Empty(t, f.svc.Expansion("s3").Divisions.Keys())
}

func TestEndSessionForgetsState(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.Refresh(context.Background()))
	f.svc.ToggleDivision("s1", "L1")

	f.svc.EndSession("s1")
	_, ok := f.store.Expansion("s1")
	assert.False(t, ok)
}

func TestFacetsComeFromFullRoster(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.Refresh(context.Background()))
	facets := f.svc.Facets()
	assert.Equal(t, []string{engine.All, "ELITE", "U21"}, facets.Categories)
	assert.Equal(t, []string{engine.All, domainroster.RolePlayer, domainroster.RoleOfficial}, facets.RoleTypes)
}

func TestResultJSONIncludesLoadMetadata(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.Refresh(context.Background()))

	data, err := json.Marshal(f.svc.View("s1", engine.Criteria{}))
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "lastUpdated")
	assert.Contains(t, decoded, "organizedTree")
	assert.NotContains(t, decoded, "error")
}

type blockingProvider struct {
	release chan struct{}
	started chan struct{}
	once    sync.Once
	calls   int32
	mu      sync.Mutex
}

func (b *blockingProvider) FetchRoster(ctx context.Context) ([]domainroster.Person, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	b.once.Do(func() { close(b.started) })
	<-b.release
	return sampleRecords(), nil
}

func TestConcurrentRefreshesAreCoalesced(t *testing.T) {
	bp := &blockingProvider{release: make(chan struct{}), started: make(chan struct{})}
	svc := NewService(bp, store.NewMemoryStore(), Options{Clock: clockwork.NewFakeClock()})

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- svc.Refresh(context.Background())
	}()
	<-bp.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- svc.Refresh(context.Background())
	}()
	// Give the second caller time to join the in-flight load.
	time.Sleep(50 * time.Millisecond)
	close(bp.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	bp.mu.Lock()
	defer bp.mu.Unlock()
	assert.Equal(t, int32(1), bp.calls)
	assert.Equal(t, 3, svc.Snapshot().Len())
}

func TestRefreshAbandonedByCallerKeepsRoster(t *testing.T) {
	bp := &blockingProvider{release: make(chan struct{}), started: make(chan struct{})}
	st := store.NewMemoryStore()
	st.SetSnapshot(domainroster.NewSnapshot(sampleRecords()[:1], time.Now(), "test"))
	svc := NewService(bp, st, Options{Clock: clockwork.NewFakeClock()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Refresh(ctx) }()
	<-bp.started
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
	status := svc.Status()
	assert.True(t, status.Ready())
	assert.Equal(t, 1, status.Records)
	assert.Empty(t, status.LastError)

	close(bp.release)
	require.Eventually(t, func() bool {
		return svc.Snapshot().Len() == 3
	}, time.Second, 5*time.Millisecond)
	assert.True(t, svc.Status().Ready())
}

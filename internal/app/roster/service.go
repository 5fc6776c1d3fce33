package roster

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	domainroster "github.com/preston-bernstein/roster-service/internal/domain/roster"
	"github.com/preston-bernstein/roster-service/internal/logging"
	"github.com/preston-bernstein/roster-service/internal/metrics"
	"github.com/preston-bernstein/roster-service/internal/providers"
	engine "github.com/preston-bernstein/roster-service/internal/roster"
	"github.com/preston-bernstein/roster-service/internal/store"
	"github.com/preston-bernstein/roster-service/internal/timeutil"
)

const (
	refreshKey         = "refresh"
	defaultLoadTimeout = 2 * time.Minute
)

// Store defines the contract for holding the roster and per-session view state.
type Store interface {
	Current() store.State
	SetSnapshot(snap domainroster.Snapshot)
	SetFailure(snap domainroster.Snapshot, msg string)
	Expansion(sessionID string) (engine.Expansion, bool)
	SetExpansion(sessionID string, exp engine.Expansion)
	UpdateExpansion(sessionID string, fallback engine.Expansion, fn func(engine.Expansion) engine.Expansion) engine.Expansion
	ClearExpansions()
	DeleteExpansion(sessionID string)
}

// SnapshotWriter archives successful loads.
type SnapshotWriter interface {
	WriteRosterSnapshot(date string, snapshot domainroster.Snapshot) error
}

// Options configures a Service. Zero values fall back to sensible defaults.
type Options struct {
	Source   string
	Locale   string
	Location *time.Location
	Clock    clockwork.Clock
	Logger   *slog.Logger
	Recorder *metrics.Recorder
	Archive  SnapshotWriter
	// LoadTimeout bounds one shared load independently of the callers waiting on it.
	LoadTimeout time.Duration
}

// Service loads the roster and answers queries against it for each session.
type Service struct {
	provider providers.RosterProvider
	store    Store
	source   string
	locale   string
	loc      *time.Location
	clock    clockwork.Clock
	logger   *slog.Logger
	recorder *metrics.Recorder
	archive  SnapshotWriter
	timeout  time.Duration
	group    singleflight.Group
}

// NewService constructs a Service with the provided provider and Store.
func NewService(provider providers.RosterProvider, st Store, opts Options) *Service {
	if opts.Source == "" {
		opts.Source = "roster"
	}
	if opts.Locale == "" {
		opts.Locale = timeutil.DefaultLocale
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = defaultLoadTimeout
	}
	return &Service{
		provider: provider,
		store:    st,
		source:   opts.Source,
		locale:   opts.Locale,
		loc:      opts.Location,
		clock:    opts.Clock,
		logger:   opts.Logger,
		recorder: opts.Recorder,
		archive:  opts.Archive,
		timeout:  opts.LoadTimeout,
	}
}

// Result is one rendered query with the load metadata the presentation layer shows.
type Result struct {
	engine.View
	LastUpdated string `json:"lastUpdated"`
	Error       string `json:"error,omitempty"`
}

// Status summarises the last load for readiness checks.
type Status struct {
	Loaded    bool      `json:"loaded"`
	Records   int       `json:"records"`
	LoadedAt  time.Time `json:"loadedAt"`
	LastError string    `json:"lastError,omitempty"`
	Source    string    `json:"source"`
}

// Ready reports whether a load completed and succeeded.
func (s Status) Ready() bool {
	return s.Loaded && s.LastError == ""
}

// Refresh reloads the roster from the provider. Concurrent calls share one load.
// On failure the held roster is dropped and the returned error carries the
// human-readable message also exposed through Result.Error.
//
// The load is detached from ctx: a caller that gives up gets ctx.Err() back
// while the load finishes for everyone else and the held roster stays intact.
func (s *Service) Refresh(ctx context.Context) error {
	ch := s.group.DoChan(refreshKey, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return nil, s.load(loadCtx)
	})
	select {
	case res := <-ch:
		if res.Shared {
			logging.Debug(logging.FromContext(ctx, s.logger), "joined in-flight roster refresh")
		}
		return res.Err
	case <-ctx.Done():
		logging.Info(logging.FromContext(ctx, s.logger), "roster refresh abandoned by caller; load continues", "err", ctx.Err())
		return ctx.Err()
	}
}

func (s *Service) load(ctx context.Context) error {
	logger := logging.FromContext(ctx, s.logger)
	start := s.clock.Now()

	var (
		records []domainroster.Person
		err     error
	)
	if s.provider == nil {
		err = providers.ErrProviderUnavailable
	} else {
		records, err = s.provider.FetchRoster(ctx)
	}
	now := s.clock.Now()

	if err != nil {
		loadErr := &providers.LoadError{Err: err}
		s.store.SetFailure(domainroster.NewSnapshot(nil, now, s.source), loadErr.Error())
		s.store.ClearExpansions()
		s.recorder.RecordRefresh(now.Sub(start), 0, err)
		logging.Error(logger, "roster load failed", err, logging.FieldSource, s.source)
		return loadErr
	}

	snap := domainroster.NewSnapshot(records, now, s.source)
	s.store.SetSnapshot(snap)
	s.store.ClearExpansions()
	s.recorder.RecordRefresh(now.Sub(start), snap.Len(), nil)
	logging.Info(logger, "roster loaded",
		logging.FieldSource, s.source,
		logging.FieldCount, snap.Len(),
		logging.FieldDurationMS, now.Sub(start).Milliseconds(),
	)

	if s.archive != nil {
		date := timeutil.FormatDate(now.In(s.loc))
		if err := s.archive.WriteRosterSnapshot(date, snap); err != nil {
			logging.Warn(logger, "roster snapshot archive failed", logging.FieldDate, date, "err", err)
		}
	}
	return nil
}

// View runs the query engine for a session.
func (s *Service) View(sessionID string, c engine.Criteria) Result {
	st := s.store.Current()
	exp := s.expansionFor(sessionID, st.Snapshot)
	view := engine.Query(st.Snapshot, c, exp, engine.DisplayOptions{
		Now:    s.clock.Now().In(s.loc),
		Locale: s.locale,
	})
	return Result{
		View:        view,
		LastUpdated: s.lastUpdated(st),
		Error:       st.Err,
	}
}

// Facets returns the filter options of the held roster.
func (s *Service) Facets() engine.Facets {
	return engine.ExtractFacets(s.store.Current().Snapshot.Records)
}

// Expansion returns a session's open nodes.
func (s *Service) Expansion(sessionID string) engine.Expansion {
	return s.expansionFor(sessionID, s.store.Current().Snapshot)
}

// ToggleDivision flips a division node for a session and returns the new state.
func (s *Service) ToggleDivision(sessionID, division string) engine.Expansion {
	fallback := engine.ExpandAll(s.store.Current().Snapshot.Records)
	return s.store.UpdateExpansion(sessionID, fallback, func(e engine.Expansion) engine.Expansion {
		return e.ToggleDivision(division)
	})
}

// ToggleTeam flips a team node (see roster.TeamNodeKey) for a session and returns the new state.
func (s *Service) ToggleTeam(sessionID, teamKey string) engine.Expansion {
	fallback := engine.ExpandAll(s.store.Current().Snapshot.Records)
	return s.store.UpdateExpansion(sessionID, fallback, func(e engine.Expansion) engine.Expansion {
		return e.ToggleTeam(teamKey)
	})
}

// EndSession drops a session's view state.
func (s *Service) EndSession(sessionID string) {
	s.store.DeleteExpansion(sessionID)
}

// Status reports the outcome of the last load.
func (s *Service) Status() Status {
	st := s.store.Current()
	return Status{
		Loaded:    st.Loaded,
		Records:   st.Snapshot.Len(),
		LoadedAt:  st.Snapshot.LoadedAt,
		LastError: st.Err,
		Source:    s.source,
	}
}

// Snapshot returns the held roster.
func (s *Service) Snapshot() domainroster.Snapshot {
	return s.store.Current().Snapshot
}

// expansionFor returns the stored state, opening everything for sessions seen for the first time.
func (s *Service) expansionFor(sessionID string, snap domainroster.Snapshot) engine.Expansion {
	if exp, ok := s.store.Expansion(sessionID); ok {
		return exp
	}
	exp := engine.ExpandAll(snap.Records)
	s.store.SetExpansion(sessionID, exp)
	return exp
}

func (s *Service) lastUpdated(st store.State) string {
	if !st.Loaded || st.Snapshot.LoadedAt.IsZero() {
		return ""
	}
	return timeutil.FormatLocaleDateTime(st.Snapshot.LoadedAt.In(s.loc), s.locale)
}

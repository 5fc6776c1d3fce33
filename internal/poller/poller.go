package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/preston-bernstein/roster-service/internal/logging"
)

const defaultInterval = 5 * time.Minute

// Refresher reloads the roster. The roster service satisfies it.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Poller reloads the roster on an interval.
type Poller struct {
	refresher Refresher
	logger    *slog.Logger
	interval  time.Duration
	clock     clockwork.Clock

	done     chan struct{}
	exited   chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	statusMu sync.RWMutex
	status   Status
}

// FailureThreshold is the number of consecutive failed refreshes after which
// the poller no longer reports ready.
const FailureThreshold = 3

// Status describes the recent health of the poller loop.
type Status struct {
	ConsecutiveFailures int
	LastError           string
	LastAttempt         time.Time
	LastSuccess         time.Time
}

// IsReady reports whether the poller has had a recent success and is not failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < FailureThreshold
}

// New constructs a Poller. A nil clock uses the real clock.
func New(refresher Refresher, logger *slog.Logger, interval time.Duration, clock clockwork.Clock) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Poller{
		refresher: refresher,
		logger:    logger,
		interval:  interval,
		clock:     clock,
		done:      make(chan struct{}),
		exited:    make(chan struct{}),
	}
}

// Start refreshes once, then on every tick until the context is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) {
	p.startMu.Lock()
	if p.started {
		p.startMu.Unlock()
		return
	}
	p.started = true
	p.startMu.Unlock()

	go func() {
		defer close(p.exited)
		logging.Info(p.logger, "poller started", logging.FieldDurationMS, p.interval.Milliseconds())
		p.refreshOnce(ctx)

		ticker := p.clock.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logging.Info(p.logger, "poller stopped")
				return
			case <-p.done:
				logging.Info(p.logger, "poller stopped")
				return
			case <-ticker.Chan():
				p.refreshOnce(ctx)
			}
		}
	}()
}

// Stop halts the loop and waits for it to exit or for ctx to end.
func (p *Poller) Stop(ctx context.Context) error {
	p.stopOnce.Do(func() {
		close(p.done)
	})

	p.startMu.Lock()
	started := p.started
	p.startMu.Unlock()
	if !started {
		return nil
	}

	select {
	case <-p.exited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Poller) refreshOnce(ctx context.Context) {
	start := p.clock.Now()
	p.recordAttempt(start)
	if err := p.refresher.Refresh(ctx); err != nil {
		logging.Error(p.logger, "poller refresh failed", err, logging.FieldDurationMS, p.clock.Since(start).Milliseconds())
		p.recordFailure(err, start)
		return
	}
	p.recordSuccess(start)
}

func (p *Poller) recordAttempt(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.LastAttempt = at
}

func (p *Poller) recordSuccess(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures = 0
	p.status.LastError = ""
	p.status.LastSuccess = at
}

func (p *Poller) recordFailure(err error, at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures++
	if err != nil {
		p.status.LastError = err.Error()
	}
	p.status.LastAttempt = at
}

// Status returns a snapshot of the poller's recent health.
func (p *Poller) Status() Status {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()
	return p.status
}

// Interval returns the configured refresh period.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

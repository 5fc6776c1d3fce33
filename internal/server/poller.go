package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/preston-bernstein/roster-service/internal/logging"
	"github.com/preston-bernstein/roster-service/internal/poller"
)

// Poller defines the minimal poller behavior needed by the server.
type Poller interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
	Status() poller.Status
}

// loadOnce stands in for the poller when periodic refresh is disabled.
type loadOnce struct {
	refresher poller.Refresher
	logger    *slog.Logger
	clock     clockwork.Clock

	mu     sync.Mutex
	status poller.Status
}

func newLoadOnce(refresher poller.Refresher, logger *slog.Logger, clock clockwork.Clock) *loadOnce {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &loadOnce{refresher: refresher, logger: logger, clock: clock}
}

func (l *loadOnce) Start(ctx context.Context) {
	now := l.clock.Now()
	err := l.refresher.Refresh(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.status.LastAttempt = now
	if err != nil {
		l.status.ConsecutiveFailures = 1
		l.status.LastError = err.Error()
		logging.Warn(l.logger, "initial roster load failed", "err", err)
		return
	}
	l.status.LastSuccess = now
}

func (l *loadOnce) Stop(context.Context) error { return nil }

func (l *loadOnce) Status() poller.Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// buildPoller ticks on interval, or loads once at startup when interval is zero.
func buildPoller(refresher poller.Refresher, logger *slog.Logger, interval time.Duration) Poller {
	if interval <= 0 {
		return newLoadOnce(refresher, logger, nil)
	}
	return poller.New(refresher, logger, interval, nil)
}

package providers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	domainroster "github.com/preston-bernstein/roster-service/internal/domain/roster"
)

const defaultMinInterval = time.Minute

// rateLimitedProvider wraps a RosterProvider and enforces a minimum interval between upstream calls.
type rateLimitedProvider struct {
	next     RosterProvider
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger

	mu       sync.Mutex
	lastCall time.Time
	closed   chan struct{}
	once     sync.Once
}

// NewRateLimitedProvider returns a RosterProvider that spaces calls by at least interval.
// The first call goes through immediately; later calls block until the interval elapses.
func NewRateLimitedProvider(next RosterProvider, interval time.Duration, logger *slog.Logger) RosterProvider {
	return newRateLimitedProvider(next, interval, clockwork.NewRealClock(), logger)
}

func newRateLimitedProvider(next RosterProvider, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) *rateLimitedProvider {
	if interval <= 0 {
		interval = defaultMinInterval
	}
	return &rateLimitedProvider{
		next:     next,
		interval: interval,
		clock:    clock,
		logger:   logger,
		closed:   make(chan struct{}),
	}
}

func (p *rateLimitedProvider) FetchRoster(ctx context.Context) ([]domainroster.Person, error) {
	if p == nil || p.next == nil {
		if p != nil {
			logWithSource(ctx, p.logger, slog.LevelWarn, "rate-limited", "roster source unavailable")
		}
		return nil, ErrProviderUnavailable
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.lastCall.IsZero() {
		if wait := p.interval - p.clock.Since(p.lastCall); wait > 0 {
			select {
			case <-ctx.Done():
				logWithSource(ctx, p.logger, slog.LevelWarn, "rate-limited", "rate-limited fetch canceled")
				return nil, ctx.Err()
			case <-p.closed:
				return nil, ErrProviderUnavailable
			case <-p.clock.After(wait):
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.lastCall = p.clock.Now()
	logWithSource(ctx, p.logger, slog.LevelDebug, "rate-limited", "rate-limited roster fetch")
	return p.next.FetchRoster(ctx)
}

// Close releases callers blocked waiting for the interval.
func (p *rateLimitedProvider) Close() {
	if p == nil {
		return
	}
	p.once.Do(func() { close(p.closed) })
}

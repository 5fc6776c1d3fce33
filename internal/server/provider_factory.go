package server

import (
	"log/slog"

	"github.com/preston-bernstein/roster-service/internal/config"
	"github.com/preston-bernstein/roster-service/internal/metrics"
	"github.com/preston-bernstein/roster-service/internal/providers"
)

// providerFactory assembles the roster source with shared wrappers (rate limit + retry).
type providerFactory struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func newProviderFactory(logger *slog.Logger, metrics *metrics.Recorder) providerFactory {
	return providerFactory{logger: logger, metrics: metrics}
}

// build returns the wrapped provider and the limiter so shutdown can release waiters.
func (f providerFactory) build(cfg config.Config) (providers.RosterProvider, providers.Closer) {
	base := selectProvider(cfg.Source, f.logger)
	limited := providers.NewRateLimitedProvider(base, cfg.Source.MinInterval, f.logger)
	retrying := providers.NewRetryingProvider(limited, f.logger, f.metrics, normalizeProviderName(cfg.Source.Kind, base), 0, 0)

	closer, _ := limited.(providers.Closer)
	return retrying, closer
}

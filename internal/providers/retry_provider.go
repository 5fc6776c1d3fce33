package providers

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v4"

	domainroster "github.com/preston-bernstein/roster-service/internal/domain/roster"
	"github.com/preston-bernstein/roster-service/internal/metrics"
)

const (
	defaultRetryAttempts = 3
	defaultBackoff       = 200 * time.Millisecond
	defaultProviderName  = "provider"
)

type backoffFunc func(attempt int) time.Duration

// retryingProvider wraps a RosterProvider with retry/backoff behavior.
type retryingProvider struct {
	inner        RosterProvider
	logger       *slog.Logger
	recorder     *metrics.Recorder
	providerName string
	maxAttempts  int
	backoffFn    backoffFunc
	rng          *rand.Rand
}

// NewRetryingProvider wraps the given provider with retries. If maxAttempts/backoff are <= 0, defaults are used.
func NewRetryingProvider(inner RosterProvider, logger *slog.Logger, recorder *metrics.Recorder, name string, maxAttempts int, base time.Duration) RosterProvider {
	return NewRetryingProviderWithRNG(inner, logger, recorder, name, nil, maxAttempts, base)
}

// NewRetryingProviderWithRNG is NewRetryingProvider with a caller-supplied jitter source.
func NewRetryingProviderWithRNG(inner RosterProvider, logger *slog.Logger, recorder *metrics.Recorder, name string, rng *rand.Rand, maxAttempts int, base time.Duration) RosterProvider {
	if maxAttempts <= 0 {
		maxAttempts = defaultRetryAttempts
	}
	if base <= 0 {
		base = defaultBackoff
	}
	if name == "" {
		name = defaultProviderName
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &retryingProvider{
		inner:        inner,
		logger:       logger,
		recorder:     recorder,
		providerName: name,
		maxAttempts:  maxAttempts,
		backoffFn: func(attempt int) time.Duration {
			return base << (attempt - 1)
		},
		rng: rng,
	}
}

func (r *retryingProvider) FetchRoster(ctx context.Context) ([]domainroster.Person, error) {
	if r.inner == nil {
		return nil, ErrProviderUnavailable
	}

	policy := &retryPolicy{provider: r}
	var records []domainroster.Person
	operation := func() error {
		policy.attempt++
		start := time.Now()
		out, err := r.inner.FetchRoster(ctx)
		r.recorder.RecordSourceAttempt(r.providerName, time.Since(start), err)
		if err != nil {
			if rlErr, ok := AsRateLimitError(err); ok {
				r.recorder.RecordRateLimit(r.providerName, rlErr.RetryAfter)
			}
			policy.lastErr = err
			return err
		}
		records = out
		return nil
	}
	notify := func(err error, delay time.Duration) {
		args := []any{
			"attempt", policy.attempt,
			"max_attempts", r.maxAttempts,
			"delay_ms", delay.Milliseconds(),
		}
		logWithSource(ctx, r.logger, slog.LevelWarn, r.providerName, "roster fetch retry", append(args, errorLogArgs(err)...)...)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(policy, ctx), notify); err != nil {
		if ctx.Err() == nil {
			logWithSource(ctx, r.logger, slog.LevelWarn, r.providerName, "roster fetch failed", append([]any{"attempts", policy.attempt}, errorLogArgs(err)...)...)
		}
		return nil, err
	}
	return records, nil
}

// computeDelay honours Retry-After on rate limits and otherwise jitters the
// exponential base into [base/2, base].
func (r *retryingProvider) computeDelay(err error, attempt int) time.Duration {
	if rlErr, ok := AsRateLimitError(err); ok && rlErr.RetryAfter > 0 {
		return rlErr.RetryAfter
	}
	base := r.backoffFn(attempt)
	if base <= 0 {
		return 0
	}
	half := base / 2
	return half + time.Duration(r.rng.Int63n(int64(base-half)+1))
}

// retryPolicy adapts computeDelay to backoff.BackOff, stopping after maxAttempts.
type retryPolicy struct {
	provider *retryingProvider
	attempt  int
	lastErr  error
}

func (p *retryPolicy) NextBackOff() time.Duration {
	if p.attempt >= p.provider.maxAttempts {
		return backoff.Stop
	}
	return p.provider.computeDelay(p.lastErr, p.attempt)
}

func (p *retryPolicy) Reset() {
	p.attempt = 0
	p.lastErr = nil
}

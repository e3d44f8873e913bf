package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/preston-bernstein/football-elo-service/internal/domain/matches"
	"github.com/preston-bernstein/football-elo-service/internal/logging"
)

const (
	defaultRetryAttempts = 3
	defaultBackoff       = 200 * time.Millisecond
)

// Source supplies match results.
type Source interface {
	Matches(ctx context.Context) ([]matches.Match, error)
}

type backoffFunc func(attempt int) time.Duration

// RetryingSource retries a Source with linear backoff. A CSV caught mid-rewrite
// usually reads cleanly a moment later.
type RetryingSource struct {
	inner       Source
	logger      *slog.Logger
	maxAttempts int
	backoffFn   backoffFunc
}

// NewRetryingSource wraps inner with retries. If maxAttempts/backoff are <= 0, defaults are used.
func NewRetryingSource(inner Source, logger *slog.Logger, maxAttempts int, backoff time.Duration) *RetryingSource {
	if maxAttempts <= 0 {
		maxAttempts = defaultRetryAttempts
	}
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	return &RetryingSource{
		inner:       inner,
		logger:      logger,
		maxAttempts: maxAttempts,
		backoffFn: func(attempt int) time.Duration {
			return time.Duration(attempt) * backoff
		},
	}
}

// Matches returns the first successful read of the wrapped source.
func (r *RetryingSource) Matches(ctx context.Context) ([]matches.Match, error) {
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		ms, err := r.inner.Matches(ctx)
		if err == nil {
			return ms, nil
		}
		lastErr = err

		if attempt == r.maxAttempts {
			break
		}

		logging.Warn(logging.FromContext(ctx, r.logger), "match source retry",
			"attempt", attempt, "max_attempts", r.maxAttempts, "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.backoffFn(attempt)):
		}
	}

	logging.Warn(logging.FromContext(ctx, r.logger), "match source failed",
		"attempts", r.maxAttempts, "error", lastErr)
	return nil, lastErr
}

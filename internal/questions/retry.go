package questions

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/playperu/bollyquiz/internal/bollyquiz"
)

const (
	defaultRetryAttempts = 3
	defaultRetryInterval = 200 * time.Millisecond
)

// RetryingSource retries a failing source with exponential backoff.
type RetryingSource struct {
	inner    Source
	logger   *slog.Logger
	attempts int
	interval time.Duration
}

// NewRetryingSource wraps inner with retries. Non-positive attempts or
// interval select the defaults.
func NewRetryingSource(inner Source, logger *slog.Logger, attempts int, interval time.Duration) *RetryingSource {
	if attempts <= 0 {
		attempts = defaultRetryAttempts
	}
	if interval <= 0 {
		interval = defaultRetryInterval
	}
	return &RetryingSource{inner: inner, logger: logger, attempts: attempts, interval: interval}
}

func (r *RetryingSource) Load(ctx context.Context) ([]bollyquiz.Question, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = r.interval
	eb.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(r.attempts-1)), ctx)

	attempt := 0
	qs, err := backoff.RetryNotifyWithData(func() ([]bollyquiz.Question, error) {
		attempt++
		qs, err := r.inner.Load(ctx)
		if err != nil && !retryable(err) {
			return nil, backoff.Permanent(err)
		}
		return qs, err
	}, b, func(err error, next time.Duration) {
		r.logger.WarnContext(ctx, "question load retry",
			"attempt", attempt, "max_attempts", r.attempts, "next", next, "err", err)
	})
	if err != nil {
		r.logger.WarnContext(ctx, "question load failed", "attempts", attempt, "err", err)
		return nil, err
	}
	return qs, nil
}

// retryable rejects failures a second request cannot fix.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrEmptySheet) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return !se.Permanent()
	}
	return true
}

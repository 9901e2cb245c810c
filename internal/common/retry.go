package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spendlens/spendlens/internal/service"
)

var (
	// ErrRateLimit indicates the remote source throttled us.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrMaxRetries indicates that all retry attempts have been exhausted.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// RetryableError classifies an error from a remote source. Bank
// aggregators mix transient failures (timeouts, 5xx) with permanent
// ones (bad credentials, revoked tokens); callers wrap the permanent
// ones with Retryable=false to fail fast.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// shouldRetry decides whether another attempt is worthwhile. Errors a
// caller explicitly classified win; anything unclassified from a remote
// source is presumed transient.
func shouldRetry(err error) bool {
	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}
	return true
}

// nextDelay grows the backoff for the following attempt, capped at
// MaxDelay.
func nextDelay(current time.Duration, opts service.RetryOptions) time.Duration {
	grown := time.Duration(float64(current) * opts.Multiplier)
	if grown > opts.MaxDelay {
		return opts.MaxDelay
	}
	return grown
}

func withDefaults(opts service.RetryOptions) service.RetryOptions {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = 100 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 30 * time.Second
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = 2.0
	}
	return opts
}

// WithRetry runs operation with exponential backoff until it succeeds,
// a non-retryable error surfaces, the context is cancelled, or the
// attempt budget runs out.
func WithRetry(ctx context.Context, operation func() error, opts service.RetryOptions) error {
	opts = withDefaults(opts)
	delay := opts.InitialDelay

	var err error
	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		if err = operation(); err == nil {
			return nil
		}

		if !shouldRetry(err) {
			return err
		}

		if attempt == opts.MaxAttempts {
			break
		}

		// A rate-limited call waits out the full cap; the provider
		// window is typically much longer than our base delay.
		if errors.Is(err, ErrRateLimit) {
			delay = opts.MaxDelay
		}

		slog.Warn("Operation failed, retrying",
			"attempt", attempt,
			"remaining", opts.MaxAttempts-attempt,
			"backoff", delay,
			"error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay = nextDelay(delay, opts)
		}
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrMaxRetries, opts.MaxAttempts, err)
}

// Package retry re-runs history reads that fail because the database is locked.
package retry

import (
	"context"
	"io"
	"log/slog"
	"time"

	scanerrors "github.com/runnerr0/domaintally/internal/errors"
)

// Default policy values.
const (
	DefaultMaxAttempts = 3
	DefaultDelay       = 5 * time.Second
)

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy retries LockedError a bounded number of times with a fixed delay.
// Every other error is returned immediately.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Sleep       SleepFunc
	Logger      *slog.Logger
}

// DefaultPolicy returns three attempts five seconds apart.
func DefaultPolicy(logger *slog.Logger) Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		Delay:       DefaultDelay,
		Logger:      logger,
	}
}

// Do calls fn until it succeeds, fails with something other than a
// LockedError, or MaxAttempts calls have been made. The last LockedError is
// returned when attempts run out. A cancelled ctx interrupts the delay.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var zero T
	for attempt := 1; ; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if !scanerrors.Is(err, scanerrors.ErrLocked) || attempt >= attempts {
			return zero, err
		}

		logger.Warn("database locked, retrying",
			"attempt", attempt, "max_attempts", attempts, "delay", p.Delay, "error", err)
		if err := sleep(ctx, p.Delay); err != nil {
			return zero, err
		}
	}
}

// sleepContext is the default SleepFunc.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

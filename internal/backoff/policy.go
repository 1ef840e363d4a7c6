package backoff

import (
	"context"
	"errors"
	"fmt"
	"time"

	cbackoff "github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
)

// ErrExhausted is returned once every attempt failed with a retryable error.
var ErrExhausted = errors.New("retry attempts exhausted")

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Policy retries an operation with capped exponential delays.
type Policy struct {
	MaxAttempts  int
	BaseDelay    time.Duration
	GrowthFactor float64
	MaxDelay     time.Duration

	// Retryable reports whether err may succeed on a later attempt.
	Retryable func(err error) bool

	Sleep  Sleeper
	Logger zerolog.Logger
}

// Delays returns the wait before each retry: min(MaxDelay, BaseDelay*GrowthFactor^n).
func (p Policy) Delays() []time.Duration {
	if p.MaxAttempts <= 1 {
		return nil
	}
	b := p.exponential()
	out := make([]time.Duration, 0, p.MaxAttempts-1)
	for i := 0; i < p.MaxAttempts-1; i++ {
		out = append(out, p.clamp(b.NextBackOff()))
	}
	return out
}

// Do runs op until it succeeds, fails with a non-retryable error, or
// MaxAttempts is reached. The last error is wrapped in ErrExhausted in the
// final case.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	b := p.exponential()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if p.Retryable == nil || !p.Retryable(err) {
			return err
		}
		lastErr = err
		if attempt == attempts {
			break
		}

		wait := p.clamp(b.NextBackOff())
		p.Logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", attempts).
			Dur("wait", wait).
			Msg("retrying request")

		if sleepErr := sleep(ctx, wait); sleepErr != nil {
			return fmt.Errorf("retry interrupted: %w", sleepErr)
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempts, lastErr)
}

func (p Policy) exponential() *cbackoff.ExponentialBackOff {
	b := cbackoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.Multiplier = p.GrowthFactor
	b.MaxInterval = p.MaxDelay
	b.RandomizationFactor = 0
	b.Reset()
	return b
}

func (p Policy) clamp(d time.Duration) time.Duration {
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

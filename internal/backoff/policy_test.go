package backoff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func testPolicy(slept *[]time.Duration) Policy {
	return Policy{
		MaxAttempts:  12,
		BaseDelay:    time.Second,
		GrowthFactor: 1.6,
		MaxDelay:     10 * time.Second,
		Retryable:    func(err error) bool { return errors.Is(err, errTransient) },
		Sleep: func(_ context.Context, d time.Duration) error {
			*slept = append(*slept, d)
			return nil
		},
		Logger: zerolog.Nop(),
	}
}

func TestPolicy_ExhaustsAfterMaxAttempts(t *testing.T) {
	var slept []time.Duration
	p := testPolicy(&slept)

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return errTransient
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 12, calls)
	assert.Len(t, slept, 11)
}

func TestPolicy_NonRetryableFailsImmediately(t *testing.T) {
	var slept []time.Duration
	p := testPolicy(&slept)
	fatal := errors.New("not found")

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return fatal
	})

	assert.Equal(t, fatal, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, slept)
}

func TestPolicy_SucceedsAfterRetries(t *testing.T) {
	var slept []time.Duration
	p := testPolicy(&slept)

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 4 {
			return errTransient
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, []time.Duration{
		1000 * time.Millisecond,
		1600 * time.Millisecond,
		2560 * time.Millisecond,
	}, slept)
}

func TestPolicy_DelaysNonDecreasingAndCapped(t *testing.T) {
	p := Policy{MaxAttempts: 40, BaseDelay: time.Second, GrowthFactor: 1.6, MaxDelay: 10 * time.Second}

	delays := p.Delays()
	require.Len(t, delays, 39)
	assert.Equal(t, time.Second, delays[0])
	for i := 1; i < len(delays); i++ {
		assert.GreaterOrEqual(t, delays[i], delays[i-1], "delay %d decreased", i)
	}
	for i, d := range delays {
		assert.LessOrEqual(t, d, 10*time.Second, "delay %d above cap", i)
	}
	assert.Equal(t, 10*time.Second, delays[len(delays)-1])
}

func TestPolicy_BaseAboveCapIsClamped(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: 5 * time.Second, GrowthFactor: 2, MaxDelay: 2 * time.Second}

	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, p.Delays())
}

func TestPolicy_StopsWhenSleepInterrupted(t *testing.T) {
	p := Policy{
		MaxAttempts:  5,
		BaseDelay:    time.Hour,
		GrowthFactor: 2,
		MaxDelay:     time.Hour,
		Retryable:    func(error) bool { return true },
		Logger:       zerolog.Nop(),
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := p.Do(ctx, func(context.Context) error {
		calls++
		return errTransient
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 1, calls)
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, SleepContext(context.Background(), time.Millisecond))
	assert.NoError(t, SleepContext(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, SleepContext(ctx, time.Minute), context.Canceled)
}

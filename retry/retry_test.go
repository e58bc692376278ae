package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient failure")

func newTestExecutor(attempts uint, waits *int, retries *int) *Executor {
	return New(Policy{Attempts: attempts, Delay: time.Millisecond}, zerolog.Nop(),
		WithWaitObserver(func(uint, time.Duration) { *waits++ }),
		WithRetryObserver(func(uint, error) { *retries++ }),
	)
}

func TestDoSucceedsAfterFailures(t *testing.T) {
	tests := []struct {
		name     string
		failures int
		attempts uint
	}{
		{name: "first attempt succeeds", failures: 0, attempts: 3},
		{name: "one failure", failures: 1, attempts: 3},
		{name: "two failures, last attempt", failures: 2, attempts: 3},
		{name: "four failures, five attempts", failures: 4, attempts: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var waits, retries, calls int
			e := newTestExecutor(tt.attempts, &waits, &retries)

			got, ok := Do(context.Background(), e, "test", func(context.Context) (int, error) {
				calls++
				if calls <= tt.failures {
					return 0, errTransient
				}
				return 42, nil
			})

			require.True(t, ok)
			assert.Equal(t, 42, got)
			assert.Equal(t, tt.failures+1, calls)
			assert.Equal(t, tt.failures, waits, "must sleep once per failure")
			assert.Equal(t, tt.failures, retries)
		})
	}
}

func TestDoAlwaysFails(t *testing.T) {
	var waits, retries, calls int
	e := newTestExecutor(3, &waits, &retries)

	got, ok := Do(context.Background(), e, "test", func(context.Context) (string, error) {
		calls++
		return "ignored", errTransient
	})

	assert.False(t, ok)
	assert.Empty(t, got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, waits, "no wait after the final attempt")
	assert.Equal(t, 3, retries)
}

func TestRun(t *testing.T) {
	var waits, retries int
	e := newTestExecutor(2, &waits, &retries)

	calls := 0
	ok := e.Run(context.Background(), "test", func(context.Context) error {
		calls++
		if calls == 1 {
			return errTransient
		}
		return nil
	})

	assert.True(t, ok)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, waits)
}

func TestDoUsesConstantDelay(t *testing.T) {
	var delays []time.Duration
	e := New(Policy{Attempts: 4, Delay: 2 * time.Millisecond}, zerolog.Nop(),
		WithWaitObserver(func(_ uint, d time.Duration) { delays = append(delays, d) }),
	)

	e.Run(context.Background(), "test", func(context.Context) error { return errTransient })

	require.Len(t, delays, 3)
	for _, d := range delays {
		assert.Equal(t, 2*time.Millisecond, d)
	}
}

func TestDoStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	e := New(Policy{Attempts: 3, Delay: time.Millisecond}, zerolog.Nop())
	ok := e.Run(ctx, "test", func(context.Context) error {
		calls++
		return nil
	})

	assert.False(t, ok)
	assert.Equal(t, 0, calls)
}

func TestDoAppliesAttemptTimeout(t *testing.T) {
	e := New(Policy{Attempts: 1, Timeout: 10 * time.Millisecond}, zerolog.Nop())

	var deadline time.Time
	var hasDeadline bool
	e.Run(context.Background(), "test", func(ctx context.Context) error {
		deadline, hasDeadline = ctx.Deadline()
		return nil
	})

	assert.True(t, hasDeadline)
	assert.WithinDuration(t, time.Now(), deadline, time.Second)
}

func TestNewDefaults(t *testing.T) {
	e := New(Policy{}, zerolog.Nop())
	assert.Equal(t, uint(DefaultAttempts), e.Policy().Attempts)

	p := DefaultPolicy()
	assert.Equal(t, uint(3), p.Attempts)
	assert.Equal(t, 5*time.Second, p.Delay)
	assert.Zero(t, p.Timeout)
}

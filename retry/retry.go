// Package retry runs fallible operations with a bounded number of attempts and
// a constant delay between them.
package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go"
	"github.com/rs/zerolog"
)

const (
	// DefaultAttempts is the number of attempts made before giving up.
	DefaultAttempts = 3
	// DefaultDelay is the pause between two attempts.
	DefaultDelay = 5 * time.Second
)

// Policy describes how an operation is retried.
type Policy struct {
	// Attempts is the total number of calls, including the first one.
	Attempts uint
	// Delay is the constant wait after each failed attempt except the last.
	Delay time.Duration
	// Timeout bounds every single attempt. Zero disables it.
	Timeout time.Duration
}

// DefaultPolicy returns three attempts five seconds apart without a timeout.
func DefaultPolicy() Policy {
	return Policy{
		Attempts: DefaultAttempts,
		Delay:    DefaultDelay,
	}
}

// Option configures an Executor.
type Option func(*Executor)

// WithRetryObserver registers a callback invoked after every failed attempt.
func WithRetryObserver(fn func(attempt uint, err error)) Option {
	return func(e *Executor) {
		e.onRetry = fn
	}
}

// WithWaitObserver registers a callback invoked before every delay.
func WithWaitObserver(fn func(attempt uint, delay time.Duration)) Option {
	return func(e *Executor) {
		e.onWait = fn
	}
}

// Executor applies a Policy to operations.
type Executor struct {
	policy  Policy
	logger  zerolog.Logger
	onRetry func(attempt uint, err error)
	onWait  func(attempt uint, delay time.Duration)
}

// New creates an Executor. A zero attempt count falls back to DefaultAttempts.
func New(policy Policy, logger zerolog.Logger, opts ...Option) *Executor {
	if policy.Attempts == 0 {
		policy.Attempts = DefaultAttempts
	}
	if policy.Delay < 0 {
		policy.Delay = 0
	}

	e := &Executor{
		policy: policy,
		logger: logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the effective policy.
func (e *Executor) Policy() Policy {
	return e.policy
}

// Run calls op until it succeeds or the attempts are exhausted. It reports
// whether op eventually succeeded; the final error is logged, not returned.
func (e *Executor) Run(ctx context.Context, name string, op func(ctx context.Context) error) bool {
	_, ok := Do(ctx, e, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return ok
}

// Do calls op until it succeeds or the attempts are exhausted and returns its
// value. The boolean is false when no attempt succeeded.
func Do[T any](ctx context.Context, e *Executor, name string, op func(ctx context.Context) (T, error)) (T, bool) {
	var result T

	err := retry.Do(
		func() error {
			if err := ctx.Err(); err != nil {
				return retry.Unrecoverable(err)
			}

			attemptCtx, cancel := e.attemptContext(ctx)
			defer cancel()

			value, err := op(attemptCtx)
			if err != nil {
				return err
			}
			result = value
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(e.policy.Attempts),
		retry.Delay(e.policy.Delay),
		retry.DelayType(e.fixedDelay),
		retry.OnRetry(func(n uint, err error) {
			e.logger.Warn().
				Err(err).
				Str("operation", name).
				Uint("attempt", n+1).
				Uint("max_attempts", e.policy.Attempts).
				Msg("Attempt failed")

			if e.onRetry != nil {
				e.onRetry(n+1, err)
			}
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		e.logger.Error().
			Err(err).
			Str("operation", name).
			Uint("attempts", e.policy.Attempts).
			Msg("Giving up after all attempts failed")

		var zero T
		return zero, false
	}

	return result, true
}

// fixedDelay keeps the wait constant across attempts.
func (e *Executor) fixedDelay(n uint, err error, config *retry.Config) time.Duration {
	delay := retry.FixedDelay(n, err, config)
	if e.onWait != nil {
		e.onWait(n+1, delay)
	}
	return delay
}

func (e *Executor) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.policy.Timeout > 0 {
		return context.WithTimeout(ctx, e.policy.Timeout)
	}
	return context.WithCancel(ctx)
}

package resilience

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Operation is a unit of work executed through the resilience policies.
// It must honor ctx cancellation; per-attempt timeouts are delivered
// through the ctx passed to each attempt.
type Operation[T any] func(ctx context.Context) (T, error)

// RetryConfig configures retry behavior.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	// 1 means a single attempt with no retries.
	MaxAttempts int
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration
	// MaxBackoff caps the delay between retries.
	MaxBackoff time.Duration
	// BackoffFactor is the exponential multiplier: delay = initial * factor^(attempt-1).
	BackoffFactor float64
	// Jitter adds randomness to backoff (0.0 to 1.0).
	Jitter float64
	// AttemptTimeout bounds each individual attempt. 0 means no per-attempt bound.
	AttemptTimeout time.Duration
	// RetryIf decides whether a failure is retryable. Defaults to DefaultRetryIf.
	RetryIf func(error) bool
	// OnAttempt is called after each failed attempt.
	OnAttempt func(attempt int, err error)
	// OnRetry is called after a failed attempt once a retry has been scheduled.
	OnRetry func(attempt int, err error, backoff time.Duration)
}

// DefaultRetryConfig returns sensible defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.1,
		RetryIf:        DefaultRetryIf,
	}
}

// ApplyDefaults fills unset fields with defaults.
func (c *RetryConfig) ApplyDefaults() {
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.InitialBackoff == 0 {
		c.InitialBackoff = 100 * time.Millisecond
	}
	if c.MaxBackoff == 0 {
		c.MaxBackoff = 10 * time.Second
	}
	if c.BackoffFactor == 0 {
		c.BackoffFactor = 2.0
	}
	if c.RetryIf == nil {
		c.RetryIf = DefaultRetryIf
	}
}

// Validate rejects misconfiguration. Call it at construction time;
// a policy that passes Validate never produces a negative delay.
func (c RetryConfig) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be >= 1 (got: %d)", c.MaxAttempts)
	}
	if c.InitialBackoff < 0 {
		return fmt.Errorf("retry.initial_backoff must not be negative (got: %s)", c.InitialBackoff)
	}
	if c.MaxBackoff < 0 {
		return fmt.Errorf("retry.max_backoff must not be negative (got: %s)", c.MaxBackoff)
	}
	if c.BackoffFactor < 1 {
		return fmt.Errorf("retry.backoff_factor must be >= 1 (got: %g)", c.BackoffFactor)
	}
	if c.Jitter < 0 || c.Jitter > 1 {
		return fmt.Errorf("retry.jitter must be between 0 and 1 (got: %g)", c.Jitter)
	}
	if c.AttemptTimeout < 0 {
		return fmt.Errorf("retry.attempt_timeout must not be negative (got: %s)", c.AttemptTimeout)
	}
	return nil
}

// DefaultRetryIf treats every failure as retryable. Caller cancellation
// never reaches the predicate: the retry loop surfaces it before
// classification, so a wrapped deadline error seen here is a dependency-side
// timeout, which is transient.
func DefaultRetryIf(err error) bool {
	return err != nil
}

// Retry executes op up to cfg.MaxAttempts times. Attempt 1 runs immediately;
// each retry waits for the backoff delay first. The wait is a context-aware
// timer, so cancellation interrupts it promptly.
//
// The operation may run multiple times. It must be idempotent, or the
// caller must accept duplicate side effects.
func Retry[T any](ctx context.Context, cfg RetryConfig, op Operation[T]) (T, error) {
	var zero T
	cfg.ApplyDefaults()

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := runAttempt(ctx, cfg.AttemptTimeout, op)
		if err == nil {
			return result, nil
		}
		// Overall cancellation wins over any attempt-level classification.
		if IsCancelled(ctx, err) {
			return zero, ctx.Err()
		}

		lastErr = err
		if cfg.OnAttempt != nil {
			cfg.OnAttempt(attempt, err)
		}

		if !cfg.RetryIf(err) {
			return zero, fmt.Errorf("%w: %w", ErrNonRetryable, err)
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		backoff := backoffFor(attempt, cfg)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, backoff)
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, cfg.MaxAttempts, lastErr)
}

// RetryFunc executes a function that returns only an error.
func RetryFunc(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	_, err := Retry(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// runAttempt executes one attempt, bounding it with the per-attempt timeout.
// An attempt cut short by its own deadline is tagged ErrAttemptTimeout,
// distinct from the caller's cancellation.
func runAttempt[T any](ctx context.Context, timeout time.Duration, op Operation[T]) (T, error) {
	if timeout <= 0 {
		return op(ctx)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := op(attemptCtx)
	if err != nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return result, fmt.Errorf("%w after %s: %w", ErrAttemptTimeout, timeout, err)
	}
	return result, err
}

// backoffFor calculates the backoff duration for an attempt.
func backoffFor(attempt int, cfg RetryConfig) time.Duration {
	backoff := float64(cfg.InitialBackoff) * math.Pow(cfg.BackoffFactor, float64(attempt-1))

	if cfg.Jitter > 0 {
		jitterRange := backoff * cfg.Jitter
		backoff += (rand.Float64()*2 - 1) * jitterRange
	}

	if backoff > float64(cfg.MaxBackoff) {
		backoff = float64(cfg.MaxBackoff)
	}
	if backoff < 0 {
		backoff = float64(cfg.InitialBackoff)
	}

	return time.Duration(backoff)
}

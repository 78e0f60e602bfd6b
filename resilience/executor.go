package resilience

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ExecutorConfig configures an Executor. Only Name is required; nil policy
// fields are skipped, so a zero-policy executor is a plain passthrough.
type ExecutorConfig[T any] struct {
	// Name identifies the downstream dependency.
	Name string
	// Retry wraps the raw operation. Nil means a single attempt per call.
	Retry *RetryConfig
	// Breaker is the shared per-dependency circuit breaker instance.
	// Inject the same instance everywhere the dependency is called,
	// typically obtained from a Registry. Nil disables the breaker.
	Breaker *CircuitBreaker
	// Fallback substitutes a result when the primary chain fails. Nil means
	// taxonomy errors propagate unchanged.
	Fallback Fallback[T]
	// Observer receives attempt, retry and fallback events. Nil means no events.
	Observer Observer
}

// Executor composes fallback, circuit breaker and retry around an operation
// in a fixed order: the fallback wraps the breaker, which wraps the retry
// loop around the operation.
//
// The breaker sees one aggregate outcome per Execute call. The whole retry
// sequence counts as a single success or failure, so an external call can
// move the consecutive failure count by at most one.
type Executor[T any] struct {
	name     string
	retry    *RetryConfig
	breaker  *CircuitBreaker
	fallback Fallback[T]
	obs      Observer
}

// NewExecutor builds an executor, failing fast on misconfiguration.
func NewExecutor[T any](cfg ExecutorConfig[T]) (*Executor[T], error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("executor.name is required")
	}
	if cfg.Retry != nil {
		cfg.Retry.ApplyDefaults()
		if err := cfg.Retry.Validate(); err != nil {
			return nil, err
		}
	}
	obs := cfg.Observer
	if obs == nil {
		obs = NopObserver{}
	}
	return &Executor[T]{
		name:     cfg.Name,
		retry:    cfg.Retry,
		breaker:  cfg.Breaker,
		fallback: cfg.Fallback,
		obs:      obs,
	}, nil
}

// Name returns the dependency name the executor guards.
func (e *Executor[T]) Name() string { return e.name }

// Breaker returns the executor's circuit breaker, nil if none is configured.
func (e *Executor[T]) Breaker() *CircuitBreaker { return e.breaker }

// Execute runs op through the full chain.
//
//  1. The breaker admits or denies the call. A denial short-circuits straight
//     to the fallback stage; retry never runs against an open circuit.
//  2. The retry policy runs the operation; its final success or failure is the
//     call's aggregate outcome.
//  3. The aggregate outcome is reported to the breaker.
//  4. On failure the fallback, if any, produces a substitute result. A failed
//     fallback surfaces FallbackFailedError. On success the result is
//     returned directly and the fallback is never invoked.
//
// Cancellation propagates as context.Canceled / context.DeadlineExceeded
// without counting toward the breaker and without invoking the fallback.
func (e *Executor[T]) Execute(ctx context.Context, op Operation[T]) (T, error) {
	callID := uuid.NewString()

	if e.breaker == nil {
		result, err := e.attempt(ctx, callID, op, false)
		return e.settle(ctx, callID, result, err)
	}

	p, err := e.breaker.acquire()
	if err != nil {
		var zero T
		return e.settle(ctx, callID, zero, err)
	}

	result, err := e.attempt(ctx, callID, op, p.trial)
	e.breaker.release(ctx, p, err)
	return e.settle(ctx, callID, result, err)
}

// attempt runs the retry-wrapped operation with observer hooks threaded in.
// A half-open trial probes with a single attempt; retrying against a
// half-open circuit would turn the probe into load.
func (e *Executor[T]) attempt(ctx context.Context, callID string, op Operation[T], trial bool) (T, error) {
	if e.retry == nil || trial {
		var timeout time.Duration
		if e.retry != nil {
			timeout = e.retry.AttemptTimeout
		}
		result, err := runAttempt(ctx, timeout, op)
		if err != nil && !IsCancelled(ctx, err) {
			e.obs.AttemptFailed(AttemptEvent{Dependency: e.name, CallID: callID, Attempt: 1, Err: err})
		}
		return result, err
	}

	cfg := *e.retry
	userOnAttempt := cfg.OnAttempt
	userOnRetry := cfg.OnRetry

	cfg.OnAttempt = func(attempt int, err error) {
		e.obs.AttemptFailed(AttemptEvent{Dependency: e.name, CallID: callID, Attempt: attempt, Err: err})
		if userOnAttempt != nil {
			userOnAttempt(attempt, err)
		}
	}
	cfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
		e.obs.RetryScheduled(RetryEvent{Dependency: e.name, CallID: callID, Attempt: attempt, Backoff: backoff, Err: err})
		if userOnRetry != nil {
			userOnRetry(attempt, err, backoff)
		}
	}

	return Retry(ctx, cfg, op)
}

// settle applies the fallback stage to the aggregate outcome.
func (e *Executor[T]) settle(ctx context.Context, callID string, result T, err error) (T, error) {
	if err == nil {
		return result, nil
	}

	var zero T
	// A cancelled caller gets the cancellation back, not a substitute.
	if e.fallback == nil || IsCancelled(ctx, err) {
		return zero, err
	}

	substitute, fbErr := e.fallback(ctx, err)
	e.obs.FallbackInvoked(FallbackEvent{Dependency: e.name, CallID: callID, Cause: err, Err: fbErr})
	if fbErr != nil {
		return zero, &FallbackFailedError{Cause: err, FallbackErr: fbErr}
	}
	return substitute, nil
}

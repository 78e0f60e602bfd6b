package errors

import (
	"context"
	stderrors "errors"

	"github.com/kbukum/resilkit/resilience"
)

// FromResilience converts a resilience taxonomy error into an AppError so
// embedding applications can surface a consistent error shape. Errors that
// are already AppErrors, and errors outside the taxonomy, pass through
// unchanged. ctx is the caller's context; only a call the caller actually
// abandoned maps to Cancelled, never a dependency-side timeout that happens
// to wrap the same sentinel.
func FromResilience(ctx context.Context, dependency string, err error) error {
	if err == nil {
		return nil
	}
	if IsAppError(err) {
		return err
	}

	var fbErr *resilience.FallbackFailedError
	switch {
	case stderrors.As(err, &fbErr):
		return FallbackFailed(dependency, err)
	case stderrors.Is(err, resilience.ErrCircuitOpen):
		return CircuitOpen(dependency).WithCause(err)
	case stderrors.Is(err, resilience.ErrRetriesExhausted):
		return RetriesExhausted(dependency, 0).WithCause(err)
	case stderrors.Is(err, resilience.ErrNonRetryable):
		return NonRetryable(dependency, err)
	case stderrors.Is(err, resilience.ErrAttemptTimeout):
		return AttemptTimeout(dependency).WithCause(err)
	case stderrors.Is(err, resilience.ErrRateLimited):
		return RateLimited().WithCause(err)
	case stderrors.Is(err, resilience.ErrBulkheadFull), stderrors.Is(err, resilience.ErrBulkheadTimeout):
		return ConcurrencyLimit(dependency).WithCause(err)
	case resilience.IsCancelled(ctx, err):
		return Cancelled(dependency).WithCause(err)
	default:
		return err
	}
}

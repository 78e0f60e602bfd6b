package resilience

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for the outcome taxonomy. Wrapped errors carry the
// underlying cause, so both the kind and the cause match with errors.Is.
var (
	// ErrCircuitOpen is returned when the circuit breaker denies a call
	// without invoking the operation.
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// ErrRetriesExhausted tags the last error after all permitted attempts failed.
	ErrRetriesExhausted = errors.New("retry attempts exhausted")
	// ErrNonRetryable tags an error the RetryIf predicate refused to retry.
	ErrNonRetryable = errors.New("error is not retryable")
	// ErrAttemptTimeout tags a single attempt that exceeded its allotted time.
	ErrAttemptTimeout = errors.New("attempt timed out")
)

// FallbackFailedError is returned when the fallback itself fails.
// It wraps both the terminal error from the primary chain and the
// fallback's own error, so neither failure is swallowed.
type FallbackFailedError struct {
	// Cause is the terminal error from the primary call chain.
	Cause error
	// FallbackErr is the error returned by the fallback function.
	FallbackErr error
}

func (e *FallbackFailedError) Error() string {
	return fmt.Sprintf("fallback failed: %v (original: %v)", e.FallbackErr, e.Cause)
}

// Unwrap exposes both errors to errors.Is and errors.As.
func (e *FallbackFailedError) Unwrap() []error {
	return []error{e.FallbackErr, e.Cause}
}

// IsCancelled reports whether err represents caller-initiated cancellation
// or the caller's overall deadline. The caller's ctx must actually be done:
// a dependency that times out on its own wraps context.DeadlineExceeded too
// (http.Client.Timeout does exactly that), and that is an ordinary failure,
// not abandonment. Cancelled outcomes never count toward circuit breaker
// thresholds and never reach the fallback.
func IsCancelled(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() == nil || errors.Is(err, ErrAttemptTimeout) {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

package resilience

import "context"

// Fallback produces a substitute result from the terminal error of the
// primary call chain, typically a cached value or a sentinel "unavailable"
// value. It receives the caller's context so a fallback that consults a
// cache can honor the caller's deadline.
//
// A fallback may itself fail; the executor then surfaces a
// FallbackFailedError wrapping both errors.
type Fallback[T any] func(ctx context.Context, cause error) (T, error)

// StaticFallback returns a fallback that always produces the given value.
func StaticFallback[T any](value T) Fallback[T] {
	return func(context.Context, error) (T, error) {
		return value, nil
	}
}

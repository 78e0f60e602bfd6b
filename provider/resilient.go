package provider

import (
	"context"

	"github.com/kbukum/resilkit/errors"
	"github.com/kbukum/resilkit/resilience"
)

// WithResilience wraps a RequestResponse provider with resilience middleware.
// Execution chain: RateLimiter → Bulkhead → Fallback(CircuitBreaker(Retry(Execute))).
// Nil config fields are skipped. Empty config returns the provider unchanged.
// Invalid settings fail here, at wrap time.
func WithResilience[I, O any](p RequestResponse[I, O], cfg ResilienceConfig, fallback resilience.Fallback[O]) (RequestResponse[I, O], error) {
	if cfg.IsEmpty() && fallback == nil {
		return p, nil
	}
	state, err := buildResilience(p.Name(), cfg, fallback)
	if err != nil {
		return nil, err
	}
	return &resilientRR[I, O]{inner: p, state: state}, nil
}

// WithSinkResilience wraps a Sink provider with resilience middleware.
// Execution chain: RateLimiter → Bulkhead → CircuitBreaker → Retry → Send.
func WithSinkResilience[I any](p Sink[I], cfg ResilienceConfig) (Sink[I], error) {
	if cfg.IsEmpty() {
		return p, nil
	}
	state, err := buildResilience[struct{}](p.Name(), cfg, nil)
	if err != nil {
		return nil, err
	}
	return &resilientSink[I]{inner: p, state: state}, nil
}

// --- RequestResponse wrapper ---

type resilientRR[I, O any] struct {
	inner RequestResponse[I, O]
	state *ResilienceState[O]
}

func (r *resilientRR[I, O]) Name() string                         { return r.inner.Name() }
func (r *resilientRR[I, O]) IsAvailable(ctx context.Context) bool { return r.inner.IsAvailable(ctx) }

func (r *resilientRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	return executeGuarded(ctx, r.state, func(ctx context.Context) (O, error) {
		return r.inner.Execute(ctx, input)
	})
}

// --- Sink wrapper ---

type resilientSink[I any] struct {
	inner Sink[I]
	state *ResilienceState[struct{}]
}

func (r *resilientSink[I]) Name() string                         { return r.inner.Name() }
func (r *resilientSink[I]) IsAvailable(ctx context.Context) bool { return r.inner.IsAvailable(ctx) }

func (r *resilientSink[I]) Send(ctx context.Context, input I) error {
	_, err := executeGuarded(ctx, r.state, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.inner.Send(ctx, input)
	})
	return err
}

// --- Core execution chain ---

// executeGuarded runs op through the resilience chain. Taxonomy errors come
// back as AppError so callers get one error shape across the stack.
func executeGuarded[O any](ctx context.Context, s *ResilienceState[O], op resilience.Operation[O]) (O, error) {
	var zero O

	if s.rl != nil {
		if err := s.rl.Wait(ctx); err != nil {
			return zero, errors.FromResilience(ctx, s.name, err)
		}
	}

	if s.bh != nil {
		result, err := resilience.ExecuteBulkhead(ctx, s.bh, func() (O, error) {
			return s.exec.Execute(ctx, op)
		})
		if err != nil {
			return zero, errors.FromResilience(ctx, s.name, err)
		}
		return result, nil
	}

	result, err := s.exec.Execute(ctx, op)
	if err != nil {
		return zero, errors.FromResilience(ctx, s.name, err)
	}
	return result, nil
}

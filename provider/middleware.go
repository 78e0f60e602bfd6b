package provider

import (
	"github.com/kbukum/resilkit/resilience"
)

// Middleware transforms a RequestResponse provider by wrapping it with
// cross-cutting behavior such as logging, metrics, tracing or guarding.
type Middleware[I, O any] func(RequestResponse[I, O]) RequestResponse[I, O]

// Chain composes middlewares into one. The first middleware is outermost:
// it runs first on the way in and last on the way out. Ordering matters
// around Guard: telemetry placed before it observes one aggregate outcome
// per call, telemetry placed after it observes every retry attempt.
//
// Chain(a, b, c)(provider) is equivalent to a(b(c(provider))).
func Chain[I, O any](middlewares ...Middleware[I, O]) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		for i := len(middlewares) - 1; i >= 0; i-- {
			inner = middlewares[i](inner)
		}
		return inner
	}
}

// Guard returns a Middleware that routes the provider through the resilience
// chain, so guarding composes with the telemetry middlewares. It panics on
// invalid settings, like template.Must; use WithResilience directly when the
// configuration is not known to be valid.
func Guard[I, O any](cfg ResilienceConfig, fallback resilience.Fallback[O]) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		wrapped, err := WithResilience(inner, cfg, fallback)
		if err != nil {
			panic(err)
		}
		return wrapped
	}
}

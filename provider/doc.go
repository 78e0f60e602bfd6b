// Package provider wraps swappable backends with resilience and
// cross-cutting middleware using Go generics.
//
// Two interaction patterns are covered:
//   - RequestResponse[I, O]: one input → one output (HTTP, gRPC, subprocess)
//   - Sink[I]: one input → ack (queue produce, webhook, push notification)
//
// # Resilience
//
// WithResilience routes provider calls through the resilience chain:
// RateLimiter → Bulkhead → Fallback(CircuitBreaker(Retry(Execute))).
//
//	guarded, err := provider.WithResilience(payments, provider.ResilienceConfig{
//	    Retry:          &retryCfg,
//	    CircuitBreaker: &breakerCfg,
//	}, resilience.StaticFallback[Receipt](cached))
//
// Taxonomy errors surface as errors.AppError.
//
// # Middleware
//
// Middleware[I, O] is a function that wraps a RequestResponse provider.
// Use Chain to compose multiple middlewares:
//
//	wrapped := provider.Chain(
//	    provider.WithLogging[In, Out](log),
//	    provider.WithMetrics[In, Out](metrics),
//	    provider.WithTracing[In, Out]("my-service"),
//	)(rawProvider)
package provider

// Package resilience provides fault-tolerance policies for calls to
// unreliable dependencies: retry with exponential backoff, a
// consecutive-failure circuit breaker, fallback substitution, bulkhead
// concurrency limiting and token bucket rate limiting.
//
// The Executor composes the core policies in a fixed order, fallback
// outermost, then circuit breaker, then retry around the operation. The
// breaker sees one aggregate outcome per external call regardless of how
// many attempts ran inside it:
//
//	reg, _ := resilience.NewRegistry(resilience.DefaultCircuitBreakerConfig(""))
//	retry := resilience.DefaultRetryConfig()
//
//	exec, err := resilience.NewExecutor(resilience.ExecutorConfig[*Quote]{
//	    Name:     "pricing",
//	    Retry:    &retry,
//	    Breaker:  reg.Get("pricing"),
//	    Fallback: resilience.StaticFallback(cachedQuote),
//	})
//
//	quote, err := exec.Execute(ctx, func(ctx context.Context) (*Quote, error) {
//	    return pricing.Fetch(ctx, sku)
//	})
//
// Every terminal outcome is one of a small taxonomy distinguishable with
// errors.Is / errors.As: the operation's own error, ErrAttemptTimeout,
// ErrRetriesExhausted, ErrNonRetryable, ErrCircuitOpen, context.Canceled,
// or FallbackFailedError.
package resilience

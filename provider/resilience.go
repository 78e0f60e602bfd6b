package provider

import (
	"github.com/kbukum/resilkit/resilience"
)

// ResilienceConfig bundles optional resilience policies for a provider.
// Nil fields are skipped; zero config means pure passthrough with no
// overhead.
type ResilienceConfig struct {
	// Name identifies the downstream dependency. Defaults to the wrapped
	// provider's name.
	Name string
	// Retry automatically retries failed calls with exponential backoff.
	Retry *resilience.RetryConfig
	// CircuitBreaker builds a breaker owned by this wrapper. When several
	// call sites share a dependency, inject Breaker instead.
	CircuitBreaker *resilience.CircuitBreakerConfig
	// Breaker is a shared breaker instance, typically from a Registry.
	// Takes precedence over CircuitBreaker.
	Breaker *resilience.CircuitBreaker
	// Bulkhead limits concurrent calls to prevent resource exhaustion.
	Bulkhead *resilience.BulkheadConfig
	// RateLimiter limits the rate of calls using a token bucket.
	RateLimiter *resilience.RateLimiterConfig
	// Observer receives resilience events from the executor.
	Observer resilience.Observer
}

// IsEmpty returns true if no resilience policies are configured.
func (c ResilienceConfig) IsEmpty() bool {
	return c.Retry == nil && c.CircuitBreaker == nil && c.Breaker == nil &&
		c.Bulkhead == nil && c.RateLimiter == nil
}

// ResilienceState holds initialized resilience primitives built from config.
// The executor is typed by the provider output, so the state is too.
type ResilienceState[O any] struct {
	name string
	exec *resilience.Executor[O]
	rl   *resilience.RateLimiter
	bh   *resilience.Bulkhead
}

// buildResilience creates initialized primitives from config, failing fast
// on invalid settings.
func buildResilience[O any](name string, cfg ResilienceConfig, fallback resilience.Fallback[O]) (*ResilienceState[O], error) {
	if cfg.Name != "" {
		name = cfg.Name
	}

	breaker := cfg.Breaker
	if breaker == nil && cfg.CircuitBreaker != nil {
		bc := *cfg.CircuitBreaker
		if bc.Name == "" {
			bc.Name = name
		}
		cb, err := resilience.NewCircuitBreaker(bc)
		if err != nil {
			return nil, err
		}
		breaker = cb
	}

	exec, err := resilience.NewExecutor(resilience.ExecutorConfig[O]{
		Name:     name,
		Retry:    cfg.Retry,
		Breaker:  breaker,
		Fallback: fallback,
		Observer: cfg.Observer,
	})
	if err != nil {
		return nil, err
	}

	s := &ResilienceState[O]{name: name, exec: exec}

	if cfg.RateLimiter != nil {
		rc := *cfg.RateLimiter
		if rc.Name == "" {
			rc.Name = name
		}
		s.rl, err = resilience.NewRateLimiter(rc)
		if err != nil {
			return nil, err
		}
	}
	if cfg.Bulkhead != nil {
		bc := *cfg.Bulkhead
		if bc.Name == "" {
			bc.Name = name
		}
		s.bh, err = resilience.NewBulkhead(bc)
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

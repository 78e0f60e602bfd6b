package resilience

import (
	"sort"
	"sync"
)

// Registry hands out exactly one circuit breaker per logical dependency.
// All call sites that talk to the same dependency must share one breaker
// instance; the registry is the place that guarantees it.
type Registry struct {
	mu       sync.Mutex
	defaults CircuitBreakerConfig
	breakers map[string]*CircuitBreaker
}

// NewRegistry creates a registry. defaults supplies threshold, break duration
// and observer for breakers created through Get; the Name field is ignored.
func NewRegistry(defaults CircuitBreakerConfig) (*Registry, error) {
	defaults.ApplyDefaults()
	if err := defaults.Validate(); err != nil {
		return nil, err
	}
	return &Registry{
		defaults: defaults,
		breakers: make(map[string]*CircuitBreaker),
	}, nil
}

// Get returns the breaker for a dependency, creating it from the registry
// defaults on first use.
func (r *Registry) Get(name string) *CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[name]; ok {
		return cb
	}

	cfg := r.defaults
	cfg.Name = name
	// Defaults were validated in NewRegistry; overriding the name cannot
	// make them invalid.
	cb, _ := NewCircuitBreaker(cfg)
	r.breakers[name] = cb
	return cb
}

// Register installs a breaker built from a dependency-specific config.
// It replaces any breaker previously created for the same name.
func (r *Registry) Register(cfg CircuitBreakerConfig) (*CircuitBreaker, error) {
	cb, err := NewCircuitBreaker(cfg)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.breakers[cfg.Name] = cb
	return cb, nil
}

// Names returns the registered dependency names, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.breakers))
	for name := range r.breakers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

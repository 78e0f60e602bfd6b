package resilience

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed allows calls to pass through.
	StateClosed State = iota
	// StateOpen denies all calls.
	StateOpen
	// StateHalfOpen allows a single trial call to probe recovery.
	StateHalfOpen
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures a circuit breaker.
type CircuitBreakerConfig struct {
	// Name identifies the logical dependency this breaker guards.
	Name string
	// FailureThreshold is the number of consecutive failures before opening.
	FailureThreshold int
	// BreakDuration is how long the breaker stays open before allowing a trial.
	BreakDuration time.Duration
	// Observer receives state transition events. Optional.
	Observer Observer
	// OnStateChange is called on every state transition. Optional.
	OnStateChange func(name string, from, to State)
}

// DefaultCircuitBreakerConfig returns sensible defaults.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		BreakDuration:    30 * time.Second,
	}
}

// ApplyDefaults fills unset fields with defaults.
func (c *CircuitBreakerConfig) ApplyDefaults() {
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 5
	}
	if c.BreakDuration == 0 {
		c.BreakDuration = 30 * time.Second
	}
}

// Validate rejects misconfiguration at construction time.
func (c CircuitBreakerConfig) Validate() error {
	if c.FailureThreshold < 1 {
		return fmt.Errorf("circuit_breaker.failure_threshold must be >= 1 (got: %d)", c.FailureThreshold)
	}
	if c.BreakDuration <= 0 {
		return fmt.Errorf("circuit_breaker.break_duration must be positive (got: %s)", c.BreakDuration)
	}
	return nil
}

// CircuitBreaker is a consecutive-failure circuit breaker for one logical
// dependency. Create exactly one instance per dependency and share it across
// all callers; it is safe for concurrent use.
//
// States:
//   - Closed: calls pass through; a success resets the failure count
//   - Open: calls are denied with ErrCircuitOpen until BreakDuration elapses
//   - HalfOpen: exactly one trial call is allowed; concurrent callers are
//     denied without blocking on the trial's outcome
//
// The Open→HalfOpen transition is computed lazily at call time from the
// opened timestamp; there is no background timer.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu            sync.Mutex
	state         State
	failures      int
	openedAt      time.Time
	trialInFlight bool
}

// NewCircuitBreaker creates a circuit breaker, failing fast on invalid config.
func NewCircuitBreaker(config CircuitBreakerConfig) (*CircuitBreaker, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
	}, nil
}

// permit records what the breaker granted to one call, so a late result
// from a call admitted in an earlier state cannot corrupt the trial slot.
type permit struct {
	trial bool
}

// Execute runs fn through the circuit breaker.
// Returns ErrCircuitOpen without invoking fn when the breaker denies the call.
// ctx is consulted only to classify the outcome: an error caused by the
// caller's own cancellation does not count toward the failure threshold.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	p, err := cb.acquire()
	if err != nil {
		return err
	}

	err = fn()
	cb.release(ctx, p, err)
	return err
}

// Name returns the dependency name this breaker guards.
func (cb *CircuitBreaker) Name() string { return cb.config.Name }

// State returns the current state, applying the lazy open→half-open transition.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentState(time.Now())
}

// Failures returns the consecutive failure count.
func (cb *CircuitBreaker) Failures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

// Reset forces the breaker back to closed with a zero failure count.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.toState(StateClosed)
	cb.failures = 0
	cb.trialInFlight = false
}

// acquire admits or denies one call, returning the granted permit.
func (cb *CircuitBreaker) acquire() (permit, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.currentState(time.Now()) {
	case StateClosed:
		return permit{}, nil
	case StateHalfOpen:
		if cb.trialInFlight {
			return permit{}, ErrCircuitOpen
		}
		cb.trialInFlight = true
		return permit{trial: true}, nil
	default:
		return permit{}, ErrCircuitOpen
	}
}

// release reports one call's aggregate outcome against the state machine.
// ctx is the caller's context, used to tell caller cancellation apart from a
// dependency-side timeout that happens to wrap the same sentinel.
func (cb *CircuitBreaker) release(ctx context.Context, p permit, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if p.trial {
		cb.trialInFlight = false
	}

	switch {
	case err == nil:
		cb.onSuccess(p)
	case IsCancelled(ctx, err):
		// The caller gave up; that says nothing about the dependency's
		// health, so the counter and state are untouched.
	default:
		cb.onFailure(p)
	}
}

func (cb *CircuitBreaker) onSuccess(p permit) {
	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		if p.trial {
			cb.toState(StateClosed)
		}
	}
}

func (cb *CircuitBreaker) onFailure(p permit) {
	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.config.FailureThreshold {
			cb.toState(StateOpen)
		}
	case StateHalfOpen:
		if p.trial {
			cb.toState(StateOpen)
		}
	}
	// A late failure report while already open is ignored: the breaker
	// is tripped and the timer belongs to the transition that tripped it.
}

// currentState applies the lazy open→half-open transition. Callers must hold mu.
func (cb *CircuitBreaker) currentState(now time.Time) State {
	if cb.state == StateOpen && now.Sub(cb.openedAt) >= cb.config.BreakDuration {
		cb.toState(StateHalfOpen)
	}
	return cb.state
}

// toState transitions to a new state. Callers must hold mu.
func (cb *CircuitBreaker) toState(to State) {
	if cb.state == to {
		return
	}

	from := cb.state
	cb.state = to

	switch to {
	case StateClosed:
		cb.failures = 0
		cb.trialInFlight = false
	case StateOpen:
		cb.openedAt = time.Now()
		cb.trialInFlight = false
	case StateHalfOpen:
		cb.trialInFlight = false
	}

	cb.notify(from, to)
}

func (cb *CircuitBreaker) notify(from, to State) {
	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(cb.config.Name, from, to)
	}
	if cb.config.Observer == nil {
		return
	}
	ev := CircuitEvent{
		Dependency: cb.config.Name,
		From:       from,
		To:         to,
		Failures:   cb.failures,
	}
	switch to {
	case StateOpen:
		cb.config.Observer.CircuitOpened(ev)
	case StateHalfOpen:
		cb.config.Observer.CircuitHalfOpened(ev)
	case StateClosed:
		cb.config.Observer.CircuitClosed(ev)
	}
}

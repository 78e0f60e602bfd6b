package resilience

import "time"

// AttemptEvent describes a single failed attempt within a call.
type AttemptEvent struct {
	// Dependency is the logical dependency name.
	Dependency string
	// CallID identifies the external call the attempt belongs to.
	CallID string
	// Attempt is the 1-based attempt number.
	Attempt int
	// Err is the attempt's failure.
	Err error
}

// RetryEvent describes a retry that has been scheduled after a failed attempt.
type RetryEvent struct {
	Dependency string
	CallID     string
	// Attempt is the attempt that just failed.
	Attempt int
	// Backoff is the wait before the next attempt.
	Backoff time.Duration
	Err     error
}

// CircuitEvent describes a circuit breaker state transition.
type CircuitEvent struct {
	Dependency string
	From       State
	To         State
	// Failures is the consecutive failure count at transition time.
	Failures int
}

// FallbackEvent describes a completed fallback invocation.
type FallbackEvent struct {
	Dependency string
	CallID     string
	// Cause is the terminal error that triggered the fallback.
	Cause error
	// Err is the fallback's own error, nil if it produced a substitute.
	Err error
}

// Observer receives discrete resilience events. Implementations must be safe
// for concurrent use; methods are called from whichever goroutine runs the
// call, so they should return quickly and never block.
type Observer interface {
	AttemptFailed(ev AttemptEvent)
	RetryScheduled(ev RetryEvent)
	CircuitOpened(ev CircuitEvent)
	CircuitHalfOpened(ev CircuitEvent)
	CircuitClosed(ev CircuitEvent)
	FallbackInvoked(ev FallbackEvent)
}

// NopObserver ignores all events. Embed it to implement only the
// events an observer cares about.
type NopObserver struct{}

func (NopObserver) AttemptFailed(AttemptEvent)     {}
func (NopObserver) RetryScheduled(RetryEvent)      {}
func (NopObserver) CircuitOpened(CircuitEvent)     {}
func (NopObserver) CircuitHalfOpened(CircuitEvent) {}
func (NopObserver) CircuitClosed(CircuitEvent)     {}
func (NopObserver) FallbackInvoked(FallbackEvent)  {}

// MultiObserver fans events out to several observers in order.
func MultiObserver(observers ...Observer) Observer {
	return multiObserver(observers)
}

type multiObserver []Observer

func (m multiObserver) AttemptFailed(ev AttemptEvent) {
	for _, o := range m {
		o.AttemptFailed(ev)
	}
}

func (m multiObserver) RetryScheduled(ev RetryEvent) {
	for _, o := range m {
		o.RetryScheduled(ev)
	}
}

func (m multiObserver) CircuitOpened(ev CircuitEvent) {
	for _, o := range m {
		o.CircuitOpened(ev)
	}
}

func (m multiObserver) CircuitHalfOpened(ev CircuitEvent) {
	for _, o := range m {
		o.CircuitHalfOpened(ev)
	}
}

func (m multiObserver) CircuitClosed(ev CircuitEvent) {
	for _, o := range m {
		o.CircuitClosed(ev)
	}
}

func (m multiObserver) FallbackInvoked(ev FallbackEvent) {
	for _, o := range m {
		o.FallbackInvoked(ev)
	}
}

package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrRateLimited is returned when a call exceeds the configured rate.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimiterConfig configures a token bucket rate limiter.
type RateLimiterConfig struct {
	// Name identifies this rate limiter for metrics/logging.
	Name string
	// Rate is the number of calls allowed per second.
	Rate float64
	// Burst is the maximum burst size. Defaults to Rate.
	Burst int
	// OnLimit is called when a call is rate limited.
	OnLimit func(name string)
}

// DefaultRateLimiterConfig returns sensible defaults.
func DefaultRateLimiterConfig(name string) RateLimiterConfig {
	return RateLimiterConfig{
		Name:  name,
		Rate:  10.0,
		Burst: 20,
	}
}

// ApplyDefaults fills unset fields with defaults.
func (c *RateLimiterConfig) ApplyDefaults() {
	if c.Rate == 0 {
		c.Rate = 10.0
	}
	if c.Burst == 0 {
		c.Burst = int(c.Rate)
	}
}

// Validate rejects misconfiguration at construction time.
func (c RateLimiterConfig) Validate() error {
	if c.Rate <= 0 {
		return fmt.Errorf("rate_limiter.rate must be positive (got: %g)", c.Rate)
	}
	if c.Burst < 1 {
		return fmt.Errorf("rate_limiter.burst must be >= 1 (got: %d)", c.Burst)
	}
	return nil
}

// RateLimiter is a token bucket limiter controlling the call rate toward a
// dependency. Safe for concurrent use.
type RateLimiter struct {
	config RateLimiterConfig

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// NewRateLimiter creates a rate limiter, failing fast on invalid config.
func NewRateLimiter(config RateLimiterConfig) (*RateLimiter, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &RateLimiter{
		config:     config,
		tokens:     float64(config.Burst),
		lastRefill: time.Now(),
	}, nil
}

// Allow reports whether one call is allowed right now, consuming a token if so.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill(time.Now())
	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}

	if rl.config.OnLimit != nil {
		rl.config.OnLimit(rl.config.Name)
	}
	return false
}

// Wait blocks until a call is allowed or the context is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	wait := rl.reserve(time.Now())
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Execute runs fn if the rate limit allows, otherwise returns ErrRateLimited.
func (rl *RateLimiter) Execute(fn func() error) error {
	if !rl.Allow() {
		return ErrRateLimited
	}
	return fn()
}

// Tokens returns the number of tokens currently available.
func (rl *RateLimiter) Tokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill(time.Now())
	return rl.tokens
}

// refill adds tokens for the time elapsed since the last refill,
// capped at the burst size. Callers must hold mu.
func (rl *RateLimiter) refill(now time.Time) {
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.lastRefill = now

	rl.tokens += elapsed * rl.config.Rate
	if rl.tokens > float64(rl.config.Burst) {
		rl.tokens = float64(rl.config.Burst)
	}
}

// reserve consumes one token, going negative if necessary, and returns how
// long the caller must wait before proceeding.
func (rl *RateLimiter) reserve(now time.Time) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill(now)
	rl.tokens--
	if rl.tokens >= 0 {
		return 0
	}

	waitSeconds := -rl.tokens / rl.config.Rate
	return time.Duration(waitSeconds * float64(time.Second))
}

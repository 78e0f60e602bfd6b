package config

import (
	"fmt"
	"time"

	"github.com/kbukum/resilkit/resilience"
)

// Profile describes the resilience settings for one dependency. Sections left
// unset in a dependency profile inherit from the defaults profile.
type Profile struct {
	Retry     RetrySettings     `yaml:"retry" mapstructure:"retry"`
	Breaker   BreakerSettings   `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
	Bulkhead  BulkheadSettings  `yaml:"bulkhead" mapstructure:"bulkhead"`
	RateLimit RateLimitSettings `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// RetrySettings configures the retry policy. Enabled is a pointer so an unset
// value can inherit from the defaults profile.
type RetrySettings struct {
	Enabled        *bool         `yaml:"enabled" mapstructure:"enabled"`
	MaxAttempts    int           `yaml:"max_attempts" mapstructure:"max_attempts" validate:"omitempty,min=1"`
	InitialBackoff time.Duration `yaml:"initial_backoff" mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff" mapstructure:"max_backoff"`
	BackoffFactor  float64       `yaml:"backoff_factor" mapstructure:"backoff_factor" validate:"omitempty,min=1"`
	Jitter         float64       `yaml:"jitter" mapstructure:"jitter" validate:"min=0,max=1"`
	AttemptTimeout time.Duration `yaml:"attempt_timeout" mapstructure:"attempt_timeout"`
}

// BreakerSettings configures the circuit breaker.
type BreakerSettings struct {
	Enabled          *bool         `yaml:"enabled" mapstructure:"enabled"`
	FailureThreshold int           `yaml:"failure_threshold" mapstructure:"failure_threshold" validate:"omitempty,min=1"`
	BreakDuration    time.Duration `yaml:"break_duration" mapstructure:"break_duration"`
}

// BulkheadSettings configures the concurrency limiter.
type BulkheadSettings struct {
	Enabled       *bool         `yaml:"enabled" mapstructure:"enabled"`
	MaxConcurrent int           `yaml:"max_concurrent" mapstructure:"max_concurrent" validate:"omitempty,min=1"`
	MaxWait       time.Duration `yaml:"max_wait" mapstructure:"max_wait"`
}

// RateLimitSettings configures the token-bucket rate limiter.
type RateLimitSettings struct {
	Enabled *bool   `yaml:"enabled" mapstructure:"enabled"`
	Rate    float64 `yaml:"rate" mapstructure:"rate" validate:"omitempty,gt=0"`
	Burst   int     `yaml:"burst" mapstructure:"burst" validate:"omitempty,min=1"`
}

// ApplyDefaults fills unset fields of the defaults profile from the library
// defaults. Dependency profiles are not filled here; they inherit at
// ProfileFor time so unset still means "inherit".
func (p *Profile) ApplyDefaults() {
	rd := resilience.DefaultRetryConfig()
	if p.Retry.Enabled == nil {
		p.Retry.Enabled = boolPtr(true)
	}
	if p.Retry.MaxAttempts == 0 {
		p.Retry.MaxAttempts = rd.MaxAttempts
	}
	if p.Retry.InitialBackoff == 0 {
		p.Retry.InitialBackoff = rd.InitialBackoff
	}
	if p.Retry.MaxBackoff == 0 {
		p.Retry.MaxBackoff = rd.MaxBackoff
	}
	if p.Retry.BackoffFactor == 0 {
		p.Retry.BackoffFactor = rd.BackoffFactor
	}
	if p.Retry.Jitter == 0 {
		p.Retry.Jitter = rd.Jitter
	}

	if p.Breaker.Enabled == nil {
		p.Breaker.Enabled = boolPtr(true)
	}
	if p.Breaker.FailureThreshold == 0 {
		p.Breaker.FailureThreshold = 5
	}
	if p.Breaker.BreakDuration == 0 {
		p.Breaker.BreakDuration = 30 * time.Second
	}

	if p.Bulkhead.Enabled == nil {
		p.Bulkhead.Enabled = boolPtr(false)
	}
	if p.Bulkhead.MaxConcurrent == 0 {
		p.Bulkhead.MaxConcurrent = 10
	}

	if p.RateLimit.Enabled == nil {
		p.RateLimit.Enabled = boolPtr(false)
	}
	if p.RateLimit.Rate == 0 {
		p.RateLimit.Rate = 100
	}
	if p.RateLimit.Burst == 0 {
		p.RateLimit.Burst = int(p.RateLimit.Rate)
	}
}

// Validate checks the profile by converting to the resilience configs and
// running their own validation.
func (p *Profile) Validate(name string) error {
	if rc := p.RetryConfig(); rc != nil {
		if err := rc.Validate(); err != nil {
			return fmt.Errorf("profile %s: retry: %w", name, err)
		}
	}
	if p.breakerEnabled() {
		cfg := p.breakerConfig(name)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("profile %s: circuit_breaker: %w", name, err)
		}
	}
	if p.bulkheadEnabled() {
		cfg := p.BulkheadConfig(name)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("profile %s: bulkhead: %w", name, err)
		}
	}
	if p.rateLimitEnabled() {
		cfg := p.RateLimiterConfig(name)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("profile %s: rate_limit: %w", name, err)
		}
	}
	return nil
}

// RetryConfig converts the retry settings into a resilience.RetryConfig.
// Returns nil when retry is disabled.
func (p *Profile) RetryConfig() *resilience.RetryConfig {
	if p.Retry.Enabled != nil && !*p.Retry.Enabled {
		return nil
	}
	return &resilience.RetryConfig{
		MaxAttempts:    p.Retry.MaxAttempts,
		InitialBackoff: p.Retry.InitialBackoff,
		MaxBackoff:     p.Retry.MaxBackoff,
		BackoffFactor:  p.Retry.BackoffFactor,
		Jitter:         p.Retry.Jitter,
		AttemptTimeout: p.Retry.AttemptTimeout,
	}
}

// BreakerConfig converts the breaker settings into a
// resilience.CircuitBreakerConfig. Returns nil when the breaker is disabled.
func (p *Profile) BreakerConfig(name string) *resilience.CircuitBreakerConfig {
	if !p.breakerEnabled() {
		return nil
	}
	cfg := p.breakerConfig(name)
	return &cfg
}

func (p *Profile) breakerConfig(name string) resilience.CircuitBreakerConfig {
	return resilience.CircuitBreakerConfig{
		Name:             name,
		FailureThreshold: p.Breaker.FailureThreshold,
		BreakDuration:    p.Breaker.BreakDuration,
	}
}

// BulkheadConfig converts the bulkhead settings.
func (p *Profile) BulkheadConfig(name string) resilience.BulkheadConfig {
	return resilience.BulkheadConfig{
		Name:          name,
		MaxConcurrent: p.Bulkhead.MaxConcurrent,
		MaxWait:       p.Bulkhead.MaxWait,
	}
}

// RateLimiterConfig converts the rate limit settings.
func (p *Profile) RateLimiterConfig(name string) resilience.RateLimiterConfig {
	return resilience.RateLimiterConfig{
		Name:  name,
		Rate:  p.RateLimit.Rate,
		Burst: p.RateLimit.Burst,
	}
}

func (p *Profile) breakerEnabled() bool {
	return p.Breaker.Enabled == nil || *p.Breaker.Enabled
}

func (p *Profile) bulkheadEnabled() bool {
	return p.Bulkhead.Enabled != nil && *p.Bulkhead.Enabled
}

func (p *Profile) rateLimitEnabled() bool {
	return p.RateLimit.Enabled != nil && *p.RateLimit.Enabled
}

// merge returns a copy of p with unset fields filled from base.
func (p Profile) merge(base Profile) Profile {
	out := p
	if out.Retry.Enabled == nil {
		out.Retry.Enabled = base.Retry.Enabled
	}
	if out.Retry.MaxAttempts == 0 {
		out.Retry.MaxAttempts = base.Retry.MaxAttempts
	}
	if out.Retry.InitialBackoff == 0 {
		out.Retry.InitialBackoff = base.Retry.InitialBackoff
	}
	if out.Retry.MaxBackoff == 0 {
		out.Retry.MaxBackoff = base.Retry.MaxBackoff
	}
	if out.Retry.BackoffFactor == 0 {
		out.Retry.BackoffFactor = base.Retry.BackoffFactor
	}
	if out.Retry.Jitter == 0 {
		out.Retry.Jitter = base.Retry.Jitter
	}
	if out.Retry.AttemptTimeout == 0 {
		out.Retry.AttemptTimeout = base.Retry.AttemptTimeout
	}

	if out.Breaker.Enabled == nil {
		out.Breaker.Enabled = base.Breaker.Enabled
	}
	if out.Breaker.FailureThreshold == 0 {
		out.Breaker.FailureThreshold = base.Breaker.FailureThreshold
	}
	if out.Breaker.BreakDuration == 0 {
		out.Breaker.BreakDuration = base.Breaker.BreakDuration
	}

	if out.Bulkhead.Enabled == nil {
		out.Bulkhead.Enabled = base.Bulkhead.Enabled
	}
	if out.Bulkhead.MaxConcurrent == 0 {
		out.Bulkhead.MaxConcurrent = base.Bulkhead.MaxConcurrent
	}
	if out.Bulkhead.MaxWait == 0 {
		out.Bulkhead.MaxWait = base.Bulkhead.MaxWait
	}

	if out.RateLimit.Enabled == nil {
		out.RateLimit.Enabled = base.RateLimit.Enabled
	}
	if out.RateLimit.Rate == 0 {
		out.RateLimit.Rate = base.RateLimit.Rate
	}
	if out.RateLimit.Burst == 0 {
		out.RateLimit.Burst = base.RateLimit.Burst
	}

	return out
}

func boolPtr(b bool) *bool { return &b }

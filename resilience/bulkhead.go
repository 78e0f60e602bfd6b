package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Common bulkhead errors.
var (
	ErrBulkheadFull    = errors.New("bulkhead is full")
	ErrBulkheadTimeout = errors.New("bulkhead wait timeout")
)

// BulkheadConfig configures a bulkhead.
type BulkheadConfig struct {
	// Name identifies this bulkhead for metrics/logging.
	Name string
	// MaxConcurrent is the maximum number of concurrent calls.
	MaxConcurrent int
	// MaxWait is how long to wait for a slot. 0 means fail immediately.
	MaxWait time.Duration
	// OnReject is called when a call is turned away.
	OnReject func(name string)
}

// DefaultBulkheadConfig returns sensible defaults.
func DefaultBulkheadConfig(name string) BulkheadConfig {
	return BulkheadConfig{
		Name:          name,
		MaxConcurrent: 10,
	}
}

// ApplyDefaults fills unset fields with defaults.
func (c *BulkheadConfig) ApplyDefaults() {
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = 10
	}
}

// Validate rejects misconfiguration at construction time.
func (c BulkheadConfig) Validate() error {
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("bulkhead.max_concurrent must be >= 1 (got: %d)", c.MaxConcurrent)
	}
	if c.MaxWait < 0 {
		return fmt.Errorf("bulkhead.max_wait must not be negative (got: %s)", c.MaxWait)
	}
	return nil
}

// Bulkhead caps the number of calls running against a dependency at once,
// isolating a slow dependency so it cannot soak up every caller.
type Bulkhead struct {
	config BulkheadConfig
	slots  chan struct{}
}

// NewBulkhead creates a bulkhead, failing fast on invalid config.
func NewBulkhead(config BulkheadConfig) (*Bulkhead, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Bulkhead{
		config: config,
		slots:  make(chan struct{}, config.MaxConcurrent),
	}, nil
}

// Execute runs fn inside the bulkhead. It returns ErrBulkheadFull when no
// slot is free and MaxWait is zero, ErrBulkheadTimeout when the wait for a
// slot expires, or the context error if the caller gives up first.
func (b *Bulkhead) Execute(ctx context.Context, fn func() error) error {
	if err := b.acquire(ctx); err != nil {
		if b.config.OnReject != nil {
			b.config.OnReject(b.config.Name)
		}
		return err
	}
	defer b.releaseSlot()

	return fn()
}

// ExecuteBulkhead runs a result-producing function inside the bulkhead.
func ExecuteBulkhead[T any](ctx context.Context, b *Bulkhead, fn func() (T, error)) (T, error) {
	var result T
	err := b.Execute(ctx, func() error {
		var fnErr error
		result, fnErr = fn()
		return fnErr
	})
	return result, err
}

func (b *Bulkhead) acquire(ctx context.Context) error {
	select {
	case b.slots <- struct{}{}:
		return nil
	default:
	}

	if b.config.MaxWait <= 0 {
		return ErrBulkheadFull
	}

	timer := time.NewTimer(b.config.MaxWait)
	defer timer.Stop()

	select {
	case b.slots <- struct{}{}:
		return nil
	case <-timer.C:
		return ErrBulkheadTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bulkhead) releaseSlot() {
	<-b.slots
}

// InUse returns the number of slots currently occupied.
func (b *Bulkhead) InUse() int {
	return len(b.slots)
}

// Available returns the number of free slots.
func (b *Bulkhead) Available() int {
	return b.config.MaxConcurrent - len(b.slots)
}

package observability

import (
	"context"
	"fmt"

	"github.com/kbukum/resilkit/resilience"
)

// HealthStatus represents the health state of a component or service.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// Health describes the health of an individual component.
type Health struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// ServiceHealth describes the overall health of a service and its components.
type ServiceHealth struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Version    string       `json:"version,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// HealthChecker is implemented by components that can report their health.
type HealthChecker interface {
	CheckHealth(ctx context.Context) Health
}

// NewServiceHealth creates a ServiceHealth with status up.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{
		Service: service,
		Status:  HealthStatusUp,
		Version: version,
	}
}

// AddComponent adds a component health and degrades the overall status:
// any down component marks the service down, any degraded component marks
// it degraded unless it is already down.
func (sh *ServiceHealth) AddComponent(h Health) {
	sh.Components = append(sh.Components, h)
	switch h.Status {
	case HealthStatusDown:
		sh.Status = HealthStatusDown
	case HealthStatusDegraded:
		if sh.Status != HealthStatusDown {
			sh.Status = HealthStatusDegraded
		}
	}
}

// BreakerHealth reports a circuit breaker's state as component health:
// closed is up, half-open is degraded, open is down.
type BreakerHealth struct {
	breaker *resilience.CircuitBreaker
}

// NewBreakerHealth wraps a breaker as a HealthChecker.
func NewBreakerHealth(cb *resilience.CircuitBreaker) *BreakerHealth {
	return &BreakerHealth{breaker: cb}
}

func (bh *BreakerHealth) CheckHealth(ctx context.Context) Health {
	state := bh.breaker.State()
	h := Health{
		Name: bh.breaker.Name(),
		Details: map[string]string{
			"state":    state.String(),
			"failures": fmt.Sprintf("%d", bh.breaker.Failures()),
		},
	}
	switch state {
	case resilience.StateOpen:
		h.Status = HealthStatusDown
		h.Message = "circuit open"
	case resilience.StateHalfOpen:
		h.Status = HealthStatusDegraded
		h.Message = "circuit probing recovery"
	default:
		h.Status = HealthStatusUp
	}
	return h
}

// RegistryHealth aggregates the health of every breaker in a registry.
func RegistryHealth(ctx context.Context, service, version string, reg *resilience.Registry) *ServiceHealth {
	sh := NewServiceHealth(service, version)
	for _, name := range reg.Names() {
		sh.AddComponent(NewBreakerHealth(reg.Get(name)).CheckHealth(ctx))
	}
	return sh
}

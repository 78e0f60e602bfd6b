package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/kbukum/resilkit/logger"
	"github.com/kbukum/resilkit/resilience"
)

// MetricsObserver records resilience events as OpenTelemetry metrics.
// Observer methods carry no context, so instruments are recorded against
// context.Background.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver creates an observer backed by the given instruments.
func NewMetricsObserver(metrics *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: metrics}
}

var _ resilience.Observer = (*MetricsObserver)(nil)

func (o *MetricsObserver) AttemptFailed(ev resilience.AttemptEvent) {
	o.metrics.attemptTotal.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("dependency", ev.Dependency),
	))
}

func (o *MetricsObserver) RetryScheduled(ev resilience.RetryEvent) {
	o.metrics.retryTotal.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("dependency", ev.Dependency),
	))
}

func (o *MetricsObserver) CircuitOpened(ev resilience.CircuitEvent) {
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("dependency", ev.Dependency))
	o.metrics.circuitOpens.Add(ctx, 1, attrs)
	// HalfOpen -> Open re-opens an already-counted circuit.
	if ev.From == resilience.StateClosed {
		o.metrics.circuitState.Add(ctx, 1, attrs)
	}
}

func (o *MetricsObserver) CircuitHalfOpened(ev resilience.CircuitEvent) {}

func (o *MetricsObserver) CircuitClosed(ev resilience.CircuitEvent) {
	o.metrics.circuitState.Add(context.Background(), -1, metric.WithAttributes(
		attribute.String("dependency", ev.Dependency),
	))
}

func (o *MetricsObserver) FallbackInvoked(ev resilience.FallbackEvent) {
	outcome := "substituted"
	if ev.Err != nil {
		outcome = "failed"
	}
	o.metrics.fallbackTotal.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("dependency", ev.Dependency),
		attribute.String("outcome", outcome),
	))
}

// LogObserver writes resilience events to a structured logger.
type LogObserver struct {
	log *logger.Logger
}

// NewLogObserver creates an observer that logs each event. A nil logger
// falls back to the registered "resilience" component logger.
func NewLogObserver(log *logger.Logger) *LogObserver {
	if log == nil {
		return &LogObserver{log: logger.Get("resilience")}
	}
	return &LogObserver{log: log.WithComponent("resilience")}
}

var _ resilience.Observer = (*LogObserver)(nil)

func (o *LogObserver) AttemptFailed(ev resilience.AttemptEvent) {
	o.log.Debug("attempt failed", logger.Fields(
		logger.FieldDependency, ev.Dependency,
		logger.FieldCallID, ev.CallID,
		logger.FieldAttempt, ev.Attempt,
		logger.FieldError, ev.Err.Error(),
	))
}

func (o *LogObserver) RetryScheduled(ev resilience.RetryEvent) {
	o.log.Debug("retry scheduled", logger.Fields(
		logger.FieldDependency, ev.Dependency,
		logger.FieldCallID, ev.CallID,
		logger.FieldAttempt, ev.Attempt,
		logger.FieldBackoff, ev.Backoff.Milliseconds(),
	))
}

func (o *LogObserver) CircuitOpened(ev resilience.CircuitEvent) {
	o.log.Warn("circuit opened", logger.Fields(
		logger.FieldDependency, ev.Dependency,
		logger.FieldState, ev.To.String(),
		logger.FieldFailures, ev.Failures,
	))
}

func (o *LogObserver) CircuitHalfOpened(ev resilience.CircuitEvent) {
	o.log.Info("circuit half-opened", logger.Fields(
		logger.FieldDependency, ev.Dependency,
		logger.FieldState, ev.To.String(),
	))
}

func (o *LogObserver) CircuitClosed(ev resilience.CircuitEvent) {
	o.log.Info("circuit closed", logger.Fields(
		logger.FieldDependency, ev.Dependency,
		logger.FieldState, ev.To.String(),
	))
}

func (o *LogObserver) FallbackInvoked(ev resilience.FallbackEvent) {
	fields := logger.Fields(
		logger.FieldDependency, ev.Dependency,
		logger.FieldCallID, ev.CallID,
		"cause", ev.Cause.Error(),
	)
	if ev.Err != nil {
		o.log.Warn("fallback failed", logger.MergeWithError(fields, ev.Err))
		return
	}
	o.log.Info("fallback substituted", fields)
}

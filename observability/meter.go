package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/resilkit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds metric instruments for guarded calls.
type Metrics struct {
	callTotal     metric.Int64Counter
	callDuration  metric.Float64Histogram
	attemptTotal  metric.Int64Counter
	retryTotal    metric.Int64Counter
	circuitOpens  metric.Int64Counter
	circuitState  metric.Int64UpDownCounter
	fallbackTotal metric.Int64Counter
	shortCircuits metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	callTotal, err := meter.Int64Counter("resilience.call.total",
		metric.WithDescription("Total number of guarded calls by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resilience.call.total counter: %w", err)
	}

	callDuration, err := meter.Float64Histogram("resilience.call.duration",
		metric.WithDescription("Duration of guarded calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resilience.call.duration histogram: %w", err)
	}

	attemptTotal, err := meter.Int64Counter("resilience.attempt.failed.total",
		metric.WithDescription("Total number of failed attempts"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resilience.attempt.failed.total counter: %w", err)
	}

	retryTotal, err := meter.Int64Counter("resilience.retry.total",
		metric.WithDescription("Total number of retries scheduled"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resilience.retry.total counter: %w", err)
	}

	circuitOpens, err := meter.Int64Counter("resilience.circuit.open.total",
		metric.WithDescription("Total number of circuit open transitions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resilience.circuit.open.total counter: %w", err)
	}

	circuitState, err := meter.Int64UpDownCounter("resilience.circuit.open",
		metric.WithDescription("Number of circuits currently open"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resilience.circuit.open gauge: %w", err)
	}

	fallbackTotal, err := meter.Int64Counter("resilience.fallback.total",
		metric.WithDescription("Total number of fallback invocations by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resilience.fallback.total counter: %w", err)
	}

	shortCircuits, err := meter.Int64Counter("resilience.circuit.rejected.total",
		metric.WithDescription("Total number of calls rejected by an open circuit"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resilience.circuit.rejected.total counter: %w", err)
	}

	return &Metrics{
		callTotal:     callTotal,
		callDuration:  callDuration,
		attemptTotal:  attemptTotal,
		retryTotal:    retryTotal,
		circuitOpens:  circuitOpens,
		circuitState:  circuitState,
		fallbackTotal: fallbackTotal,
		shortCircuits: shortCircuits,
	}, nil
}

// RecordCall records a completed guarded call.
func (m *Metrics) RecordCall(ctx context.Context, dependency, outcome string, duration time.Duration) {
	m.callTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("dependency", dependency),
		attribute.String("outcome", outcome),
	))
	m.callDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("dependency", dependency),
	))
}

// RecordRejected records a call rejected by an open circuit.
func (m *Metrics) RecordRejected(ctx context.Context, dependency string) {
	m.shortCircuits.Add(ctx, 1, metric.WithAttributes(
		attribute.String("dependency", dependency),
	))
}

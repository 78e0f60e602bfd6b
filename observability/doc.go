// Package observability provides OpenTelemetry tracing and metrics
// integration plus observer implementations for resilience events.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("my-service"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, &meterCfg)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("my-service"))
//	obs := observability.NewMetricsObserver(metrics)
//
// Observers plug into the resilience executor:
//
//	exec, err := resilience.NewExecutor(resilience.ExecutorConfig[Order]{
//	    Name:     "payments",
//	    Observer: resilience.MultiObserver(obs, observability.NewLogObserver(nil)),
//	})
//
// Health:
//
//	health := observability.RegistryHealth(ctx, "my-service", "1.0.0", registry)
package observability

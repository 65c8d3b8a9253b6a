// Package telemetry groups the observability packages used by Mercator Forge.
//
// # Components
//
//   - logging: slog handlers configured from telemetry.logging
//   - metrics: Prometheus counters and histograms for engines, configuration
//     writes and artifact production
//   - tracing: OpenTelemetry spans for engine construction and artifact
//     operations
//
// Each component is optional. A processor built without a collector or
// tracer records nothing, and a nil *metrics.Collector is safe to call.
//
// # Usage
//
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, os.Stderr))
//	if err != nil {
//	    return err
//	}
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	proc, err := processor.New(
//	    processor.WithLogger(logger),
//	    processor.WithMetrics(collector),
//	    processor.WithTracer(tracer.Tracer()),
//	)
package telemetry

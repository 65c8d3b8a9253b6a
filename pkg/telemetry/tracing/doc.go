// Package tracing provides OpenTelemetry tracing for processor operations.
//
// Engine construction, compilation, parsing and transformation each produce
// one span. When tracing is disabled the processor receives a noop tracer and
// spans cost nothing beyond the call.
//
// # Sampling
//
// Three strategies are supported, all wrapped in a parent-based sampler:
//   - always: sample every trace
//   - never: sample nothing
//   - ratio: sample a fraction of traces by trace ID
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	proc, err := processor.New(processor.WithTracer(tracer.Tracer()))
package tracing

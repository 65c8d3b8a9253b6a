// Package metrics provides Prometheus metrics collection for Mercator Forge.
//
// # Metrics
//
//   - engines_created_total{edition}: engines constructed
//   - config_writes_total{status}: configuration writes (success, rejected, invalid)
//   - artifacts_total{kind,status}: compile (program) and parse (document) attempts
//   - artifact_duration_seconds{kind}: compile and parse latency
//
// All names carry the configured namespace and subsystem, so with the defaults
// the first one is exposed as mercator_forge_engines_created_total.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordArtifact(metrics.KindDocument, metrics.StatusSuccess, time.Millisecond)
//
//	// Dump to a writer
//	collector.WriteText(os.Stdout)
//
//	// Or serve over HTTP
//	http.Handle("/metrics", collector.Handler())
package metrics

package metrics

import (
	"mercator-hq/forge/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics tracks engine construction and configuration writes.
//
// Metrics:
//   - mercator_forge_engines_created_total: Engines constructed, by license edition
//   - mercator_forge_config_writes_total: Configuration writes, by outcome
type EngineMetrics struct {
	enginesCreated *prometheus.CounterVec
	configWrites   *prometheus.CounterVec
}

// NewEngineMetrics creates and registers engine metrics with the provided registry.
func NewEngineMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EngineMetrics {
	em := &EngineMetrics{
		enginesCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "engines_created_total",
				Help:      "Total number of engines constructed",
			},
			[]string{"edition"},
		),

		configWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "config_writes_total",
				Help:      "Total number of engine configuration writes",
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(em.enginesCreated, em.configWrites)

	return em
}

// RecordCreated counts a constructed engine.
func (em *EngineMetrics) RecordCreated(edition string) {
	em.enginesCreated.WithLabelValues(edition).Inc()
}

// RecordConfigWrite counts a configuration write with the given outcome.
func (em *EngineMetrics) RecordConfigWrite(status string) {
	em.configWrites.WithLabelValues(status).Inc()
}

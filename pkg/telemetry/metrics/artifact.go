package metrics

import (
	"time"

	"mercator-hq/forge/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ArtifactMetrics tracks program compilation and document parsing.
//
// Metrics:
//   - mercator_forge_artifacts_total: Artifacts produced, by kind and outcome
//   - mercator_forge_artifact_duration_seconds: Production duration, by kind
type ArtifactMetrics struct {
	artifactsTotal *prometheus.CounterVec
	duration       *prometheus.HistogramVec
}

// NewArtifactMetrics creates and registers artifact metrics with the provided registry.
func NewArtifactMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ArtifactMetrics {
	am := &ArtifactMetrics{
		artifactsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "artifacts_total",
				Help:      "Total number of compile and parse attempts",
			},
			[]string{"kind", "status"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "artifact_duration_seconds",
				Help:      "Duration of compile and parse calls in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(am.artifactsTotal, am.duration)

	return am
}

// Record counts one attempt and observes its duration.
func (am *ArtifactMetrics) Record(kind, status string, duration time.Duration) {
	am.artifactsTotal.WithLabelValues(kind, status).Inc()
	am.duration.WithLabelValues(kind).Observe(duration.Seconds())
}

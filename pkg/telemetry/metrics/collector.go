package metrics

import (
	"fmt"
	"io"
	"time"

	"mercator-hq/forge/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Artifact kinds.
const (
	KindProgram  = "program"
	KindDocument = "document"
)

// Outcome labels shared by the counters.
const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusRejected = "rejected"
	StatusInvalid  = "invalid"
)

// Collector owns every Prometheus metric recorded by Mercator Forge.
// A nil *Collector is valid and records nothing, as does a collector whose
// configuration is disabled.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	engineMetrics   *EngineMetrics
	artifactMetrics *ArtifactMetrics
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "mercator",
//		Subsystem: "forge",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// Set defaults if not specified
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = append([]float64(nil), config.DefaultDurationBuckets...)
	}

	return &Collector{
		config:          cfg,
		registry:        registry,
		engineMetrics:   NewEngineMetrics(cfg, registry),
		artifactMetrics: NewArtifactMetrics(cfg, registry),
	}
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordEngineCreated counts a successfully constructed engine.
func (c *Collector) RecordEngineCreated(edition string) {
	if !c.enabled() {
		return
	}
	c.engineMetrics.RecordCreated(edition)
}

// RecordConfigWrite counts a configuration write.
//
// Parameters:
//   - status: StatusSuccess, StatusRejected (engine refused the value) or
//     StatusInvalid (argument rejected before reaching the engine)
func (c *Collector) RecordConfigWrite(status string) {
	if !c.enabled() {
		return
	}
	c.engineMetrics.RecordConfigWrite(status)
}

// RecordArtifact records one compile or parse attempt.
//
// Example:
//
//	collector.RecordArtifact(metrics.KindProgram, metrics.StatusSuccess, 350*time.Microsecond)
func (c *Collector) RecordArtifact(kind, status string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.artifactMetrics.Record(kind, status, duration)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteText writes every gathered metric family to w in the Prometheus text
// exposition format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metric family %q: %w", mf.GetName(), err)
		}
	}
	return nil
}

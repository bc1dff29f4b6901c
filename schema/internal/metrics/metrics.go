package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Schema acquisition metrics
	SchemaLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telhawk_schema_loads_total",
			Help: "Total number of schema loads by origin (memory, store, source)",
		},
		[]string{"version", "origin"},
	)

	SchemaLoadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telhawk_schema_load_errors_total",
			Help: "Total number of failed schema loads",
		},
		[]string{"version"},
	)

	SchemaLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "telhawk_schema_load_duration_seconds",
			Help:    "Duration of fetching and parsing a schema export in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SchemasCached = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "telhawk_schema_cached_versions",
			Help: "Number of schema versions held in memory",
		},
	)

	// Projection metrics
	ProjectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telhawk_schema_projections_total",
			Help: "Total number of projections by status",
		},
		[]string{"version", "status"},
	)

	ProjectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "telhawk_schema_projection_duration_seconds",
			Help:    "Duration of projection in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
	)

	// Validation metrics
	ValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telhawk_schema_validations_total",
			Help: "Total number of validations by outcome",
		},
		[]string{"version", "outcome"},
	)

	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telhawk_schema_validation_failures_total",
			Help: "Total number of violations reported, by violation code",
		},
		[]string{"code"},
	)

	ValidationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "telhawk_schema_validation_duration_seconds",
			Help:    "Duration of validation in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
	)

	// Sample generation metrics
	SamplesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telhawk_schema_samples_total",
			Help: "Total number of generated sample events by status",
		},
		[]string{"status"},
	)

	// Job metrics
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telhawk_schema_jobs_total",
			Help: "Total number of NATS jobs handled by subject and status",
		},
		[]string{"subject", "status"},
	)
)

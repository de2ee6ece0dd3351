package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// sighting pipeline and query layer.
type Metrics struct {
	RecordsConsumed prometheus.Counter
	RecordsLoaded   prometheus.Counter
	TransformErrors prometheus.Counter
	DecodeFailures  prometheus.Counter
	PipelineRunning prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Query layer metrics.
	QueryDuration     prometheus.Histogram
	QueryCache        *prometheus.CounterVec // labels: result={hit,miss}
	SnapshotRefreshes *prometheus.CounterVec // labels: outcome={applied,discarded,failed}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RecordsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sightings_etl",
			Name:      "records_consumed_total",
			Help:      "Total raw sighting records read from the source topic.",
		}),
		RecordsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sightings_etl",
			Name:      "records_loaded_total",
			Help:      "Total normalized sightings upserted into the store.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sightings_etl",
			Name:      "transform_errors_total",
			Help:      "Total transformation failures.",
		}),
		DecodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sightings_etl",
			Name:      "decode_failures_total",
			Help:      "Records whose location value could not be decoded to a point.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sightings_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sightings_etl",
			Name:      "batch_size",
			Help:      "Number of records per batch extracted from the source topic.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sightings_etl",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sightings_etl",
			Name:      "query_duration_seconds",
			Help:      "Duration of filtered sighting queries against the store.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
		QueryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sightings_etl",
			Name:      "query_cache_total",
			Help:      "Query cache lookups by result.",
		}, []string{"result"}),
		SnapshotRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sightings_etl",
			Name:      "snapshot_refreshes_total",
			Help:      "Snapshot refresh completions by outcome; discarded means a stale filter state.",
		}, []string{"outcome"}),
	}

	prometheus.MustRegister(
		m.RecordsConsumed,
		m.RecordsLoaded,
		m.TransformErrors,
		m.DecodeFailures,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.QueryDuration,
		m.QueryCache,
		m.SnapshotRefreshes,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RecordsConsumed:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sightings_etl", Name: "records_consumed_total"}),
		RecordsLoaded:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sightings_etl", Name: "records_loaded_total"}),
		TransformErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sightings_etl", Name: "transform_errors_total"}),
		DecodeFailures:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sightings_etl", Name: "decode_failures_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "sightings_etl", Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "sightings_etl", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "sightings_etl", Name: "batch_processing_duration_seconds"}),
		QueryDuration:           prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "sightings_etl", Name: "query_duration_seconds"}),
		QueryCache:              prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "sightings_etl", Name: "query_cache_total"}, []string{"result"}),
		SnapshotRefreshes:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "sightings_etl", Name: "snapshot_refreshes_total"}, []string{"outcome"}),
	}
}

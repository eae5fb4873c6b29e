package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ingest pipeline.
type Metrics struct {
	FilesProcessed   prometheus.Counter
	FilesFailed      *prometheus.CounterVec // label: kind (parse error kind or "io")
	RowsDecoded      prometheus.Counter
	RecordsPublished prometheus.Counter
	PipelineRunning  prometheus.Gauge

	ParseDuration          prometheus.Histogram
	FileProcessingDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		FilesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "epw_ingest",
			Name:      "files_processed_total",
			Help:      "Total weather files parsed and published successfully.",
		}),
		FilesFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "epw_ingest",
			Name:      "files_failed_total",
			Help:      "Total weather files quarantined, by failure kind.",
		}, []string{"kind"}),
		RowsDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "epw_ingest",
			Name:      "rows_decoded_total",
			Help:      "Total weather data rows decoded from parsed files.",
		}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "epw_ingest",
			Name:      "records_published_total",
			Help:      "Total record events written to the sink topic.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "epw_ingest",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		ParseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "epw_ingest",
			Name:      "parse_duration_seconds",
			Help:      "Time to parse one weather file.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		FileProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "epw_ingest",
			Name:      "file_processing_duration_seconds",
			Help:      "Duration of a complete parse-and-publish cycle for one file.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}

	prometheus.MustRegister(
		m.FilesProcessed,
		m.FilesFailed,
		m.RowsDecoded,
		m.RecordsPublished,
		m.PipelineRunning,
		m.ParseDuration,
		m.FileProcessingDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		FilesProcessed:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "epw_ingest", Name: "files_processed_total"}),
		FilesFailed:            prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "epw_ingest", Name: "files_failed_total"}, []string{"kind"}),
		RowsDecoded:            prometheus.NewCounter(prometheus.CounterOpts{Namespace: "epw_ingest", Name: "rows_decoded_total"}),
		RecordsPublished:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "epw_ingest", Name: "records_published_total"}),
		PipelineRunning:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "epw_ingest", Name: "pipeline_running"}),
		ParseDuration:          prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "epw_ingest", Name: "parse_duration_seconds"}),
		FileProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "epw_ingest", Name: "file_processing_duration_seconds"}),
	}
}

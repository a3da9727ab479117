package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	domingestion "github.com/kailas-cloud/propsync/internal/domain/ingestion"
)

// Ingestion Prometheus metrics.
var (
	IngestRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_records_total",
			Help:      "Feed elements handled by ingestion",
		},
		[]string{"source", "result"}, // "processed" / "skipped"
	)

	IngestSourceDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_source_duration_seconds",
			Help:      "Time spent ingesting one source",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"source"},
	)

	IngestRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_runs_total",
			Help:      "Per-source ingestion outcomes",
		},
		[]string{"source", "outcome"}, // "success" / "unchanged" / "failure"
	)
)

var registerIngestion sync.Once

// RegisterIngestionMetrics registers Prometheus ingestion metrics. Safe to call more than once.
func RegisterIngestionMetrics() {
	registerIngestion.Do(func() {
		prometheus.MustRegister(IngestRecordsTotal)
		prometheus.MustRegister(IngestSourceDuration)
		prometheus.MustRegister(IngestRunsTotal)
	})
}

// Ingestion records per-source ingestion outcomes.
type Ingestion struct{}

// ObserveOutcome updates counters and the duration histogram for one source.
func (Ingestion) ObserveOutcome(o domingestion.Outcome) {
	IngestRunsTotal.WithLabelValues(o.Source, string(o.Status())).Inc()
	IngestSourceDuration.WithLabelValues(o.Source).Observe(o.Duration.Seconds())
	if o.RecordsProcessed > 0 {
		IngestRecordsTotal.WithLabelValues(o.Source, "processed").Add(float64(o.RecordsProcessed))
	}
	if o.RecordsSkipped > 0 {
		IngestRecordsTotal.WithLabelValues(o.Source, "skipped").Add(float64(o.RecordsSkipped))
	}
}

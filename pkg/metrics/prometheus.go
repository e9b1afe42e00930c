package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements the fetch client Observer and domain.repository.Metrics
// using Prometheus.
type Recorder struct {
	fetchRequests  *prometheus.CounterVec
	fetchAttempts  *prometheus.HistogramVec
	fetchDuration  *prometheus.HistogramVec
	cacheLookups   *prometheus.CounterVec
	sourceFailures *prometheus.CounterVec
	ingested       *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	snapshot       *prometheus.GaugeVec
}

// New creates a recorder registered on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		fetchRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "betpulse_fetch_requests_total",
				Help: "Logical fetch requests by outcome",
			},
			[]string{"method", "endpoint", "outcome"},
		),
		fetchAttempts: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "betpulse_fetch_attempts",
				Help:    "Attempts spent per logical fetch request",
				Buckets: []float64{1, 2, 3, 4, 5, 8},
			},
			[]string{"method"},
		),
		fetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "betpulse_fetch_duration_seconds",
				Help:    "Wall time of fetch requests including retries",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "betpulse_fetch_cache_lookups_total",
				Help: "Response cache lookups by result",
			},
			[]string{"endpoint", "result"},
		),
		sourceFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "betpulse_source_failures_total",
				Help: "Data source failures that degraded an aggregation",
			},
			[]string{"source"},
		),
		ingested: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "betpulse_records_ingested_total",
				Help: "Records stored by the ingest consumer",
			},
			[]string{"kind"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "betpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "betpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		snapshot: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "betpulse_performance",
				Help: "Last computed performance metric per time range",
			},
			[]string{"range", "metric"},
		),
	}
}

// ObserveRequest records one finished logical fetch request.
func (r *Recorder) ObserveRequest(method, endpoint, outcome string, attempts int, duration time.Duration) {
	r.fetchRequests.WithLabelValues(method, endpoint, outcome).Inc()
	if attempts > 0 {
		r.fetchAttempts.WithLabelValues(method).Observe(float64(attempts))
	}
	r.fetchDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// ObserveCache records a response cache lookup.
func (r *Recorder) ObserveCache(endpoint string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(endpoint, result).Inc()
}

// RecordSourceFailure counts a data source that degraded to empty.
func (r *Recorder) RecordSourceFailure(source string) {
	r.sourceFailures.WithLabelValues(source).Inc()
}

// RecordIngested counts a stored record.
func (r *Recorder) RecordIngested(kind string) {
	r.ingested.WithLabelValues(kind).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordSnapshot exposes the headline numbers of the last aggregation.
func (r *Recorder) RecordSnapshot(timeRange string, winRate, roi, profitLoss float64) {
	r.snapshot.WithLabelValues(timeRange, "win_rate").Set(winRate)
	r.snapshot.WithLabelValues(timeRange, "roi").Set(roi)
	r.snapshot.WithLabelValues(timeRange, "profit_loss").Set(profitLoss)
}

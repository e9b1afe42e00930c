package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// APIMetrics tracks the analytics endpoints served to the dashboard.
type APIMetrics struct {
	Latency  *prometheus.HistogramVec
	Errors   *prometheus.CounterVec
	Degraded *prometheus.CounterVec
}

func NewAPIMetrics(reg prometheus.Registerer) *APIMetrics {
	factory := promauto.With(reg)
	return &APIMetrics{
		Latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "betpulse",
				Subsystem: "analytics",
				Name:      "latency_seconds",
				Help:      "Latency of analytics endpoints",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "betpulse",
				Subsystem: "analytics",
				Name:      "errors_total",
				Help:      "Errors by analytics endpoint",
			},
			[]string{"endpoint"},
		),
		Degraded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "betpulse",
				Subsystem: "analytics",
				Name:      "degraded_total",
				Help:      "Responses served with at least one failed source",
			},
			[]string{"endpoint"},
		),
	}
}

// Observe records one endpoint call. A nil receiver is a no-op.
func (m *APIMetrics) Observe(endpoint string, start time.Time, failed, degraded bool) {
	if m == nil {
		return
	}
	m.Latency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if failed {
		m.Errors.WithLabelValues(endpoint).Inc()
	}
	if degraded {
		m.Degraded.WithLabelValues(endpoint).Inc()
	}
}

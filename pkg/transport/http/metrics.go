package httptransport

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks request counts and latency per mode and envelope branch.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the transport collectors on reg. Pass
// prometheus.DefaultRegisterer for the process-wide registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fedcheck",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Requests handled, labeled by mode and envelope branch.",
		}, []string{"mode", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fedcheck",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Request handling latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
	}
}

func (m *Metrics) Observe(mode, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	if mode == "" {
		mode = "unknown"
	}
	m.requests.WithLabelValues(mode, outcome).Inc()
	m.duration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

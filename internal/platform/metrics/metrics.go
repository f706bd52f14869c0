package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds transport-level Prometheus metrics.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
}

// New creates and registers all transport metrics.
func New() *Metrics {
	return &Metrics{
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "idmonitor_http_request_duration_seconds",
			Help:    "HTTP request latency by method and path",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// ObserveRequestDuration records the latency of one HTTP request.
func (m *Metrics) ObserveRequestDuration(method, path string, d time.Duration) {
	if m == nil || m.RequestDuration == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

package bridge

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// newMetrics builds a per-server registry so repeated server
// construction (tests, restarts) never trips duplicate registration.
func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fusionlink_requests_total",
				Help: "Total number of action requests, by action and HTTP status code",
			},
			[]string{"action", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "fusionlink_request_duration_seconds",
				Help: "Duration of action dispatches",
			},
			[]string{"action"},
		),
	}
	m.registry.MustRegister(m.requests, m.duration)
	return m
}

func (m *metrics) observe(action string, code int, elapsed time.Duration) {
	m.requests.WithLabelValues(action, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(action).Observe(elapsed.Seconds())
}

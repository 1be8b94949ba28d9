package vmwiz

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics prometheus collectors for gateway calls
type Metrics struct {
	Requests       *prometheus.CounterVec
	Duration       *prometheus.HistogramVec
	Failures       *prometheus.CounterVec
	SessionExpired prometheus.Counter
}

// NewMetrics build the gateway collectors and register them on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vmwiz_gateway_requests_total",
				Help: "Total number of backend responses by path, method and status code",
			},
			[]string{"path", "method", "code"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vmwiz_gateway_request_duration_seconds",
				Help:    "Backend call duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vmwiz_gateway_failures_total",
				Help: "Total number of backend calls that got no response",
			},
			[]string{"path", "method"},
		),
		SessionExpired: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "vmwiz_gateway_session_expired_total",
				Help: "Total number of 401 responses carrying a redirect target",
			},
		),
	}
	reg.MustRegister(m.Requests, m.Duration, m.Failures, m.SessionExpired)
	return m
}

func (m *Metrics) observe(path string, method string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.Duration.WithLabelValues(path, method).Observe(seconds)
}

func (m *Metrics) failure(path string, method string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(path, method).Inc()
}

func (m *Metrics) sessionExpired() {
	if m == nil {
		return
	}
	m.SessionExpired.Inc()
}

package handik

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instruments calls made by a Client.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Errors          *prometheus.CounterVec
}

// NewMetrics registers client metrics on reg. A nil reg gets a private
// registry that nothing scrapes.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &Metrics{
		Requests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "handik_client_requests_total",
			Help: "Total number of requests sent to the validation service.",
		}, []string{"endpoint"}),

		// The solver can take minutes, hence the long tail buckets.
		RequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "handik_client_request_duration_seconds",
			Help:    "Histogram of validation service request latencies.",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"endpoint", "outcome"}),

		Errors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "handik_client_errors_total",
			Help: "Total number of failed requests by error class.",
		}, []string{"class"}),
	}
}

func (m *Metrics) observe(endpoint string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(endpoint).Inc()
	outcome := "ok"
	if class := Classify(err); class != ClassNone {
		outcome = string(class)
		m.Errors.WithLabelValues(outcome).Inc()
	}
	m.RequestDuration.WithLabelValues(endpoint, outcome).Observe(time.Since(started).Seconds())
}

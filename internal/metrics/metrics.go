// Package metrics exports client attempts as Prometheus series.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/akl7777777/avi-intl/internal/avi"
)

// Collector implements avi.Observer.
type Collector struct {
	attempts  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	failovers *prometheus.CounterVec
}

// New registers the collector's series on reg.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "avi",
			Name:      "attempts_total",
			Help:      "GetAddressInfo attempts by transport, role and outcome.",
		}, []string{"transport", "role", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "avi",
			Name:      "attempt_duration_seconds",
			Help:      "Duration of a single GetAddressInfo attempt.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15, 30},
		}, []string{"transport", "role"}),
		failovers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "avi",
			Name:      "failovers_total",
			Help:      "Calls that moved on to the backup endpoint.",
		}, []string{"transport"}),
	}
	reg.MustRegister(c.attempts, c.latency, c.failovers)
	return c
}

func (c *Collector) ObserveAttempt(a avi.Attempt) {
	c.attempts.WithLabelValues(a.Transport, string(a.Role), string(a.Outcome)).Inc()
	c.latency.WithLabelValues(a.Transport, string(a.Role)).Observe(a.Duration.Seconds())
	if a.Role == avi.RoleBackup {
		c.failovers.WithLabelValues(a.Transport).Inc()
	}
}

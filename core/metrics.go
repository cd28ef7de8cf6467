package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the dispatch collectors.
type Metrics struct {
	dispatchTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		dispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Total number of dispatched requests by method and outcome",
		}, []string{"method", "outcome"}),

		dispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent in Handle, chain included",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{m.dispatchTotal, m.dispatchDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(method, outcome string, d time.Duration) {
	m.dispatchTotal.WithLabelValues(method, outcome).Inc()
	m.dispatchDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// Total returns the counter for method and outcome.
func (m *Metrics) Total(method, outcome string) prometheus.Counter {
	return m.dispatchTotal.WithLabelValues(method, outcome)
}

package coordinator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the collectors the coordinator updates.
type metrics struct {
	submissions *prometheus.CounterVec
	created     prometheus.Counter
	open        prometheus.Gauge
	timeToSolve prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)

	return &metrics{
		submissions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "powcontest",
				Subsystem: "coordinator",
				Name:      "submissions_total",
				Help:      "Number of submissions by outcome.",
			},
			[]string{"outcome"},
		),
		created: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: "powcontest",
				Subsystem: "coordinator",
				Name:      "transactions_created_total",
				Help:      "Number of transactions created.",
			},
		),
		open: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "powcontest",
				Subsystem: "coordinator",
				Name:      "transactions_open",
				Help:      "Number of transactions waiting for a solution.",
			},
		),
		timeToSolve: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "powcontest",
				Subsystem: "coordinator",
				Name:      "time_to_solve_seconds",
				Help:      "Time between the creation of a transaction and its solution.",
				Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
			},
		),
	}
}

package coordinator

import "github.com/prometheus/client_golang/prometheus"

// MetricSubmissions exposes the submission counter for the outcome to tests.
func (c *Coordinator) MetricSubmissions(outcome string) prometheus.Counter {
	return c.metrics.submissions.WithLabelValues(outcome)
}

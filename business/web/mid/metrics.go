package mid

import (
	"context"
	"net/http"
	"time"

	"github.com/ardanlabs/powcontest/foundation/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors for the http layer. They are registered with the default
// prometheus registry which is exposed on the debug host.
var (
	requestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "powcontest",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Number of requests by method and status code.",
		},
		[]string{"method", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "powcontest",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Request latency by method.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"method"},
	)

	errorCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "powcontest",
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Number of requests that returned an error.",
		},
	)

	panicCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "powcontest",
			Subsystem: "http",
			Name:      "panics_total",
			Help:      "Number of requests that panicked.",
		},
	)
)

// Metrics updates program counters.
func Metrics() web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			start := time.Now()

			// Call the next handler.
			err := handler(ctx, w, r)

			// Errors are turned into responses further up the chain, so the
			// status code isn't known yet for a failed request.
			status := "error"
			if v, verr := web.GetValues(ctx); verr == nil && err == nil {
				status = http.StatusText(v.StatusCode)
			}

			requestCount.WithLabelValues(r.Method, status).Inc()
			requestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())

			if err != nil {
				errorCount.Inc()
			}

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return m
}

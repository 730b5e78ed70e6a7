package mw

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records per-request counters and latency histograms into the given
// registry.
func Metrics(reg prometheus.Registerer, next http.Handler) http.Handler {
	if reg == nil {
		return next
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	reg.MustRegister(requests, duration)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(sw, r)

		// Use the route pattern when the mux matched one, so path values
		// like session ids do not explode label cardinality.
		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		requests.WithLabelValues(r.Method, path, strconv.Itoa(sw.status)).Inc()
		duration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

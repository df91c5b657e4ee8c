/*
metrics.go - Prometheus instrumentation

PURPOSE:
  Counters for the operational surface: how often the portfolio is evaluated,
  how often revenue matrices are built, and per-route request totals. Exposed
  on /metrics by the router.
*/
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	evaluations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "revenue_engine_evaluations_total",
		Help: "Number of portfolio snapshot evaluations served.",
	})

	reportBuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "revenue_engine_report_builds_total",
		Help: "Number of revenue matrices built.",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "revenue_engine_http_requests_total",
		Help: "HTTP requests by method and status code.",
	}, []string{"method", "code"})

	httpDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "revenue_engine_http_request_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	})
)

// instrument records request counts and latency for every route.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		httpRequests.WithLabelValues(r.Method, strconv.Itoa(ww.Status())).Inc()
		httpDuration.Observe(time.Since(start).Seconds())
	})
}

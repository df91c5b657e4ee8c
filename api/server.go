/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:   Unique ID per request for tracing
  2. Recoverer:   Panic recovery (500 instead of crash)
  3. CORS:        Cross-origin requests for dashboard frontends
  4. instrument:  Prometheus request counters
  5. requestLog:  Structured request logging (zap)

ROUTE GROUPS:
  /api/contracts          Contract roll-ups
  /api/projects/*         Project status and alerts
  /api/alerts             Portfolio-wide alert feed
  /api/reports/revenue    Time-bucketed revenue matrix
  /api/scenarios/*        Demo scenarios
  /api/import             Record-set ingestion
  /api/reset              Store reset (dev only)
  /metrics                Prometheus exposition

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(instrument)
	r.Use(requestLog(h.logger))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/contracts", h.ListContracts)

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.ListProjects)
			r.Get("/{id}/status", h.GetProjectStatus)
			r.Get("/{id}/alerts", h.GetProjectAlerts)
		})

		r.Get("/alerts", h.ListAlerts)
		r.Get("/reports/revenue", h.RevenueReport)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})

		r.Post("/import", h.ImportPortfolio)
		r.Post("/reset", h.Reset)
	})

	// Prometheus exposition
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// requestLog logs one line per request after it completes.
func requestLog(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

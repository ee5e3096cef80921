package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/listing-pipeline/internal/delivery/http/middleware"
	"github.com/user/listing-pipeline/internal/ratelimit"
)

// NewRouter builds the chi router for the query API: the two read
// endpoints, /healthz, /metrics, and the shared middleware chain
// (recover, logging, metrics, then per-IP rate limiting).
func NewRouter(h *Handler, limiter *ratelimit.Limiter) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recover)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(limiter.Middleware)

	r.Get("/healthz", h.HandleHealthCheck)
	r.Get("/properties", h.HandleSearch)
	r.Get("/properties/filters/metadata", h.HandleMetadata)

	r.Handle("/metrics", promhttp.Handler())

	return r
}

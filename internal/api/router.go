// Locus - GPS Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locus

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/locus/internal/middleware"
)

// RouterConfig carries the security knobs for the router. The capture page
// posts from arbitrary origins, so CORS defaults to permissive.
type RouterConfig struct {
	CORSOrigins      []string
	RateLimitEnabled bool
	RateLimitRPM     int
}

// NewRouter builds the chi router with the full middleware stack and all
// routes mounted.
func NewRouter(h *Handlers, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if cfg.RateLimitEnabled && cfg.RateLimitRPM > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitRPM, time.Minute))
	}

	r.Use(middleware.Prometheus)

	r.Get("/", h.Index)
	r.Post("/location", h.SubmitLocation)
	r.Get("/locations", h.Locations)
	r.Get("/locations/latest", h.LatestLocation)
	r.Post("/locations/clear", h.ClearLocations)
	r.Get("/status", h.Status)
	r.Get("/healthz", h.Healthz)
	r.Get("/ws", h.WebSocket)
	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, CodeNotFound, "endpoint not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed", nil)
	})

	return r
}

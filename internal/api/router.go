// Readergraph - Reading Affinity and Book Recommendation Engine
// Copyright 2026 Readergraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readergraph/readergraph

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/readergraph/readergraph/internal/config"
)

// NewRouter assembles the HTTP routing tree with middleware, health and
// metrics endpoints, and the affinity API.
func NewRouter(cfg *config.Config, handler *Handler) http.Handler {
	mw := NewMiddleware(cfg.API)

	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.handleHealth)

		r.Route("/affinity", func(r chi.Router) {
			r.Use(mw.RateLimit())
			r.Use(PrometheusMetrics)

			r.Get("/compatibility/{viewerID}/{otherID}", handler.handleCompatibility)
			r.Get("/recommendations/{viewerID}/from/{sourceID}", handler.handleRecommendations)
			r.Get("/similar/{bookID}", handler.handleSimilarBooks)
			r.Get("/stats", handler.handleEngineStats)
		})
	})

	return r
}

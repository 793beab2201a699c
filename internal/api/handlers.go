// Readergraph - Reading Affinity and Book Recommendation Engine
// Copyright 2026 Readergraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readergraph/readergraph

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/readergraph/readergraph/internal/affinity"
	"github.com/readergraph/readergraph/internal/logging"
	"github.com/readergraph/readergraph/internal/metrics"
)

// Pinger reports storage liveness for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	engine *affinity.Engine
	db     Pinger
}

// NewHandler creates a handler backed by the scoring engine and a storage
// liveness check.
func NewHandler(engine *affinity.Engine, db Pinger) *Handler {
	return &Handler{
		engine: engine,
		db:     db,
	}
}

// compatibilityParams carries the validated path parameters of a
// compatibility request.
type compatibilityParams struct {
	ViewerID string `validate:"required,max=128"`
	OtherID  string `validate:"required,max=128"`
}

// recommendationParams carries the validated parameters of a recommendation
// request. K bounds are enforced here so out-of-range requests fail loudly
// instead of being clamped silently.
type recommendationParams struct {
	ViewerID string `validate:"required,max=128"`
	SourceID string `validate:"required,max=128"`
	K        int    `validate:"min=0,max=50"`
}

// similarParams carries the validated parameters of a similar-books request.
type similarParams struct {
	BookID string `validate:"required,max=128"`
	Limit  int    `validate:"min=0,max=50"`
}

// handleHealth reports service and storage liveness.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	httpStatus := http.StatusOK

	checks := map[string]string{"database": "ok"}
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			logger := logging.Ctx(r.Context())
			logger.Warn().Err(err).Msg("health check failed")
			checks["database"] = "unreachable"
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}
	}

	respondJSON(w, httpStatus, &APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"status": status,
			"checks": checks,
		},
		Metadata: Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
	})
}

// handleCompatibility scores the shared interest between two readers.
func (h *Handler) handleCompatibility(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	params := compatibilityParams{
		ViewerID: chi.URLParam(r, "viewerID"),
		OtherID:  chi.URLParam(r, "otherID"),
	}
	if apiErr := validateRequest(&params); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	score, err := h.engine.Compatibility(r.Context(), params.ViewerID, params.OtherID)
	metrics.RecordScoring("compatibility", time.Since(start), err)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "SCORING_ERROR",
			"Failed to compute compatibility", err)
		return
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data:   score,
		Metadata: Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			RequestID:   logging.RequestIDFromContext(r.Context()),
		},
	})
}

// handleRecommendations produces the top-K recommendation list for a viewer
// drawn from a source reader's catalog.
func (h *Handler) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	params := recommendationParams{
		ViewerID: chi.URLParam(r, "viewerID"),
		SourceID: chi.URLParam(r, "sourceID"),
		K:        getIntParam(r, "k", 0),
	}
	if apiErr := validateRequest(&params); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	resp, err := h.engine.Recommend(r.Context(), params.ViewerID, params.SourceID, params.K)
	metrics.RecordScoring("recommend", time.Since(start), err)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "SCORING_ERROR",
			"Failed to compute recommendations", err)
		return
	}
	metrics.RecommendationsReturned.Observe(float64(len(resp.Items)))

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data:   resp,
		Metadata: Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			RequestID:   resp.Metadata.RequestID,
		},
	})
}

// handleSimilarBooks ranks catalog books similar to a reference book.
func (h *Handler) handleSimilarBooks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	params := similarParams{
		BookID: chi.URLParam(r, "bookID"),
		Limit:  getIntParam(r, "limit", 0),
	}
	if apiErr := validateRequest(&params); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	books, err := h.engine.SimilarBooks(r.Context(), params.BookID, params.Limit)
	metrics.RecordScoring("similar", time.Since(start), err)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "SCORING_ERROR",
			"Failed to find similar books", err)
		return
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"book_id": params.BookID,
			"items":   books,
		},
		Metadata: Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			RequestID:   logging.RequestIDFromContext(r.Context()),
		},
	})
}

// handleEngineStats exposes the engine's internal request counters, separate
// from the Prometheus surface, for quick operational inspection.
func (h *Handler) handleEngineStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data:   h.engine.GetMetrics(),
		Metadata: Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
	})
}

// respondValidationError writes a 400 with the structured validation payload.
func respondValidationError(w http.ResponseWriter, apiErr *APIError) {
	respondJSON(w, http.StatusBadRequest, &APIResponse{
		Status:   "error",
		Metadata: Metadata{Timestamp: time.Now().UTC()},
		Error:    apiErr,
	})
}

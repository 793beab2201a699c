// Readergraph - Reading Affinity and Book Recommendation Engine
// Copyright 2026 Readergraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readergraph/readergraph

// Package api implements the HTTP surface of the affinity service: chi
// routing, CORS and per-IP rate limiting, request-ID propagation, Prometheus
// request metrics, and JSON handlers over the scoring engine.
//
// All responses use the APIResponse envelope. Errors carry a structured
// APIError with a stable machine-readable code.
package api

// Readergraph - Reading Affinity and Book Recommendation Engine
// Copyright 2026 Readergraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readergraph/readergraph

// Package store provides DuckDB-backed persistence for readers, books, tag
// relations and catalog entries, and implements the affinity.Store contract
// the scoring engine reads from.
//
// Tags are persisted as the loose JSON payloads delivered by upstream
// catalog imports; rows are normalized through affinity.ParseTagRows at read
// time so a malformed payload degrades to zero signal instead of failing a
// query.
//
// Key characteristics:
//   - Embedded analytical database, no external server
//   - CGO-based driver (github.com/duckdb/duckdb-go/v2)
//   - All queries run with bounded timeouts
//   - Read paths are safe for concurrent use
package store

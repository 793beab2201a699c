// Readergraph - Reading Affinity and Book Recommendation Engine
// Copyright 2026 Readergraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readergraph/readergraph

// Package affinity implements reading-affinity scoring between readers and
// tag-based book recommendations.
//
// # Architecture
//
// Five components, each a pure function of externally-supplied data:
//
//   - Tag weight aggregation: a reader's catalog becomes a weighted
//     frequency map over classification tags (BuildTagWeights)
//   - Reader compatibility: two weight maps plus catalog overlap become a
//     0-100 score with an interpretable reason (ScoreCompatibility)
//   - Candidate affinity: candidate books are scored against one reader's
//     weight map (ScoreCandidates)
//   - Combined ranking: affinity, compatibility and source ratings blend
//     into the final top-K recommendation list (RankRecommendations)
//   - Similar books: a single-book ranking by shared tags with a
//     same-author fallback (MatchSimilarBooks)
//
// The Engine type wires these together over a Store interface so that
// request-handling code fetches nothing itself.
//
// # Design Principles
//
//   - Deterministic: same inputs produce identical outputs
//   - Total: every code path has a defined result for any well-typed input,
//     including empty catalogs; absence of data is never an error
//   - Stateless: results are recomputed from the current catalog snapshot on
//     every request; the per-reader weight cache is strictly opt-in
//   - Auditable: all operations are logged with structured fields
//
// # Usage
//
//	cfg := affinity.DefaultConfig()
//	engine, err := affinity.NewEngine(cfg, store, logger)
//	if err != nil { ... }
//
//	recs, err := engine.Recommend(ctx, viewerID, sourceID, 6)
//
// # Thread Safety
//
// The engine is safe for concurrent use. The scoring functions themselves
// are pure and share no state; only the optional weight cache is guarded.
package affinity

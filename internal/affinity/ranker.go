// Readergraph - Reading Affinity and Book Recommendation Engine
// Copyright 2026 Readergraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readergraph/readergraph

package affinity

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// RankRecommendations blends raw candidate affinity, reader compatibility
// and the source reader's ratings into the final top-K recommendation list,
// sorted by combined score descending. Ties keep the candidate computation
// order (the sort is stable).
//
// Raw scores are min-max normalized to 0-100 before blending so that tag
// magnitude, which varies wildly with catalog size, cannot dominate the
// fixed-scale compatibility score. The range clamps to 1, so a candidate set
// with a single distinct raw score normalizes to 0 across the board; the
// compatibility share of the blend still differentiates such lists from
// empty ones.
//
// ratings maps candidate book ID to the source reader's rating; absent keys
// mean unrated. Metadata fields of the returned entries are left empty for
// the caller to decorate.
func RankRecommendations(candidates []CandidateScore, compat CompatibilityScore, ratings map[string]float64, cfg ScoringConfig, k int) []BookRecommendation {
	if len(candidates) == 0 || k <= 0 {
		return []BookRecommendation{}
	}

	minRaw, maxRaw := candidates[0].Raw, candidates[0].Raw
	for _, c := range candidates[1:] {
		if c.Raw < minRaw {
			minRaw = c.Raw
		}
		if c.Raw > maxRaw {
			maxRaw = c.Raw
		}
	}
	rawRange := maxRaw - minRaw
	if rawRange < 1 {
		rawRange = 1
	}

	recs := make([]BookRecommendation, 0, len(candidates))
	for _, c := range candidates {
		norm := int(math.Round(float64(c.Raw-minRaw) / float64(rawRange) * 100))

		bonus := 0
		if r, ok := ratings[c.BookID]; ok && r >= cfg.RatingBonusMin {
			bonus = cfg.RatingBonus
		}

		combined := float64(norm)*cfg.BookBlendWeight +
			float64(compat.Score)*cfg.CompatBlendWeight +
			float64(bonus)
		final := int(math.Round(combined))
		if final > 100 {
			final = 100
		}

		recs = append(recs, BookRecommendation{
			BookID:       c.BookID,
			Score:        final,
			MatchingTags: c.MatchingTags,
			Reason:       recommendationReason(c.MatchingTags, compat.Score, cfg.ReasonTagLimit),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})

	if len(recs) > k {
		recs = recs[:k]
	}
	return recs
}

// recommendationReason renders an interpretable explanation: the first few
// matching tag names, when any exist, followed by the compatibility
// percentage with the source reader.
func recommendationReason(matchingTags []string, compatScore, tagLimit int) string {
	var clauses []string
	if len(matchingTags) > 0 {
		shown := matchingTags
		if len(shown) > tagLimit {
			shown = shown[:tagLimit]
		}
		clauses = append(clauses, fmt.Sprintf("matches %s", strings.Join(shown, ", ")))
	}
	clauses = append(clauses, fmt.Sprintf("%d%% reader compatibility", compatScore))
	return strings.Join(clauses, reasonSeparator)
}

// Readergraph - Reading Affinity and Book Recommendation Engine
// Copyright 2026 Readergraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readergraph/readergraph

package affinity

import (
	"fmt"
	"math"
	"strings"
)

// reasonSeparator joins the clauses of generated reason strings.
const reasonSeparator = " • "

// ScoreCompatibility computes the 0-100 compatibility between two readers
// from their tag weight maps and catalog book sets. The function is
// symmetric: swapping the two readers yields the same score.
//
// Tag overlap contributes proportionally to the larger profile, up to
// cfg.TagScoreMax; catalog overlap adds cfg.SharedBookPoints per shared book
// capped at cfg.SharedBookMax. Only tag presence matters for the overlap
// ratio, not accumulated weight.
func ScoreCompatibility(viewerTags, otherTags TagWeights, viewerBooks, otherBooks map[string]struct{}, cfg ScoringConfig) CompatibilityScore {
	sharedTags := 0
	for name, w := range viewerTags {
		if w <= 0 {
			continue
		}
		if ow, ok := otherTags[name]; ok && ow > 0 {
			sharedTags++
		}
	}

	maxTagCount := len(viewerTags)
	if len(otherTags) > maxTagCount {
		maxTagCount = len(otherTags)
	}
	if maxTagCount < 1 {
		maxTagCount = 1
	}
	tagScore := int(math.Round(float64(sharedTags) / float64(maxTagCount) * float64(cfg.TagScoreMax)))

	sharedBooks := 0
	for id := range viewerBooks {
		if _, ok := otherBooks[id]; ok {
			sharedBooks++
		}
	}
	bookBonus := sharedBooks * cfg.SharedBookPoints
	if bookBonus > cfg.SharedBookMax {
		bookBonus = cfg.SharedBookMax
	}

	score := tagScore + bookBonus
	if score > 100 {
		score = 100
	}

	return CompatibilityScore{
		Score:           score,
		Reason:          compatReason(sharedTags, sharedBooks),
		SharedTagCount:  sharedTags,
		SharedBookCount: sharedBooks,
	}
}

// compatReason renders the shared-tag and shared-book counts as a short
// human-readable clause list. With no overlap at all it falls back to a
// neutral phrase instead of an empty string.
func compatReason(sharedTags, sharedBooks int) string {
	var clauses []string
	if sharedTags > 0 {
		clauses = append(clauses, fmt.Sprintf("%d %s in common", sharedTags, pluralize("tag", sharedTags)))
	}
	if sharedBooks > 0 {
		clauses = append(clauses, fmt.Sprintf("%d shared %s", sharedBooks, pluralize("book", sharedBooks)))
	}
	if len(clauses) == 0 {
		return "profiles to discover"
	}
	return strings.Join(clauses, reasonSeparator)
}

func pluralize(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

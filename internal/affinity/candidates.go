// Readergraph - Reading Affinity and Book Recommendation Engine
// Copyright 2026 Readergraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readergraph/readergraph

package affinity

// ScoreCandidates computes the raw affinity of each candidate book against a
// viewer's tag weight map. The result preserves the order of candidateIDs
// and contains one entry per candidate, including books with no matching
// tags, whose Raw is 0.
//
// For each candidate, Raw sums the viewer's weight for every tag the book
// carries that the viewer also has with positive weight. MatchingTags lists
// those tags deduplicated in first-seen relation order.
func ScoreCandidates(viewerTags TagWeights, relations []TagRelation, candidateIDs []string) []CandidateScore {
	tagsByBook := make(map[string][]string, len(candidateIDs))
	for _, rel := range relations {
		if rel.BookID == "" || rel.TagName == "" {
			continue
		}
		tagsByBook[rel.BookID] = append(tagsByBook[rel.BookID], rel.TagName)
	}

	scores := make([]CandidateScore, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		score := CandidateScore{BookID: id, MatchingTags: []string{}}
		seen := make(map[string]struct{})
		for _, tag := range tagsByBook[id] {
			w, ok := viewerTags[tag]
			if !ok || w <= 0 {
				continue
			}
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			score.Raw += w
			score.MatchingTags = append(score.MatchingTags, tag)
		}
		scores = append(scores, score)
	}
	return scores
}

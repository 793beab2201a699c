// Readergraph - Reading Affinity and Book Recommendation Engine
// Copyright 2026 Readergraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readergraph/readergraph

package affinity

// BuildTagWeights aggregates a reader's catalog into a weighted frequency
// map over tag names. Every entry contributes its status weight to each tag
// its book carries; a book without tags contributes nothing and an empty
// catalog yields an empty map.
//
// Tag identity is by name: two relation rows with the same name accumulate
// into the same key regardless of where they came from.
func BuildTagWeights(entries []CatalogEntry, relations []TagRelation, weights StatusWeights) TagWeights {
	tagsByBook := make(map[string][]string, len(relations))
	for _, rel := range relations {
		if rel.BookID == "" || rel.TagName == "" {
			continue
		}
		tagsByBook[rel.BookID] = append(tagsByBook[rel.BookID], rel.TagName)
	}

	out := make(TagWeights)
	for _, entry := range entries {
		w := weights.Weight(entry.Status)
		for _, tag := range tagsByBook[entry.BookID] {
			out[tag] += w
		}
	}
	return out
}

// BookIDSet returns the set of book IDs present in a catalog.
func BookIDSet(entries []CatalogEntry) map[string]struct{} {
	set := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		set[entry.BookID] = struct{}{}
	}
	return set
}

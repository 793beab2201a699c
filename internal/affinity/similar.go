// Readergraph - Reading Affinity and Book Recommendation Engine
// Copyright 2026 Readergraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readergraph/readergraph

package affinity

import "sort"

// MatchSimilarBooks ranks catalog books by shared-tag count against one
// reference book, padding with same-author books when tag signal alone
// cannot fill the limit. It is independent of any reader.
//
// refTags is the reference book's own tag names. relations holds the tag
// rows for the rest of the catalog; rows for the reference book itself are
// ignored. books supplies author and display metadata, in catalog order,
// which the author fallback preserves. A reference book with no tags and no
// author match yields an empty result, not an error.
//
// Output order is tag-ranked entries first, score descending with ties in
// first-seen relation order, then author-padded entries with empty
// MatchingTags. No book appears twice and the reference book never appears.
func MatchSimilarBooks(ref Book, refTags []string, relations []TagRelation, books []Book, limit int) []SimilarBook {
	if limit <= 0 {
		return []SimilarBook{}
	}

	refTagSet := make(map[string]struct{}, len(refTags))
	for _, t := range refTags {
		refTagSet[t] = struct{}{}
	}

	metaByID := make(map[string]Book, len(books))
	for _, b := range books {
		metaByID[b.ID] = b
	}

	// Shared-tag scores, keyed by book, in first-seen relation order.
	type tagMatch struct {
		bookID string
		tags   []string
	}
	var matches []tagMatch
	matchIdx := make(map[string]int)
	for _, rel := range relations {
		if rel.BookID == "" || rel.BookID == ref.ID {
			continue
		}
		if _, shared := refTagSet[rel.TagName]; !shared {
			continue
		}
		i, ok := matchIdx[rel.BookID]
		if !ok {
			i = len(matches)
			matchIdx[rel.BookID] = i
			matches = append(matches, tagMatch{bookID: rel.BookID})
		}
		dup := false
		for _, t := range matches[i].tags {
			if t == rel.TagName {
				dup = true
				break
			}
		}
		if !dup {
			matches[i].tags = append(matches[i].tags, rel.TagName)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return len(matches[i].tags) > len(matches[j].tags)
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	results := make([]SimilarBook, 0, limit)
	selected := make(map[string]struct{}, limit)
	for _, m := range matches {
		meta := metaByID[m.bookID]
		results = append(results, SimilarBook{
			BookID:       m.bookID,
			Title:        meta.Title,
			Author:       meta.Author,
			CoverRef:     meta.CoverRef,
			MatchingTags: m.tags,
		})
		selected[m.bookID] = struct{}{}
	}

	// Same-author fallback, in original catalog order.
	if len(results) < limit && ref.Author != "" {
		for _, b := range books {
			if len(results) >= limit {
				break
			}
			if b.ID == ref.ID || b.Author != ref.Author {
				continue
			}
			if _, dup := selected[b.ID]; dup {
				continue
			}
			results = append(results, SimilarBook{
				BookID:       b.ID,
				Title:        b.Title,
				Author:       b.Author,
				CoverRef:     b.CoverRef,
				MatchingTags: []string{},
			})
			selected[b.ID] = struct{}{}
		}
	}

	return results
}

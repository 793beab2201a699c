// Readergraph - Reading Affinity and Book Recommendation Engine
// Copyright 2026 Readergraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readergraph/readergraph

package affinity

import (
	"reflect"
	"testing"
)

func TestMatchSimilarBooks(t *testing.T) {
	ref := Book{ID: "ref", Title: "Reference", Author: "Le Guin"}
	refTags := []string{"SciFi", "Anthropology"}

	books := []Book{
		{ID: "ref", Title: "Reference", Author: "Le Guin"},
		{ID: "b1", Title: "One", Author: "Herbert"},
		{ID: "b2", Title: "Two", Author: "Le Guin"},
		{ID: "b3", Title: "Three", Author: "Banks"},
		{ID: "b4", Title: "Four", Author: "Le Guin"},
	}

	t.Run("ranks by shared tag count descending", func(t *testing.T) {
		relations := []TagRelation{
			{BookID: "b1", TagName: "SciFi"},
			{BookID: "b3", TagName: "SciFi"},
			{BookID: "b3", TagName: "Anthropology"},
		}
		got := MatchSimilarBooks(ref, refTags, relations, books, 6)

		if len(got) < 2 {
			t.Fatalf("len = %d, want >= 2", len(got))
		}
		if got[0].BookID != "b3" {
			t.Errorf("first = %s, want b3", got[0].BookID)
		}
		if !reflect.DeepEqual(got[0].MatchingTags, []string{"SciFi", "Anthropology"}) {
			t.Errorf("MatchingTags = %v, want [SciFi Anthropology]", got[0].MatchingTags)
		}
		if got[1].BookID != "b1" {
			t.Errorf("second = %s, want b1", got[1].BookID)
		}
	})

	t.Run("non-shared tags are ignored", func(t *testing.T) {
		relations := []TagRelation{
			{BookID: "b1", TagName: "Romance"},
			{BookID: "b3", TagName: "SciFi"},
		}
		got := MatchSimilarBooks(Book{ID: "ref"}, refTags, relations, books, 6)

		if len(got) != 1 || got[0].BookID != "b3" {
			t.Fatalf("got %+v, want only b3", got)
		}
	})

	t.Run("reference book rows are excluded", func(t *testing.T) {
		relations := []TagRelation{
			{BookID: "ref", TagName: "SciFi"},
			{BookID: "b1", TagName: "SciFi"},
		}
		got := MatchSimilarBooks(ref, refTags, relations, books, 6)

		for _, s := range got {
			if s.BookID == "ref" {
				t.Error("reference book appeared in its own similar list")
			}
		}
	})

	t.Run("pads with same-author books preserving catalog order", func(t *testing.T) {
		relations := []TagRelation{
			{BookID: "b1", TagName: "SciFi"},
		}
		got := MatchSimilarBooks(ref, refTags, relations, books, 3)

		wantIDs := []string{"b1", "b2", "b4"}
		if len(got) != len(wantIDs) {
			t.Fatalf("len = %d, want %d: %+v", len(got), len(wantIDs), got)
		}
		for i, id := range wantIDs {
			if got[i].BookID != id {
				t.Errorf("result[%d] = %s, want %s", i, got[i].BookID, id)
			}
		}
		if len(got[1].MatchingTags) != 0 || len(got[2].MatchingTags) != 0 {
			t.Error("author-padded entries must carry empty MatchingTags")
		}
	})

	t.Run("padding never duplicates a tag-ranked entry", func(t *testing.T) {
		relations := []TagRelation{
			{BookID: "b2", TagName: "SciFi"},
		}
		got := MatchSimilarBooks(ref, refTags, relations, books, 6)

		seen := make(map[string]int)
		for _, s := range got {
			seen[s.BookID]++
		}
		if seen["b2"] != 1 {
			t.Errorf("b2 appeared %d times, want 1", seen["b2"])
		}
	})

	t.Run("stops padding at the limit", func(t *testing.T) {
		got := MatchSimilarBooks(ref, nil, nil, books, 1)

		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
		if got[0].BookID != "b2" {
			t.Errorf("got %s, want b2 (first same-author book)", got[0].BookID)
		}
	})

	t.Run("no tags and no author match yields empty result", func(t *testing.T) {
		lonely := Book{ID: "x", Author: "Nobody"}
		got := MatchSimilarBooks(lonely, nil, nil, books, 6)

		if len(got) != 0 {
			t.Errorf("len = %d, want 0: %+v", len(got), got)
		}
	})

	t.Run("metadata is attached from the catalog", func(t *testing.T) {
		relations := []TagRelation{
			{BookID: "b1", TagName: "SciFi"},
		}
		got := MatchSimilarBooks(ref, refTags, relations, books, 6)

		if got[0].Title != "One" || got[0].Author != "Herbert" {
			t.Errorf("metadata = %q by %q, want One by Herbert", got[0].Title, got[0].Author)
		}
	})
}

// Readergraph - Reading Affinity and Book Recommendation Engine
// Copyright 2026 Readergraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readergraph/readergraph

package affinity

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

// fakeStore is an in-memory Store for engine tests.
type fakeStore struct {
	catalogs  map[string][]CatalogEntry
	relations []TagRelation
	books     []Book

	catalogErr   error
	relationsErr error

	relationCalls atomic.Int64
}

func (f *fakeStore) GetCatalog(_ context.Context, readerID string) ([]CatalogEntry, error) {
	if f.catalogErr != nil {
		return nil, f.catalogErr
	}
	return f.catalogs[readerID], nil
}

func (f *fakeStore) GetTagRelations(_ context.Context, bookIDs []string) ([]TagRelation, error) {
	f.relationCalls.Add(1)
	if f.relationsErr != nil {
		return nil, f.relationsErr
	}
	want := make(map[string]struct{}, len(bookIDs))
	for _, id := range bookIDs {
		want[id] = struct{}{}
	}
	var out []TagRelation
	for _, rel := range f.relations {
		if _, ok := want[rel.BookID]; ok {
			out = append(out, rel)
		}
	}
	return out, nil
}

func (f *fakeStore) GetBooks(_ context.Context, bookIDs []string) ([]Book, error) {
	want := make(map[string]struct{}, len(bookIDs))
	for _, id := range bookIDs {
		want[id] = struct{}{}
	}
	var out []Book
	for _, b := range f.books {
		if _, ok := want[b.ID]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) GetAllBooks(_ context.Context) ([]Book, error) {
	return f.books, nil
}

func (f *fakeStore) FilterOwned(_ context.Context, readerID string, bookIDs []string) (map[string]struct{}, error) {
	owned := make(map[string]struct{})
	for _, entry := range f.catalogs[readerID] {
		owned[entry.BookID] = struct{}{}
	}
	out := make(map[string]struct{})
	for _, id := range bookIDs {
		if _, ok := owned[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

// scenarioStore seeds the profile page scenario: viewer finished bookA
// (SciFi, Mystery); source finished bookA and bookB (SciFi) and queued
// bookC (Romance), rating bookB a 5.
func scenarioStore() *fakeStore {
	return &fakeStore{
		catalogs: map[string][]CatalogEntry{
			"viewer": {
				{BookID: "bookA", Status: StatusFinished},
			},
			"source": {
				{BookID: "bookA", Status: StatusFinished},
				{BookID: "bookB", Status: StatusFinished, Rating: 5, Rated: true},
				{BookID: "bookC", Status: StatusToRead},
			},
		},
		relations: []TagRelation{
			{BookID: "bookA", TagName: "SciFi"},
			{BookID: "bookA", TagName: "Mystery"},
			{BookID: "bookB", TagName: "SciFi"},
			{BookID: "bookC", TagName: "Romance"},
		},
		books: []Book{
			{ID: "bookA", Title: "Alpha", Author: "Asimov"},
			{ID: "bookB", Title: "Beta", Author: "Banks"},
			{ID: "bookC", Title: "Gamma", Author: "Christie"},
		},
	}
}

func newTestEngine(t *testing.T, cfg *Config, store Store) *Engine {
	t.Helper()
	engine, err := NewEngine(cfg, store, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine
}

func TestNewEngine(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		engine, err := NewEngine(nil, &fakeStore{}, zerolog.Nop())
		if err != nil {
			t.Fatalf("NewEngine: %v", err)
		}
		if engine.GetConfig().Limits.DefaultK != 6 {
			t.Errorf("DefaultK = %d, want 6", engine.GetConfig().Limits.DefaultK)
		}
	})

	t.Run("invalid config rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Limits.DefaultK = 0
		if _, err := NewEngine(cfg, &fakeStore{}, zerolog.Nop()); err == nil {
			t.Error("expected error for invalid config")
		}
	})

	t.Run("nil store rejected", func(t *testing.T) {
		if _, err := NewEngine(nil, nil, zerolog.Nop()); err == nil {
			t.Error("expected error for nil store")
		}
	})
}

func TestEngine_Compatibility(t *testing.T) {
	engine := newTestEngine(t, nil, scenarioStore())

	got, err := engine.Compatibility(context.Background(), "viewer", "source")
	if err != nil {
		t.Fatalf("Compatibility: %v", err)
	}

	// viewer map {SciFi:3, Mystery:3}; source map {SciFi:6, Mystery:3,
	// Romance:1}. Shared tags {SciFi, Mystery} of max size 3 gives
	// round(2/3*80)=53; one shared book adds 5.
	if got.Score != 58 {
		t.Errorf("Score = %d, want 58", got.Score)
	}
	if got.SharedTagCount != 2 {
		t.Errorf("SharedTagCount = %d, want 2", got.SharedTagCount)
	}
	if got.SharedBookCount != 1 {
		t.Errorf("SharedBookCount = %d, want 1", got.SharedBookCount)
	}
}

func TestEngine_Compatibility_EmptyCatalogs(t *testing.T) {
	engine := newTestEngine(t, nil, &fakeStore{catalogs: map[string][]CatalogEntry{}})

	got, err := engine.Compatibility(context.Background(), "ghost1", "ghost2")
	if err != nil {
		t.Fatalf("Compatibility: %v", err)
	}
	if got.Score != 0 {
		t.Errorf("Score = %d, want 0", got.Score)
	}
	if got.Reason != "profiles to discover" {
		t.Errorf("Reason = %q, want fallback", got.Reason)
	}
}

func TestEngine_Compatibility_StoreError(t *testing.T) {
	store := scenarioStore()
	store.catalogErr = errors.New("connection refused")
	engine := newTestEngine(t, nil, store)

	if _, err := engine.Compatibility(context.Background(), "viewer", "source"); err == nil {
		t.Error("expected store error to propagate")
	}
	if engine.GetMetrics().ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", engine.GetMetrics().ErrorCount)
	}
}

func TestEngine_Recommend(t *testing.T) {
	engine := newTestEngine(t, nil, scenarioStore())

	resp, err := engine.Recommend(context.Background(), "viewer", "source", 0)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	t.Run("owned books are excluded", func(t *testing.T) {
		for _, rec := range resp.Items {
			if rec.BookID == "bookA" {
				t.Error("bookA is in the viewer's catalog and must not be recommended")
			}
			if rec.ViewerHasInReadlist {
				t.Errorf("%s marked as owned", rec.BookID)
			}
		}
	})

	t.Run("candidates cover the unowned source books", func(t *testing.T) {
		if resp.TotalCandidates != 2 {
			t.Errorf("TotalCandidates = %d, want 2", resp.TotalCandidates)
		}
		if len(resp.Items) != 2 {
			t.Fatalf("len(Items) = %d, want 2", len(resp.Items))
		}
	})

	t.Run("rated matching book ranks first with metadata", func(t *testing.T) {
		first := resp.Items[0]
		if first.BookID != "bookB" {
			t.Fatalf("first = %s, want bookB", first.BookID)
		}
		if first.Title != "Beta" || first.Author != "Banks" {
			t.Errorf("metadata = %q by %q, want Beta by Banks", first.Title, first.Author)
		}
		// norm 100 for the higher raw, compat 58, rating bonus 10:
		// min(100, round(60+23.2+10)) = 93.
		if first.Score != 93 {
			t.Errorf("Score = %d, want 93", first.Score)
		}
		if len(first.MatchingTags) != 1 || first.MatchingTags[0] != "SciFi" {
			t.Errorf("MatchingTags = %v, want [SciFi]", first.MatchingTags)
		}
	})

	t.Run("scores are non-increasing and bounded", func(t *testing.T) {
		for i, rec := range resp.Items {
			if rec.Score < 0 || rec.Score > 100 {
				t.Errorf("Score = %d, want within [0, 100]", rec.Score)
			}
			if i > 0 && rec.Score > resp.Items[i-1].Score {
				t.Errorf("score increased at %d", i)
			}
		}
	})

	t.Run("metadata is populated", func(t *testing.T) {
		if resp.Metadata.RequestID == "" {
			t.Error("RequestID is empty")
		}
		if resp.Metadata.ViewerID != "viewer" || resp.Metadata.SourceID != "source" {
			t.Errorf("ids = %s/%s, want viewer/source", resp.Metadata.ViewerID, resp.Metadata.SourceID)
		}
		if resp.Metadata.Timestamp.IsZero() {
			t.Error("Timestamp is zero")
		}
	})
}

func TestEngine_Recommend_EmptySourceCatalog(t *testing.T) {
	store := scenarioStore()
	delete(store.catalogs, "source")
	engine := newTestEngine(t, nil, store)

	resp, err := engine.Recommend(context.Background(), "viewer", "source", 0)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(resp.Items) != 0 {
		t.Errorf("len(Items) = %d, want 0", len(resp.Items))
	}
	if resp.Compatibility.Score != 0 {
		t.Errorf("Compatibility.Score = %d, want 0", resp.Compatibility.Score)
	}
}

func TestEngine_Recommend_KClamping(t *testing.T) {
	store := scenarioStore()
	engine := newTestEngine(t, nil, store)

	resp, err := engine.Recommend(context.Background(), "viewer", "source", 1)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(resp.Items) != 1 {
		t.Errorf("len(Items) = %d, want 1", len(resp.Items))
	}

	resp, err = engine.Recommend(context.Background(), "viewer", "source", 10_000)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(resp.Items) > engine.GetConfig().Limits.MaxK {
		t.Errorf("len(Items) = %d exceeds MaxK", len(resp.Items))
	}
}

func TestEngine_Recommend_StoreError(t *testing.T) {
	store := scenarioStore()
	store.relationsErr = errors.New("query timeout")
	engine := newTestEngine(t, nil, store)

	if _, err := engine.Recommend(context.Background(), "viewer", "source", 0); err == nil {
		t.Error("expected store error to propagate")
	}
}

func TestEngine_SimilarBooks(t *testing.T) {
	engine := newTestEngine(t, nil, scenarioStore())

	t.Run("shared-tag match", func(t *testing.T) {
		got, err := engine.SimilarBooks(context.Background(), "bookA", 0)
		if err != nil {
			t.Fatalf("SimilarBooks: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1: %+v", len(got), got)
		}
		if got[0].BookID != "bookB" {
			t.Errorf("got %s, want bookB", got[0].BookID)
		}
		if len(got[0].MatchingTags) != 1 || got[0].MatchingTags[0] != "SciFi" {
			t.Errorf("MatchingTags = %v, want [SciFi]", got[0].MatchingTags)
		}
	})

	t.Run("unknown book yields empty list", func(t *testing.T) {
		got, err := engine.SimilarBooks(context.Background(), "missing", 0)
		if err != nil {
			t.Fatalf("SimilarBooks: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("len = %d, want 0", len(got))
		}
	})
}

func TestEngine_WeightCache(t *testing.T) {
	t.Run("disabled by default", func(t *testing.T) {
		store := scenarioStore()
		engine := newTestEngine(t, nil, store)

		for i := 0; i < 2; i++ {
			if _, err := engine.Compatibility(context.Background(), "viewer", "source"); err != nil {
				t.Fatalf("Compatibility: %v", err)
			}
		}
		if hits := engine.GetMetrics().CacheHits; hits != 0 {
			t.Errorf("CacheHits = %d, want 0", hits)
		}
	})

	t.Run("enabled cache skips repeat aggregation", func(t *testing.T) {
		store := scenarioStore()
		cfg := DefaultConfig()
		cfg.Cache.Enabled = true
		engine := newTestEngine(t, cfg, store)

		if _, err := engine.Compatibility(context.Background(), "viewer", "source"); err != nil {
			t.Fatalf("Compatibility: %v", err)
		}
		coldCalls := store.relationCalls.Load()

		if _, err := engine.Compatibility(context.Background(), "viewer", "source"); err != nil {
			t.Fatalf("Compatibility: %v", err)
		}
		if warmCalls := store.relationCalls.Load(); warmCalls != coldCalls {
			t.Errorf("relation calls grew from %d to %d on warm request", coldCalls, warmCalls)
		}
		if hits := engine.GetMetrics().CacheHits; hits != 2 {
			t.Errorf("CacheHits = %d, want 2", hits)
		}
	})

	t.Run("invalidation forces refetch", func(t *testing.T) {
		store := scenarioStore()
		cfg := DefaultConfig()
		cfg.Cache.Enabled = true
		engine := newTestEngine(t, cfg, store)

		if _, err := engine.Compatibility(context.Background(), "viewer", "source"); err != nil {
			t.Fatalf("Compatibility: %v", err)
		}
		engine.InvalidateReader("viewer")

		before := store.relationCalls.Load()
		if _, err := engine.Compatibility(context.Background(), "viewer", "source"); err != nil {
			t.Fatalf("Compatibility: %v", err)
		}
		if after := store.relationCalls.Load(); after != before+1 {
			t.Errorf("relation calls = %d, want %d after invalidation", after, before+1)
		}
	})
}

func TestEngine_GetMetrics(t *testing.T) {
	engine := newTestEngine(t, nil, scenarioStore())

	for i := 0; i < 3; i++ {
		if _, err := engine.Compatibility(context.Background(), "viewer", "source"); err != nil {
			t.Fatalf("Compatibility: %v", err)
		}
	}

	m := engine.GetMetrics()
	if m.RequestCount != 3 {
		t.Errorf("RequestCount = %d, want 3", m.RequestCount)
	}
	if m.ErrorCount != 0 {
		t.Errorf("ErrorCount = %d, want 0", m.ErrorCount)
	}
}

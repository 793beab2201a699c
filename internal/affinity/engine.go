// Readergraph - Reading Affinity and Book Recommendation Engine
// Copyright 2026 Readergraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readergraph/readergraph

package affinity

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Note: This package has no dependencies on other internal packages to keep
// the scoring core importable on its own. The Store interface allows
// integration with the storage layer without creating circular imports.

// Engine coordinates the scoring components over a Store.
// It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger
	store  Store

	// Metrics
	requestCount atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
	errorCount   atomic.Int64

	// Opt-in per-reader tag-weight memoization
	weightCache map[string]weightCacheEntry
	cacheMu     sync.RWMutex
}

// weightCacheEntry holds a memoized weight map for one reader.
type weightCacheEntry struct {
	weights   TagWeights
	expiresAt time.Time
}

// Metrics is a snapshot of the engine's request counters.
type Metrics struct {
	RequestCount int64 `json:"request_count"`
	CacheHits    int64 `json:"cache_hits"`
	CacheMisses  int64 `json:"cache_misses"`
	ErrorCount   int64 `json:"error_count"`
}

// NewEngine creates a new affinity engine backed by the given store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, store Store, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}

	return &Engine{
		config:      cfg,
		logger:      logger.With().Str("component", "affinity").Logger(),
		store:       store,
		weightCache: make(map[string]weightCacheEntry),
	}, nil
}

// readerSignals is everything the scorers need about one reader.
type readerSignals struct {
	entries []CatalogEntry
	weights TagWeights
	books   map[string]struct{}
	cached  bool
}

// Compatibility computes the compatibility score between two readers.
// Both catalogs are fetched concurrently; the score itself is symmetric in
// its inputs.
func (e *Engine) Compatibility(ctx context.Context, viewerID, otherID string) (*CompatibilityScore, error) {
	start := time.Now()
	e.requestCount.Add(1)

	viewer, other, err := e.fetchPair(ctx, viewerID, otherID)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	compat := ScoreCompatibility(viewer.weights, other.weights, viewer.books, other.books, e.config.Scoring)

	e.logger.Debug().
		Str("viewer_id", viewerID).
		Str("other_id", otherID).
		Int("score", compat.Score).
		Int("shared_tags", compat.SharedTagCount).
		Int("shared_books", compat.SharedBookCount).
		Int64("latency_ms", time.Since(start).Milliseconds()).
		Msg("compatibility computed")

	return &compat, nil
}

// Recommend produces the top-K recommendations for viewerID drawn from
// sourceID's catalog. k <= 0 selects the configured default; k above the
// configured maximum is clamped.
func (e *Engine) Recommend(ctx context.Context, viewerID, sourceID string, k int) (*RecommendationResponse, error) {
	start := time.Now()
	e.requestCount.Add(1)
	requestID := uuid.NewString()

	if k <= 0 {
		k = e.config.Limits.DefaultK
	}
	if k > e.config.Limits.MaxK {
		k = e.config.Limits.MaxK
	}

	logger := e.logger.With().
		Str("request_id", requestID).
		Str("viewer_id", viewerID).
		Str("source_id", sourceID).
		Logger()
	logger.Debug().Int("k", k).Msg("processing recommendation request")

	viewer, source, err := e.fetchPair(ctx, viewerID, sourceID)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	compat := ScoreCompatibility(viewer.weights, source.weights, viewer.books, source.books, e.config.Scoring)

	candidateIDs, err := e.selectCandidates(ctx, viewerID, viewer, source)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("select candidates: %w", err)
	}

	meta := ResponseMetadata{
		RequestID:     requestID,
		ViewerID:      viewerID,
		SourceID:      sourceID,
		WeightsCached: viewer.cached || source.cached,
		Timestamp:     time.Now().UTC(),
	}

	if len(candidateIDs) == 0 {
		logger.Debug().Msg("no candidates available")
		meta.LatencyMS = time.Since(start).Milliseconds()
		return &RecommendationResponse{
			Items:         []BookRecommendation{},
			Compatibility: compat,
			Metadata:      meta,
		}, nil
	}

	relations, err := e.store.GetTagRelations(ctx, candidateIDs)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("get candidate tags: %w", err)
	}

	scores := ScoreCandidates(viewer.weights, relations, candidateIDs)
	ratings := sourceRatings(source.entries)
	recs := RankRecommendations(scores, compat, ratings, e.config.Scoring, k)

	if err := e.decorate(ctx, recs); err != nil {
		// Metadata is display-only; a failed lookup degrades the list
		// rather than discarding it.
		logger.Warn().Err(err).Msg("book metadata lookup failed")
	}

	meta.LatencyMS = time.Since(start).Milliseconds()
	logger.Debug().
		Int("candidates", len(candidateIDs)).
		Int("returned", len(recs)).
		Int64("latency_ms", meta.LatencyMS).
		Msg("recommendation complete")

	return &RecommendationResponse{
		Items:           recs,
		Compatibility:   compat,
		TotalCandidates: len(candidateIDs),
		Metadata:        meta,
	}, nil
}

// SimilarBooks ranks catalog books similar to bookID by shared tags with a
// same-author fallback. An unknown book yields an empty list, not an error.
func (e *Engine) SimilarBooks(ctx context.Context, bookID string, limit int) ([]SimilarBook, error) {
	start := time.Now()
	e.requestCount.Add(1)

	if limit <= 0 {
		limit = e.config.Limits.SimilarLimit
	}
	if limit > e.config.Limits.MaxK {
		limit = e.config.Limits.MaxK
	}

	books, err := e.store.GetAllBooks(ctx)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("get books: %w", err)
	}

	var ref Book
	found := false
	for _, b := range books {
		if b.ID == bookID {
			ref = b
			found = true
			break
		}
	}
	if !found {
		e.logger.Debug().Str("book_id", bookID).Msg("reference book not found")
		return []SimilarBook{}, nil
	}

	ids := make([]string, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}
	relations, err := e.store.GetTagRelations(ctx, ids)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("get tag relations: %w", err)
	}

	var refTags []string
	for _, rel := range relations {
		if rel.BookID == bookID {
			refTags = append(refTags, rel.TagName)
		}
	}

	results := MatchSimilarBooks(ref, refTags, relations, books, limit)

	e.logger.Debug().
		Str("book_id", bookID).
		Int("returned", len(results)).
		Int64("latency_ms", time.Since(start).Milliseconds()).
		Msg("similar books computed")

	return results, nil
}

// fetchPair fetches both readers' signals concurrently. The combination
// steps have no ordering dependency between the two fetches.
func (e *Engine) fetchPair(ctx context.Context, firstID, secondID string) (first, second readerSignals, err error) {
	ids := [2]string{firstID, secondID}
	var results [2]readerSignals
	var errs [2]error

	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = e.fetchSignals(ctx, ids[idx])
		}(i)
	}
	wg.Wait()

	for i, fetchErr := range errs {
		if fetchErr != nil {
			return readerSignals{}, readerSignals{}, fmt.Errorf("fetch reader %s: %w", ids[i], fetchErr)
		}
	}
	return results[0], results[1], nil
}

// fetchSignals loads one reader's catalog and tag weights.
func (e *Engine) fetchSignals(ctx context.Context, readerID string) (readerSignals, error) {
	entries, err := e.store.GetCatalog(ctx, readerID)
	if err != nil {
		return readerSignals{}, fmt.Errorf("get catalog: %w", err)
	}

	signals := readerSignals{
		entries: entries,
		books:   BookIDSet(entries),
	}

	if weights, ok := e.checkWeightCache(readerID); ok {
		signals.weights = weights
		signals.cached = true
		return signals, nil
	}

	bookIDs := make([]string, 0, len(entries))
	for _, entry := range entries {
		bookIDs = append(bookIDs, entry.BookID)
	}
	relations, err := e.store.GetTagRelations(ctx, bookIDs)
	if err != nil {
		return readerSignals{}, fmt.Errorf("get tag relations: %w", err)
	}

	signals.weights = BuildTagWeights(entries, relations, e.config.StatusWeights)
	e.storeWeightCache(readerID, signals.weights)
	return signals, nil
}

// selectCandidates returns the source catalog's book IDs the viewer does not
// already own, preserving source catalog order. The viewer's fetched catalog
// covers recognized statuses only, so the store's membership check runs as
// well to catch entries outside that set.
func (e *Engine) selectCandidates(ctx context.Context, viewerID string, viewer, source readerSignals) ([]string, error) {
	prelim := make([]string, 0, len(source.entries))
	for _, entry := range source.entries {
		if _, owned := viewer.books[entry.BookID]; owned {
			continue
		}
		prelim = append(prelim, entry.BookID)
	}
	if len(prelim) == 0 {
		return prelim, nil
	}

	owned, err := e.store.FilterOwned(ctx, viewerID, prelim)
	if err != nil {
		return nil, err
	}

	candidates := prelim[:0]
	for _, id := range prelim {
		if _, ok := owned[id]; ok {
			continue
		}
		candidates = append(candidates, id)
	}
	return candidates, nil
}

// decorate fills in display metadata for ranked recommendations in place.
func (e *Engine) decorate(ctx context.Context, recs []BookRecommendation) error {
	if len(recs) == 0 {
		return nil
	}

	ids := make([]string, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.BookID)
	}
	books, err := e.store.GetBooks(ctx, ids)
	if err != nil {
		return err
	}

	byID := make(map[string]Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}
	for i := range recs {
		if b, ok := byID[recs[i].BookID]; ok {
			recs[i].Title = b.Title
			recs[i].Author = b.Author
			recs[i].CoverRef = b.CoverRef
		}
	}
	return nil
}

// sourceRatings extracts the source reader's ratings keyed by book ID.
func sourceRatings(entries []CatalogEntry) map[string]float64 {
	ratings := make(map[string]float64, len(entries))
	for _, entry := range entries {
		if entry.Rated {
			ratings[entry.BookID] = entry.Rating
		}
	}
	return ratings
}

// checkWeightCache returns a memoized weight map if present and fresh.
func (e *Engine) checkWeightCache(readerID string) (TagWeights, bool) {
	if !e.config.Cache.Enabled {
		return nil, false
	}

	e.cacheMu.RLock()
	entry, ok := e.weightCache[readerID]
	e.cacheMu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		e.cacheMisses.Add(1)
		return nil, false
	}

	e.cacheHits.Add(1)
	// Copy so callers never share map storage with the cache.
	weights := make(TagWeights, len(entry.weights))
	for k, v := range entry.weights {
		weights[k] = v
	}
	return weights, true
}

// storeWeightCache memoizes a reader's weight map.
func (e *Engine) storeWeightCache(readerID string, weights TagWeights) {
	if !e.config.Cache.Enabled {
		return
	}

	stored := make(TagWeights, len(weights))
	for k, v := range weights {
		stored[k] = v
	}

	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	if len(e.weightCache) >= e.config.Cache.MaxEntries {
		e.evictExpiredLocked()
	}
	e.weightCache[readerID] = weightCacheEntry{
		weights:   stored,
		expiresAt: time.Now().Add(e.config.Cache.TTL),
	}
}

// evictExpiredLocked removes expired cache entries.
// Must be called with cacheMu held.
func (e *Engine) evictExpiredLocked() {
	now := time.Now()
	for key, entry := range e.weightCache {
		if now.After(entry.expiresAt) {
			delete(e.weightCache, key)
		}
	}
}

// InvalidateReader drops the memoized weights for one reader. Callers that
// process catalog writes should invoke this so the next request reflects the
// new snapshot immediately.
func (e *Engine) InvalidateReader(readerID string) {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()
	delete(e.weightCache, readerID)
}

// ClearCache removes all memoized weight maps.
func (e *Engine) ClearCache() {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()
	e.weightCache = make(map[string]weightCacheEntry)
}

// GetMetrics returns a snapshot of the engine's request counters.
func (e *Engine) GetMetrics() Metrics {
	return Metrics{
		RequestCount: e.requestCount.Load(),
		CacheHits:    e.cacheHits.Load(),
		CacheMisses:  e.cacheMisses.Load(),
		ErrorCount:   e.errorCount.Load(),
	}
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}

// Readergraph - Reading Affinity and Book Recommendation Engine
// Copyright 2026 Readergraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readergraph/readergraph

package affinity

import (
	"context"
	"time"
)

// ReadStatus classifies how far a reader has engaged with a book.
type ReadStatus string

const (
	// StatusToRead indicates the book is queued but unread.
	StatusToRead ReadStatus = "to_read"
	// StatusReading indicates the book is in progress.
	StatusReading ReadStatus = "reading"
	// StatusFinished indicates the book was read to completion.
	StatusFinished ReadStatus = "finished"
)

// String returns the wire name of the status.
func (s ReadStatus) String() string {
	return string(s)
}

// Known reports whether the status is one of the recognized values.
func (s ReadStatus) Known() bool {
	switch s {
	case StatusToRead, StatusReading, StatusFinished:
		return true
	default:
		return false
	}
}

// StatusWeights maps a read status to the weight its catalog entries
// contribute per tag. The table is injectable configuration rather than a
// package-level literal so it can be tuned and tested independently.
type StatusWeights map[ReadStatus]int

// Weight returns the weight for a status. Unrecognized or empty statuses
// fall back to 1 so a partially-shaped entry still counts as minimal signal.
func (w StatusWeights) Weight(s ReadStatus) int {
	if v, ok := w[s]; ok {
		return v
	}
	return 1
}

// DefaultStatusWeights returns the standard engagement weighting:
// finished books carry three times the signal of queued ones.
func DefaultStatusWeights() StatusWeights {
	return StatusWeights{
		StatusFinished: 3,
		StatusReading:  2,
		StatusToRead:   1,
	}
}

// CatalogEntry is one (reader, book) row of a reader's catalog.
// A reader has at most one entry per book.
type CatalogEntry struct {
	// BookID identifies the book.
	BookID string `json:"book_id"`

	// Status is the reading status for this entry.
	Status ReadStatus `json:"status"`

	// Rating is the reader's rating for the book, valid only when Rated.
	Rating float64 `json:"rating,omitempty"`

	// Rated indicates whether the reader rated this book at all.
	Rated bool `json:"rated"`
}

// Book is display metadata for a single book. It is never used in scoring
// except for the author field of the similar-books fallback.
type Book struct {
	// ID identifies the book.
	ID string `json:"id"`

	// Title is the display title.
	Title string `json:"title"`

	// Author is the primary author name.
	Author string `json:"author,omitempty"`

	// CoverRef references the cover image, if any.
	CoverRef string `json:"cover_ref,omitempty"`
}

// TagRelation is one validated (book, tag) classification row. Scoring code
// operates exclusively on this strict shape; see ParseTagRows for how loose
// upstream rows are converted.
type TagRelation struct {
	// BookID identifies the book the tag is attached to.
	BookID string `json:"book_id"`

	// TagName is the tag's display name. Tag identity is by name.
	TagName string `json:"tag_name"`
}

// TagWeights is a reader-scoped map from tag name to accumulated weight.
// A tag absent from the map has implicit weight zero.
type TagWeights map[string]int

// CompatibilityScore describes shared interest between two readers.
type CompatibilityScore struct {
	// Score is the 0-100 compatibility score.
	Score int `json:"score"`

	// Reason is a human-readable explanation of the score.
	Reason string `json:"reason"`

	// SharedTagCount is the number of tags present in both weight maps.
	SharedTagCount int `json:"shared_tag_count"`

	// SharedBookCount is the number of books present in both catalogs.
	SharedBookCount int `json:"shared_book_count"`
}

// CandidateScore is the raw, pre-normalization affinity of one candidate
// book against a reader's weight map.
type CandidateScore struct {
	// BookID identifies the candidate book.
	BookID string `json:"book_id"`

	// Raw is the sum of the reader's weights for the tags the book carries.
	Raw int `json:"raw"`

	// MatchingTags lists the overlapping tag names, deduplicated, in the
	// order they were first seen.
	MatchingTags []string `json:"matching_tags"`
}

// BookRecommendation is one ranked entry of a recommendation list.
type BookRecommendation struct {
	// BookID identifies the recommended book.
	BookID string `json:"book_id"`

	// Title is the book's display title, when metadata was resolvable.
	Title string `json:"title,omitempty"`

	// Author is the book's author, for display only.
	Author string `json:"author,omitempty"`

	// CoverRef references the cover image, if any.
	CoverRef string `json:"cover_ref,omitempty"`

	// Score is the final 0-100 combined recommendation score.
	Score int `json:"score"`

	// MatchingTags lists the viewer's tags the book matched.
	MatchingTags []string `json:"matching_tags"`

	// Reason provides an interpretable explanation for the recommendation.
	Reason string `json:"reason"`

	// ViewerHasInReadlist reports whether the viewer already has the book.
	// Always false for returned recommendations, since candidates are
	// pre-filtered to books the viewer does not own; the field stays
	// meaningful when the type is reused for arbitrary books.
	ViewerHasInReadlist bool `json:"viewer_has_in_readlist"`
}

// SimilarBook is one entry of a similar-books ranking.
type SimilarBook struct {
	// BookID identifies the similar book.
	BookID string `json:"book_id"`

	// Title is the book's display title.
	Title string `json:"title,omitempty"`

	// Author is the book's author.
	Author string `json:"author,omitempty"`

	// CoverRef references the cover image, if any.
	CoverRef string `json:"cover_ref,omitempty"`

	// MatchingTags lists the tags shared with the reference book.
	// Empty for entries selected by the same-author fallback.
	MatchingTags []string `json:"matching_tags"`
}

// RecommendationResponse is the full result of a recommendation request.
type RecommendationResponse struct {
	// Items is the ordered recommendation list, best first.
	Items []BookRecommendation `json:"items"`

	// Compatibility is the viewer/source compatibility used in the blend.
	Compatibility CompatibilityScore `json:"compatibility"`

	// TotalCandidates is the number of candidate books considered.
	TotalCandidates int `json:"total_candidates"`

	// Metadata contains timing and diagnostic information.
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains timing and diagnostic information.
type ResponseMetadata struct {
	// RequestID is the unique request identifier.
	RequestID string `json:"request_id"`

	// ViewerID is the reader the computation was performed for.
	ViewerID string `json:"viewer_id,omitempty"`

	// SourceID is the reader whose catalog supplied the candidates.
	SourceID string `json:"source_id,omitempty"`

	// LatencyMS is the total computation latency in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// WeightsCached reports whether any tag-weight map came from the
	// opt-in memoization cache rather than a fresh aggregation.
	WeightsCached bool `json:"weights_cached"`

	// Timestamp is when the response was generated.
	Timestamp time.Time `json:"timestamp"`
}

// Store defines the read-only data collaborators the engine depends on.
// Implementations live in the storage layer; the engine performs no I/O of
// its own beyond these calls and treats their failures as the caller's
// concern to surface.
type Store interface {
	// GetCatalog returns every catalog entry for a reader, restricted to
	// recognized statuses. A reader with no entries yields an empty slice.
	GetCatalog(ctx context.Context, readerID string) ([]CatalogEntry, error)

	// GetTagRelations returns all (book, tag) rows for the given books.
	// Books without tags simply contribute no rows.
	GetTagRelations(ctx context.Context, bookIDs []string) ([]TagRelation, error)

	// GetBooks returns display metadata for the given books. Unknown IDs
	// are omitted from the result.
	GetBooks(ctx context.Context, bookIDs []string) ([]Book, error)

	// GetAllBooks returns the full book catalog in stable catalog order,
	// used by the similar-books matcher.
	GetAllBooks(ctx context.Context) ([]Book, error)

	// FilterOwned returns the subset of bookIDs already present in the
	// reader's catalog.
	FilterOwned(ctx context.Context, readerID string, bookIDs []string) (map[string]struct{}, error)
}

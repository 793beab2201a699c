// Readergraph - Reading Affinity and Book Recommendation Engine
// Copyright 2026 Readergraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readergraph/readergraph

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/readergraph/readergraph/internal/affinity"
)

// GetCatalog returns every catalog entry for a reader, restricted to
// recognized statuses. A reader with no entries yields an empty slice.
func (s *Store) GetCatalog(ctx context.Context, readerID string) ([]affinity.CatalogEntry, error) {
	query := `
		SELECT book_id, status, rating
		FROM catalog_entries
		WHERE reader_id = ?
		  AND status IN ('to_read', 'reading', 'finished')
		ORDER BY book_id
	`

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx, query, readerID)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	entries := []affinity.CatalogEntry{}
	for rows.Next() {
		var (
			entry  affinity.CatalogEntry
			status string
			rating sql.NullFloat64
		)
		if err := rows.Scan(&entry.BookID, &status, &rating); err != nil {
			return nil, fmt.Errorf("scan catalog entry: %w", err)
		}
		entry.Status = affinity.ReadStatus(status)
		if rating.Valid {
			entry.Rating = rating.Float64
			entry.Rated = true
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog: %w", err)
	}
	return entries, nil
}

// GetTagRelations returns validated (book, tag) rows for the given books.
// Stored payloads are loose JSON; malformed payloads contribute no rows.
func (s *Store) GetTagRelations(ctx context.Context, bookIDs []string) ([]affinity.TagRelation, error) {
	if len(bookIDs) == 0 {
		return []affinity.TagRelation{}, nil
	}

	query := fmt.Sprintf(`
		SELECT book_id, CAST(tags AS VARCHAR)
		FROM book_tags
		WHERE book_id IN (%s)
	`, placeholders(len(bookIDs)))

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx, query, toArgs(bookIDs)...)
	if err != nil {
		return nil, fmt.Errorf("query tag relations: %w", err)
	}
	defer rows.Close()

	var raw []affinity.TagRow
	for rows.Next() {
		var (
			bookID  string
			payload sql.NullString
		)
		if err := rows.Scan(&bookID, &payload); err != nil {
			return nil, fmt.Errorf("scan tag row: %w", err)
		}
		if !payload.Valid {
			continue
		}
		raw = append(raw, affinity.TagRow{BookID: bookID, Tags: json.RawMessage(payload.String)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tag rows: %w", err)
	}

	return affinity.ParseTagRows(raw), nil
}

// GetBooks returns display metadata for the given books. Unknown IDs are
// omitted from the result.
func (s *Store) GetBooks(ctx context.Context, bookIDs []string) ([]affinity.Book, error) {
	if len(bookIDs) == 0 {
		return []affinity.Book{}, nil
	}

	query := fmt.Sprintf(`
		SELECT id, title, COALESCE(author, ''), COALESCE(cover_ref, '')
		FROM books
		WHERE id IN (%s)
		ORDER BY seq
	`, placeholders(len(bookIDs)))

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx, query, toArgs(bookIDs)...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	return scanBooks(rows)
}

// GetAllBooks returns the full book catalog in insertion order.
func (s *Store) GetAllBooks(ctx context.Context) ([]affinity.Book, error) {
	query := `
		SELECT id, title, COALESCE(author, ''), COALESCE(cover_ref, '')
		FROM books
		ORDER BY seq
	`

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	return scanBooks(rows)
}

// FilterOwned returns the subset of bookIDs present in the reader's catalog,
// regardless of entry status.
func (s *Store) FilterOwned(ctx context.Context, readerID string, bookIDs []string) (map[string]struct{}, error) {
	owned := make(map[string]struct{})
	if len(bookIDs) == 0 {
		return owned, nil
	}

	query := fmt.Sprintf(`
		SELECT book_id
		FROM catalog_entries
		WHERE reader_id = ?
		  AND book_id IN (%s)
	`, placeholders(len(bookIDs)))

	args := make([]any, 0, len(bookIDs)+1)
	args = append(args, readerID)
	args = append(args, toArgs(bookIDs)...)

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query owned books: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan owned book: %w", err)
		}
		owned[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate owned books: %w", err)
	}
	return owned, nil
}

func scanBooks(rows *sql.Rows) ([]affinity.Book, error) {
	books := []affinity.Book{}
	for rows.Next() {
		var b affinity.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.CoverRef); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}

// placeholders renders n comma-separated SQL placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

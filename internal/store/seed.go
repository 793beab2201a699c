// Readergraph - Reading Affinity and Book Recommendation Engine
// Copyright 2026 Readergraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readergraph/readergraph

package store

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/readergraph/readergraph/internal/affinity"
)

// Write helpers for catalog ingestion. The scoring engine itself never
// writes; these exist for importers, fixtures and tests.

// UpsertReader inserts or updates a reader.
func (s *Store) UpsertReader(ctx context.Context, id, name string) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO readers (id, name) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
	`, id, name)
	if err != nil {
		return fmt.Errorf("upsert reader: %w", err)
	}
	return nil
}

// UpsertBook inserts or updates a book's display metadata.
func (s *Store) UpsertBook(ctx context.Context, b affinity.Book) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO books (id, title, author, cover_ref) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			author = EXCLUDED.author,
			cover_ref = EXCLUDED.cover_ref
	`, b.ID, b.Title, b.Author, b.CoverRef)
	if err != nil {
		return fmt.Errorf("upsert book: %w", err)
	}
	return nil
}

// SetBookTags stores a book's raw tags payload as delivered by the upstream
// import. The payload is validated lazily at read time.
func (s *Store) SetBookTags(ctx context.Context, bookID string, tags json.RawMessage) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO book_tags (book_id, tags) VALUES (?, ?)
		ON CONFLICT (book_id) DO UPDATE SET tags = EXCLUDED.tags
	`, bookID, string(tags))
	if err != nil {
		return fmt.Errorf("set book tags: %w", err)
	}
	return nil
}

// SetBookTagNames stores a book's tags from plain names, the common case for
// well-formed imports.
func (s *Store) SetBookTagNames(ctx context.Context, bookID string, names []string) error {
	payload, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("marshal tag names: %w", err)
	}
	return s.SetBookTags(ctx, bookID, payload)
}

// UpsertCatalogEntry inserts or updates one (reader, book) catalog row.
// A nil rating clears any stored rating.
func (s *Store) UpsertCatalogEntry(ctx context.Context, readerID string, entry affinity.CatalogEntry) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	var rating any
	if entry.Rated {
		rating = entry.Rating
	}

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO catalog_entries (reader_id, book_id, status, rating) VALUES (?, ?, ?, ?)
		ON CONFLICT (reader_id, book_id) DO UPDATE SET
			status = EXCLUDED.status,
			rating = EXCLUDED.rating
	`, readerID, entry.BookID, entry.Status.String(), rating)
	if err != nil {
		return fmt.Errorf("upsert catalog entry: %w", err)
	}
	return nil
}

// DeleteCatalogEntry removes one (reader, book) catalog row.
func (s *Store) DeleteCatalogEntry(ctx context.Context, readerID, bookID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	_, err := s.conn.ExecContext(ctx, `
		DELETE FROM catalog_entries WHERE reader_id = ? AND book_id = ?
	`, readerID, bookID)
	if err != nil {
		return fmt.Errorf("delete catalog entry: %w", err)
	}
	return nil
}

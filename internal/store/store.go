// Readergraph - Reading Affinity and Book Recommendation Engine
// Copyright 2026 Readergraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readergraph/readergraph

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/readergraph/readergraph/internal/config"
	"github.com/readergraph/readergraph/internal/logging"
)

// defaultQueryTimeout bounds read queries when the config leaves it unset.
const defaultQueryTimeout = 10 * time.Second

// Store wraps the DuckDB connection and provides data access methods.
// It implements affinity.Store.
type Store struct {
	conn         *sql.DB
	cfg          *config.DatabaseConfig
	queryTimeout time.Duration
}

// New creates a new database connection and initializes the schema.
func New(cfg *config.DatabaseConfig) (*Store, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// Ensure parent directory exists for database file.
	// Use 0750 permissions (owner: rwx, group: rx, other: none) per gosec G301
	dbDir := filepath.Dir(cfg.Path)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
		}
	}

	// Disable auto-install/auto-load to prevent hangs in restricted network
	// environments; nothing here needs extensions.
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}

	s := &Store{
		conn:         conn,
		cfg:          cfg,
		queryTimeout: timeout,
	}

	if err := s.configureConnectionPool(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to configure connection pool: %w", err)
	}

	if err := s.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Msg("Database opened")
	return s, nil
}

// NewMemory creates an in-memory store, primarily for tests.
func NewMemory() (*Store, error) {
	conn, err := sql.Open("duckdb", ":memory:?autoinstall_known_extensions=false&autoload_known_extensions=false")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}

	s := &Store{
		conn:         conn,
		queryTimeout: defaultQueryTimeout,
	}
	if err := s.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return s, nil
}

// configureConnectionPool applies sane pool settings for an embedded DB.
func (s *Store) configureConnectionPool() error {
	s.conn.SetMaxOpenConns(runtime.NumCPU() * 2)
	s.conn.SetMaxIdleConns(runtime.NumCPU())
	s.conn.SetConnMaxLifetime(time.Hour)
	return nil
}

// initialize creates the schema if it does not exist.
func (s *Store) initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	statements := []string{
		`CREATE SEQUENCE IF NOT EXISTS books_seq`,
		`CREATE TABLE IF NOT EXISTS readers (
			id   VARCHAR PRIMARY KEY,
			name VARCHAR NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS books (
			seq       BIGINT DEFAULT nextval('books_seq'),
			id        VARCHAR PRIMARY KEY,
			title     VARCHAR NOT NULL,
			author    VARCHAR,
			cover_ref VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS book_tags (
			book_id VARCHAR PRIMARY KEY,
			tags    JSON
		)`,
		`CREATE TABLE IF NOT EXISTS catalog_entries (
			reader_id VARCHAR NOT NULL,
			book_id   VARCHAR NOT NULL,
			status    VARCHAR NOT NULL,
			rating    DOUBLE,
			PRIMARY KEY (reader_id, book_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_catalog_reader ON catalog_entries (reader_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// Ping verifies the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.conn.PingContext(ctx)
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func closeQuietly(conn *sql.DB) {
	if err := conn.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close database connection")
	}
}

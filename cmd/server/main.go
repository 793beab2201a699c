// Readergraph - Reading Affinity and Book Recommendation Engine
// Copyright 2026 Readergraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readergraph/readergraph

// Package main is the entry point for the Readergraph server.
//
// Readergraph scores reading affinity between readers and produces
// book recommendations from their catalogs. The server exposes a small
// JSON API plus Prometheus metrics.
//
// Startup order:
//
//  1. Configuration: layered Koanf v2 sources (defaults, config file,
//     environment variables; highest priority wins)
//  2. Logging: zerolog, JSON or console format
//  3. Storage: embedded DuckDB with schema bootstrap
//  4. Scoring engine
//  5. HTTP server under a suture supervisor tree
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting connections, waits for in-flight requests up to the configured
// shutdown timeout, then closes the database.
//
// Example:
//
//	export HTTP_PORT=8465
//	export DUCKDB_PATH=/data/readergraph.duckdb
//	export LOG_LEVEL=info
//	./readergraph
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/readergraph/readergraph/internal/affinity"
	"github.com/readergraph/readergraph/internal/api"
	"github.com/readergraph/readergraph/internal/config"
	"github.com/readergraph/readergraph/internal/logging"
	"github.com/readergraph/readergraph/internal/store"
	"github.com/readergraph/readergraph/internal/supervisor"
	"github.com/readergraph/readergraph/internal/supervisor/services"
)

// statsReportInterval is how often the maintenance layer logs engine
// counters.
const statsReportInterval = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("listen", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)).
		Msg("Starting Readergraph")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
	logging.Info().Msg("Shutdown complete")
}

func run(cfg *config.Config) error {
	db, err := store.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close database")
		}
	}()

	engine, err := affinity.NewEngine(&cfg.Affinity, db, logging.Logger())
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	handler := api.NewHandler(engine, db)
	router := api.NewRouter(cfg, handler)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree, err := supervisor.NewTree(logging.NewSlogLogger(), treeCfg)
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	tree.AddMaintenanceService(services.NewStatsReporterService(engine, statsReportInterval))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("HTTP server starting")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}

	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop in time")
		}
	}
	return nil
}

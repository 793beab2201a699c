// Readergraph - Reading Affinity and Book Recommendation Engine
// Copyright 2026 Readergraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readergraph/readergraph

package services

import (
	"context"
	"time"

	"github.com/readergraph/readergraph/internal/affinity"
	"github.com/readergraph/readergraph/internal/logging"
)

// MetricsSource provides a snapshot of engine counters.
// Satisfied by *affinity.Engine.
type MetricsSource interface {
	GetMetrics() affinity.Metrics
}

// StatsReporterService periodically logs engine counters so operators can
// follow request volume and cache behavior from the log stream without
// scraping Prometheus.
type StatsReporterService struct {
	source   MetricsSource
	interval time.Duration
	name     string
}

// NewStatsReporterService creates a reporter with the given interval.
// Intervals below one second fall back to one minute.
func NewStatsReporterService(source MetricsSource, interval time.Duration) *StatsReporterService {
	if interval < time.Second {
		interval = time.Minute
	}
	return &StatsReporterService{
		source:   source,
		interval: interval,
		name:     "stats-reporter",
	}
}

// Serve implements suture.Service.
func (s *StatsReporterService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m := s.source.GetMetrics()
			logging.Info().
				Int64("requests", m.RequestCount).
				Int64("cache_hits", m.CacheHits).
				Int64("cache_misses", m.CacheMisses).
				Int64("errors", m.ErrorCount).
				Msg("engine stats")
		}
	}
}

// String identifies the service in supervisor log messages.
func (s *StatsReporterService) String() string {
	return s.name
}

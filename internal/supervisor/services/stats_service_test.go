// Readergraph - Reading Affinity and Book Recommendation Engine
// Copyright 2026 Readergraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readergraph/readergraph

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/readergraph/readergraph/internal/affinity"
)

type fakeMetricsSource struct {
	calls atomic.Int64
}

func (f *fakeMetricsSource) GetMetrics() affinity.Metrics {
	f.calls.Add(1)
	return affinity.Metrics{RequestCount: 1}
}

func TestStatsReporterService_ReportsOnTick(t *testing.T) {
	source := &fakeMetricsSource{}
	svc := NewStatsReporterService(source, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := svc.Serve(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve = %v, want context.DeadlineExceeded", err)
	}
	if source.calls.Load() == 0 {
		t.Error("expected at least one metrics snapshot")
	}
}

func TestStatsReporterService_IntervalFloor(t *testing.T) {
	svc := NewStatsReporterService(&fakeMetricsSource{}, 0)
	if svc.interval != time.Minute {
		t.Errorf("interval = %v, want 1m", svc.interval)
	}
}

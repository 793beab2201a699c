// Readergraph - Reading Affinity and Book Recommendation Engine
// Copyright 2026 Readergraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readergraph/readergraph

// Package services contains suture.Service adapters for the components the
// supervisor tree runs: the HTTP server and the periodic stats reporter.
package services

// Readergraph - Reading Affinity and Book Recommendation Engine
// Copyright 2026 Readergraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readergraph/readergraph

// Package supervisor provides suture-based process supervision. The tree
// isolates the HTTP server from background maintenance work so a crash in
// one layer restarts only that layer.
package supervisor

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package datasvc is the generic client for the hosted relational store
// that holds the plant tables.
//
// A Backend lists rows ordered by a column, optionally filtered and
// limited, and inserts, updates or deletes rows by filter. Three
// implementations exist:
//
//   - REST: a PostgREST-compatible HTTP endpoint (the hosted service)
//   - Postgres: a direct pgx connection to the same database
//   - Memory: an in-process store for tests and demo mode
//
// Instrumented wraps any Backend with Prometheus metrics.
package datasvc

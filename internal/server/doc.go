// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server exposes plant data over HTTP for scripts and spreadsheets.
//
// # Endpoints
//
//   - GET /healthz                 - Backend reachability
//   - GET /metrics                 - Prometheus metrics
//   - GET /api/scoreboard          - Overview summary as JSON
//   - GET /export/{dataset}.csv    - One dataset as CSV
//   - GET /export/all.xlsx         - Every dataset as an Excel workbook
//
// Datasets are coal_yards, chemicals and power_consumption.
//
// # Usage
//
//	srv := server.New(st, server.WithLogger(logger), server.WithRegistry(reg))
//	if err := srv.Start(ctx, "127.0.0.1:8787"); err != nil {
//		return err
//	}
package server

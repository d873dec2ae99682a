// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package domain holds the plant records and the rules the dashboard
// enforces on them: the user approval workflow, bulletin validation,
// scoreboard summaries, role-based tool visibility and the PM schedule.
//
// Nothing here performs I/O; repositories in package store load and save
// these types.
package domain

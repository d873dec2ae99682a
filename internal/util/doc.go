// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the nums packages.
//
// # Key Functions
//
//   - AtomicWriteFile: crash-safe file writing with fsync (config, exports)
//   - Truncate, PadRight: display-width aware cell formatting for tables
//   - Initials: avatar letters for user names
package util

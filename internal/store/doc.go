// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides typed access to the plant tables on top of a
// datasvc.Backend.
//
// Reads go through a TTL cache keyed per query and, when a snapshot store
// is attached, every successful read is persisted. If the backend later
// fails, the last snapshot is returned together with a *StaleError so
// callers can render the data and flag it as out of date.
//
// Every mutation invalidates the cached keys of the table it touched.
package store

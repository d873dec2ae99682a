// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the NUMS
// dashboard.
//
//   - ToastManager: auto-dismissing titled toasts, bottom-right
//   - Table: fixed-column tables with width-aware truncation
//   - Markdown: glamour rendering for assistant replies
//   - PlaceOverlay: composites a floating box over rendered content
package components

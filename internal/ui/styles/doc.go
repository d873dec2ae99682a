// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the NUMS dashboard.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection; the theme can also be forced with the ui.theme setting.

# Color System (colors.go)

  - Brand - NUMS blue, the header gradient and primary buttons
  - Teal - Assistant panel and avatar
  - Emerald - Available yards, Normal stock, success toasts
  - Amber - Low stock, warnings
  - Rose - Critical stock, depleted yards, errors

# Theme (theme.go)

Theme holds every lipgloss.Style used by the dashboard and the assistant
panel. NewTheme detects the color profile with termenv.

# Gauges (gauges.go)

RenderProgressBar draws the salt and yard gauges; TypingDots animates the
pending-reply indicator.
*/
package styles

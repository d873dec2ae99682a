// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// =============================================================================
// OVERLAY
// =============================================================================

// PlaceOverlay draws fg on top of bg with its top-left corner at column x,
// row y. Styled text on both sides of the overlay is kept intact. Lines of
// fg that fall below bg are dropped.
func PlaceOverlay(x, y int, fg, bg string) string {
	if fg == "" {
		return bg
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}

	bgLines := strings.Split(bg, "\n")
	fgLines := strings.Split(fg, "\n")

	for i, fgLine := range fgLines {
		row := y + i
		if row >= len(bgLines) {
			break
		}
		bgLine := bgLines[row]
		bgWidth := ansi.StringWidth(bgLine)

		left := ansi.Truncate(bgLine, x, "")
		if pad := x - ansi.StringWidth(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}

		var right string
		if end := x + ansi.StringWidth(fgLine); end < bgWidth {
			right = ansi.TruncateLeft(bgLine, end, "")
		}

		bgLines[row] = left + fgLine + right
	}
	return strings.Join(bgLines, "\n")
}

// PlaceBottomRight overlays fg in the bottom-right corner of bg, inset by
// margin cells, on a canvas of the given width.
func PlaceBottomRight(fg, bg string, width, margin int) string {
	if fg == "" {
		return bg
	}
	fgWidth := 0
	fgLines := strings.Split(fg, "\n")
	for _, l := range fgLines {
		if w := ansi.StringWidth(l); w > fgWidth {
			fgWidth = w
		}
	}
	bgHeight := strings.Count(bg, "\n") + 1
	return PlaceOverlay(width-fgWidth-margin, bgHeight-len(fgLines)-margin, fg, bg)
}

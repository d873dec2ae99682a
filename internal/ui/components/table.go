// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/nums-tui/internal/util"
)

// =============================================================================
// TABLE
// =============================================================================

// Column describes one table column. A zero Width makes the column share
// whatever space the fixed columns leave.
type Column struct {
	Title string
	Width int
}

// TableStyles holds the styles a table renders with.
type TableStyles struct {
	Header   lipgloss.Style
	Cell     lipgloss.Style
	Selected lipgloss.Style
}

// Table is a fixed-column, width-aware table. Selected is -1 when no row
// is highlighted.
type Table struct {
	Columns  []Column
	Rows     [][]string
	Selected int
	Styles   TableStyles

	// Cell overrides the style of a single cell when set.
	Cell func(row, col int, value string) (lipgloss.Style, bool)
}

// NewTable creates a table with no selection.
func NewTable(columns []Column, styles TableStyles) Table {
	return Table{Columns: columns, Selected: -1, Styles: styles}
}

// widths resolves flexible columns against the total width.
func (t Table) widths(total int) []int {
	out := make([]int, len(t.Columns))
	fixed, flex := 0, 0
	for i, c := range t.Columns {
		out[i] = c.Width
		if c.Width > 0 {
			fixed += c.Width
		} else {
			flex++
		}
	}
	gaps := len(t.Columns) - 1
	if gaps < 0 {
		gaps = 0
	}
	if flex > 0 {
		share := (total - fixed - gaps) / flex
		if share < 4 {
			share = 4
		}
		for i := range out {
			if out[i] == 0 {
				out[i] = share
			}
		}
	}
	return out
}

func (t Table) line(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		var v string
		if i < len(cells) {
			v = cells[i]
		}
		parts[i] = util.PadRight(v, w)
	}
	return strings.Join(parts, " ")
}

// Render draws the header and rows into at most width columns.
func (t Table) Render(width int) string {
	if len(t.Columns) == 0 {
		return ""
	}
	widths := t.widths(width)

	titles := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		titles[i] = c.Title
	}

	lines := []string{t.Styles.Header.Render(t.line(titles, widths))}
	for r, row := range t.Rows {
		if r == t.Selected {
			lines = append(lines, t.Styles.Selected.Render(t.line(row, widths)))
			continue
		}
		if t.Cell == nil {
			lines = append(lines, t.Styles.Cell.Render(t.line(row, widths)))
			continue
		}
		cells := make([]string, len(widths))
		for c, w := range widths {
			var v string
			if c < len(row) {
				v = row[c]
			}
			style := t.Styles.Cell
			if s, ok := t.Cell(r, c, v); ok {
				style = s
			}
			cells[c] = style.Render(util.PadRight(v, w))
		}
		lines = append(lines, strings.Join(cells, t.Styles.Cell.Render(" ")))
	}
	return strings.Join(lines, "\n")
}

// MoveSelection shifts the highlighted row by delta, clamped to the rows.
func (t *Table) MoveSelection(delta int) {
	if len(t.Rows) == 0 {
		t.Selected = -1
		return
	}
	t.Selected += delta
	if t.Selected < 0 {
		t.Selected = 0
	}
	if t.Selected >= len(t.Rows) {
		t.Selected = len(t.Rows) - 1
	}
}

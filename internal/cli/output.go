// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/x/ansi"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// OUTPUT FORMATS
// =============================================================================

// OutputFormat selects how list and show commands print records.
type OutputFormat string

const (
	OutputTable OutputFormat = "table"
	OutputJSON  OutputFormat = "json"
	OutputYAML  OutputFormat = "yaml"
)

// ParseOutputFormat validates an -o value. Empty means table.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case "", OutputTable:
		return OutputTable, nil
	case OutputJSON:
		return OutputJSON, nil
	case OutputYAML, "yml":
		return OutputYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q, must be table, json or yaml", s)
}

// printer writes records in the selected format. table is called only
// for OutputTable.
type printer struct {
	w      io.Writer
	format OutputFormat
}

// Print writes v as JSON or YAML, or calls table for the table format.
func (p printer) Print(v any, table func(t *tableWriter)) error {
	switch p.format {
	case OutputJSON:
		return writeJSON(p.w, v)
	case OutputYAML:
		return writeYAML(p.w, v)
	default:
		t := &tableWriter{}
		table(t)
		return t.Flush(p.w)
	}
}

// writeJSON pretty-prints v, highlighting it when w is a color terminal.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	if isTerminal(w) && ColorsEnabled() {
		if err := quick.Highlight(w, string(data)+"\n", "json", "terminal256", "monokai"); err == nil {
			return nil
		}
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// writeYAML encodes v through its JSON form so field names match the
// JSON output.
func writeYAML(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}

// =============================================================================
// TABLES
// =============================================================================

// tableWriter aligns columns by display width.
type tableWriter struct {
	headers []string
	rows    [][]string
	empty   string
}

// Header sets the column headings.
func (t *tableWriter) Header(cols ...string) {
	t.headers = cols
}

// Row appends a row. Cells may carry ANSI styling.
func (t *tableWriter) Row(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Empty sets the line printed when there are no rows.
func (t *tableWriter) Empty(msg string) {
	t.empty = msg
}

// Flush writes the table to w.
func (t *tableWriter) Flush(w io.Writer) error {
	if len(t.rows) == 0 {
		if t.empty == "" {
			return nil
		}
		_, err := fmt.Fprintln(w, DimStyle.Render(t.empty))
		return err
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = ansi.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], ansi.StringWidth(cell))
			}
		}
	}

	var b strings.Builder
	line := func(cells []string, style func(string) string) {
		for i, cell := range cells {
			if i >= len(widths) {
				break
			}
			if i > 0 {
				b.WriteString("  ")
			}
			if i == len(cells)-1 {
				b.WriteString(style(cell))
				continue
			}
			b.WriteString(style(cell))
			b.WriteString(strings.Repeat(" ", widths[i]-ansi.StringWidth(cell)))
		}
		b.WriteString("\n")
	}
	line(t.headers, func(s string) string { return HeaderStyle.Render(s) })
	for _, row := range t.rows {
		line(row, func(s string) string { return s })
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// =============================================================================
// CSV EXPORTER
// =============================================================================

// CSVExporter writes a single dataset as comma-separated values.
type CSVExporter struct{}

// NewCSVExporter creates a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Export renders exactly one dataset.
func (e *CSVExporter) Export(datasets ...Dataset) ([]byte, error) {
	if len(datasets) != 1 {
		return nil, fmt.Errorf("csv export takes one dataset, got %d", len(datasets))
	}
	d := datasets[0]

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(d.Header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(d.Rows); err != nil {
		return nil, fmt.Errorf("write %s: %w", d.Name, err)
	}
	return buf.Bytes(), nil
}

// FileExtension returns the file extension for CSV.
func (e *CSVExporter) FileExtension() string {
	return ".csv"
}

// MimeType returns the MIME type for CSV.
func (e *CSVExporter) MimeType() string {
	return "text/csv; charset=utf-8"
}

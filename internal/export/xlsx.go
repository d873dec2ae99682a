// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// =============================================================================
// XLSX EXPORTER
// =============================================================================

// XLSXExporter writes datasets into one workbook, a sheet per dataset.
type XLSXExporter struct{}

// NewXLSXExporter creates an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Export renders the datasets as a workbook.
func (e *XLSXExporter) Export(datasets ...Dataset) ([]byte, error) {
	if len(datasets) == 0 {
		return nil, fmt.Errorf("xlsx export needs at least one dataset")
	}

	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	for i, d := range datasets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, d.Name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(d.Name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", d.Name, err)
		}
		if err := writeSheet(f, d); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, d Dataset) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	header := make([]any, len(d.Header))
	for i, h := range d.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(d.Name, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", d.Name, err)
	}
	last, err := excelize.CoordinatesToCellName(len(d.Header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(d.Name, "A1", last, style); err != nil {
		return err
	}

	for r, row := range d.Rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(d.Name, cell, &cells); err != nil {
			return fmt.Errorf("write %s row %d: %w", d.Name, r+1, err)
		}
	}
	return nil
}

// cellValue stores numeric text as numbers so spreadsheets can sum them.
func cellValue(s string) any {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return s
}

// FileExtension returns the file extension for XLSX.
func (e *XLSXExporter) FileExtension() string {
	return ".xlsx"
}

// MimeType returns the MIME type for XLSX.
func (e *XLSXExporter) MimeType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

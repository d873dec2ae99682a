// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes plant datasets to spreadsheet files.
//
// # Formats
//
//   - CSV: one file per dataset, named <dataset>_<YYYY-MM-DD>.csv
//   - XLSX: one workbook, nums_export_<YYYY-MM-DD>.xlsx, one sheet per dataset
//
// Datasets without rows are skipped. Files are written atomically so a
// failed export never leaves a truncated file behind.
//
// # Usage
//
//	datasets := export.Datasets(yards, chemicals, readings)
//	res, err := export.WriteAll(datasets, &export.Options{OutputDir: ".", Format: export.FormatCSV})
package export

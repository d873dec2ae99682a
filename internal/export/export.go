// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/jeranaias/nums-tui/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for dataset exporters.
type Exporter interface {
	// Export converts datasets to the target format and returns the content.
	Export(datasets ...Dataset) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g., ".csv").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// Formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ForFormat returns the exporter for a format name.
func ForFormat(format string) (Exporter, error) {
	switch format {
	case "", FormatCSV:
		return NewCSVExporter(), nil
	case FormatXLSX:
		return NewXLSXExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files will be saved.
	// Default: current working directory
	OutputDir string

	// Format is "csv" or "xlsx".
	Format string

	// OpenAfterExport opens each file in the default application.
	OpenAfterExport bool

	// Now stamps the file names. Default: time.Now
	Now func() time.Time
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir: ".",
		Format:    FormatCSV,
		Now:       time.Now,
	}
}

// Result lists what an export wrote.
type Result struct {
	Files   []string
	Skipped []string
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// FileName returns the dated file name for a dataset, using the UTC date.
func FileName(name, ext string, at time.Time) string {
	return fmt.Sprintf("%s_%s%s", name, at.UTC().Format("2006-01-02"), ext)
}

// WorkbookName is the dataset name used for multi-sheet exports.
const WorkbookName = "nums_export"

// WriteAll writes every non-empty dataset. CSV produces one file per
// dataset; XLSX produces a single workbook. Any failure aborts the export.
func WriteAll(datasets []Dataset, opts *Options) (Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	exporter, err := ForFormat(opts.Format)
	if err != nil {
		return Result{}, err
	}

	var (
		res      Result
		nonEmpty []Dataset
	)
	for _, d := range datasets {
		if d.Empty() {
			res.Skipped = append(res.Skipped, d.Name)
			continue
		}
		nonEmpty = append(nonEmpty, d)
	}
	if len(nonEmpty) == 0 {
		return res, nil
	}

	at := opts.Now()
	write := func(name string, ds ...Dataset) error {
		content, err := exporter.Export(ds...)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		path := filepath.Join(opts.OutputDir, FileName(name, exporter.FileExtension(), at))
		if err := util.AtomicWriteFile(path, content, 0644); err != nil {
			return fmt.Errorf("write file: %w", err)
		}
		res.Files = append(res.Files, path)
		return nil
	}

	if opts.Format == FormatXLSX {
		if err := write(WorkbookName, nonEmpty...); err != nil {
			return res, err
		}
	} else {
		for _, d := range nonEmpty {
			if err := write(d.Name, d); err != nil {
				return res, err
			}
		}
	}

	if opts.OpenAfterExport {
		for _, path := range res.Files {
			// Non-fatal - file was still created successfully
			_ = openFile(path)
		}
	}
	return res, nil
}

// openFile opens a file in the default application for the OS.
func openFile(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", `""`, path)
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

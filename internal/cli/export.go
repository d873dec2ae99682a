// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/nums-tui/internal/domain"
	"github.com/jeranaias/nums-tui/internal/export"
)

func newExportCmd(o *rootOptions) *cobra.Command {
	var (
		dir    string
		format string
		open   bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "export coal yards, chemicals and power readings",
		Long: `Export the inventory tables.

CSV writes one file per table (coal_yards_<date>.csv, chemicals_<date>.csv,
power_consumption_<date>.csv). XLSX writes a single workbook
nums_export_<date>.xlsx with one sheet per table. Empty tables are skipped.`,
		Example: `  $ nums export
  $ nums export --format xlsx --dir ./reports`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.requireAdmin(); err != nil {
					return err
				}
				opts := export.Options{
					OutputDir:       a.cfg.Export.Dir,
					Format:          a.cfg.Export.Format,
					OpenAfterExport: open,
					Now:             o.clock,
				}
				if cmd.Flags().Changed("dir") {
					opts.OutputDir = dir
				}
				if cmd.Flags().Changed("format") {
					opts.Format = format
				}
				if _, err := export.ForFormat(opts.Format); err != nil {
					return err
				}

				var (
					yards     []domain.CoalYard
					chemicals []domain.Chemical
					power     []domain.PowerReading
				)
				g, gctx := errgroup.WithContext(ctx)
				g.Go(func() (err error) {
					yards, err = a.store.CoalYards(gctx)
					return usable(cmd, err)
				})
				g.Go(func() (err error) {
					chemicals, err = a.store.Chemicals(gctx)
					return usable(cmd, err)
				})
				g.Go(func() (err error) {
					power, err = a.store.PowerReadings(gctx)
					return usable(cmd, err)
				})
				if err := g.Wait(); err != nil {
					return fmt.Errorf("failed to load export data: %w", err)
				}

				res, err := export.WriteAll(export.Datasets(yards, chemicals, power), &opts)
				if err != nil {
					return err
				}
				if o.format != OutputTable {
					return o.printer(cmd).Print(res, nil)
				}
				out := cmd.OutOrStdout()
				if len(res.Files) == 0 {
					fmt.Fprintln(out, WarningStyle.Render("Nothing to export: every table is empty"))
					return nil
				}
				for _, f := range res.Files {
					fmt.Fprintln(out, SuccessStyle.Render("✓")+" "+f)
				}
				for _, s := range res.Skipped {
					fmt.Fprintln(out, DimStyle.Render("skipped "+s+" (empty)"))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "output directory")
	cmd.Flags().StringVarP(&format, "format", "f", export.FormatCSV, "csv or xlsx")
	cmd.Flags().BoolVar(&open, "open", false, "open the files when done")
	return cmd
}

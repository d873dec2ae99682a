// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jeranaias/nums-tui/internal/domain"
	"github.com/jeranaias/nums-tui/internal/store"
)

// =============================================================================
// CHEMICALS
// =============================================================================

func newChemicalsCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "chemicals",
		Aliases: []string{"chem"},
		Short:   "list and update chemical stock",
		Example: `  $ nums chemicals list
  $ nums chemicals update <chemical-id> --liters 120 --status Low`,
	}
	cmd.AddCommand(newChemicalsListCmd(o), newChemicalsUpdateCmd(o))
	return cmd
}

func newChemicalsListCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list chemicals by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app) error {
				chemicals, err := a.store.Chemicals(ctx)
				if err := usable(cmd, err); err != nil {
					return err
				}
				return o.printer(cmd).Print(chemicals, func(t *tableWriter) {
					t.Header("ID", "NAME", "CBY", "LITERS", "STATUS", "UPDATED")
					t.Empty("No chemical data available")
					for _, c := range chemicals {
						t.Row(c.ID, c.Name, humanize.Ftoa(c.CBY), humanize.Ftoa(c.Liters),
							RenderStatus(string(c.Status)), c.LastUpdated.Local().Format("Jan 2 15:04"))
					}
				})
			})
		},
	}
}

func newChemicalsUpdateCmd(o *rootOptions) *cobra.Command {
	var (
		cby    float64
		liters float64
		status string
	)
	cmd := &cobra.Command{
		Use:   "update <chemical-id>",
		Short: "record new stock levels; omitted flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.requireAdmin(); err != nil {
					return err
				}
				chemicals, err := a.store.Chemicals(ctx)
				if err != nil {
					return err
				}
				current, ok := findByID(chemicals, args[0], func(c domain.Chemical) string { return c.ID })
				if !ok {
					return fmt.Errorf("chemical %s not found", args[0])
				}

				u := store.ChemicalUpdate{CBY: current.CBY, Liters: current.Liters, Status: current.Status}
				flags := cmd.Flags()
				if flags.Changed("cby") {
					u.CBY = cby
				}
				if flags.Changed("liters") {
					u.Liters = liters
				}
				if flags.Changed("status") {
					u.Status = domain.StockStatus(status)
				}
				updated, err := a.store.UpdateChemical(ctx, current.ID, u)
				if err != nil {
					return err
				}
				return o.done(cmd, updated, "%s: %s L, %s", updated.Name, humanize.Ftoa(updated.Liters), updated.Status)
			})
		},
	}
	cmd.Flags().Float64Var(&cby, "cby", 0, "cubic yards on hand")
	cmd.Flags().Float64Var(&liters, "liters", 0, "liters on hand")
	cmd.Flags().StringVar(&status, "status", "", "Normal, Low or Critical")
	return cmd
}

// =============================================================================
// COAL YARDS
// =============================================================================

func newCoalCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coal",
		Short: "list coal yards and toggle their status",
		Example: `  $ nums coal list
  $ nums coal toggle <yard-id>`,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "list coal yards by number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app) error {
				yards, err := a.store.CoalYards(ctx)
				if err := usable(cmd, err); err != nil {
					return err
				}
				return o.printer(cmd).Print(yards, func(t *tableWriter) {
					t.Header("ID", "YARD", "STATUS", "UPDATED")
					t.Empty("No coal yards")
					for _, y := range yards {
						t.Row(y.ID, y.YardName, RenderStatus(string(y.Status)), y.LastUpdated.Local().Format("Jan 2 15:04"))
					}
				})
			})
		},
	}, &cobra.Command{
		Use:   "toggle <yard-id>",
		Short: "flip a yard between Available and Depleted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app) error {
				yards, err := a.store.CoalYards(ctx)
				if err != nil {
					return err
				}
				y, ok := findByID(yards, args[0], func(y domain.CoalYard) string { return y.ID })
				if !ok {
					return fmt.Errorf("coal yard %s not found", args[0])
				}
				updated, err := a.store.ToggleYard(ctx, a.actor, y)
				if err != nil {
					return err
				}
				return o.done(cmd, updated, "Coal yard status changed to %s", updated.Status)
			})
		},
	})
	return cmd
}

// =============================================================================
// SALT
// =============================================================================

func newSaltCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "salt",
		Short: "show and update the salt tracker",
		Example: `  $ nums salt show
  $ nums salt update --sacks 40 --status Normal`,
	}

	var (
		sacks  int
		status string
	)
	update := &cobra.Command{
		Use:   "update",
		Short: "record the salt stock; omitted flags keep their value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.requireAdmin(); err != nil {
					return err
				}
				current, err := a.store.Salt(ctx)
				if err != nil {
					return err
				}
				if current == nil {
					return fmt.Errorf("no salt tracker row to update")
				}
				n, s := current.Sacks, current.Status
				if cmd.Flags().Changed("sacks") {
					n = sacks
				}
				if cmd.Flags().Changed("status") {
					s = domain.StockStatus(status)
				}
				updated, err := a.store.UpdateSalt(ctx, n, s)
				if err != nil {
					return err
				}
				return o.done(cmd, updated, "Salt: %d sacks, %s", updated.Sacks, updated.Status)
			})
		},
	}
	update.Flags().IntVar(&sacks, "sacks", 0, "sacks on hand")
	update.Flags().StringVar(&status, "status", "", "Normal, Low or Critical")

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "show the current salt stock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app) error {
				salt, err := a.store.Salt(ctx)
				if err := usable(cmd, err); err != nil {
					return err
				}
				if salt == nil {
					if o.format != OutputTable {
						return o.printer(cmd).Print(nil, nil)
					}
					fmt.Fprintln(cmd.OutOrStdout(), DimStyle.Render("No salt data available"))
					return nil
				}
				return o.printer(cmd).Print(salt, func(t *tableWriter) {
					t.Header("SACKS", "STATUS", "GAUGE", "UPDATED")
					t.Row(fmt.Sprint(salt.Sacks), RenderStatus(string(salt.Status)),
						fmt.Sprintf("%d%%", domain.SaltGauge(salt.Status)), salt.LastUpdated.Local().Format("Jan 2 15:04"))
				})
			})
		},
	}, update)
	return cmd
}

// findByID returns the element whose id matches.
func findByID[T any](items []T, id string, idOf func(T) string) (T, bool) {
	for _, it := range items {
		if idOf(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

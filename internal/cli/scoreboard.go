// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jeranaias/nums-tui/internal/domain"
	"github.com/jeranaias/nums-tui/internal/store"
	"github.com/jeranaias/nums-tui/internal/ui/styles"
)

// =============================================================================
// SCOREBOARD
// =============================================================================

func newScoreboardCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scoreboard",
		Short: "print the plant overview",
		Long: `Print the overview summary: coal yards available, salt stock and the
current Utilities draw against the 420 kW average.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app) error {
				ov, err := a.store.Overview(ctx)
				if err := usable(cmd, err); err != nil {
					return err
				}
				if o.format != OutputTable {
					return o.printer(cmd).Print(ov.Scoreboard, nil)
				}
				renderScoreboard(cmd.OutOrStdout(), ov.Scoreboard)
				return nil
			})
		},
	}
}

func renderScoreboard(w io.Writer, sb domain.Scoreboard) {
	fmt.Fprintln(w, TitleStyle.Render("Plant Overview"))

	fmt.Fprintln(w, RenderLabel("Coal Yards")+ValueStyle.Render(fmt.Sprintf("%d/%d Available", sb.AvailableYards, sb.TotalYards)))
	if len(sb.DepletedYards) > 0 {
		fmt.Fprintln(w, RenderLabel("Depleted")+RenderStatus(strings.Join(sb.DepletedYards, ", ")))
	}

	if sb.Salt != nil {
		fmt.Fprintln(w, RenderLabel("Salt")+ValueStyle.Render(fmt.Sprintf("%d sacks ", sb.Salt.Sacks))+
			RenderStatus(string(sb.Salt.Status)))
		fmt.Fprintln(w, RenderLabel("")+styles.RenderProgressBar(30, float64(sb.SaltPercent)))
	} else {
		fmt.Fprintln(w, RenderLabel("Salt")+DimStyle.Render("No salt data available"))
	}

	trend := SuccessStyle.Render(sb.PowerTrend)
	if sb.AbovePowerAverage() {
		trend = WarningStyle.Render(sb.PowerTrend)
	}
	fmt.Fprintln(w, RenderLabel("Power (Utilities)")+
		ValueStyle.Render(humanize.FtoaWithDigits(sb.CurrentPowerKW, 1)+" kW ")+trend)

	if len(sb.Chemicals) > 0 {
		fmt.Fprintln(w, SectionStyle.Render("Chemicals"))
		for _, c := range sb.Chemicals {
			fmt.Fprintln(w, RenderLabel(c.Name)+RenderStatus(string(c.Status)))
		}
	}
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

func newNotificationsCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notif"},
		Short:   "list notifications and mark them read",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "list the newest notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app) error {
				ns, err := a.store.Notifications(ctx, limit)
				if err := usable(cmd, err); err != nil {
					return err
				}
				return o.printer(cmd).Print(ns, func(t *tableWriter) {
					t.Header("ID", "", "TITLE", "MESSAGE", "WHEN")
					t.Empty("No notifications")
					for _, n := range ns {
						mark := DimStyle.Render("·")
						if !n.IsRead {
							mark = WarningStyle.Render("●")
						}
						t.Row(n.ID, mark, n.Title, n.Message, humanize.Time(n.CreatedAt))
					}
				})
			})
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", store.DefaultNotificationLimit, "how many to show")

	read := &cobra.Command{
		Use:   "read <notification-id>",
		Short: "mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.store.MarkNotificationRead(ctx, args[0]); err != nil {
					return err
				}
				return o.done(cmd, map[string]any{"id": args[0], "is_read": true}, "Marked %s as read", args[0])
			})
		},
	}

	cmd.AddCommand(list, read)
	return cmd
}

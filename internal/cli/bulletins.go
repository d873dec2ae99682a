// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jeranaias/nums-tui/internal/domain"
	"github.com/jeranaias/nums-tui/internal/util"
)

func newBulletinsCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulletins",
		Short: "list, post and remove bulletins",
		Example: `  $ nums bulletins list
  $ nums bulletins post --title "Boiler 2 shutdown" --message "Friday 08:00 to 16:00"
  $ nums bulletins remove <bulletin-id>`,
	}
	cmd.AddCommand(newBulletinsListCmd(o), newBulletinsPostCmd(o), newBulletinsRemoveCmd(o))
	return cmd
}

func newBulletinsListCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list active bulletins, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app) error {
				bulletins, err := a.store.ActiveBulletins(ctx)
				if err := usable(cmd, err); err != nil {
					return err
				}
				return o.printer(cmd).Print(bulletins, func(t *tableWriter) {
					t.Header("ID", "TITLE", "MESSAGE", "POSTED")
					t.Empty("No active bulletins")
					for _, b := range bulletins {
						t.Row(b.ID, b.Title, util.Truncate(b.Message, 48), b.CreatedAt.Local().Format("Jan 2 15:04"))
					}
				})
			})
		},
	}
}

func newBulletinsPostCmd(o *rootOptions) *cobra.Command {
	var draft domain.BulletinDraft
	cmd := &cobra.Command{
		Use:   "post",
		Short: "post a new bulletin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.requireAdmin(); err != nil {
					return err
				}
				b, err := a.store.CreateBulletin(ctx, draft)
				if err != nil {
					return err
				}
				return o.done(cmd, b, "Posted %q", b.Title)
			})
		},
	}
	cmd.Flags().StringVarP(&draft.Title, "title", "t", "", "bulletin title (max 100 characters)")
	cmd.Flags().StringVarP(&draft.Message, "message", "m", "", "bulletin message (max 500 characters)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}

func newBulletinsRemoveCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <bulletin-id>",
		Short: "take a bulletin off the board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.requireAdmin(); err != nil {
					return err
				}
				b, err := a.store.DeactivateBulletin(ctx, args[0])
				if err != nil {
					return err
				}
				return o.done(cmd, b, "Removed %q", b.Title)
			})
		},
	}
}

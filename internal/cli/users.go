// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/nums-tui/internal/domain"
)

func newUsersCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "list, approve, reject and delete users",
		Long: `Manage NUMS accounts.

New sign-ups start as Guest. Approving a Guest makes them Opscrew;
rejecting an Opscrew or Mantech sends them back to Guest. Admins can
never be deleted, and nobody can delete themselves.`,
		Example: `  $ nums users list --search santos
  $ nums users list --role Guest -o yaml
  $ nums users approve 00000000-0000-4000-8000-000000000004
  $ nums users delete 00000000-0000-4000-8000-000000000005 --yes`,
	}
	cmd.AddCommand(
		newUsersListCmd(o),
		newUserRoleCmd(o, "approve", "approve a pending Guest as Opscrew"),
		newUserRoleCmd(o, "reject", "demote a user back to Guest"),
		newUsersDeleteCmd(o),
	)
	return cmd
}

func newUsersListCmd(o *rootOptions) *cobra.Command {
	var (
		search string
		role   string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "list users, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := domain.UserFilter{Search: search}
			if role != "" {
				r, err := domain.ParseRole(role)
				if err != nil {
					return err
				}
				filter.Role = r
			}
			return o.withApp(cmd, func(ctx context.Context, a *app) error {
				users, err := a.store.Users(ctx)
				if err := usable(cmd, err); err != nil {
					return err
				}
				users = domain.FilterUsers(users, filter)
				return o.printer(cmd).Print(users, func(t *tableWriter) {
					t.Header("ID", "NAME", "COMPANY ID", "ROLE", "JOINED")
					t.Empty("No users match the current filter")
					for _, u := range users {
						t.Row(u.ID, u.FullName, u.CompanyID, RenderRole(string(u.Role)), u.CreatedAt.Local().Format("2006-01-02"))
					}
				})
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "match name or company ID")
	cmd.Flags().StringVarP(&role, "role", "r", "", "only this role (Admin, Mantech, Opscrew, Guest)")
	return cmd
}

// newUserRoleCmd builds approve and reject, which differ only in the
// role transition applied.
func newUserRoleCmd(o *rootOptions, action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <user-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.requireAdmin(); err != nil {
					return err
				}
				u, err := a.store.User(ctx, args[0])
				if err != nil {
					return err
				}
				var updated domain.User
				if action == "approve" {
					updated, err = a.store.ApproveUser(ctx, a.actor, u)
				} else {
					updated, err = a.store.RejectUser(ctx, a.actor, u)
				}
				if err != nil {
					return fmt.Errorf("cannot %s %s: %w", action, u.FullName, err)
				}
				return o.done(cmd, updated, "%s is now %s", updated.FullName, updated.Role)
			})
		},
	}
}

func newUsersDeleteCmd(o *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <user-id>",
		Short: "delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.requireAdmin(); err != nil {
					return err
				}
				u, err := a.store.User(ctx, args[0])
				if err != nil {
					return err
				}
				if err := domain.CheckDelete(a.actor, u); err != nil {
					return fmt.Errorf("cannot delete %s: %w", u.FullName, err)
				}
				ok, err := o.confirmer(cmd).Confirm(fmt.Sprintf("Delete %s (%s)?", u.FullName, u.CompanyID), yes, o.format)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), DimStyle.Render("Deletion cancelled"))
					return nil
				}
				if err := a.store.DeleteUser(ctx, a.actor, u); err != nil {
					return err
				}
				return o.done(cmd, u, "Deleted %s", u.FullName)
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

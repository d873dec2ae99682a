// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/nums-tui/internal/domain"
	"github.com/jeranaias/nums-tui/internal/export"
	"github.com/jeranaias/nums-tui/internal/store"
	"github.com/jeranaias/nums-tui/internal/ui/components"
)

// =============================================================================
// MESSAGES
// =============================================================================

// RefreshMsg drops cached queries and reloads every tab. Sent from outside
// the program, e.g. when the config file changes.
type RefreshMsg struct{}

type overviewMsg struct {
	overview store.Overview
	err      error
}

type usersMsg struct {
	users []domain.User
	err   error
}

type bulletinsMsg struct {
	bulletins []domain.Bulletin
	err       error
}

type notificationsMsg struct {
	items []domain.Notification
	err   error
}

// dataset names something the dashboard can reload.
type dataset int

const (
	dataOverview dataset = iota
	dataUsers
	dataBulletins
	dataNotifications
)

// actionMsg reports a finished mutation. toast is nil for silent actions.
type actionMsg struct {
	toast  *components.Toast
	reload []dataset
}

type exportMsg struct {
	result export.Result
	err    error
}

func okToast(title, description string) *components.Toast {
	return &components.Toast{Title: title, Description: description, Kind: components.ToastKindSuccess}
}

func errToast(title, description string) *components.Toast {
	return &components.Toast{Title: title, Description: description, Kind: components.ToastKindError}
}

// run executes fn with the request timeout.
func run[T any](fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return fn(ctx)
}

// =============================================================================
// LOADERS
// =============================================================================

func (m Model) loadOverview() tea.Cmd {
	st := m.store
	return func() tea.Msg {
		ov, err := run(st.Overview)
		return overviewMsg{overview: ov, err: err}
	}
}

func (m Model) loadUsers() tea.Cmd {
	st := m.store
	return func() tea.Msg {
		users, err := run(st.Users)
		return usersMsg{users: users, err: err}
	}
}

func (m Model) loadBulletins() tea.Cmd {
	st := m.store
	return func() tea.Msg {
		bulletins, err := run(st.ActiveBulletins)
		return bulletinsMsg{bulletins: bulletins, err: err}
	}
}

func (m Model) loadNotifications() tea.Cmd {
	st := m.store
	return func() tea.Msg {
		items, err := run(func(ctx context.Context) ([]domain.Notification, error) {
			return st.Notifications(ctx, HeaderNotificationLimit)
		})
		return notificationsMsg{items: items, err: err}
	}
}

func (m Model) reload(d dataset) tea.Cmd {
	switch d {
	case dataOverview:
		return m.loadOverview()
	case dataUsers:
		return m.loadUsers()
	case dataBulletins:
		return m.loadBulletins()
	case dataNotifications:
		return m.loadNotifications()
	}
	return nil
}

// refreshAll drops cached queries and reloads everything.
func (m Model) refreshAll() tea.Cmd {
	m.store.Refresh()
	return tea.Batch(m.loadOverview(), m.loadUsers(), m.loadBulletins(), m.loadNotifications())
}

// =============================================================================
// ACTIONS
// =============================================================================

func (m Model) toggleYard(y domain.CoalYard) tea.Cmd {
	st, actor := m.store, m.actor
	return func() tea.Msg {
		updated, err := run(func(ctx context.Context) (domain.CoalYard, error) {
			return st.ToggleYard(ctx, actor, y)
		})
		switch {
		case errors.Is(err, domain.ErrForbidden):
			return actionMsg{toast: errToast("Access Denied", "Only admins can update coal yard status")}
		case err != nil:
			return actionMsg{toast: errToast("Error", "Failed to update coal yard status")}
		}
		return actionMsg{
			toast:  okToast("Updated", fmt.Sprintf("Coal yard status changed to %s", updated.Status)),
			reload: []dataset{dataOverview},
		}
	}
}

func (m Model) approveUser(u domain.User) tea.Cmd {
	st, actor := m.store, m.actor
	return func() tea.Msg {
		_, err := run(func(ctx context.Context) (domain.User, error) {
			return st.ApproveUser(ctx, actor, u)
		})
		if err != nil {
			return actionMsg{toast: errToast("Error", "Failed to approve user")}
		}
		return actionMsg{
			toast:  okToast("User Approved", "User has been approved and assigned Opscrew role"),
			reload: []dataset{dataUsers},
		}
	}
}

func (m Model) rejectUser(u domain.User) tea.Cmd {
	st, actor := m.store, m.actor
	return func() tea.Msg {
		_, err := run(func(ctx context.Context) (domain.User, error) {
			return st.RejectUser(ctx, actor, u)
		})
		if err != nil {
			return actionMsg{toast: errToast("Error", "Failed to reject user")}
		}
		return actionMsg{
			toast:  okToast("User Rejected", "User role has been set to Guest"),
			reload: []dataset{dataUsers},
		}
	}
}

func (m Model) deleteUser(u domain.User) tea.Cmd {
	st, actor := m.store, m.actor
	return func() tea.Msg {
		_, err := run(func(ctx context.Context) (struct{}, error) {
			return struct{}{}, st.DeleteUser(ctx, actor, u)
		})
		switch {
		case errors.Is(err, domain.ErrSelfDelete), errors.Is(err, domain.ErrProtectedUser):
			return actionMsg{toast: errToast("Cannot Delete", capitalize(err.Error()))}
		case err != nil:
			return actionMsg{toast: errToast("Error", "Failed to delete user")}
		}
		return actionMsg{
			toast:  okToast("User Deleted", fmt.Sprintf("%s has been removed from the system", u.FullName)),
			reload: []dataset{dataUsers},
		}
	}
}

func (m Model) createBulletin(draft domain.BulletinDraft) tea.Cmd {
	st := m.store
	return func() tea.Msg {
		_, err := run(func(ctx context.Context) (domain.Bulletin, error) {
			return st.CreateBulletin(ctx, draft)
		})
		if err != nil {
			return actionMsg{toast: errToast("Error", "Failed to create bulletin")}
		}
		return actionMsg{
			toast:  okToast("Bulletin Created", "Your bulletin has been posted successfully"),
			reload: []dataset{dataBulletins},
		}
	}
}

func (m Model) deactivateBulletin(b domain.Bulletin) tea.Cmd {
	st := m.store
	return func() tea.Msg {
		_, err := run(func(ctx context.Context) (domain.Bulletin, error) {
			return st.DeactivateBulletin(ctx, b.ID)
		})
		if err != nil {
			return actionMsg{toast: errToast("Error", "Failed to deactivate bulletin")}
		}
		return actionMsg{
			toast:  okToast("Bulletin Removed", "Bulletin has been deactivated"),
			reload: []dataset{dataBulletins},
		}
	}
}

func (m Model) markRead(n domain.Notification) tea.Cmd {
	st := m.store
	return func() tea.Msg {
		_, err := run(func(ctx context.Context) (struct{}, error) {
			return struct{}{}, st.MarkNotificationRead(ctx, n.ID)
		})
		if err != nil {
			return actionMsg{toast: errToast("Error", "Failed to update notification")}
		}
		return actionMsg{reload: []dataset{dataNotifications}}
	}
}

// exportData loads the export datasets concurrently and writes them.
func (m Model) exportData() tea.Cmd {
	st, opts := m.store, m.export
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var (
			yards     []domain.CoalYard
			chemicals []domain.Chemical
			power     []domain.PowerReading
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			yards, err = st.CoalYards(gctx)
			return usable(err)
		})
		g.Go(func() (err error) {
			chemicals, err = st.Chemicals(gctx)
			return usable(err)
		})
		g.Go(func() (err error) {
			power, err = st.PowerReadings(gctx)
			return usable(err)
		})
		if err := g.Wait(); err != nil {
			return exportMsg{err: err}
		}

		res, err := export.WriteAll(export.Datasets(yards, chemicals, power), &opts)
		return exportMsg{result: res, err: err}
	}
}

// usable treats stale snapshot data as a successful load.
func usable(err error) error {
	if store.IsStale(err) {
		return nil
	}
	return err
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/nums-tui/internal/domain"
)

// =============================================================================
// KEY ROUTING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}
	if !m.actor.IsAdmin() {
		if key.Matches(msg, m.keys.Quit) {
			return m.quit()
		}
		return m, nil
	}

	// The assistant panel owns the keyboard while it is open.
	if m.panel.Expanded() || key.Matches(msg, m.panel.Keys().Open) {
		var cmd tea.Cmd
		m.panel, cmd = m.panel.Update(msg)
		return m, cmd
	}

	if key.Matches(msg, m.keys.DismissToast) {
		m.toasts.DismissNewest()
		return m, nil
	}

	switch {
	case m.composing:
		return m.handleComposeKey(msg)
	case m.searching:
		return m.handleSearchKey(msg)
	case m.showNotifications:
		return m.handleNotificationKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab((m.tab + 1) % tabCount), nil

	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab((m.tab + tabCount - 1) % tabCount), nil

	case key.Matches(msg, m.keys.Export):
		if m.exporting {
			return m, nil
		}
		m.exporting = true
		return m, m.exportData()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshAll()

	case key.Matches(msg, m.keys.Notifications):
		m.showNotifications = true
		m.notifCursor = 0
		return m, nil
	}

	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
		if r := msg.Runes[0]; r >= '1' && r < '1'+rune(tabCount) {
			return m.switchTab(Tab(r - '1')), nil
		}
	}

	switch m.tab {
	case TabOverview:
		return m.handleOverviewKey(msg)
	case TabUsers:
		return m.handleUsersKey(msg)
	case TabBulletins:
		return m.handleBulletinsKey(msg)
	case TabPM:
		return m.handlePMKey(msg)
	}
	return m, nil
}

func (m Model) switchTab(t Tab) Model {
	m.tab = t
	m.confirmDelete = ""
	return m
}

// =============================================================================
// OVERVIEW
// =============================================================================

func (m Model) handleOverviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	yards := m.overview.Yards
	switch {
	case key.Matches(msg, m.keys.Up):
		m.yardCursor = clampCursor(m.yardCursor-1, len(yards))
	case key.Matches(msg, m.keys.Down):
		m.yardCursor = clampCursor(m.yardCursor+1, len(yards))
	case key.Matches(msg, m.keys.Toggle):
		if len(yards) == 0 {
			return m, nil
		}
		if !m.actor.IsAdmin() {
			m.toasts.Error("Access Denied", "Only admins can update coal yard status")
			return m, m.toastTick()
		}
		return m, m.toggleYard(yards[m.yardCursor])
	}
	return m, nil
}

// =============================================================================
// USERS
// =============================================================================

var roleFilterCycle = append([]domain.Role{""}, domain.Roles...)

func (m Model) filteredUsers() []domain.User {
	return domain.FilterUsers(m.users, domain.UserFilter{Search: m.search.Value(), Role: m.roleFilter})
}

func (m Model) selectedUser() (domain.User, bool) {
	users := m.filteredUsers()
	if len(users) == 0 {
		return domain.User{}, false
	}
	return users[clampCursor(m.userCursor, len(users))], true
}

func (m Model) handleUsersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.filteredUsers())

	if m.confirmDelete != "" {
		u, ok := m.selectedUser()
		pending := m.confirmDelete
		m.confirmDelete = ""
		if ok && u.ID == pending && key.Matches(msg, m.keys.Confirm) {
			return m, m.deleteUser(u)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.userCursor = clampCursor(m.userCursor-1, n)

	case key.Matches(msg, m.keys.Down):
		m.userCursor = clampCursor(m.userCursor+1, n)

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.RoleFilter):
		for i, r := range roleFilterCycle {
			if r == m.roleFilter {
				m.roleFilter = roleFilterCycle[(i+1)%len(roleFilterCycle)]
				break
			}
		}
		m.userCursor = 0

	case key.Matches(msg, m.keys.Approve):
		if u, ok := m.selectedUser(); ok && domain.CanApprove(u) {
			return m, m.approveUser(u)
		}

	case key.Matches(msg, m.keys.Reject):
		if u, ok := m.selectedUser(); ok && domain.CanReject(u) {
			return m, m.rejectUser(u)
		}

	case key.Matches(msg, m.keys.Delete):
		u, ok := m.selectedUser()
		if !ok {
			return m, nil
		}
		if err := domain.CheckDelete(m.actor, u); err != nil {
			m.toasts.Error("Cannot Delete", capitalize(err.Error()))
			return m, m.toastTick()
		}
		m.confirmDelete = u.ID
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Submit):
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.userCursor = 0
	return m, cmd
}

// =============================================================================
// BULLETINS
// =============================================================================

func (m Model) handleBulletinsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.bulletinCursor = clampCursor(m.bulletinCursor-1, len(m.bulletins))

	case key.Matches(msg, m.keys.Down):
		m.bulletinCursor = clampCursor(m.bulletinCursor+1, len(m.bulletins))

	case key.Matches(msg, m.keys.Compose):
		m.composing = true
		m.titleInput.SetValue("")
		m.messageInput.SetValue("")
		m.messageInput.Blur()
		m.titleInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Remove):
		if len(m.bulletins) == 0 {
			return m, nil
		}
		return m, m.deactivateBulletin(m.bulletins[m.bulletinCursor])
	}
	return m, nil
}

func (m Model) handleComposeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.composing = false
		m.titleInput.Blur()
		m.messageInput.Blur()
		return m, nil

	case key.Matches(msg, m.keys.NextField):
		m.swapComposeFocus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Submit):
		if m.titleInput.Focused() {
			m.swapComposeFocus()
			return m, textinput.Blink
		}
		draft, err := domain.BulletinDraft{
			Title:   m.titleInput.Value(),
			Message: m.messageInput.Value(),
		}.Normalize()
		if err != nil {
			m.toasts.Error("Validation Error", validationDescription(err))
			return m, m.toastTick()
		}
		m.composing = false
		m.titleInput.Blur()
		m.messageInput.Blur()
		return m, m.createBulletin(draft)
	}

	var cmd tea.Cmd
	if m.titleInput.Focused() {
		m.titleInput, cmd = m.titleInput.Update(msg)
	} else {
		m.messageInput, cmd = m.messageInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) swapComposeFocus() {
	if m.titleInput.Focused() {
		m.titleInput.Blur()
		m.messageInput.Focus()
		return
	}
	m.messageInput.Blur()
	m.titleInput.Focus()
}

func validationDescription(err error) string {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return err.Error()
	}
	if strings.HasPrefix(verr.Message, "Please") {
		return verr.Message
	}
	return capitalize(verr.Field) + " " + verr.Message
}

// =============================================================================
// PM SCHEDULER
// =============================================================================

func (m Model) handlePMKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Left):
		m.schedule.Prev()
	case key.Matches(msg, m.keys.Right):
		m.schedule.Next()
	}
	return m, nil
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

// visibleNotifications is how many rows the dropdown shows.
func (m Model) visibleNotifications() int {
	n := len(m.notifications)
	if n > 5 {
		n = 5
	}
	return n
}

func (m Model) handleNotificationKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := m.visibleNotifications()
	switch {
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Notifications), key.Matches(msg, m.keys.Quit):
		m.showNotifications = false

	case key.Matches(msg, m.keys.Up):
		m.notifCursor = clampCursor(m.notifCursor-1, n)

	case key.Matches(msg, m.keys.Down):
		m.notifCursor = clampCursor(m.notifCursor+1, n)

	case key.Matches(msg, m.keys.Submit):
		if n == 0 {
			return m, nil
		}
		if item := m.notifications[m.notifCursor]; !item.IsRead {
			return m, m.markRead(item)
		}

	case key.Matches(msg, m.keys.ViewAll):
		m.showNotifications = false
		m.toasts.Status("Feature Coming Soon", "Full notifications page will be available soon")
		return m, m.toastTick()
	}
	return m, nil
}

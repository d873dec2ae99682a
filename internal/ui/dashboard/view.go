// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/nums-tui/internal/domain"
	"github.com/jeranaias/nums-tui/internal/ui/components"
	"github.com/jeranaias/nums-tui/internal/ui/styles"
	"github.com/jeranaias/nums-tui/internal/util"
)

const (
	footerText = "© 2025 ABN Utilities • NutribeV Utility Management System (NUMS)"

	// toastMargin keeps toasts clear of the assistant avatar.
	toastMargin = 4

	notificationWidth = 44
)

// size returns the drawable area, falling back to a classic terminal
// before the first resize arrives.
func (m Model) size() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = 80
	}
	if h <= 0 {
		h = 24
	}
	return w, h
}

// View renders the dashboard with its overlays.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	width, height := m.size()
	if !m.actor.IsAdmin() {
		return m.renderRestricted(width, height)
	}

	header := m.renderHeader(width)
	title := m.renderTitle(width)
	tabs := m.renderTabs(width)
	help := m.theme.Help.Width(width).Render(util.Truncate(m.helpLine(), width))
	footer := m.theme.Footer.Width(width).Render(util.Truncate(footerText, width))

	used := lipgloss.Height(header) + lipgloss.Height(title) + lipgloss.Height(tabs) +
		lipgloss.Height(help) + lipgloss.Height(footer)
	bodyHeight := height - used
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	body := lipgloss.NewStyle().
		Width(width).
		Height(bodyHeight).
		MaxHeight(bodyHeight).
		Render(m.renderBody(width))

	view := lipgloss.JoinVertical(lipgloss.Left, header, title, tabs, body, help, footer)

	if m.showNotifications {
		view = components.PlaceOverlay(width-notificationWidth-1, 1, m.renderNotifications(), view)
	}
	if stack := components.RenderToastStack(m.toasts.GetToasts(), width, m.now()); stack != "" {
		view = components.PlaceBottomRight(stack, view, width, toastMargin)
	}
	return m.panel.Overlay(view)
}

// =============================================================================
// CHROME
// =============================================================================

func (m Model) renderHeader(width int) string {
	left := m.theme.HeaderTitle.Render("NUMS") + " " + m.theme.HeaderSubtitle.Render("Admin Panel")

	bell := "Notifications"
	if n := m.unreadCount(); n > 0 {
		bell = fmt.Sprintf("Notifications (%d)", n)
	}
	avatar := m.theme.Badge(util.Initials(m.actor.Name))
	right := bell + "  " + avatar + " Welcome, " + m.actor.Name + " " + m.theme.Badge(string(m.actor.Role))

	gap := width - 4 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Width(width).MaxHeight(1).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) unreadCount() int {
	n := 0
	for _, item := range m.notifications {
		if !item.IsRead {
			n++
		}
	}
	return n
}

func (m Model) renderTitle(width int) string {
	lines := []string{
		m.theme.CardTitle.Render("Nutribev Utility Management System"),
		m.theme.Label.Render("Admin Dashboard"),
		m.theme.Value.Render(fmt.Sprintf("Welcome to NUMS, %s!", m.actor.Name)),
	}
	return lipgloss.NewStyle().Width(width).Padding(0, 1).Render(strings.Join(lines, "\n"))
}

func (m Model) renderTabs(width int) string {
	parts := make([]string, 0, tabCount)
	for t := Tab(0); t < tabCount; t++ {
		label := strconv.Itoa(int(t)+1) + " " + t.String()
		if t == m.tab {
			parts = append(parts, m.theme.TabActive.Render(label))
		} else {
			parts = append(parts, m.theme.Tab.Render(label))
		}
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	return lipgloss.NewStyle().MaxWidth(width).Render(row)
}

func (m Model) helpLine() string {
	bindings := []key.Binding{m.keys.NextTab, m.keys.Export, m.keys.Refresh, m.keys.Notifications}
	switch {
	case m.composing:
		bindings = []key.Binding{m.keys.NextField, m.keys.Submit, m.keys.Cancel}
	case m.searching:
		bindings = []key.Binding{m.keys.Submit, m.keys.Cancel}
	case m.showNotifications:
		bindings = []key.Binding{m.keys.Up, m.keys.Down, m.keys.Submit, m.keys.ViewAll, m.keys.Cancel}
	case m.tab == TabOverview:
		bindings = append(bindings, m.keys.Toggle)
	case m.tab == TabUsers:
		bindings = append(bindings, m.keys.Search, m.keys.RoleFilter, m.keys.Approve, m.keys.Reject, m.keys.Delete)
	case m.tab == TabBulletins:
		bindings = append(bindings, m.keys.Compose, m.keys.Remove)
	case m.tab == TabPM:
		bindings = append(bindings, m.keys.Left, m.keys.Right)
	}
	bindings = append(bindings, m.panel.Keys().Open, m.keys.Quit)

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

func (m Model) renderRestricted(width, height int) string {
	box := m.theme.Card.Render(lipgloss.JoinVertical(lipgloss.Center,
		styles.RenderError("Access Restricted"),
		"",
		m.theme.Muted.Render("Admin privileges required to access this dashboard."),
		"",
		m.theme.Help.Render("q quit"),
	))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// staleLine describes cached data shown for tab, or "" when it is fresh.
func (m Model) staleLine(tab Tab) string {
	at, ok := m.stale[tab]
	if !ok {
		return ""
	}
	return m.theme.Stale.Render("Offline: showing cached data from " + components.RelativeTime(at, m.now()))
}

func (m Model) tableStyles() components.TableStyles {
	return components.TableStyles{
		Header:   m.theme.TableHeader,
		Cell:     m.theme.TableCell,
		Selected: m.theme.TableSelected,
	}
}

// =============================================================================
// BODY
// =============================================================================

func (m Model) renderBody(width int) string {
	if m.tab != TabPM && m.tab != TabTools && !m.loaded[m.tab] {
		return m.theme.Muted.Padding(1, 2).Render("Loading...")
	}

	var content string
	switch m.tab {
	case TabOverview:
		content = m.renderOverview(width)
	case TabUsers:
		content = m.renderUsers(width)
	case TabBulletins:
		content = m.renderBulletins(width)
	case TabPM:
		content = m.renderPM(width)
	case TabTools:
		content = m.renderTools(width)
	}
	if stale := m.staleLine(m.tab); stale != "" {
		content = stale + "\n" + content
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(content)
}

func (m Model) card(title, body string, width int) string {
	return m.theme.Card.Width(width).Render(m.theme.CardTitle.Render(title) + "\n" + body)
}

// =============================================================================
// OVERVIEW TAB
// =============================================================================

func (m Model) renderOverview(width int) string {
	sb := m.overview.Scoreboard
	inner := width - 2

	cardWidth := inner/3 - 2
	if cardWidth < 24 {
		cardWidth = inner - 2
	}

	depleted := "All yards available"
	if len(sb.DepletedYards) > 0 {
		depleted = "Depleted: " + strings.Join(sb.DepletedYards, ", ")
	}
	coal := m.card("Coal Yards",
		m.theme.Value.Render(fmt.Sprintf("%d/%d Available", sb.AvailableYards, sb.TotalYards))+"\n"+
			m.theme.Muted.Render(util.Truncate(depleted, cardWidth-4)),
		cardWidth)

	saltBody := m.theme.Muted.Render("No salt data available")
	if sb.Salt != nil {
		saltBody = m.theme.Value.Render(fmt.Sprintf("%d sacks", sb.Salt.Sacks)) + " " +
			m.theme.Status(string(sb.Salt.Status)) + "\n" +
			styles.RenderProgressBar(cardWidth-6, float64(sb.SaltPercent))
	}
	salt := m.card("Salt Tracker", saltBody, cardWidth)

	trend := m.theme.Status("Normal")
	if sb.AbovePowerAverage() {
		trend = lipgloss.NewStyle().Bold(true).Foreground(styles.Amber).Render(sb.PowerTrend)
	}
	power := m.card("Power (Utilities)",
		m.theme.Value.Render(fmt.Sprintf("%.1f kW", sb.CurrentPowerKW))+"\n"+
			m.theme.Label.Render(fmt.Sprintf("avg %.0f kW ", sb.AveragePowerKW))+trend,
		cardWidth)

	var cards string
	if cardWidth == inner-2 {
		cards = lipgloss.JoinVertical(lipgloss.Left, coal, salt, power)
	} else {
		cards = lipgloss.JoinHorizontal(lipgloss.Top, coal, " ", salt, " ", power)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		cards,
		"",
		m.renderYards(inner),
		"",
		m.renderChemicals(inner),
		"",
		m.renderPower(inner),
	)
}

func (m Model) renderYards(width int) string {
	t := components.NewTable([]components.Column{
		{Title: "Yard", Width: 0},
		{Title: "#", Width: 4},
		{Title: "Status", Width: 10},
		{Title: "Updated", Width: 16},
	}, m.tableStyles())
	for _, y := range m.overview.Yards {
		t.Rows = append(t.Rows, []string{
			y.YardName,
			strconv.Itoa(y.YardNumber),
			string(y.Status),
			components.RelativeTime(y.LastUpdated, m.now()),
		})
	}
	if len(t.Rows) > 0 {
		t.Selected = m.yardCursor
	}
	t.Cell = statusCell(2)
	return m.theme.CardTitle.Render("Coal Yard Status") + "\n" + t.Render(width)
}

func (m Model) renderChemicals(width int) string {
	title := m.theme.CardTitle.Render("Chemical Inventory")
	if len(m.overview.Chemicals) == 0 {
		return title + "\n" + m.theme.Muted.Render("No chemical data available")
	}
	t := components.NewTable([]components.Column{
		{Title: "Chemical", Width: 0},
		{Title: "CBY", Width: 8},
		{Title: "Liters", Width: 10},
		{Title: "Status", Width: 10},
	}, m.tableStyles())
	for _, c := range m.overview.Chemicals {
		t.Rows = append(t.Rows, []string{
			c.Name,
			strconv.FormatFloat(c.CBY, 'f', -1, 64),
			strconv.FormatFloat(c.Liters, 'f', -1, 64),
			string(c.Status),
		})
	}
	t.Cell = statusCell(3)
	return title + "\n" + t.Render(width)
}

func (m Model) renderPower(width int) string {
	title := m.theme.CardTitle.Render("Power Consumption")
	if len(m.overview.Power) == 0 {
		return title + "\n" + m.theme.Muted.Render("No power readings recorded")
	}
	t := components.NewTable([]components.Column{
		{Title: "Section", Width: 0},
		{Title: "kW", Width: 10},
		{Title: "Recorded", Width: 16},
	}, m.tableStyles())
	for _, p := range m.overview.Power {
		t.Rows = append(t.Rows, []string{
			string(p.Section),
			strconv.FormatFloat(p.ConsumptionKW, 'f', 1, 64),
			components.RelativeTime(p.RecordedAt, m.now()),
		})
	}
	return title + "\n" + t.Render(width)
}

// statusCell colors the status column of a table.
func statusCell(col int) func(row, c int, value string) (lipgloss.Style, bool) {
	return func(_, c int, value string) (lipgloss.Style, bool) {
		if c != col {
			return lipgloss.Style{}, false
		}
		return lipgloss.NewStyle().Bold(true).Foreground(styles.StatusColor(value)), true
	}
}

// =============================================================================
// USERS TAB
// =============================================================================

func (m Model) renderUsers(width int) string {
	inner := width - 2
	users := m.filteredUsers()

	role := "All"
	if m.roleFilter != "" {
		role = string(m.roleFilter)
	}
	search := m.search.View()
	if !m.searching && m.search.Value() == "" {
		search = m.theme.Muted.Render("/ to search by name or company ID")
	}
	controls := search + "   " + m.theme.Label.Render("Role: ") + m.theme.Value.Render(role) +
		"   " + m.theme.Label.Render(fmt.Sprintf("Pending approvals: %d", domain.PendingApprovals(m.users)))

	t := components.NewTable([]components.Column{
		{Title: "Name", Width: 0},
		{Title: "Company ID", Width: 12},
		{Title: "Role", Width: 9},
		{Title: "Joined", Width: 16},
		{Title: "Actions", Width: 12},
	}, m.tableStyles())
	for _, u := range users {
		t.Rows = append(t.Rows, []string{
			u.FullName,
			u.CompanyID,
			string(u.Role),
			components.RelativeTime(u.CreatedAt, m.now()),
			m.userActions(u),
		})
	}
	if len(users) > 0 {
		t.Selected = clampCursor(m.userCursor, len(users))
	}
	t.Cell = func(_, c int, value string) (lipgloss.Style, bool) {
		if c != 2 {
			return lipgloss.Style{}, false
		}
		return lipgloss.NewStyle().Foreground(styles.RoleColor(value)), true
	}

	table := t.Render(inner)
	if len(users) == 0 {
		table += "\n" + m.theme.Muted.Render("No users match the current filter")
	}

	lines := []string{controls, "", table}
	if m.confirmDelete != "" {
		if u, ok := m.selectedUser(); ok {
			lines = append(lines, "", styles.RenderWarning(
				fmt.Sprintf("Delete %s? Press y to confirm, any other key to cancel.", u.FullName)))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) userActions(u domain.User) string {
	var acts []string
	if domain.CanApprove(u) {
		acts = append(acts, "a")
	}
	if domain.CanReject(u) {
		acts = append(acts, "r")
	}
	if domain.CanDelete(m.actor, u) {
		acts = append(acts, "d")
	}
	return strings.Join(acts, " ")
}

// =============================================================================
// BULLETINS TAB
// =============================================================================

func (m Model) renderBulletins(width int) string {
	inner := width - 4
	var parts []string

	if m.composing {
		form := m.titleInput.View() + "\n" + m.messageInput.View() + "\n" +
			m.theme.Muted.Render(fmt.Sprintf("%d/%d  %d/%d characters",
				len([]rune(m.titleInput.Value())), domain.MaxBulletinTitle,
				len([]rune(m.messageInput.Value())), domain.MaxBulletinMessage))
		parts = append(parts, m.card("New Bulletin", form, inner), "")
	}

	if len(m.bulletins) == 0 {
		parts = append(parts, m.theme.Muted.Render("No active bulletins"))
		return strings.Join(parts, "\n")
	}

	for i, b := range m.bulletins {
		title := b.Title
		if i == m.bulletinCursor && !m.composing {
			title = m.theme.TableSelected.Render(" " + title + " ")
		} else {
			title = m.theme.Value.Render(title)
		}
		body := title + "\n" +
			lipgloss.NewStyle().Width(inner-4).Render(b.Message) + "\n" +
			m.theme.Muted.Render(components.RelativeTime(b.CreatedAt, m.now()))
		parts = append(parts, m.theme.Card.Width(inner).Render(body))
	}
	return strings.Join(parts, "\n")
}

// =============================================================================
// PM TAB
// =============================================================================

func (m Model) renderPM(width int) string {
	counts := m.schedule.Counts()
	heading := m.theme.CardTitle.Render("< " + m.schedule.Title() + " >")
	summary := fmt.Sprintf("%s %d   %s %d   %s %d",
		m.theme.Status("Completed"), counts.Completed,
		lipgloss.NewStyle().Bold(true).Foreground(styles.Rose).Render("Missed"), counts.Missed,
		lipgloss.NewStyle().Bold(true).Foreground(styles.Brand).Render("Upcoming"), counts.Upcoming)

	tasks := m.schedule.Tasks()
	if len(tasks) == 0 {
		return heading + "\n" + summary + "\n\n" + m.theme.Muted.Render("No maintenance scheduled this month")
	}

	t := components.NewTable([]components.Column{
		{Title: "Date", Width: 8},
		{Title: "Task", Width: 0},
		{Title: "Section", Width: 10},
		{Title: "Status", Width: 10},
	}, m.tableStyles())
	for _, task := range tasks {
		t.Rows = append(t.Rows, []string{
			task.Date.Format("Jan 2"),
			task.Title,
			string(task.Section),
			string(task.Status),
		})
	}
	t.Cell = func(_, c int, value string) (lipgloss.Style, bool) {
		if c != 3 {
			return lipgloss.Style{}, false
		}
		color := styles.Brand
		switch domain.PMStatus(value) {
		case domain.PMCompleted:
			color = styles.Emerald
		case domain.PMMissed:
			color = styles.Rose
		}
		return lipgloss.NewStyle().Foreground(color), true
	}
	return heading + "\n" + summary + "\n\n" + t.Render(width-2)
}

// =============================================================================
// TOOLS TAB
// =============================================================================

func (m Model) renderTools(width int) string {
	available, soon := domain.ToolsFor(m.actor.Role)

	tile := func(title string, muted bool) string {
		st := m.theme.Card.Width(22)
		if muted {
			return st.Render(m.theme.Muted.Render(title + "\nComing soon"))
		}
		return st.Render(m.theme.Value.Render(title))
	}

	perRow := (width - 2) / 25
	if perRow < 1 {
		perRow = 1
	}
	grid := func(tools []domain.Tool, muted bool) string {
		var rows []string
		for i := 0; i < len(tools); i += perRow {
			end := i + perRow
			if end > len(tools) {
				end = len(tools)
			}
			tiles := make([]string, 0, perRow)
			for _, tool := range tools[i:end] {
				tiles = append(tiles, tile(tool.Title, muted), " ")
			}
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, tiles...))
		}
		return strings.Join(rows, "\n")
	}

	out := grid(available, false)
	if len(soon) > 0 {
		out += "\n" + grid(soon, true)
	}
	return out
}

// =============================================================================
// NOTIFICATIONS DROPDOWN
// =============================================================================

func (m Model) renderNotifications() string {
	inner := notificationWidth - 4
	lines := []string{m.theme.CardTitle.Render("Notifications")}

	n := m.visibleNotifications()
	if n == 0 {
		lines = append(lines, m.theme.Muted.Render("No notifications"))
	}
	for i, item := range m.notifications[:n] {
		marker := "  "
		if !item.IsRead {
			marker = lipgloss.NewStyle().Foreground(notificationColor(item.Kind)).Render("● ")
		}
		title := util.Truncate(item.Title, inner-2)
		if i == m.notifCursor {
			title = m.theme.TableSelected.Render(title)
		} else {
			title = m.theme.Value.Render(title)
		}
		lines = append(lines,
			marker+title,
			"  "+m.theme.Muted.Render(util.Truncate(item.Message, inner-2)),
			"  "+m.theme.Timestamp.Render(components.RelativeTime(item.CreatedAt, m.now())),
		)
	}
	lines = append(lines, "", m.theme.Help.Render("v view all • enter mark read • esc close"))

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Brand).
		Background(styles.SurfaceDim).
		Padding(0, 1).
		Width(notificationWidth - 2).
		Render(strings.Join(lines, "\n"))
}

func notificationColor(kind domain.NotificationKind) lipgloss.AdaptiveColor {
	switch kind {
	case domain.NotifyDanger:
		return styles.Rose
	case domain.NotifyWarning:
		return styles.Amber
	default:
		return styles.Brand
	}
}

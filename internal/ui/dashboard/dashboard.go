// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard provides the root Bubble Tea model of the NUMS admin
// dashboard: header, tabs, the export action, toasts and the assistant
// panel overlay.
package dashboard

import (
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/nums-tui/internal/domain"
	"github.com/jeranaias/nums-tui/internal/export"
	"github.com/jeranaias/nums-tui/internal/store"
	"github.com/jeranaias/nums-tui/internal/ui/components"
	"github.com/jeranaias/nums-tui/internal/ui/panel"
	"github.com/jeranaias/nums-tui/internal/ui/styles"
)

// =============================================================================
// TABS
// =============================================================================

// Tab identifies a dashboard tab.
type Tab int

const (
	TabOverview Tab = iota
	TabUsers
	TabBulletins
	TabPM
	TabTools
	tabCount
)

var tabTitles = [...]string{
	TabOverview:  "Overview",
	TabUsers:     "User Management",
	TabBulletins: "Bulletin Board",
	TabPM:        "PM Scheduler",
	TabTools:     "Tools",
}

func (t Tab) String() string {
	if t < 0 || t >= tabCount {
		return "Unknown"
	}
	return tabTitles[t]
}

// HeaderNotificationLimit is how many notifications the header counts.
const HeaderNotificationLimit = 10

// requestTimeout bounds every backend call made by the dashboard.
const requestTimeout = 15 * time.Second

// =============================================================================
// DASHBOARD MODEL
// =============================================================================

// Model is the root Bubble Tea model.
type Model struct {
	store  *store.Store
	actor  domain.Actor
	theme  *styles.Theme
	logger *slog.Logger
	now    func() time.Time
	export export.Options

	keys   KeyMap
	panel  panel.Model
	toasts *components.ToastManager

	width  int
	height int
	tab    Tab

	// Loaded data
	overview      store.Overview
	users         []domain.User
	bulletins     []domain.Bulletin
	notifications []domain.Notification
	stale         map[Tab]time.Time
	loaded        map[Tab]bool

	// Overview
	yardCursor int

	// Users
	userCursor    int
	search        textinput.Model
	searching     bool
	roleFilter    domain.Role
	confirmDelete string

	// Bulletins
	bulletinCursor int
	composing      bool
	titleInput     textinput.Model
	messageInput   textinput.Model

	// PM scheduler
	schedule *domain.Schedule

	// Notifications dropdown
	showNotifications bool
	notifCursor       int

	exporting    bool
	toastTicking bool
	quitting     bool
}

// Option configures the dashboard.
type Option func(*Model)

// WithClock sets the time source used for toasts and relative times.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// WithExportOptions sets the export destination and format.
func WithExportOptions(opts export.Options) Option {
	return func(m *Model) { m.export = opts }
}

// New creates the dashboard for actor. The dashboard takes ownership of
// the assistant panel and closes it on quit.
func New(theme *styles.Theme, st *store.Store, actor domain.Actor, p panel.Model, opts ...Option) Model {
	search := textinput.New()
	search.Prompt = "Search: "
	search.Placeholder = "name or company ID"
	search.CharLimit = 64

	title := textinput.New()
	title.Prompt = "Title:   "
	title.Placeholder = "Bulletin title"
	title.CharLimit = domain.MaxBulletinTitle

	message := textinput.New()
	message.Prompt = "Message: "
	message.Placeholder = "Bulletin message"
	message.CharLimit = domain.MaxBulletinMessage

	m := Model{
		store:        st,
		actor:        actor,
		theme:        theme,
		logger:       slog.Default(),
		now:          time.Now,
		export:       *export.DefaultOptions(),
		keys:         DefaultKeyMap(),
		panel:        p,
		toasts:       components.NewToastManager(),
		stale:        make(map[Tab]time.Time),
		loaded:       make(map[Tab]bool),
		search:       search,
		titleInput:   title,
		messageInput: message,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.toasts.SetClock(m.now)
	m.schedule = domain.NewSchedule(domain.SampleTasks, m.now())
	m.logger = m.logger.With("component", "dashboard")
	return m
}

// Tab returns the active tab.
func (m Model) Tab() Tab { return m.tab }

// Panel returns the assistant panel.
func (m Model) Panel() panel.Model { return m.panel }

// Toasts returns the toast manager.
func (m Model) Toasts() *components.ToastManager { return m.toasts }

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init loads every dataset and starts the assistant panel.
func (m Model) Init() tea.Cmd {
	if !m.actor.IsAdmin() {
		return nil
	}
	return tea.Batch(
		m.panel.Init(),
		m.loadOverview(),
		m.loadUsers(),
		m.loadBulletins(),
		m.loadNotifications(),
	)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		var cmd tea.Cmd
		m.panel, cmd = m.panel.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case RefreshMsg:
		return m, m.refreshAll()

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.panel, cmd = m.panel.Update(msg)
		return m, cmd

	case overviewMsg:
		if m.loadFailed(TabOverview, msg.err, "Failed to load plant data") {
			return m, m.toastTick()
		}
		m.overview = msg.overview
		m.yardCursor = clampCursor(m.yardCursor, len(m.overview.Yards))
		return m, nil

	case usersMsg:
		if m.loadFailed(TabUsers, msg.err, "Failed to load users") {
			return m, m.toastTick()
		}
		m.users = msg.users
		m.userCursor = clampCursor(m.userCursor, len(m.filteredUsers()))
		return m, nil

	case bulletinsMsg:
		if m.loadFailed(TabBulletins, msg.err, "Failed to load bulletins") {
			return m, m.toastTick()
		}
		m.bulletins = msg.bulletins
		m.bulletinCursor = clampCursor(m.bulletinCursor, len(m.bulletins))
		return m, nil

	case notificationsMsg:
		if msg.err != nil && !store.IsStale(msg.err) {
			m.logger.Warn("notifications unavailable", "error", msg.err)
			return m, nil
		}
		m.notifications = msg.items
		m.notifCursor = clampCursor(m.notifCursor, m.visibleNotifications())
		return m, nil

	case actionMsg:
		var cmds []tea.Cmd
		if msg.toast != nil {
			m.toasts.AddToast(*msg.toast)
			cmds = append(cmds, m.toastTick())
		}
		for _, d := range msg.reload {
			cmds = append(cmds, m.reload(d))
		}
		return m, tea.Batch(cmds...)

	case exportMsg:
		m.exporting = false
		if msg.err != nil {
			m.logger.Error("export failed", "error", msg.err)
			m.toasts.Error("Export Failed", "There was an error exporting the data")
		} else {
			m.logger.Info("export complete", "files", msg.result.Files, "skipped", msg.result.Skipped)
			m.toasts.Success("Export Complete", exportDescription(m.export.Format))
		}
		return m, m.toastTick()

	case components.ToastTickMsg:
		if len(m.toasts.TickToasts()) == 0 {
			m.toastTicking = false
			return m, nil
		}
		return m, components.ToastTickCmd()
	}

	// Ticks, replies and blinks belong to the panel or the focused input.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.panel, cmd = m.panel.Update(msg)
	cmds = append(cmds, cmd)
	switch {
	case m.searching:
		m.search, cmd = m.search.Update(msg)
		cmds = append(cmds, cmd)
	case m.composing:
		m.titleInput, cmd = m.titleInput.Update(msg)
		cmds = append(cmds, cmd)
		m.messageInput, cmd = m.messageInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// loadFailed records the outcome of a load. It returns true when nothing
// usable arrived; stale snapshots still count as data.
func (m *Model) loadFailed(tab Tab, err error, description string) bool {
	m.loaded[tab] = true
	if err == nil {
		delete(m.stale, tab)
		return false
	}
	var stale *store.StaleError
	if errors.As(err, &stale) {
		m.stale[tab] = stale.FetchedAt
		return false
	}
	m.logger.Warn("load failed", "tab", tab.String(), "error", err)
	m.toasts.Error("Error", description)
	return true
}

// toastTick starts the toast expiry ticker unless it already runs.
func (m *Model) toastTick() tea.Cmd {
	if m.toastTicking {
		return nil
	}
	m.toastTicking = true
	return components.ToastTickCmd()
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.panel.Close()
	return m, tea.Quit
}

func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

func exportDescription(format string) string {
	if format == export.FormatXLSX {
		return "Data has been exported to an Excel workbook"
	}
	return "Data has been exported to CSV files"
}

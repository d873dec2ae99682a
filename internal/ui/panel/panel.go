// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package panel provides the floating NUMI assistant panel.
//
// The panel is Collapsed (an avatar in the bottom-right corner) or
// Expanded (header, message list, input row). In the regular layout the
// header doubles as a drag handle; in the compact layout the panel is a
// full-width bottom sheet and dragging is off.
package panel

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/jeranaias/nums-tui/internal/assistant"
	"github.com/jeranaias/nums-tui/internal/ui/components"
	"github.com/jeranaias/nums-tui/internal/ui/drag"
	"github.com/jeranaias/nums-tui/internal/ui/layout"
	"github.com/jeranaias/nums-tui/internal/ui/styles"
)

// =============================================================================
// PANEL STATE
// =============================================================================

// State is the presentation state of the panel.
type State int

const (
	Collapsed State = iota
	Expanded
)

func (s State) String() string {
	if s == Expanded {
		return "expanded"
	}
	return "collapsed"
}

// Panel geometry in terminal cells.
const (
	panelWidth   = 46
	panelHeight  = 22
	sheetMinRows = 10
	screenMargin = 2
)

// =============================================================================
// KEY BINDINGS
// =============================================================================

// KeyMap defines the panel key bindings.
type KeyMap struct {
	Open       key.Binding
	Close      key.Binding
	Submit     key.Binding
	Suggest    key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
}

// DefaultKeyMap returns the default panel bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Open: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("ctrl+a", "assistant"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Suggest: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "suggestion"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
	}
}

// =============================================================================
// PANEL MODEL
// =============================================================================

// Model is the Bubble Tea model for the assistant panel.
type Model struct {
	state State
	keys  KeyMap
	theme *styles.Theme

	session    *assistant.Session
	rotator    *assistant.Rotator
	classifier *layout.Classifier
	drag       *drag.Controller
	markdown   *components.Markdown

	// Screen size in cells
	width  int
	height int
	placed bool

	cellWidth   int
	rotateEvery time.Duration

	viewport   viewport.Model
	input      textinput.Model
	suggestion int

	// gen invalidates rotation ticks scheduled before the last open/close.
	gen         int
	typing      bool
	typingFrame int

	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a panel.
type Option func(*Model)

// WithRotator sets the placeholder rotator.
func WithRotator(r *assistant.Rotator) Option {
	return func(m *Model) { m.rotator = r }
}

// WithClassifier sets the viewport classifier.
func WithClassifier(c *layout.Classifier) Option {
	return func(m *Model) { m.classifier = c }
}

// WithRotateInterval sets how often the input hint changes.
func WithRotateInterval(d time.Duration) Option {
	return func(m *Model) { m.rotateEvery = d }
}

// WithCellWidth sets the pixel width of one terminal column.
func WithCellWidth(px int) Option {
	return func(m *Model) { m.cellWidth = px }
}

// WithMarkdown renders assistant replies as markdown.
func WithMarkdown(md *components.Markdown) Option {
	return func(m *Model) { m.markdown = md }
}

// WithKeyMap replaces the default bindings.
func WithKeyMap(k KeyMap) Option {
	return func(m *Model) { m.keys = k }
}

// New creates a collapsed panel for session. The panel takes ownership
// of the session and closes it in Close.
func New(theme *styles.Theme, session *assistant.Session, opts ...Option) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 500

	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		state:       Collapsed,
		keys:        DefaultKeyMap(),
		theme:       theme,
		session:     session,
		drag:        drag.NewController(drag.Point{}),
		cellWidth:   layout.DefaultCellWidth,
		rotateEvery: 3 * time.Second,
		viewport:    viewport.New(panelWidth-2, panelHeight-7),
		input:       ti,
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.rotator == nil {
		m.rotator = assistant.NewRotator()
	}
	if m.classifier == nil {
		m.classifier = layout.NewClassifier(nil, layout.DefaultThreshold)
	}
	m.drag.SetDisabled(m.classifier.Compact())
	m.input.Placeholder = m.rotator.Current()
	return m
}

// State returns the presentation state.
func (m Model) State() State { return m.state }

// Expanded reports whether the panel is open.
func (m Model) Expanded() bool { return m.state == Expanded }

// Compact reports whether the compact layout is active.
func (m Model) Compact() bool { return m.classifier.Compact() }

// Position returns the logical panel origin. It may lie off screen.
func (m Model) Position() drag.Point { return m.drag.Position() }

// Dragging reports whether a drag is in progress.
func (m Model) Dragging() bool { return m.drag.Dragging() }

// Placeholder returns the current input hint.
func (m Model) Placeholder() string { return m.input.Placeholder }

// Keys returns the panel bindings.
func (m Model) Keys() KeyMap { return m.keys }

// Session returns the assistant session.
func (m Model) Session() *assistant.Session { return m.session }

// Close releases the panel: rotation ticks stop, the reply listener
// exits and pending replies are cancelled.
func (m Model) Close() {
	m.cancel()
	m.session.Close()
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panel

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/nums-tui/internal/assistant"
	"github.com/jeranaias/nums-tui/internal/model"
	"github.com/jeranaias/nums-tui/internal/ui/drag"
	"github.com/jeranaias/nums-tui/internal/ui/layout"
	"github.com/jeranaias/nums-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// ReplyMsg carries an assistant reply that was appended to the conversation.
type ReplyMsg struct {
	Message model.Message
}

// rotateMsg advances the input hint. Ticks from an older generation are
// dropped.
type rotateMsg struct {
	gen int
}

// typingMsg animates the typing indicator while replies are pending.
type typingMsg struct{}

// =============================================================================
// COMMANDS
// =============================================================================

// listen waits for the next reply. It yields nil once the panel is closed.
func (m Model) listen() tea.Cmd {
	replies := m.session.Replies()
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-replies:
			return ReplyMsg{Message: msg}
		}
	}
}

func (m Model) rotateCmd() tea.Cmd {
	if m.rotateEvery <= 0 {
		return nil
	}
	gen := m.gen
	return tea.Tick(m.rotateEvery, func(time.Time) tea.Msg {
		return rotateMsg{gen: gen}
	})
}

func typingCmd() tea.Cmd {
	return tea.Tick(styles.TypingDots.Duration(), func(time.Time) tea.Msg {
		return typingMsg{}
	})
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the reply listener.
func (m Model) Init() tea.Cmd {
	return m.listen()
}

// Update handles messages and updates the panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case ReplyMsg:
		m.refresh()
		return m, m.listen()

	case rotateMsg:
		if msg.gen != m.gen || m.state != Expanded {
			return m, nil
		}
		m.input.Placeholder = m.rotator.Next()
		return m, m.rotateCmd()

	case typingMsg:
		if m.session.Pending() == 0 || m.ctx.Err() != nil {
			m.typing = false
			return m, nil
		}
		m.typingFrame++
		return m, typingCmd()
	}

	if m.state == Expanded {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	compact := m.classifier.Observe(layout.ColumnsToPixels(msg.Width, m.cellWidth))
	m.drag.SetDisabled(compact)

	if !m.placed && msg.Width > 0 && msg.Height > 0 {
		w, h := m.panelSize()
		x := msg.Width - w - screenMargin
		y := msg.Height - h - screenMargin
		if x < 0 {
			x = 0
		}
		if y < 0 {
			y = 0
		}
		m.drag.SetPosition(drag.Point{X: x, Y: y})
		m.placed = true
	}

	m.resizeContents()
	m.refresh()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.state == Collapsed {
		if key.Matches(msg, m.keys.Open) {
			return m.open()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Close), key.Matches(msg, m.keys.Open):
		return m.close(), nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Suggest):
		m.input.SetValue(assistant.Suggestions[m.suggestion])
		m.input.CursorEnd()
		m.suggestion = (m.suggestion + 1) % len(assistant.Suggestions)
		return m, nil

	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	p := drag.Point{X: msg.X, Y: msg.Y}

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			return m.handlePress(p)
		case tea.MouseButtonWheelUp:
			if m.state == Expanded && m.panelRect().contains(p) {
				m.viewport.LineUp(3)
			}
		case tea.MouseButtonWheelDown:
			if m.state == Expanded && m.panelRect().contains(p) {
				m.viewport.LineDown(3)
			}
		}
		return m, nil

	case tea.MouseActionMotion:
		m.drag.Move(p)
		return m, nil

	case tea.MouseActionRelease:
		m.drag.Release()
		return m, nil
	}
	return m, nil
}

func (m Model) handlePress(p drag.Point) (Model, tea.Cmd) {
	if m.state == Collapsed {
		if m.avatarRect().contains(p) {
			return m.open()
		}
		return m, nil
	}
	if m.closeRect().contains(p) {
		return m.close(), nil
	}
	if m.handleRect().contains(p) && !m.Compact() {
		// Grab the panel where it is drawn, not where it was left.
		r := m.panelRect()
		m.drag.SetPosition(drag.Point{X: r.x, Y: r.y})
		m.drag.Press(p, true)
	}
	return m, nil
}

// =============================================================================
// TRANSITIONS
// =============================================================================

func (m Model) open() (Model, tea.Cmd) {
	m.state = Expanded
	m.gen++
	m.input.Focus()
	m.refresh()
	return m, tea.Batch(textinput.Blink, m.rotateCmd())
}

func (m Model) close() Model {
	m.state = Collapsed
	m.gen++
	m.input.Blur()
	m.drag.Release()
	return m
}

func (m Model) submit() (Model, tea.Cmd) {
	if !m.session.Submit(m.input.Value()) {
		return m, nil
	}
	m.input.SetValue("")
	m.refresh()
	if m.typing {
		return m, nil
	}
	m.typing = true
	return m, typingCmd()
}

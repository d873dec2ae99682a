// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panel

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/nums-tui/internal/assistant"
	"github.com/jeranaias/nums-tui/internal/model"
	"github.com/jeranaias/nums-tui/internal/ui/components"
	"github.com/jeranaias/nums-tui/internal/ui/drag"
	"github.com/jeranaias/nums-tui/internal/ui/styles"
	"github.com/jeranaias/nums-tui/internal/util"
)

// =============================================================================
// GEOMETRY
// =============================================================================

// rect is a screen region in cells.
type rect struct {
	x, y, w, h int
}

func (r rect) contains(p drag.Point) bool {
	return p.X >= r.x && p.X < r.x+r.w && p.Y >= r.y && p.Y < r.y+r.h
}

const (
	avatarLabel = "NUMI"
	closeLabel  = "[x]"
)

// panelSize returns the outer size of the expanded panel.
func (m Model) panelSize() (int, int) {
	if m.Compact() {
		h := m.height * 2 / 3
		if h < sheetMinRows {
			h = sheetMinRows
		}
		if m.height > 0 && h > m.height {
			h = m.height
		}
		return m.width, h
	}
	w, h := panelWidth, panelHeight
	if m.width > 0 && w > m.width {
		w = m.width
	}
	if m.height > 0 && h > m.height {
		h = m.height
	}
	return w, h
}

// innerSize returns the area inside the panel border.
func (m Model) innerSize() (int, int) {
	w, h := m.panelSize()
	if m.Compact() {
		return w, h - 1
	}
	return w - 2, h - 2
}

// panelRect is where the expanded panel is drawn. The logical position
// is never clamped; only its rendering is kept on screen.
func (m Model) panelRect() rect {
	w, h := m.panelSize()
	if m.Compact() {
		return rect{x: 0, y: m.height - h, w: w, h: h}
	}
	pos := m.drag.Position()
	return rect{x: clamp(pos.X, 0, m.width-w), y: clamp(pos.Y, 0, m.height-h), w: w, h: h}
}

// handleRect is the draggable header, border included.
func (m Model) handleRect() rect {
	r := m.panelRect()
	return rect{x: r.x, y: r.y, w: r.w, h: 2}
}

// closeRect is the close mark at the right end of the header.
func (m Model) closeRect() rect {
	r := m.panelRect()
	w := util.Width(closeLabel) + 2
	return rect{x: r.x + r.w - w - 1, y: r.y + 1, w: w, h: 1}
}

func (m Model) avatarRect() rect {
	w := util.Width(avatarLabel) + 2
	return rect{x: m.width - w - screenMargin, y: m.height - 1 - screenMargin, w: w, h: 1}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// =============================================================================
// CONTENT
// =============================================================================

// Rows taken by everything but the message list: header, typing line,
// suggestions and the input row with its separator.
const chromeRows = 5

func (m *Model) resizeContents() {
	iw, ih := m.innerSize()
	vh := ih - chromeRows
	if vh < 1 {
		vh = 1
	}
	m.viewport.Width = iw
	m.viewport.Height = vh
	m.input.Width = iw - 4
}

// refresh re-renders the message list and scrolls to the newest message.
func (m *Model) refresh() {
	iw, _ := m.innerSize()
	m.viewport.SetContent(m.renderMessages(iw))
	m.viewport.GotoBottom()
}

func (m Model) renderMessages(width int) string {
	if width < 8 {
		width = 8
	}
	bubbleWidth := width * 4 / 5

	msgs := m.session.Conversation().List()
	blocks := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		blocks = append(blocks, m.renderMessage(msg, width, bubbleWidth))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderMessage(msg model.Message, width, bubbleWidth int) string {
	meta := m.theme.Sender.Render(msg.Role.DisplayName()) + " " +
		m.theme.Timestamp.Render(msg.FormatTime())

	if msg.IsUser() {
		text := msg.Text
		if tw := util.Width(text) + 2; tw < bubbleWidth {
			bubbleWidth = tw
		}
		bubble := m.theme.UserBubble.Width(bubbleWidth).Render(text)
		block := lipgloss.JoinVertical(lipgloss.Right, meta, bubble)
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, block)
	}

	text := msg.Text
	if m.markdown != nil {
		text = m.markdown.Render(text, bubbleWidth-2)
	}
	bubble := m.theme.AssistantBubble.Width(bubbleWidth).Render(text)
	return lipgloss.JoinVertical(lipgloss.Left, meta, bubble)
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the avatar or the expanded panel on its own.
func (m Model) View() string {
	if m.state == Collapsed {
		return m.theme.Avatar.Render(avatarLabel)
	}
	return m.renderPanel()
}

func (m Model) renderPanel() string {
	iw, ih := m.innerSize()

	title := m.theme.PanelTitle.Render("NUMI Assistant")
	closeMark := m.theme.PanelClose.Render(closeLabel)
	gap := iw - 2 - lipgloss.Width(title) - lipgloss.Width(closeMark)
	if gap < 1 {
		gap = 1
	}
	header := m.theme.PanelHeader.Width(iw).Render(title + strings.Repeat(" ", gap) + closeMark)

	typing := ""
	if m.session.Pending() > 0 {
		typing = m.theme.Typing.Render("NUMI is typing" + styles.TypingDots.Frame(m.typingFrame))
	}

	var chips []string
	used := 0
	for _, s := range assistant.Suggestions {
		chip := m.theme.Suggestion.Render(util.Truncate(s, iw-2))
		if used > 0 && used+1+lipgloss.Width(chip) > iw {
			break
		}
		chips = append(chips, chip)
		used += lipgloss.Width(chip) + 1
	}
	suggestions := strings.Join(chips, " ")

	input := m.theme.InputBox.Width(iw).Render(m.input.View())

	body := lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		typing,
		suggestions,
		input,
	)
	body = lipgloss.NewStyle().Width(iw).Height(ih).MaxHeight(ih).Render(body)

	if m.Compact() {
		return m.theme.PanelCompact.Render(body)
	}
	return m.theme.Panel.Render(body)
}

// Overlay draws the panel, or the avatar when collapsed, on top of bg.
func (m Model) Overlay(bg string) string {
	if m.state == Collapsed {
		r := m.avatarRect()
		return components.PlaceOverlay(r.x, r.y, m.View(), bg)
	}
	r := m.panelRect()
	return components.PlaceOverlay(r.x, r.y, m.View(), bg)
}

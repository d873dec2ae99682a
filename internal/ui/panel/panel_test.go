// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panel

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/nums-tui/internal/assistant"
	"github.com/jeranaias/nums-tui/internal/model"
	"github.com/jeranaias/nums-tui/internal/ui/drag"
	"github.com/jeranaias/nums-tui/internal/ui/styles"
)

var epoch = time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)

// newTestPanel returns a panel sized to cols x 40 cells.
func newTestPanel(t *testing.T, cols int) (Model, *assistant.ManualClock) {
	t.Helper()
	clock := assistant.NewManualClock(epoch)
	session := assistant.NewSession(assistant.WithClock(clock))
	m := New(styles.NewThemeForMode(styles.ModeDark), session, WithRotateInterval(time.Second))
	t.Cleanup(m.Close)
	m, _ = m.Update(tea.WindowSizeMsg{Width: cols, Height: 40})
	return m, clock
}

func press(m Model, kt tea.KeyType) Model {
	m, _ = m.Update(tea.KeyMsg{Type: kt})
	return m
}

// click, motion and release build mouse events the way bubbletea parses
// SGR input: motion with the left button held reports as MouseLeft.
func click(m Model, x, y int) Model {
	m, _ = m.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft, Type: tea.MouseLeft})
	return m
}

func motion(m Model, x, y int) Model {
	m, _ = m.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft, Type: tea.MouseLeft})
	return m
}

func release(m Model, x, y int) Model {
	m, _ = m.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonNone, Type: tea.MouseRelease})
	return m
}

// =============================================================================
// STATE MACHINE
// =============================================================================

func TestPanel_StartsCollapsedBottomRight(t *testing.T) {
	m, _ := newTestPanel(t, 120)
	assert.Equal(t, Collapsed, m.State())
	assert.False(t, m.Compact())
	assert.Equal(t, drag.Point{X: 120 - panelWidth - screenMargin, Y: 40 - panelHeight - screenMargin}, m.Position())
}

func TestPanel_OpenCloseKeepsPosition(t *testing.T) {
	m, _ := newTestPanel(t, 120)
	before := m.Position()

	m = press(m, tea.KeyCtrlA)
	require.Equal(t, Expanded, m.State())
	m = press(m, tea.KeyEsc)
	assert.Equal(t, Collapsed, m.State())
	assert.Equal(t, before, m.Position())
}

func TestPanel_AvatarAndCloseClicks(t *testing.T) {
	m, _ := newTestPanel(t, 120)

	// Clicks away from the avatar do nothing.
	m = click(m, 5, 5)
	assert.Equal(t, Collapsed, m.State())

	a := m.avatarRect()
	m = click(m, a.x+1, a.y)
	require.Equal(t, Expanded, m.State())

	c := m.closeRect()
	m = click(m, c.x+1, c.y)
	assert.Equal(t, Collapsed, m.State())
	assert.False(t, m.Dragging())
}

func TestPanel_DragMovesByPointerDelta(t *testing.T) {
	m, _ := newTestPanel(t, 120)
	m = press(m, tea.KeyCtrlA)
	start := m.Position()

	h := m.handleRect()
	from := drag.Point{X: h.x + 3, Y: h.y + 1}
	to := from.Add(drag.Point{X: -10, Y: -5})

	m = click(m, from.X, from.Y)
	require.True(t, m.Dragging())
	m = motion(m, from.X-4, from.Y+2)
	m = motion(m, to.X, to.Y)
	m = release(m, 0, 0)

	assert.False(t, m.Dragging())
	assert.Equal(t, start.Add(to.Sub(from)), m.Position())
}

func TestPanel_PressOutsideHandleDoesNotDrag(t *testing.T) {
	m, _ := newTestPanel(t, 120)
	m = press(m, tea.KeyCtrlA)
	r := m.panelRect()

	m = click(m, r.x+3, r.y+8)
	assert.False(t, m.Dragging())
}

func TestPanel_OffscreenPositionIsKept(t *testing.T) {
	m, _ := newTestPanel(t, 120)
	m = press(m, tea.KeyCtrlA)

	h := m.handleRect()
	m = click(m, h.x+2, h.y)
	m = motion(m, h.x+2+500, h.y-300)
	m = release(m, 0, 0)

	pos := m.Position()
	assert.Greater(t, pos.X, 120)
	assert.Less(t, pos.Y, 0)

	// Drawing stays on screen.
	r := m.panelRect()
	assert.Equal(t, 120-panelWidth, r.x)
	assert.Equal(t, 0, r.y)
}

func TestPanel_RegrabOffscreenMovesFromDrawnPosition(t *testing.T) {
	m, _ := newTestPanel(t, 120)
	m = press(m, tea.KeyCtrlA)

	h := m.handleRect()
	m = click(m, h.x+2, h.y)
	m = motion(m, h.x+2+500, h.y)
	m = release(m, 0, 0)
	require.Greater(t, m.Position().X, 120)

	h = m.handleRect()
	from := drag.Point{X: h.x + 2, Y: h.y}
	m = click(m, from.X, from.Y)
	assert.Equal(t, drag.Point{X: 120 - panelWidth, Y: h.y}, m.Position())

	m = motion(m, from.X-10, from.Y)
	m = release(m, from.X-10, from.Y)
	assert.Equal(t, 120-panelWidth-10, m.panelRect().x)
}

func TestPanel_WheelScrollsMessages(t *testing.T) {
	m, _ := newTestPanel(t, 120)
	m = press(m, tea.KeyCtrlA)
	for i := 0; i < 15; i++ {
		m.input.SetValue("status?")
		m = press(m, tea.KeyEnter)
	}
	require.True(t, m.viewport.AtBottom())

	r := m.panelRect()
	m, _ = m.Update(tea.MouseMsg{X: r.x + 3, Y: r.y + 4, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp, Type: tea.MouseWheelUp})
	assert.False(t, m.viewport.AtBottom())
}

func TestPanel_CompactLayout(t *testing.T) {
	// 96 columns at 8px is exactly 768px.
	m, _ := newTestPanel(t, 96)
	require.True(t, m.Compact())
	m = press(m, tea.KeyCtrlA)
	before := m.Position()

	r := m.panelRect()
	assert.Equal(t, 0, r.x)
	assert.Equal(t, 96, r.w)
	assert.Equal(t, 40, r.y+r.h)

	h := m.handleRect()
	m = click(m, h.x+3, h.y+1)
	assert.False(t, m.Dragging())
	m = motion(m, 10, 10)
	assert.Equal(t, before, m.Position())

	m, _ = m.Update(tea.WindowSizeMsg{Width: 97, Height: 40})
	assert.False(t, m.Compact())
}

func TestPanel_TurningCompactDropsDrag(t *testing.T) {
	m, _ := newTestPanel(t, 120)
	m = press(m, tea.KeyCtrlA)
	h := m.handleRect()
	m = click(m, h.x+3, h.y+1)
	require.True(t, m.Dragging())

	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	assert.True(t, m.Compact())
	assert.False(t, m.Dragging())
}

// =============================================================================
// CONVERSATION
// =============================================================================

func TestPanel_SubmitAndReply(t *testing.T) {
	m, clock := newTestPanel(t, 120)
	m = press(m, tea.KeyCtrlA)
	conv := m.Session().Conversation()

	m.input.SetValue("status?")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd, "typing indicator should start")
	assert.Equal(t, 2, conv.Len())
	assert.Equal(t, model.RoleUser, conv.Last().Role)
	assert.Empty(t, m.input.Value())
	assert.Contains(t, ansi.Strip(m.View()), "NUMI is typing")

	clock.Advance(assistant.DefaultDelay)
	msg := m.listen()()
	reply, ok := msg.(ReplyMsg)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, model.RoleAssistant, reply.Message.Role)

	m, cmd = m.Update(reply)
	assert.NotNil(t, cmd, "listener should re-arm")
	assert.Equal(t, 3, conv.Len())
	assert.True(t, m.viewport.AtBottom())
	assert.Contains(t, ansi.Strip(m.viewport.View()), "I'm ready to help")
}

func TestPanel_BlankSubmitIgnored(t *testing.T) {
	m, clock := newTestPanel(t, 120)
	m = press(m, tea.KeyCtrlA)

	m.input.SetValue("   ")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.Session().Conversation().Len())
	assert.Equal(t, 0, clock.Waiters())
}

func TestPanel_SuggestionsFillInput(t *testing.T) {
	m, _ := newTestPanel(t, 120)
	m = press(m, tea.KeyCtrlA)

	m = press(m, tea.KeyTab)
	assert.Equal(t, "Show today's summary", m.input.Value())
	m = press(m, tea.KeyTab)
	assert.Equal(t, "Check alerts", m.input.Value())
}

func TestPanel_TypingGoesToInputOnlyWhenExpanded(t *testing.T) {
	m, _ := newTestPanel(t, 120)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hi")})
	assert.Empty(t, m.input.Value())

	m = press(m, tea.KeyCtrlA)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hi")})
	assert.Equal(t, "hi", m.input.Value())
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

func TestPanel_RotationTicksFollowGeneration(t *testing.T) {
	m, _ := newTestPanel(t, 120)
	assert.Equal(t, assistant.Placeholders[0], m.Placeholder())

	m = press(m, tea.KeyCtrlA)
	openGen := m.gen
	m, cmd := m.Update(rotateMsg{gen: openGen})
	assert.NotNil(t, cmd)
	assert.Equal(t, assistant.Placeholders[1], m.Placeholder())

	m = press(m, tea.KeyEsc)
	m, cmd = m.Update(rotateMsg{gen: openGen})
	assert.Nil(t, cmd)
	m, _ = m.Update(rotateMsg{gen: m.gen})
	assert.Equal(t, assistant.Placeholders[1], m.Placeholder())
}

func TestPanel_CloseStopsListener(t *testing.T) {
	m, clock := newTestPanel(t, 120)
	m = press(m, tea.KeyCtrlA)
	m.input.SetValue("late?")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	m.Close()
	assert.Nil(t, m.listen()())
	assert.Equal(t, 0, m.Session().Pending())

	clock.Advance(time.Hour)
	assert.Equal(t, 2, m.Session().Conversation().Len())

	m, cmd := m.Update(typingMsg{})
	assert.Nil(t, cmd)
}

// =============================================================================
// RENDERING
// =============================================================================

func TestPanel_Overlay(t *testing.T) {
	m, _ := newTestPanel(t, 120)
	bg := strings.TrimSuffix(strings.Repeat(strings.Repeat(" ", 120)+"\n", 40), "\n")

	lines := strings.Split(ansi.Strip(m.Overlay(bg)), "\n")
	require.Len(t, lines, 40)
	assert.Contains(t, lines[m.avatarRect().y], avatarLabel)

	m = press(m, tea.KeyCtrlA)
	out := ansi.Strip(m.Overlay(bg))
	lines = strings.Split(out, "\n")
	r := m.panelRect()
	assert.Contains(t, lines[r.y+1], "NUMI Assistant")
	assert.Contains(t, lines[r.y+1], closeLabel)
	assert.Contains(t, out, "Hi! I'm NUMI")
}

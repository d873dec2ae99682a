// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// DASHBOARD STYLES
	// ==========================================================================

	App            lipgloss.Style
	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style
	Welcome        lipgloss.Style
	Tab            lipgloss.Style
	TabActive      lipgloss.Style
	Card           lipgloss.Style
	CardTitle      lipgloss.Style
	Label          lipgloss.Style
	Value          lipgloss.Style
	Muted          lipgloss.Style
	TableHeader    lipgloss.Style
	TableCell      lipgloss.Style
	TableSelected  lipgloss.Style
	Footer         lipgloss.Style
	Help           lipgloss.Style
	Stale          lipgloss.Style

	// ==========================================================================
	// ASSISTANT PANEL STYLES
	// ==========================================================================

	Avatar          lipgloss.Style
	Panel           lipgloss.Style
	PanelCompact    lipgloss.Style
	PanelHeader     lipgloss.Style
	PanelTitle      lipgloss.Style
	PanelClose      lipgloss.Style
	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	Sender          lipgloss.Style
	Timestamp       lipgloss.Style
	InputBox        lipgloss.Style
	Suggestion      lipgloss.Style
	Typing          lipgloss.Style
}

// Theme modes accepted by NewThemeForMode.
const (
	ModeAuto  = "auto"
	ModeLight = "light"
	ModeDark  = "dark"
)

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	return NewThemeForMode(ModeAuto)
}

// NewThemeForMode creates a theme, forcing a light or dark palette unless
// mode is "auto".
func NewThemeForMode(mode string) *Theme {
	colorProfile := termenv.ColorProfile()
	isDark := termenv.HasDarkBackground()
	switch mode {
	case ModeLight:
		isDark = false
		lipgloss.SetHasDarkBackground(false)
	case ModeDark:
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	}

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle()

	// Header
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Brand).
		Padding(0, 2)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextInverse).
		Italic(true)

	t.Welcome = lipgloss.NewStyle().
		Bold(true).
		Foreground(Brand).
		Padding(1, 2, 0, 2)

	// Tabs
	t.Tab = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 2)

	t.TabActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Brand).
		Padding(0, 2)

	// Cards
	t.Card = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.CardTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Brand)

	t.Label = lipgloss.NewStyle().Foreground(TextSecondary)
	t.Value = lipgloss.NewStyle().Bold(true).Foreground(TextPrimary)
	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)

	// Tables
	t.TableHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay)

	t.TableCell = lipgloss.NewStyle().Foreground(TextPrimary)

	t.TableSelected = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Brand)

	// Footer
	t.Footer = lipgloss.NewStyle().
		Foreground(TextMuted).
		Align(lipgloss.Center)

	t.Help = lipgloss.NewStyle().Foreground(TextMuted)

	t.Stale = lipgloss.NewStyle().
		Foreground(Amber).
		Italic(true)

	// Assistant panel
	t.Avatar = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Teal).
		Padding(0, 1)

	t.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Teal).
		Background(SurfaceBright)

	t.PanelCompact = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Teal).
		Background(SurfaceBright)

	t.PanelHeader = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(TealDeep).
		Padding(0, 1)

	t.PanelTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse)

	t.PanelClose = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		Padding(0, 1)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		Background(AssistantBubbleBg).
		Padding(0, 1)

	t.Sender = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.InputBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay)

	t.Suggestion = lipgloss.NewStyle().
		Foreground(Teal).
		Background(Overlay).
		Padding(0, 1)

	t.Typing = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)
}

// Badge renders a role badge.
func (t *Theme) Badge(role string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(RoleColor(role)).
		Padding(0, 1).
		Render(role)
}

// Status renders a status word in its color.
func (t *Theme) Status(status string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(StatusColor(status)).
		Render(status)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN
// =============================================================================

// Markdown renders assistant replies with glamour. Renderers are built
// lazily and cached per wrap width.
type Markdown struct {
	style     string
	mu        sync.Mutex
	renderers map[int]*glamour.TermRenderer
}

// NewMarkdown creates a renderer using a glamour standard style
// ("dark", "light", "notty"). Unknown styles fall back to "dark".
func NewMarkdown(style string) *Markdown {
	switch style {
	case "dark", "light", "notty":
	default:
		style = "dark"
	}
	return &Markdown{style: style, renderers: make(map[int]*glamour.TermRenderer)}
}

func (m *Markdown) renderer(width int) *glamour.TermRenderer {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.renderers[width]; ok {
		return r
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	m.renderers[width] = r
	return r
}

// Render formats text for the given width. Plain text is returned when
// glamour fails.
func (m *Markdown) Render(text string, width int) string {
	if width < 10 {
		width = 10
	}
	r := m.renderer(width)
	if r == nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		percent float64
		want    string
	}{
		{"zero width", 0, 50, ""},
		{"empty", 10, 0, "----------"},
		{"full", 10, 100, "##########"},
		{"over", 4, 250, "####"},
		{"under", 4, -5, "----"},
		{"salt low", 20, 35, "#######-------------"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderProgressBar(tt.width, tt.percent)
			if got != tt.want {
				t.Errorf("RenderProgressBar(%d, %v) = %q, want %q", tt.width, tt.percent, got, tt.want)
			}
		})
	}

	if got := RenderProgressBar(10, 35); len(got) != 10 {
		t.Errorf("bar width = %d, want 10", len(got))
	}
}

func TestSpinnerFrame(t *testing.T) {
	if got := TypingDots.Frame(len(TypingDots.Frames) + 2); got != TypingDots.Frames[2] {
		t.Errorf("Frame wraps incorrectly: %q", got)
	}
	if (SpinnerConfig{}).Frame(3) != "" {
		t.Error("empty spinner should render nothing")
	}
	if TypingDots.Duration() <= 0 {
		t.Error("duration must be positive")
	}
}

func TestStatusAndRoleColors(t *testing.T) {
	if StatusColor("Available") != Emerald || StatusColor("Normal") != Emerald {
		t.Error("healthy statuses should be emerald")
	}
	if StatusColor("Low") != Amber {
		t.Error("Low should be amber")
	}
	if StatusColor("Depleted") != Rose || StatusColor("Critical") != Rose {
		t.Error("bad statuses should be rose")
	}
	if RoleColor("Guest") != TextMuted {
		t.Error("Guest badge should be muted")
	}
}

func TestTheme(t *testing.T) {
	th := NewThemeForMode(ModeDark)
	if !th.IsDark {
		t.Error("dark mode not applied")
	}
	if !strings.Contains(th.Badge("Admin"), "Admin") {
		t.Error("badge lost its label")
	}
	if !strings.Contains(th.Status("Low"), "Low") {
		t.Error("status lost its label")
	}

	th.SetSize(50, 20)
	if th.GetLayoutMode() != LayoutNarrow {
		t.Error("50 columns should be narrow")
	}
	th.SetSize(120, 40)
	if th.GetLayoutMode() != LayoutWide {
		t.Error("120 columns should be wide")
	}
}

func TestRenderHelpersIncludeIndicators(t *testing.T) {
	if !strings.Contains(RenderSuccess("saved"), StatusIndicators.Success) {
		t.Error("success indicator missing")
	}
	if !strings.Contains(RenderError("failed"), StatusIndicators.Error) {
		t.Error("error indicator missing")
	}
	if !strings.Contains(RenderWarning("careful"), StatusIndicators.Warning) {
		t.Error("warning indicator missing")
	}
	if !strings.Contains(RenderInfo("note"), StatusIndicators.Info) {
		t.Error("info indicator missing")
	}
}

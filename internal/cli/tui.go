// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/nums-tui/internal/assistant"
	"github.com/jeranaias/nums-tui/internal/config"
	"github.com/jeranaias/nums-tui/internal/export"
	"github.com/jeranaias/nums-tui/internal/ui/components"
	"github.com/jeranaias/nums-tui/internal/ui/dashboard"
	"github.com/jeranaias/nums-tui/internal/ui/layout"
	"github.com/jeranaias/nums-tui/internal/ui/panel"
	"github.com/jeranaias/nums-tui/internal/ui/styles"
)

func newTUICmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "open the admin dashboard (default)",
		Args:  cobra.NoArgs,
		RunE:  o.runTUI,
	}
}

func (o *rootOptions) runTUI(cmd *cobra.Command, args []string) error {
	if !IsStdoutTTY() {
		return &TTYRequiredError{Operation: "open the dashboard"}
	}
	ctx := cmd.Context()

	// The dashboard owns the terminal, so logs go to a file.
	a, err := o.openApp(ctx, "file")
	if err != nil {
		return err
	}
	defer a.Close()

	session, err := newAssistantSession(a)
	if err != nil {
		return err
	}
	defer session.Close()

	theme := styles.NewThemeForMode(a.cfg.UI.Theme)
	p := panel.New(theme, session,
		panel.WithClassifier(layout.NewClassifier(layout.NewTerminal(a.cfg.UI.CellWidthPx), a.cfg.UI.CompactThresholdPx)),
		panel.WithCellWidth(a.cfg.UI.CellWidthPx),
		panel.WithRotateInterval(a.cfg.Assistant.PlaceholderInterval()),
		panel.WithMarkdown(components.NewMarkdown(markdownStyle(theme))),
	)
	m := dashboard.New(theme, a.store, a.actor, p,
		dashboard.WithLogger(a.logger),
		dashboard.WithExportOptions(export.Options{
			OutputDir: a.cfg.Export.Dir,
			Format:    a.cfg.Export.Format,
		}),
	)

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if a.cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	program := tea.NewProgram(m, opts...)

	if path := o.watchPath(); path != "" {
		if w, err := startConfigWatch(path, program, a.logger); err != nil {
			a.logger.Warn("config watch failed", "path", path, "error", err)
		} else {
			defer w.Close()
		}
	}

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// startConfigWatch reloads the dashboard whenever the config file at path
// changes.
func startConfigWatch(path string, program interface{ Send(tea.Msg) }, logger *slog.Logger) (*config.Watcher, error) {
	w, err := config.NewWatcher(path, func(*config.Config) {
		program.Send(dashboard.RefreshMsg{})
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Watch(); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

// newAssistantSession builds the simulated assistant from config.
func newAssistantSession(a *app) (*assistant.Session, error) {
	policy, err := assistant.ParsePolicy(a.cfg.Assistant.ReplyPolicy)
	if err != nil {
		return nil, err
	}
	return assistant.NewSession(
		assistant.WithDelay(a.cfg.Assistant.ReplyDelay()),
		assistant.WithResponder(assistant.NewSimulatedResponder(policy)),
		assistant.WithLogger(a.logger),
	), nil
}

// watchPath returns the config file to watch, or "" when none exists.
func (o *rootOptions) watchPath() string {
	path := o.configPath
	if path == "" {
		var err error
		if path, err = config.ConfigPathTOML(); err != nil {
			return ""
		}
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func markdownStyle(theme *styles.Theme) string {
	if !ColorsEnabled() {
		return "notty"
	}
	if theme.IsDark {
		return "dark"
	}
	return "light"
}

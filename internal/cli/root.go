// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jeranaias/nums-tui/internal/datasvc"
	"github.com/jeranaias/nums-tui/internal/store"
)

// Version information, set from main at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// commandTimeout bounds one-shot commands.
const commandTimeout = 30 * time.Second

// rootOptions carries persistent flags and test seams.
type rootOptions struct {
	configPath string
	output     string
	demo       bool
	format     OutputFormat

	// backend replaces the configured backend when set.
	backend datasvc.Backend
	// now replaces the wall clock when set.
	now func() time.Time
	// interactive reports whether prompts can be shown. Default IsTTY.
	interactive func() bool
}

// NewRootCmd builds the nums command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootOptions{})
}

func newRootCmd(o *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:     "nums",
		Short:   "NutribeV Utility Management System admin console",
		Version: Version,
		Long: `Admin console for the NutribeV Utility Management System (NUMS).

Without a subcommand nums opens the dashboard: plant overview, user
approvals, bulletins, maintenance schedule and tools, with the NUMI
assistant one keypress away. Subcommands script the same tables.`,
		Example: `  # Open the dashboard against the seeded demo plant
  $ nums --demo

  # List guests waiting for approval as JSON
  $ nums users list --role Guest -o json

  # Export today's inventory as a workbook
  $ nums export --format xlsx --dir ./reports

  # Serve exports and metrics over HTTP
  $ nums serve --addr 127.0.0.1:8787`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			f, err := ParseOutputFormat(o.output)
			if err != nil {
				return err
			}
			o.format = f
			return nil
		},
		RunE: o.runTUI,
	}

	root.PersistentFlags().StringVar(&o.configPath, "config", "", "config file (default ~/.nums/config.toml)")
	root.PersistentFlags().StringVarP(&o.output, "output", "o", "table", "output format: table, json or yaml")
	root.PersistentFlags().BoolVar(&o.demo, "demo", false, "use the seeded in-memory demo plant")

	root.CompletionOptions.DisableDefaultCmd = true
	root.SetVersionTemplate(formatVersion())
	root.SetUsageTemplate(usageTemplate())
	root.SetHelpTemplate(usageTemplate())

	root.AddCommand(
		newTUICmd(o),
		newUsersCmd(o),
		newBulletinsCmd(o),
		newChemicalsCmd(o),
		newCoalCmd(o),
		newSaltCmd(o),
		newScoreboardCmd(o),
		newNotificationsCmd(o),
		newExportCmd(o),
		newAskCmd(o),
		newServeCmd(o),
		newConfigCmd(o),
		newVersionCmd(o),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), err)
		os.Exit(1)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// withApp opens the app for a one-shot command and closes it afterwards.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	a, err := o.openApp(ctx, "")
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func (o *rootOptions) printer(cmd *cobra.Command) printer {
	return printer{w: cmd.OutOrStdout(), format: o.format}
}

func (o *rootOptions) confirmer(cmd *cobra.Command) confirmer {
	interactive := IsTTY
	if o.interactive != nil {
		interactive = o.interactive
	}
	return confirmer{in: cmd.InOrStdin(), out: cmd.OutOrStdout(), interactive: interactive()}
}

// done prints a success line in table mode. JSON and YAML modes print
// the affected record instead.
func (o *rootOptions) done(cmd *cobra.Command, v any, format string, args ...any) error {
	if o.format != OutputTable {
		return o.printer(cmd).Print(v, nil)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("✓")+" "+fmt.Sprintf(format, args...))
	return err
}

// usable lets reads served from the offline snapshot through, with a
// warning on stderr.
func usable(cmd *cobra.Command, err error) error {
	var se *store.StaleError
	if errors.As(err, &se) {
		fmt.Fprintln(cmd.ErrOrStderr(), WarningStyle.Render(
			fmt.Sprintf("Offline: showing cached %s from %s", se.Table, se.FetchedAt.Local().Format("Jan 2 15:04"))))
		return nil
	}
	return err
}

func usageTemplate() string {
	bold := lipgloss.NewStyle().Bold(true)
	return `{{if .Long}}{{.Long}}

{{end}}` + bold.Render("USAGE") + `
  {{.UseLine}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}

{{if .HasExample}}` + bold.Render("EXAMPLES") + `
{{.Example}}

{{end}}{{if .HasAvailableSubCommands}}` + bold.Render("COMMANDS") + `{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableLocalFlags}}` + bold.Render("OPTIONS") + `
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableInheritedFlags}}` + bold.Render("GLOBAL OPTIONS") + `
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}

func formatVersion() string {
	return fmt.Sprintf("nums version %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}

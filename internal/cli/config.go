// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jeranaias/nums-tui/internal/config"
	"github.com/jeranaias/nums-tui/internal/logging"
)

func newConfigCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "show, edit, locate and create the config file",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "print the effective config with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig(logging.Discard())
			if err != nil {
				return err
			}
			redacted := json.RawMessage(cfg.String())
			if o.format == OutputYAML {
				return writeYAML(cmd.OutOrStdout(), redacted)
			}
			return writeJSON(cmd.OutOrStdout(), redacted)
		},
	}

	path := &cobra.Command{
		Use:   "path",
		Short: "print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := o.configFile()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), p)
			return err
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "write a config file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := o.configFile()
			if err != nil {
				return err
			}
			if _, err := os.Stat(p); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", p)
			}
			if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}
			cfg := config.Default()
			cfg.SetDefaults()
			if err := config.Save(cfg, p); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("✓")+" Wrote "+p)
			return err
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	get := &cobra.Command{
		Use:     "get KEY",
		Short:   "print one effective setting",
		Example: "  nums config get assistant.reply_delay_ms",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig(logging.Discard())
			if err != nil {
				return err
			}
			v, err := cfg.Redacted().Get(args[0])
			if err != nil {
				return err
			}
			switch o.format {
			case OutputJSON:
				return writeJSON(cmd.OutOrStdout(), map[string]any{args[0]: v})
			case OutputYAML:
				return writeYAML(cmd.OutOrStdout(), map[string]any{args[0]: v})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), v)
			return err
		},
	}

	set := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "change one setting in the config file",
		Long: `Change one setting in the config file. Environment overrides are not
written back; the file is validated before it is saved.`,
		Example: "  nums config set session.role Opscrew\n  nums config set ui.mouse false",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := o.configFile()
			if err != nil {
				return err
			}
			cfg, err := config.ReadFile(p)
			if err != nil {
				return err
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return fmt.Errorf("cannot set %s: %w", args[0], err)
			}
			check := cfg.Clone()
			check.SetDefaults()
			if err := check.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}
			if err := config.Save(cfg, p); err != nil {
				return err
			}
			return o.done(cmd, map[string]string{args[0]: args[1]}, "%s = %s", args[0], args[1])
		},
	}

	cmd.AddCommand(show, get, set, path, initCmd)
	return cmd
}

// configFile returns --config, or the default TOML location unless only
// the JSON fallback exists.
func (o *rootOptions) configFile() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	tomlPath, err := config.ConfigPathTOML()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath, nil
	}
	if jsonPath, err := config.ConfigPathJSON(); err == nil {
		if _, err := os.Stat(jsonPath); err == nil {
			return jsonPath, nil
		}
	}
	return tomlPath, nil
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// VersionInfo is the machine-readable form of `nums version`.
type VersionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func newVersionCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := VersionInfo{
				Version:   Version,
				GitCommit: GitCommit,
				BuildDate: BuildDate,
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}
			if o.format != OutputTable {
				return o.printer(cmd).Print(info, nil)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, TitleStyle.Render("nums "+info.Version))
			fmt.Fprintln(out, RenderLabel("Commit")+ValueStyle.Render(info.GitCommit))
			fmt.Fprintln(out, RenderLabel("Built")+ValueStyle.Render(info.BuildDate))
			fmt.Fprintln(out, RenderLabel("Go")+ValueStyle.Render(info.GoVersion))
			fmt.Fprintln(out, RenderLabel("Platform")+ValueStyle.Render(info.Platform))
			return nil
		},
	}
}

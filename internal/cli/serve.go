// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jeranaias/nums-tui/internal/server"
)

func newServeCmd(o *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve exports, the scoreboard and metrics over HTTP",
		Long: `Serve plant data over HTTP until interrupted.

  GET /healthz                 backend reachability
  GET /metrics                 Prometheus metrics
  GET /api/scoreboard          overview summary as JSON
  GET /export/{dataset}.csv    coal_yards, chemicals or power_consumption
  GET /export/all.xlsx         every non-empty dataset as one workbook`,
		Example: `  $ nums serve
  $ nums serve --addr 0.0.0.0:9000 --demo`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := o.openApp(ctx, "")
			if err != nil {
				return err
			}
			defer a.Close()

			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			srv := server.New(a.store,
				server.WithLogger(a.logger),
				server.WithRegistry(a.registry),
				server.WithClock(o.clock),
			)
			return srv.Start(ctx, a.cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	return cmd
}

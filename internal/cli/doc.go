// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the nums command line.
//
// Running nums without a subcommand opens the admin dashboard. The
// remaining commands script the same plant tables the dashboard edits:
//
//	nums users list --role Guest -o json
//	nums users approve <id>
//	nums bulletins post --title "Boiler 2" --message "Down Friday"
//	nums coal toggle <id>
//	nums export --format xlsx --dir ./reports
//	nums serve --addr :8787
//	nums ask
//
// Every command reads ~/.nums/config.toml (or --config) and talks to the
// configured backend. --demo swaps in a seeded in-memory plant.
package cli

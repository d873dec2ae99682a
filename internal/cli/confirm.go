// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrConfirmationRequired is returned when a destructive command runs
// without --yes and no prompt can be shown.
var ErrConfirmationRequired = errors.New("confirmation required: pass --yes to proceed")

// confirmer asks before destructive actions.
type confirmer struct {
	in          io.Reader
	out         io.Writer
	interactive bool
}

// Confirm returns true when the action may proceed. yes skips the prompt.
// Without a terminal (or with -o json/yaml) --yes is mandatory.
func (c confirmer) Confirm(action string, yes bool, format OutputFormat) (bool, error) {
	if yes {
		return true, nil
	}
	if format != OutputTable || !c.interactive {
		return false, ErrConfirmationRequired
	}

	fmt.Fprintf(c.out, "%s %s [y/N]: ", WarningStyle.Render("?"), action)
	reader := bufio.NewReader(c.in)
	response, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes", nil
}

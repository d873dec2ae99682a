// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/nums-tui/internal/assistant"
	"github.com/jeranaias/nums-tui/internal/config"
	"github.com/jeranaias/nums-tui/internal/model"
	"github.com/jeranaias/nums-tui/internal/ui/components"
)

const askPrompt = "you> "

func newAskCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "talk to the NUMI assistant",
		Long: `Talk to the NUMI assistant from the terminal.

With a question, prints one reply and exits. Without one, starts an
interactive session with line editing and history. Type /quit or press
Ctrl+D to leave.`,
		Example: `  $ nums ask "what is the coal yard status?"
  $ nums ask`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := o.openApp(ctx, "")
			if err != nil {
				return err
			}
			defer a.Close()

			session, err := newAssistantSession(a)
			if err != nil {
				return err
			}
			defer session.Close()

			md := components.NewMarkdown("notty")
			if isTerminal(cmd.OutOrStdout()) && ColorsEnabled() {
				md = components.NewMarkdown("dark")
			}
			r := &repl{
				out:     cmd.OutOrStdout(),
				session: session,
				render:  func(s string) string { return md.Render(s, min(GetTerminalWidth(), 100)) },
			}

			if len(args) > 0 {
				return r.ask(ctx, strings.Join(args, " "))
			}
			if !IsTTY() {
				return &TTYRequiredError{Operation: "start an assistant session"}
			}
			in := newLineReader()
			defer in.Close()
			return r.run(ctx, in)
		},
	}
}

// =============================================================================
// REPL
// =============================================================================

// lineReader is the part of liner the REPL uses.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// repl drives an assistant session from line input.
type repl struct {
	out     io.Writer
	session *assistant.Session
	render  func(string) string
}

// run greets, then reads lines until /quit, EOF or Ctrl+C.
func (r *repl) run(ctx context.Context, in lineReader) error {
	fmt.Fprintln(r.out, TitleStyle.Render("NUMI Assistant"))
	for _, msg := range r.session.Conversation().List() {
		r.print(msg)
	}

	for {
		line, err := in.Prompt(askPrompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out)
				return nil
			}
			return err
		}
		text := strings.TrimSpace(line)
		switch text {
		case "":
			continue
		case "/quit", "/exit", "exit", "quit":
			return nil
		}
		in.AppendHistory(line)
		if err := r.ask(ctx, line); err != nil {
			return err
		}
	}
}

// ask submits one message and prints the reply once it lands.
func (r *repl) ask(ctx context.Context, text string) error {
	if !r.session.Submit(text) {
		return nil
	}
	fmt.Fprint(r.out, DimStyle.Render("NUMI is typing..."))
	select {
	case msg := <-r.session.Replies():
		fmt.Fprint(r.out, "\r\033[K")
		r.print(msg)
		return nil
	case <-ctx.Done():
		fmt.Fprintln(r.out)
		return ctx.Err()
	}
}

func (r *repl) print(msg model.Message) {
	fmt.Fprintln(r.out, SectionStyle.Render("NUMI")+" "+DimStyle.Render(msg.Timestamp.Local().Format("15:04")))
	fmt.Fprintln(r.out, strings.TrimRight(r.render(msg.Text), "\n"))
}

// =============================================================================
// LINE EDITING
// =============================================================================

// historyLineReader wraps liner with a history file in the config dir.
type historyLineReader struct {
	*liner.State
	historyFile string
}

func newLineReader() *historyLineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	r := &historyLineReader{State: line, historyFile: filepath.Join(dir, "ask_history")}
	if f, err := os.Open(r.historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	return r
}

// Close saves history and restores the terminal.
func (r *historyLineReader) Close() error {
	if err := os.MkdirAll(filepath.Dir(r.historyFile), 0755); err == nil {
		if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			r.State.WriteHistory(f)
			f.Close()
		}
	}
	return r.State.Close()
}

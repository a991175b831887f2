// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/jeranaias/lumi-tui/internal/generation"
)

// =============================================================================
// ASK COMMAND
// =============================================================================

func (a *App) newAskCommand() *cobra.Command {
	var (
		timeout time.Duration
		raw     bool
	)
	cmd := &cobra.Command{
		Use:   "ask <prompt>",
		Short: "Ask a single question and print the reply",
		Example: `  lumi ask "Explain recursion"
  lumi ask --model claude-3-opus --raw "Summarize this"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.TrimSpace(strings.Join(args, " "))
			if prompt == "" {
				return usageError("prompt is empty")
			}
			if err := a.initLogger(false); err != nil {
				return err
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}

			gen, ok := generation.New(st, a.generationOptions()).SubmitText(prompt)
			if !ok {
				return usageError("prompt was not accepted")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			reply, err := gen.Wait(ctx)
			if errors.Is(err, context.DeadlineExceeded) {
				return &CommandError{Code: ExitTimeoutError, Err: fmt.Errorf("no reply within %s", timeout)}
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, a.renderReply(out, reply.Content, raw))
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "maximum time to wait for the reply")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the reply without markdown rendering")
	return cmd
}

// renderReply renders markdown for terminals when enabled, and returns the
// text unchanged otherwise.
func (a *App) renderReply(w io.Writer, content string, raw bool) string {
	if raw || !a.cfg.UI.RenderMarkdown || !isTerminalWriter(w) {
		return content
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(terminalWidth(w)-4),
	)
	if err != nil {
		a.logger.Debug("markdown renderer unavailable", "err", err)
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}

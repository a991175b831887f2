// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/lumi-tui/internal/ui/chat"
)

// runTUI starts the full-screen interface.
func (a *App) runTUI(_ *cobra.Command, _ []string) error {
	if !IsTTY() || !isTerminalWriter(a.stdout) {
		return usageError("the interactive interface needs a terminal; use `lumi chat` or `lumi ask` instead")
	}
	if err := a.initLogger(true); err != nil {
		return err
	}
	st, err := a.openStore()
	if err != nil {
		return err
	}
	a.startServer(st)

	m := chat.New(st, chat.Options{
		Version:        Version,
		ExportDir:      ".",
		ShowTimestamps: a.cfg.UI.ShowTimestamps,
		RenderMarkdown: a.cfg.UI.RenderMarkdown,
		Generation:     a.generationOptions(),
		Logger:         a.logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	a.logger.Info("session ended", "session", st.SessionID(), "messages", st.MessageCount())
	return nil
}

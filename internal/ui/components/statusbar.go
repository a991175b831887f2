// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/lumi-tui/internal/model"
	"github.com/jeranaias/lumi-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status represents the current session status.
type Status int

const (
	StatusReady Status = iota
	StatusThinking
)

// String returns the display string for the status.
func (s Status) String() string {
	if s == StatusThinking {
		return "Thinking..."
	}
	return "Ready"
}

// StatusBar renders the bottom status line.
type StatusBar struct {
	Model      model.ModelInfo
	Template   string
	Parameters model.Parameters
	Messages   int
	Status     Status

	// Spinner is the current spinner frame, shown while thinking
	Spinner string

	// Notice is a transient message from the last command
	Notice string

	Width int
	theme *styles.Theme
}

// NewStatusBar creates a new StatusBar component.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Parameters: model.DefaultParameters(),
		Width:      80,
		theme:      theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// View renders the status bar, choosing a layout by width.
func (s *StatusBar) View() string {
	var left []string

	left = append(left, s.theme.StatusModel.Render(s.Model.Name))
	if s.Width >= 60 && s.Template != "" {
		left = append(left, "tpl "+s.Template)
	}
	if s.Width >= 100 {
		left = append(left, fmt.Sprintf("temp %.2f  max %d  top_p %.2f",
			s.Parameters.Temperature, s.Parameters.MaxTokens, s.Parameters.TopP))
	}
	left = append(left, s.renderStatus())

	right := ""
	if s.Notice != "" {
		right = s.Notice
	} else if s.Width >= 60 {
		right = s.renderShortcuts()
	}

	leftStr := strings.Join(left, " | ")
	gap := s.Width - lipgloss.Width(leftStr) - lipgloss.Width(right) - 2
	if gap < 1 {
		right = ""
		gap = 1
	}
	return s.theme.StatusBar.Width(s.Width).Render(leftStr + strings.Repeat(" ", gap) + right)
}

func (s *StatusBar) renderStatus() string {
	if s.Status == StatusThinking {
		return s.theme.StatusBusy.Render(strings.TrimSpace(s.Spinner + " " + s.Status.String()))
	}
	return fmt.Sprintf("%s (%d msgs)", s.Status, s.Messages)
}

func (s *StatusBar) renderShortcuts() string {
	pairs := [][2]string{{"enter", "send"}, {"tab", "complete"}, {"ctrl+t", "theme"}, {"esc", "home"}}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = s.theme.ShortcutKey.Render(p[0]) + " " + s.theme.ShortcutDesc.Render(p[1])
	}
	return strings.Join(parts, "  ")
}

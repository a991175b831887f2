// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/lumi-tui/internal/commands"
	"github.com/jeranaias/lumi-tui/internal/ui/styles"
	"github.com/jeranaias/lumi-tui/internal/util"
)

// =============================================================================
// COMPLETION POPUP COMPONENT
// =============================================================================

// CompletionPopup renders the completion candidates of a CompletionState.
type CompletionPopup struct {
	maxVisible int
	width      int
	theme      *styles.Theme
}

// NewCompletionPopup creates a new completion popup.
func NewCompletionPopup(theme *styles.Theme) *CompletionPopup {
	return &CompletionPopup{
		maxVisible: 6,
		width:      50,
		theme:      theme,
	}
}

// SetWidth sets the popup width.
func (c *CompletionPopup) SetWidth(width int) {
	c.width = max(width, 24)
}

// View renders the popup for state, or "" when nothing is visible.
func (c *CompletionPopup) View(state *commands.CompletionState) string {
	if state == nil || !state.Visible || len(state.Completions) == 0 {
		return ""
	}

	completions := state.Completions
	selected := state.Selected

	// Scrolling window centered on the selection
	start, end := 0, len(completions)
	if len(completions) > c.maxVisible {
		start = max(selected-c.maxVisible/2, 0)
		end = start + c.maxVisible
		if end > len(completions) {
			end = len(completions)
			start = end - c.maxVisible
		}
	}

	items := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		items = append(items, c.renderItem(completions[i], i == selected))
	}
	if len(completions) > c.maxVisible {
		items = append(items, c.theme.CompletionDesc.Render(
			util.PadRight("", 2)+formatCount(selected+1, len(completions))))
	}

	return c.theme.CompletionPopup.
		Width(c.width).
		Render(strings.Join(items, "\n"))
}

func (c *CompletionPopup) renderItem(comp commands.Completion, selected bool) string {
	display := comp.Display
	if display == "" {
		display = comp.Value
	}
	display = util.PadRight(util.TruncateWidth(display, 20), 20)
	desc := util.TruncateWidth(comp.Description, max(c.width-26, 0))

	indicator := "  "
	valueStyle := c.theme.CompletionItem
	if selected {
		indicator = "> "
		valueStyle = c.theme.CompletionSelected
	}

	return lipgloss.JoinHorizontal(lipgloss.Left,
		indicator,
		valueStyle.Render(display),
		" ",
		c.theme.CompletionDesc.Render(desc),
	)
}

func formatCount(n, total int) string {
	return fmt.Sprintf("%d/%d", n, total)
}

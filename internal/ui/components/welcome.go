// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/lumi-tui/internal/model"
	"github.com/jeranaias/lumi-tui/internal/ui/styles"
	"github.com/jeranaias/lumi-tui/internal/util"
)

// =============================================================================
// WELCOME SCREEN MODEL
// =============================================================================

// Welcome is the landing screen. It shows the model catalog with a cursor
// so a model can be picked before the session starts.
type Welcome struct {
	version string
	models  []model.ModelInfo
	cursor  int

	// Dimensions
	width  int
	height int

	theme *styles.Theme
}

// NewWelcome creates a landing screen over the given models.
func NewWelcome(theme *styles.Theme, models []model.ModelInfo) Welcome {
	return Welcome{
		version: "dev",
		models:  models,
		theme:   theme,
	}
}

// SetVersion sets the version string.
func (w *Welcome) SetVersion(version string) {
	w.version = version
}

// SetSize updates the dimensions.
func (w *Welcome) SetSize(width, height int) {
	w.width = width
	w.height = height
}

// SetCursorTo moves the cursor onto the model with the given ID.
func (w *Welcome) SetCursorTo(id string) {
	for i, m := range w.models {
		if m.ID == id {
			w.cursor = i
			return
		}
	}
}

// CursorUp moves the cursor up, wrapping at the top.
func (w *Welcome) CursorUp() {
	if len(w.models) == 0 {
		return
	}
	w.cursor = (w.cursor - 1 + len(w.models)) % len(w.models)
}

// CursorDown moves the cursor down, wrapping at the bottom.
func (w *Welcome) CursorDown() {
	if len(w.models) == 0 {
		return
	}
	w.cursor = (w.cursor + 1) % len(w.models)
}

// Current returns the model under the cursor.
func (w Welcome) Current() (model.ModelInfo, bool) {
	if w.cursor < 0 || w.cursor >= len(w.models) {
		return model.ModelInfo{}, false
	}
	return w.models[w.cursor], true
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the landing screen centered in the terminal.
func (w Welcome) View() string {
	width := w.width
	if width == 0 {
		width = 80
	}
	height := w.height
	if height == 0 {
		height = 24
	}

	boxWidth := min(max(width-8, 40), 66)

	sections := []string{w.renderLogo(width)}
	sections = append(sections, w.theme.WelcomeVersion.Render("terminal chat console v"+w.version))
	sections = append(sections, "", w.renderModels(boxWidth-10))
	if height >= 20 {
		sections = append(sections, "", w.renderQuickStart())
	}
	sections = append(sections, "", w.renderPressKey())

	box := w.theme.WelcomeBox.
		Width(boxWidth).
		Render(lipgloss.JoinVertical(lipgloss.Center, sections...))

	vertical := lipgloss.Center
	if lipgloss.Height(box) >= height {
		vertical = lipgloss.Top
	}
	return lipgloss.Place(width, height, lipgloss.Center, vertical, box)
}

// =============================================================================
// RENDER HELPERS
// =============================================================================

func (w Welcome) renderLogo(width int) string {
	if width >= 50 {
		return w.theme.WelcomeLogo.Render(` _                 _
| |_   _ _ __ ___ (_)
| | | | | '_ ` + "`" + ` _ \| |
| | |_| | | | | | | |
|_|\__,_|_| |_| |_|_|`)
	}
	return w.theme.WelcomeLogo.Render("lumi")
}

func (w Welcome) renderModels(width int) string {
	var lines []string
	for i, m := range w.models {
		marker := "  "
		name := w.theme.WelcomeInfo.Render(util.PadRight(m.Name, 16))
		if i == w.cursor {
			marker = w.theme.WelcomeKey.Render("> ")
			name = w.theme.WelcomeKey.Render(util.PadRight(m.Name, 16))
		}
		detail := fmt.Sprintf("%s, %s", m.Provider, m.ContextString())
		lines = append(lines, marker+name+" "+w.theme.WelcomeVersion.Render(util.TruncateWidth(detail, max(width-18, 10))))
	}
	if m, ok := w.Current(); ok && m.Description != "" {
		lines = append(lines, "", w.theme.WelcomeInfo.Render(util.TruncateWidth(m.Description, width)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (w Welcome) renderQuickStart() string {
	hints := []struct{ key, desc string }{
		{"/help", "commands"},
		{"/template", "prompt templates"},
		{"tab", "complete"},
	}
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = w.theme.WelcomeKey.Render(h.key) + " " + w.theme.WelcomeInfo.Render(h.desc)
	}
	return strings.Join(parts, "   ")
}

func (w Welcome) renderPressKey() string {
	return w.theme.WelcomePressKey.Render("up/down choose a model, enter to start, ctrl+c to quit")
}

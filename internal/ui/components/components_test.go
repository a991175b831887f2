// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/lumi-tui/internal/commands"
	"github.com/jeranaias/lumi-tui/internal/model"
	"github.com/jeranaias/lumi-tui/internal/ui/styles"
)

func testTheme() *styles.Theme {
	return styles.NewThemeWithOutput(&bytes.Buffer{}, termenv.Ascii, true)
}

// =============================================================================
// WELCOME TESTS
// =============================================================================

func TestWelcome_Cursor(t *testing.T) {
	models := model.DefaultCatalog().Models
	w := NewWelcome(testTheme(), models)

	cur, ok := w.Current()
	require.True(t, ok)
	assert.Equal(t, models[0].ID, cur.ID)

	w.CursorUp()
	cur, _ = w.Current()
	assert.Equal(t, models[len(models)-1].ID, cur.ID, "cursor wraps at the top")

	w.CursorDown()
	cur, _ = w.Current()
	assert.Equal(t, models[0].ID, cur.ID)

	w.SetCursorTo("claude-3-opus")
	cur, _ = w.Current()
	assert.Equal(t, "claude-3-opus", cur.ID)

	w.SetCursorTo("no-such-model")
	cur, _ = w.Current()
	assert.Equal(t, "claude-3-opus", cur.ID, "unknown id leaves the cursor alone")
}

func TestWelcome_EmptyCatalog(t *testing.T) {
	w := NewWelcome(testTheme(), nil)
	w.CursorDown()
	w.CursorUp()
	_, ok := w.Current()
	assert.False(t, ok)
	assert.NotEmpty(t, w.View())
}

func TestWelcome_View(t *testing.T) {
	w := NewWelcome(testTheme(), model.DefaultCatalog().Models)
	w.SetVersion("1.2.3")
	w.SetSize(100, 40)

	view := w.View()
	assert.Contains(t, view, "v1.2.3")
	assert.Contains(t, view, "GPT-4")
	assert.Contains(t, view, "enter to start")
}

// =============================================================================
// STATUS BAR TESTS
// =============================================================================

func TestStatusBar_Status(t *testing.T) {
	assert.Equal(t, "Ready", StatusReady.String())
	assert.Equal(t, "Thinking...", StatusThinking.String())
}

func TestStatusBar_View(t *testing.T) {
	bar := NewStatusBar(testTheme())
	bar.Model, _ = model.DefaultCatalog().FindModel("gpt-4")
	bar.Messages = 3
	bar.SetWidth(120)

	view := bar.View()
	assert.Contains(t, view, "GPT-4")
	assert.Contains(t, view, "Ready (3 msgs)")
	assert.Contains(t, view, "temp 0.70")

	bar.Status = StatusThinking
	assert.Contains(t, bar.View(), "Thinking...")
}

func TestStatusBar_NarrowHidesParameters(t *testing.T) {
	bar := NewStatusBar(testTheme())
	bar.SetWidth(50)
	assert.NotContains(t, bar.View(), "temp ")
}

func TestStatusBar_NoticeReplacesShortcuts(t *testing.T) {
	bar := NewStatusBar(testTheme())
	bar.SetWidth(120)
	assert.Contains(t, bar.View(), "send")

	bar.Notice = "saved"
	view := bar.View()
	assert.Contains(t, view, "saved")
	assert.NotContains(t, view, "complete")
}

// =============================================================================
// COMPLETION POPUP TESTS
// =============================================================================

func TestCompletionPopup_Hidden(t *testing.T) {
	popup := NewCompletionPopup(testTheme())
	assert.Empty(t, popup.View(nil))
	assert.Empty(t, popup.View(&commands.CompletionState{}))
}

func TestCompletionPopup_View(t *testing.T) {
	popup := NewCompletionPopup(testTheme())
	popup.SetWidth(60)

	state := &commands.CompletionState{
		Visible: true,
		Completions: []commands.Completion{
			{Value: "/help", Description: "Show help"},
			{Value: "/history", Description: "Show history"},
		},
		Selected: 1,
	}
	view := popup.View(state)
	assert.Contains(t, view, "/help")
	assert.Contains(t, view, "> /history")
	assert.NotContains(t, view, "/2", "no counter when everything fits")
}

func TestCompletionPopup_Scrolls(t *testing.T) {
	popup := NewCompletionPopup(testTheme())
	state := &commands.CompletionState{Visible: true}
	for _, v := range []string{"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7", "a8", "a9"} {
		state.Completions = append(state.Completions, commands.Completion{Value: v})
	}
	state.Selected = 9

	view := popup.View(state)
	assert.Contains(t, view, "a9")
	assert.NotContains(t, view, "a0")
	assert.Contains(t, view, "10/10")
	assert.Equal(t, 1, strings.Count(view, "> "))
}

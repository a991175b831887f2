// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/lumi-tui/internal/store"
)

func newTestCompleter(t *testing.T) *Completer {
	t.Helper()
	st, err := store.New(store.Options{})
	require.NoError(t, err)
	return NewCompleter(NewRegistry(), st)
}

func values(completions []Completion) []string {
	out := make([]string, len(completions))
	for i, c := range completions {
		out[i] = c.Value
	}
	return out
}

func TestComplete_CommandNames(t *testing.T) {
	c := newTestCompleter(t)

	got := values(c.Complete("/mo", 3))
	assert.Equal(t, []string{"/model", "/models"}, got)

	got = values(c.Complete("/te", 3))
	assert.Equal(t, []string{"/template", "/templates"}, got)

	assert.Empty(t, c.Complete("hello", 5))
}

func TestComplete_AliasesHiddenForBareSlash(t *testing.T) {
	c := newTestCompleter(t)
	for _, v := range values(c.Complete("/", 1)) {
		assert.NotEqual(t, "/h", v)
	}
}

func TestComplete_Models(t *testing.T) {
	c := newTestCompleter(t)

	got := values(c.Complete("/model claude", 13))
	assert.ElementsMatch(t, []string{"claude-3-opus", "claude-3-sonnet"}, got)

	got = values(c.Complete("/model ", 7))
	assert.Len(t, got, 5)
}

func TestComplete_TemplatesIncludeNone(t *testing.T) {
	c := newTestCompleter(t)

	got := values(c.Complete("/template ", 10))
	assert.Contains(t, got, "none")
	assert.Contains(t, got, "code-review")

	got = values(c.Complete("/template n", 11))
	assert.Equal(t, []string{"none"}, got)
}

func TestComplete_ParamsAndEnums(t *testing.T) {
	c := newTestCompleter(t)

	got := values(c.Complete("/set t", 6))
	assert.Equal(t, []string{"top_p", "temperature"}, got)

	assert.Empty(t, c.Complete("/set temperature ", 17))

	got = values(c.Complete("/theme d", 8))
	assert.Equal(t, []string{"dark"}, got)
}

func TestComplete_CursorInMiddle(t *testing.T) {
	c := newTestCompleter(t)
	got := values(c.Complete("/mod gpt-4", 4))
	assert.Equal(t, []string{"/model", "/models"}, got)
}

func TestLines(t *testing.T) {
	c := newTestCompleter(t)
	assert.Equal(t, []string{"/set temperature "}, c.Lines("/set temp"))
	assert.Equal(t, []string{"/theme dark "}, c.Lines("/theme da"))
}

func TestCompletionState(t *testing.T) {
	cs := NewCompletionState()
	assert.Nil(t, cs.GetSelected())
	assert.Equal(t, "", cs.Accept())

	cs.Update("/theme ", []Completion{{Value: "dark"}, {Value: "light"}})
	assert.True(t, cs.Visible)
	assert.Equal(t, "/theme dark ", cs.Accept())

	cs.Next()
	assert.Equal(t, "/theme light ", cs.Accept())
	cs.Next()
	assert.Equal(t, "dark", cs.GetSelected().Value)
	cs.Prev()
	assert.Equal(t, "light", cs.GetSelected().Value)

	cs.Clear()
	assert.False(t, cs.Visible)
	assert.Nil(t, cs.GetSelected())
}

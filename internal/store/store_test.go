// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/lumi-tui/internal/model"
	"github.com/jeranaias/lumi-tui/internal/prefs"
)

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	s, err := New(opts)
	require.NoError(t, err)
	return s
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

func TestNew_Defaults(t *testing.T) {
	s := newTestStore(t, Options{})

	assert.Equal(t, "gpt-4", s.SelectedModel().ID)
	_, ok := s.SelectedTemplate()
	assert.False(t, ok)
	assert.Empty(t, s.Messages())
	assert.False(t, s.Loading())
	assert.False(t, s.DarkMode())
	assert.Equal(t, "", s.Draft())
	assert.Equal(t, model.DefaultParameters(), s.Parameters())
	assert.NotEmpty(t, s.SessionID())
}

func TestNew_DefaultModel(t *testing.T) {
	s := newTestStore(t, Options{DefaultModel: "claude-3-sonnet"})
	assert.Equal(t, "claude-3-sonnet", s.SelectedModel().ID)

	s = newTestStore(t, Options{DefaultModel: "nope"})
	assert.Equal(t, "gpt-4", s.SelectedModel().ID)
}

func TestNew_InvalidCatalog(t *testing.T) {
	_, err := New(Options{Catalog: &model.Catalog{}})
	assert.Error(t, err)
}

func TestNew_ReadsPersistedTheme(t *testing.T) {
	tests := []struct {
		name  string
		value string
		set   bool
		want  bool
	}{
		{"absent", "", false, false},
		{"true", "true", true, true},
		{"false", "false", true, false},
		{"malformed", "dark", true, false},
		{"wrong type", `"true"`, true, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			kv := prefs.NewMemory()
			if tc.set {
				require.NoError(t, kv.Set(context.Background(), ThemeKey, tc.value))
			}
			s := newTestStore(t, Options{Prefs: kv})
			assert.Equal(t, tc.want, s.DarkMode())
		})
	}
}

// =============================================================================
// MODEL SELECTION
// =============================================================================

func TestSelectModel_AllCatalogEntries(t *testing.T) {
	s := newTestStore(t, Options{})
	for _, m := range s.Models() {
		assert.True(t, s.SelectModel(m.ID))
		assert.Equal(t, m, s.SelectedModel())
	}
}

func TestSelectModel_UnknownIsNoop(t *testing.T) {
	s := newTestStore(t, Options{})
	require.True(t, s.SelectModel("gemini-pro"))

	before := s.Snapshot()
	assert.False(t, s.SelectModel("gpt-5"))
	assert.False(t, s.SelectModel(""))
	assert.Equal(t, before, s.Snapshot())
}

func TestModels_ReturnsCopy(t *testing.T) {
	s := newTestStore(t, Options{})
	models := s.Models()
	models[0].Name = "mutated"
	assert.Equal(t, "GPT-4", s.Models()[0].Name)
}

// =============================================================================
// TEMPLATES
// =============================================================================

func TestSelectTemplate(t *testing.T) {
	s := newTestStore(t, Options{})

	assert.True(t, s.SelectTemplate("brainstorm"))
	tmpl, ok := s.SelectedTemplate()
	require.True(t, ok)
	assert.Equal(t, "brainstorm", tmpl.ID)

	assert.False(t, s.SelectTemplate("unknown"))
	tmpl, ok = s.SelectedTemplate()
	require.True(t, ok)
	assert.Equal(t, "brainstorm", tmpl.ID)

	assert.True(t, s.SelectTemplate(""))
	_, ok = s.SelectedTemplate()
	assert.False(t, ok)

	s.SelectTemplate("code-review")
	s.ClearTemplate()
	_, ok = s.SelectedTemplate()
	assert.False(t, ok)
}

func TestLoadTemplate_ReplacesDraft(t *testing.T) {
	s := newTestStore(t, Options{})
	s.SetDraft("old draft")

	require.True(t, s.LoadTemplate("email-draft"))
	tmpl, _ := s.SelectedTemplate()
	assert.Equal(t, tmpl.Content, s.Draft())
	assert.Contains(t, s.Draft(), "{recipient}")

	assert.False(t, s.LoadTemplate("unknown"))
	assert.Equal(t, tmpl.Content, s.Draft())

	s.UnloadTemplate()
	_, ok := s.SelectedTemplate()
	assert.False(t, ok)
	assert.Equal(t, "", s.Draft())
}

// =============================================================================
// DRAFT
// =============================================================================

func TestSetDraft_Verbatim(t *testing.T) {
	s := newTestStore(t, Options{})
	s.SetDraft("  padded\n")
	assert.Equal(t, "  padded\n", s.Draft())
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

func TestAddMessage_AppendOnlyAndOrdered(t *testing.T) {
	s := newTestStore(t, Options{})

	var prev model.Message
	for i := 0; i < 200; i++ {
		before := s.MessageCount()
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		msg := s.AddMessage(role, "msg", "gpt-4")

		assert.Equal(t, before+1, s.MessageCount())
		if i > 0 {
			assert.Greater(t, msg.ID, prev.ID)
		}
		prev = msg
	}

	msgs := s.Messages()
	for i := 1; i < len(msgs); i++ {
		assert.Less(t, msgs[i-1].ID, msgs[i].ID)
	}
	assert.Equal(t, prev, msgs[len(msgs)-1])
}

func TestAddMessage_IDsIncreaseWhenClockGoesBackwards(t *testing.T) {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(-time.Hour), base.Add(-2 * time.Hour)}
	i := 0
	s := newTestStore(t, Options{Now: func() time.Time {
		now := times[i%len(times)]
		i++
		return now
	}})

	a := s.AddMessage(model.RoleUser, "a", "")
	b := s.AddMessage(model.RoleUser, "b", "")
	c := s.AddMessage(model.RoleUser, "c", "")
	assert.Less(t, a.ID, b.ID)
	assert.Less(t, b.ID, c.ID)
	assert.Equal(t, base.Add(-time.Hour), b.Timestamp)
}

func TestAddMessage_Fields(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	s := newTestStore(t, Options{Now: func() time.Time { return now }})

	msg := s.AddMessage(model.RoleAssistant, "hello", "gemini-pro")
	assert.Equal(t, model.RoleAssistant, msg.Role)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, "gemini-pro", msg.ModelID)
	assert.Equal(t, now, msg.Timestamp)

	found, ok := s.FindMessage(msg.ID)
	assert.True(t, ok)
	assert.Equal(t, msg, found)

	last, ok := s.LastMessage(model.RoleAssistant)
	assert.True(t, ok)
	assert.Equal(t, msg, last)
	_, ok = s.LastMessage(model.RoleUser)
	assert.False(t, ok)
}

func TestClearMessages(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		s := newTestStore(t, Options{})
		for i := 0; i < n; i++ {
			s.AddMessage(model.RoleUser, "x", "")
		}
		s.SetDraft("keep")
		s.SetLoading(true)

		s.ClearMessages()
		assert.Empty(t, s.Messages())
		assert.Equal(t, 0, s.MessageCount())
		assert.Equal(t, "keep", s.Draft())
		assert.True(t, s.Loading())
	}
}

func TestMessages_ReturnsCopy(t *testing.T) {
	s := newTestStore(t, Options{})
	s.AddMessage(model.RoleUser, "original", "")
	msgs := s.Messages()
	msgs[0].Content = "mutated"
	assert.Equal(t, "original", s.Messages()[0].Content)
}

// =============================================================================
// PARAMETERS
// =============================================================================

func TestUpdateParameters_OnlyTouchesGivenFields(t *testing.T) {
	s := newTestStore(t, Options{})
	s.UpdateParameters(model.ParameterUpdate{TopP: model.Ptr(0.9), MaxTokens: model.Ptr(1000)})
	before := s.Parameters()

	s.UpdateParameters(model.ParameterUpdate{Temperature: model.Ptr(1.2)})

	after := s.Parameters()
	assert.Equal(t, 1.2, after.Temperature)
	after.Temperature = before.Temperature
	assert.Equal(t, before, after)
}

func TestUpdateParameters_NoClampByDefault(t *testing.T) {
	s := newTestStore(t, Options{})
	s.UpdateParameters(model.ParameterUpdate{Temperature: model.Ptr(9.0), MaxTokens: model.Ptr(1)})
	assert.Equal(t, 9.0, s.Parameters().Temperature)
	assert.Equal(t, 1, s.Parameters().MaxTokens)
}

func TestUpdateParameters_Clamp(t *testing.T) {
	s := newTestStore(t, Options{ClampParameters: true})
	s.UpdateParameters(model.ParameterUpdate{Temperature: model.Ptr(9.0), MaxTokens: model.Ptr(1)})
	assert.Equal(t, model.MaxTemperature, s.Parameters().Temperature)
	assert.Equal(t, model.MinMaxTokens, s.Parameters().MaxTokens)
}

func TestResetParameters(t *testing.T) {
	s := newTestStore(t, Options{})
	s.UpdateParameters(model.ParameterUpdate{PresencePenalty: model.Ptr(1.5)})
	s.ResetParameters()
	assert.Equal(t, model.DefaultParameters(), s.Parameters())
}

// =============================================================================
// THEME
// =============================================================================

func TestToggleTheme_InvolutionAndPersisted(t *testing.T) {
	for _, start := range []bool{false, true} {
		kv := prefs.NewMemory()
		s := newTestStore(t, Options{Prefs: kv})
		require.NoError(t, s.SetTheme(start))

		persisted := func() string {
			v, found, err := kv.Get(context.Background(), ThemeKey)
			require.NoError(t, err)
			require.True(t, found)
			return v
		}

		require.NoError(t, s.ToggleTheme())
		assert.Equal(t, !start, s.DarkMode())
		assert.Equal(t, boolText(!start), persisted())

		require.NoError(t, s.ToggleTheme())
		assert.Equal(t, start, s.DarkMode())
		assert.Equal(t, boolText(start), persisted())
	}
}

func TestToggleTheme_SurvivesRestart(t *testing.T) {
	kv, err := prefs.OpenSQLite(t.TempDir())
	require.NoError(t, err)
	defer kv.Close()

	s := newTestStore(t, Options{Prefs: kv})
	require.NoError(t, s.ToggleTheme())

	reopened := newTestStore(t, Options{Prefs: kv})
	assert.True(t, reopened.DarkMode())
}

func TestToggleTheme_PersistFailureStillFlips(t *testing.T) {
	boom := errors.New("disk full")
	kv := prefs.NewMemory()
	kv.FailWrites = boom
	s := newTestStore(t, Options{Prefs: kv})

	err := s.ToggleTheme()
	assert.ErrorIs(t, err, boom)
	assert.True(t, s.DarkMode())
}

func boolText(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// =============================================================================
// GENERATION ADMISSION
// =============================================================================

func TestBeginGeneration(t *testing.T) {
	s := newTestStore(t, Options{DefaultModel: "claude-3-opus"})
	s.SetDraft("  Explain recursion \n")

	msg, err := s.BeginGeneration()
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, msg.Role)
	assert.Equal(t, "Explain recursion", msg.Content)
	assert.Equal(t, "claude-3-opus", msg.ModelID)
	assert.Equal(t, "", s.Draft())
	assert.True(t, s.Loading())

	s.SetDraft("second")
	_, err = s.BeginGeneration()
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 1, s.MessageCount())
	assert.Equal(t, "second", s.Draft())

	reply := s.CompleteGeneration("done", "claude-3-opus")
	assert.Equal(t, model.RoleAssistant, reply.Role)
	assert.False(t, s.Loading())
	assert.Equal(t, 2, s.MessageCount())
}

func TestBeginGeneration_EmptyPrompt(t *testing.T) {
	s := newTestStore(t, Options{})
	for _, draft := range []string{"", "   ", "\n\t"} {
		s.SetDraft(draft)
		_, err := s.BeginGeneration()
		assert.ErrorIs(t, err, ErrEmptyPrompt)
		assert.Equal(t, 0, s.MessageCount())
		assert.False(t, s.Loading())
		assert.Equal(t, draft, s.Draft())
	}
}

func TestBeginGeneration_ConcurrentAdmitsOne(t *testing.T) {
	s := newTestStore(t, Options{})
	s.SetDraft("race")

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.BeginGeneration(); err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, admitted)
	assert.Equal(t, 1, s.MessageCount())
}

// =============================================================================
// SNAPSHOT
// =============================================================================

func TestSnapshot(t *testing.T) {
	s := newTestStore(t, Options{})
	s.SelectModel("gpt-3.5-turbo")
	s.SelectTemplate("data-analysis")
	s.SetDraft("draft")
	s.AddMessage(model.RoleUser, "hi", "gpt-3.5-turbo")

	snap := s.Snapshot()
	assert.Equal(t, s.SessionID(), snap.SessionID)
	assert.Equal(t, "gpt-3.5-turbo", snap.SelectedModel.ID)
	require.NotNil(t, snap.SelectedTemplate)
	assert.Equal(t, "data-analysis", snap.SelectedTemplate.ID)
	assert.Equal(t, "draft", snap.Draft)
	assert.Len(t, snap.Messages, 1)

	s.AddMessage(model.RoleAssistant, "later", "")
	assert.Len(t, snap.Messages, 1)
}

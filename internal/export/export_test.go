// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/lumi-tui/internal/model"
	"github.com/jeranaias/lumi-tui/internal/store"
)

func sampleSnapshot(t *testing.T) store.Snapshot {
	t.Helper()
	st, err := store.New(store.Options{DefaultModel: "claude-3-opus"})
	require.NoError(t, err)
	st.AddMessage(model.RoleUser, "Explain recursion", "claude-3-opus")
	st.AddMessage(model.RoleAssistant, "It calls itself.", "claude-3-opus")
	return st.Snapshot()
}

// =============================================================================
// SINGLE MESSAGE
// =============================================================================

func TestMessage_WritesDownloadFormat(t *testing.T) {
	dir := t.TempDir()
	msg := model.Message{
		ID:        "01HZX3ABCDEF",
		Role:      model.RoleAssistant,
		Content:   "hello",
		Timestamp: time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC),
		ModelID:   "gpt-4",
	}

	path, err := Message(msg, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ai-message-01HZX3ABCDEF.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, map[string]string{
		"message":   "hello",
		"role":      "assistant",
		"timestamp": "2025-03-04T05:06:07Z",
		"model":     "gpt-4",
	}, got)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

func TestToFile_Markdown(t *testing.T) {
	snap := sampleSnapshot(t)
	opts := &Options{OutputDir: t.TempDir(), IncludeMetadata: true, IncludeTimestamps: false}

	path, err := ToFile(FromSnapshot(snap), NewMarkdownExporter(opts), opts)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".md"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.HasPrefix(out, "---\nsession: "))
	assert.Contains(t, out, "model: claude-3-opus")
	assert.Contains(t, out, "### You\n\nExplain recursion")
	assert.Contains(t, out, "### Assistant (claude-3-opus)\n\nIt calls itself.")
	assert.Less(t, strings.Index(out, "Explain recursion"), strings.Index(out, "It calls itself."))
}

func TestToFile_JSON(t *testing.T) {
	snap := sampleSnapshot(t)
	exporter, err := ExporterFor("json", nil)
	require.NoError(t, err)

	path, err := ToFile(FromSnapshot(snap), exporter, &Options{OutputDir: t.TempDir()})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Transcript
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, snap.SessionID, got.SessionID)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "It calls itself.", got.Messages[1].Message)
}

func TestExport_EmptyTranscript(t *testing.T) {
	empty := &Transcript{SessionID: "s"}
	_, err := NewJSONExporter().Export(empty)
	assert.ErrorIs(t, err, ErrEmptyTranscript)
	_, err = NewMarkdownExporter(nil).Export(empty)
	assert.ErrorIs(t, err, ErrEmptyTranscript)
}

func TestExporterFor(t *testing.T) {
	for _, f := range []string{"", "md", "Markdown"} {
		e, err := ExporterFor(f, nil)
		require.NoError(t, err)
		assert.Equal(t, ".md", e.FileExtension())
	}
	_, err := ExporterFor("html", nil)
	assert.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a-b-c_d", sanitizeFilename("a/b:c d"))
	assert.Equal(t, "session", sanitizeFilename(""))
	assert.Len(t, []rune(sanitizeFilename(strings.Repeat("x", 80))), 50)
}

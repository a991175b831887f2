// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/lumi-tui/internal/generation"
	"github.com/jeranaias/lumi-tui/internal/model"
)

// =============================================================================
// HELPERS
// =============================================================================

// writeConfig writes a config with a private data directory and
// millisecond generation delays.
func writeConfig(t *testing.T) string {
	t.Helper()
	for _, env := range []string{"LUMI_MODEL", "LUMI_DATA_DIR", "LUMI_LOG_LEVEL", "LUMI_METRICS_ADDR"} {
		t.Setenv(env, "")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf("data_dir = %q\n\n[generation]\nmin_delay_ms = 1\nmax_delay_ms = 2\n",
		filepath.Join(dir, "data"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := Run(args, strings.NewReader(""), &out, &errOut)
	return out.String(), err
}

type fakeReader struct {
	lines     []string
	history   []string
	completer func(string) []string
	closed    bool
}

func (f *fakeReader) Prompt(string) (string, error) {
	if len(f.lines) == 0 {
		return "", io.EOF
	}
	line := f.lines[0]
	f.lines = f.lines[1:]
	return line, nil
}

func (f *fakeReader) AppendHistory(item string) {
	f.history = append(f.history, item)
}

func (f *fakeReader) SetCompleter(fn func(string) []string) {
	f.completer = fn
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

func runChat(t *testing.T, cfgPath string, reader *fakeReader) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := &App{
		stdin:  strings.NewReader(""),
		stdout: &out,
		stderr: &errOut,
		newLineReader: func(string) (lineReader, error) {
			return reader, nil
		},
	}
	err := app.run([]string{"--config", cfgPath, "chat"})
	return out.String(), err
}

// =============================================================================
// VERSION AND CATALOG
// =============================================================================

func TestVersion(t *testing.T) {
	cfg := writeConfig(t)
	out, err := run(t, "--config", cfg, "version")
	require.NoError(t, err)
	assert.Equal(t, versionLine()+"\n", out)
}

func TestModels(t *testing.T) {
	cfg := writeConfig(t)
	out, err := run(t, "--config", cfg, "--model", "gemini-pro", "models")
	require.NoError(t, err)

	var marked []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "* ") {
			marked = append(marked, line)
		}
	}
	require.Len(t, marked, 1)
	assert.Contains(t, marked[0], "gemini-pro")
	assert.Contains(t, out, "GPT-4")
}

func TestModels_JSON(t *testing.T) {
	cfg := writeConfig(t)
	out, err := run(t, "--config", cfg, "models", "--json")
	require.NoError(t, err)

	var models []model.ModelInfo
	require.NoError(t, json.Unmarshal([]byte(out), &models))
	assert.Len(t, models, len(model.DefaultCatalog().Models))
}

func TestTemplates(t *testing.T) {
	cfg := writeConfig(t)
	out, err := run(t, "--config", cfg, "templates")
	require.NoError(t, err)
	assert.Contains(t, out, "code-review")
	assert.Contains(t, out, "{code}")
}

// =============================================================================
// THEME
// =============================================================================

func TestTheme_Persists(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "--config", cfg, "theme")
	require.NoError(t, err)
	assert.Contains(t, out, "light")

	out, err = run(t, "--config", cfg, "theme", "dark")
	require.NoError(t, err)
	assert.Contains(t, out, "dark")

	out, err = run(t, "--config", cfg, "theme")
	require.NoError(t, err)
	assert.Contains(t, out, "dark", "theme survives a restart")

	out, err = run(t, "--config", cfg, "theme", "toggle")
	require.NoError(t, err)
	assert.Contains(t, out, "light")
}

func TestTheme_Unknown(t *testing.T) {
	cfg := writeConfig(t)
	_, err := run(t, "--config", cfg, "theme", "purple")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

// =============================================================================
// ASK
// =============================================================================

func TestAsk(t *testing.T) {
	cfg := writeConfig(t)
	out, err := run(t, "--config", cfg, "ask", "Explain", "recursion")
	require.NoError(t, err)
	assert.True(t, generation.IsCanned(strings.TrimSpace(out)), "unexpected reply %q", out)
}

func TestAsk_Timeout(t *testing.T) {
	cfg := writeConfig(t)
	_, err := run(t, "--config", cfg, "ask", "--timeout", "1ns", "hello")
	require.Error(t, err)
	assert.Equal(t, ExitTimeoutError, ExitCode(err))
}

func TestAsk_NeedsPrompt(t *testing.T) {
	cfg := writeConfig(t)
	_, err := run(t, "--config", cfg, "ask")
	require.Error(t, err)

	_, err = run(t, "--config", cfg, "ask", "   ")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

// =============================================================================
// CONFIG
// =============================================================================

func TestConfig_InvalidFlags(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, "--config", cfg, "--log-level", "loud", "models")
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, ExitCode(err))

	_, err = run(t, "--config", cfg, "--model", "gpt-9", "models")
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, ExitCode(err))
}

func TestConfig_MissingFile(t *testing.T) {
	writeConfig(t)
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "absent.toml"), "models")
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, ExitCode(err))
}

func TestConfig_GetSet(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "--config", cfg, "config", "get", "generation.min_delay_ms")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	_, err = run(t, "--config", cfg, "config", "set", "ui.show_timestamps", "false")
	require.NoError(t, err)

	out, err = run(t, "--config", cfg, "config", "get", "ui.show_timestamps")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)

	// Other values survive the rewrite
	out, err = run(t, "--config", cfg, "config", "get", "generation.min_delay_ms")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
}

func TestConfig_SetRejectsInvalid(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, "--config", cfg, "config", "set", "log.level", "loud")
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, ExitCode(err))

	_, err = run(t, "--config", cfg, "config", "set", "no.such.key", "1")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestConfig_PathAndKeys(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "--config", cfg, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, cfg+"\n", out)

	out, err = run(t, "--config", cfg, "config", "keys")
	require.NoError(t, err)
	assert.Contains(t, out, "metrics.addr")
	assert.Contains(t, out, "generation.clamp_parameters")
}

// =============================================================================
// CHAT REPL
// =============================================================================

func TestChat_Session(t *testing.T) {
	cfg := writeConfig(t)
	reader := &fakeReader{lines: []string{
		"/model gemini-pro",
		"hello",
		"/template code-review",
		"",
		"/quit",
		"never read",
	}}

	out, err := runChat(t, cfg, reader)
	require.NoError(t, err)

	assert.Contains(t, out, "Switched to Gemini Pro.")
	assert.Equal(t, 2, strings.Count(out, "gemini-pro>"), "one reply for the prompt and one for the template")
	assert.Contains(t, out, "Draft (Enter on an empty line sends it):")
	assert.Equal(t, []string{"never read"}, reader.lines)
	assert.True(t, reader.closed)
	assert.Equal(t, []string{"/model gemini-pro", "hello", "/template code-review", "/quit"}, reader.history)

	require.NotNil(t, reader.completer)
	assert.Contains(t, reader.completer("/mo"), "/model ")
}

func TestChat_EndOfInput(t *testing.T) {
	cfg := writeConfig(t)
	reader := &fakeReader{lines: []string{"", "  ", "/bogus"}}

	out, err := runChat(t, cfg, reader)
	require.NoError(t, err)
	assert.Contains(t, out, "error:")
	assert.NotContains(t, out, "gpt-4>", "no reply was printed")
	assert.True(t, reader.closed)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitGeneralError, ExitCode(io.EOF))
	assert.Equal(t, ExitUsageError, ExitCode(fmt.Errorf("wrapped: %w", usageError("bad"))))
}

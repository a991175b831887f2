// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug":   log.DebugLevel,
		"INFO":    log.InfoLevel,
		"warn":    log.WarnLevel,
		"warning": log.WarnLevel,
		"error":   log.ErrorLevel,
		"":        log.InfoLevel,
		"verbose": log.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
	assert.True(t, ValidLevel("debug"))
	assert.False(t, ValidLevel("verbose"))
}

func TestNew_Output(t *testing.T) {
	var buf bytes.Buffer
	l, closer, err := New(Options{Level: "warn", Output: &buf})
	require.NoError(t, err)
	defer closer()

	l.Info("hidden")
	l.Warn("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "key=value")
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "lumi.log")
	l, closer, err := New(Options{Level: "debug", File: path})
	require.NoError(t, err)

	l.Debug("generation scheduled", "delay", "1.8s")
	require.NoError(t, closer())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "generation scheduled")
}

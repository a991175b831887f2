// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// =============================================================================
// DEFAULTS
// =============================================================================

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "gpt-4", cfg.DefaultModel)
	assert.Equal(t, 1500*time.Millisecond, cfg.Generation.MinDelay())
	assert.Equal(t, 2500*time.Millisecond, cfg.Generation.MaxDelay())
	assert.Equal(t, 500*time.Millisecond, cfg.Generation.RetryBase())
	assert.False(t, cfg.Generation.ClampParameters)
	assert.Equal(t, "", cfg.Metrics.Addr)
}

// =============================================================================
// LOADING
// =============================================================================

func TestLoadFromPath(t *testing.T) {
	path := writeConfig(t, `
default_model = "claude-3-opus"
data_dir = "/tmp/lumi-data"

[generation]
min_delay_ms = 100
max_delay_ms = 200
clamp_parameters = true

[ui]
render_markdown = false

[log]
level = "debug"

[metrics]
addr = "127.0.0.1:9090"
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "claude-3-opus", cfg.DefaultModel)
	assert.Equal(t, "/tmp/lumi-data", cfg.DataDir)
	assert.Equal(t, 100*time.Millisecond, cfg.Generation.MinDelay())
	assert.Equal(t, 200*time.Millisecond, cfg.Generation.MaxDelay())
	assert.True(t, cfg.Generation.ClampParameters)
	assert.False(t, cfg.UI.RenderMarkdown)
	assert.True(t, cfg.UI.ShowTimestamps, "keys absent from the file keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:9090", cfg.Metrics.Addr)
	assert.Equal(t, 3, cfg.Generation.RetryAttempts)
}

func TestLoadFromPath_UnknownKey(t *testing.T) {
	path := writeConfig(t, "defualt_model = \"gpt-4\"\n")
	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "defualt_model")
}

func TestLoadFromPath_Malformed(t *testing.T) {
	path := writeConfig(t, "default_model = \n")
	_, err := LoadFromPath(path)
	assert.Error(t, err)
}

func TestLoadFromPath_Invalid(t *testing.T) {
	path := writeConfig(t, `
default_model = "gpt-5"
[generation]
min_delay_ms = 300
max_delay_ms = 100
`)
	_, err := LoadFromPath(path)
	require.Error(t, err)

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	fields := make(map[string]bool)
	for _, e := range verrs {
		fields[e.Field] = true
	}
	assert.True(t, fields["default_model"])
	assert.True(t, fields["generation.max_delay_ms"])
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().DefaultModel, cfg.DefaultModel)
}

// =============================================================================
// ENV OVERRIDES
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("LUMI_MODEL", "gemini-pro")
	t.Setenv("LUMI_DATA_DIR", "/data")
	t.Setenv("LUMI_LOG_LEVEL", "warn")
	t.Setenv("LUMI_METRICS_ADDR", ":9100")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, "gemini-pro", cfg.DefaultModel)
	assert.Equal(t, "/data", cfg.DataDir)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, ":9100", cfg.Metrics.Addr)
}

func TestLoadFromPath_EnvBeatsFile(t *testing.T) {
	t.Setenv("LUMI_MODEL", "gpt-3.5-turbo")
	path := writeConfig(t, "default_model = \"claude-3-opus\"\n")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-3.5-turbo", cfg.DefaultModel)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"negative min delay", func(c *Config) { c.Generation.MinDelayMs = -1 }, "generation.min_delay_ms"},
		{"retry attempts", func(c *Config) { c.Generation.RetryAttempts = 0 }, "generation.retry_attempts"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"rate limit", func(c *Config) { c.Metrics.RateLimit = 0 }, "metrics.rate_limit"},
		{"burst", func(c *Config) { c.Metrics.Burst = 0 }, "metrics.burst"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)

			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs))
			require.Len(t, verrs, 1)
			assert.Equal(t, tc.field, verrs[0].Field)
		})
	}
}

// =============================================================================
// SAVE
// =============================================================================

func TestSaveTOML_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.DefaultModel = "claude-3-sonnet"
	cfg.Generation.ClampParameters = true

	require.NoError(t, SaveTOML(cfg, path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

// =============================================================================
// GET / SET
// =============================================================================

func TestGetSet(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("generation.min_delay_ms")
	require.NoError(t, err)
	assert.Equal(t, 1500, v)

	require.NoError(t, cfg.Set("generation.min_delay_ms", "250"))
	assert.Equal(t, 250, cfg.Generation.MinDelayMs)

	require.NoError(t, cfg.Set("ui.render-markdown", "false"))
	assert.False(t, cfg.UI.RenderMarkdown)

	require.NoError(t, cfg.Set("default_model", "gemini-pro"))
	assert.Equal(t, "gemini-pro", cfg.DefaultModel)

	assert.Error(t, cfg.Set("generation.min_delay_ms", "soon"))
	assert.Error(t, cfg.Set("ui.show_timestamps", "maybe"))
	_, err = cfg.Get("nope.field")
	assert.Error(t, err)
	_, err = cfg.Get("generation")
	assert.Error(t, err)
	_, err = cfg.Get("")
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	keys := Keys()
	assert.Contains(t, keys, "default_model")
	assert.Contains(t, keys, "generation.clamp_parameters")
	assert.Contains(t, keys, "metrics.addr")

	cfg := Default()
	for _, k := range keys {
		_, err := cfg.Get(k)
		assert.NoError(t, err, "key %s", k)
	}
}

func TestResolvedPaths(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/srv/lumi"
	dir, err := cfg.ResolvedDataDir()
	require.NoError(t, err)
	assert.Equal(t, "/srv/lumi", dir)

	logFile, err := cfg.ResolvedLogFile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/lumi", "lumi.log"), logFile)
}

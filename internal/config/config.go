// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/lumi-tui/internal/logger"
	"github.com/jeranaias/lumi-tui/internal/model"
	"github.com/jeranaias/lumi-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete lumi configuration.
type Config struct {
	// DefaultModel is the model selected at start-up
	DefaultModel string `toml:"default_model"`

	// DataDir holds prefs.db and the log file (default: ~/.lumi)
	DataDir string `toml:"data_dir"`

	Generation GenerationConfig `toml:"generation"`
	UI         UIConfig         `toml:"ui"`
	Log        LogConfig        `toml:"log"`
	Metrics    MetricsConfig    `toml:"metrics"`
}

// GenerationConfig controls the simulated generation pipeline.
type GenerationConfig struct {
	// MinDelayMs and MaxDelayMs bound the simulated completion delay
	MinDelayMs int `toml:"min_delay_ms"`
	MaxDelayMs int `toml:"max_delay_ms"`

	// ClampParameters makes the store clamp parameter updates
	ClampParameters bool `toml:"clamp_parameters"`

	// RetryAttempts is the total responder attempts on rate limiting
	RetryAttempts int `toml:"retry_attempts"`

	// RetryBaseMs is the first retry backoff
	RetryBaseMs int `toml:"retry_base_ms"`
}

// MinDelay returns the lower delay bound.
func (g GenerationConfig) MinDelay() time.Duration {
	return time.Duration(g.MinDelayMs) * time.Millisecond
}

// MaxDelay returns the upper delay bound.
func (g GenerationConfig) MaxDelay() time.Duration {
	return time.Duration(g.MaxDelayMs) * time.Millisecond
}

// RetryBase returns the first retry backoff.
func (g GenerationConfig) RetryBase() time.Duration {
	return time.Duration(g.RetryBaseMs) * time.Millisecond
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// ShowTimestamps shows message times in the transcript
	ShowTimestamps bool `toml:"show_timestamps"`
	// RenderMarkdown renders assistant replies as markdown
	RenderMarkdown bool `toml:"render_markdown"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `toml:"level"`
	// File receives logs while the TUI runs (default: <data_dir>/lumi.log)
	File string `toml:"file"`
}

// MetricsConfig configures the inspection server.
type MetricsConfig struct {
	// Addr is the listen address; empty disables the server
	Addr string `toml:"addr"`
	// RateLimit is the per-client request rate (requests/second)
	RateLimit float64 `toml:"rate_limit"`
	// Burst is the per-client burst size
	Burst int `toml:"burst"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DefaultModel: "gpt-4",
		Generation: GenerationConfig{
			MinDelayMs:    1500,
			MaxDelayMs:    2500,
			RetryAttempts: 3,
			RetryBaseMs:   500,
		},
		UI: UIConfig{
			ShowTimestamps: true,
			RenderMarkdown: true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			RateLimit: 10,
			Burst:     20,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the lumi configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".lumi"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ResolvedDataDir returns DataDir, or the config directory when unset.
func (c *Config) ResolvedDataDir() (string, error) {
	if c.DataDir != "" {
		return expandHome(c.DataDir)
	}
	return ConfigDir()
}

// ResolvedLogFile returns Log.File, or lumi.log in the data directory.
func (c *Config) ResolvedLogFile() (string, error) {
	if c.Log.File != "" {
		return expandHome(c.Log.File)
	}
	dir, err := c.ResolvedDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lumi.log"), nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads ~/.lumi/config.toml if it exists, otherwise the defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPathTOML()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadTOML decodes a TOML file over cfg. Keys absent from the file keep
// their current values.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return fillDefaults(cfg)
}

// LoadFromPath loads configuration from a specific file with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in values a file explicitly zeroed.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	if cfg.DefaultModel == "" {
		cfg.DefaultModel = defaults.DefaultModel
	}
	if cfg.Generation.RetryAttempts == 0 {
		cfg.Generation.RetryAttempts = defaults.Generation.RetryAttempts
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Metrics.RateLimit == 0 {
		cfg.Metrics.RateLimit = defaults.Metrics.RateLimit
	}
	if cfg.Metrics.Burst == 0 {
		cfg.Metrics.Burst = defaults.Metrics.Burst
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file atomically.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# lumi configuration file")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration. It returns ValidateErrors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.DefaultModel != "" {
		if _, ok := model.DefaultCatalog().FindModel(c.DefaultModel); !ok {
			errs = append(errs, ValidationError{
				Field:   "default_model",
				Message: fmt.Sprintf("unknown model '%s', must be one of: %s", c.DefaultModel, strings.Join(model.DefaultCatalog().ModelIDs(), ", ")),
			})
		}
	}

	g := c.Generation
	if g.MinDelayMs < 0 {
		errs = append(errs, ValidationError{Field: "generation.min_delay_ms", Message: "must not be negative"})
	}
	if g.MaxDelayMs < g.MinDelayMs {
		errs = append(errs, ValidationError{
			Field:   "generation.max_delay_ms",
			Message: fmt.Sprintf("must be >= min_delay_ms (%d)", g.MinDelayMs),
		})
	}
	if g.RetryAttempts < 1 || g.RetryAttempts > 10 {
		errs = append(errs, ValidationError{Field: "generation.retry_attempts", Message: "must be between 1 and 10"})
	}
	if g.RetryBaseMs < 0 {
		errs = append(errs, ValidationError{Field: "generation.retry_base_ms", Message: "must not be negative"})
	}

	if !logger.ValidLevel(c.Log.Level) {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if c.Metrics.RateLimit <= 0 {
		errs = append(errs, ValidationError{Field: "metrics.rate_limit", Message: "must be positive"})
	}
	if c.Metrics.Burst < 1 {
		errs = append(errs, ValidationError{Field: "metrics.burst", Message: "must be at least 1"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//   - LUMI_MODEL: overrides default_model
//   - LUMI_DATA_DIR: overrides data_dir
//   - LUMI_LOG_LEVEL: overrides log.level
//   - LUMI_METRICS_ADDR: overrides metrics.addr
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("LUMI_MODEL"); v != "" {
		c.DefaultModel = v
	}
	if v := os.Getenv("LUMI_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("LUMI_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LUMI_METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation
// (e.g., "generation.min_delay_ms").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("field '%s' is a section", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go
// field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type
// conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			boolVal, err := strconv.ParseBool(strVal)
			if err != nil {
				return fmt.Errorf("invalid boolean value: %v", err)
			}
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// Keys returns all leaf configuration keys in dot notation.
func Keys() []string {
	var keys []string
	var walk func(t reflect.Type, prefix string)
	walk = func(t reflect.Type, prefix string) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name := f.Tag.Get("toml")
			if f.Type.Kind() == reflect.Struct {
				walk(f.Type, prefix+name+".")
				continue
			}
			keys = append(keys, prefix+name)
		}
	}
	walk(reflect.TypeOf(Config{}), "")
	return keys
}

// String returns the configuration as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}

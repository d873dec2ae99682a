// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for nums.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.nums/config.toml
//   - ~/.nums/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/nums-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete nums configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Backend is the hosted data service holding the plant tables.
	Backend BackendConfig `toml:"backend" json:"backend"`

	// Session identifies the signed-in operator.
	Session SessionConfig `toml:"session" json:"session"`

	// Assistant controls the simulated NUMI assistant.
	Assistant AssistantConfig `toml:"assistant" json:"assistant"`

	UI     UIConfig     `toml:"ui" json:"ui"`
	Cache  CacheConfig  `toml:"cache" json:"cache"`
	Export ExportConfig `toml:"export" json:"export"`
	Log    LogConfig    `toml:"log" json:"log"`
	Server ServerConfig `toml:"server" json:"server"`
}

// BackendConfig describes how to reach the data service.
type BackendConfig struct {
	// Kind is "rest" (PostgREST-compatible endpoint), "postgres" (direct)
	// or "memory" (seeded demo data, nothing leaves the process).
	Kind string `toml:"kind" json:"kind"`
	// URL is the base URL of the REST endpoint, e.g. https://xyz.supabase.co
	URL string `toml:"url" json:"url"`
	// APIKey is sent as both the apikey header and the bearer token.
	APIKey string `toml:"api_key" json:"api_key"`
	// DSN is the Postgres connection string used when Kind is "postgres".
	DSN string `toml:"dsn" json:"dsn"`
	// TimeoutSecs bounds a single request.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// MaxRetries is the number of retries for 5xx/429 responses.
	MaxRetries int `toml:"max_retries" json:"max_retries"`
	// RateLimitRPS caps outgoing requests per second (0 = unlimited).
	RateLimitRPS float64 `toml:"rate_limit_rps" json:"rate_limit_rps"`
}

// SessionConfig identifies the current operator.
type SessionConfig struct {
	UserID   string `toml:"user_id" json:"user_id"`
	UserName string `toml:"user_name" json:"user_name"`
	// Role is one of Admin, Mantech, Opscrew, Guest.
	Role string `toml:"role" json:"role"`
}

// AssistantConfig configures the simulated assistant.
type AssistantConfig struct {
	// ReplyDelayMs is the fixed delay before a canned reply is appended.
	ReplyDelayMs int `toml:"reply_delay_ms" json:"reply_delay_ms"`
	// ReplyPolicy selects canned replies: "round_robin" or "random".
	ReplyPolicy string `toml:"reply_policy" json:"reply_policy"`
	// PlaceholderIntervalMs is how often the input hint rotates.
	PlaceholderIntervalMs int `toml:"placeholder_interval_ms" json:"placeholder_interval_ms"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// Theme is "dark", "light" or "auto".
	Theme string `toml:"theme" json:"theme"`
	// CompactThresholdPx is the widest viewport still treated as compact.
	CompactThresholdPx int `toml:"compact_threshold_px" json:"compact_threshold_px"`
	// CellWidthPx converts terminal columns into viewport pixels.
	CellWidthPx int `toml:"cell_width_px" json:"cell_width_px"`
	// Mouse enables mouse tracking (needed to drag the assistant panel).
	Mouse bool `toml:"mouse" json:"mouse"`
}

// CacheConfig controls the query cache and the offline snapshot store.
type CacheConfig struct {
	TTLSecs         int    `toml:"ttl_secs" json:"ttl_secs"`
	SnapshotEnabled bool   `toml:"snapshot_enabled" json:"snapshot_enabled"`
	SnapshotPath    string `toml:"snapshot_path" json:"snapshot_path"`
	// SnapshotRetentionHours drops snapshots older than this on startup.
	SnapshotRetentionHours int `toml:"snapshot_retention_hours" json:"snapshot_retention_hours"`
}

// ExportConfig controls data exports.
type ExportConfig struct {
	Dir string `toml:"dir" json:"dir"`
	// Format is "csv" or "xlsx".
	Format string `toml:"format" json:"format"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level" json:"level"`
	// Format is "text" or "json".
	Format string `toml:"format" json:"format"`
	// Output is "stderr", "stdout" or "file".
	Output   string `toml:"output" json:"output"`
	FilePath string `toml:"file_path" json:"file_path"`
}

// ServerConfig configures `nums serve`.
type ServerConfig struct {
	Addr string `toml:"addr" json:"addr"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Backend: BackendConfig{
			Kind:         "rest",
			TimeoutSecs:  15,
			MaxRetries:   3,
			RateLimitRPS: 10,
		},
		Session: SessionConfig{
			UserName: "Operator",
			Role:     "Guest",
		},
		Assistant: AssistantConfig{
			ReplyDelayMs:          1000,
			ReplyPolicy:           "round_robin",
			PlaceholderIntervalMs: 3000,
		},
		UI: UIConfig{
			Theme:              "auto",
			CompactThresholdPx: 768,
			CellWidthPx:        8,
			Mouse:              true,
		},
		Cache: CacheConfig{
			TTLSecs:                30,
			SnapshotEnabled:        true,
			SnapshotRetentionHours: 168,
		},
		Export: ExportConfig{
			Dir:    ".",
			Format: "csv",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8787",
		},
	}
}

// ReplyDelay returns the assistant reply delay as a duration.
func (a AssistantConfig) ReplyDelay() time.Duration {
	return time.Duration(a.ReplyDelayMs) * time.Millisecond
}

// PlaceholderInterval returns the hint rotation period as a duration.
func (a AssistantConfig) PlaceholderInterval() time.Duration {
	return time.Duration(a.PlaceholderIntervalMs) * time.Millisecond
}

// Timeout returns the per-request timeout.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSecs) * time.Second
}

// TTL returns the query cache lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSecs) * time.Second
}

// SnapshotRetention returns how long offline snapshots are kept.
func (c CacheConfig) SnapshotRetention() time.Duration {
	return time.Duration(c.SnapshotRetentionHours) * time.Hour
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the nums configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".nums"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions tightens config files to 0600; they carry API keys.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	var loadErr error

	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			cfg, err := LoadFromPath(tomlPath)
			if err == nil {
				return cfg, nil
			}
			loadErr = err
		}
	}

	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			cfg, err := LoadFromPath(jsonPath)
			if err == nil {
				return cfg, nil
			}
			loadErr = err
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Defaults are usable even when a file failed to parse.
	return cfg, loadErr
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full validation.
// Fields missing from the file keep their default values.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ReadFile loads path for editing: defaults plus the file contents, with
// no environment overrides. A missing file yields the defaults.
func ReadFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	var err error
	if strings.HasSuffix(path, ".json") {
		err = LoadJSON(cfg, path)
	} else {
		err = LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes cfg to path, as JSON when path ends in .json and TOML
// otherwise.
func Save(cfg *Config, path string) error {
	if strings.HasSuffix(path, ".json") {
		return SaveJSON(cfg, path)
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var b strings.Builder
	b.WriteString("# nums configuration file\n")
	b.WriteString("# Generated by nums - edit with care\n\n")

	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
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
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var validRoles = map[string]bool{"Admin": true, "Mantech": true, "Opscrew": true, "Guest": true}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Backend
	switch c.Backend.Kind {
	case "rest":
		if c.Backend.URL != "" {
			u, err := url.Parse(c.Backend.URL)
			if err != nil || u.Scheme == "" || u.Host == "" {
				errs = append(errs, ValidationError{
					Field:   "backend.url",
					Message: fmt.Sprintf("invalid URL '%s'", c.Backend.URL),
				})
			} else if u.Scheme != "http" && u.Scheme != "https" {
				errs = append(errs, ValidationError{
					Field:   "backend.url",
					Message: fmt.Sprintf("unsupported scheme '%s', must be http or https", u.Scheme),
				})
			}
		}
	case "postgres":
		if c.Backend.DSN == "" {
			errs = append(errs, ValidationError{
				Field:   "backend.dsn",
				Message: "required when backend.kind is postgres",
			})
		}
	case "memory":
	default:
		errs = append(errs, ValidationError{
			Field:   "backend.kind",
			Message: fmt.Sprintf("invalid kind '%s', must be one of: rest, postgres, memory", c.Backend.Kind),
		})
	}
	if c.Backend.TimeoutSecs < 1 || c.Backend.TimeoutSecs > 300 {
		errs = append(errs, ValidationError{
			Field:   "backend.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 300, got %d", c.Backend.TimeoutSecs),
		})
	}
	if c.Backend.MaxRetries < 0 || c.Backend.MaxRetries > 10 {
		errs = append(errs, ValidationError{
			Field:   "backend.max_retries",
			Message: fmt.Sprintf("must be between 0 and 10, got %d", c.Backend.MaxRetries),
		})
	}
	if c.Backend.RateLimitRPS < 0 {
		errs = append(errs, ValidationError{
			Field:   "backend.rate_limit_rps",
			Message: "must not be negative",
		})
	}

	// Session
	if !validRoles[c.Session.Role] {
		errs = append(errs, ValidationError{
			Field:   "session.role",
			Message: fmt.Sprintf("invalid role '%s', must be one of: Admin, Mantech, Opscrew, Guest", c.Session.Role),
		})
	}

	// Assistant
	if c.Assistant.ReplyDelayMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "assistant.reply_delay_ms",
			Message: "must not be negative",
		})
	}
	if c.Assistant.ReplyPolicy != "round_robin" && c.Assistant.ReplyPolicy != "random" {
		errs = append(errs, ValidationError{
			Field:   "assistant.reply_policy",
			Message: fmt.Sprintf("invalid policy '%s', must be one of: round_robin, random", c.Assistant.ReplyPolicy),
		})
	}
	if c.Assistant.PlaceholderIntervalMs < 100 {
		errs = append(errs, ValidationError{
			Field:   "assistant.placeholder_interval_ms",
			Message: fmt.Sprintf("must be at least 100, got %d", c.Assistant.PlaceholderIntervalMs),
		})
	}

	// UI
	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}
	if c.UI.CompactThresholdPx <= 0 {
		errs = append(errs, ValidationError{
			Field:   "ui.compact_threshold_px",
			Message: "must be positive",
		})
	}
	if c.UI.CellWidthPx <= 0 {
		errs = append(errs, ValidationError{
			Field:   "ui.cell_width_px",
			Message: "must be positive",
		})
	}

	// Cache
	if c.Cache.TTLSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "cache.ttl_secs",
			Message: "must not be negative",
		})
	}
	if c.Cache.SnapshotRetentionHours < 0 {
		errs = append(errs, ValidationError{
			Field:   "cache.snapshot_retention_hours",
			Message: "must not be negative",
		})
	}

	// Export
	if c.Export.Format != "csv" && c.Export.Format != "xlsx" {
		errs = append(errs, ValidationError{
			Field:   "export.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: csv, xlsx", c.Export.Format),
		})
	}

	// Log
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, ValidationError{
			Field:   "log.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: text, json", c.Log.Format),
		})
	}
	switch c.Log.Output {
	case "stderr", "stdout":
	case "file":
		if c.Log.FilePath == "" {
			errs = append(errs, ValidationError{
				Field:   "log.file_path",
				Message: "required when log.output is file",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "log.output",
			Message: fmt.Sprintf("invalid output '%s', must be one of: stderr, stdout, file", c.Log.Output),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills zero values that a partial config file leaves behind.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if c.Backend.Kind == "" {
		c.Backend.Kind = d.Backend.Kind
	}
	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = d.Backend.TimeoutSecs
	}
	if c.Session.Role == "" {
		c.Session.Role = d.Session.Role
	}
	if c.Session.UserName == "" {
		c.Session.UserName = d.Session.UserName
	}
	if c.Assistant.ReplyPolicy == "" {
		c.Assistant.ReplyPolicy = d.Assistant.ReplyPolicy
	}
	if c.Assistant.PlaceholderIntervalMs == 0 {
		c.Assistant.PlaceholderIntervalMs = d.Assistant.PlaceholderIntervalMs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.UI.CompactThresholdPx == 0 {
		c.UI.CompactThresholdPx = d.UI.CompactThresholdPx
	}
	if c.UI.CellWidthPx == 0 {
		c.UI.CellWidthPx = d.UI.CellWidthPx
	}
	if c.Cache.SnapshotRetentionHours == 0 {
		c.Cache.SnapshotRetentionHours = d.Cache.SnapshotRetentionHours
	}
	if c.Cache.SnapshotPath == "" {
		if dir, err := ConfigDir(); err == nil {
			c.Cache.SnapshotPath = filepath.Join(dir, "snapshots.db")
		}
	}
	if c.Export.Dir == "" {
		c.Export.Dir = d.Export.Dir
	}
	if c.Export.Format == "" {
		c.Export.Format = d.Export.Format
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Log.Output == "" {
		c.Log.Output = d.Log.Output
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported variables:
//   - NUMS_BACKEND_KIND: overrides backend.kind
//   - NUMS_BACKEND_URL: overrides backend.url
//   - NUMS_API_KEY: overrides backend.api_key
//   - NUMS_DSN: overrides backend.dsn
//   - NUMS_USER_ID: overrides session.user_id
//   - NUMS_ROLE: overrides session.role
//   - NUMS_LOG_LEVEL: overrides log.level
//   - NUMS_SERVER_ADDR: overrides server.addr
func (c *Config) ApplyEnvOverrides() {
	if kind := os.Getenv("NUMS_BACKEND_KIND"); kind != "" {
		c.Backend.Kind = kind
	}
	if u := os.Getenv("NUMS_BACKEND_URL"); u != "" {
		c.Backend.URL = u
	}
	if key := os.Getenv("NUMS_API_KEY"); key != "" {
		c.Backend.APIKey = key
	}
	if dsn := os.Getenv("NUMS_DSN"); dsn != "" {
		c.Backend.DSN = dsn
	}
	if id := os.Getenv("NUMS_USER_ID"); id != "" {
		c.Session.UserID = id
	}
	if role := os.Getenv("NUMS_ROLE"); role != "" {
		c.Session.Role = role
	}
	if level := os.Getenv("NUMS_LOG_LEVEL"); level != "" {
		c.Log.Level = strings.ToLower(level)
	}
	if addr := os.Getenv("NUMS_SERVER_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "backend.url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "session.role").
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
	if key == "" {
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
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
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

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
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
			switch strings.ToLower(strVal) {
			case "1", "true", "yes", "on":
				field.SetBool(true)
			case "0", "false", "no", "off":
				field.SetBool(false)
			default:
				return fmt.Errorf("invalid boolean value: %q", strVal)
			}
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

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Clone returns a copy of the configuration. Config holds no reference types.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Redacted returns a copy with the API key and DSN password hidden.
func (c *Config) Redacted() *Config {
	safe := c.Clone()
	if safe.Backend.APIKey != "" {
		safe.Backend.APIKey = "[REDACTED]"
	}
	if safe.Backend.DSN != "" {
		safe.Backend.DSN = redactDSN(safe.Backend.DSN)
	}
	return safe
}

// String returns a JSON representation with secrets redacted.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c.Redacted(), "", "  ")
	return string(data)
}

// redactDSN hides the password component of a postgres URL.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return "[REDACTED]"
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access unless SetGlobal ran first. Thread-safe.
func Global() *Config {
	globalConfigMu.RLock()
	cfg := globalConfig
	globalConfigMu.RUnlock()
	if cfg != nil {
		return cfg
	}

	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
			cfg.SetDefaults()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal loads path and installs it as the global configuration.
// The global is left alone when the file is invalid. Thread-safe.
func ReloadGlobal(path string) (*Config, error) {
	cfg, err := LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	SetGlobal(cfg)
	return cfg, nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}

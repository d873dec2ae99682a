// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateHome points the config directory at a temp dir.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	return home
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
	if cfg.Assistant.ReplyDelay() != time.Second {
		t.Errorf("ReplyDelay = %v, want 1s", cfg.Assistant.ReplyDelay())
	}
	if cfg.Assistant.PlaceholderInterval() != 3*time.Second {
		t.Errorf("PlaceholderInterval = %v, want 3s", cfg.Assistant.PlaceholderInterval())
	}
	if cfg.UI.CompactThresholdPx != 768 {
		t.Errorf("CompactThresholdPx = %d, want 768", cfg.UI.CompactThresholdPx)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Backend.Kind = "mongo"
	cfg.Session.Role = "Superuser"
	cfg.Assistant.ReplyPolicy = "llm"
	cfg.Export.Format = "pdf"

	err := cfg.Validate()
	require.Error(t, err)

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))

	fields := make(map[string]bool)
	for _, e := range verrs {
		fields[e.Field] = true
	}
	for _, want := range []string{"backend.kind", "session.role", "assistant.reply_policy", "export.format"} {
		assert.True(t, fields[want], "expected validation error for %s", want)
	}
}

func TestValidate_Backend(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"rest without url is allowed", func(c *Config) {}, ""},
		{"rest with bad scheme", func(c *Config) { c.Backend.URL = "ftp://example.com" }, "backend.url"},
		{"rest with https", func(c *Config) { c.Backend.URL = "https://abc.supabase.co" }, ""},
		{"postgres requires dsn", func(c *Config) { c.Backend.Kind = "postgres" }, "backend.dsn"},
		{"postgres with dsn", func(c *Config) {
			c.Backend.Kind = "postgres"
			c.Backend.DSN = "postgres://nums@localhost/nums"
		}, ""},
		{"negative retries", func(c *Config) { c.Backend.MaxRetries = -1 }, "backend.max_retries"},
		{"file logging needs a path", func(c *Config) { c.Log.Output = "file" }, "log.file_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromPath_TOMLKeepsDefaultsForMissingFields(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[backend]
url = "https://plant.example.com"
api_key = "anon"

[session]
user_id = "u-1"
role = "Admin"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "https://plant.example.com", cfg.Backend.URL)
	assert.Equal(t, "Admin", cfg.Session.Role)
	assert.Equal(t, "rest", cfg.Backend.Kind)
	assert.Equal(t, 1000, cfg.Assistant.ReplyDelayMs)
	assert.Equal(t, "round_robin", cfg.Assistant.ReplyPolicy)
}

func TestLoadFromPath_JSON(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"assistant":{"reply_delay_ms":250}}`), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Assistant.ReplyDelay())
}

func TestLoadFromPath_Invalid(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[session]\nrole = \"Boss\"\n"), 0600))

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session.role")
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("NUMS_BACKEND_URL", "https://env.example.com")
	t.Setenv("NUMS_API_KEY", "secret")
	t.Setenv("NUMS_ROLE", "Mantech")
	t.Setenv("NUMS_LOG_LEVEL", "DEBUG")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "https://env.example.com", cfg.Backend.URL)
	assert.Equal(t, "secret", cfg.Backend.APIKey)
	assert.Equal(t, "Mantech", cfg.Session.Role)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Session.UserName = "Jesse"
	cfg.Export.Format = "xlsx"
	require.NoError(t, SaveTOML(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("config saved with mode %o, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "Jesse", loaded.Session.UserName)
	assert.Equal(t, "xlsx", loaded.Export.Format)
}

func TestGetSet_DotNotation(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("session.role", "Opscrew"))
	require.NoError(t, cfg.Set("assistant.reply_delay_ms", "1500"))
	require.NoError(t, cfg.Set("ui.mouse", "false"))

	v, err := cfg.Get("session.role")
	require.NoError(t, err)
	assert.Equal(t, "Opscrew", v)
	assert.Equal(t, 1500, cfg.Assistant.ReplyDelayMs)
	assert.False(t, cfg.UI.Mouse)

	_, err = cfg.Get("session.nope")
	assert.Error(t, err)
	_, err = cfg.Get("session.role.deeper")
	assert.Error(t, err)
}

func TestSet_RejectsBadBoolean(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Set("ui.mouse", "maybe"))
	assert.True(t, cfg.UI.Mouse)
}

func TestReadFile_IgnoresEnvOverrides(t *testing.T) {
	isolateHome(t)
	t.Setenv("NUMS_API_KEY", "from-env")

	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Backend.APIKey, "missing file yields defaults")

	cfg.Session.UserName = "Juan"
	require.NoError(t, Save(cfg, path))

	again, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Juan", again.Session.UserName)
	assert.Empty(t, again.Backend.APIKey)
}

func TestSave_PicksFormatByExtension(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Export.Format = "xlsx"

	jsonPath := filepath.Join(dir, "config.json")
	require.NoError(t, Save(cfg, jsonPath))
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"format": "xlsx"`)

	tomlPath := filepath.Join(dir, "config.toml")
	require.NoError(t, Save(cfg, tomlPath))
	data, err = os.ReadFile(tomlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[export]")
}

func TestReloadGlobal(t *testing.T) {
	isolateHome(t)
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := Default()
	cfg.Session.UserName = "first"
	require.NoError(t, SaveTOML(cfg, path))

	got, err := ReloadGlobal(path)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Session.UserName)
	assert.Equal(t, "first", Global().Session.UserName)

	require.NoError(t, os.WriteFile(path, []byte("[export]\nformat = \"pdf\"\n"), 0600))
	_, err = ReloadGlobal(path)
	assert.Error(t, err)
	assert.Equal(t, "first", Global().Session.UserName, "invalid file leaves the global alone")
}

func TestCacheConfig_SnapshotRetention(t *testing.T) {
	cfg := Default()
	cfg.Cache.SnapshotRetentionHours = 0
	cfg.SetDefaults()
	assert.Equal(t, 7*24*time.Hour, cfg.Cache.SnapshotRetention())

	cfg.Cache.SnapshotRetentionHours = -1
	assert.Error(t, cfg.Validate())
}

func TestString_RedactsSecrets(t *testing.T) {
	cfg := Default()
	cfg.Backend.APIKey = "super-secret-key"
	cfg.Backend.DSN = "postgres://nums:hunter2@db:5432/nums"

	s := cfg.String()
	assert.NotContains(t, s, "super-secret-key")
	assert.NotContains(t, s, "hunter2")
	assert.Contains(t, s, "[REDACTED]")

	// The original is untouched.
	assert.Equal(t, "super-secret-key", cfg.Backend.APIKey)
}

// TestConfig_ConcurrentAccess tests that Global() and SetGlobal() can be
// called concurrently without race conditions.
// Run with: go test -race -v ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	isolateHome(t)
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetGlobal(Default())
		}()
		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}

func TestGlobal_SetGlobalBeforeFirstAccess(t *testing.T) {
	isolateHome(t)
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	custom := Default()
	custom.Session.UserName = "preset"
	SetGlobal(custom)

	assert.Equal(t, "preset", Global().Session.UserName)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	isolateHome(t)
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveTOML(Default(), path))

	changed := make(chan *Config, 1)
	w, err := NewWatcher(path, func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Watch())
	defer w.Close()

	cfg := Default()
	cfg.Session.UserName = "reloaded"
	require.NoError(t, SaveTOML(cfg, path))

	select {
	case got := <-changed:
		assert.Equal(t, "reloaded", got.Session.UserName)
		assert.Equal(t, "reloaded", Global().Session.UserName)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report the change")
	}
}

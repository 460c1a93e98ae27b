package pdata

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeConfig(t, "pdata.yml", `
log_level: debug
address: 127.0.0.1:19133
store_path: ""
store_timeout: 2s
autosave_interval: 1m
disabled_traits: [fire, fuse]
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:19133", cfg.Address)
	assert.Empty(t, cfg.StorePath)
	assert.Equal(t, 2*time.Second, cfg.StoreTimeout)
	assert.Equal(t, time.Minute, cfg.AutosaveInterval)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.True(t, cfg.ImmutableCache, "unset fields keep their defaults")
	assert.False(t, cfg.TraitEnabled("fire"))
	assert.True(t, cfg.TraitEnabled("health"))
}

func TestLoadConfigJSONC(t *testing.T) {
	path := writeConfig(t, "pdata.jsonc", `{
	// players must have their data loaded
	"store_required": true,
	"immutable_cache": false
}`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.StoreRequired)
	assert.False(t, cfg.ImmutableCache)
	assert.Equal(t, ":19132", cfg.Address)
}

func TestLoadConfigInvalid(t *testing.T) {
	path := writeConfig(t, "pdata.yml", "address: [unterminated")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, "pdata.yml", "address: 127.0.0.1:1\n")
	t.Setenv("PDATA_ADDRESS", "0.0.0.0:2")
	t.Setenv("PDATA_DISABLED_TRAITS", "air,food")
	t.Setenv("PDATA_AUTOSAVE_INTERVAL", "30s")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:2", cfg.Address)
	assert.Equal(t, []string{"air", "food"}, cfg.DisabledTraits)
	assert.Equal(t, 30*time.Second, cfg.AutosaveInterval)

	t.Setenv("PDATA_STORE_TIMEOUT", "soon")
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestConfigLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	} {
		assert.Equal(t, want, Config{LogLevel: in}.Level(), in)
	}
}

func TestConfigStoreOptions(t *testing.T) {
	o := defaultStoreOptions()
	for _, opt := range (Config{StoreRequired: true, StoreTimeout: time.Second}).StoreOptions() {
		opt(&o)
	}
	assert.True(t, o.Required)
	assert.Equal(t, time.Second, o.Timeout)

	o = defaultStoreOptions()
	for _, opt := range (Config{}).StoreOptions() {
		opt(&o)
	}
	assert.False(t, o.Required)
	assert.Equal(t, 5*time.Second, o.Timeout)
}

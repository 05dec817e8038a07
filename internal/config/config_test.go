package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeanpaul/zenmap/internal/kv"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "google", cfg.Generator.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.Generator.Providers["google"].Model)
	assert.Equal(t, kv.BackendBolt, cfg.Store.Backend)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 120*time.Second, cfg.Generator.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoFileMissingKeyIsFine(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "zenmap"), cfg.DataDir)
	assert.Empty(t, cfg.Source)

	s, err := cfg.ProviderSettings("")
	require.NoError(t, err)
	assert.Equal(t, "google", s.Name)
	assert.Empty(t, s.APIKey)
}

func TestLoad_GeminiKeyFallback(t *testing.T) {
	isolate(t)
	t.Setenv("API_KEY", "from-api-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-api-key", cfg.Generator.Providers["google"].APIKey)

	t.Setenv("GEMINI_API_KEY", "from-gemini")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-gemini", cfg.Generator.Providers["google"].APIKey)
}

func TestLoad_File(t *testing.T) {
	dir := isolate(t)
	t.Setenv("MY_OPENAI_KEY", "sk-test")
	p := writeConfig(t, dir, `
data_dir: /tmp/zm
store:
  backend: badger
generator:
  provider: openai
  timeout: 45s
  providers:
    openai:
      type: openai
      base_url: https://api.openai.com/v1
      api_key: $MY_OPENAI_KEY
      model: gpt-4o-mini
log:
  level: debug
  format: json
`)

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/zm", cfg.DataDir)
	assert.Equal(t, p, cfg.Source)
	assert.Equal(t, 45*time.Second, cfg.Generator.Timeout)
	assert.Equal(t, "json", cfg.Log.Format)

	s, err := cfg.ProviderSettings("")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", s.APIKey)
	assert.Equal(t, 45*time.Second, s.Timeout)

	opts := cfg.StoreOptions()
	assert.Equal(t, kv.BackendBadger, opts.Backend)
	assert.Equal(t, kv.DefaultPath(kv.BackendBadger, "/tmp/zm"), opts.Path)
	assert.Equal(t, "/tmp/zm/zenmap.log", cfg.LogPath())

	_, ok := cfg.Generator.Providers["google"]
	assert.True(t, ok, "defaults survive alongside file providers")
}

func TestLoad_EnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("ZENMAP_STORE_BACKEND", "file")
	t.Setenv("ZENMAP_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, kv.BackendFile, cfg.Store.Backend)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad backend", func(c *Config) { c.Store.Backend = "redis" }, "store.backend"},
		{"unknown provider", func(c *Config) { c.Generator.Provider = "nope" }, "not found"},
		{"bad type", func(c *Config) { c.Generator.Providers["x"] = ProviderConfig{Type: "grpc"} }, "invalid type"},
		{"openai without url", func(c *Config) { c.Generator.Providers["x"] = ProviderConfig{Type: "openai"} }, "requires base_url"},
		{"no data dir", func(c *Config) { c.DataDir = "" }, "data_dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestRedacted(t *testing.T) {
	cfg := DefaultConfig()
	p := cfg.Generator.Providers["google"]
	p.APIKey = "AIzaSyVerySecretValue"
	cfg.Generator.Providers["google"] = p

	out, err := cfg.Redacted()
	require.NoError(t, err)
	assert.NotContains(t, out, "VerySecret")
	assert.Contains(t, out, "AIza****alue")
	assert.Equal(t, "AIzaSyVerySecretValue", cfg.Generator.Providers["google"].APIKey)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("OHARA_CONFIG_DIR", dir)
	for _, k := range []string{"OHARA_API_URL", "OHARA_API_TIMEOUT", "OHARA_LOG_LEVEL", "OHARA_LOG_FILE", "OHARA_TUI_THEME", "OHARA_TUI_MD_STYLE", "OHARA_DIAGRAM_URL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return dir
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "auto", cfg.TUI.Theme)
	assert.Empty(t, cfg.Diagrams.RendererURL)
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	dir := isolate(t)
	raw := []byte("api:\n  base_url: http://example.test/api\n  timeout: 3s\ntui:\n  theme: light\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), raw, 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://example.test/api", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, "light", cfg.TUI.Theme)

	t.Setenv("OHARA_API_URL", "http://override.test/api")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://override.test/api", cfg.API.BaseURL)
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"ok", func(*Config) {}, false},
		{"relative url", func(c *Config) { c.API.BaseURL = "/api" }, true},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }, true},
		{"bad theme", func(c *Config) { c.TUI.Theme = "solarized" }, true},
		{"bad diagram url", func(c *Config) { c.Diagrams.RendererURL = "kroki" }, true},
		{"diagram url", func(c *Config) { c.Diagrams.RendererURL = "https://kroki.io" }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Config{API: APIConfig{BaseURL: "http://localhost:8080/api", Timeout: time.Second}}
			tc.mutate(&c)
			err := c.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

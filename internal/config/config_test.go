package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()
	chdir(t, t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 15, cfg.API.TimeoutSeconds)
	assert.Equal(t, 10, cfg.Client.PageSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NotEmpty(t, cfg.Client.StatePath)
}

func TestLoadConfigFromFile(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	yaml := `
api:
  base_url: https://clinic.example/api
  timeout_seconds: 30
client:
  page_size: 25
  state_path: /tmp/clinic-state.json
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	chdir(t, dir)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://clinic.example/api", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout())
	assert.Equal(t, 25, cfg.Client.PageSize)
	assert.Equal(t, "/tmp/clinic-state.json", cfg.Client.StatePath)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfigMalformedFileFails(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("api: ["), 0o644))
	chdir(t, dir)

	_, err := LoadConfig()
	assert.Error(t, err)
}

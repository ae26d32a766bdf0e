package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	dir := t.TempDir()
	full := writeTempJSON(t, dir, "full.json", map[string]any{
		"server_base_url":  "https://agrisonic.example/",
		"database_path":    "/tmp/agri.db",
		"connect_timeout":  "5s",
		"read_timeout":     "10s",
		"write_timeout":    int64(2 * time.Second),
		"log_backend":      "zap",
		"default_language": "sw",
	})
	partial := writeTempJSON(t, dir, "partial.json", map[string]any{
		"read_timeout": "1m",
	})

	t.Run("all fields", func(t *testing.T) {
		cfg := &Config{}
		require.NoError(t, parseJson(cfg, []string{"-c", full}))

		assert.Equal(t, "https://agrisonic.example/", cfg.ServerBaseURL)
		assert.Equal(t, "/tmp/agri.db", cfg.DatabasePath)
		assert.Equal(t, 5*time.Second, cfg.ConnectTimeout)
		assert.Equal(t, 10*time.Second, cfg.ReadTimeout)
		assert.Equal(t, 2*time.Second, cfg.WriteTimeout)
		assert.Equal(t, "zap", cfg.LogBackend)
		assert.Equal(t, "sw", cfg.DefaultLanguage)
	})

	t.Run("absent fields keep current values", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJson(cfg, []string{"--config=" + partial}))

		assert.Equal(t, time.Minute, cfg.ReadTimeout)
		assert.Equal(t, 30*time.Second, cfg.ConnectTimeout)
		assert.Equal(t, "agrisonic.db", cfg.DatabasePath)
	})

	t.Run("no config flag", func(t *testing.T) {
		cfg := &Config{DatabasePath: "keep.db"}
		require.NoError(t, parseJson(cfg, []string{"status"}))
		assert.Equal(t, "keep.db", cfg.DatabasePath)
	})

	t.Run("invalid JSON is an error", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ not json`), 0o600))
		require.ErrorContains(t, parseJson(&Config{}, []string{"-c", bad}), "decode config file")
	})

	t.Run("missing file is an error", func(t *testing.T) {
		require.ErrorIs(t, parseJson(&Config{}, []string{"-c", filepath.Join(dir, "nope.json")}), os.ErrNotExist)
	})
}

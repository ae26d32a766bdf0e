package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv_NothingSet(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()
	want := *cfg

	require.NoError(t, parseEnv(cfg, ""))
	assert.Equal(t, want, *cfg)
}

func Test_parseEnv_Overlay(t *testing.T) {
	t.Setenv("AGRISONIC_SERVER_URL", "https://env.example/")
	t.Setenv("AGRISONIC_CONNECT_TIMEOUT", "7s")
	t.Setenv("AGRISONIC_LANGUAGE", "lg")

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseEnv(cfg, ""))

	assert.Equal(t, "https://env.example/", cfg.ServerBaseURL)
	assert.Equal(t, 7*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, "lg", cfg.DefaultLanguage)
}

func Test_parseEnv_DotenvFile(t *testing.T) {
	dotenv := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("AGRISONIC_LOG_BACKEND=zap\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("AGRISONIC_LOG_BACKEND") })

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseEnv(cfg, dotenv))

	assert.Equal(t, "zap", cfg.LogBackend)
}

func Test_parseEnv_MissingDotenvIsFine(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, parseEnv(cfg, filepath.Join(t.TempDir(), ".env")))
}

func Test_parseEnv_BadDuration(t *testing.T) {
	t.Setenv("AGRISONIC_WRITE_TIMEOUT", "abc")

	cfg := &Config{}
	require.ErrorContains(t, parseEnv(cfg, ""), "decode environment")
}

func Test_parseEnv_BadValueKeepsNothing(t *testing.T) {
	t.Setenv("AGRISONIC_DB_PATH", "env.db")
	t.Setenv("AGRISONIC_READ_TIMEOUT", "forever")

	cfg := &Config{}
	cfg.LoadDefaults()
	err := parseEnv(cfg, "")
	require.ErrorContains(t, err, "decode environment")

	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, "agrisonic.db", cfg.DatabasePath)
}

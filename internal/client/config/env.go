package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

type envConfig struct {
	ServerBaseURL   string        `env:"AGRISONIC_SERVER_URL"`
	DatabasePath    string        `env:"AGRISONIC_DB_PATH"`
	ConnectTimeout  time.Duration `env:"AGRISONIC_CONNECT_TIMEOUT"`
	ReadTimeout     time.Duration `env:"AGRISONIC_READ_TIMEOUT"`
	WriteTimeout    time.Duration `env:"AGRISONIC_WRITE_TIMEOUT"`
	LogLevel        string        `env:"AGRISONIC_LOG_LEVEL"`
	LogFormat       string        `env:"AGRISONIC_LOG_FORMAT"`
	LogBackend      string        `env:"AGRISONIC_LOG_BACKEND"`
	DefaultLanguage string        `env:"AGRISONIC_LANGUAGE"`
}

// parseEnv loads dotenvPath into the environment (existing variables win,
// a missing file is fine) and overlays every AGRISONIC_* variable that is set.
func parseEnv(cfg *Config, dotenvPath string) error {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}

	// StrictDecode fails on a value it cannot parse; it reports
	// ErrInvalidTarget when no variable is set at all.
	var ec envConfig
	if err := envdecode.StrictDecode(&ec); err != nil {
		if errors.Is(err, envdecode.ErrInvalidTarget) {
			return nil
		}
		return fmt.Errorf("decode environment: %w", err)
	}

	overlay(&cfg.ServerBaseURL, ec.ServerBaseURL)
	overlay(&cfg.DatabasePath, ec.DatabasePath)
	overlay(&cfg.LogLevel, ec.LogLevel)
	overlay(&cfg.LogFormat, ec.LogFormat)
	overlay(&cfg.LogBackend, ec.LogBackend)
	overlay(&cfg.DefaultLanguage, ec.DefaultLanguage)
	overlay(&cfg.ConnectTimeout, ec.ConnectTimeout)
	overlay(&cfg.ReadTimeout, ec.ReadTimeout)
	overlay(&cfg.WriteTimeout, ec.WriteTimeout)
	return nil
}

func overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}

package config

import (
	"os"
	"time"

	"github.com/agrisonic/agrisonic/internal/common"
)

// Config holds runtime settings for the Agrisonic client.
//
// Timeouts bound each phase of an API call separately; the gateway derives
// the overall per-request bound from their sum.
type Config struct {
	ServerBaseURL string
	DatabasePath  string

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	LogLevel   string
	LogFormat  string
	LogBackend string

	DefaultLanguage string
}

// LoadDefaults populates c with built-in defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:3000/"
	c.DatabasePath = "agrisonic.db"
	c.ConnectTimeout = 30 * time.Second
	c.ReadTimeout = 30 * time.Second
	c.WriteTimeout = 30 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.LogBackend = "slog"
	c.DefaultLanguage = common.DefaultLanguage
}

// LoadConfigE builds a Config from defaults, then the JSON file (if any),
// then the environment (seeded from .env when present), then flags. Later
// sources win. A source that cannot be read or parsed is an error.
func LoadConfigE() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, os.Args[1:]); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, ".env"); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, os.Args[1:]); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is LoadConfigE that panics on error.
func LoadConfig() *Config {
	cfg, err := LoadConfigE()
	if err != nil {
		panic(err)
	}
	return cfg
}

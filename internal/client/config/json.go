package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/agrisonic/agrisonic/internal/flagx"
	"github.com/agrisonic/agrisonic/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Only fields present in
// the file override the current values.
type JsonConfig struct {
	ServerBaseURL   *string         `json:"server_base_url"`
	DatabasePath    *string         `json:"database_path"`
	ConnectTimeout  *timex.Duration `json:"connect_timeout"`
	ReadTimeout     *timex.Duration `json:"read_timeout"`
	WriteTimeout    *timex.Duration `json:"write_timeout"`
	LogLevel        *string         `json:"log_level"`
	LogFormat       *string         `json:"log_format"`
	LogBackend      *string         `json:"log_backend"`
	DefaultLanguage *string         `json:"default_language"`
}

// parseJson overlays cfg with the file named by -c / --config in args.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}

	setString(&cfg.ServerBaseURL, jc.ServerBaseURL)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.LogBackend, jc.LogBackend)
	setString(&cfg.DefaultLanguage, jc.DefaultLanguage)

	if jc.ConnectTimeout != nil {
		cfg.ConnectTimeout = jc.ConnectTimeout.Duration
	}
	if jc.ReadTimeout != nil {
		cfg.ReadTimeout = jc.ReadTimeout.Duration
	}
	if jc.WriteTimeout != nil {
		cfg.WriteTimeout = jc.WriteTimeout.Duration
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

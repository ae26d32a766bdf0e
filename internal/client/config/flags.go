package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/agrisonic/agrisonic/internal/flagx"
)

// parseFlags overlays cfg with the flags it owns. Everything else in args
// (cobra subcommands, their flags) is filtered out first.
//
//	-a, --addr         API base URL
//	-d, --db           SQLite database path
//	--log-level        debug, info, warn, error
//	--log-backend      slog or zap
//	--log-format       text or json
//	--timeout          sets connect, read and write timeouts at once
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{
		"-a", "--addr", "-d", "--db", "--log-level", "-log-level", "--log-backend", "-log-backend", "--log-format", "-log-format", "--timeout", "-timeout",
	})

	fs := flag.NewFlagSet("agrisonic", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "API base URL")
	fs.StringVar(&cfg.ServerBaseURL, "addr", cfg.ServerBaseURL, "API base URL")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local database")
	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "path to the local database")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogBackend, "log-backend", cfg.LogBackend, "log backend (slog, zap)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (text, json)")
	timeout := fs.Duration("timeout", 0, "connect/read/write timeout")

	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	if *timeout > 0 {
		cfg.ConnectTimeout = *timeout
		cfg.ReadTimeout = *timeout
		cfg.WriteTimeout = *timeout
	}
	return nil
}

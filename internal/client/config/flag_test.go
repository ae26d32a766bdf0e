package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected  *Config
		name      string
		args      []string
		expectErr bool
	}{
		{
			name: "short flags",
			args: []string{"-a", "http://10.0.0.2:3000/", "-d", "x.db"},
			expected: &Config{
				ServerBaseURL: "http://10.0.0.2:3000/",
				DatabasePath:  "x.db",
			},
		},
		{
			name: "long flags mixed with subcommand",
			args: []string{"status", "--addr=https://api/", "--log-level", "debug", "--log-backend", "zap", "--log-format", "json"},
			expected: &Config{
				ServerBaseURL: "https://api/",
				LogLevel:      "debug",
				LogBackend:    "zap",
				LogFormat:     "json",
			},
		},
		{
			name: "timeout applies to all phases",
			args: []string{"--timeout", "5s"},
			expected: &Config{
				ConnectTimeout: 5 * time.Second,
				ReadTimeout:    5 * time.Second,
				WriteTimeout:   5 * time.Second,
			},
		},
		{
			name:      "bad timeout is an error",
			args:      []string{"--timeout", "abc"},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := parseFlags(cfg, tt.args)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}

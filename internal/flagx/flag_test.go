package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-a", "http://api.local/", "repl", "-v"},
			allowedFlags: []string{"-a", "--addr"},
			want:         []string{"-a", "http://api.local/"},
		},
		{
			name:         "long flag with equals",
			args:         []string{"--db=/tmp/a.db", "status"},
			allowedFlags: []string{"-d", "--db"},
			want:         []string{"--db=/tmp/a.db"},
		},
		{
			name:         "order preserved across forms",
			args:         []string{"--addr=first", "-a", "second", "-x", "1"},
			allowedFlags: []string{"-a", "--addr"},
			want:         []string{"--addr=first", "-a", "second"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{},
		},
		{
			name:         "flag without value at end",
			args:         []string{"-c"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "flag followed by another flag",
			args:         []string{"-c", "-notvalue"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestConfigPath(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short", []string{"-c", "cfg.json"}, "cfg.json"},
		{"long equals", []string{"--config=other.json", "status"}, "other.json"},
		{"single dash long", []string{"-config", "x.json"}, "x.json"},
		{"absent", []string{"status", "-a", "http://x/"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigPath(tt.args))
		})
	}
}

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SlogJSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Backend: "slog", Level: "warn", Format: "json", Output: &buf})
	require.NoError(t, err)

	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown", "path", "api/auth/signout")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "api/auth/signout", rec["path"])
}

func TestNew_ZapBackend(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Backend: "zap", Level: "debug", Format: "json", Output: &buf})
	require.NoError(t, err)

	log.With("component", "session").Debug(context.Background(), "transition", "to", "authenticated")
	require.NoError(t, log.(*ZapLogger).Sync())

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "transition", rec["msg"])
	assert.Equal(t, "session", rec["component"])
	assert.Equal(t, "authenticated", rec["to"])
	assert.Equal(t, "debug", rec["level"])
}

func TestNew_Errors(t *testing.T) {
	_, err := New(Options{Backend: "logrus"})
	require.Error(t, err)

	_, err = New(Options{Level: "loud"})
	require.Error(t, err)
}

func TestNewNop_DoesNotPanic(t *testing.T) {
	log := NewNop()
	ctx := context.TODO()
	log.Debug(ctx, "x")
	log.Info(ctx, "x")
	log.Warn(ctx, "x")
	log.Error(ctx, "x")
	log.With("a", 1).Info(ctx, "y")
}

func TestNew_ZapMasksSecrets(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Backend: "zap", Format: "json", Output: &buf})
	require.NoError(t, err)

	log.Info(context.Background(), "fcm registered", "fcm_token", "fcm-123")
	require.NoError(t, log.(*ZapLogger).Sync())

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "[redacted]", rec["fcm_token"])
}

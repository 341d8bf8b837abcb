package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/virtual-classroom/pkg/config"
	"github.com/noah-isme/virtual-classroom/pkg/requestid"
)

func TestNewAppendsToLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "virtual_classroom.log")
	require.NoError(t, os.WriteFile(path, []byte("previous session\n"), 0o644))

	cfg := &config.Config{
		Env: config.EnvDevelopment,
		Log: config.LogConfig{Level: "info", Format: "console", File: path},
	}
	logr, err := New(cfg)
	require.NoError(t, err)

	NewNotifier(logr).Info(context.Background(), "Classroom 'Math' has been created.")
	NewNotifier(logr).Error(context.Background(), "Classroom 'Art' not found.")
	logr.Debug("hidden below info")
	_ = logr.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "previous session", lines[0])
	assert.Contains(t, lines[1], "INFO")
	assert.Contains(t, lines[1], "Classroom 'Math' has been created.")
	assert.Contains(t, lines[2], "ERROR")
	assert.Contains(t, lines[2], "Classroom 'Art' not found.")
}

func TestNewJSONFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classroom.json.log")
	cfg := &config.Config{
		Env: config.EnvProduction,
		Log: config.LogConfig{Level: "warn", Format: "json", File: path},
	}
	logr, err := New(cfg)
	require.NoError(t, err)

	logr.Info("filtered")
	logr.Warn("kept")
	_ = logr.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(raw)
	assert.NotContains(t, out, "filtered")
	assert.Contains(t, out, `"msg":"kept"`)
	assert.Contains(t, out, `"timestamp":`)
}

func TestNotifierAddsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	n := NewNotifier(zap.New(core))

	ctx := requestid.With(context.Background(), "round-1")
	n.Info(ctx, "Assignment for Math has been scheduled.")
	n.Error(context.Background(), "Student S9 is not enrolled in Math.")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "round-1", entries[0].ContextMap()["request_id"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Empty(t, entries[1].Context)
}

func TestNilLoggerNotifier(t *testing.T) {
	n := NewNotifier(nil)
	assert.NotPanics(t, func() { n.Info(context.Background(), "noop") })
}

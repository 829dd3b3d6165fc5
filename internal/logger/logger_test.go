package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		" Warn ":  slog.LevelWarn,
		"ERROR":   slog.LevelError,
	}
	for in, want := range cases {
		got, ok := ParseLevel(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseLevel("verbose")
	assert.False(t, ok)
}

func TestFromSettingsEnvOverride(t *testing.T) {
	t.Setenv(EnvLevel, "")
	cfg := FromSettings("error", "")
	assert.Equal(t, slog.LevelError, cfg.Level)
	assert.Equal(t, "text", cfg.Format)

	t.Setenv(EnvLevel, "DEBUG")
	cfg = FromSettings("error", "json")
	assert.Equal(t, slog.LevelDebug, cfg.Level)
	assert.Equal(t, "json", cfg.Format)
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Level: slog.LevelInfo, Format: "json", Output: &buf})

	log.Debug("hidden")
	log.Info("shown", slog.String("service", "session"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "session", rec["service"])
}

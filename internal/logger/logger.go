// Package logger provides structured logging configuration using log/slog.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLevel is the environment variable that overrides the configured log level.
const EnvLevel = "TUNESTREAM_LOG_LEVEL"

// Config holds logger configuration.
type Config struct {
	Level  slog.Level
	Format string // "text" or "json"

	// Output defaults to os.Stderr
	Output io.Writer
}

// NewLogger creates a configured slog.Logger.
func NewLogger(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.Level <= slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps DEBUG, INFO, WARN/WARNING and ERROR (any case) to a slog level.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// DefaultConfig returns the default logger configuration: INFO, text,
// unless TUNESTREAM_LOG_LEVEL says otherwise.
func DefaultConfig() Config {
	return FromSettings("", "text")
}

// FromSettings builds a Config from configured level and format strings.
// The environment variable wins over the configured level.
func FromSettings(level, format string) Config {
	lvl, ok := ParseLevel(level)
	if !ok {
		lvl = slog.LevelInfo
	}
	if env, ok := ParseLevel(os.Getenv(EnvLevel)); ok {
		lvl = env
	}
	if format == "" {
		format = "text"
	}
	return Config{Level: lvl, Format: format}
}

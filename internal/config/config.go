// Package config loads TuneStream settings from TOML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

type Config struct {
	LogLevel  string `koanf:"log_level"`  // "debug", "info", "warn", "error"
	LogFormat string `koanf:"log_format"` // "text" or "json"

	Resolver ResolverConfig `koanf:"resolver"`
	Source   SourceConfig   `koanf:"source"`
	Playback PlaybackConfig `koanf:"playback"`
	Audio    AudioConfig    `koanf:"audio"`
}

// ResolverConfig points at the audio-resolution service.
type ResolverConfig struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

// SourceConfig points at the catalogue service.
type SourceConfig struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

type PlaybackConfig struct {
	PreloadThreshold time.Duration `koanf:"preload_threshold"` // elapsed time before the next track is fetched
	ProgressInterval time.Duration `koanf:"progress_interval"` // how often the transport reports position
	InitialVolume    int           `koanf:"initial_volume"`    // 0..100, used until a saved volume exists
}

type AudioConfig struct {
	Device     int  `koanf:"device"` // -1 is the system default
	SampleRate int  `koanf:"sample_rate"`
	Mock       bool `koanf:"mock"` // silent transport, no audio library needed
}

// Default returns the settings used when no file overrides them.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Resolver: ResolverConfig{
			BaseURL: "http://localhost:8080",
			Timeout: 60 * time.Second,
		},
		Source: SourceConfig{
			BaseURL: "http://localhost:8080",
			Timeout: 15 * time.Second,
		},
		Playback: PlaybackConfig{
			PreloadThreshold: 5 * time.Second,
			ProgressInterval: 333 * time.Millisecond,
			InitialVolume:    80,
		},
		Audio: AudioConfig{
			Device:     -1,
			SampleRate: 44100,
		},
	}
}

// Load reads the config. With an explicit path only that file is read and it
// must exist; otherwise the standard locations are tried, last wins.
func Load(explicit string) (*Config, error) {
	k := koanf.New(".")

	if explicit != "" {
		path := expandPath(explicit)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else {
		for _, path := range getConfigPaths() {
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
					return nil, fmt.Errorf("parse %s: %w", path, err)
				}
			}
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Resolver.BaseURL = strings.TrimSuffix(cfg.Resolver.BaseURL, "/")
	cfg.Source.BaseURL = strings.TrimSuffix(cfg.Source.BaseURL, "/")
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	if c.Playback.PreloadThreshold <= 0 {
		errs = append(errs, domain.NewValidationError("playback.preload_threshold", c.Playback.PreloadThreshold, "must be positive", nil))
	}
	if c.Playback.ProgressInterval <= 0 {
		errs = append(errs, domain.NewValidationError("playback.progress_interval", c.Playback.ProgressInterval, "must be positive", nil))
	}
	if c.Playback.InitialVolume < 0 || c.Playback.InitialVolume > 100 {
		errs = append(errs, domain.NewValidationError("playback.initial_volume", c.Playback.InitialVolume, "must be within 0..100", domain.ErrInvalidVolume))
	}
	if c.Resolver.Timeout <= 0 {
		errs = append(errs, domain.NewValidationError("resolver.timeout", c.Resolver.Timeout, "must be positive", nil))
	}
	if c.Source.Timeout <= 0 {
		errs = append(errs, domain.NewValidationError("source.timeout", c.Source.Timeout, "must be positive", nil))
	}
	if c.Resolver.BaseURL == "" {
		errs = append(errs, domain.NewValidationError("resolver.base_url", c.Resolver.BaseURL, "must be set", nil))
	}
	if c.Source.BaseURL == "" {
		errs = append(errs, domain.NewValidationError("source.base_url", c.Source.BaseURL, "must be set", nil))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, domain.NewValidationError("log_format", c.LogFormat, `must be "text" or "json"`, nil))
	}
	if c.Audio.SampleRate <= 0 {
		errs = append(errs, domain.NewValidationError("audio.sample_rate", c.Audio.SampleRate, "must be positive", nil))
	}

	return errors.Join(errs...)
}

func getConfigPaths() []string {
	paths := []string{}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "tunestream", "config.toml"))
	}

	// working directory, highest priority
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

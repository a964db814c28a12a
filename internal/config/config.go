// Package config loads the optional qschema.toml settings file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/roach88/qschema/internal/payload"
)

// DefaultFile is read from the working directory when no --config is given.
const DefaultFile = "qschema.toml"

// DefaultMaxPayloadBytes bounds payload files read by the CLI.
const DefaultMaxPayloadBytes = payload.DefaultMaxBytes

var (
	formats   = []string{"text", "json"}
	logLevels = []string{"debug", "info", "warn", "error"}
)

// Config holds CLI settings. Strict turns dropped lenient elements into a
// validation failure.
type Config struct {
	Format          string `toml:"format"`
	LogLevel        string `toml:"log_level"`
	Strict          bool   `toml:"strict"`
	MaxPayloadBytes int64  `toml:"max_payload_bytes"`
}

// Default is the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	applyDefaults(&cfg)
	return cfg
}

// Load reads path, fills defaults and validates the result.
func Load(path string) (Config, error) {
	var cfg Config
	if err := loadToml(path, &cfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

// LoadOptional is Load for a file that may be absent: a missing file yields
// Default.
func LoadOptional(path string) (Config, bool, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), false, nil
	}
	if err != nil {
		return Config{}, false, err
	}
	return cfg, true, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	if cfg.MaxPayloadBytes == 0 {
		cfg.MaxPayloadBytes = DefaultMaxPayloadBytes
	}
}

func Validate(cfg Config) error {
	if !slices.Contains(formats, cfg.Format) {
		return fmt.Errorf("format %q: must be one of %v", cfg.Format, formats)
	}
	if !slices.Contains(logLevels, strings.ToLower(cfg.LogLevel)) {
		return fmt.Errorf("log_level %q: must be one of %v", cfg.LogLevel, logLevels)
	}
	if cfg.MaxPayloadBytes < 0 {
		return fmt.Errorf("max_payload_bytes must be >= 0, got %d", cfg.MaxPayloadBytes)
	}
	return nil
}

// Level maps LogLevel to a slog level. Validate has already run, so unknown
// names do not occur; they map to Warn.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

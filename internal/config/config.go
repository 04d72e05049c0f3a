// Package config handles avatargen configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// MaxTextureSize bounds the procedural texture edge length.
const MaxTextureSize = 4096

// Config holds all avatargen settings.
type Config struct {
	Generation GenerationConfig `yaml:"generation" toml:"generation"`
	Output     OutputConfig     `yaml:"output" toml:"output"`
	Database   DatabaseConfig   `yaml:"database" toml:"database"`
	Batch      BatchConfig      `yaml:"batch" toml:"batch"`
	Watch      WatchConfig      `yaml:"watch" toml:"watch"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
}

// GenerationConfig holds avatar generation settings.
type GenerationConfig struct {
	TextureSize   int    `yaml:"texture_size" toml:"texture_size"`
	TextureFormat string `yaml:"texture_format" toml:"texture_format"` // png or webp
	Seed          uint64 `yaml:"seed" toml:"seed"`                     // 0 = unseeded
	ModelVersion  string `yaml:"model_version" toml:"model_version"`
	Generator     string `yaml:"generator" toml:"generator"`
}

// OutputConfig holds where generated avatars are written.
type OutputConfig struct {
	Dir           string `yaml:"dir" toml:"dir"`
	WriteMetadata bool   `yaml:"write_metadata" toml:"write_metadata"`
}

// DatabaseConfig holds the metadata store connection. An empty URL disables it.
type DatabaseConfig struct {
	URL string `yaml:"url" toml:"url"`
}

// BatchConfig holds batch generation settings.
type BatchConfig struct {
	Workers int `yaml:"workers" toml:"workers"`
}

// WatchConfig holds watch mode settings.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms" toml:"debounce_ms"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
	// JSONFile writes the log file as JSON lines.
	JSONFile bool `yaml:"json_file" toml:"json_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Generation: GenerationConfig{
			TextureSize:   512,
			TextureFormat: "png",
			Seed:          0,
			ModelVersion:  "facegen-1.0",
			Generator:     "facegen avatargen",
		},
		Output: OutputConfig{
			Dir:           "avatars",
			WriteMetadata: true,
		},
		Batch: BatchConfig{
			Workers: 4,
		},
		Watch: WatchConfig{
			DebounceMs: 250,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validation errors.
var (
	ErrTextureSize   = errors.New("texture_size out of range")
	ErrTextureFormat = errors.New("texture_format must be png or webp")
	ErrWorkers       = errors.New("batch workers must be at least 1")
	ErrLogLevel      = errors.New("unknown log level")
)

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Generation.TextureSize <= 0 || c.Generation.TextureSize > MaxTextureSize {
		return fmt.Errorf("%w: %d", ErrTextureSize, c.Generation.TextureSize)
	}
	switch strings.ToLower(c.Generation.TextureFormat) {
	case "png", "webp":
	default:
		return fmt.Errorf("%w: %q", ErrTextureFormat, c.Generation.TextureFormat)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("%w: %d", ErrWorkers, c.Batch.Workers)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrLogLevel, c.Logging.Level)
	}
	return nil
}

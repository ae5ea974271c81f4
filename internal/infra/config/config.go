// Package config provides configuration loading from YAML files.
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Playlist  PlaylistConfig  `yaml:"playlist"`
	Media     MediaConfig     `yaml:"media"`
	Transport TransportConfig `yaml:"transport"`
	Log       LogConfig       `yaml:"log"`
}

// PlaylistConfig represents playlist loading and traversal configuration.
type PlaylistConfig struct {
	Markup           string `yaml:"markup"`
	SkipMissingMedia *bool  `yaml:"skip_missing_media" default:"true"`
	Autoplay         bool   `yaml:"autoplay"`
}

// MediaConfig represents the media backend configuration.
type MediaConfig struct {
	Backend  string         `yaml:"backend" default:"sim" validate:"oneof=sim"`
	Settings map[string]any `yaml:"settings"`
}

// TransportConfig represents the transport affordance glyphs and labels.
type TransportConfig struct {
	Icons  IconsConfig  `yaml:"icons"`
	Labels LabelsConfig `yaml:"labels"`
}

// IconsConfig represents the glyph of each affordance.
type IconsConfig struct {
	Play     string `yaml:"play" default:"▶"`
	Pause    string `yaml:"pause" default:"⏸"`
	Previous string `yaml:"previous" default:"⟪"`
	Next     string `yaml:"next" default:"⟫"`
}

// LabelsConfig represents the text of each affordance.
type LabelsConfig struct {
	Play     string `yaml:"play" default:"play"`
	Pause    string `yaml:"pause" default:"pause"`
	Previous string `yaml:"previous" default:"previous"`
	Next     string `yaml:"next" default:"next"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn warning error"`
	Output string `yaml:"output" default:"stderr"`
	File   string `yaml:"file"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	return finish(&cfg)
}

// LoadOrDefault loads path, or returns the default configuration when the
// file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "failed to stat config file")
		}
	}

	return finish(&Config{})
}

func finish(cfg *Config) (*Config, error) {
	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("TRACKLIST_MARKUP"); v != "" {
		c.Playlist.Markup = v
	}
	if v := os.Getenv("TRACKLIST_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("TRACKLIST_MEDIA_BACKEND"); v != "" {
		c.Media.Backend = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}

// SkipsMissingMedia reports whether traversal skips tracks without media.
func (c *Config) SkipsMissingMedia() bool {
	return c.Playlist.SkipMissingMedia == nil || *c.Playlist.SkipMissingMedia
}

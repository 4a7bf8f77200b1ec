// Package config loads the fyseq settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"fyseq/internal/sequence"
)

const (
	appDir   = "fyseq"
	fileName = "config.yaml"
)

// Config represents the application configuration structure.
type Config struct {
	Store struct {
		Path string `yaml:"path"` // Database file or directory, empty for the user config dir
	} `yaml:"store"`
	Detect struct {
		ContainerExtensions []string `yaml:"container_extensions"` // Extensions whose trailing digit is not a frame number
		Filter              string   `yaml:"filter"`               // Glob applied to directory listings
	} `yaml:"detect"`
	Playback struct {
		Interval time.Duration `yaml:"interval"` // Delay between timesteps while playing
		Loop     bool          `yaml:"loop"`     // Wrap to the first timestep at the end
	} `yaml:"playback"`
	History struct {
		Size int `yaml:"size"` // Number of opened datasets to remember, 0 disables
	} `yaml:"history"`
	Log struct {
		Level string `yaml:"level"` // zerolog level name
	} `yaml:"log"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.Detect.ContainerExtensions = append([]string(nil), sequence.DefaultContainerExtensions...)
	cfg.Playback.Interval = 500 * time.Millisecond
	cfg.Playback.Loop = true
	cfg.History.Size = 20
	cfg.Log.Level = zerolog.InfoLevel.String()
	return cfg
}

// DefaultPath returns <UserConfigDir>/fyseq/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config dir: %w", err)
	}
	return filepath.Join(dir, appDir, fileName), nil
}

// Load loads configuration from the default location.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration. Keys missing from
// the file keep their default value.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Save writes cfg as YAML, creating the parent directory.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// Detector builds the sequence detector for the configured container
// extensions. An explicit empty list disables the container rule.
func (c *Config) Detector() *sequence.Detector {
	return sequence.DetectorFor(c.Detect.ContainerExtensions)
}

// Validate checks the values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	if c.Playback.Interval <= 0 {
		return fmt.Errorf("playback.interval must be positive, got %s", c.Playback.Interval)
	}
	if c.History.Size < 0 {
		return fmt.Errorf("history.size cannot be negative, got %d", c.History.Size)
	}
	for _, ext := range c.Detect.ContainerExtensions {
		if strings.TrimPrefix(strings.TrimSpace(ext), ".") == "" {
			return errors.New("detect.container_extensions contains an empty extension")
		}
	}
	if c.Detect.Filter != "" {
		if _, err := glob.Compile(c.Detect.Filter); err != nil {
			return fmt.Errorf("detect.filter %q: %w", c.Detect.Filter, err)
		}
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		return fmt.Errorf("log.level %q: %w", c.Log.Level, err)
	}
	return nil
}

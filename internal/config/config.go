// Package config provides YAML-based configuration loading for aideck.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

const (
	DefaultModel    = "gemini-2.5-flash"
	DefaultPageSize = 50
)

var ErrBaseURLMissing = errors.New("config: base_url is not set (set it in config.yaml or AIDECK_BASE_URL)")

// Config is the client configuration, loaded from config.yaml in the
// platform config directory. Every field has a default except BaseURL,
// which is required before any request is made.
type Config struct {
	BaseURL         string `yaml:"base_url"`
	Model           string `yaml:"model"`
	HistoryPageSize int    `yaml:"history_page_size"`
	TimeoutSec      int    `yaml:"timeout_sec"`
	Verbose         bool   `yaml:"verbose"`
}

// Load reads the config file if present, applies defaults, and lets the
// AIDECK_BASE_URL environment variable override the file. A missing file is
// not an error.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFile(filepath.Join(dir, "config.yaml"))
}

func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := &Config{}
			cfg.applyDefaults()
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a Config with defaults and env overrides
// applied.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.HistoryPageSize <= 0 {
		c.HistoryPageSize = DefaultPageSize
	}
}

func (c *Config) applyEnv() {
	if url := os.Getenv("AIDECK_BASE_URL"); url != "" {
		c.BaseURL = url
	}
}

func (c *Config) validate() error {
	if c.TimeoutSec < 0 {
		return fmt.Errorf("config: timeout_sec must not be negative, got %d", c.TimeoutSec)
	}
	return nil
}

// RequireBaseURL fails when no base URL was configured through any source.
func (c *Config) RequireBaseURL() error {
	if c.BaseURL == "" {
		return ErrBaseURLMissing
	}
	return nil
}

// Dir returns the platform-specific config directory.
func Dir() (string, error) {
	// Allow override for testing
	if testDir := os.Getenv("AIDECK_CONFIG_DIR"); testDir != "" {
		return testDir, nil
	}

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", "aideck"), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", errors.New("config: APPDATA is not set")
		}
		return filepath.Join(appData, "aideck"), nil
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "aideck"), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "aideck"), nil
	}
}

// Package config provides configuration management for tab_cookies.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Version is the current version of tab_cookies.
// This is set at build time via ldflags.
var Version = "dev"

// Config holds all configuration options for tab_cookies.
type Config struct {
	// Connection
	ChromePort string        `yaml:"chrome_port"`
	AutoLaunch bool          `yaml:"auto_launch"`
	LaunchURL  string        `yaml:"launch_url"`
	ChromePath string        `yaml:"chrome_path"`
	TargetID   string        `yaml:"target_id"`
	Timeout    time.Duration `yaml:"timeout"`

	// Display
	DefaultField string `yaml:"default_field"`
	Color        bool   `yaml:"color"`

	// Logging
	LogFile string `yaml:"log_file"`
	Verbose bool   `yaml:"verbose"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		// Connection
		ChromePort: "9222",
		AutoLaunch: false,
		Timeout:    10 * time.Second,

		// Display
		DefaultField: "all",
		Color:        true,
	}
}

// LoadFromFile reads a YAML config file. Keys missing from the file keep their
// default values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.ChromePort == "" {
		return errors.New("chrome_port must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	switch c.DefaultField {
	case "all", "name", "value":
	default:
		return fmt.Errorf("default_field must be all, name or value, got %q", c.DefaultField)
	}
	return nil
}

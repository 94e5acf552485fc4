// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultHistoryFormat = "plain"
	DefaultHistoryLimit  = 50
	DefaultShowDuration  = "middle"
)

// Config represents the snackbar CLI configuration.
type Config struct {
	History    HistoryConfig    `toml:"history"`
	Show       ShowConfig       `toml:"show"`
	Playground PlaygroundConfig `toml:"playground"`
}

// HistoryConfig holds defaults for `snackbar history`.
type HistoryConfig struct {
	Format string `toml:"format"` // plain, json, yaml
	Limit  int    `toml:"limit"`  // 0 = unlimited
}

// ShowConfig holds defaults for `snackbar show`.
type ShowConfig struct {
	Duration  string `toml:"duration"`  // short, middle, long, forever
	Animation string `toml:"animation"` // Empty = daemon default
	Level     string `toml:"level"`
}

// PlaygroundConfig holds settings for the terminal playground.
type PlaygroundConfig struct {
	Width          int  `toml:"width"`         // Columns of the preview area
	Height         int  `toml:"height"`        // Rows of the preview area
	KeyboardRows   int  `toml:"keyboard_rows"` // Rows taken by the simulated keyboard
	ShowHelp       bool `toml:"show_help"`
	ScreenReader   bool `toml:"screen_reader"` // Log announcements in the event pane
	DismissOnTap   bool `toml:"dismiss_on_tap"`
	DismissOnSwipe bool `toml:"dismiss_on_swipe"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		History: HistoryConfig{
			Format: DefaultHistoryFormat,
			Limit:  DefaultHistoryLimit,
		},
		Show: ShowConfig{
			Duration: DefaultShowDuration,
			Level:    "info",
		},
		Playground: PlaygroundConfig{
			Width:          60,
			Height:         16,
			KeyboardRows:   5,
			ShowHelp:       true,
			ScreenReader:   true,
			DismissOnTap:   true,
			DismissOnSwipe: true,
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "snackbar", "config.toml")
}

// DataPath returns the path to the data directory.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share.
func DataPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "snackbar")
}

// HistoryPath returns the path to the history JSONL file.
func HistoryPath() string {
	return filepath.Join(DataPath(), "history.jsonl")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	path := DataPath()
	if path == "" {
		return errors.New("unable to determine data directory")
	}
	return os.MkdirAll(path, 0755)
}

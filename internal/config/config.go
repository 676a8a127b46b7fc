// Package config loads the optional ambient configuration file for sm:
// the prefix key, the redraw-tick period, and the log file path. None of
// these are features the spec scopes out; they are the knobs the event
// loop (C6) and CLI wiring genuinely need at startup.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds sm's ambient, non-feature settings.
type Config struct {
	Prefix       string `yaml:"prefix"`
	RedrawTickMs int    `yaml:"redraw_tick_ms"`
	LogPath      string `yaml:"log_path"`
}

// DefaultPrefix is Ctrl-B (spec.md §4.6, §6).
const DefaultPrefix byte = 0x02

// DefaultRedrawTick is the coalescing redraw-timer period (spec.md §4.6).
const DefaultRedrawTick = 5 * time.Millisecond

// DefaultLogPath is the logging sink named in spec.md §6.
const DefaultLogPath = "log"

// Dir returns sm's configuration directory (~/.config/sm/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "sm")
	}
	return filepath.Join(home, ".config", "sm")
}

// Load reads sm's config from ~/.config/sm/config.yaml. A missing file is
// not an error; it returns a zero-value Config.
func Load() (*Config, error) {
	return LoadFrom(filepath.Join(Dir(), "config.yaml"))
}

// LoadFrom reads sm's config from the given path. A missing file is not an
// error; it returns a zero-value Config.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// PrefixByte returns the configured prefix key, or DefaultPrefix if unset.
// Only the first byte of the configured string is used; key names such as
// "C-b" are not parsed.
func (c *Config) PrefixByte() byte {
	if c == nil || c.Prefix == "" {
		return DefaultPrefix
	}
	return c.Prefix[0]
}

// RedrawTick returns the configured redraw-tick period, or
// DefaultRedrawTick if unset.
func (c *Config) RedrawTick() time.Duration {
	if c == nil || c.RedrawTickMs <= 0 {
		return DefaultRedrawTick
	}
	return time.Duration(c.RedrawTickMs) * time.Millisecond
}

// LogFilePath returns the configured log path, or DefaultLogPath if unset.
func (c *Config) LogFilePath() string {
	if c == nil || c.LogPath == "" {
		return DefaultLogPath
	}
	return c.LogPath
}

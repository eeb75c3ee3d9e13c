// Package config loads muxboard configuration from file and environment.
//
// Precedence (highest to lowest):
//  1. Environment variables (MUXBOARD_*)
//  2. Config file
//  3. Built-in defaults
//
// Config file search order:
//  1. .muxboard.yaml in current directory
//  2. ~/.config/muxboard/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all muxboard configuration.
type Config struct {
	// Dashboard settings
	DefaultSort          string `yaml:"default_sort"`           // "name", "date", or "attached"
	SkipKillConfirmation bool   `yaml:"skip_kill_confirmation"` // Skip the y/n modal before kill-session
	Theme                string `yaml:"theme"`                  // "dark" or "light"

	// Refresh and invocation bounds
	Refresh        string `yaml:"refresh"`         // Go duration string, e.g. "3s"; "0"/"off" disables
	CommandTimeout string `yaml:"command_timeout"` // Go duration string, e.g. "5s"

	// OTEL
	OTELEndpoint string `yaml:"otel_endpoint"`
	OTELHeaders  string `yaml:"otel_headers"` // Comma-separated key=value pairs

	// Parsed durations (not from YAML, set after loading)
	RefreshDuration        time.Duration `yaml:"-"`
	CommandTimeoutDuration time.Duration `yaml:"-"`

	// ConfigFile is the path to the config file that was loaded (empty if none).
	ConfigFile string `yaml:"-"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		DefaultSort:    "name",
		Theme:          "dark",
		Refresh:        "3s",
		CommandTimeout: "5s",
	}
}

// Load reads configuration from file and environment variables.
// Environment variables always override file values.
func Load() (*Config, error) {
	cfg := Defaults()

	// Try to load config file
	if path, data, err := findConfigFile(); err == nil {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
		mergeFile(cfg, &fileCfg)
	}

	// Environment variables override everything
	mergeEnv(cfg)

	// Parse durations
	var err error
	cfg.RefreshDuration, err = parseDurationOrDisable(cfg.Refresh, 3*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh interval %q: %w", cfg.Refresh, err)
	}
	cfg.CommandTimeoutDuration, err = parseDurationOrDisable(cfg.CommandTimeout, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid command timeout %q: %w", cfg.CommandTimeout, err)
	}
	if cfg.CommandTimeoutDuration <= 0 {
		cfg.CommandTimeoutDuration = 5 * time.Second
	}

	return cfg, nil
}

// findConfigFile searches for a config file and returns its path and contents.
func findConfigFile() (string, []byte, error) {
	// 1. Current directory
	if data, err := os.ReadFile(".muxboard.yaml"); err == nil {
		return ".muxboard.yaml", data, nil
	}

	// 2. XDG config dir / ~/.config
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", "muxboard", "config.yaml")
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
	}

	return "", nil, fmt.Errorf("no config file found")
}

// mergeFile applies non-zero file values onto cfg.
func mergeFile(cfg *Config, file *Config) {
	if file.DefaultSort != "" {
		cfg.DefaultSort = file.DefaultSort
	}
	if file.SkipKillConfirmation {
		cfg.SkipKillConfirmation = file.SkipKillConfirmation
	}
	if file.Theme != "" {
		cfg.Theme = file.Theme
	}
	if file.Refresh != "" {
		cfg.Refresh = file.Refresh
	}
	if file.CommandTimeout != "" {
		cfg.CommandTimeout = file.CommandTimeout
	}
	if file.OTELEndpoint != "" {
		cfg.OTELEndpoint = file.OTELEndpoint
	}
	if file.OTELHeaders != "" {
		cfg.OTELHeaders = file.OTELHeaders
	}
}

// mergeEnv applies environment variables onto cfg. Env always wins.
func mergeEnv(cfg *Config) {
	if v := os.Getenv("MUXBOARD_DEFAULT_SORT"); v != "" {
		cfg.DefaultSort = v
	}
	if v := os.Getenv("MUXBOARD_SKIP_KILL_CONFIRMATION"); v == "true" || v == "1" {
		cfg.SkipKillConfirmation = true
	}
	if v := os.Getenv("MUXBOARD_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("MUXBOARD_REFRESH"); v != "" {
		cfg.Refresh = v
	}
	if v := os.Getenv("MUXBOARD_COMMAND_TIMEOUT"); v != "" {
		cfg.CommandTimeout = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTELEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); v != "" {
		cfg.OTELHeaders = v
	}
}

// parseDurationOrDisable parses a duration string. "0", "off", "disable" return 0.
// Empty string returns the fallback value.
func parseDurationOrDisable(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	if s == "0" || s == "off" || s == "disable" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the environment variable holding the
// configuration file path.
const EnvironmentVariable = "ADJUDICATOR_CONFIG"

// Config is the configuration for the adjudicator.
type Config struct {
	// Service configures the record service client.
	Service ServiceConfig `yaml:"service" json:"service"`

	// UI configures the terminal front end.
	UI UIConfig `yaml:"ui" json:"ui"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log" json:"log"`

	// Session configures session persistence.
	Session SessionConfig `yaml:"session" json:"session"`
}

// ServiceConfig configures the record service client.
type ServiceConfig struct {
	// BaseURL is the root URL of the record service. Endpoint paths
	// are appended to it.
	// Default: http://127.0.0.1:5000
	BaseURL string `yaml:"base_url" json:"base_url"`

	// RequestTimeout bounds each request, as a Go duration string.
	// Empty or "0" means no timeout.
	RequestTimeout string `yaml:"request_timeout" json:"request_timeout"`

	// Compression requests gzip-compressed responses.
	// Default: true
	Compression bool `yaml:"compression" json:"compression"`

	// MaxResponseBytes caps a single response body. Zero uses the
	// client default.
	MaxResponseBytes int64 `yaml:"max_response_bytes" json:"max_response_bytes"`
}

// UIConfig configures the terminal front end.
type UIConfig struct {
	// StartLocation is the location opened when none is given on the
	// command line, e.g. "adj?canonical_event_key=K1".
	StartLocation string `yaml:"start_location" json:"start_location"`

	// ExportDir is where canonical event exports are written.
	// Default: ${HOME}/adjudicator-exports
	ExportDir string `yaml:"export_dir" json:"export_dir"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level" json:"level"`

	// File receives log output while the terminal UI owns the screen.
	// Empty discards log output in the UI.
	File string `yaml:"file" json:"file"`
}

// SessionConfig configures session persistence.
type SessionConfig struct {
	// SnapshotPath is where the location history is saved on quit
	// and read by --resume.
	// Default: ${XDG_STATE_HOME:-${HOME}/.local/state}/adjudicator/session.cbor
	SnapshotPath string `yaml:"snapshot_path" json:"snapshot_path"`
}

// Default returns the default configuration. Loaded files are merged
// over it.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			BaseURL:     "http://127.0.0.1:5000",
			Compression: true,
		},
		UI: UIConfig{
			StartLocation: "adj",
			ExportDir:     "${HOME}/adjudicator-exports",
		},
		Log: LogConfig{
			Level: "info",
		},
		Session: SessionConfig{
			SnapshotPath: "${XDG_STATE_HOME:-${HOME}/.local/state}/adjudicator/session.cbor",
		},
	}
}

// Load loads configuration from the ADJUDICATOR_CONFIG environment
// variable. When it is unset the defaults are returned; there is no
// discovery of files in other locations.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. Files ending
// in .json or .jsonc are parsed as JSON with comments; anything else
// is YAML.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.expandVariables()
	return cfg, nil
}

// loadFile merges a single configuration file into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), c); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.UI.ExportDir = expandVars(c.UI.ExportDir, vars)
	c.Log.File = expandVars(c.Log.File, vars)
	c.Session.SnapshotPath = expandVars(c.Session.SnapshotPath, vars)
}

// varPattern matches ${VAR} and ${VAR:-default}. A default may itself
// hold one level of ${VAR}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-((?:[^${}]|\$\{[^}]*\})*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		if strings.Contains(defaultValue, "${") {
			return expandVars(defaultValue, vars)
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Service.BaseURL == "" {
		errs = append(errs, fmt.Errorf("service.base_url is required"))
	} else if parsed, err := url.Parse(c.Service.BaseURL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		errs = append(errs, fmt.Errorf("service.base_url must be an http or https URL (got %q)", c.Service.BaseURL))
	}

	if _, err := c.RequestTimeout(); err != nil {
		errs = append(errs, err)
	}

	if c.Service.MaxResponseBytes < 0 {
		errs = append(errs, fmt.Errorf("service.max_response_bytes must not be negative"))
	}

	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// RequestTimeout parses service.request_timeout. Zero means no timeout.
func (c *Config) RequestTimeout() (time.Duration, error) {
	raw := strings.TrimSpace(c.Service.RequestTimeout)
	if raw == "" || raw == "0" {
		return 0, nil
	}
	timeout, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("service.request_timeout: %w", err)
	}
	if timeout < 0 {
		return 0, fmt.Errorf("service.request_timeout must not be negative (got %s)", raw)
	}
	return timeout, nil
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// LogLevel parses log.level.
func (c *Config) LogLevel() (slog.Level, error) {
	level, ok := logLevels[strings.ToLower(strings.TrimSpace(c.Log.Level))]
	if !ok {
		return slog.LevelInfo, fmt.Errorf("log.level must be one of debug, info, warn, error (got %q)", c.Log.Level)
	}
	return level, nil
}

// EnsurePaths creates the directories the configured paths live in.
func (c *Config) EnsurePaths() error {
	directories := []string{c.UI.ExportDir}
	if c.Log.File != "" {
		directories = append(directories, filepath.Dir(c.Log.File))
	}
	if c.Session.SnapshotPath != "" {
		directories = append(directories, filepath.Dir(c.Session.SnapshotPath))
	}

	for _, directory := range directories {
		if directory == "" {
			continue
		}
		if err := os.MkdirAll(directory, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", directory, err)
		}
	}
	return nil
}

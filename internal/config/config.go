// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for wirechat.
//
// Configuration is TOML with sensible defaults and environment variable
// overrides. File location: ~/.wirechat/config.toml.
package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/morganforge/wirechat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete wirechat configuration.
type Config struct {
	// Endpoint is the base URL of the chat completions service.
	Endpoint string `toml:"endpoint"`
	// Model is the model identifier sent with every request.
	Model string `toml:"model"`
	// TimeoutSecs bounds the time to establish a response; the streaming
	// body itself is context-controlled, not timeout-bound.
	TimeoutSecs int `toml:"timeout_secs"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// UIConfig contains terminal display configuration.
type UIConfig struct {
	// Theme selects the rendering style: "auto", "dark", or "light".
	// "auto" detects from the terminal background.
	Theme string `toml:"theme"`
	// MaxWidth caps the rendered line width (0 = terminal width).
	MaxWidth int `toml:"max_width"`
}

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Endpoint:    "https://openrouter.ai/api/v1",
		Model:       "openrouter/auto",
		TimeoutSecs: 30,
		UI: UIConfig{
			Theme:    "auto",
			MaxWidth: 100,
		},
	}
}

// Timeout returns the response-header timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// =============================================================================
// PATHS
// =============================================================================

const configFile = "config.toml"

// Dir returns the wirechat data directory (~/.wirechat), creating it if
// needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".wirechat")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the configuration file, applies environment overrides, and
// validates the result. A missing file yields the defaults.
func Load(dir string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(dir, configFile)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the data directory.
func Save(dir string, cfg *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	path := filepath.Join(dir, configFile)
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides lets environment variables take precedence over the
// file contents.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WIRECHAT_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("WIRECHAT_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("WIRECHAT_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutSecs = n
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration and clamps recoverable values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid endpoint URL: %q", c.Endpoint)
	}
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	if c.TimeoutSecs <= 0 {
		c.TimeoutSecs = Default().TimeoutSecs
	}
	switch c.UI.Theme {
	case "auto", "dark", "light":
	case "":
		c.UI.Theme = "auto"
	default:
		return fmt.Errorf("invalid theme: %q", c.UI.Theme)
	}
	if c.UI.MaxWidth < 0 {
		c.UI.MaxWidth = 0
	}
	return nil
}

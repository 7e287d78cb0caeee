// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for mecoai-chat.
//
// Configuration file location: ~/.mecoai/config.toml (or MECOAI_CONFIG),
// then a .env file in the working directory, then MECOAI_* variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/danniesim/mecoai-chat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete mecoai-chat configuration.
type Config struct {
	// Server is the chat backend
	Server ServerConfig `toml:"server" json:"server"`

	// History controls the conversation history panel
	History HistoryConfig `toml:"history" json:"history"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Log configuration
	Log LogConfig `toml:"log" json:"log"`
}

// ServerConfig describes the chat backend.
type ServerConfig struct {
	// BaseURL is the backend origin, e.g. https://chat.example.com
	BaseURL string `toml:"base_url" json:"base_url"`
	// UserAgent sent with every request
	UserAgent string `toml:"user_agent" json:"user_agent"`
	// RequestTimeoutSecs bounds history and settings requests.
	// Generation streams are never timed out.
	RequestTimeoutSecs int `toml:"request_timeout_secs" json:"request_timeout_secs"`
	// Headers are added to every request (session cookies, proxies)
	Headers map[string]string `toml:"headers" json:"headers,omitempty"`
}

// HistoryConfig controls history paging and notices.
type HistoryConfig struct {
	// PageSize is the number of conversations per history page
	PageSize int `toml:"page_size" json:"page_size"`
	// NoticeTTLSecs is how long inline history errors stay visible
	NoticeTTLSecs int `toml:"notice_ttl_secs" json:"notice_ttl_secs"`
}

// UIConfig contains terminal rendering settings.
type UIConfig struct {
	// Markdown renders answers with glamour
	Markdown bool `toml:"markdown" json:"markdown"`
	// Theme is "auto", "dark" or "light"
	Theme string `toml:"theme" json:"theme"`
	// MaxFPS bounds transcript redraws while streaming
	MaxFPS int `toml:"max_fps" json:"max_fps"`
	// ShowCitations opens the citation list under answers
	ShowCitations bool `toml:"show_citations" json:"show_citations"`
	// Title overrides the header title from frontend settings
	Title string `toml:"title" json:"title,omitempty"`
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	// Level is debug, info, warn or error
	Level string `toml:"level" json:"level"`
	// File is the log path; empty means ~/.mecoai/logs/mecoai.log
	File string `toml:"file" json:"file"`
	// MaxSizeMB before rotation
	MaxSizeMB int `toml:"max_size_mb" json:"max_size_mb"`
	// MaxAgeDays of rotated files
	MaxAgeDays int `toml:"max_age_days" json:"max_age_days"`
	// MaxBackups kept
	MaxBackups int `toml:"max_backups" json:"max_backups"`
	// Compress rotated files
	Compress bool `toml:"compress" json:"compress"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:            "http://127.0.0.1:50505",
			UserAgent:          "mecoai-chat",
			RequestTimeoutSecs: 30,
		},
		History: HistoryConfig{
			PageSize:      25,
			NoticeTTLSecs: 5,
		},
		UI: UIConfig{
			Markdown:      true,
			Theme:         "auto",
			MaxFPS:        30,
			ShowCitations: true,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  20,
			MaxAgeDays: 7,
			MaxBackups: 3,
			Compress:   true,
		},
	}
}

// RequestTimeout returns the history request timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSecs) * time.Second
}

// NoticeTTL returns how long history notices stay visible.
func (c *Config) NoticeTTL() time.Duration {
	return time.Duration(c.History.NoticeTTLSecs) * time.Second
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the mecoai configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".mecoai"), nil
}

// ConfigPath returns the config file path, honoring MECOAI_CONFIG.
func ConfigPath() (string, error) {
	if p := os.Getenv("MECOAI_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LogPath returns the effective log file path.
func (c *Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	dir, err := ConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "mecoai.log")
	}
	return filepath.Join(dir, "logs", "mecoai.log")
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default path.
// A missing file is not an error.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		return cfg, err
	}
	return LoadFrom(path)
}

// LoadFrom loads configuration from path, then applies .env and
// environment overrides, then validates.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to decode TOML file: %w", err)
		}
	}

	// .env is optional.
	_ = godotenv.Load()

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path as TOML, creating the directory if needed.
func Save(cfg *Config, path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies MECOAI_* environment variables.
//
//   - MECOAI_BASE_URL: overrides server.base_url
//   - MECOAI_PAGE_SIZE: overrides history.page_size
//   - MECOAI_NOTICE_TTL: overrides history.notice_ttl_secs
//   - MECOAI_LOG_LEVEL: overrides log.level
//   - MECOAI_LOG_FILE: overrides log.file
//   - MECOAI_MARKDOWN: overrides ui.markdown
//   - MECOAI_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("MECOAI_BASE_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("MECOAI_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.History.PageSize = n
		}
	}
	if v := os.Getenv("MECOAI_NOTICE_TTL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.History.NoticeTTLSecs = n
		}
	}
	if v := os.Getenv("MECOAI_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("MECOAI_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("MECOAI_MARKDOWN"); v != "" {
		c.UI.Markdown = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("MECOAI_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// SetDefaults fills zero values that have no meaning.
func (c *Config) SetDefaults() {
	def := Default()
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = def.Server.BaseURL
	}
	if c.Server.UserAgent == "" {
		c.Server.UserAgent = def.Server.UserAgent
	}
	if c.History.PageSize == 0 {
		c.History.PageSize = def.History.PageSize
	}
	if c.History.NoticeTTLSecs == 0 {
		c.History.NoticeTTLSecs = def.History.NoticeTTLSecs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
	if c.UI.MaxFPS == 0 {
		c.UI.MaxFPS = def.UI.MaxFPS
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.Server.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "server.base_url",
			Message: fmt.Sprintf("invalid URL '%s', must be http(s)://host[:port]", c.Server.BaseURL),
		})
	}
	if c.Server.RequestTimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "server.request_timeout_secs", Message: "must not be negative"})
	}
	if c.History.PageSize < 1 || c.History.PageSize > 500 {
		errs = append(errs, ValidationError{
			Field:   "history.page_size",
			Message: fmt.Sprintf("page size %d out of range (1-500)", c.History.PageSize),
		})
	}
	if c.History.NoticeTTLSecs < 1 {
		errs = append(errs, ValidationError{Field: "history.notice_ttl_secs", Message: "must be at least 1"})
	}
	switch strings.ToLower(c.UI.Theme) {
	case "auto", "dark", "light":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}
	if c.UI.MaxFPS < 1 || c.UI.MaxFPS > 120 {
		errs = append(errs, ValidationError{Field: "ui.max_fps", Message: "must be between 1 and 120"})
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	if c.Server.Headers != nil {
		out.Server.Headers = make(map[string]string, len(c.Server.Headers))
		for k, v := range c.Server.Headers {
			out.Server.Headers[k] = v
		}
	}
	return &out
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil || cfg == nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}

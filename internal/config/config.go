// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for every setting that has one.
const (
	DefaultBaseURL   = "http://localhost:3000"
	DefaultTimeout   = "30s"
	DefaultPageSize  = 10
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
)

// Environment variables read by FromEnv.
const (
	EnvBaseURL   = "HR_API_BASE_URL"
	EnvTimeout   = "HR_API_TIMEOUT"
	EnvPageSize  = "HR_PAGE_SIZE"
	EnvAPIToken  = "HR_API_TOKEN"
	EnvLogLevel  = "HR_LOG_LEVEL"
	EnvLogFormat = "HR_LOG_FORMAT"
)

// Config is the console configuration. It can come from the environment, a
// JSON or YAML file, or both; empty fields fall back to defaults.
type Config struct {
	BaseURL   string `json:"base_url,omitempty" yaml:"base_url,omitempty"`     // API root
	Timeout   string `json:"timeout,omitempty" yaml:"timeout,omitempty"`       // Go duration, e.g. "30s"
	PageSize  int    `json:"page_size,omitempty" yaml:"page_size,omitempty"`   // Candidates per page
	APIToken  string `json:"api_token,omitempty" yaml:"api_token,omitempty"`   // Static bearer token
	LogLevel  string `json:"log_level,omitempty" yaml:"log_level,omitempty"`   // zerolog level name
	LogFormat string `json:"log_format,omitempty" yaml:"log_format,omitempty"` // console or json

	JWT JWTConfig `json:"jwt,omitempty" yaml:"jwt,omitempty"`
}

// Defaults returns a Config holding every default.
func Defaults() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Timeout:   DefaultTimeout,
		PageSize:  DefaultPageSize,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		JWT: JWTConfig{
			Subject:           DefaultJWTSubject,
			ExpirationMinutes: DefaultJWTExpirationMinutes,
		},
	}
}

// FromEnv reads the configuration from environment variables. Unset
// variables leave their fields empty.
func FromEnv() (*Config, error) {
	cfg := &Config{
		BaseURL:   os.Getenv(EnvBaseURL),
		Timeout:   os.Getenv(EnvTimeout),
		APIToken:  os.Getenv(EnvAPIToken),
		LogLevel:  os.Getenv(EnvLogLevel),
		LogFormat: os.Getenv(EnvLogFormat),
	}

	if raw := os.Getenv(EnvPageSize); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %v", EnvPageSize, err)
		}
		cfg.PageSize = n
	}

	jwtCfg, err := jwtFromEnv()
	if err != nil {
		return nil, err
	}
	cfg.JWT = jwtCfg

	return cfg, nil
}

// LoadConfig loads configuration from a JSON (.json) or YAML (.yaml, .yml)
// file. Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Load builds the effective configuration: environment first, then the
// optional file, then defaults. The result is validated.
func Load(path string) (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	merged := *cfg
	if path != "" {
		file, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		merged = merged.MergeWithDefaults(*file)
	}
	merged = merged.MergeWithDefaults(Defaults())

	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config error: 'base_url' must be an http(s) URL, got %q", c.BaseURL)
		}
	}

	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return fmt.Errorf("config error: invalid 'timeout': %v", err)
		}
		if d <= 0 {
			return fmt.Errorf("config error: 'timeout' must be positive")
		}
	}

	if c.PageSize < 0 {
		return fmt.Errorf("config error: 'page_size' must be non-negative")
	}

	if c.LogLevel != "" {
		switch c.LogLevel {
		case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
		default:
			return fmt.Errorf("config error: unknown 'log_level' %q", c.LogLevel)
		}
	}

	if c.LogFormat != "" && c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("config error: 'log_format' must be console or json, got %q", c.LogFormat)
	}

	return c.JWT.normalize()
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if result.Timeout == "" {
		result.Timeout = defaults.Timeout
	}
	if result.PageSize == 0 {
		result.PageSize = defaults.PageSize
	}
	if result.APIToken == "" {
		result.APIToken = defaults.APIToken
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}

	if result.JWT.Secret == "" {
		result.JWT.Secret = defaults.JWT.Secret
	}
	if result.JWT.Subject == "" {
		result.JWT.Subject = defaults.JWT.Subject
	}
	if result.JWT.ExpirationMinutes == 0 {
		result.JWT.ExpirationMinutes = defaults.JWT.ExpirationMinutes
	}

	return result
}

// RequestTimeout returns Timeout as a duration, or the default when unset
// or invalid.
func (c *Config) RequestTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Timeout); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(DefaultTimeout)
	return d
}

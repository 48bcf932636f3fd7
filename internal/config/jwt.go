package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// JWT settings read from the environment.
const (
	EnvJWTSecret            = "HR_JWT_SECRET"
	EnvJWTSubject           = "HR_JWT_SUBJECT"
	EnvJWTExpirationMinutes = "HR_JWT_EXPIRATION_MINUTES"

	DefaultJWTSubject           = "hr-console"
	DefaultJWTExpirationMinutes = 60
)

// JWTConfig holds the settings for minting API bearer tokens. An empty
// Secret disables minting.
type JWTConfig struct {
	Secret            string `json:"secret,omitempty" yaml:"secret,omitempty"`
	Subject           string `json:"subject,omitempty" yaml:"subject,omitempty"`
	ExpirationMinutes int    `json:"expiration_minutes,omitempty" yaml:"expiration_minutes,omitempty"`
}

// Enabled reports whether a signing secret is configured.
func (c JWTConfig) Enabled() bool {
	return c.Secret != ""
}

// TTL returns the token lifetime.
func (c JWTConfig) TTL() time.Duration {
	return time.Duration(c.ExpirationMinutes) * time.Minute
}

// jwtFromEnv reads HR_JWT_SECRET, HR_JWT_SUBJECT and
// HR_JWT_EXPIRATION_MINUTES. Unset values stay empty.
func jwtFromEnv() (JWTConfig, error) {
	cfg := JWTConfig{
		Secret:  os.Getenv(EnvJWTSecret),
		Subject: os.Getenv(EnvJWTSubject),
	}

	if raw := os.Getenv(EnvJWTExpirationMinutes); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil {
			return JWTConfig{}, fmt.Errorf("invalid %s: %v", EnvJWTExpirationMinutes, err)
		}
		cfg.ExpirationMinutes = minutes
	}

	return cfg, nil
}

// normalize validates the configuration.
func (c JWTConfig) normalize() error {
	if c.ExpirationMinutes < 0 {
		return fmt.Errorf("%s must not be negative, got: %d", EnvJWTExpirationMinutes, c.ExpirationMinutes)
	}
	if c.Enabled() && c.ExpirationMinutes < 2 {
		return fmt.Errorf("%s must be at least 2 minutes, got: %d", EnvJWTExpirationMinutes, c.ExpirationMinutes)
	}
	return nil
}

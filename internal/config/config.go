// Package config provides configuration loading and validation for the API server.
// It uses koanf to merge environment variables with optional file overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Server settings
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// Redis battle store. Empty means battles are kept in memory and lost
	// on restart.
	RedisURL string `koanf:"redis_url"`

	// Rating engine
	KFactor int `koanf:"k_factor"`
}

// Configuration validation errors.
var (
	ErrInvalidPort    = errors.New("PORT must be a valid integer")
	ErrPortOutOfRange = errors.New("PORT must be between 1 and 65535")
	ErrInvalidKFactor = errors.New("K_FACTOR must be a positive integer")
)

// Default values for non-secret configuration.
const (
	DefaultPort    = 8080
	DefaultEnv     = "development"
	DefaultKFactor = 32
)

// Load reads configuration from environment variables and an optional config file.
// Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if valid).
// If a config file path is provided and the file cannot be loaded, an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	// Parse port from env, collecting error if invalid
	// Try FEATRANK_PORT first, then PORT for backward compatibility
	port, portErr := getEnvIntOrDefaultMulti([]string{"FEATRANK_PORT", "PORT"}, k.Int("port"), DefaultPort)
	if portErr != nil {
		loadErrs = append(loadErrs, portErr)
	}

	kFactor, kFactorErr := getEnvIntOrDefaultMulti([]string{"FEATRANK_K_FACTOR", "K_FACTOR"}, k.Int("k_factor"), DefaultKFactor)
	if kFactorErr != nil {
		loadErrs = append(loadErrs, kFactorErr)
	}

	// Build config struct, with env vars taking precedence over file values
	cfg := &Config{
		Port:     port,
		Env:      getEnvOrDefaultMulti([]string{"FEATRANK_ENV", "ENV", "GO_ENV"}, k.String("env"), DefaultEnv),
		RedisURL: getEnvOrKoanf("REDIS_URL", k, "redis_url"),
		KFactor:  kFactor,
	}

	// Validate and collect errors
	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first non-empty value found, otherwise the koanf value, or default.
func getEnvOrDefaultMulti(envKeys []string, koanfVal string, defaultVal string) string {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvIntOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first valid integer value found, otherwise the koanf value, or default.
// Returns an error if any environment variable is set but cannot be parsed as an integer.
func getEnvIntOrDefaultMulti(envKeys []string, koanfVal int, defaultVal int) (int, error) {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				return 0, fmt.Errorf("%s must be a valid integer: %w", key, ErrInvalidPort)
			}
			return i, nil
		}
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// Validate checks that all configuration values are within range.
// Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, ErrPortOutOfRange)
	}
	if c.KFactor < 1 {
		errs = append(errs, ErrInvalidKFactor)
	}

	return errs
}

// LogSummary returns a summary of the configuration suitable for logging.
// Credentials embedded in the Redis URL are masked.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"port":      fmt.Sprintf("%d", c.Port),
		"env":       c.Env,
		"redis_url": maskRedisURL(c.RedisURL),
		"k_factor":  fmt.Sprintf("%d", c.KFactor),
	}
}

// maskRedisURL masks the password in a redis:// URL.
func maskRedisURL(s string) string {
	if s == "" {
		return "<not set>"
	}

	schemeEnd := strings.Index(s, "://")
	if schemeEnd == -1 {
		return s
	}

	rest := s[schemeEnd+3:]
	atIndex := strings.Index(rest, "@")
	if atIndex == -1 {
		return s // No credentials in URL
	}

	colonIndex := strings.Index(rest[:atIndex], ":")
	if colonIndex == -1 {
		return s // No password (only username)
	}

	// Reconstruct URL with masked password
	scheme := s[:schemeEnd+3]
	user := rest[:colonIndex]
	hostAndPath := rest[atIndex:]

	return scheme + user + ":****" + hostAndPath
}

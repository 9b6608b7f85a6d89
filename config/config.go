// Package config loads UnitAI settings from YAML with ${VAR} interpolation.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Provider names accepted in the provider field.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds all UnitAI configuration.
type Config struct {
	BaseDir string `yaml:"-"` // Directory containing config file, for resolving relative paths
	Path    string `yaml:"-"` // Resolved config file, empty when running on defaults

	Provider       string        `yaml:"provider"`        // gemini, openai or anthropic
	Model          string        `yaml:"model"`           // Provider model id; empty picks the provider default
	APIKey         string        `yaml:"api_key"`         // Usually "${GEMINI_API_KEY}"
	Temperature    float64       `yaml:"temperature"`     // Sampling temperature (0-2)
	MaxTokens      int           `yaml:"max_tokens"`      // Output token cap
	RequestTimeout time.Duration `yaml:"request_timeout"` // Per model call

	ContextDebounce time.Duration `yaml:"context_debounce"` // Quiet period before a context fetch (default: 1s)

	Cache CacheConfig   `yaml:"cache"`
	Log   LoggingConfig `yaml:"log"`
}

// CacheConfig selects the insight cache backend.
type CacheConfig struct {
	Driver string        `yaml:"driver"` // memory, sqlite or none
	Path   string        `yaml:"path"`   // SQLite file (sqlite driver only)
	TTL    time.Duration `yaml:"ttl"`    // Zero keeps entries forever
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Defaults returns a config with default values.
func Defaults() *Config {
	return &Config{
		Provider:        ProviderGemini,
		Temperature:     0.7,
		MaxTokens:       1024,
		RequestTimeout:  30 * time.Second,
		ContextDebounce: time.Second,
		Cache: CacheConfig{
			Driver: "memory",
		},
		Log: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// credentialEnv lists the env vars consulted, in order, when api_key is empty.
var credentialEnv = map[string][]string{
	ProviderGemini:    {"GEMINI_API_KEY", "API_KEY"},
	ProviderOpenAI:    {"OPENAI_API_KEY"},
	ProviderAnthropic: {"ANTHROPIC_API_KEY"},
}

// HasCredential reports whether an API key is available.
func (c *Config) HasCredential() bool { return c.APIKey != "" }

// MaskedAPIKey returns the key with all but the last four characters hidden.
func (c *Config) MaskedAPIKey() string {
	switch n := len(c.APIKey); {
	case n == 0:
		return ""
	case n <= 4:
		return strings.Repeat("*", n)
	default:
		return strings.Repeat("*", n-4) + c.APIKey[n-4:]
	}
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if _, ok := credentialEnv[c.Provider]; !ok {
		errs = append(errs, fmt.Sprintf("invalid provider: %q (must be gemini, openai, or anthropic)", c.Provider))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		errs = append(errs, fmt.Sprintf("invalid temperature: %g (must be 0-2)", c.Temperature))
	}
	if c.MaxTokens < 0 {
		errs = append(errs, fmt.Sprintf("invalid max_tokens: %d (must not be negative)", c.MaxTokens))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Sprintf("invalid request_timeout: %s (must not be negative)", c.RequestTimeout))
	}
	if c.ContextDebounce < 0 {
		errs = append(errs, fmt.Sprintf("invalid context_debounce: %s (must not be negative)", c.ContextDebounce))
	}

	switch c.Cache.Driver {
	case "memory", "none", "":
	case "sqlite":
		if c.Cache.Path == "" {
			errs = append(errs, "cache: sqlite driver requires path")
		}
	default:
		errs = append(errs, fmt.Sprintf("cache: unknown driver %q (must be memory, sqlite, or none)", c.Cache.Driver))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Sprintf("cache: invalid ttl: %s", c.Cache.TTL))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be json or text)", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

package mustache

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config contains all configuration options for the rendering engine
type Config struct {
	// DisableCache turns off the parsed template cache. Every render parses.
	DisableCache bool
	// Tags is the default delimiter pair, space separated (e.g. "{{ }}").
	Tags string
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string
	// MaxPartialDepth bounds how deeply partials may include each other.
	// 0 means unbounded.
	MaxPartialDepth int
	// StrictMode makes a missing partial an error instead of empty output
	StrictMode bool
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once
)

// loadGlobalConfig reads the environment on first use. DefaultEngine is
// built before init functions run.
func loadGlobalConfig() {
	configOnce.Do(func() {
		config := ConfigFromEnvironment()
		globalConfigMutex.Lock()
		globalConfig = config
		globalConfigMutex.Unlock()
	})
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DisableCache:    false,
		Tags:            DefaultTags.String(),
		LogLevel:        "info",
		MaxPartialDepth: 0,
		StrictMode:      false,
	}
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()

	// MUSTACHE_DISABLE_CACHE
	if val := os.Getenv("MUSTACHE_DISABLE_CACHE"); val != "" {
		config.DisableCache = parseBool(val)
	}

	// MUSTACHE_TAGS
	if val := os.Getenv("MUSTACHE_TAGS"); val != "" {
		config.Tags = val
	}

	// MUSTACHE_LOG_LEVEL
	if val := os.Getenv("MUSTACHE_LOG_LEVEL"); val != "" {
		config.LogLevel = strings.ToLower(val)
	}

	// MUSTACHE_MAX_PARTIAL_DEPTH
	if val := os.Getenv("MUSTACHE_MAX_PARTIAL_DEPTH"); val != "" {
		if depth, err := strconv.Atoi(val); err == nil {
			config.MaxPartialDepth = depth
		}
	}

	// MUSTACHE_STRICT_MODE
	if val := os.Getenv("MUSTACHE_STRICT_MODE"); val != "" {
		config.StrictMode = parseBool(val)
	}

	return config
}

// NewConfigWithDefaults creates a new configuration with defaults applied to unset fields
func NewConfigWithDefaults(overrides *Config) *Config {
	defaults := DefaultConfig()

	if overrides == nil {
		return defaults
	}

	config := *overrides

	if config.Tags == "" {
		config.Tags = defaults.Tags
	}

	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}

	return &config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := ParseTags(c.Tags); err != nil {
		return errors.New("invalid tags: " + strconv.Quote(c.Tags))
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"off":   true,
	}

	if !validLogLevels[c.LogLevel] {
		return errors.New("invalid log level: " + c.LogLevel)
	}

	if c.MaxPartialDepth < 0 {
		return errors.New("max partial depth cannot be negative")
	}

	return nil
}

// tags returns the configured delimiters, falling back to DefaultTags when
// the setting does not parse.
func (c *Config) tags() Tags {
	if c.Tags == "" {
		return DefaultTags
	}
	tags, err := ParseTags(c.Tags)
	if err != nil {
		GetLogger().WithField("tags", c.Tags).Warn("Invalid configured tags, using %s", DefaultTags)
		return DefaultTags
	}
	return tags
}

// GetGlobalConfig returns the global configuration
func GetGlobalConfig() *Config {
	loadGlobalConfig()
	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}

	// Return a copy to prevent modification
	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) {
	loadGlobalConfig()
	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()

	// Update logger based on new config (outside the lock to avoid deadlock)
	UpdateLoggerFromConfig()
}

// parseBool parses a boolean value from a string
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Loader handles configuration loading from multiple sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		v: viper.New(),
	}
}

// Load loads configuration from files and environment variables.
func (l *Loader) Load() (*Config, error) {
	l.setDefaults()
	l.setupConfigPaths()
	l.setupEnvVars()

	// Try to read config file (it's optional)
	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults + env vars
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := l.validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadWithPath loads configuration from a specific file path.
func LoadWithPath(path string) (*Config, error) {
	loader := NewLoader()
	loader.setDefaults()
	loader.setupEnvVars()

	loader.v.SetConfigFile(path)

	if err := loader.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := loader.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := loader.validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func (l *Loader) setDefaults() {
	l.v.SetDefault("endpoint", "http://localhost:15888/api/nodes")
	l.v.SetDefault("request_timeout", "5s")
	l.v.SetDefault("poll_interval", "10s")
	l.v.SetDefault("log_level", "info")
	l.v.SetDefault("log_format", "text")
}

// setupConfigPaths configures where to search for config files.
func (l *Loader) setupConfigPaths() {
	l.v.SetConfigName(".meshwatch")
	l.v.SetConfigType("yaml")

	// Search paths in priority order
	l.v.AddConfigPath("/etc/meshwatch")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
	}
	l.v.AddConfigPath(".")
}

// setupEnvVars configures environment variable handling.
func (l *Loader) setupEnvVars() {
	l.v.SetEnvPrefix("MESHWATCH")
	l.v.AutomaticEnv()
}

// validate validates the configuration.
func (l *Loader) validate(cfg *Config) error {
	if cfg.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}

	u, err := url.Parse(cfg.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("endpoint must be an absolute URL: %q", cfg.Endpoint)
	}

	if cfg.RequestTimeout < 100*time.Millisecond {
		return fmt.Errorf("request_timeout must be at least 100ms")
	}

	if cfg.PollInterval < time.Second {
		return fmt.Errorf("poll_interval must be at least 1 second")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}

	// Validate log format
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("invalid log_format: %s (must be text or json)", cfg.LogFormat)
	}

	return nil
}

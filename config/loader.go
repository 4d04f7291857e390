package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// envOverrides values read from the environment, applied over the file
type envOverrides struct {
	ListenAddr string `env:"TRADEGAME_LISTEN_ADDR"`
	RateURL    string `env:"TRADEGAME_RATE_URL"`
	RateAPIKey string `env:"TRADEGAME_RATE_API_KEY"`
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand ${VAR} environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads config and applies default values.
// An empty path starts from Default.
func LoadWithDefaults(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadAndValidate loads config, applies defaults and environment overrides, and validates.
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with TRADEGAME_* environment variables.
// Providing an API key enables the rate source.
func ApplyEnv(cfg *Config) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if o.ListenAddr != "" {
		cfg.ListenAddr = o.ListenAddr
	}
	if o.RateURL != "" {
		cfg.RateSource.URL = o.RateURL
	}
	if o.RateAPIKey != "" {
		cfg.RateSource.APIKey = o.RateAPIKey
		cfg.RateSource.Enabled = true
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file into target, expanding ${VAR} references
// from the environment before parsing, then validates the result.
func Load(filename string, target *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	if err := target.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// LoadOrDefault returns defaults when filename is empty or absent, and
// loads the file otherwise. An unreadable or invalid file is an error;
// only a missing one falls back silently.
func LoadOrDefault(filename string) (*Config, error) {
	cfg := NewDefaultConfig()
	if filename == "" {
		return cfg, nil
	}
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err := Load(filename, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Package config provides configuration types and utilities for the
// AlphaSolve engine.
//
// This file contains the main unified configuration entry point: loading a
// YAML config file, expanding ${VAR} references against the environment
// (see env.go), and applying the SetDefaults/Validate idiom used throughout
// this package.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads filePath, expands environment variable references, unmarshals
// it into a Config, applies defaults, and validates the result.
func Load(filePath string) (*Config, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", filePath, err)
	}
	return LoadFromString(string(raw))
}

// LoadFromString is Load without a file, for tests and embedded defaults.
func LoadFromString(yamlContent string) (*Config, error) {
	expanded := expandEnvVars(yamlContent)

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid: %w", err)
	}
	return &cfg, nil
}

// ResolveAPIKey reads the API key environment variable named by the role's
// APIKeyEnv field. An unset or empty variable is an error rather than a
// silently empty credential.
func ResolveAPIKey(role RoleConfig) (string, error) {
	if role.APIKeyEnv == "" {
		return "", fmt.Errorf("config: api_key_env is not set")
	}
	key := os.Getenv(role.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("config: environment variable %s is not set", role.APIKeyEnv)
	}
	return key, nil
}

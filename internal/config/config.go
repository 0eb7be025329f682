// Package config loads and validates project-level build configuration:
// the settings that apply across a project's documents, as opposed to a
// single document's own header (see internal/docfile).
package config

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads configPath, expands ${VAR} references against the process
// environment (after loading a .env file, if present, without
// overwriting variables already set), and fills any field the file left
// zero-valued from compiled-in defaults.
func Load(configPath string) (*Config, error) {
	loadDotEnv()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", configPath, err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", configPath, err)
	}

	defaults := &Config{}
	if err := NewDefaultApplier().ApplyDefaults(defaults); err != nil {
		return nil, fmt.Errorf("config: compute defaults: %w", err)
	}
	if err := mergo.Merge(&cfg, defaults); err != nil {
		return nil, fmt.Errorf("config: merge defaults: %w", err)
	}

	return &cfg, nil
}

// Init writes a starter config file at configPath, refusing to overwrite
// an existing one unless force is set.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("config: %s already exists (use --force to overwrite)", configPath)
	}

	cfg := &Config{}
	if err := NewDefaultApplier().ApplyDefaults(cfg); err != nil {
		return fmt.Errorf("config: compute defaults: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", configPath, err)
	}
	return nil
}

// loadDotEnv loads .env, then .env.local, into the process environment.
// A missing file is not an error; this mirrors the teacher's best-effort
// env overlay rather than requiring one to exist.
func loadDotEnv() {
	for _, path := range []string{".env", ".env.local"} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		_ = godotenv.Load(path)
	}
}

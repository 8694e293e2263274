// Package config loads the optional ytauth defaults file. Every field
// can be overridden on the command line; a missing file means built-in
// defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

const (
	VersionV1 = "v1"

	// DefaultScope is the single upload scope requested when neither the
	// config file nor the --scopes flag names any.
	DefaultScope = "https://www.googleapis.com/auth/youtube.upload"
)

type Config struct {
	Version          string   `yaml:"version"`
	ClientSecretFile string   `yaml:"client-secret-file,omitempty"`
	Scopes           []string `yaml:"scopes,omitempty"`
	NoLocalServer    bool     `yaml:"no-local-server,omitempty"`
	Quiet            bool     `yaml:"quiet,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Version: VersionV1,
		Scopes:  []string{DefaultScope},
	}
}

func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Version == "" {
		cfg.Version = VersionV1
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.Version == "" {
		cfg.Version = VersionV1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	content, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, content, 0o600)
}

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file steward looks for in its data dir.
const DefaultFileName = "steward.yaml"

// Config represents the top-level steward.yaml configuration.
type Config struct {
	Church   ChurchConfig   `yaml:"church"`
	Store    StoreConfig    `yaml:"store"`
	Matching MatchingConfig `yaml:"matching"`
	Audit    AuditConfig    `yaml:"audit"`
}

// ChurchConfig identifies the charity the ledger belongs to.
type ChurchConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// StoreConfig locates the database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// MatchingConfig controls suggestion presentation.
type MatchingConfig struct {
	// MinConfidence hides suggestions scoring below it. Matching
	// itself is unaffected; this is display-side only.
	MinConfidence float64 `yaml:"min_confidence"`
}

// AuditConfig controls the operator action log.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// Load reads a steward.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults rooted at dataDir.
func Default(dataDir, churchID, churchName string) *Config {
	return &Config{
		Church: ChurchConfig{
			ID:   churchID,
			Name: churchName,
		},
		Store: StoreConfig{
			Path: filepath.Join(dataDir, "steward.db"),
		},
		Matching: MatchingConfig{
			MinConfidence: 0.5,
		},
		Audit: AuditConfig{
			Enabled: true,
			Dir:     dataDir,
		},
	}
}

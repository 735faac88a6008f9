package config

import (
	"fmt"
	"os"

	"insights/internal/spec"
)

// Load reads, parses, normalizes, and validates a config file.
func Load(path string) (spec.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return spec.Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := spec.ParseConfig(data)
	if err != nil {
		return spec.Config{}, err
	}
	Normalize(&cfg)
	if err := Validate(&cfg); err != nil {
		return spec.Config{}, err
	}
	cfg.Warehouse.Path = ResolvePath(RepoRootFromConfigPath(path), cfg.Warehouse.Path)
	return cfg, nil
}

// Default returns a normalized config for running without a config file.
func Default() spec.Config {
	cfg := spec.Config{Version: 1}
	Normalize(&cfg)
	return cfg
}

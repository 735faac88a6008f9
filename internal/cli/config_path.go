package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"insights/internal/config"
	"insights/internal/spec"
)

// resolveSpecPath normalizes a config path or finds it from CWD.
func resolveSpecPath(specPath string) (string, error) {
	if strings.TrimSpace(specPath) == "" {
		return config.FindConfigPath("")
	}
	abs, err := filepath.Abs(specPath)
	if err != nil {
		return "", fmt.Errorf("resolve spec path: %w", err)
	}
	return abs, nil
}

// loadConfig loads an explicit config, or the discovered one, or falls back
// to defaults when none is found. The returned path is empty for defaults.
func loadConfig(specPath string) (spec.Config, string, error) {
	if strings.TrimSpace(specPath) != "" {
		resolved, err := resolveSpecPath(specPath)
		if err != nil {
			return spec.Config{}, "", err
		}
		cfg, err := config.Load(resolved)
		return cfg, resolved, err
	}
	found, err := config.FindConfigPath("")
	if err != nil {
		return config.Default(), "", nil
	}
	cfg, err := config.Load(found)
	return cfg, found, err
}

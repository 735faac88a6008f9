package config

import (
	"os"
	"path/filepath"
	"testing"

	"insights/internal/spec"
)

// validConfig returns a normalized config used by validation tests.
func validConfig() spec.Config {
	cfg := spec.Config{
		Version: 1,
		Agent: spec.AgentConfig{
			URL: "http://localhost:8288",
		},
		Tools: []spec.ToolConfig{
			{Name: "select_events", Phrase: "Analyzing events..."},
		},
	}
	Normalize(&cfg)
	return cfg
}

func writeConfig(t *testing.T, root, payload string) string {
	t.Helper()
	path := ConfigPath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create config dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

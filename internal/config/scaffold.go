package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultConfig = `version: 1
agent:
  url: "http://127.0.0.1:8288"
  send_path: "/api/chat"
  stream_path: "/api/realtime"
  generator_tool: "generate_sql"

warehouse:
  path: ".insights/events.duckdb"
  page_size: 40
  max_pages: 5

ui:
  mode: auto

editor:
  auto_run: true

tools:
  - name: select_events
    phrase: "Analyzing events..."
  - name: generate_sql
    phrase: "Writing SQL..."
`

// Scaffold writes a starter config at configPath. It refuses to overwrite.
func Scaffold(configPath string) error {
	if configPath == "" {
		return fmt.Errorf("config path is required")
	}
	if info, err := os.Stat(configPath); err == nil {
		if info.IsDir() {
			return fmt.Errorf("config path %q is a directory", configPath)
		}
		return fmt.Errorf("config file already exists at %q", configPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

package spec

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Config{}, fmt.Errorf("parse config: multiple YAML documents are not supported")
		}
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Phrases returns the configured tool phrases keyed by tool name.
func (c Config) Phrases() map[string]string {
	if len(c.Tools) == 0 {
		return nil
	}
	out := make(map[string]string, len(c.Tools))
	for _, tool := range c.Tools {
		out[tool.Name] = tool.Phrase
	}
	return out
}

// AutoRun reports whether inserted SQL should run immediately.
func (c Config) AutoRun() bool {
	return c.Editor.AutoRun == nil || *c.Editor.AutoRun
}

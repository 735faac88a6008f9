package spec

import "insights/internal/eventtypes"

type Config struct {
	Version    int                    `yaml:"version"`
	Agent      AgentConfig            `yaml:"agent"`
	Warehouse  WarehouseConfig        `yaml:"warehouse"`
	UI         UIConfig               `yaml:"ui"`
	Editor     EditorConfig           `yaml:"editor"`
	Tools      []ToolConfig           `yaml:"tools"`
	EventTypes []eventtypes.EventType `yaml:"event_types"`
}

type AgentConfig struct {
	URL           string `yaml:"url"`
	SendPath      string `yaml:"send_path"`
	StreamPath    string `yaml:"stream_path"`
	UserID        string `yaml:"user_id"`
	GeneratorTool string `yaml:"generator_tool"`
}

type WarehouseConfig struct {
	Path     string `yaml:"path"`
	PageSize int    `yaml:"page_size"`
	MaxPages int    `yaml:"max_pages"`
}

type UIConfig struct {
	Mode    string `yaml:"mode"`
	NoColor bool   `yaml:"no_color"`
}

type EditorConfig struct {
	// AutoRun defaults to true when omitted.
	AutoRun *bool `yaml:"auto_run"`
}

// ToolConfig overrides the loading phrase shown while a tool runs.
type ToolConfig struct {
	Name   string `yaml:"name"`
	Phrase string `yaml:"phrase"`
}

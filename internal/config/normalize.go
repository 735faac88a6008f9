package config

import (
	"strings"

	"insights/internal/artifact"
	"insights/internal/eventtypes"
	"insights/internal/spec"
	"insights/internal/transport"
)

// Defaults applied by Normalize.
const (
	DefaultAgentURL = "http://127.0.0.1:8288"
	DefaultUIMode   = "auto"
)

func Normalize(cfg *spec.Config) {
	cfg.Agent.URL = strings.TrimRight(strings.TrimSpace(cfg.Agent.URL), "/")
	if cfg.Agent.URL == "" {
		cfg.Agent.URL = DefaultAgentURL
	}
	if cfg.Agent.SendPath == "" {
		cfg.Agent.SendPath = transport.DefaultSendPath
	}
	if cfg.Agent.StreamPath == "" {
		cfg.Agent.StreamPath = transport.DefaultStreamPath
	}
	if strings.TrimSpace(cfg.Agent.GeneratorTool) == "" {
		cfg.Agent.GeneratorTool = artifact.DefaultGeneratorTool
	}
	if cfg.Warehouse.Path == "" {
		cfg.Warehouse.Path = DefaultWarehousePath
	}
	if cfg.Warehouse.PageSize == 0 {
		cfg.Warehouse.PageSize = eventtypes.DefaultPageSize
	}
	if cfg.Warehouse.MaxPages == 0 {
		cfg.Warehouse.MaxPages = eventtypes.DefaultMaxPages
	}
	cfg.UI.Mode = strings.ToLower(strings.TrimSpace(cfg.UI.Mode))
	if cfg.UI.Mode == "" {
		cfg.UI.Mode = DefaultUIMode
	}
	for i := range cfg.Tools {
		cfg.Tools[i].Name = strings.TrimSpace(cfg.Tools[i].Name)
	}
	for i := range cfg.EventTypes {
		cfg.EventTypes[i].Name = strings.TrimSpace(cfg.EventTypes[i].Name)
	}
}

package config

import (
	"fmt"
	"net/url"
	"strings"

	"insights/internal/spec"
)

func validateAgent(agent spec.AgentConfig, add issueAdder) {
	parsed, err := url.Parse(agent.URL)
	if err != nil {
		add("agent.url", fmt.Sprintf("invalid url: %v", err))
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		add("agent.url", fmt.Sprintf("unsupported scheme %q", parsed.Scheme))
	} else if parsed.Host == "" {
		add("agent.url", "host is required")
	}
	if !strings.HasPrefix(agent.SendPath, "/") {
		add("agent.send_path", "must start with /")
	}
	if !strings.HasPrefix(agent.StreamPath, "/") {
		add("agent.stream_path", "must start with /")
	}
	if strings.ContainsAny(agent.GeneratorTool, " \t") {
		add("agent.generator_tool", "must not contain whitespace")
	}
}

func validateWarehouse(warehouse spec.WarehouseConfig, add issueAdder) {
	if warehouse.PageSize < 0 {
		add("warehouse.page_size", "must be >= 0")
	}
	if warehouse.MaxPages < 0 {
		add("warehouse.max_pages", "must be >= 0")
	}
}

func validateUI(ui spec.UIConfig, add issueAdder) {
	switch ui.Mode {
	case "auto", "live", "plain":
	default:
		add("ui.mode", fmt.Sprintf("unsupported mode %q", ui.Mode))
	}
}

func validateTools(tools []spec.ToolConfig, add issueAdder) {
	seen := map[string]struct{}{}
	for i, tool := range tools {
		fieldPrefix := fmt.Sprintf("tools[%d]", i)
		if tool.Name == "" {
			add(fieldPrefix+".name", "is required")
		} else if _, exists := seen[tool.Name]; exists {
			add("tools.name", fmt.Sprintf("duplicate name %q", tool.Name))
		} else {
			seen[tool.Name] = struct{}{}
		}
		if strings.TrimSpace(tool.Phrase) == "" {
			add(fieldPrefix+".phrase", "is required")
		}
	}
}

func validateEventTypes(cfg *spec.Config, add issueAdder) {
	seen := map[string]struct{}{}
	for i, eventType := range cfg.EventTypes {
		if eventType.Name == "" {
			add(fmt.Sprintf("event_types[%d].name", i), "is required")
			continue
		}
		if _, exists := seen[eventType.Name]; exists {
			add("event_types.name", fmt.Sprintf("duplicate name %q", eventType.Name))
			continue
		}
		seen[eventType.Name] = struct{}{}
	}
}

package config

import (
	"fmt"
	"strings"

	"insights/internal/spec"
)

// Issue is one problem with a config field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError lists every issue found in a config.
type ValidationError struct {
	Issues []Issue
}

// Error renders one "field: message" line per issue.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "config validation failed"
	}
	lines := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		lines = append(lines, issue.Field+": "+issue.Message)
	}
	return strings.Join(lines, "\n")
}

// Has reports whether any issue names field.
func (err *ValidationError) Has(field string) bool {
	if err == nil {
		return false
	}
	for _, issue := range err.Issues {
		if issue.Field == field {
			return true
		}
	}
	return false
}

type issueAdder func(field, message string)

type issueCollector struct {
	issues []Issue
}

func (c *issueCollector) add(field, message string) {
	c.issues = append(c.issues, Issue{Field: field, Message: message})
}

func (c *issueCollector) result() error {
	if len(c.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: c.issues}
}

// Validate checks a normalized config and reports every issue at once.
func Validate(cfg *spec.Config) error {
	if cfg == nil {
		return &ValidationError{Issues: []Issue{{Field: "config", Message: "is required"}}}
	}
	collector := &issueCollector{}

	switch cfg.Version {
	case 0:
		collector.add("version", "is required")
	case 1:
	default:
		collector.add("version", fmt.Sprintf("unsupported version %d", cfg.Version))
	}

	validateAgent(cfg.Agent, collector.add)
	validateWarehouse(cfg.Warehouse, collector.add)
	validateUI(cfg.UI, collector.add)
	validateTools(cfg.Tools, collector.add)
	validateEventTypes(cfg, collector.add)

	return collector.result()
}

package live

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"insights/internal/transport"
)

// formatThreadID shortens a thread id for display.
func formatThreadID(id string) string {
	const limit = 8
	if len(id) <= limit {
		return id
	}
	return id[:limit]
}

// fmtInt converts an int to string.
func fmtInt(value int) string {
	return strconv.Itoa(value)
}

// formatSQL collapses whitespace and truncates generated SQL.
func formatSQL(sql string, limit int) string {
	normalized := strings.Join(strings.Fields(sql), " ")
	if normalized == "" {
		return ""
	}
	if limit <= 3 || len(normalized) <= limit {
		return normalized
	}
	return normalized[:limit-3] + "..."
}

// formatVersion renders the artifact version column.
func formatVersion(version int) string {
	if version <= 0 {
		return ""
	}
	return "v" + fmtInt(version)
}

// formatActivity renders the loading message with the spinner frame.
func formatActivity(row ThreadRow, frame string, noColor bool) string {
	if row.Loading == "" {
		return ""
	}
	text := row.Loading
	if frame != "" {
		text = frame + " " + text
	}
	return stylizeTool(text, noColor)
}

// formatLifecycle renders a lifecycle label.
func formatLifecycle(status transport.Lifecycle, noColor bool) string {
	label := string(status)
	if label == "" {
		label = string(transport.LifecycleReady)
	}
	if noColor {
		return label
	}
	return lifecycleStyle(status).Render(label)
}

// stylizeTool applies muted styling to activity text.
func stylizeTool(text string, noColor bool) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render(text)
}

// lifecycleStyle selects a style for a lifecycle status.
func lifecycleStyle(status transport.Lifecycle) lipgloss.Style {
	color := lipgloss.Color("246")
	switch status {
	case transport.LifecycleSubmitted:
		color = lipgloss.Color("39")
	case transport.LifecycleStreaming:
		color = lipgloss.Color("33")
	case transport.LifecycleError:
		color = lipgloss.Color("196")
	case transport.LifecycleReady:
		color = lipgloss.Color("42")
	}
	return lipgloss.NewStyle().Foreground(color)
}

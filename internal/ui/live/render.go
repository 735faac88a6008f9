package live

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the session header line.
func renderHeader(state State, now time.Time, noColor bool) string {
	line := "Insights"
	if state.Endpoint != "" {
		line += " | " + state.Endpoint
	}
	if !state.StartedAt.IsZero() {
		line += " | Elapsed: " + formatDuration(now.Sub(state.StartedAt))
	}
	if state.Ended {
		line += " | stream ended"
	}
	return stylize(line, noColor, lipgloss.Color("33"))
}

// renderSummary renders the lifecycle counts line.
func renderSummary(state State, noColor bool) string {
	counts := state.Counts
	line := "Threads: " + fmtInt(len(state.Rows)) +
		" Ready: " + fmtInt(counts.Ready) +
		" Submitted: " + fmtInt(counts.Submitted) +
		" Streaming: " + fmtInt(counts.Streaming) +
		" Error: " + fmtInt(counts.Error) +
		" SQL: " + fmtInt(counts.WithSQL)
	return stylize(line, noColor, lipgloss.Color("242"))
}

// renderFooter renders the last event line.
func renderFooter(state State, noColor bool) string {
	if state.LastEvent == "" {
		return ""
	}
	return stylize("Last event: "+state.LastEvent, noColor, lipgloss.Color("244"))
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}

package live

import (
	"fmt"
	"time"

	"insights/internal/agentevent"
	"insights/internal/transport"
)

// Reduce applies a refreshed thread row to the UI state. Rows keep the order
// in which their threads first appeared.
func Reduce(state State, row ThreadRow) State {
	if row.ThreadID == "" {
		return state
	}
	index := -1
	for i := range state.Rows {
		if state.Rows[i].ThreadID == row.ThreadID {
			index = i
			break
		}
	}
	rows := make([]ThreadRow, len(state.Rows), len(state.Rows)+1)
	copy(rows, state.Rows)
	var previous ThreadRow
	if index < 0 {
		rows = append(rows, row)
		index = len(rows) - 1
	} else {
		previous = rows[index]
		row.Events += previous.Events
		if row.FirstSeenAt.IsZero() {
			row.FirstSeenAt = previous.FirstSeenAt
		}
		if row.TabID == "" {
			row.TabID = previous.TabID
		}
		rows[index] = row
	}
	state.Rows = rows
	state.Counts = recount(rows)
	if message := formatLastEvent(previous, row); message != "" {
		state.LastEvent = message
	}
	return state
}

// recount recomputes lifecycle counts for the current rows.
func recount(rows []ThreadRow) StatusCounts {
	var counts StatusCounts
	for _, row := range rows {
		switch row.Lifecycle {
		case transport.LifecycleSubmitted:
			counts.Submitted++
		case transport.LifecycleStreaming:
			counts.Streaming++
		case transport.LifecycleError:
			counts.Error++
		default:
			counts.Ready++
		}
		if row.SQL != "" {
			counts.WithSQL++
		}
	}
	return counts
}

// formatLastEvent creates a short footer message for a row change.
func formatLastEvent(previous, row ThreadRow) string {
	label := formatThreadID(row.ThreadID)
	if row.Version > previous.Version && row.SQL != "" {
		if row.Title != "" {
			return fmt.Sprintf("%s generated SQL v%d: %s", label, row.Version, row.Title)
		}
		return fmt.Sprintf("%s generated SQL v%d", label, row.Version)
	}
	if row.Lifecycle != previous.Lifecycle {
		switch row.Lifecycle {
		case transport.LifecycleError:
			return label + " send failed"
		case transport.LifecycleSubmitted:
			return label + " message sent"
		}
	}
	switch row.LastKind {
	case agentevent.KindRunStarted:
		return label + " run started"
	case agentevent.KindStreamEnded:
		return label + " finished"
	}
	return ""
}

// formatDuration renders a rounded duration for display.
func formatDuration(duration time.Duration) string {
	if duration <= 0 {
		return "0s"
	}
	return duration.Round(100 * time.Millisecond).String()
}

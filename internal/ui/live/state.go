package live

import (
	"time"

	"insights/internal/agentevent"
	"insights/internal/transport"
)

// ThreadRow holds UI state for a single agent thread.
type ThreadRow struct {
	ThreadID  string
	TabID     string
	Lifecycle transport.Lifecycle
	// Loading is the progress message; empty when no indicator is shown.
	Loading     string
	Title       string
	SQL         string
	Version     int
	LastKind    agentevent.Kind
	Events      int
	FirstSeenAt time.Time
}

// StatusCounts aggregates rows by lifecycle.
type StatusCounts struct {
	Ready     int
	Submitted int
	Streaming int
	Error     int
	WithSQL   int
}

// State captures the live UI state for a session.
type State struct {
	Endpoint  string
	StartedAt time.Time
	Ended     bool
	LastEvent string
	Rows      []ThreadRow
	Counts    StatusCounts
}

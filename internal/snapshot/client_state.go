package snapshot

import (
	"time"

	"insights/internal/eventtypes"
)

// ModePlayground tags state captured from the SQL playground.
const ModePlayground = "insights_sql_playground"

// ClientState is the context sent to the agent along with a user message.
type ClientState struct {
	SQLQuery     string            `json:"sqlQuery"`
	EventTypes   []string          `json:"eventTypes"`
	Schemas      map[string]string `json:"schemas"`
	CurrentQuery string            `json:"currentQuery"`
	TabTitle     string            `json:"tabTitle"`
	Mode         string            `json:"mode"`
	Timestamp    int64             `json:"timestamp"`
}

// Capture builds the state for a tab at send time.
func Capture(tabTitle, query string, catalog eventtypes.Catalog, now time.Time) ClientState {
	state := Default(catalog, now)
	state.SQLQuery = query
	state.CurrentQuery = query
	state.TabTitle = tabTitle
	return state
}

// Default returns the minimal context used when a thread has no snapshot.
func Default(catalog eventtypes.Catalog, now time.Time) ClientState {
	names := catalog.Names
	if names == nil {
		names = []string{}
	}
	return ClientState{
		EventTypes: names,
		Schemas:    catalog.Schemas,
		Mode:       ModePlayground,
		Timestamp:  now.UnixMilli(),
	}
}

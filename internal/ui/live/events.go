package live

// EventKind identifies the type of live UI event.
type EventKind int

const (
	// EventSessionStart signals that the event stream is connected.
	EventSessionStart EventKind = iota
	// EventThread delivers a refreshed thread row.
	EventThread
	// EventNotice sets the footer line.
	EventNotice
	// EventSessionEnd signals that the stream has ended.
	EventSessionEnd
)

// Event carries a UI update payload.
type Event struct {
	Kind     EventKind
	Endpoint string
	Row      ThreadRow
	Notice   string
}

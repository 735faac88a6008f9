package agentevent

import "encoding/json"

// Kind identifies an agent stream event.
type Kind string

const (
	// KindRunStarted signals that a new agent turn began for a thread.
	KindRunStarted Kind = "run.started"
	// KindTextDelta carries a chunk of streamed assistant text.
	KindTextDelta Kind = "text.delta"
	// KindToolCallArgumentsDelta carries streamed tool call arguments.
	KindToolCallArgumentsDelta Kind = "tool_call.arguments.delta"
	// KindPartCompleted signals that a message part finished.
	KindPartCompleted Kind = "part.completed"
	// KindStreamEnded signals that the agent turn fully completed.
	KindStreamEnded Kind = "stream.ended"
)

// PartType identifies the structural unit a part.completed event closes.
type PartType string

const (
	PartText       PartType = "text"
	PartToolCall   PartType = "tool-call"
	PartToolOutput PartType = "tool-output"
)

// Event is one decoded agent stream event. The set of implementations is
// closed: RunStarted, TextDelta, ToolCallArgumentsDelta, PartCompleted,
// StreamEnded and Unrecognized.
type Event interface {
	// ThreadID returns the thread the event belongs to, or "" when the
	// event carried no usable thread id.
	ThreadID() string
	Kind() Kind
	isEvent()
}

// RunStarted marks the start of an agent turn.
type RunStarted struct {
	Thread string
	RunID  string
}

// TextDelta carries streamed assistant text.
type TextDelta struct {
	Thread string
	PartID string
	Delta  string
}

// ToolCallArgumentsDelta carries streamed arguments for a tool invocation.
type ToolCallArgumentsDelta struct {
	Thread   string
	PartID   string
	ToolName string
	Delta    string
}

// PartCompleted closes a text, tool-call or tool-output part. FinalContent
// holds the tool specific payload for tool-output parts.
type PartCompleted struct {
	Thread       string
	PartID       string
	PartType     PartType
	ToolName     string
	FinalContent json.RawMessage
}

// StreamEnded marks the end of an agent turn.
type StreamEnded struct {
	Thread string
}

// Unrecognized is any event whose kind this package does not model.
type Unrecognized struct {
	Thread string
	Name   string
}

func (e RunStarted) ThreadID() string             { return e.Thread }
func (e TextDelta) ThreadID() string              { return e.Thread }
func (e ToolCallArgumentsDelta) ThreadID() string { return e.Thread }
func (e PartCompleted) ThreadID() string          { return e.Thread }
func (e StreamEnded) ThreadID() string            { return e.Thread }
func (e Unrecognized) ThreadID() string           { return e.Thread }

func (RunStarted) Kind() Kind             { return KindRunStarted }
func (TextDelta) Kind() Kind              { return KindTextDelta }
func (ToolCallArgumentsDelta) Kind() Kind { return KindToolCallArgumentsDelta }
func (PartCompleted) Kind() Kind          { return KindPartCompleted }
func (StreamEnded) Kind() Kind            { return KindStreamEnded }
func (e Unrecognized) Kind() Kind         { return Kind(e.Name) }

func (RunStarted) isEvent()             {}
func (TextDelta) isEvent()              {}
func (ToolCallArgumentsDelta) isEvent() {}
func (PartCompleted) isEvent()          {}
func (StreamEnded) isEvent()            {}
func (Unrecognized) isEvent()           {}

// Addressable reports whether an event can be attributed to a thread.
func Addressable(ev Event) bool {
	return ev != nil && ev.ThreadID() != ""
}

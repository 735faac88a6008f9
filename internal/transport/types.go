package transport

import (
	"context"
	"errors"
)

// Lifecycle is the transport's view of a thread's turn.
type Lifecycle string

const (
	LifecycleReady     Lifecycle = "ready"
	LifecycleSubmitted Lifecycle = "submitted"
	LifecycleStreaming Lifecycle = "streaming"
	LifecycleError     Lifecycle = "error"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Part types and tool part states.
const (
	PartText     = "text"
	PartToolCall = "tool-call"

	ToolInputStreaming  = "input-streaming"
	ToolInputAvailable  = "input-available"
	ToolOutputAvailable = "output-available"
)

// ErrNoThread is returned when a send names no thread.
var ErrNoThread = errors.New("transport: thread id is required")

// ErrNoSender is returned when a session has nowhere to send messages.
var ErrNoSender = errors.New("transport: sender is nil")

// Part is one piece of a message.
type Part struct {
	ID        string
	Type      string
	Content   string
	ToolName  string
	Arguments string
	Output    []byte
	State     string
}

// Message is one entry of a thread's conversation.
type Message struct {
	ID       string
	ThreadID string
	Role     string
	Parts    []Part
}

// Text concatenates the message's text parts.
func (m Message) Text() string {
	var out string
	for _, part := range m.Parts {
		if part.Type == PartText {
			out += part.Content
		}
	}
	return out
}

// SendRequest is one outbound user message together with the client state
// captured for its thread.
type SendRequest struct {
	ThreadID string `json:"threadId"`
	Message  string `json:"message"`
	UserID   string `json:"userId,omitempty"`
	State    any    `json:"state"`
}

// Sender delivers user messages to the agent backend.
type Sender interface {
	Send(ctx context.Context, req SendRequest) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, req SendRequest) error

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, req SendRequest) error {
	return f(ctx, req)
}

package transport

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"insights/internal/agentevent"
)

// Session owns the transport side of a chat: per-thread messages, per-thread
// lifecycle status, and which thread is current.
type Session struct {
	sender Sender
	newID  func() string

	mu        sync.RWMutex
	current   string
	messages  map[string][]Message
	lifecycle map[string]Lifecycle
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithIDGenerator replaces uuid based message ids.
func WithIDGenerator(fn func() string) SessionOption {
	return func(s *Session) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewSession creates a transport session that sends through sender.
func NewSession(sender Sender, opts ...SessionOption) *Session {
	s := &Session{
		sender:    sender,
		newID:     uuid.NewString,
		messages:  map[string][]Message{},
		lifecycle: map[string]Lifecycle{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send records the user message and forwards the request. A failed send
// marks the thread as errored and returns the sender's error unchanged.
func (s *Session) Send(ctx context.Context, req SendRequest) error {
	if req.ThreadID == "" {
		return ErrNoThread
	}
	if s.sender == nil {
		return ErrNoSender
	}
	s.mu.Lock()
	s.messages[req.ThreadID] = append(s.messages[req.ThreadID], Message{
		ID:       s.newID(),
		ThreadID: req.ThreadID,
		Role:     RoleUser,
		Parts:    []Part{{ID: s.newID(), Type: PartText, Content: req.Message}},
	})
	s.lifecycle[req.ThreadID] = LifecycleSubmitted
	s.mu.Unlock()

	if err := s.sender.Send(ctx, req); err != nil {
		s.mu.Lock()
		s.lifecycle[req.ThreadID] = LifecycleError
		s.mu.Unlock()
		return err
	}
	return nil
}

// Observe folds an agent event into the thread's messages and lifecycle.
func (s *Session) Observe(ev agentevent.Event) {
	if !agentevent.Addressable(ev) {
		return
	}
	thread := ev.ThreadID()
	s.mu.Lock()
	defer s.mu.Unlock()
	switch typed := ev.(type) {
	case agentevent.RunStarted:
		s.lifecycle[thread] = LifecycleStreaming
		s.messages[thread] = append(s.messages[thread], s.assistantMessage(thread))
	case agentevent.TextDelta:
		s.lifecycle[thread] = LifecycleStreaming
		s.updatePart(thread, typed.PartID, PartText, func(part *Part) {
			part.Content += typed.Delta
		})
	case agentevent.ToolCallArgumentsDelta:
		s.lifecycle[thread] = LifecycleStreaming
		s.updatePart(thread, typed.PartID, PartToolCall, func(part *Part) {
			if typed.ToolName != "" {
				part.ToolName = typed.ToolName
			}
			part.Arguments += typed.Delta
			part.State = ToolInputStreaming
		})
	case agentevent.PartCompleted:
		switch typed.PartType {
		case agentevent.PartToolCall:
			s.updatePart(thread, typed.PartID, PartToolCall, func(part *Part) {
				if typed.ToolName != "" {
					part.ToolName = typed.ToolName
				}
				part.State = ToolInputAvailable
			})
		case agentevent.PartToolOutput:
			s.updatePartMatching(thread, typed.PartID, PartToolCall, awaitingOutput(typed.ToolName), func(part *Part) {
				if typed.ToolName != "" {
					part.ToolName = typed.ToolName
				}
				part.Output = append([]byte(nil), typed.FinalContent...)
				part.State = ToolOutputAvailable
			})
		}
	case agentevent.StreamEnded:
		s.lifecycle[thread] = LifecycleReady
	}
}

// Messages returns a copy of a thread's messages.
func (s *Session) Messages(threadID string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.messages[threadID]
	out := make([]Message, len(src))
	for i, msg := range src {
		msg.Parts = append([]Part(nil), msg.Parts...)
		out[i] = msg
	}
	return out
}

// ClearThreadMessages drops a thread's conversation history.
func (s *Session) ClearThreadMessages(threadID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, threadID)
}

// Status returns the lifecycle of the current thread.
func (s *Session) Status() Lifecycle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statusLocked(s.current)
}

// StatusFor returns the lifecycle of any thread.
func (s *Session) StatusFor(threadID string) Lifecycle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statusLocked(threadID)
}

// CurrentThread returns the thread messages and status are read for.
func (s *Session) CurrentThread() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetCurrentThread changes the current thread.
func (s *Session) SetCurrentThread(threadID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = threadID
}

func (s *Session) statusLocked(threadID string) Lifecycle {
	if status, ok := s.lifecycle[threadID]; ok {
		return status
	}
	return LifecycleReady
}

func (s *Session) assistantMessage(thread string) Message {
	return Message{ID: s.newID(), ThreadID: thread, Role: RoleAssistant}
}

// updatePart applies fn to the matching part of the thread's last assistant
// message. Parts are matched by id, or for id-less events by the last part of
// the same type; missing messages and parts are created so partial delivery
// still renders.
func (s *Session) updatePart(thread, partID, partType string, fn func(*Part)) {
	var fallback func(Part) bool
	if partID == "" {
		fallback = func(part Part) bool { return part.Type == partType }
	}
	s.updatePartMatching(thread, partID, partType, fallback, fn)
}

// awaitingOutput matches tool parts of the named tool that have no output yet.
func awaitingOutput(toolName string) func(Part) bool {
	return func(part Part) bool {
		if part.Type != PartToolCall || part.State == ToolOutputAvailable {
			return false
		}
		return toolName == "" || part.ToolName == "" || part.ToolName == toolName
	}
}

// updatePartMatching looks a part up by id first, then by fallback.
func (s *Session) updatePartMatching(thread, partID, partType string, fallback func(Part) bool, fn func(*Part)) {
	msgs := s.messages[thread]
	if len(msgs) == 0 || msgs[len(msgs)-1].Role != RoleAssistant {
		msgs = append(msgs, s.assistantMessage(thread))
	}
	msg := &msgs[len(msgs)-1]
	index := -1
	if partID != "" {
		for i := len(msg.Parts) - 1; i >= 0; i-- {
			if msg.Parts[i].ID == partID {
				index = i
				break
			}
		}
	}
	if index < 0 && fallback != nil {
		for i := len(msg.Parts) - 1; i >= 0; i-- {
			if fallback(msg.Parts[i]) {
				index = i
				break
			}
		}
	}
	if index < 0 {
		id := partID
		if id == "" {
			id = s.newID()
		}
		msg.Parts = append(msg.Parts, Part{ID: id, Type: partType})
		index = len(msg.Parts) - 1
	}
	fn(&msg.Parts[index])
	s.messages[thread] = msgs
}

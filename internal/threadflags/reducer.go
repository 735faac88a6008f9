package threadflags

import "insights/internal/agentevent"

// Reduce applies an agent event to the status map and returns the result.
// The prior map is never modified. Events that change nothing (unknown
// kinds, unaddressable events, unknown part types) return prior itself.
func Reduce(prior *Map, ev agentevent.Event) *Map {
	if prior == nil {
		prior = Empty()
	}
	if !agentevent.Addressable(ev) {
		return prior
	}
	threadID := ev.ThreadID()
	current := prior.Get(threadID)
	next, ok := applyEvent(current, ev)
	if !ok {
		return prior
	}
	return prior.with(threadID, next)
}

// applyEvent computes the next status for a thread. The bool result is false
// when the event does not affect thread status.
func applyEvent(status Status, ev agentevent.Event) (Status, bool) {
	switch typed := ev.(type) {
	case agentevent.RunStarted:
		return Status{NetworkActive: true}, true
	case agentevent.TextDelta:
		status.TextStreaming = true
		status.TextCompleted = false
		return status, true
	case agentevent.ToolCallArgumentsDelta:
		if typed.ToolName == "" {
			return status, false
		}
		status.CurrentToolName = typed.ToolName
		return status, true
	case agentevent.PartCompleted:
		switch typed.PartType {
		case agentevent.PartText:
			status.TextStreaming = false
			status.TextCompleted = true
		case agentevent.PartToolCall, agentevent.PartToolOutput:
			status.CurrentToolName = ""
		default:
			return status, false
		}
		return status, true
	case agentevent.StreamEnded:
		return Status{TextCompleted: true}, true
	default:
		return status, false
	}
}

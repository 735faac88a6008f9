package agentevent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Envelope is the transport framing around a single event.
type Envelope struct {
	Event          string          `json:"event"`
	Data           json.RawMessage `json:"data"`
	SequenceNumber int64           `json:"sequenceNumber,omitempty"`
}

// payload is the union of fields any modeled event may carry. ThreadID is
// kept raw so a non-string value can be treated as absent.
type payload struct {
	ThreadID     json.RawMessage `json:"threadId"`
	RunID        string          `json:"runId"`
	PartID       string          `json:"partId"`
	Delta        string          `json:"delta"`
	ToolName     string          `json:"toolName"`
	Type         string          `json:"type"`
	FinalContent json.RawMessage `json:"finalContent"`
}

// Decode parses one JSON envelope into an Event. Only a malformed envelope
// is an error; unknown kinds decode to Unrecognized and a missing or
// non-string thread id decodes to "".
func Decode(data []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}
	return FromEnvelope(env)
}

// FromEnvelope converts an already framed envelope into an Event.
func FromEnvelope(env Envelope) (Event, error) {
	name := strings.TrimSpace(env.Event)
	if name == "" {
		return nil, fmt.Errorf("decode event envelope: missing event kind")
	}
	var body payload
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &body); err != nil {
			// Fields of the wrong type are not fatal; only the thread id
			// matters for routing, so fall back to reading it alone.
			body = payload{ThreadID: rawField(env.Data, "threadId")}
		}
	}
	thread := threadID(body.ThreadID)

	switch Kind(name) {
	case KindRunStarted:
		return RunStarted{Thread: thread, RunID: body.RunID}, nil
	case KindTextDelta:
		return TextDelta{Thread: thread, PartID: body.PartID, Delta: body.Delta}, nil
	case KindToolCallArgumentsDelta:
		return ToolCallArgumentsDelta{
			Thread:   thread,
			PartID:   body.PartID,
			ToolName: body.ToolName,
			Delta:    body.Delta,
		}, nil
	case KindPartCompleted:
		return PartCompleted{
			Thread:       thread,
			PartID:       body.PartID,
			PartType:     PartType(body.Type),
			ToolName:     body.ToolName,
			FinalContent: body.FinalContent,
		}, nil
	case KindStreamEnded:
		return StreamEnded{Thread: thread}, nil
	default:
		return Unrecognized{Thread: thread, Name: name}, nil
	}
}

// Marshal frames an Event as a JSON envelope.
func Marshal(ev Event) ([]byte, error) {
	if ev == nil {
		return nil, fmt.Errorf("marshal event: nil event")
	}
	data := map[string]any{}
	if ev.ThreadID() != "" {
		data["threadId"] = ev.ThreadID()
	}
	switch typed := ev.(type) {
	case RunStarted:
		setIf(data, "runId", typed.RunID)
	case TextDelta:
		setIf(data, "partId", typed.PartID)
		data["delta"] = typed.Delta
	case ToolCallArgumentsDelta:
		setIf(data, "partId", typed.PartID)
		setIf(data, "toolName", typed.ToolName)
		data["delta"] = typed.Delta
	case PartCompleted:
		setIf(data, "partId", typed.PartID)
		data["type"] = string(typed.PartType)
		setIf(data, "toolName", typed.ToolName)
		if len(typed.FinalContent) > 0 {
			data["finalContent"] = typed.FinalContent
		}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal event data: %w", err)
	}
	out, err := json.Marshal(Envelope{Event: string(ev.Kind()), Data: raw})
	if err != nil {
		return nil, fmt.Errorf("marshal event envelope: %w", err)
	}
	return out, nil
}

// threadID returns the string value of a raw JSON thread id, or "".
func threadID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return ""
	}
	return value
}

// rawField extracts a single field from a JSON object.
func rawField(data json.RawMessage, name string) json.RawMessage {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	return fields[name]
}

func setIf(data map[string]any, key, value string) {
	if value != "" {
		data[key] = value
	}
}

package artifact

import (
	"encoding/json"
	"strings"
	"sync"

	"insights/internal/agentevent"
)

// DefaultGeneratorTool is the tool whose output carries generated SQL.
const DefaultGeneratorTool = "generate_sql"

// Artifact is the latest generated query for a thread.
type Artifact struct {
	ThreadID  string
	SQL       string
	Title     string
	Reasoning string
	// Version is the store version at which this artifact was recorded.
	Version int
}

// Store extracts generated SQL from completed tool output, keyed by thread.
type Store struct {
	mu       sync.RWMutex
	tool     string
	byThread map[string]Artifact
	version  int
}

// NewStore creates a Store for the given generator tool name; "" selects
// DefaultGeneratorTool.
func NewStore(tool string) *Store {
	tool = strings.TrimSpace(tool)
	if tool == "" {
		tool = DefaultGeneratorTool
	}
	return &Store{tool: tool, byThread: map[string]Artifact{}}
}

// toolOutput mirrors the envelope tool handlers return: {"data": {...}}.
type toolOutput struct {
	Data struct {
		SQL       json.RawMessage `json:"sql"`
		Title     json.RawMessage `json:"title"`
		Reasoning json.RawMessage `json:"reasoning"`
	} `json:"data"`
}

// OnEvent records generated SQL carried by a completed generator tool
// output and reports whether anything was stored. Every other event, and
// output without usable SQL, leaves the store and its version untouched.
func (s *Store) OnEvent(ev agentevent.Event) bool {
	part, ok := ev.(agentevent.PartCompleted)
	if !ok || !agentevent.Addressable(part) {
		return false
	}
	if part.PartType != agentevent.PartToolOutput || part.ToolName != s.tool {
		return false
	}
	artifact, ok := extract(part.FinalContent)
	if !ok {
		return false
	}
	artifact.ThreadID = part.Thread

	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	artifact.Version = s.version
	s.byThread[part.Thread] = artifact
	return true
}

// Latest returns the most recent SQL generated on a thread.
func (s *Store) Latest(threadID string) (string, bool) {
	artifact, ok := s.Artifact(threadID)
	if !ok {
		return "", false
	}
	return artifact.SQL, true
}

// Artifact returns the full artifact recorded for a thread.
func (s *Store) Artifact(threadID string) (Artifact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	artifact, ok := s.byThread[threadID]
	return artifact, ok
}

// Version returns the number of artifacts recorded so far.
func (s *Store) Version() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Tool returns the generator tool name the store reacts to.
func (s *Store) Tool() string {
	return s.tool
}

// extract decodes tool output and returns the trimmed SQL it carries.
func extract(content json.RawMessage) (Artifact, bool) {
	if len(content) == 0 {
		return Artifact{}, false
	}
	var output toolOutput
	if err := json.Unmarshal(content, &output); err != nil {
		return Artifact{}, false
	}
	sql := stringField(output.Data.SQL)
	if sql == "" {
		return Artifact{}, false
	}
	return Artifact{
		SQL:       sql,
		Title:     stringField(output.Data.Title),
		Reasoning: stringField(output.Data.Reasoning),
	}, true
}

// stringField returns the trimmed value of a raw JSON string, or "".
func stringField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}

package loading

import (
	"strings"

	"insights/internal/threadflags"
	"insights/internal/transport"
)

// Default phrases shown while the agent works.
const (
	PhraseThinking  = "Thinking..."
	PhraseAnalyzing = "Analyzing events..."
	PhraseWriting   = "Writing SQL..."
)

// DefaultPhrases maps known tool names to their progress phrase.
var DefaultPhrases = map[string]string{
	"select_events": PhraseAnalyzing,
	"generate_sql":  PhraseWriting,
}

// Resolve derives the progress message for a thread using DefaultPhrases.
func Resolve(status threadflags.Status, toolName string, lifecycle transport.Lifecycle) (string, bool) {
	return Resolver{}.Resolve(status, toolName, lifecycle)
}

// Resolver derives progress messages with optional per-tool overrides.
type Resolver struct {
	// Phrases overrides DefaultPhrases per tool name.
	Phrases map[string]string
	// Fallback replaces PhraseThinking when set.
	Fallback string
}

// Resolve returns the message to show, or false when no indicator is
// needed. Rules apply in order and the first match wins:
//  1. nothing in flight
//  2. text is streaming
//  3. text has completed
//  4. a tool is running: its phrase, or the fallback for unknown tools
//  5. otherwise the fallback
//
// The lifecycle status never overrides rule 1: a submitted turn without
// network activity on the thread shows nothing.
func (r Resolver) Resolve(status threadflags.Status, toolName string, lifecycle transport.Lifecycle) (string, bool) {
	if !status.NetworkActive {
		return "", false
	}
	if status.TextStreaming {
		return "", false
	}
	if status.TextCompleted {
		return "", false
	}
	if name := strings.TrimSpace(toolName); name != "" {
		return r.phraseFor(name), true
	}
	return r.fallback(), true
}

// ForStatus resolves using the status record's own current tool.
func (r Resolver) ForStatus(status threadflags.Status, lifecycle transport.Lifecycle) (string, bool) {
	return r.Resolve(status, status.CurrentToolName, lifecycle)
}

func (r Resolver) phraseFor(tool string) string {
	if phrase, ok := r.Phrases[tool]; ok && strings.TrimSpace(phrase) != "" {
		return phrase
	}
	if phrase, ok := DefaultPhrases[tool]; ok {
		return phrase
	}
	return r.fallback()
}

func (r Resolver) fallback() string {
	if strings.TrimSpace(r.Fallback) != "" {
		return r.Fallback
	}
	return PhraseThinking
}

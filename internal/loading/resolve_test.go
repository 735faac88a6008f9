package loading

import (
	"testing"

	"insights/internal/threadflags"
	"insights/internal/transport"
)

// TestResolveInactiveDominates verifies no message without network activity.
func TestResolveInactiveDominates(t *testing.T) {
	lifecycles := []transport.Lifecycle{
		transport.LifecycleReady,
		transport.LifecycleSubmitted,
		transport.LifecycleStreaming,
		transport.LifecycleError,
	}
	for _, streaming := range []bool{false, true} {
		for _, completed := range []bool{false, true} {
			for _, tool := range []string{"", "generate_sql", "mystery"} {
				for _, lifecycle := range lifecycles {
					status := threadflags.Status{TextStreaming: streaming, TextCompleted: completed, CurrentToolName: tool}
					if msg, ok := Resolve(status, tool, lifecycle); ok {
						t.Fatalf("expected no message for %+v/%s, got %q", status, lifecycle, msg)
					}
				}
			}
		}
	}
}

// TestResolvePrecedence verifies the rule order.
func TestResolvePrecedence(t *testing.T) {
	cases := []struct {
		name   string
		status threadflags.Status
		tool   string
		want   string
		ok     bool
	}{
		{"streaming hides tool", threadflags.Status{NetworkActive: true, TextStreaming: true}, "generate_sql", "", false},
		{"completed hides tool", threadflags.Status{NetworkActive: true, TextCompleted: true}, "generate_sql", "", false},
		{"analyzing", threadflags.Status{NetworkActive: true}, "select_events", PhraseAnalyzing, true},
		{"writing", threadflags.Status{NetworkActive: true}, "generate_sql", PhraseWriting, true},
		{"unknown tool", threadflags.Status{NetworkActive: true}, "lookup_docs", PhraseThinking, true},
		{"no tool", threadflags.Status{NetworkActive: true}, "", PhraseThinking, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Resolve(tc.status, tc.tool, transport.LifecycleStreaming)
			if got != tc.want || ok != tc.ok {
				t.Fatalf("expected (%q, %v), got (%q, %v)", tc.want, tc.ok, got, ok)
			}
		})
	}
}

// TestResolverOverrides verifies configured phrases replace defaults.
func TestResolverOverrides(t *testing.T) {
	resolver := Resolver{
		Phrases:  map[string]string{"generate_sql": "Drafting query...", "lookup_docs": "Reading docs..."},
		Fallback: "Working...",
	}
	active := threadflags.Status{NetworkActive: true}
	if got, _ := resolver.Resolve(active, "generate_sql", transport.LifecycleStreaming); got != "Drafting query..." {
		t.Fatalf("unexpected override %q", got)
	}
	if got, _ := resolver.Resolve(active, "select_events", transport.LifecycleStreaming); got != PhraseAnalyzing {
		t.Fatalf("expected default phrase, got %q", got)
	}
	if got, _ := resolver.Resolve(active, "other", transport.LifecycleStreaming); got != "Working..." {
		t.Fatalf("expected custom fallback, got %q", got)
	}
	active.CurrentToolName = "lookup_docs"
	if got, _ := resolver.ForStatus(active, transport.LifecycleStreaming); got != "Reading docs..." {
		t.Fatalf("expected status tool phrase, got %q", got)
	}
}

package threadflags

import (
	"math/rand"
	"testing"
	"time"

	"insights/internal/agentevent"
	"insights/internal/testutil"
)

// TestReduceGenerationFlow verifies the final status of a generate_sql turn.
func TestReduceGenerationFlow(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		state := Empty()
		state = Reduce(state, agentevent.RunStarted{Thread: "T1"})
		state = Reduce(state, agentevent.ToolCallArgumentsDelta{Thread: "T1", ToolName: "generate_sql"})
		if got := state.Get("T1").CurrentToolName; got != "generate_sql" {
			t.Fatalf("expected current tool generate_sql, got %q", got)
		}
		state = Reduce(state, toolOutput("T1", "generate_sql", `{"data":{"sql":"SELECT 1"}}`))
		state = Reduce(state, agentevent.StreamEnded{Thread: "T1"})

		want := Status{TextCompleted: true}
		if got := state.Get("T1"); got != want {
			t.Fatalf("expected %+v, got %+v", want, got)
		}
	})
}

// TestReduceTransitionTable verifies each row of the transition table.
func TestReduceTransitionTable(t *testing.T) {
	busy := Status{NetworkActive: true, TextStreaming: true, CurrentToolName: "select_events"}
	cases := []struct {
		name  string
		prior Status
		event agentevent.Event
		want  Status
	}{
		{"run started resets", Status{TextCompleted: true, CurrentToolName: "x"}, agentevent.RunStarted{Thread: "t"}, Status{NetworkActive: true}},
		{"text delta streams", Status{NetworkActive: true, TextCompleted: true}, agentevent.TextDelta{Thread: "t"}, Status{NetworkActive: true, TextStreaming: true}},
		{"tool delta names tool", Status{NetworkActive: true}, agentevent.ToolCallArgumentsDelta{Thread: "t", ToolName: "generate_sql"}, Status{NetworkActive: true, CurrentToolName: "generate_sql"}},
		{"empty tool delta keeps tool", busy, agentevent.ToolCallArgumentsDelta{Thread: "t"}, busy},
		{"text part completes", busy, agentevent.PartCompleted{Thread: "t", PartType: agentevent.PartText}, Status{NetworkActive: true, TextCompleted: true, CurrentToolName: "select_events"}},
		{"tool call clears tool", busy, agentevent.PartCompleted{Thread: "t", PartType: agentevent.PartToolCall}, Status{NetworkActive: true, TextStreaming: true}},
		{"tool output clears tool", busy, agentevent.PartCompleted{Thread: "t", PartType: agentevent.PartToolOutput}, Status{NetworkActive: true, TextStreaming: true}},
		{"stream ended", busy, agentevent.StreamEnded{Thread: "t"}, Status{TextCompleted: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prior := Empty().with("t", tc.prior)
			got := Reduce(prior, tc.event).Get("t")
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
			if prior.Get("t") != tc.prior {
				t.Fatalf("prior map was mutated")
			}
		})
	}
}

// TestReduceNoOpReturnsSameMap verifies ignored events return the prior map itself.
func TestReduceNoOpReturnsSameMap(t *testing.T) {
	prior := Reduce(Empty(), agentevent.RunStarted{Thread: "a"})
	ignored := []agentevent.Event{
		nil,
		agentevent.Unrecognized{Thread: "a", Name: "tool_call.output.delta"},
		agentevent.TextDelta{Thread: ""},
		agentevent.StreamEnded{},
		agentevent.PartCompleted{Thread: "a", PartType: "image"},
		agentevent.ToolCallArgumentsDelta{Thread: "a"},
	}
	for _, ev := range ignored {
		if got := Reduce(prior, ev); got != prior {
			t.Fatalf("expected same map for %#v", ev)
		}
	}
}

// TestReduceSharesUntouchedEntries verifies only the affected entry is replaced.
func TestReduceSharesUntouchedEntries(t *testing.T) {
	state := Reduce(Empty(), agentevent.RunStarted{Thread: "a"})
	state = Reduce(state, agentevent.RunStarted{Thread: "b"})
	before, _ := state.entry("a")
	next := Reduce(state, agentevent.TextDelta{Thread: "b"})
	after, _ := next.entry("a")
	if before != after {
		t.Fatalf("expected thread a entry to be shared")
	}
	oldB, _ := state.entry("b")
	newB, _ := next.entry("b")
	if oldB == newB {
		t.Fatalf("expected thread b entry to be replaced")
	}
	if state.Get("b").TextStreaming {
		t.Fatalf("prior map observed the update")
	}
}

// TestGetReturnsCopy verifies callers cannot change a returned map.
func TestGetReturnsCopy(t *testing.T) {
	state := Reduce(Empty(), agentevent.RunStarted{Thread: "a"})
	status := state.Get("a")
	status.NetworkActive = false
	status.CurrentToolName = "generate_sql"
	if got := state.Get("a"); !got.NetworkActive || got.CurrentToolName != "" {
		t.Fatalf("map changed through returned status: %+v", got)
	}
}

// TestReduceNilMap verifies a nil prior map is treated as empty.
func TestReduceNilMap(t *testing.T) {
	state := Reduce(nil, agentevent.RunStarted{Thread: "a"})
	if !state.Get("a").NetworkActive {
		t.Fatalf("expected network active")
	}
	if state.Len() != 1 {
		t.Fatalf("expected one thread, got %d", state.Len())
	}
}

// TestReduceNeverStreamingAndCompleted checks the exclusivity invariant over random sequences.
func TestReduceNeverStreamingAndCompleted(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 200; round++ {
		state := Empty()
		for step := 0; step < 40; step++ {
			state = Reduce(state, randomEvent(rng, "t"))
			status := state.Get("t")
			if status.TextStreaming && status.TextCompleted {
				t.Fatalf("round %d step %d: streaming and completed both set", round, step)
			}
		}
	}
}

// TestReduceThreadIsolation verifies interleaving does not change per-thread results.
func TestReduceThreadIsolation(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for round := 0; round < 100; round++ {
		var interleaved, onlyA, onlyB []agentevent.Event
		for step := 0; step < 30; step++ {
			thread := "A"
			if rng.Intn(2) == 0 {
				thread = "B"
			}
			ev := randomEvent(rng, thread)
			interleaved = append(interleaved, ev)
			if thread == "A" {
				onlyA = append(onlyA, ev)
			} else {
				onlyB = append(onlyB, ev)
			}
		}
		all := reduceAll(interleaved)
		if all.Get("A") != reduceAll(onlyA).Get("A") {
			t.Fatalf("round %d: thread A diverged", round)
		}
		if all.Get("B") != reduceAll(onlyB).Get("B") {
			t.Fatalf("round %d: thread B diverged", round)
		}
	}
}

// TestThreadsSorted verifies thread listing order.
func TestThreadsSorted(t *testing.T) {
	state := Empty()
	for _, id := range []string{"c", "a", "b"} {
		state = Reduce(state, agentevent.RunStarted{Thread: id})
	}
	got := state.Threads()
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("unexpected threads %v", got)
	}
}

func reduceAll(events []agentevent.Event) *Map {
	state := Empty()
	for _, ev := range events {
		state = Reduce(state, ev)
	}
	return state
}

// randomEvent draws an event of any kind, including malformed ones.
func randomEvent(rng *rand.Rand, thread string) agentevent.Event {
	tools := []string{"", "generate_sql", "select_events"}
	parts := []agentevent.PartType{agentevent.PartText, agentevent.PartToolCall, agentevent.PartToolOutput, "other"}
	switch rng.Intn(7) {
	case 0:
		return agentevent.RunStarted{Thread: thread}
	case 1:
		return agentevent.TextDelta{Thread: thread, Delta: "x"}
	case 2:
		return agentevent.ToolCallArgumentsDelta{Thread: thread, ToolName: tools[rng.Intn(len(tools))]}
	case 3:
		return agentevent.PartCompleted{Thread: thread, PartType: parts[rng.Intn(len(parts))]}
	case 4:
		return agentevent.StreamEnded{Thread: thread}
	case 5:
		return agentevent.Unrecognized{Thread: thread, Name: "noise"}
	default:
		return agentevent.TextDelta{Thread: ""}
	}
}

func toolOutput(thread, tool, content string) agentevent.PartCompleted {
	return agentevent.PartCompleted{
		Thread:       thread,
		PartType:     agentevent.PartToolOutput,
		ToolName:     tool,
		FinalContent: []byte(content),
	}
}

// runWithTimeout executes a test body with a timeout.
func runWithTimeout(t *testing.T, timeout time.Duration, fn func()) {
	t.Helper()
	ctx := testutil.Context(t, timeout)
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-ctx.Done():
		t.Fatalf("test timed out")
	}
}

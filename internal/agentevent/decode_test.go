package agentevent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

// TestDecodeKinds verifies each modeled kind decodes to its variant.
func TestDecodeKinds(t *testing.T) {
	cases := []struct {
		name string
		line string
		want Kind
	}{
		{"run", `{"event":"run.started","data":{"threadId":"t1","runId":"r1"}}`, KindRunStarted},
		{"text", `{"event":"text.delta","data":{"threadId":"t1","delta":"hi"}}`, KindTextDelta},
		{"tool", `{"event":"tool_call.arguments.delta","data":{"threadId":"t1","toolName":"generate_sql"}}`, KindToolCallArgumentsDelta},
		{"part", `{"event":"part.completed","data":{"threadId":"t1","type":"text"}}`, KindPartCompleted},
		{"end", `{"event":"stream.ended","data":{"threadId":"t1"}}`, KindStreamEnded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev, err := Decode([]byte(tc.line))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if ev.Kind() != tc.want {
				t.Fatalf("expected kind %s, got %s", tc.want, ev.Kind())
			}
			if ev.ThreadID() != "t1" {
				t.Fatalf("expected thread t1, got %q", ev.ThreadID())
			}
		})
	}
}

// TestDecodePartCompletedPayload verifies tool output fields are kept.
func TestDecodePartCompletedPayload(t *testing.T) {
	line := `{"event":"part.completed","data":{"threadId":"t1","partId":"p1","type":"tool-output","toolName":"generate_sql","finalContent":{"data":{"sql":"SELECT 1"}}}}`
	ev, err := Decode([]byte(line))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	part, ok := ev.(PartCompleted)
	if !ok {
		t.Fatalf("expected PartCompleted, got %T", ev)
	}
	if part.PartType != PartToolOutput || part.ToolName != "generate_sql" || part.PartID != "p1" {
		t.Fatalf("unexpected part fields: %+v", part)
	}
	if !strings.Contains(string(part.FinalContent), "SELECT 1") {
		t.Fatalf("expected final content to be preserved, got %s", part.FinalContent)
	}
}

// TestDecodeThreadIDFallbacks verifies unusable thread ids decode as empty.
func TestDecodeThreadIDFallbacks(t *testing.T) {
	lines := []string{
		`{"event":"text.delta","data":{"delta":"x"}}`,
		`{"event":"text.delta","data":{"threadId":42,"delta":"x"}}`,
		`{"event":"text.delta","data":{"threadId":null}}`,
		`{"event":"text.delta"}`,
		`{"event":"text.delta","data":{"threadId":""}}`,
	}
	for _, line := range lines {
		ev, err := Decode([]byte(line))
		if err != nil {
			t.Fatalf("decode %s: %v", line, err)
		}
		if Addressable(ev) {
			t.Fatalf("expected %s to be unaddressable, got thread %q", line, ev.ThreadID())
		}
	}
}

// TestDecodeKeepsThreadIDVerbatim verifies ids are not normalized, so
// " T1" and "T1" stay separate threads.
func TestDecodeKeepsThreadIDVerbatim(t *testing.T) {
	for _, id := range []string{" T1", "T1", "T1 ", "   "} {
		line := fmt.Sprintf(`{"event":"stream.ended","data":{"threadId":%q}}`, id)
		ev, err := Decode([]byte(line))
		if err != nil {
			t.Fatalf("decode %s: %v", line, err)
		}
		if ev.ThreadID() != id {
			t.Fatalf("expected thread %q, got %q", id, ev.ThreadID())
		}
	}
}

// TestDecodeWrongFieldTypeKeepsThread verifies bad payload fields do not lose routing.
func TestDecodeWrongFieldTypeKeepsThread(t *testing.T) {
	ev, err := Decode([]byte(`{"event":"text.delta","data":{"threadId":"t9","delta":7}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.ThreadID() != "t9" {
		t.Fatalf("expected thread t9, got %q", ev.ThreadID())
	}
}

// TestDecodeUnrecognized verifies unknown kinds are preserved as Unrecognized.
func TestDecodeUnrecognized(t *testing.T) {
	ev, err := Decode([]byte(`{"event":"tool_call.output.delta","data":{"threadId":"t1"}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	unknown, ok := ev.(Unrecognized)
	if !ok {
		t.Fatalf("expected Unrecognized, got %T", ev)
	}
	if unknown.Kind() != "tool_call.output.delta" {
		t.Fatalf("unexpected kind %s", unknown.Kind())
	}
}

// TestDecodeMalformed verifies broken envelopes are errors.
func TestDecodeMalformed(t *testing.T) {
	for _, line := range []string{`not json`, `{"data":{}}`} {
		if _, err := Decode([]byte(line)); err == nil {
			t.Fatalf("expected error for %q", line)
		}
	}
}

// TestMarshalRoundTrip verifies framed events decode back to the same variant.
func TestMarshalRoundTrip(t *testing.T) {
	original := PartCompleted{
		Thread:       "t1",
		PartID:       "p2",
		PartType:     PartToolOutput,
		ToolName:     "generate_sql",
		FinalContent: []byte(`{"data":{"sql":"SELECT 2"}}`),
	}
	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	ev, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, ok := ev.(PartCompleted)
	if !ok || got.Thread != "t1" || got.ToolName != "generate_sql" || got.PartType != PartToolOutput {
		t.Fatalf("unexpected round trip result: %#v", ev)
	}
}

// TestLogReaderReplay verifies the JSON-lines reader skips noise and ends with EOF.
func TestLogReaderReplay(t *testing.T) {
	log := strings.Join([]string{
		"# recorded session",
		`{"event":"run.started","data":{"threadId":"t1"}}`,
		"",
		`data: {"event":"stream.ended","data":{"threadId":"t1"}}`,
		"data: [DONE]",
	}, "\n")
	reader := NewLogReader(strings.NewReader(log))
	ctx := context.Background()
	var kinds []Kind
	for {
		ev, err := reader.Recv(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("recv: %v", err)
		}
		kinds = append(kinds, ev.Kind())
	}
	if len(kinds) != 2 || kinds[0] != KindRunStarted || kinds[1] != KindStreamEnded {
		t.Fatalf("unexpected kinds: %v", kinds)
	}
}

// TestLogReaderStrictAndLenient verifies bad lines fail strict and are skipped lenient.
func TestLogReaderStrictAndLenient(t *testing.T) {
	log := "garbage\n" + `{"event":"stream.ended","data":{"threadId":"t1"}}`
	strict := NewLogReader(strings.NewReader(log))
	if _, err := strict.Recv(context.Background()); err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Fatalf("expected line 1 error, got %v", err)
	}

	lenient := NewLogReader(strings.NewReader(log), Lenient())
	ev, err := lenient.Recv(context.Background())
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if ev.Kind() != KindStreamEnded {
		t.Fatalf("expected stream.ended, got %s", ev.Kind())
	}
	if lenient.Skipped() != 1 {
		t.Fatalf("expected 1 skipped line, got %d", lenient.Skipped())
	}
}

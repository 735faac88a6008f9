package agentevent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Stream delivers events in order. Recv returns io.EOF once the stream is
// exhausted.
type Stream interface {
	Recv(ctx context.Context) (Event, error)
}

// LogReader replays events from a JSON-lines log. SSE style "data:" prefixes
// are accepted, blank lines and "#" comments are skipped.
type LogReader struct {
	scanner *bufio.Scanner
	line    int
	lenient bool
	skipped int
}

// LogOption configures a LogReader.
type LogOption func(*LogReader)

// Lenient makes the reader skip undecodable lines instead of failing.
func Lenient() LogOption {
	return func(r *LogReader) { r.lenient = true }
}

// NewLogReader wraps a reader of JSON-lines events.
func NewLogReader(reader io.Reader, opts ...LogOption) *LogReader {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	r := &LogReader{scanner: scanner}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recv returns the next decoded event.
func (r *LogReader) Recv(ctx context.Context) (Event, error) {
	for {
		if ctx != nil {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				return nil, fmt.Errorf("read event log: %w", err)
			}
			return nil, io.EOF
		}
		r.line++
		line := strings.TrimSpace(r.scanner.Text())
		if strings.HasPrefix(line, "data:") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
		if line == "" || strings.HasPrefix(line, "#") || line == "[DONE]" {
			continue
		}
		ev, err := Decode([]byte(line))
		if err != nil {
			if r.lenient {
				r.skipped++
				continue
			}
			return nil, fmt.Errorf("event log line %d: %w", r.line, err)
		}
		return ev, nil
	}
}

// Skipped reports how many lines were dropped in lenient mode.
func (r *LogReader) Skipped() int {
	return r.skipped
}

// SliceStream exposes a fixed slice of events as a Stream.
type SliceStream struct {
	events []Event
	index  int
}

// NewSliceStream builds a stream over events.
func NewSliceStream(events ...Event) *SliceStream {
	return &SliceStream{events: events}
}

// Recv returns the next event or io.EOF when complete.
func (s *SliceStream) Recv(ctx context.Context) (Event, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	if s.index >= len(s.events) {
		return nil, io.EOF
	}
	ev := s.events[s.index]
	s.index++
	return ev, nil
}

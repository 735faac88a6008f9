package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"insights/internal/agentevent"
	"insights/internal/ui/live"
)

// plainObserver prints progress and generated SQL as lines, for non-TTY
// output.
type plainObserver struct {
	source  live.RowSource
	out     io.Writer
	verbose verboseLogger

	mu      sync.Mutex
	loading map[string]string
	version map[string]int
}

func newPlainObserver(source live.RowSource, out io.Writer, verbose verboseLogger) *plainObserver {
	return &plainObserver{
		source:  source,
		out:     out,
		verbose: verbose,
		loading: map[string]string{},
		version: map[string]int{},
	}
}

// OnEvent prints what changed on the event's thread.
func (p *plainObserver) OnEvent(ev agentevent.Event) {
	if ev == nil {
		return
	}
	if !agentevent.Addressable(ev) {
		p.verbose.log(styleError, "skipped %s event without thread", ev.Kind())
		return
	}
	row := live.RowFor(p.source, ev.ThreadID(), ev.Kind())
	p.verbose.log(styleThread, "%s %s (%s)", shortThread(row.ThreadID), ev.Kind(), row.Lifecycle)

	p.mu.Lock()
	defer p.mu.Unlock()
	if row.Loading != p.loading[row.ThreadID] {
		p.loading[row.ThreadID] = row.Loading
		if row.Loading != "" {
			fmt.Fprintf(p.out, "[%s] %s\n", shortThread(row.ThreadID), row.Loading)
			p.verbose.log(styleLoading, "%s loading %q", shortThread(row.ThreadID), row.Loading)
		}
	}
	if row.SQL != "" && row.Version != p.version[row.ThreadID] {
		p.version[row.ThreadID] = row.Version
		label := shortThread(row.ThreadID)
		if row.Title != "" {
			label += " " + row.Title
		}
		fmt.Fprintf(p.out, "[%s] SQL v%d:\n%s\n", label, row.Version, indent(row.SQL))
		p.verbose.log(styleSQL, "%s artifact v%d", shortThread(row.ThreadID), row.Version)
	}
}

func shortThread(threadID string) string {
	if len(threadID) <= 8 {
		return threadID
	}
	return threadID[:8]
}

func indent(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}

package live

import (
	"io"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"insights/internal/agentevent"
	"insights/internal/artifact"
	"insights/internal/transport"
)

// RowSource is the read side of the session facade the UI renders from.
type RowSource interface {
	LoadingMessage(threadID string) (string, bool)
	Artifact(threadID string) (artifact.Artifact, bool)
	StatusFor(threadID string) transport.Lifecycle
	TabForThread(threadID string) (string, bool)
}

// RowFor builds the current row for a thread after an event was applied.
func RowFor(source RowSource, threadID string, kind agentevent.Kind) ThreadRow {
	row := ThreadRow{
		ThreadID:  threadID,
		Lifecycle: source.StatusFor(threadID),
		LastKind:  kind,
		Events:    1,
	}
	if tab, ok := source.TabForThread(threadID); ok {
		row.TabID = tab
	}
	if message, ok := source.LoadingMessage(threadID); ok {
		row.Loading = message
	}
	if art, ok := source.Artifact(threadID); ok {
		row.SQL = art.SQL
		row.Title = art.Title
		row.Version = art.Version
	}
	return row
}

// Controller runs the live UI and observes applied agent events.
type Controller struct {
	source  RowSource
	events  chan Event
	program *tea.Program
	done    chan struct{}
	mu      sync.Mutex
	closed  bool
}

// Start launches a live UI controller that writes to stdout.
func Start(stdout io.Writer, source RowSource, opts Options) *Controller {
	if stdout == nil {
		stdout = os.Stdout
	}
	events := make(chan Event, 256)
	model := NewModel(events, opts)
	program := tea.NewProgram(model, tea.WithOutput(stdout), tea.WithAltScreen())
	controller := &Controller{
		source:  source,
		events:  events,
		program: program,
		done:    make(chan struct{}),
	}
	go func() {
		_, _ = program.Run()
		close(controller.done)
	}()
	controller.send(Event{Kind: EventSessionStart, Endpoint: opts.Endpoint})
	return controller
}

// Close signals the UI to stop.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
}

// Wait blocks until the UI has exited.
func (c *Controller) Wait() {
	if c == nil {
		return
	}
	<-c.done
}

// Done is closed once the UI has exited, including when the user quits.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// OnEvent forwards the affected thread's refreshed row to the UI.
func (c *Controller) OnEvent(ev agentevent.Event) {
	if c == nil || c.source == nil || !agentevent.Addressable(ev) {
		return
	}
	row := RowFor(c.source, ev.ThreadID(), ev.Kind())
	row.FirstSeenAt = time.Now()
	c.send(Event{Kind: EventThread, Row: row})
}

// Notice shows a footer message.
func (c *Controller) Notice(message string) {
	c.send(Event{Kind: EventNotice, Notice: message})
}

// Refresh re-reads a thread without an event, e.g. after a send.
func (c *Controller) Refresh(threadID string) {
	if c == nil || c.source == nil || threadID == "" {
		return
	}
	row := RowFor(c.source, threadID, "")
	row.Events = 0
	c.send(Event{Kind: EventThread, Row: row})
}

// End marks the stream as finished and closes the UI.
func (c *Controller) End() {
	c.send(Event{Kind: EventSessionEnd})
	c.Close()
}

// send enqueues an event without blocking the caller.
func (c *Controller) send(event Event) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.events <- event:
	default:
	}
}

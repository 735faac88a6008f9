package live

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model renders a live console UI using Bubble Tea.
type Model struct {
	state        State
	table        table.Model
	spinner      spinner.Model
	events       <-chan Event
	tickInterval time.Duration
	now          time.Time
	sqlWidth     int
	noColor      bool
}

// Options configures the live UI model.
type Options struct {
	NoColor      bool
	TickInterval time.Duration
	// Endpoint is shown in the header.
	Endpoint string
}

// NewModel constructs a live UI model for an event stream.
func NewModel(events <-chan Event, opts Options) Model {
	tickInterval := opts.TickInterval
	if tickInterval <= 0 {
		tickInterval = 200 * time.Millisecond
	}
	columns := defaultColumns()
	t := table.New(
		table.WithColumns(columns),
		table.WithRows([]table.Row{}),
		table.WithFocused(false),
	)
	t.SetStyles(tableStyles(opts.NoColor))
	spin := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	if !opts.NoColor {
		spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	}
	return Model{
		state:        State{Endpoint: opts.Endpoint},
		table:        t,
		spinner:      spin,
		events:       events,
		tickInterval: tickInterval,
		now:          time.Now(),
		sqlWidth:     columns[len(columns)-1].Width,
		noColor:      opts.NoColor,
	}
}

// Init starts ticking and waits for the first event.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), tick(m.tickInterval), m.spinner.Tick)
}

// Update consumes UI events, spinner frames and timer ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		columns := columnsForWidth(typed.Width)
		m.sqlWidth = columns[len(columns)-1].Width
		m.table.SetWidth(typed.Width)
		m.table.SetHeight(max(typed.Height-4, 1))
		m.table.SetColumns(columns)
		m = m.refresh()
		return m, nil
	case tea.KeyMsg:
		switch typed.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	case EventMsg:
		m = applyEvent(m, typed.Event)
		return m, waitForEvent(m.events)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(typed)
		m = m.refresh()
		return m, cmd
	case tickMsg:
		m.now = time.Time(typed)
		return m, tick(m.tickInterval)
	}
	return m, nil
}

// View renders the live UI.
func (m Model) View() string {
	header := renderHeader(m.state, m.now, m.noColor)
	summary := renderSummary(m.state, m.noColor)
	tableView := m.table.View()
	footer := renderFooter(m.state, m.noColor)
	return lipgloss.JoinVertical(lipgloss.Left, header, summary, tableView, footer)
}

// State returns the model's current UI state.
func (m Model) State() State {
	return m.state
}

// EventMsg wraps a UI event for Bubble Tea.
type EventMsg struct {
	Event Event
}

// tickMsg carries a clock tick for updates.
type tickMsg time.Time

// waitForEvent blocks until a UI event is available.
func waitForEvent(events <-chan Event) tea.Cmd {
	return func() tea.Msg {
		if events == nil {
			return nil
		}
		event, ok := <-events
		if !ok {
			return tea.Quit()
		}
		return EventMsg{Event: event}
	}
}

// tick emits a periodic tick message.
func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// refresh rebuilds table rows from state.
func (m Model) refresh() Model {
	m.table.SetRows(rowsForState(m.state, m.spinner.View(), m.sqlWidth, m.noColor))
	return m
}

// applyEvent mutates model state based on a UI event.
func applyEvent(model Model, event Event) Model {
	switch event.Kind {
	case EventSessionStart:
		if event.Endpoint != "" {
			model.state.Endpoint = event.Endpoint
		}
		if model.state.StartedAt.IsZero() {
			model.state.StartedAt = time.Now()
		}
	case EventThread:
		model.state = Reduce(model.state, event.Row)
	case EventNotice:
		model.state.LastEvent = event.Notice
	case EventSessionEnd:
		model.state.Ended = true
	}
	return model.refresh()
}

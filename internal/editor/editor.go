package editor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"insights/internal/artifact"
	"insights/internal/duckdb"
	"insights/internal/eventtypes"
	"insights/internal/snapshot"
)

// ErrUnknownTab is returned for tabs that were never opened.
var ErrUnknownTab = errors.New("editor: unknown tab")

// Runner executes a query on behalf of a tab.
type Runner interface {
	Run(ctx context.Context, query string) (duckdb.QueryResult, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, query string) (duckdb.QueryResult, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, query string) (duckdb.QueryResult, error) {
	return f(ctx, query)
}

// WarehouseRunner runs queries read-only against a DuckDB warehouse.
func WarehouseRunner(db *sql.DB, limit int) Runner {
	return RunnerFunc(func(ctx context.Context, query string) (duckdb.QueryResult, error) {
		return duckdb.Query(ctx, db, query, limit)
	})
}

// Tab is one query tab bound to an agent thread.
type Tab struct {
	ID       string
	ThreadID string
	Title    string
	Query    string
	// Result and Err describe the last run of Query.
	Result *duckdb.QueryResult
	Err    error
}

// Update describes what Sync did to the focused tab.
type Update struct {
	TabID    string
	Artifact artifact.Artifact
	Ran      bool
	Result   duckdb.QueryResult
}

// Option configures an Editor.
type Option func(*Editor)

// WithRunner sets the query runner used by Run and auto-run.
func WithRunner(runner Runner) Option {
	return func(e *Editor) { e.runner = runner }
}

// WithAutoRun runs inserted queries immediately when a runner is set.
func WithAutoRun(enabled bool) Option {
	return func(e *Editor) { e.autoRun = enabled }
}

// Editor holds query tabs and inserts generated SQL into the focused one.
// Artifacts for threads in background tabs are held back until their tab
// gains focus.
type Editor struct {
	source   artifact.Source
	follower *artifact.Follower
	runner   Runner
	autoRun  bool

	mu      sync.Mutex
	tabs    map[string]*Tab
	order   []string
	focused string
	dirty   bool
}

// New creates an editor following the given artifact source.
func New(source artifact.Source, opts ...Option) *Editor {
	e := &Editor{
		source:   source,
		follower: artifact.NewFollower(),
		tabs:     map[string]*Tab{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open registers a tab for a thread. Reopening a tab updates its title.
func (e *Editor) Open(tabID, threadID, title string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if tab, ok := e.tabs[tabID]; ok {
		if title != "" {
			tab.Title = title
		}
		return
	}
	e.tabs[tabID] = &Tab{ID: tabID, ThreadID: threadID, Title: title}
	e.order = append(e.order, tabID)
}

// Focus selects the tab that receives generated SQL.
func (e *Editor) Focus(tabID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.tabs[tabID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTab, tabID)
	}
	if e.focused != tabID {
		e.focused = tabID
		e.dirty = true
	}
	return nil
}

// Focused returns the focused tab id.
func (e *Editor) Focused() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.focused
}

// SetQuery replaces a tab's query text, as a user edit would.
func (e *Editor) SetQuery(tabID, query string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	tab, ok := e.tabs[tabID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTab, tabID)
	}
	tab.Query = query
	return nil
}

// Tab returns a copy of a tab.
func (e *Editor) Tab(tabID string) (Tab, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	tab, ok := e.tabs[tabID]
	if !ok {
		return Tab{}, false
	}
	return *tab, true
}

// Tabs returns copies of every tab in open order.
func (e *Editor) Tabs() []Tab {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Tab, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, *e.tabs[id])
	}
	return out
}

// Sync inserts the focused thread's newest artifact into its tab and, with
// auto-run on, runs it. It reports false when nothing new was inserted. A
// failed run is recorded on the tab and returned.
func (e *Editor) Sync(ctx context.Context) (Update, bool, error) {
	e.mu.Lock()
	tab, ok := e.tabs[e.focused]
	if !ok || (!e.dirty && !e.follower.Changed(e.source)) {
		e.mu.Unlock()
		return Update{}, false, nil
	}
	e.dirty = false
	art, ok := e.follower.Next(e.source, tab.ThreadID)
	if !ok {
		e.mu.Unlock()
		return Update{}, false, nil
	}
	tab.Query = art.SQL
	if strings.TrimSpace(tab.Title) == "" && art.Title != "" {
		tab.Title = art.Title
	}
	tabID := tab.ID
	run := e.autoRun && e.runner != nil
	e.mu.Unlock()

	update := Update{TabID: tabID, Artifact: art}
	if !run {
		return update, true, nil
	}
	result, err := e.Run(ctx, tabID)
	if err != nil {
		return update, true, err
	}
	update.Ran = true
	update.Result = result
	return update, true, nil
}

// Run executes a tab's current query and records the outcome on the tab.
func (e *Editor) Run(ctx context.Context, tabID string) (duckdb.QueryResult, error) {
	e.mu.Lock()
	tab, ok := e.tabs[tabID]
	if !ok {
		e.mu.Unlock()
		return duckdb.QueryResult{}, fmt.Errorf("%w: %s", ErrUnknownTab, tabID)
	}
	query := tab.Query
	runner := e.runner
	e.mu.Unlock()
	if runner == nil {
		return duckdb.QueryResult{}, errors.New("editor: no query runner")
	}

	result, err := runner.Run(ctx, query)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		tab.Result = nil
		tab.Err = err
		return duckdb.QueryResult{}, fmt.Errorf("run tab %s: %w", tabID, err)
	}
	tab.Result = &result
	tab.Err = nil
	return result, nil
}

// Capture builds the client state a send from this tab should carry.
func (e *Editor) Capture(tabID string, catalog eventtypes.Catalog, now time.Time) (snapshot.ClientState, error) {
	tab, ok := e.Tab(tabID)
	if !ok {
		return snapshot.ClientState{}, fmt.Errorf("%w: %s", ErrUnknownTab, tabID)
	}
	return snapshot.Capture(tab.Title, tab.Query, catalog, now), nil
}

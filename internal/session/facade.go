package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"insights/internal/agentevent"
	"insights/internal/artifact"
	"insights/internal/eventtypes"
	"insights/internal/loading"
	"insights/internal/snapshot"
	"insights/internal/tabbridge"
	"insights/internal/threadflags"
	"insights/internal/transport"
)

// ErrNoTransport is returned by New when no transport is supplied.
var ErrNoTransport = errors.New("session: transport is nil")

// Transport is the layer that talks to the agent backend and owns messages,
// lifecycle status and the current thread.
type Transport interface {
	Send(ctx context.Context, req transport.SendRequest) error
	Observe(ev agentevent.Event)
	Messages(threadID string) []transport.Message
	Status() transport.Lifecycle
	StatusFor(threadID string) transport.Lifecycle
	CurrentThread() string
	SetCurrentThread(threadID string)
	ClearThreadMessages(threadID string)
}

// Facade is the single surface UI code consumes. It owns the per-thread
// status map, the artifact store, the client state snapshots, the active
// send marker and the tab bridge.
type Facade struct {
	transport     Transport
	generatorTool string
	catalog       *eventtypes.Cache
	resolver      loading.Resolver
	now           func() time.Time
	observers     []Observer
	tabThreads    *tabbridge.Threads

	mu        sync.Mutex
	flags     *threadflags.Map
	artifacts *artifact.Store
	snapshots *snapshot.Store[snapshot.ClientState]
	marker    Marker
	bridge    *tabbridge.Bridge
}

// New wires a facade around a transport.
func New(t Transport, opts ...Option) (*Facade, error) {
	if t == nil {
		return nil, ErrNoTransport
	}
	f := &Facade{
		transport: t,
		catalog:   eventtypes.NewCache(nil),
		now:       time.Now,
		flags:     threadflags.Empty(),
		snapshots: snapshot.NewStore[snapshot.ClientState](),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.artifacts = artifact.NewStore(f.generatorTool)
	if f.tabThreads == nil {
		f.tabThreads = tabbridge.NewThreads()
	}
	f.bridge = tabbridge.NewBridge(f.tabThreads, t)
	return f, nil
}

// HandleEvent applies one event to every per-thread view. Events are
// applied in call order; unaddressable or unknown events change nothing.
func (f *Facade) HandleEvent(ev agentevent.Event) {
	if ev == nil {
		return
	}
	f.mu.Lock()
	f.flags = threadflags.Reduce(f.flags, ev)
	f.artifacts.OnEvent(ev)
	f.transport.Observe(ev)
	f.mu.Unlock()

	for _, observer := range f.observers {
		observer.OnEvent(ev)
	}
}

// Run feeds every event from the stream into HandleEvent until the stream
// ends (nil) or fails.
func (f *Facade) Run(ctx context.Context, stream agentevent.Stream) error {
	if stream == nil {
		return errors.New("session: stream is nil")
	}
	for {
		ev, err := stream.Recv(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return err
			}
			return fmt.Errorf("receive event: %w", err)
		}
		f.HandleEvent(ev)
	}
}

// Send delivers a user message on a thread together with the client state
// captured for it, or the default state when none was captured. The active
// send marker names the thread for the duration of the call. Transport
// errors are returned unchanged.
func (f *Facade) Send(ctx context.Context, threadID, content string) error {
	if threadID == "" {
		return transport.ErrNoThread
	}
	release := f.marker.Engage(threadID)
	defer release()

	state := f.stateFor(ctx, threadID)
	return f.transport.Send(ctx, transport.SendRequest{
		ThreadID: threadID,
		Message:  content,
		State:    state,
	})
}

// SendingState returns the state for whichever thread the marker currently
// names, falling back to the default state. It serves transports that pull
// client state while a send is in flight.
func (f *Facade) SendingState(ctx context.Context) snapshot.ClientState {
	if threadID, ok := f.marker.Current(); ok {
		if state, ok := f.snapshots.Get(threadID); ok {
			return state
		}
	}
	return f.defaultState(ctx)
}

// Sending returns the thread whose send is in flight, if any.
func (f *Facade) Sending() (string, bool) {
	return f.marker.Current()
}

// SetClientStateSnapshot captures the state to send with a thread's next
// message, replacing any earlier capture.
func (f *Facade) SetClientStateSnapshot(threadID string, state snapshot.ClientState) {
	if threadID == "" {
		return
	}
	f.snapshots.Set(threadID, state)
}

// ClientStateSnapshot returns the captured state for a thread.
func (f *Facade) ClientStateSnapshot(threadID string) (snapshot.ClientState, bool) {
	return f.snapshots.Get(threadID)
}

// ThreadFlags returns the status flags for a thread.
func (f *Facade) ThreadFlags(threadID string) threadflags.Status {
	return f.Flags().Get(threadID)
}

// Flags returns the current immutable status map.
func (f *Facade) Flags() *threadflags.Map {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flags
}

// Threads lists every thread that has produced an event.
func (f *Facade) Threads() []string {
	return f.Flags().Threads()
}

// LoadingMessage returns the progress message for a thread.
func (f *Facade) LoadingMessage(threadID string) (string, bool) {
	status := f.ThreadFlags(threadID)
	return f.resolver.ForStatus(status, f.transport.StatusFor(threadID))
}

// LatestArtifact returns the latest generated SQL for a thread.
func (f *Facade) LatestArtifact(threadID string) (string, bool) {
	return f.artifacts.Latest(threadID)
}

// Artifact returns the latest artifact with title and reasoning.
func (f *Facade) Artifact(threadID string) (artifact.Artifact, bool) {
	return f.artifacts.Artifact(threadID)
}

// ArtifactVersion returns the artifact store's version counter.
func (f *Facade) ArtifactVersion() int {
	return f.artifacts.Version()
}

// Artifacts exposes the artifact store for followers.
func (f *Facade) Artifacts() artifact.Source {
	return f.artifacts
}

// FocusTab makes the tab's thread current on the transport.
func (f *Facade) FocusTab(tabID string) (string, bool) {
	return f.bridge.Sync(tabID)
}

// ThreadForTab returns the stable thread id for a tab.
func (f *Facade) ThreadForTab(tabID string) string {
	return f.tabThreads.ThreadFor(tabID)
}

// TabForThread returns the tab that owns a thread.
func (f *Facade) TabForThread(threadID string) (string, bool) {
	return f.tabThreads.TabFor(threadID)
}

// Messages returns the transport's messages for a thread.
func (f *Facade) Messages(threadID string) []transport.Message {
	return f.transport.Messages(threadID)
}

// Status returns the lifecycle of the transport's current thread.
func (f *Facade) Status() transport.Lifecycle {
	return f.transport.Status()
}

// StatusFor returns the lifecycle of a specific thread.
func (f *Facade) StatusFor(threadID string) transport.Lifecycle {
	return f.transport.StatusFor(threadID)
}

// CurrentThread returns the transport's current thread.
func (f *Facade) CurrentThread() string {
	return f.transport.CurrentThread()
}

// ClearThreadMessages drops a thread's messages on the transport.
func (f *Facade) ClearThreadMessages(threadID string) {
	f.transport.ClearThreadMessages(threadID)
}

// EventTypes returns the cached event catalog.
func (f *Facade) EventTypes(ctx context.Context) (eventtypes.Catalog, error) {
	return f.catalog.Catalog(ctx)
}

// Now returns the facade clock's time.
func (f *Facade) Now() time.Time {
	return f.now()
}

func (f *Facade) stateFor(ctx context.Context, threadID string) snapshot.ClientState {
	if state, ok := f.snapshots.Get(threadID); ok {
		return state
	}
	return f.defaultState(ctx)
}

// defaultState builds the fallback state; catalog errors degrade to an
// empty catalog so a send never fails for lack of metadata.
func (f *Facade) defaultState(ctx context.Context) snapshot.ClientState {
	catalog, err := f.catalog.Catalog(ctx)
	if err != nil {
		catalog = eventtypes.Catalog{}
	}
	return snapshot.Default(catalog, f.now())
}

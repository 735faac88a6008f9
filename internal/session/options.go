package session

import (
	"time"

	"insights/internal/agentevent"
	"insights/internal/eventtypes"
	"insights/internal/loading"
	"insights/internal/tabbridge"
)

// Observer is notified after the facade has applied an event.
type Observer interface {
	OnEvent(ev agentevent.Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev agentevent.Event)

// OnEvent calls f.
func (f ObserverFunc) OnEvent(ev agentevent.Event) {
	f(ev)
}

// Option configures a Facade.
type Option func(*Facade)

// WithGeneratorTool sets the tool whose output carries generated SQL.
func WithGeneratorTool(name string) Option {
	return func(f *Facade) { f.generatorTool = name }
}

// WithEventTypes sets the provider for the default client state catalog.
func WithEventTypes(provider eventtypes.Provider) Option {
	return func(f *Facade) { f.catalog = eventtypes.NewCache(provider) }
}

// WithClock replaces time.Now for client state timestamps.
func WithClock(now func() time.Time) Option {
	return func(f *Facade) {
		if now != nil {
			f.now = now
		}
	}
}

// WithObserver registers an observer for applied events.
func WithObserver(observer Observer) Option {
	return func(f *Facade) {
		if observer != nil {
			f.observers = append(f.observers, observer)
		}
	}
}

// WithResolver sets the loading message resolver.
func WithResolver(resolver loading.Resolver) Option {
	return func(f *Facade) { f.resolver = resolver }
}

// WithTabThreads shares an existing tab to thread mapping.
func WithTabThreads(threads *tabbridge.Threads) Option {
	return func(f *Facade) {
		if threads != nil {
			f.tabThreads = threads
		}
	}
}

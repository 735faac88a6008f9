package threadflags

import "sort"

// Status captures the UI-facing progress flags for one thread.
type Status struct {
	NetworkActive bool
	TextStreaming bool
	TextCompleted bool
	// CurrentToolName is the tool being invoked, or "" when none.
	CurrentToolName string
}

// Map holds one Status per thread. A Map is never modified after it is
// returned from Reduce; entries that a reduction does not touch are shared
// by pointer with the prior Map.
type Map struct {
	entries map[string]*Status
}

// Empty returns a Map with no threads.
func Empty() *Map {
	return &Map{entries: map[string]*Status{}}
}

// Get returns the status for a thread, or the zero Status when the thread
// has not produced an event yet.
func (m *Map) Get(threadID string) Status {
	if m == nil {
		return Status{}
	}
	if entry, ok := m.entries[threadID]; ok {
		return *entry
	}
	return Status{}
}

// entry returns the shared entry pointer for a thread.
func (m *Map) entry(threadID string) (*Status, bool) {
	if m == nil {
		return nil, false
	}
	entry, ok := m.entries[threadID]
	return entry, ok
}

// Len reports the number of tracked threads.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Threads returns the tracked thread ids in sorted order.
func (m *Map) Threads() []string {
	if m == nil {
		return nil
	}
	ids := make([]string, 0, len(m.entries))
	for id := range m.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// with returns a copy of the map with one entry replaced.
func (m *Map) with(threadID string, status Status) *Map {
	size := 1
	if m != nil {
		size += len(m.entries)
	}
	entries := make(map[string]*Status, size)
	if m != nil {
		for id, entry := range m.entries {
			entries[id] = entry
		}
	}
	entries[threadID] = &status
	return &Map{entries: entries}
}

package session

import "sync"

// Marker names the thread whose send is in flight. It is a single slot:
// each Engage replaces the previous holder, and a release only clears the
// slot if no later send has engaged it since.
type Marker struct {
	mu         sync.Mutex
	thread     string
	active     bool
	generation uint64
}

// Engage marks threadID as sending and returns the release function. The
// release is safe to call more than once.
func (m *Marker) Engage(threadID string) func() {
	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.thread = threadID
	m.active = true
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if m.generation == gen {
				m.thread = ""
				m.active = false
			}
		})
	}
}

// Current returns the thread being sent, if any.
func (m *Marker) Current() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.thread, m.active
}

package tabbridge

import (
	"sync"

	"github.com/google/uuid"
)

// Threads assigns each UI tab a stable agent thread id. An assignment is
// made the first time a tab is asked about and never changes afterwards.
type Threads struct {
	mu    sync.Mutex
	byTab map[string]string
	newID func() string
}

// NewThreads creates an empty mapping that mints uuid thread ids.
func NewThreads() *Threads {
	return NewThreadsWithIDs(uuid.NewString)
}

// NewThreadsWithIDs creates a mapping with a custom id generator.
func NewThreadsWithIDs(newID func() string) *Threads {
	if newID == nil {
		newID = uuid.NewString
	}
	return &Threads{byTab: map[string]string{}, newID: newID}
}

// ThreadFor returns the tab's thread id, creating it on first use.
func (t *Threads) ThreadFor(tabID string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.byTab[tabID]; ok {
		return existing
	}
	id := t.newID()
	t.byTab[tabID] = id
	return id
}

// Lookup returns the tab's thread id without creating one.
func (t *Threads) Lookup(tabID string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.byTab[tabID]
	return id, ok
}

// TabFor returns the tab that owns a thread id.
func (t *Threads) TabFor(threadID string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for tab, id := range t.byTab {
		if id == threadID {
			return tab, true
		}
	}
	return "", false
}

// CurrentThreadTarget is the side that tracks which thread is current.
type CurrentThreadTarget interface {
	CurrentThread() string
	SetCurrentThread(threadID string)
}

// Bridge keeps the target's current thread in step with the focused tab.
type Bridge struct {
	threads *Threads
	target  CurrentThreadTarget
}

// NewBridge connects a tab mapping to a current-thread target.
func NewBridge(threads *Threads, target CurrentThreadTarget) *Bridge {
	if threads == nil {
		threads = NewThreads()
	}
	return &Bridge{threads: threads, target: target}
}

// Sync focuses the tab's thread on the target. It reports the thread id and
// whether the target had to change.
func (b *Bridge) Sync(tabID string) (string, bool) {
	threadID := b.threads.ThreadFor(tabID)
	if b.target == nil || b.target.CurrentThread() == threadID {
		return threadID, false
	}
	b.target.SetCurrentThread(threadID)
	return threadID, true
}

// Threads exposes the bridge's tab mapping.
func (b *Bridge) Threads() *Threads {
	return b.threads
}

package artifact

import "sync"

// Source is the read side of a Store.
type Source interface {
	Artifact(threadID string) (Artifact, bool)
	Version() int
}

// Follower delivers each stored artifact to a consumer exactly once per
// thread. Consumers poll it whenever the store version advances; artifacts
// for threads the consumer is not looking at stay pending until asked for.
type Follower struct {
	mu          sync.Mutex
	delivered   map[string]int
	seenVersion int
}

// NewFollower creates a Follower that has delivered nothing yet.
func NewFollower() *Follower {
	return &Follower{delivered: map[string]int{}}
}

// Next returns the thread's artifact if it is newer than the last one
// delivered for that thread.
func (f *Follower) Next(source Source, threadID string) (Artifact, bool) {
	if source == nil || threadID == "" {
		return Artifact{}, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seenVersion = source.Version()
	artifact, ok := source.Artifact(threadID)
	if !ok || artifact.Version <= f.delivered[threadID] {
		return Artifact{}, false
	}
	f.delivered[threadID] = artifact.Version
	return artifact, true
}

// Changed reports whether the store version moved since the last Next call.
func (f *Follower) Changed(source Source) bool {
	if source == nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return source.Version() != f.seenVersion
}

// Skip marks the thread's current artifact as delivered without returning
// it, so only later updates are reported.
func (f *Follower) Skip(source Source, threadID string) {
	if source == nil || threadID == "" {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if artifact, ok := source.Artifact(threadID); ok {
		f.delivered[threadID] = artifact.Version
	}
}

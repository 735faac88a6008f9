package transport

import (
	"context"
	"sync"
)

// Recorder is a Sender that keeps every request it is given. It backs
// offline replays and tests.
type Recorder struct {
	mu       sync.Mutex
	requests []SendRequest
	// Err, when set, is returned from every Send after recording.
	Err error
}

// Send records the request.
func (r *Recorder) Send(ctx context.Context, req SendRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	return r.Err
}

// Requests returns a copy of the recorded requests.
func (r *Recorder) Requests() []SendRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SendRequest, len(r.requests))
	copy(out, r.requests)
	return out
}

package testutil

import (
	"context"
	"testing"
	"time"
)

// DefaultTimeout bounds unit tests that block on channels or streams.
const DefaultTimeout = 5 * time.Second

// deadliner is implemented by *testing.T but not by testing.TB.
type deadliner interface {
	Deadline() (time.Time, bool)
}

// Context returns a context that ends after timeout, or a second before the
// test deadline when that comes first. It is cancelled on cleanup.
func Context(t testing.TB, timeout time.Duration) context.Context {
	t.Helper()
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if d, ok := t.(deadliner); ok {
		if deadline, ok := d.Deadline(); ok {
			if remaining := time.Until(deadline) - time.Second; remaining > 0 && remaining < timeout {
				timeout = remaining
			}
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// Eventually polls cond until it holds, failing the test with msg once
// timeout elapses. Polling runs fifty times per timeout window.
func Eventually(t testing.TB, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ticker := time.NewTicker(timeout / 50)
	defer ticker.Stop()
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		if cond() {
			return
		}
		select {
		case <-deadline.C:
			if msg == "" {
				msg = "condition not met before timeout"
			}
			t.Fatalf("%s", msg)
		case <-ticker.C:
		}
	}
}

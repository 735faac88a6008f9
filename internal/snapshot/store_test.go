package snapshot

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"insights/internal/eventtypes"
)

// TestStoreOverwrites verifies Set replaces rather than merges.
func TestStoreOverwrites(t *testing.T) {
	store := NewStore[ClientState]()
	store.Set("t1", ClientState{SQLQuery: "SELECT 1", TabTitle: "first"})
	store.Set("t1", ClientState{SQLQuery: "SELECT 2"})
	got, ok := store.Get("t1")
	if !ok {
		t.Fatalf("expected snapshot")
	}
	if got.SQLQuery != "SELECT 2" || got.TabTitle != "" {
		t.Fatalf("expected overwrite, got %+v", got)
	}
	if _, ok := store.Get("t2"); ok {
		t.Fatalf("expected no snapshot for t2")
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", store.Len())
	}
}

// TestStoreReadsDoNotClear verifies the last snapshot stays available.
func TestStoreReadsDoNotClear(t *testing.T) {
	store := NewStore[string]()
	store.Set("t1", "ctx")
	for i := 0; i < 3; i++ {
		if got, ok := store.Get("t1"); !ok || got != "ctx" {
			t.Fatalf("read %d: expected ctx, got %q", i, got)
		}
	}
}

// TestStoreConcurrentAccess exercises the store from many goroutines.
func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore[int]()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			thread := string(rune('a' + n%4))
			store.Set(thread, n)
			store.Get(thread)
		}(i)
	}
	wg.Wait()
	if store.Len() != 4 {
		t.Fatalf("expected 4 threads, got %d", store.Len())
	}
}

// TestDefaultState verifies the fallback context shape.
func TestDefaultState(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	state := Default(eventtypes.Catalog{}, now)
	if state.Mode != ModePlayground || state.Timestamp != 1700000000000 {
		t.Fatalf("unexpected default state %+v", state)
	}
	if state.EventTypes == nil || len(state.EventTypes) != 0 {
		t.Fatalf("expected empty, non-nil event types")
	}
	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"schemas":null`) || !strings.Contains(string(data), `"eventTypes":[]`) {
		t.Fatalf("unexpected encoding %s", data)
	}
}

// TestCaptureState verifies tab context is folded into the snapshot.
func TestCaptureState(t *testing.T) {
	catalog := eventtypes.Catalog{
		Names:   []string{"app/user.created"},
		Schemas: map[string]string{"app/user.created": `{"user_id":"String"}`},
	}
	state := Capture("Signups", "SELECT count(*) FROM events", catalog, time.Now())
	if state.TabTitle != "Signups" || state.SQLQuery != state.CurrentQuery {
		t.Fatalf("unexpected capture %+v", state)
	}
	if len(state.EventTypes) != 1 || state.Schemas["app/user.created"] == "" {
		t.Fatalf("expected catalog to be carried, got %+v", state)
	}
}

package eventtypes

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
)

// fakeSource serves numbered event types in pages.
type fakeSource struct {
	total int
	calls int
	err   error
}

func (s *fakeSource) ListEventTypes(ctx context.Context, cursor string, limit int) (Page, error) {
	s.calls++
	if s.err != nil {
		return Page{}, s.err
	}
	start := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return Page{}, err
		}
		start = n
	}
	var page Page
	for i := start; i < s.total && i < start+limit; i++ {
		page.Items = append(page.Items, EventType{Name: fmt.Sprintf("evt.%03d", i)})
	}
	if next := start + limit; next < s.total {
		page.NextCursor = strconv.Itoa(next)
	}
	return page, nil
}

// TestPagerStopsAtMaxPages verifies the page cap.
func TestPagerStopsAtMaxPages(t *testing.T) {
	source := &fakeSource{total: 500}
	types, err := Pager{Source: source}.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(types) != DefaultPageSize*DefaultMaxPages {
		t.Fatalf("expected %d types, got %d", DefaultPageSize*DefaultMaxPages, len(types))
	}
	if source.calls != DefaultMaxPages {
		t.Fatalf("expected %d calls, got %d", DefaultMaxPages, source.calls)
	}
}

// TestPagerStopsAtLastPage verifies short listings end early.
func TestPagerStopsAtLastPage(t *testing.T) {
	source := &fakeSource{total: 45}
	types, err := Pager{Source: source, PageSize: 20, MaxPages: 10}.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(types) != 45 || source.calls != 3 {
		t.Fatalf("expected 45 types in 3 calls, got %d in %d", len(types), source.calls)
	}
}

// TestPagerWrapsErrors verifies source failures are wrapped.
func TestPagerWrapsErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := Pager{Source: &fakeSource{err: boom}}.FetchAll(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
}

// TestBuildCatalogSkipsBlankSchemas verifies schema map construction.
func TestBuildCatalogSkipsBlankSchemas(t *testing.T) {
	catalog := BuildCatalog([]EventType{
		{Name: "a", LatestSchema: "  {\"x\":1}  "},
		{Name: "b", LatestSchema: "   "},
	})
	if len(catalog.Names) != 2 {
		t.Fatalf("expected both names, got %v", catalog.Names)
	}
	if len(catalog.Schemas) != 1 || catalog.Schemas["a"] != `{"x":1}` {
		t.Fatalf("unexpected schemas %v", catalog.Schemas)
	}
	if BuildCatalog([]EventType{{Name: "c"}}).Schemas != nil {
		t.Fatalf("expected nil schema map when none are known")
	}
}

// TestCacheFetchesOnce verifies successful catalogs are memoized.
func TestCacheFetchesOnce(t *testing.T) {
	calls := 0
	cache := NewCache(ProviderFunc(func(ctx context.Context) ([]EventType, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("transient")
		}
		return []EventType{{Name: "a"}}, nil
	}))
	if _, err := cache.Catalog(context.Background()); err == nil {
		t.Fatalf("expected first fetch to fail")
	}
	for i := 0; i < 3; i++ {
		catalog, err := cache.Catalog(context.Background())
		if err != nil || len(catalog.Names) != 1 {
			t.Fatalf("unexpected catalog %+v (%v)", catalog, err)
		}
	}
	if calls != 2 {
		t.Fatalf("expected 2 provider calls, got %d", calls)
	}
	cache.Invalidate()
	if _, err := cache.Catalog(context.Background()); err != nil || calls != 3 {
		t.Fatalf("expected refetch after invalidate, calls=%d err=%v", calls, err)
	}
}

// TestNilCache verifies a missing provider yields an empty catalog.
func TestNilCache(t *testing.T) {
	catalog, err := NewCache(nil).Catalog(context.Background())
	if err != nil || len(catalog.Names) != 0 {
		t.Fatalf("unexpected %+v %v", catalog, err)
	}
}

package eventtypes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Default paging limits for fetching the event catalog.
const (
	DefaultPageSize = 40
	DefaultMaxPages = 5
)

// EventType is one known event name and its latest JSON schema.
type EventType struct {
	Name         string `json:"name" yaml:"name"`
	LatestSchema string `json:"latestSchema" yaml:"schema"`
}

// Catalog is the event metadata carried in client state.
type Catalog struct {
	Names []string
	// Schemas maps event names to schemas; nil when nothing is known.
	Schemas map[string]string
}

// Provider returns every event type available to the workbench.
type Provider interface {
	FetchAll(ctx context.Context) ([]EventType, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) ([]EventType, error)

// FetchAll calls f.
func (f ProviderFunc) FetchAll(ctx context.Context) ([]EventType, error) {
	return f(ctx)
}

// Page is one page of a cursor-paginated listing.
type Page struct {
	Items      []EventType
	NextCursor string
}

// PageSource lists event types page by page.
type PageSource interface {
	ListEventTypes(ctx context.Context, cursor string, limit int) (Page, error)
}

// Pager collects pages from a PageSource up to MaxPages.
type Pager struct {
	Source   PageSource
	PageSize int
	MaxPages int
}

// FetchAll walks the source until it runs out of pages or hits MaxPages.
func (p Pager) FetchAll(ctx context.Context) ([]EventType, error) {
	if p.Source == nil {
		return nil, errors.New("eventtypes: page source is nil")
	}
	size := p.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	maxPages := p.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	var all []EventType
	cursor := ""
	for page := 0; page < maxPages; page++ {
		result, err := p.Source.ListEventTypes(ctx, cursor, size)
		if err != nil {
			return nil, fmt.Errorf("list event types page %d: %w", page+1, err)
		}
		all = append(all, result.Items...)
		if result.NextCursor == "" || len(result.Items) == 0 {
			break
		}
		cursor = result.NextCursor
	}
	return all, nil
}

// Static serves a fixed list of event types.
type Static []EventType

// FetchAll returns a copy of the list.
func (s Static) FetchAll(ctx context.Context) ([]EventType, error) {
	out := make([]EventType, len(s))
	copy(out, s)
	return out, nil
}

// BuildCatalog turns event types into names and a schema map. Blank
// schemas are skipped; the map is nil when no type has a schema.
func BuildCatalog(types []EventType) Catalog {
	catalog := Catalog{Names: make([]string, 0, len(types))}
	for _, eventType := range types {
		catalog.Names = append(catalog.Names, eventType.Name)
		raw := strings.TrimSpace(eventType.LatestSchema)
		if raw == "" {
			continue
		}
		if catalog.Schemas == nil {
			catalog.Schemas = map[string]string{}
		}
		catalog.Schemas[eventType.Name] = raw
	}
	return catalog
}

// Cache memoizes a provider's catalog after the first successful fetch.
type Cache struct {
	provider Provider
	mu       sync.Mutex
	loaded   bool
	catalog  Catalog
}

// NewCache wraps a provider; a nil provider yields an empty catalog.
func NewCache(provider Provider) *Cache {
	return &Cache{provider: provider}
}

// Catalog returns the cached catalog, fetching it on first use. Failed
// fetches are not cached.
func (c *Cache) Catalog(ctx context.Context) (Catalog, error) {
	if c == nil || c.provider == nil {
		return Catalog{}, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return c.catalog, nil
	}
	types, err := c.provider.FetchAll(ctx)
	if err != nil {
		return Catalog{}, err
	}
	c.catalog = BuildCatalog(types)
	c.loaded = true
	return c.catalog, nil
}

// Invalidate drops the cached catalog so the next call refetches.
func (c *Cache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	c.catalog = Catalog{}
}

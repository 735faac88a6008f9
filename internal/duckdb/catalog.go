package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"insights/internal/eventtypes"
)

// EventTypeSource pages through the event_types table by name.
type EventTypeSource struct {
	DB *sql.DB
}

// ListEventTypes returns up to limit event types named after cursor. The
// next cursor is empty once the listing is exhausted.
func (s EventTypeSource) ListEventTypes(ctx context.Context, cursor string, limit int) (eventtypes.Page, error) {
	if s.DB == nil {
		return eventtypes.Page{}, errors.New("duckdb: db is nil")
	}
	if limit <= 0 {
		limit = eventtypes.DefaultPageSize
	}
	rows, err := s.DB.QueryContext(ctx,
		"SELECT name, COALESCE(latest_schema, '') FROM event_types WHERE name > ? ORDER BY name LIMIT ?",
		cursor, limit,
	)
	if err != nil {
		return eventtypes.Page{}, fmt.Errorf("query event types: %w", err)
	}
	defer rows.Close()

	var page eventtypes.Page
	for rows.Next() {
		var item eventtypes.EventType
		if err := rows.Scan(&item.Name, &item.LatestSchema); err != nil {
			return eventtypes.Page{}, fmt.Errorf("scan event type: %w", err)
		}
		page.Items = append(page.Items, item)
	}
	if err := rows.Err(); err != nil {
		return eventtypes.Page{}, fmt.Errorf("iterate event types: %w", err)
	}
	if len(page.Items) == limit {
		page.NextCursor = page.Items[len(page.Items)-1].Name
	}
	return page, nil
}

// EventTypeProvider fetches the full catalog through an eventtypes.Pager.
func EventTypeProvider(db *sql.DB, pageSize, maxPages int) eventtypes.Provider {
	return eventtypes.Pager{
		Source:   EventTypeSource{DB: db},
		PageSize: pageSize,
		MaxPages: maxPages,
	}
}

package duckdb

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// Event is one row of the events table.
type Event struct {
	ID        string
	Name      string
	Data      json.RawMessage
	Timestamp time.Time
	Version   string
}

// IngestResult counts the outcome of an ingest.
type IngestResult struct {
	Inserted   int
	Duplicates int
	EventTypes int
}

type eventLine struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
	TS   int64           `json:"ts"`
	V    string          `json:"v"`
}

// ReadEvents parses newline-delimited event JSON. Timestamps are unix
// milliseconds. Blank lines and lines starting with # are skipped.
func ReadEvents(r io.Reader) ([]Event, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var events []Event
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var decoded eventLine
		if err := json.Unmarshal([]byte(line), &decoded); err != nil {
			return nil, fmt.Errorf("events line %d: %w", lineNo, err)
		}
		events = append(events, Event{
			ID:        decoded.ID,
			Name:      decoded.Name,
			Data:      decoded.Data,
			Timestamp: time.UnixMilli(decoded.TS).UTC(),
			Version:   decoded.V,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return events, nil
}

// IngestEvents inserts events in one transaction and refreshes the
// event_types catalog with the schema of each name's newest event. Events
// without an id get a content fingerprint, so re-ingesting the same log is
// a no-op.
func IngestEvents(ctx context.Context, db *sql.DB, events []Event) (IngestResult, error) {
	if ctx == nil {
		return IngestResult{}, errors.New("duckdb: context is nil")
	}
	if db == nil {
		return IngestResult{}, errors.New("duckdb: db is nil")
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return IngestResult{}, fmt.Errorf("begin ingest: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var result IngestResult
	latest := map[string]Event{}
	for i, ev := range events {
		if strings.TrimSpace(ev.Name) == "" {
			return IngestResult{}, fmt.Errorf("event %d: name is required", i+1)
		}
		if ev.Timestamp.IsZero() {
			return IngestResult{}, fmt.Errorf("event %d: ts is required", i+1)
		}
		if ev.ID == "" {
			ev.ID, err = FingerprintJSON(map[string]interface{}{
				"name": ev.Name,
				"data": ev.Data,
				"ts":   ev.Timestamp.UnixMilli(),
			})
			if err != nil {
				return IngestResult{}, fmt.Errorf("event %d: %w", i+1, err)
			}
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO events (id, name, data, ts, v) VALUES (?, ?, ?, ?, ?) ON CONFLICT (id) DO NOTHING",
			ev.ID, ev.Name, nullableJSON(ev.Data), ev.Timestamp.UTC(), ev.Version,
		)
		if err != nil {
			return IngestResult{}, fmt.Errorf("insert event %s: %w", ev.ID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return IngestResult{}, fmt.Errorf("insert event %s: %w", ev.ID, err)
		}
		if affected == 0 {
			result.Duplicates++
			continue
		}
		result.Inserted++
		if prev, ok := latest[ev.Name]; !ok || !ev.Timestamp.Before(prev.Timestamp) {
			latest[ev.Name] = ev
		}
	}

	names := make([]string, 0, len(latest))
	for name := range latest {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ev := latest[name]
		schema, err := InferSchema(ev.Data)
		if err != nil {
			return IngestResult{}, fmt.Errorf("event type %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO event_types (name, latest_schema, last_seen) VALUES (?, ?, ?)
ON CONFLICT (name) DO UPDATE SET latest_schema = EXCLUDED.latest_schema, last_seen = EXCLUDED.last_seen
WHERE last_seen <= EXCLUDED.last_seen`,
			name, nullableString(schema), ev.Timestamp.UTC(),
		); err != nil {
			return IngestResult{}, fmt.Errorf("upsert event type %s: %w", name, err)
		}
	}
	result.EventTypes = len(names)

	if err := tx.Commit(); err != nil {
		return IngestResult{}, fmt.Errorf("commit ingest: %w", err)
	}
	return result, nil
}

// CountEvents returns the number of stored events.
func CountEvents(ctx context.Context, db *sql.DB) (int, error) {
	if db == nil {
		return 0, errors.New("duckdb: db is nil")
	}
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&count); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

func nullableJSON(data json.RawMessage) interface{} {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return string(data)
}

func nullableString(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

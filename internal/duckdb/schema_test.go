package duckdb_test

import (
	"testing"

	"insights/internal/duckdb"
)

// TestSchemaObjectsExist verifies the warehouse tables are created.
func TestSchemaObjectsExist(t *testing.T) {
	db, ctx := openTestDB(t)
	for _, table := range []string{"events", "event_types"} {
		count := queryInt(t, ctx, db, "SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ?", table)
		if count != 1 {
			t.Fatalf("expected table %s to exist", table)
		}
	}
	execSQL(t, ctx, db, "SELECT id, name, data, ts, v FROM events LIMIT 0")
}

// TestSchemaIsIdempotent verifies the DDL can be applied twice.
func TestSchemaIsIdempotent(t *testing.T) {
	db, ctx := openTestDB(t)
	execSQL(t, ctx, db, duckdb.SchemaDDL())
}

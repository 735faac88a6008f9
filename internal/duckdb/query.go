package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// DefaultRowLimit caps rows returned by Query when no limit is given.
const DefaultRowLimit = 1000

// ErrNotReadOnly rejects anything but a single SELECT or WITH statement.
var ErrNotReadOnly = errors.New("duckdb: only a single SELECT or WITH statement may run")

// QueryResult holds the rows of a read-only query.
type QueryResult struct {
	Columns   []string
	Rows      [][]interface{}
	Truncated bool
}

// writeKeywords are statement keywords that may change the warehouse. They
// are rejected anywhere outside literals, so a WITH prefix cannot smuggle one.
var writeKeywords = map[string]bool{
	"ALTER": true, "ATTACH": true, "CALL": true, "CHECKPOINT": true,
	"COPY": true, "CREATE": true, "DELETE": true, "DETACH": true,
	"DROP": true, "EXPORT": true, "IMPORT": true, "INSERT": true,
	"INSTALL": true, "LOAD": true, "MERGE": true, "PRAGMA": true,
	"TRUNCATE": true, "UPDATE": true, "UPSERT": true, "VACUUM": true,
}

// CheckReadOnly normalizes a query and rejects statements that could write.
// Leading comments and trailing semicolons are ignored.
func CheckReadOnly(query string) (string, error) {
	stmt := stripLeadingComments(query)
	stmt = strings.TrimRight(strings.TrimSpace(stmt), "; \t\r\n")
	if stmt == "" {
		return "", ErrNotReadOnly
	}
	words, single := scanStatement(stmt)
	if !single || len(words) == 0 {
		return "", ErrNotReadOnly
	}
	switch words[0] {
	case "SELECT", "WITH", "FROM":
	default:
		return "", ErrNotReadOnly
	}
	for _, word := range words {
		if writeKeywords[word] {
			return "", ErrNotReadOnly
		}
	}
	return stmt, nil
}

// scanStatement returns the upper-cased bare words of stmt, skipping string
// literals, quoted identifiers and comments. single is false when a
// semicolon separates it from more SQL.
func scanStatement(stmt string) (words []string, single bool) {
	for i := 0; i < len(stmt); {
		c := stmt[i]
		switch {
		case c == '\'' || c == '"':
			i = skipQuoted(stmt, i+1, c)
		case strings.HasPrefix(stmt[i:], "--"):
			newline := strings.IndexByte(stmt[i:], '\n')
			if newline < 0 {
				return words, true
			}
			i += newline + 1
		case strings.HasPrefix(stmt[i:], "/*"):
			closing := strings.Index(stmt[i+2:], "*/")
			if closing < 0 {
				return words, true
			}
			i += closing + 4
		case c == ';':
			if stripLeadingComments(stmt[i+1:]) != "" {
				return words, false
			}
			i++
		case isWordByte(c):
			j := i
			for j < len(stmt) && (isWordByte(stmt[j]) || (stmt[j] >= '0' && stmt[j] <= '9')) {
				j++
			}
			words = append(words, strings.ToUpper(stmt[i:j]))
			i = j
		default:
			i++
		}
	}
	return words, true
}

// skipQuoted returns the index just past the closing quote. A doubled quote
// is an escape.
func skipQuoted(stmt string, i int, quote byte) int {
	for i < len(stmt) {
		if stmt[i] == quote {
			if i+1 < len(stmt) && stmt[i+1] == quote {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return i
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Query runs a read-only statement and collects at most limit rows.
func Query(ctx context.Context, db *sql.DB, query string, limit int) (QueryResult, error) {
	if db == nil {
		return QueryResult{}, errors.New("duckdb: db is nil")
	}
	stmt, err := CheckReadOnly(query)
	if err != nil {
		return QueryResult{}, err
	}
	if limit <= 0 {
		limit = DefaultRowLimit
	}
	// The transaction is never committed, so nothing the statement does
	// outlives the call.
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return QueryResult{}, fmt.Errorf("begin query: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, stmt)
	if err != nil {
		return QueryResult{}, fmt.Errorf("run query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return QueryResult{}, fmt.Errorf("read columns: %w", err)
	}
	result := QueryResult{Columns: columns}
	for rows.Next() {
		if len(result.Rows) == limit {
			result.Truncated = true
			break
		}
		values := make([]interface{}, len(columns))
		targets := make([]interface{}, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return QueryResult{}, fmt.Errorf("scan row: %w", err)
		}
		for i, value := range values {
			if b, ok := value.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return QueryResult{}, fmt.Errorf("iterate rows: %w", err)
	}
	return result, nil
}

func stripLeadingComments(query string) string {
	rest := strings.TrimSpace(query)
	for {
		switch {
		case strings.HasPrefix(rest, "--"):
			newline := strings.IndexByte(rest, '\n')
			if newline < 0 {
				return ""
			}
			rest = strings.TrimSpace(rest[newline+1:])
		case strings.HasPrefix(rest, "/*"):
			closing := strings.Index(rest[2:], "*/")
			if closing < 0 {
				return ""
			}
			rest = strings.TrimSpace(rest[closing+4:])
		default:
			return rest
		}
	}
}

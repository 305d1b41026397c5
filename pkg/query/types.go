// Package query provides the query client abstraction used by the
// schema loader, the table info formatter, and the database facade.
//
//nolint:revive // package contains related DTO types
package query

import "context"

// FetchMode controls how much of a result set Run serializes.
type FetchMode string

const (
	// FetchAll serializes the entire result set.
	FetchAll FetchMode = "all"

	// FetchOne serializes only the first row.
	FetchOne FetchMode = "one"
)

// Result represents the result of a query. Columns preserves the
// engine's column order so row values can be rendered positionally.
type Result struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Records converts the result into one map per row, keyed by column
// name. Used for JSON serialization of row objects.
func (r *Result) Records() []map[string]any {
	records := make([]map[string]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		record := make(map[string]any, len(r.Columns))
		for i, col := range r.Columns {
			if i < len(row) {
				record[col] = row[i]
			}
		}
		records = append(records, record)
	}
	return records
}

// Client executes SQL against a query engine. Trino and PostgreSQL
// implement this. The engine owns connection management, retries, and
// the wire protocol; this layer issues statements and reads rows.
type Client interface {
	// Query runs a statement and returns the full result set.
	Query(ctx context.Context, sql string, args ...any) (*Result, error)

	// Schema returns the target schema/database name queries run against.
	Schema() string

	// Close releases resources.
	Close() error
}

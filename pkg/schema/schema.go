// Package schema loads relational schema metadata from a query engine
// and folds it into a per-table structure.
package schema

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/txn2/mcp-sqlcontext/pkg/query"
)

// Column represents a table column.
type Column struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	Nullable bool   `json:"nullable"`
}

// Table represents a table and its ordered columns. Tables are built
// once at load time and are read-only thereafter.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// nullableLiteral is the exact IS_NULLABLE value that marks a column
// nullable. Any other value, including absent, means not-nullable.
const nullableLiteral = "YES"

// Load issues the information-schema column query for the client's
// target schema and folds the flat row set into one entry per distinct
// table name. Table order follows first appearance in the result set;
// column order follows result order. Query errors propagate unchanged.
func Load(ctx context.Context, client query.Client) ([]Table, error) {
	sqlText, args, err := sq.
		Select("TABLE_NAME", "COLUMN_NAME", "DATA_TYPE", "IS_NULLABLE").
		From("INFORMATION_SCHEMA.COLUMNS").
		Where(sq.Eq{"TABLE_SCHEMA": client.Schema()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building schema query: %w", err)
	}

	result, err := client.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, err
	}

	tables := make([]Table, 0)
	index := make(map[string]int)

	for _, row := range result.Rows {
		if len(row) < 4 {
			continue
		}

		tableName := asString(row[0])
		column := Column{
			Name:     asString(row[1]),
			DataType: asString(row[2]),
			Nullable: asString(row[3]) == nullableLiteral,
		}

		i, ok := index[tableName]
		if !ok {
			i = len(tables)
			index[tableName] = i
			tables = append(tables, Table{Name: tableName})
		}
		tables[i].Columns = append(tables[i].Columns, column)
	}

	return tables, nil
}

// asString renders a driver value as a string. Absent values become "".
func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprintf("%v", s)
	}
}

// Package prompt renders schema metadata and sampled rows as a
// prompt-ready text block for a text-generation consumer.
package prompt

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/txn2/mcp-sqlcontext/pkg/query"
	"github.com/txn2/mcp-sqlcontext/pkg/schema"
)

// notNullMarker is the literal emitted for non-nullable columns.
// Nullable columns emit an empty marker, whitespace and all.
const notNullMarker = "NOT NULL"

// Formatter renders table info text. Sample-query failures are logged
// through Logger and rendered as empty sample text; they never fail a
// render.
type Formatter struct {
	// SampleRows is the number of sample rows fetched per table. Zero
	// or negative issues no sample queries.
	SampleRows int

	// Descriptions maps table names to caller-supplied free text
	// prepended to that table's block. Exact key match only.
	Descriptions map[string]string

	// Logger receives sample-query failures.
	Logger *slog.Logger
}

// NewFormatter creates a Formatter with the given sample row count and
// description map. A nil logger falls back to slog.Default.
func NewFormatter(sampleRows int, descriptions map[string]string, logger *slog.Logger) *Formatter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Formatter{
		SampleRows:   sampleRows,
		Descriptions: descriptions,
		Logger:       logger,
	}
}

// Render produces one concatenated text block for the given tables, in
// the order given. Sample queries run sequentially, one table at a time.
func (f *Formatter) Render(ctx context.Context, client query.Client, tables []schema.Table) string {
	var b strings.Builder

	for _, table := range tables {
		f.renderTable(ctx, &b, client, table)
	}

	return b.String()
}

// renderTable emits one table block: optional description, pseudo-DDL,
// the sample select statement, the column-name line, and sample rows.
func (f *Formatter) renderTable(ctx context.Context, b *strings.Builder, client query.Client, table schema.Table) {
	if desc, ok := f.Descriptions[table.Name]; ok {
		b.WriteString(desc)
		b.WriteString("\n")
	}

	b.WriteString(renderDDL(table))

	sampleSQL := fmt.Sprintf("SELECT * FROM %s LIMIT %d", table.Name, max(f.SampleRows, 0))
	b.WriteString(sampleSQL)
	b.WriteString(";\n")

	for _, col := range table.Columns {
		b.WriteString(" ")
		b.WriteString(col.Name)
	}
	b.WriteString("\n")

	if f.SampleRows > 0 {
		b.WriteString(f.sampleText(ctx, client, table.Name, sampleSQL))
	}
}

// renderDDL emits the descriptive CREATE TABLE text. The text is never
// executed; the nullable marker formatting is part of the output
// contract and is not trimmed.
func renderDDL(table schema.Table) string {
	entries := make([]string, 0, len(table.Columns))
	for _, col := range table.Columns {
		marker := ""
		if !col.Nullable {
			marker = notNullMarker
		}
		entries = append(entries, fmt.Sprintf("%s %s %s", col.Name, col.DataType, marker))
	}

	return fmt.Sprintf("CREATE TABLE %s (%s)\n", table.Name, strings.Join(entries, ", "))
}

// sampleText fetches and renders sample rows, one space-folded line per
// row in result order. Failures are logged and rendered as empty text.
func (f *Formatter) sampleText(ctx context.Context, client query.Client, tableName, sampleSQL string) string {
	result, err := client.Query(ctx, sampleSQL)
	if err != nil {
		f.Logger.Error("sample query failed",
			"table", tableName,
			"error", err,
		)
		return ""
	}

	var b strings.Builder
	for _, row := range result.Rows {
		for _, value := range row {
			b.WriteString(" ")
			b.WriteString(renderValue(value))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// renderValue renders a single field value as text.
func renderValue(v any) string {
	if v == nil {
		return "NULL"
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}

// Package sqldb provides the database facade: a loaded schema cache,
// table filtering, prompt-ready table info, and pass-through query
// execution.
package sqldb

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/txn2/mcp-sqlcontext/pkg/prompt"
	"github.com/txn2/mcp-sqlcontext/pkg/query"
	"github.com/txn2/mcp-sqlcontext/pkg/schema"
)

// defaultSampleRows is the sample row count used when none is configured.
const defaultSampleRows = 3

// Config configures a Database.
type Config struct {
	// Client executes queries against the engine. Required.
	Client query.Client

	// IncludeTables restricts table info to the named tables. Mutually
	// exclusive with IgnoreTables.
	IncludeTables []string

	// IgnoreTables excludes the named tables from table info. Mutually
	// exclusive with IncludeTables.
	IgnoreTables []string

	// SampleRows is the number of sample rows per table. Zero means
	// the default of 3; a negative value disables sample rows.
	SampleRows int

	// CustomTableInfo maps table names to free-text descriptions
	// prepended to that table's info block.
	CustomTableInfo map[string]string

	// Logger receives sample-query failures. Defaults to slog.Default.
	Logger *slog.Logger
}

// Database caches the loaded table set and serves table info and
// pass-through queries. The cache is read-only after Load; no
// operation mutates shared state concurrently.
type Database struct {
	client    query.Client
	cfg       Config
	formatter *prompt.Formatter

	// tables is absent until Load completes. loaded distinguishes an
	// unloaded cache from a loaded schema that has no tables.
	tables []schema.Table
	loaded bool
}

// New creates a Database without loading the schema. Callers who skip
// Load get empty table info, not an error. Supplying both an include
// and an ignore list is a configuration error.
func New(cfg Config) (*Database, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("query client is required")
	}
	if len(cfg.IncludeTables) > 0 && len(cfg.IgnoreTables) > 0 {
		return nil, fmt.Errorf("include_tables and ignore_tables are mutually exclusive")
	}
	if cfg.SampleRows == 0 {
		cfg.SampleRows = defaultSampleRows
	}

	return &Database{
		client:    cfg.Client,
		cfg:       cfg,
		formatter: prompt.NewFormatter(cfg.SampleRows, cfg.CustomTableInfo, cfg.Logger),
	}, nil
}

// Open creates a Database and loads the schema. This is the factory
// most callers want.
func Open(ctx context.Context, cfg Config) (*Database, error) {
	db, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Load(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// Load fetches the schema once and validates the configured include
// and ignore lists against it. Safe to call again to refresh the cache.
func (d *Database) Load(ctx context.Context) error {
	tables, err := schema.Load(ctx, d.client)
	if err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}

	if err := schema.Validate(tables, d.cfg.IncludeTables, schema.IntentInclude); err != nil {
		return err
	}
	if err := schema.Validate(tables, d.cfg.IgnoreTables, schema.IntentIgnore); err != nil {
		return err
	}

	d.tables = tables
	d.loaded = true
	return nil
}

// Loaded reports whether the schema cache has been populated.
func (d *Database) Loaded() bool {
	return d.loaded
}

// Tables returns the facade's filtered view of the loaded table set.
// The underlying loaded list is never mutated.
func (d *Database) Tables() []schema.Table {
	return schema.Filter(d.tables, d.cfg.IncludeTables, d.cfg.IgnoreTables)
}

// TableInfo renders prompt-ready table info text. An explicit target
// list overrides the configured include/ignore lists entirely and is
// validated against the full loaded table set; validation failures
// abort before any sample query is issued. With no targets, the
// configured include list applies first, then the ignore list.
func (d *Database) TableInfo(ctx context.Context, targets ...string) (string, error) {
	selected := d.Tables()

	if len(targets) > 0 {
		if err := schema.Validate(d.tables, targets, schema.IntentTarget); err != nil {
			return "", err
		}
		selected = schema.Filter(d.tables, targets, nil)
	}

	return d.formatter.Render(ctx, d.client, selected), nil
}

// Run executes a caller-supplied command verbatim through the
// underlying client. FetchAll serializes the entire result set as
// JSON; FetchOne serializes the first row, or returns "" when the
// result set is empty. An empty fetch mode means FetchAll. The caller
// is trusted; no SQL validation is performed here.
func (d *Database) Run(ctx context.Context, command string, fetch query.FetchMode) (string, error) {
	result, err := d.client.Query(ctx, command)
	if err != nil {
		return "", err
	}

	switch fetch {
	case query.FetchAll, "":
		data, err := json.Marshal(result.Records())
		if err != nil {
			return "", fmt.Errorf("serializing result: %w", err)
		}
		return string(data), nil

	case query.FetchOne:
		records := result.Records()
		if len(records) == 0 {
			return "", nil
		}
		data, err := json.Marshal(records[0])
		if err != nil {
			return "", fmt.Errorf("serializing row: %w", err)
		}
		return string(data), nil

	default:
		return "", fmt.Errorf("unknown fetch mode: %q", fetch)
	}
}

// Close releases the underlying client.
func (d *Database) Close() error {
	return d.client.Close()
}

// Package postgres provides a PostgreSQL implementation of the query client.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/lib/pq" // postgres driver

	"github.com/txn2/mcp-sqlcontext/pkg/query"
)

// defaultPort is the standard PostgreSQL port.
const defaultPort = 5432

// Config holds PostgreSQL client configuration. Schema is the
// information-schema scope used by the loader; it defaults to the
// database name, matching how single-database deployments are queried.
type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Schema   string `yaml:"schema"`
	SSLMode  string `yaml:"ssl_mode"`
}

// Client implements query.Client using PostgreSQL.
type Client struct {
	cfg Config
	db  *sql.DB
}

// New creates a new PostgreSQL client.
func New(cfg Config) (*Client, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	cfg = applyDefaults(cfg)

	db, err := sql.Open("postgres", formatDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	return &Client{cfg: cfg, db: db}, nil
}

// NewWithDB creates a PostgreSQL client around an existing database
// handle. Used in tests with sqlmock.
func NewWithDB(cfg Config, db *sql.DB) (*Client, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle is required")
	}
	return &Client{cfg: applyDefaults(cfg), db: db}, nil
}

// validateConfig validates the required configuration fields.
func validateConfig(cfg Config) error {
	if cfg.Host == "" {
		return fmt.Errorf("postgres host is required")
	}
	if cfg.User == "" {
		return fmt.Errorf("postgres user is required")
	}
	if cfg.Database == "" {
		return fmt.Errorf("postgres database is required")
	}
	return nil
}

// applyDefaults applies default values to the configuration.
func applyDefaults(cfg Config) Config {
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.Schema == "" {
		cfg.Schema = "public"
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	return cfg
}

// formatDSN builds the lib/pq connection URL from the configuration.
func formatDSN(cfg Config) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.User(cfg.User),
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:   "/" + cfg.Database,
	}
	if cfg.Password != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}

	q := u.Query()
	q.Set("sslmode", cfg.SSLMode)
	u.RawQuery = q.Encode()

	return u.String()
}

// Query runs a statement and returns the full result set.
// Parameterized statements arrive with ? placeholders (the builder
// default shared with the Trino client) and are rebound to the $N form
// lib/pq requires. Statements without args pass through verbatim.
func (c *Client) Query(ctx context.Context, sqlText string, args ...any) (*query.Result, error) {
	if len(args) > 0 {
		sqlText = rebind(sqlText)
	}

	rows, err := c.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close() //nolint:errcheck // rows close error is superseded by scan errors

	return query.ScanRows(rows)
}

// rebind converts ? placeholders to $1..$N. Only applied to
// parameterized statements built by this module, never to verbatim
// caller SQL.
func rebind(sqlText string) string {
	var out []byte
	n := 0
	for i := 0; i < len(sqlText); i++ {
		if sqlText[i] == '?' {
			n++
			out = append(out, fmt.Sprintf("$%d", n)...)
			continue
		}
		out = append(out, sqlText[i])
	}
	return string(out)
}

// Schema returns the information-schema scope queries run against.
func (c *Client) Schema() string {
	return c.cfg.Schema
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}

// Verify interface compliance.
var _ query.Client = (*Client)(nil)

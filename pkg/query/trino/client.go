// Package trino provides a Trino implementation of the query client.
package trino

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/trinodb/trino-go-client/trino"

	"github.com/txn2/mcp-sqlcontext/pkg/query"
)

const (
	// defaultPlainPort is the default port when SSL is disabled.
	defaultPlainPort = 8080

	// defaultSSLPort is the default port when SSL is enabled.
	defaultSSLPort = 443

	// defaultSource identifies this client to the Trino coordinator.
	defaultSource = "mcp-sqlcontext"
)

// Config holds Trino client configuration.
type Config struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	User     string        `yaml:"user"`
	Password string        `yaml:"password"`
	Catalog  string        `yaml:"catalog"`
	Schema   string        `yaml:"schema"`
	SSL      bool          `yaml:"ssl"`
	Timeout  time.Duration `yaml:"timeout"`
	Source   string        `yaml:"source"`
}

// Client implements query.Client using Trino.
type Client struct {
	cfg Config
	db  *sql.DB
}

// New creates a new Trino client, opening a connection pool against
// the coordinator.
func New(cfg Config) (*Client, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	cfg = applyDefaults(cfg)

	dsn, err := formatDSN(cfg)
	if err != nil {
		return nil, fmt.Errorf("building trino dsn: %w", err)
	}

	db, err := sql.Open("trino", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening trino connection: %w", err)
	}

	return &Client{cfg: cfg, db: db}, nil
}

// NewWithDB creates a Trino client around an existing database handle.
// Used in tests with sqlmock.
func NewWithDB(cfg Config, db *sql.DB) (*Client, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle is required")
	}
	return &Client{cfg: applyDefaults(cfg), db: db}, nil
}

// validateConfig validates the required configuration fields.
func validateConfig(cfg Config) error {
	if cfg.Host == "" {
		return fmt.Errorf("trino host is required")
	}
	if cfg.User == "" {
		return fmt.Errorf("trino user is required")
	}
	return nil
}

// applyDefaults applies default values to the configuration.
func applyDefaults(cfg Config) Config {
	if cfg.Port == 0 {
		if cfg.SSL {
			cfg.Port = defaultSSLPort
		} else {
			cfg.Port = defaultPlainPort
		}
	}
	if cfg.Source == "" {
		cfg.Source = defaultSource
	}
	return cfg
}

// formatDSN builds the driver DSN from the configuration.
func formatDSN(cfg Config) (string, error) {
	scheme := "http"
	if cfg.SSL {
		scheme = "https"
	}

	serverURL := url.URL{
		Scheme: scheme,
		User:   url.User(cfg.User),
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
	}
	if cfg.Password != "" {
		serverURL.User = url.UserPassword(cfg.User, cfg.Password)
	}

	driverCfg := trino.Config{
		ServerURI: serverURL.String(),
		Source:    cfg.Source,
		Catalog:   cfg.Catalog,
		Schema:    cfg.Schema,
	}
	if cfg.Timeout > 0 {
		driverCfg.QueryTimeout = &cfg.Timeout
	}

	return driverCfg.FormatDSN()
}

// Query runs a statement and returns the full result set.
func (c *Client) Query(ctx context.Context, sqlText string, args ...any) (*query.Result, error) {
	rows, err := c.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close() //nolint:errcheck // rows close error is superseded by scan errors

	return query.ScanRows(rows)
}

// Schema returns the target schema name queries run against.
func (c *Client) Schema() string {
	return c.cfg.Schema
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}

// Verify interface compliance.
var _ query.Client = (*Client)(nil)

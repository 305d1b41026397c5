// Package server provides a factory for creating the MCP server around
// a loaded database facade.
package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/txn2/mcp-sqlcontext/pkg/query"
	"github.com/txn2/mcp-sqlcontext/pkg/query/postgres"
	"github.com/txn2/mcp-sqlcontext/pkg/query/trino"
	"github.com/txn2/mcp-sqlcontext/pkg/sqldb"
)

// Version is set at build time.
var Version = "dev"

// Server wraps the MCP server and the database facade it serves.
type Server struct {
	mcpServer *mcp.Server
	db        *sqldb.Database
	logger    *slog.Logger
}

// New creates the MCP server from configuration: it opens the query
// client, loads the schema, and registers the tools.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := newClient(cfg.Connection)
	if err != nil {
		return nil, fmt.Errorf("creating query client: %w", err)
	}

	db, err := sqldb.Open(ctx, sqldb.Config{
		Client:          client,
		IncludeTables:   cfg.Tables.Include,
		IgnoreTables:    cfg.Tables.Ignore,
		SampleRows:      cfg.Tables.SampleRows,
		CustomTableInfo: cfg.Tables.Descriptions,
		Logger:          logger,
	})
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{
			Name:    cfg.Server.Name,
			Version: cfg.Server.Version,
		}, nil),
		db:     db,
		logger: logger,
	}
	s.registerTools()

	return s, nil
}

// newClient constructs the query client for the configured engine.
func newClient(cfg ConnectionConfig) (query.Client, error) {
	switch cfg.Kind {
	case KindTrino:
		return trino.New(cfg.Trino)
	case KindPostgres:
		return postgres.New(cfg.Postgres)
	default:
		return nil, fmt.Errorf("unknown connection kind: %q", cfg.Kind)
	}
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

// Run serves MCP over the given transport until the context is done.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.mcpServer.Run(ctx, transport)
}

// Close releases the database facade and its client.
func (s *Server) Close() error {
	return s.db.Close()
}

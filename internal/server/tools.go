package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/txn2/mcp-sqlcontext/pkg/query"
	"github.com/txn2/mcp-sqlcontext/pkg/schema"
)

// getTableInfoInput is the input for the get_table_info tool. Tables
// is optional; absent means all configured tables.
type getTableInfoInput struct {
	Tables []string `json:"tables,omitempty"`
}

// runQueryInput is the input for the run_query tool. Fetch is "all"
// (default) or "one".
type runQueryInput struct {
	Query string `json:"query"`
	Fetch string `json:"fetch,omitempty"`
}

// listTablesInput is empty since this tool has no parameters.
type listTablesInput struct{}

// listTablesOutput is the JSON response for the list_tables tool.
type listTablesOutput struct {
	Tables []string `json:"tables"`
	Count  int      `json:"count"`
}

// registerTools registers the database tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_table_info",
		Description: "Describe tables as prompt-ready text: pseudo-DDL, column names, and sample rows.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in getTableInfoInput) (*mcp.CallToolResult, any, error) {
		return s.handleGetTableInfo(ctx, in)
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "run_query",
		Description: "Execute a SQL statement and return the result set as JSON.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in runQueryInput) (*mcp.CallToolResult, any, error) {
		return s.handleRunQuery(ctx, in)
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_tables",
		Description: "List the tables available through this connection.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ listTablesInput) (*mcp.CallToolResult, any, error) {
		return s.handleListTables(ctx)
	})
}

// handleGetTableInfo handles the get_table_info tool call.
func (s *Server) handleGetTableInfo(ctx context.Context, in getTableInfoInput) (*mcp.CallToolResult, any, error) {
	requestID := uuid.NewString()
	start := time.Now()

	info, err := s.db.TableInfo(ctx, in.Tables...)
	if err != nil {
		s.logger.Error("get_table_info failed",
			"request_id", requestID,
			"tables", in.Tables,
			"error", err,
		)
		return errorResult(err), nil, nil
	}

	s.logger.Info("get_table_info served",
		"request_id", requestID,
		"tables", in.Tables,
		"duration_ms", time.Since(start).Milliseconds(),
		"chars", len(info),
	)

	return textResult(info), nil, nil
}

// handleRunQuery handles the run_query tool call.
func (s *Server) handleRunQuery(ctx context.Context, in runQueryInput) (*mcp.CallToolResult, any, error) {
	requestID := uuid.NewString()
	start := time.Now()

	out, err := s.db.Run(ctx, in.Query, query.FetchMode(in.Fetch))
	if err != nil {
		s.logger.Error("run_query failed",
			"request_id", requestID,
			"error", err,
		)
		return errorResult(err), nil, nil
	}

	s.logger.Info("run_query served",
		"request_id", requestID,
		"fetch", in.Fetch,
		"duration_ms", time.Since(start).Milliseconds(),
		"chars", len(out),
	)

	return textResult(out), nil, nil
}

// handleListTables handles the list_tables tool call.
func (s *Server) handleListTables(_ context.Context) (*mcp.CallToolResult, any, error) {
	names := schema.Names(s.db.Tables())

	data, err := json.MarshalIndent(listTablesOutput{
		Tables: names,
		Count:  len(names),
	}, "", "  ")
	if err != nil {
		return errorResult(err), nil, nil //nolint:nilerr // MCP protocol: tool errors are returned in CallToolResult.IsError, not as Go errors
	}

	return textResult(string(data)), nil, nil
}

// textResult wraps text in a successful tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// errorResult wraps an error in a tool result with IsError set.
func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + err.Error()},
		},
		IsError: true,
	}
}

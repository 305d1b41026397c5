// Package main provides the entry point for the mcp-sqlcontext server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/txn2/mcp-sqlcontext/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type serverOptions struct {
	configPath  string
	showVersion bool
}

func parseFlags() serverOptions {
	opts := serverOptions{}
	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.BoolVar(&opts.showVersion, "version", false, "Show version and exit")
	flag.Parse()
	return opts
}

func setupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx
}

func run() error {
	opts := parseFlags()

	if opts.showVersion {
		fmt.Printf("mcp-sqlcontext version %s\n", server.Version)
		return nil
	}

	if opts.configPath == "" {
		return fmt.Errorf("a configuration file is required (-config)")
	}

	cfg, err := server.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}

	// MCP over stdio owns stdout; logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx := setupSignalHandler()

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer srv.Close() //nolint:errcheck // close error on shutdown is inconsequential

	return srv.Run(ctx, &mcp.StdioTransport{})
}

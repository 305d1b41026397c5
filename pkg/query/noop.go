package query

import "context"

// NoopClient is a no-op implementation for testing.
type NoopClient struct {
	SchemaName string
}

// NewNoopClient creates a new no-op client.
func NewNoopClient() *NoopClient {
	return &NoopClient{}
}

// Query returns an empty result.
func (n *NoopClient) Query(_ context.Context, _ string, _ ...any) (*Result, error) {
	return &Result{}, nil
}

// Schema returns the configured schema name.
func (n *NoopClient) Schema() string {
	return n.SchemaName
}

// Close does nothing.
func (n *NoopClient) Close() error {
	return nil
}

// Verify interface compliance.
var _ Client = (*NoopClient)(nil)

package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_UnknownKind(t *testing.T) {
	_, err := newClient(ConnectionConfig{Kind: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestNew_InvalidConnectionConfig(t *testing.T) {
	cfg := &Config{
		Server:     ServerConfig{Name: "test", Version: "0.0.1"},
		Connection: ConnectionConfig{Kind: KindTrino}, // missing host/user
	}

	_, err := New(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating query client")
}

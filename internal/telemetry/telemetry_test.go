package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{Endpoint: "  "})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetupWithEndpoint(t *testing.T) {
	ctx := context.Background()
	// the exporter connects lazily, so no collector is needed
	shutdown, err := Setup(ctx, Config{Endpoint: "127.0.0.1:1", ServiceVersion: "test"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(ctx)
	cancel()
	// nothing was recorded, so flushing has nothing to send
	_ = shutdown(ctx)
}

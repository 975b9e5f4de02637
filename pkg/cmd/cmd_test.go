package cmd

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dukex/operion-canvas/pkg/clipboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventBus(t *testing.T) {
	t.Parallel()

	bus, err := NewEventBus("gochannel", slog.Default())
	require.NoError(t, err)
	require.NotNil(t, bus)
	assert.NotEmpty(t, bus.GenerateID())
	require.NoError(t, bus.Close())

	_, err = NewEventBus("rabbitmq", slog.Default())
	assert.Error(t, err)
}

func TestNewClipboard(t *testing.T) {
	t.Parallel()

	store, err := NewClipboard(context.Background(), "", time.Hour)
	require.NoError(t, err)
	assert.IsType(t, &clipboard.MemoryStore{}, store)

	_, err = NewClipboard(context.Background(), "ftp://clipboard", time.Hour)
	assert.Error(t, err)
}

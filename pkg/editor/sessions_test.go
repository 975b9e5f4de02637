package editor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dukex/operion-canvas/pkg/config"
	"github.com/dukex/operion-canvas/pkg/graph"
	"github.com/dukex/operion-canvas/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances by a second on every reading.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(time.Second)

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func newTestSessions(t *testing.T, cfg config.SessionsConfig) (*Sessions, *fakeClock) {
	t.Helper()

	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}

	sessions := NewSessions(cfg, func(id string) *Canvas {
		return newTestCanvasWithID(id)
	})
	sessions.now = clock.Now

	return sessions, clock
}

func newTestCanvasWithID(id string) *Canvas {
	return NewCanvas(id, WithIDGenerator(sequentialIDs()))
}

func TestSessions_CreateAndWith(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sessions, _ := newTestSessions(t, config.Default().Sessions)

	state := testutil.CreateTestChain("a", "b")

	cv, err := sessions.Create(ctx, &state)
	require.NoError(t, err)
	assert.NotEmpty(t, cv.ID())
	assert.Equal(t, 1, sessions.Len())

	err = sessions.With(cv.ID(), func(c *Canvas) error {
		assert.Same(t, cv, c)

		return c.DeleteNodes(ctx, "a")
	})
	require.NoError(t, err)

	assert.Len(t, cv.State().Nodes, 1)

	err = sessions.With("missing", func(*Canvas) error { return nil })
	assert.ErrorIs(t, err, ErrCanvasNotFound)
	assert.True(t, IsNotFound(err))

	assert.True(t, sessions.Delete(cv.ID()))
	assert.False(t, sessions.Delete(cv.ID()))
	assert.Equal(t, 0, sessions.Len())
}

func TestSessions_CreateInvalidState(t *testing.T) {
	t.Parallel()

	sessions, _ := newTestSessions(t, config.Default().Sessions)

	state := graph.State{Nodes: testutil.CreateTestState("a", "a").Nodes}

	_, err := sessions.Create(context.Background(), &state)
	assert.True(t, IsInvalid(err))
	assert.Equal(t, 0, sessions.Len())
}

func TestSessions_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := config.Default().Sessions
	cfg.MaxSessions = 2

	sessions, _ := newTestSessions(t, cfg)

	first, err := sessions.Create(ctx, nil)
	require.NoError(t, err)

	second, err := sessions.Create(ctx, nil)
	require.NoError(t, err)

	require.NoError(t, sessions.With(first.ID(), func(*Canvas) error { return nil }))

	third, err := sessions.Create(ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, sessions.Len())
	assert.ErrorIs(t, sessions.With(second.ID(), func(*Canvas) error { return nil }), ErrCanvasNotFound)

	ids := make([]string, 0, 2)
	for _, info := range sessions.List() {
		ids = append(ids, info.ID)
	}

	assert.Equal(t, []string{third.ID(), first.ID()}, ids)
}

func TestSessions_Cleanup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := config.Default().Sessions
	cfg.TTL = time.Hour

	sessions, clock := newTestSessions(t, cfg)

	idle, err := sessions.Create(ctx, nil)
	require.NoError(t, err)

	active, err := sessions.Create(ctx, nil)
	require.NoError(t, err)

	clock.Advance(45 * time.Minute)
	require.NoError(t, sessions.With(active.ID(), func(*Canvas) error { return nil }))
	clock.Advance(30 * time.Minute)

	assert.Equal(t, 1, sessions.Cleanup())
	assert.Equal(t, 1, sessions.Len())
	assert.ErrorIs(t, sessions.With(idle.ID(), func(*Canvas) error { return nil }), ErrCanvasNotFound)
	assert.NoError(t, sessions.With(active.ID(), func(*Canvas) error { return nil }))
}

func TestSessions_CleanupWithoutTTL(t *testing.T) {
	t.Parallel()

	cfg := config.Default().Sessions
	cfg.TTL = 0

	sessions, clock := newTestSessions(t, cfg)

	_, err := sessions.Create(context.Background(), nil)
	require.NoError(t, err)

	clock.Advance(24 * time.Hour)
	assert.Equal(t, 0, sessions.Cleanup())
	assert.Equal(t, 1, sessions.Len())
}

func TestSessions_StartStop(t *testing.T) {
	t.Parallel()

	cfg := config.Default().Sessions
	cfg.SweepSchedule = "not a schedule"

	sessions, _ := newTestSessions(t, cfg)
	assert.Error(t, sessions.Start())

	cfg.SweepSchedule = "@every 1h"
	sessions, _ = newTestSessions(t, cfg)
	require.NoError(t, sessions.Start())
	sessions.Stop()
}

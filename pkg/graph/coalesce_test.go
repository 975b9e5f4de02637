package graph_test

import (
	"testing"

	"github.com/dukex/operion-canvas/pkg/graph"
	"github.com/dukex/operion-canvas/pkg/models"
	"github.com/dukex/operion-canvas/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run builds and applies commands one after the other, as a gesture does.
func run(t *testing.T, s *graph.Store, builders ...func(s *graph.Store) (graph.Command, error)) []graph.Command {
	t.Helper()

	cmds := make([]graph.Command, 0, len(builders))

	for _, build := range builders {
		cmd, err := build(s)
		require.NoError(t, err)
		require.NoError(t, s.ApplyForward(cmd))

		cmds = append(cmds, cmd)
	}

	return cmds
}

func move(id string, x, y int) func(s *graph.Store) (graph.Command, error) {
	return func(s *graph.Store) (graph.Command, error) {
		return graph.NewMoveNode(s, id, models.Position{X: x, Y: y})
	}
}

func rename(id, name string) func(s *graph.Store) (graph.Command, error) {
	return func(s *graph.Store) (graph.Command, error) {
		return graph.NewRenameNode(s, id, name)
	}
}

func toggle(id string, disabled bool) func(s *graph.Store) (graph.Command, error) {
	return func(s *graph.Store) (graph.Command, error) {
		return graph.NewToggleDisabled(s, id, disabled)
	}
}

func TestCompact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		builders []func(s *graph.Store) (graph.Command, error)
		expected []string
	}{
		{
			name:     "drag folds into one move",
			builders: []func(s *graph.Store) (graph.Command, error){move("a", 500, 250), move("a", 600, 300), move("a", 740, 320)},
			expected: []string{"move node a (420,220) -> (740,320)"},
		},
		{
			name:     "multi node drag keeps one move per node",
			builders: []func(s *graph.Store) (graph.Command, error){move("a", 430, 230), move("b", 650, 230), move("a", 440, 240), move("b", 660, 240)},
			expected: []string{"move node a (420,220) -> (440,240)", "move node b (640,220) -> (660,240)"},
		},
		{
			name:     "move back to start is dropped",
			builders: []func(s *graph.Store) (graph.Command, error){move("a", 500, 250), move("a", 420, 220)},
			expected: []string{},
		},
		{
			name:     "adjacent renames fold",
			builders: []func(s *graph.Store) (graph.Command, error){rename("a", "Some"), rename("a", "Something else")},
			expected: []string{`rename node a "a" -> "Something else"`},
		},
		{
			name:     "renames separated by another command stay apart",
			builders: []func(s *graph.Store) (graph.Command, error){rename("a", "x"), rename("b", "a"), rename("a", "y")},
			expected: []string{`rename node a "a" -> "x"`, `rename node b "b" -> "a"`, `rename node a "x" -> "y"`},
		},
		{
			name:     "toggle twice is dropped",
			builders: []func(s *graph.Store) (graph.Command, error){toggle("a", true), toggle("a", false)},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := testutil.CreateTestStore(testutil.CreateTestState("a", "b"))
			before := store.State()

			cmds := run(t, store, tt.builders...)
			after := store.State()

			compacted := graph.Compact(cmds)

			got := make([]string, 0, len(compacted))
			for _, cmd := range compacted {
				got = append(got, cmd.String())
			}

			assert.Equal(t, tt.expected, got)

			// The compacted commands have the same net effect.
			for i := len(compacted) - 1; i >= 0; i-- {
				require.NoError(t, store.ApplyInverse(compacted[i]))
			}

			assert.True(t, before.Equal(store.State()))

			for _, cmd := range compacted {
				require.NoError(t, store.ApplyForward(cmd))
			}

			assert.True(t, after.Equal(store.State()))
		})
	}
}

func TestCoalesce_DifferentNodes(t *testing.T) {
	t.Parallel()

	store := testutil.CreateTestStore(testutil.CreateTestState("a", "b"))
	cmds := run(t, store, move("a", 1, 1), move("b", 2, 2))

	_, ok := graph.Coalesce(cmds[0], cmds[1])
	assert.False(t, ok)
	assert.False(t, graph.IsNoop(cmds[0]))
}

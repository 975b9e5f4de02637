package history

import (
	"errors"
	"testing"

	"github.com/dukex/operion-canvas/pkg/graph"
	"github.com/dukex/operion-canvas/pkg/models"
	"github.com/dukex/operion-canvas/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addNodeCmd(t *testing.T, s *graph.Store, id string) graph.Command {
	t.Helper()

	cmd, err := graph.NewAddNode(s, testutil.CreateTestNode(testutil.WithID(id), testutil.WithName(id)))
	require.NoError(t, err)

	return cmd
}

func moveCmd(t *testing.T, s *graph.Store, id string, x, y int) graph.Command {
	t.Helper()

	cmd, err := graph.NewMoveNode(s, id, models.Position{X: x, Y: y})
	require.NoError(t, err)

	return cmd
}

// applied builds each command against the store and applies it right away.
func applied(t *testing.T, s *graph.Store, builders ...func() graph.Command) []graph.Command {
	t.Helper()

	cmds := make([]graph.Command, 0, len(builders))
	for _, build := range builders {
		cmd := build()
		require.NoError(t, s.ApplyForward(cmd))
		cmds = append(cmds, cmd)
	}

	return cmds
}

func TestNewEntry(t *testing.T) {
	t.Parallel()

	store := testutil.CreateTestStore(testutil.CreateTestState("a"))

	assert.Nil(t, NewEntry("empty", nil))

	single := NewEntry("one", []graph.Command{moveCmd(t, store, "a", 1, 1)})
	assert.IsType(t, &Single{}, single)
	assert.Equal(t, "one", single.Label())
	assert.Len(t, single.Commands(), 1)

	bulk := NewEntry("two", []graph.Command{moveCmd(t, store, "a", 1, 1), addNodeCmd(t, store, "b")})
	require.IsType(t, &Bulk{}, bulk)
	assert.Equal(t, 2, bulk.(*Bulk).Len())
}

func TestBulk_RevertRunsInReverseOrder(t *testing.T) {
	t.Parallel()

	store := testutil.CreateTestStore(testutil.CreateTestState("a"))
	before := store.State()

	// The node can only be removed after its connection is gone.
	cmds := applied(t, store,
		func() graph.Command { return addNodeCmd(t, store, "x") },
		func() graph.Command {
			cmd, err := graph.NewAddConnection(store, models.Connect("a", "x"))
			require.NoError(t, err)

			return cmd
		},
	)

	bulk := NewBulk("add connected node", cmds...)
	after := store.State()

	require.NoError(t, bulk.Revert(store))
	assert.True(t, before.Equal(store.State()))

	require.NoError(t, bulk.Apply(store))
	assert.True(t, after.Equal(store.State()))
}

func TestBulk_ApplyFailureRollsBack(t *testing.T) {
	t.Parallel()

	store := testutil.CreateTestStore(testutil.CreateTestState("a"))

	cmds := applied(t, store,
		func() graph.Command { return addNodeCmd(t, store, "x") },
		func() graph.Command { return addNodeCmd(t, store, "y") },
	)
	bulk := NewBulk("add two", cmds...)
	require.NoError(t, bulk.Revert(store))

	// Something outside history takes the id of the second node.
	require.NoError(t, store.ApplyForward(addNodeCmd(t, store, "y")))
	before := store.State()

	err := bulk.Apply(store)
	require.Error(t, err)
	assert.True(t, graph.IsInvalidCommand(err))
	assert.True(t, before.Equal(store.State()), "no member of a failed bulk may stay applied")
}

func TestBulk_RevertFailureRollsBack(t *testing.T) {
	t.Parallel()

	store := testutil.CreateTestStore(testutil.CreateTestState("a"))

	cmds := applied(t, store,
		func() graph.Command { return moveCmd(t, store, "a", 740, 320) },
		func() graph.Command { return addNodeCmd(t, store, "x") },
	)
	bulk := NewBulk("move and add", cmds...)

	// Something outside history moves the node again.
	require.NoError(t, store.ApplyForward(moveCmd(t, store, "a", 0, 0)))
	before := store.State()

	err := bulk.Revert(store)
	require.Error(t, err)
	assert.True(t, graph.IsInconsistentHistory(err))
	assert.True(t, before.Equal(store.State()))
	assert.True(t, store.HasNode("x"))
}

func TestRollbackError(t *testing.T) {
	t.Parallel()

	cause := errors.New("cause")
	rollback := errors.New("rollback")

	err := error(&RollbackError{Cause: cause, Rollback: rollback})

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, rollback)
	assert.ErrorIs(t, err, ErrInconsistentHistory)
	assert.Contains(t, err.Error(), "rollback failed")
}

package history

import (
	"errors"
	"testing"

	"github.com/dukex/operion-canvas/pkg/graph"
	"github.com/dukex/operion-canvas/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_CommitGroupsGesture(t *testing.T) {
	t.Parallel()

	store, stack, recorder := newTestStack(t, 0, "a")
	before := store.State()

	entry, err := recorder.Record("add connected node", func(tx *Transaction) error {
		if err := tx.Execute(addNodeCmd(t, tx.Store(), "b")); err != nil {
			return err
		}

		conn, err := graph.NewAddConnection(tx.Store(), models.Connect("a", "b"))
		if err != nil {
			return err
		}

		return tx.Execute(conn)
	})
	require.NoError(t, err)
	require.IsType(t, &Bulk{}, entry)
	assert.Equal(t, 1, stack.UndoDepth())

	_, err = stack.Undo()
	require.NoError(t, err)
	assert.True(t, before.Equal(store.State()))
}

func TestRecorder_LivePreview(t *testing.T) {
	t.Parallel()

	store, stack, recorder := newTestStack(t, 0, "a")

	tx, err := recorder.Begin("drag")
	require.NoError(t, err)
	assert.True(t, recorder.IsOpen())

	require.NoError(t, tx.Execute(moveCmd(t, store, "a", 500, 250)))

	node, _ := store.Node("a")
	assert.Equal(t, models.Position{X: 500, Y: 250}, node.Position, "changes are visible before commit")
	assert.Equal(t, 0, stack.UndoDepth())

	require.NoError(t, tx.Execute(moveCmd(t, store, "a", 740, 320)))

	entry, err := tx.Commit()
	require.NoError(t, err)
	require.IsType(t, &Single{}, entry)
	assert.Equal(t, "move node a (420,220) -> (740,320)", entry.Commands()[0].String())
	assert.False(t, recorder.IsOpen())
}

func TestRecorder_EmptyCommitKeepsRedo(t *testing.T) {
	t.Parallel()

	_, stack, recorder := newTestStack(t, 0, "a")
	recordMove(t, recorder, "a", 1, 1)

	_, err := stack.Undo()
	require.NoError(t, err)

	entry, err := recorder.Record("nothing", func(*Transaction) error { return nil })
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.True(t, stack.CanRedo())

	// A gesture whose changes cancel out records nothing either.
	entry, err = recorder.Record("there and back", func(tx *Transaction) error {
		if err := tx.Execute(moveCmd(t, tx.Store(), "a", 9, 9)); err != nil {
			return err
		}

		return tx.Execute(moveCmd(t, tx.Store(), "a", 420, 220))
	})
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.True(t, stack.CanRedo())
}

func TestRecorder_AbandonRevertsEverything(t *testing.T) {
	t.Parallel()

	store, stack, recorder := newTestStack(t, 0, "a")
	before := store.State()

	tx, err := recorder.Begin("rename")
	require.NoError(t, err)

	rename, err := graph.NewRenameNode(store, "a", "Something else")
	require.NoError(t, err)
	require.NoError(t, tx.Execute(rename))
	require.NoError(t, tx.Execute(addNodeCmd(t, store, "b")))

	require.NoError(t, tx.Abandon())
	assert.True(t, before.Equal(store.State()))
	assert.Equal(t, 0, stack.UndoDepth())

	assert.ErrorIs(t, tx.Execute(moveCmd(t, store, "a", 1, 1)), ErrTransactionClosed)

	_, err = tx.Commit()
	assert.ErrorIs(t, err, ErrTransactionClosed)
}

func TestRecorder_FailedGestureIsAbandoned(t *testing.T) {
	t.Parallel()

	store, stack, recorder := newTestStack(t, 0, "a")
	before := store.State()

	boom := errors.New("boom")

	_, err := recorder.Record("fails", func(tx *Transaction) error {
		if err := tx.Execute(addNodeCmd(t, tx.Store(), "b")); err != nil {
			return err
		}

		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.True(t, before.Equal(store.State()))
	assert.Equal(t, 0, stack.UndoDepth())
	assert.False(t, recorder.IsOpen())
}

func TestRecorder_RejectsConcurrentBegin(t *testing.T) {
	t.Parallel()

	_, _, recorder := newTestStack(t, 0, "a")

	tx, err := recorder.Begin("rename")
	require.NoError(t, err)

	_, err = recorder.Begin("move")
	assert.True(t, IsRecorderConflict(err))

	active, ok := recorder.Active()
	require.True(t, ok)
	assert.Equal(t, tx, active)
	assert.Equal(t, "rename", active.Label())

	_, err = tx.Commit()
	require.NoError(t, err)

	_, err = recorder.Begin("move")
	assert.NoError(t, err)
}

func TestTransaction_RefusedCommandIsNotRecorded(t *testing.T) {
	t.Parallel()

	store, _, recorder := newTestStack(t, 0, "a", "b")

	tx, err := recorder.Begin("connect")
	require.NoError(t, err)

	conn, err := graph.NewAddConnection(store, models.Connect("a", "b"))
	require.NoError(t, err)
	require.NoError(t, tx.Execute(conn))

	err = tx.Execute(conn)
	assert.True(t, graph.IsInvalidCommand(err))
	assert.Equal(t, 1, tx.Len())
}

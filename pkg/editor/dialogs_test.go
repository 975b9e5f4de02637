package editor

import (
	"context"
	"testing"

	"github.com/dukex/operion-canvas/pkg/events"
	"github.com/dukex/operion-canvas/pkg/graph"
	"github.com/dukex/operion-canvas/pkg/history"
	"github.com/dukex/operion-canvas/pkg/models"
	"github.com/dukex/operion-canvas/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeDetails_RenameAcrossSteps(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	log := &renderLog{}
	cv := newTestCanvas(t, WithRenderer(log.render))

	_, err := cv.AddNode(ctx, AddNodeRequest{Type: triggerType})
	require.NoError(t, err)

	code, err := cv.AddNode(ctx, AddNodeRequest{Type: testutil.CodeType})
	require.NoError(t, err)
	require.Equal(t, "Code", code.Name)

	details, err := cv.OpenNodeDetails(code.ID)
	require.NoError(t, err)
	assert.Equal(t, code.ID, details.NodeID())

	active, ok := cv.ActiveNodeDetails()
	require.True(t, ok)
	assert.Same(t, details, active)

	require.NoError(t, details.Rename(ctx, "Something"))
	require.NoError(t, details.Rename(ctx, "Something else"))

	_, ok = cv.NodeByName("Something else")
	assert.True(t, ok, "the rename is visible while the view is open")
	assert.Equal(t, events.PreviewChangedEvent, log.last().Type)

	_, err = cv.Undo(ctx)
	assert.ErrorIs(t, err, history.ErrRecorderConflict)

	_, err = cv.AddNode(ctx, AddNodeRequest{Type: setType})
	assert.True(t, IsConflict(err))

	entry, err := details.Close(ctx)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "Edit node", entry.Label())

	rename, ok := entry.Commands()[0].(*graph.RenameNode)
	require.True(t, ok)
	assert.Equal(t, "Code", rename.From())
	assert.Equal(t, "Something else", rename.To())
	assert.Equal(t, events.HistoryCommittedEvent, log.last().Type)

	_, ok = cv.ActiveNodeDetails()
	assert.False(t, ok)

	_, err = cv.Undo(ctx)
	require.NoError(t, err)

	_, ok = cv.NodeByName("Code")
	assert.True(t, ok)

	_, ok = cv.NodeByName("Something else")
	assert.False(t, ok)
}

func TestNodeDetails_EditsBecomeOneEntry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cv := loadedCanvas(t, testutil.CreateTestState("a"))
	before := cv.State()

	details, err := cv.OpenNodeDetails("a")
	require.NoError(t, err)

	require.NoError(t, details.Rename(ctx, "b"))
	require.NoError(t, details.SetDisabled(ctx, true))

	entry, err := details.Close(ctx)
	require.NoError(t, err)
	assert.Len(t, entry.Commands(), 2)
	assert.Equal(t, []string{"Edit node"}, cv.History().Undo)

	_, err = cv.Undo(ctx)
	require.NoError(t, err)
	assert.True(t, before.Equal(cv.State()))
}

func TestNodeDetails_Cancel(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cv := loadedCanvas(t, testutil.CreateTestState("a", "b"))

	require.NoError(t, cv.RenameNode(ctx, "b", "kept"))
	_, err := cv.Undo(ctx)
	require.NoError(t, err)

	before := cv.State()

	details, err := cv.OpenNodeDetails("a")
	require.NoError(t, err)

	require.NoError(t, details.Rename(ctx, "temporary"))
	require.NoError(t, details.SetDisabled(ctx, true))
	require.NoError(t, details.Cancel(ctx))

	assert.True(t, before.Equal(cv.State()))
	assert.Equal(t, []string{"Rename node"}, cv.History().Redo, "cancelling keeps the redo stack")

	assert.ErrorIs(t, details.Rename(ctx, "again"), ErrDialogClosed)

	_, err = details.Close(ctx)
	assert.ErrorIs(t, err, ErrDialogClosed)
}

func TestNodeDetails_CloseWithoutChanges(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cv := loadedCanvas(t, testutil.CreateTestState("a"))

	details, err := cv.OpenNodeDetails("a")
	require.NoError(t, err)

	require.NoError(t, details.Rename(ctx, "b"))
	require.NoError(t, details.Rename(ctx, "a"))

	entry, err := details.Close(ctx)
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.False(t, cv.History().CanUndo)
}

func TestNodeDetails_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cv := loadedCanvas(t, testutil.CreateTestState("a", "b"))

	_, err := cv.OpenNodeDetails("missing")
	assert.True(t, IsNotFound(err))

	details, err := cv.OpenNodeDetails("a")
	require.NoError(t, err)

	_, err = cv.OpenNodeDetails("b")
	assert.True(t, IsConflict(err))

	err = details.Rename(ctx, "b")
	assert.ErrorIs(t, err, graph.ErrNameTaken)

	// The view stays open after a refused edit.
	require.NoError(t, details.Rename(ctx, "c"))

	_, err = details.Close(ctx)
	require.NoError(t, err)
}

func TestDrag(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cv := loadedCanvas(t, testutil.CreateTestChain("a", "b"))

	drag, err := cv.BeginDrag("b", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, drag.NodeIDs())

	for range 4 {
		require.NoError(t, drag.MoveBy(ctx, 25, 25))
	}

	b, _ := cv.Node("b")
	assert.Equal(t, models.Position{X: 740, Y: 320}, b.Position)

	_, err = cv.Redo(ctx)
	assert.True(t, IsConflict(err))

	entry, err := drag.Finish(ctx)
	require.NoError(t, err)
	require.Len(t, entry.Commands(), 2, "one move per node")

	move, ok := entry.Commands()[1].(*graph.MoveNode)
	require.True(t, ok)
	assert.Equal(t, models.Position{X: 640, Y: 220}, move.From())
	assert.Equal(t, models.Position{X: 740, Y: 320}, move.To())

	_, err = cv.Undo(ctx)
	require.NoError(t, err)

	b, _ = cv.Node("b")
	assert.Equal(t, models.Position{X: 640, Y: 220}, b.Position)

	_, err = cv.Redo(ctx)
	require.NoError(t, err)

	b, _ = cv.Node("b")
	assert.Equal(t, models.Position{X: 740, Y: 320}, b.Position)
}

func TestDrag_Cancel(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cv := loadedCanvas(t, testutil.CreateTestState("a"))
	before := cv.State()

	drag, err := cv.BeginDrag("a")
	require.NoError(t, err)
	require.NoError(t, drag.MoveBy(ctx, 100, 0))
	require.NoError(t, drag.Cancel(ctx))

	assert.True(t, before.Equal(cv.State()))
	assert.False(t, cv.History().CanUndo)

	_, ok := cv.ActiveDrag()
	assert.False(t, ok)

	assert.ErrorIs(t, drag.MoveBy(ctx, 1, 1), ErrDialogClosed)
}

func TestDrag_Errors(t *testing.T) {
	t.Parallel()

	cv := loadedCanvas(t, testutil.CreateTestState("a"))

	_, err := cv.BeginDrag()
	assert.ErrorIs(t, err, ErrEmptySelection)

	_, err = cv.BeginDrag("a", "missing")
	assert.True(t, IsNotFound(err))

	_, ok := cv.ActiveDrag()
	assert.False(t, ok)
	assert.False(t, cv.History().CanUndo)
}

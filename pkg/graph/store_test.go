package graph_test

import (
	"testing"

	"github.com/dukex/operion-canvas/pkg/graph"
	"github.com/dukex/operion-canvas/pkg/models"
	"github.com/dukex/operion-canvas/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Load(t *testing.T) {
	t.Parallel()

	state := testutil.CreateTestChain("a", "b", "c")
	store := graph.NewStore()

	require.NoError(t, store.Load(state))
	assert.Equal(t, 3, store.NodeCount())
	assert.Equal(t, 2, store.ConnectionCount())
	assert.Equal(t, []string{"a", "b", "c"}, store.NodeIDs())
	assert.True(t, state.Equal(store.State()))
}

func TestStore_LoadRejectsInvalidState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*graph.State)
		expected error
	}{
		{
			name: "duplicate id",
			mutate: func(s *graph.State) {
				s.Nodes[1].ID = "a"
			},
			expected: graph.ErrNodeExists,
		},
		{
			name: "duplicate name",
			mutate: func(s *graph.State) {
				s.Nodes[1].Name = "a"
			},
			expected: graph.ErrNameTaken,
		},
		{
			name: "dangling connection",
			mutate: func(s *graph.State) {
				s.Connections = append(s.Connections, models.Connect("a", "missing"))
			},
			expected: graph.ErrNodeNotFound,
		},
		{
			name: "duplicate connection",
			mutate: func(s *graph.State) {
				s.Connections = append(s.Connections, models.Connect("a", "b"))
			},
			expected: graph.ErrConnectionExists,
		},
		{
			name: "self connection",
			mutate: func(s *graph.State) {
				s.Connections = append(s.Connections, models.Connect("a", "a"))
			},
			expected: graph.ErrSelfConnection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := testutil.CreateTestStore(testutil.CreateTestState("x"))
			before := store.State()

			state := testutil.CreateTestChain("a", "b")
			tt.mutate(&state)

			err := store.Load(state)
			require.ErrorIs(t, err, tt.expected)
			assert.True(t, before.Equal(store.State()), "store must be unchanged")
		})
	}
}

func TestStore_StateIsDeepCopy(t *testing.T) {
	t.Parallel()

	store := testutil.CreateTestStore(testutil.CreateTestState("a"))

	state := store.State()
	state.Nodes[0].Name = "changed"
	state.Nodes[0].Parameters["jsCode"] = "changed"

	node, ok := store.Node("a")
	require.True(t, ok)
	assert.Equal(t, "a", node.Name)
	assert.Equal(t, "return items;", node.Parameters["jsCode"])
	assert.NotNil(t, graph.NewStore().State().Connections)
}

func TestStore_Queries(t *testing.T) {
	t.Parallel()

	store := testutil.CreateTestStore(testutil.CreateTestChain("a", "b", "c"))

	assert.True(t, store.HasNode("b"))
	assert.False(t, store.HasNode("z"))
	assert.True(t, store.HasName("c"))

	node, ok := store.NodeByName("b")
	require.True(t, ok)
	assert.Equal(t, "b", node.ID)

	assert.Equal(t, []models.Connection{models.Connect("a", "b")}, store.Incoming("b"))
	assert.Equal(t, []models.Connection{models.Connect("b", "c")}, store.Outgoing("b"))
	assert.Len(t, store.ConnectionsOf("b"), 2)
	assert.True(t, store.HasConnection(models.Connect("a", "b")))
	assert.False(t, store.HasConnection(models.Connect("a", "c")))
}

func TestStore_ApplyNilCommand(t *testing.T) {
	t.Parallel()

	store := graph.NewStore()

	err := store.ApplyForward(nil)
	assert.True(t, graph.IsInvalidCommand(err))

	err = store.ApplyInverse(nil)
	assert.True(t, graph.IsInconsistentHistory(err))
}

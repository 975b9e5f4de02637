package models

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPosition(t *testing.T) {
	t.Parallel()

	p := Position{X: 420, Y: 220}

	assert.Equal(t, Position{X: 640, Y: 200}, p.Add(Position{X: 220, Y: -20}))
	assert.Equal(t, "(420,220)", p.String())
	assert.Equal(t, Position{X: 420, Y: 220}, p, "Add must not modify the receiver")
}

func TestNode_Clone(t *testing.T) {
	t.Parallel()

	node := &Node{
		ID:       "a",
		Type:     "code",
		Name:     "Code",
		Position: Position{X: 1, Y: 2},
		Parameters: map[string]any{
			"mode":    "runOnceForAllItems",
			"options": map[string]any{"retries": 3},
			"items":   []any{"x", map[string]any{"y": 1}},
			"tags":    []string{"one"},
		},
	}

	clone := node.Clone()
	require.Equal(t, node, clone)

	clone.Name = "Other"
	clone.Parameters["mode"] = "runOnceForEachItem"
	clone.Parameters["options"].(map[string]any)["retries"] = 5
	clone.Parameters["items"].([]any)[1].(map[string]any)["y"] = 2
	clone.Parameters["tags"].([]string)[0] = "two"

	assert.Equal(t, "Code", node.Name)
	assert.Equal(t, "runOnceForAllItems", node.Parameters["mode"])
	assert.Equal(t, 3, node.Parameters["options"].(map[string]any)["retries"])
	assert.Equal(t, 1, node.Parameters["items"].([]any)[1].(map[string]any)["y"])
	assert.Equal(t, "one", node.Parameters["tags"].([]string)[0])
}

func TestNode_CloneNil(t *testing.T) {
	t.Parallel()

	var node *Node

	assert.Nil(t, node.Clone())
	assert.Nil(t, (&Node{ID: "a"}).Clone().Parameters)
}

func TestNode_Validation(t *testing.T) {
	t.Parallel()

	validate := validator.New()

	testCases := []struct {
		name    string
		node    Node
		wantErr bool
	}{
		{name: "valid", node: Node{ID: "a", Type: "code", Name: "Code"}},
		{name: "missing id", node: Node{Type: "code", Name: "Code"}, wantErr: true},
		{name: "missing type", node: Node{ID: "a", Name: "Code"}, wantErr: true},
		{name: "missing name", node: Node{ID: "a", Type: "code"}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := validate.Struct(tc.node)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewNodeID(t *testing.T) {
	t.Parallel()

	first, second := NewNodeID(), NewNodeID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

func TestConnection(t *testing.T) {
	t.Parallel()

	conn := Connect("a", "b")

	assert.Equal(t, Connection{SourceNodeID: "a", TargetNodeID: "b"}, conn)
	assert.Equal(t, "a:0->b:0", conn.String())
	assert.True(t, conn.Touches("a"))
	assert.True(t, conn.Touches("b"))
	assert.False(t, conn.Touches("c"))

	conn.SourceOutputIndex = 1
	assert.NotEqual(t, Connect("a", "b"), conn)
	assert.Equal(t, "a:1->b:0", conn.String())
}

func TestConnection_Validation(t *testing.T) {
	t.Parallel()

	validate := validator.New()

	assert.NoError(t, validate.Struct(Connect("a", "b")))
	assert.Error(t, validate.Struct(Connection{TargetNodeID: "b"}))
	assert.Error(t, validate.Struct(Connection{SourceNodeID: "a", TargetNodeID: "b", TargetInputIndex: -1}))
}

// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"github.com/dukex/operion-canvas/pkg/graph"
	"github.com/dukex/operion-canvas/pkg/models"
	"github.com/google/uuid"
)

const CodeType = "n8n-nodes-base.code"

// CreateTestNode creates a test Node with default values that can be overridden.
func CreateTestNode(overrides ...func(*models.Node)) *models.Node {
	node := &models.Node{
		ID:         uuid.New().String(),
		Type:       CodeType,
		Name:       "Test Node",
		Position:   models.Position{X: 420, Y: 220},
		Parameters: map[string]any{"jsCode": "return items;"},
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithTriggerNode configures the node as a schedule trigger.
func WithTriggerNode() func(*models.Node) {
	return func(n *models.Node) {
		n.Type = "n8n-nodes-base.scheduleTrigger"
		n.Name = "Schedule Trigger"
		n.Parameters = map[string]any{
			"rule": map[string]any{"interval": []any{map[string]any{"field": "hours"}}},
		}
	}
}

// WithParameters sets the node parameters.
func WithParameters(params map[string]any) func(*models.Node) {
	return func(n *models.Node) {
		n.Parameters = params
	}
}

// WithName sets the node name.
func WithName(name string) func(*models.Node) {
	return func(n *models.Node) {
		n.Name = name
	}
}

// WithPosition sets the node position.
func WithPosition(x, y int) func(*models.Node) {
	return func(n *models.Node) {
		n.Position = models.Position{X: x, Y: y}
	}
}

// WithDisabled sets the node disabled flag.
func WithDisabled(disabled bool) func(*models.Node) {
	return func(n *models.Node) {
		n.Disabled = disabled
	}
}

// WithType sets the node type.
func WithType(nodeType string) func(*models.Node) {
	return func(n *models.Node) {
		n.Type = nodeType
	}
}

// WithID sets the node ID.
func WithID(id string) func(*models.Node) {
	return func(n *models.Node) {
		n.ID = id
	}
}

// CreateTestState creates a graph state with nodes laid out left to right and
// no connections.
func CreateTestState(names ...string) graph.State {
	state := graph.State{Connections: []models.Connection{}}

	for i, name := range names {
		state.Nodes = append(state.Nodes, *CreateTestNode(
			WithID(name),
			WithName(name),
			WithPosition(420+220*i, 220),
		))
	}

	return state
}

// CreateTestChain creates a state whose nodes are connected one after the
// other: names[0] -> names[1] -> ...
func CreateTestChain(names ...string) graph.State {
	state := CreateTestState(names...)

	for i := 1; i < len(names); i++ {
		state.Connections = append(state.Connections, models.Connect(names[i-1], names[i]))
	}

	return state
}

// CreateTestStore creates a store loaded with state, panicking on invalid
// fixtures.
func CreateTestStore(state graph.State) *graph.Store {
	store := graph.NewStore()
	if err := store.Load(state); err != nil {
		panic(err)
	}

	return store
}

// CreateTestConnection creates a connection between the main ports of two nodes.
func CreateTestConnection(sourceNodeID, targetNodeID string) models.Connection {
	return models.Connect(sourceNodeID, targetNodeID)
}

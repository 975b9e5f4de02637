// Package models defines the workflow graph entities edited on the canvas.
package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Position is the top-left canvas coordinate of a node.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the position translated by the given offset.
func (p Position) Add(offset Position) Position {
	return Position{X: p.X + offset.X, Y: p.Y + offset.Y}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Node represents a node instance placed on the canvas.
type Node struct {
	ID         string         `json:"id"         validate:"required"`
	Type       string         `json:"type"       validate:"required"`
	Name       string         `json:"name"       validate:"required,min=1"`
	Position   Position       `json:"position"`
	Disabled   bool           `json:"disabled"`
	Parameters map[string]any `json:"parameters"`
}

// NewNodeID returns a fresh opaque node identifier.
func NewNodeID() string {
	return uuid.New().String()
}

// Clone returns a deep copy of the node. Parameters are copied recursively so
// the clone never shares maps or slices with the original.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}

	clone := *n
	clone.Parameters = cloneParameters(n.Parameters)

	return &clone
}

func cloneParameters(params map[string]any) map[string]any {
	if params == nil {
		return nil
	}

	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = cloneValue(v)
	}

	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneParameters(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}

		return out
	case []string:
		return append([]string(nil), val...)
	case []float64:
		return append([]float64(nil), val...)
	case []int:
		return append([]int(nil), val...)
	default:
		return val
	}
}

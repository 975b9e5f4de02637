// Package clipboard encodes canvas selections in the workflow clipboard
// format and stores them between copy and paste.
package clipboard

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/dukex/operion-canvas/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// MainConnection is the connection type used for regular data flow.
const MainConnection = "main"

// ErrInvalidSnapshot indicates clipboard data that is not a workflow snapshot.
var ErrInvalidSnapshot = errors.New("invalid clipboard snapshot")

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

// Workflow is a serialized subgraph. Connections are keyed by source node
// name and reference targets by name, so a snapshot is independent of ids.
type Workflow struct {
	Nodes       []Node                     `json:"nodes"`
	Connections map[string]NodeConnections `json:"connections"`
}

// Node is a node descriptor inside a snapshot.
type Node struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	TypeVersion float64        `json:"typeVersion,omitempty"`
	Position    []float64      `json:"position"`
	Parameters  map[string]any `json:"parameters"`
	Disabled    bool           `json:"disabled,omitempty"`
}

// NodeConnections holds the outgoing connections of one node, grouped by
// output index.
type NodeConnections struct {
	Main [][]Target `json:"main"`
}

// Target is the receiving end of a connection.
type Target struct {
	Node  string `json:"node"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// Edge is a connection descriptor resolved from a snapshot, by node name.
type Edge struct {
	SourceName        string
	SourceOutputIndex int
	TargetName        string
	TargetInputIndex  int
}

// FromGraph builds a snapshot of nodes and of the connections whose both
// endpoints are among them.
func FromGraph(nodes []*models.Node, connections []models.Connection) *Workflow {
	wf := &Workflow{
		Nodes:       make([]Node, 0, len(nodes)),
		Connections: make(map[string]NodeConnections),
	}

	names := make(map[string]string, len(nodes))
	for _, n := range nodes {
		params := n.Clone().Parameters
		if params == nil {
			params = map[string]any{}
		}

		names[n.ID] = n.Name
		wf.Nodes = append(wf.Nodes, Node{
			ID:         n.ID,
			Name:       n.Name,
			Type:       n.Type,
			Position:   []float64{float64(n.Position.X), float64(n.Position.Y)},
			Parameters: params,
			Disabled:   n.Disabled,
		})
	}

	for _, c := range connections {
		source, okSource := names[c.SourceNodeID]
		target, okTarget := names[c.TargetNodeID]

		if !okSource || !okTarget {
			continue
		}

		conns := wf.Connections[source]
		for len(conns.Main) <= c.SourceOutputIndex {
			conns.Main = append(conns.Main, []Target{})
		}

		conns.Main[c.SourceOutputIndex] = append(conns.Main[c.SourceOutputIndex], Target{
			Node:  target,
			Type:  MainConnection,
			Index: c.TargetInputIndex,
		})
		wf.Connections[source] = conns
	}

	return wf
}

// Edges returns the snapshot's connections in node order, then output index,
// then recorded order. Connections naming a node missing from the snapshot
// are skipped.
func (w *Workflow) Edges() []Edge {
	known := make(map[string]bool, len(w.Nodes))
	for _, n := range w.Nodes {
		known[n.Name] = true
	}

	var edges []Edge

	for _, n := range w.Nodes {
		conns, ok := w.Connections[n.Name]
		if !ok {
			continue
		}

		for output, targets := range conns.Main {
			for _, t := range targets {
				if !known[t.Node] {
					continue
				}

				edges = append(edges, Edge{
					SourceName:        n.Name,
					SourceOutputIndex: output,
					TargetName:        t.Node,
					TargetInputIndex:  t.Index,
				})
			}
		}
	}

	return edges
}

// NodePosition converts a snapshot position to canvas coordinates.
func (n Node) NodePosition() models.Position {
	if len(n.Position) < 2 {
		return models.Position{}
	}

	return models.Position{X: int(math.Round(n.Position[0])), Y: int(math.Round(n.Position[1]))}
}

// Decode validates data against the snapshot schema and parses it.
func Decode(data []byte) (*Workflow, error) {
	s, err := loadSchema()
	if err != nil {
		return nil, err
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return nil, fmt.Errorf("%w: %s", ErrInvalidSnapshot, strings.Join(details, "; "))
	}

	var wf Workflow
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	if wf.Connections == nil {
		wf.Connections = make(map[string]NodeConnections)
	}

	seen := make(map[string]bool, len(wf.Nodes))
	for _, n := range wf.Nodes {
		if seen[n.Name] {
			return nil, fmt.Errorf("%w: duplicate node name %q", ErrInvalidSnapshot, n.Name)
		}

		seen[n.Name] = true
	}

	return &wf, nil
}

// Encode serializes the snapshot.
func Encode(w *Workflow) ([]byte, error) {
	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return data, nil
}

func loadSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	})

	return schema, schemaErr
}

package models

import "fmt"

// Connection links an output port of one node to an input port of another.
// It is a plain value: two connections with the same ports are the same
// connection.
type Connection struct {
	SourceNodeID      string `json:"source_node_id"      validate:"required"`
	SourceOutputIndex int    `json:"source_output_index" validate:"min=0"`
	TargetNodeID      string `json:"target_node_id"      validate:"required"`
	TargetInputIndex  int    `json:"target_input_index"  validate:"min=0"`
}

// Connect returns the connection between the main output of source and the
// main input of target.
func Connect(sourceID, targetID string) Connection {
	return Connection{SourceNodeID: sourceID, TargetNodeID: targetID}
}

// Touches reports whether either endpoint of the connection is the node.
func (c Connection) Touches(nodeID string) bool {
	return c.SourceNodeID == nodeID || c.TargetNodeID == nodeID
}

func (c Connection) String() string {
	return fmt.Sprintf("%s:%d->%s:%d", c.SourceNodeID, c.SourceOutputIndex, c.TargetNodeID, c.TargetInputIndex)
}

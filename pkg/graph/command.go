package graph

import (
	"fmt"

	"github.com/dukex/operion-canvas/pkg/models"
)

// Kind identifies a command variant.
type Kind string

const (
	KindAddNode          Kind = "add_node"
	KindRemoveNode       Kind = "remove_node"
	KindAddConnection    Kind = "add_connection"
	KindRemoveConnection Kind = "remove_connection"
	KindMoveNode         Kind = "move_node"
	KindRenameNode       Kind = "rename_node"
	KindToggleDisabled   Kind = "toggle_disabled"
	KindDuplicateNode    Kind = "duplicate_node"
)

// Command is an atomic, reversible graph mutation. The set of variants is
// closed: forward and inverse are unexported, so only this package can add
// one, and every variant has to provide both directions.
//
// Everything an inverse needs is captured when the command is constructed,
// from the state the command is about to mutate. Commands are immutable.
type Command interface {
	Kind() Kind
	// NodeIDs lists the nodes the command touches.
	NodeIDs() []string
	String() string

	forward(s *Store) error
	inverse(s *Store) error
}

// AddNode inserts a node.
type AddNode struct {
	node  *models.Node
	index int
}

// NewAddNode captures the insertion of node at the end of the node order.
func NewAddNode(s *Store, node *models.Node) (*AddNode, error) {
	if node == nil {
		return nil, invalid("create", KindAddNode, ErrNilCommand)
	}

	if err := s.checkInsertNode(node); err != nil {
		return nil, invalid("create", KindAddNode, err)
	}

	return &AddNode{node: node.Clone(), index: s.NodeCount()}, nil
}

func (c *AddNode) Kind() Kind             { return KindAddNode }
func (c *AddNode) NodeIDs() []string      { return []string{c.node.ID} }
func (c *AddNode) Node() *models.Node     { return c.node.Clone() }
func (c *AddNode) String() string         { return fmt.Sprintf("add node %s (%s)", c.node.Name, c.node.ID) }
func (c *AddNode) forward(s *Store) error { return insertCaptured(s, c.node, c.index) }
func (c *AddNode) inverse(s *Store) error { return removeCaptured(s, c.node.ID) }

// RemoveNode deletes a node that has no connections left.
type RemoveNode struct {
	node  *models.Node
	index int
}

// NewRemoveNode captures the node with the given id, including its position
// in the node order, so the inverse re-inserts it exactly.
func NewRemoveNode(s *Store, id string) (*RemoveNode, error) {
	if err := s.checkRemoveNode(id); err != nil {
		return nil, invalid("create", KindRemoveNode, err)
	}

	return &RemoveNode{node: s.nodes[id].Clone(), index: s.nodeIndex(id)}, nil
}

func (c *RemoveNode) Kind() Kind         { return KindRemoveNode }
func (c *RemoveNode) NodeIDs() []string  { return []string{c.node.ID} }
func (c *RemoveNode) Node() *models.Node { return c.node.Clone() }
func (c *RemoveNode) String() string {
	return fmt.Sprintf("remove node %s (%s)", c.node.Name, c.node.ID)
}
func (c *RemoveNode) forward(s *Store) error { return removeCaptured(s, c.node.ID) }
func (c *RemoveNode) inverse(s *Store) error { return insertCaptured(s, c.node, c.index) }

// AddConnection inserts a connection.
type AddConnection struct {
	conn  models.Connection
	index int
}

// NewAddConnection captures the insertion of conn at the end of the
// connection list.
func NewAddConnection(s *Store, conn models.Connection) (*AddConnection, error) {
	if err := s.checkInsertConnection(conn); err != nil {
		return nil, invalid("create", KindAddConnection, err)
	}

	return &AddConnection{conn: conn, index: s.ConnectionCount()}, nil
}

func (c *AddConnection) Kind() Kind                    { return KindAddConnection }
func (c *AddConnection) NodeIDs() []string             { return []string{c.conn.SourceNodeID, c.conn.TargetNodeID} }
func (c *AddConnection) Connection() models.Connection { return c.conn }
func (c *AddConnection) String() string                { return "add connection " + c.conn.String() }

func (c *AddConnection) forward(s *Store) error {
	if err := s.checkInsertConnection(c.conn); err != nil {
		return err
	}

	s.insertConnection(c.conn, c.index)

	return nil
}

func (c *AddConnection) inverse(s *Store) error {
	if err := s.checkRemoveConnection(c.conn); err != nil {
		return err
	}

	s.deleteConnection(c.conn)

	return nil
}

// RemoveConnection deletes a connection.
type RemoveConnection struct {
	conn  models.Connection
	index int
}

// NewRemoveConnection captures conn and its position in the connection list.
func NewRemoveConnection(s *Store, conn models.Connection) (*RemoveConnection, error) {
	if err := s.checkRemoveConnection(conn); err != nil {
		return nil, invalid("create", KindRemoveConnection, err)
	}

	return &RemoveConnection{conn: conn, index: s.connectionIndex(conn)}, nil
}

func (c *RemoveConnection) Kind() Kind                    { return KindRemoveConnection }
func (c *RemoveConnection) NodeIDs() []string             { return []string{c.conn.SourceNodeID, c.conn.TargetNodeID} }
func (c *RemoveConnection) Connection() models.Connection { return c.conn }
func (c *RemoveConnection) String() string                { return "remove connection " + c.conn.String() }

func (c *RemoveConnection) forward(s *Store) error {
	if err := s.checkRemoveConnection(c.conn); err != nil {
		return err
	}

	s.deleteConnection(c.conn)

	return nil
}

func (c *RemoveConnection) inverse(s *Store) error {
	if err := s.checkInsertConnection(c.conn); err != nil {
		return err
	}

	s.insertConnection(c.conn, c.index)

	return nil
}

// MoveNode changes a node's position.
type MoveNode struct {
	nodeID   string
	from, to models.Position
}

// NewMoveNode captures the node's current position as the inverse target.
func NewMoveNode(s *Store, id string, to models.Position) (*MoveNode, error) {
	node, err := s.lookup(id)
	if err != nil {
		return nil, invalid("create", KindMoveNode, err)
	}

	return &MoveNode{nodeID: id, from: node.Position, to: to}, nil
}

func (c *MoveNode) Kind() Kind             { return KindMoveNode }
func (c *MoveNode) NodeIDs() []string      { return []string{c.nodeID} }
func (c *MoveNode) From() models.Position  { return c.from }
func (c *MoveNode) To() models.Position    { return c.to }
func (c *MoveNode) String() string         { return fmt.Sprintf("move node %s %s -> %s", c.nodeID, c.from, c.to) }
func (c *MoveNode) forward(s *Store) error { return c.set(s, c.from, c.to) }
func (c *MoveNode) inverse(s *Store) error { return c.set(s, c.to, c.from) }

func (c *MoveNode) set(s *Store, expect, value models.Position) error {
	node, err := s.lookup(c.nodeID)
	if err != nil {
		return err
	}

	if node.Position != expect {
		return fmt.Errorf("%w: node %s is at %s, expected %s", ErrStateMismatch, c.nodeID, node.Position, expect)
	}

	node.Position = value

	return nil
}

// RenameNode changes a node's display name.
type RenameNode struct {
	nodeID   string
	from, to string
}

// NewRenameNode captures the node's current name as the inverse target.
func NewRenameNode(s *Store, id, name string) (*RenameNode, error) {
	node, err := s.lookup(id)
	if err != nil {
		return nil, invalid("create", KindRenameNode, err)
	}

	if name == "" {
		return nil, invalid("create", KindRenameNode, ErrEmptyName)
	}

	if owner, taken := s.names[name]; taken && owner != id {
		return nil, invalid("create", KindRenameNode, fmt.Errorf("%w: %q", ErrNameTaken, name))
	}

	return &RenameNode{nodeID: id, from: node.Name, to: name}, nil
}

func (c *RenameNode) Kind() Kind             { return KindRenameNode }
func (c *RenameNode) NodeIDs() []string      { return []string{c.nodeID} }
func (c *RenameNode) From() string           { return c.from }
func (c *RenameNode) To() string             { return c.to }
func (c *RenameNode) String() string         { return fmt.Sprintf("rename node %s %q -> %q", c.nodeID, c.from, c.to) }
func (c *RenameNode) forward(s *Store) error { return c.set(s, c.from, c.to) }
func (c *RenameNode) inverse(s *Store) error { return c.set(s, c.to, c.from) }

func (c *RenameNode) set(s *Store, expect, value string) error {
	node, err := s.lookup(c.nodeID)
	if err != nil {
		return err
	}

	if node.Name != expect {
		return fmt.Errorf("%w: node %s is named %q, expected %q", ErrStateMismatch, c.nodeID, node.Name, expect)
	}

	if owner, taken := s.names[value]; taken && owner != c.nodeID {
		return fmt.Errorf("%w: %q", ErrNameTaken, value)
	}

	s.renameNode(node, value)

	return nil
}

// ToggleDisabled sets a node's disabled flag.
type ToggleDisabled struct {
	nodeID   string
	from, to bool
}

// NewToggleDisabled captures the node's current flag as the inverse target.
func NewToggleDisabled(s *Store, id string, disabled bool) (*ToggleDisabled, error) {
	node, err := s.lookup(id)
	if err != nil {
		return nil, invalid("create", KindToggleDisabled, err)
	}

	return &ToggleDisabled{nodeID: id, from: node.Disabled, to: disabled}, nil
}

func (c *ToggleDisabled) Kind() Kind             { return KindToggleDisabled }
func (c *ToggleDisabled) NodeIDs() []string      { return []string{c.nodeID} }
func (c *ToggleDisabled) From() bool             { return c.from }
func (c *ToggleDisabled) To() bool               { return c.to }
func (c *ToggleDisabled) String() string         { return fmt.Sprintf("set node %s disabled=%t", c.nodeID, c.to) }
func (c *ToggleDisabled) forward(s *Store) error { return c.set(s, c.from, c.to) }
func (c *ToggleDisabled) inverse(s *Store) error { return c.set(s, c.to, c.from) }

func (c *ToggleDisabled) set(s *Store, expect, value bool) error {
	node, err := s.lookup(c.nodeID)
	if err != nil {
		return err
	}

	if node.Disabled != expect {
		return fmt.Errorf("%w: node %s disabled=%t, expected %t", ErrStateMismatch, c.nodeID, node.Disabled, expect)
	}

	node.Disabled = value

	return nil
}

// DuplicateNode inserts a copy of an existing node under a new id and name.
type DuplicateNode struct {
	sourceID string
	clone    *models.Node
	index    int
}

// NewDuplicateNode clones the source node as it is now: same type, parameters
// and disabled flag, placed at the source position plus offset. The clone is
// captured whole so redo re-creates the exact same node.
func NewDuplicateNode(s *Store, sourceID, newID, name string, offset models.Position) (*DuplicateNode, error) {
	source, err := s.lookup(sourceID)
	if err != nil {
		return nil, invalid("create", KindDuplicateNode, err)
	}

	clone := source.Clone()
	clone.ID = newID
	clone.Name = name
	clone.Position = source.Position.Add(offset)

	if err := s.checkInsertNode(clone); err != nil {
		return nil, invalid("create", KindDuplicateNode, err)
	}

	return &DuplicateNode{sourceID: sourceID, clone: clone, index: s.NodeCount()}, nil
}

func (c *DuplicateNode) Kind() Kind         { return KindDuplicateNode }
func (c *DuplicateNode) NodeIDs() []string  { return []string{c.clone.ID} }
func (c *DuplicateNode) SourceID() string   { return c.sourceID }
func (c *DuplicateNode) Node() *models.Node { return c.clone.Clone() }
func (c *DuplicateNode) String() string {
	return fmt.Sprintf("duplicate node %s as %s (%s)", c.sourceID, c.clone.Name, c.clone.ID)
}

func (c *DuplicateNode) forward(s *Store) error {
	if _, err := s.lookup(c.sourceID); err != nil {
		return fmt.Errorf("duplicate source: %w", err)
	}

	return insertCaptured(s, c.clone, c.index)
}

func (c *DuplicateNode) inverse(s *Store) error { return removeCaptured(s, c.clone.ID) }

func insertCaptured(s *Store, node *models.Node, index int) error {
	if err := s.checkInsertNode(node); err != nil {
		return err
	}

	s.insertNode(node, index)

	return nil
}

func removeCaptured(s *Store, id string) error {
	if err := s.checkRemoveNode(id); err != nil {
		return err
	}

	s.deleteNode(id)

	return nil
}

package graph

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/dukex/operion-canvas/pkg/models"
)

// State is a deep snapshot of the graph in deterministic order.
type State struct {
	Nodes       []models.Node       `json:"nodes"`
	Connections []models.Connection `json:"connections"`
}

// Equal reports whether two snapshots are identical, including order.
func (st State) Equal(other State) bool {
	if len(st.Nodes) != len(other.Nodes) || len(st.Connections) != len(other.Connections) {
		return false
	}

	return reflect.DeepEqual(st.Nodes, other.Nodes) && slices.Equal(st.Connections, other.Connections)
}

// Store is the authoritative in-memory workflow graph. It is mutated only by
// applying commands and is not safe for concurrent use.
type Store struct {
	nodes       map[string]*models.Node
	order       []string
	names       map[string]string // name -> node id
	connections []models.Connection
	connected   map[models.Connection]struct{}
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		nodes:     make(map[string]*models.Node),
		names:     make(map[string]string),
		connected: make(map[models.Connection]struct{}),
	}
}

// Load replaces the whole graph with the given state. The state is validated
// against every invariant before the swap; on error the store is unchanged.
func (s *Store) Load(state State) error {
	next := NewStore()

	for i := range state.Nodes {
		node := state.Nodes[i].Clone()
		if err := next.checkInsertNode(node); err != nil {
			return fmt.Errorf("load node %s: %w", node.ID, err)
		}

		next.insertNode(node, len(next.order))
	}

	for _, c := range state.Connections {
		if err := next.checkInsertConnection(c); err != nil {
			return fmt.Errorf("load connection %s: %w", c, err)
		}

		next.insertConnection(c, len(next.connections))
	}

	*s = *next

	return nil
}

// State returns a deep snapshot of the graph.
func (s *Store) State() State {
	state := State{
		Nodes:       make([]models.Node, 0, len(s.order)),
		Connections: slices.Clone(s.connections),
	}

	for _, id := range s.order {
		state.Nodes = append(state.Nodes, *s.nodes[id].Clone())
	}

	if state.Connections == nil {
		state.Connections = []models.Connection{}
	}

	return state
}

// ApplyForward executes the command's effect. Either the whole command is
// applied or the store is left untouched.
func (s *Store) ApplyForward(cmd Command) error {
	if cmd == nil {
		return invalid("forward", "", ErrNilCommand)
	}

	if err := cmd.forward(s); err != nil {
		return invalid("forward", cmd.Kind(), err)
	}

	return nil
}

// ApplyInverse executes the exact opposite of the command's effect, restoring
// the state that preceded its forward application.
func (s *Store) ApplyInverse(cmd Command) error {
	if cmd == nil {
		return inconsistent("inverse", "", ErrNilCommand)
	}

	if err := cmd.inverse(s); err != nil {
		return inconsistent("inverse", cmd.Kind(), err)
	}

	return nil
}

// Node returns a copy of the node with the given id.
func (s *Store) Node(id string) (*models.Node, bool) {
	node, ok := s.nodes[id]
	if !ok {
		return nil, false
	}

	return node.Clone(), true
}

// NodeByName returns a copy of the node with the given name.
func (s *Store) NodeByName(name string) (*models.Node, bool) {
	id, ok := s.names[name]
	if !ok {
		return nil, false
	}

	return s.Node(id)
}

// HasNode reports whether a node with the id exists.
func (s *Store) HasNode(id string) bool {
	_, ok := s.nodes[id]
	return ok
}

// HasName reports whether a node with the name exists.
func (s *Store) HasName(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Nodes returns copies of all nodes in insertion order.
func (s *Store) Nodes() []*models.Node {
	nodes := make([]*models.Node, 0, len(s.order))
	for _, id := range s.order {
		nodes = append(nodes, s.nodes[id].Clone())
	}

	return nodes
}

// NodeIDs returns all node ids in insertion order.
func (s *Store) NodeIDs() []string {
	return slices.Clone(s.order)
}

// NodeCount returns the number of nodes.
func (s *Store) NodeCount() int {
	return len(s.order)
}

// Connections returns all connections in insertion order.
func (s *Store) Connections() []models.Connection {
	return slices.Clone(s.connections)
}

// ConnectionCount returns the number of connections.
func (s *Store) ConnectionCount() int {
	return len(s.connections)
}

// HasConnection reports whether the connection exists.
func (s *Store) HasConnection(c models.Connection) bool {
	_, ok := s.connected[c]
	return ok
}

// ConnectionsOf returns every connection touching the node.
func (s *Store) ConnectionsOf(nodeID string) []models.Connection {
	var result []models.Connection

	for _, c := range s.connections {
		if c.Touches(nodeID) {
			result = append(result, c)
		}
	}

	return result
}

// Incoming returns the connections ending at the node.
func (s *Store) Incoming(nodeID string) []models.Connection {
	var result []models.Connection

	for _, c := range s.connections {
		if c.TargetNodeID == nodeID {
			result = append(result, c)
		}
	}

	return result
}

// Outgoing returns the connections starting at the node.
func (s *Store) Outgoing(nodeID string) []models.Connection {
	var result []models.Connection

	for _, c := range s.connections {
		if c.SourceNodeID == nodeID {
			result = append(result, c)
		}
	}

	return result
}

func (s *Store) nodeIndex(id string) int {
	return slices.Index(s.order, id)
}

func (s *Store) connectionIndex(c models.Connection) int {
	return slices.Index(s.connections, c)
}

func (s *Store) checkInsertNode(node *models.Node) error {
	switch {
	case node.ID == "":
		return fmt.Errorf("%w: empty id", ErrNodeNotFound)
	case node.Type == "":
		return fmt.Errorf("%w: node %s", ErrMissingType, node.ID)
	case node.Name == "":
		return fmt.Errorf("%w: node %s", ErrEmptyName, node.ID)
	}

	if s.HasNode(node.ID) {
		return fmt.Errorf("%w: %s", ErrNodeExists, node.ID)
	}

	if s.HasName(node.Name) {
		return fmt.Errorf("%w: %q", ErrNameTaken, node.Name)
	}

	return nil
}

func (s *Store) checkRemoveNode(id string) error {
	if !s.HasNode(id) {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}

	for _, c := range s.connections {
		if c.Touches(id) {
			return fmt.Errorf("%w: %s is an endpoint of %s", ErrNodeConnected, id, c)
		}
	}

	return nil
}

func (s *Store) checkInsertConnection(c models.Connection) error {
	switch {
	case c.SourceOutputIndex < 0 || c.TargetInputIndex < 0:
		return fmt.Errorf("%w: %s", ErrInvalidPort, c)
	case c.SourceNodeID == c.TargetNodeID:
		return fmt.Errorf("%w: %s", ErrSelfConnection, c)
	case !s.HasNode(c.SourceNodeID):
		return fmt.Errorf("%w: source %s", ErrNodeNotFound, c.SourceNodeID)
	case !s.HasNode(c.TargetNodeID):
		return fmt.Errorf("%w: target %s", ErrNodeNotFound, c.TargetNodeID)
	case s.HasConnection(c):
		return fmt.Errorf("%w: %s", ErrConnectionExists, c)
	}

	return nil
}

func (s *Store) checkRemoveConnection(c models.Connection) error {
	if !s.HasConnection(c) {
		return fmt.Errorf("%w: %s", ErrConnectionNotFound, c)
	}

	return nil
}

func (s *Store) lookup(id string) (*models.Node, error) {
	node, ok := s.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}

	return node, nil
}

// insertNode stores its own copy of node at index. Callers validate first.
func (s *Store) insertNode(node *models.Node, index int) {
	node = node.Clone()
	index = clampIndex(index, len(s.order))

	s.nodes[node.ID] = node
	s.names[node.Name] = node.ID
	s.order = slices.Insert(s.order, index, node.ID)
}

func (s *Store) deleteNode(id string) {
	node := s.nodes[id]

	delete(s.nodes, id)
	delete(s.names, node.Name)

	if i := s.nodeIndex(id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
}

func (s *Store) renameNode(node *models.Node, name string) {
	delete(s.names, node.Name)
	node.Name = name
	s.names[name] = node.ID
}

func (s *Store) insertConnection(c models.Connection, index int) {
	index = clampIndex(index, len(s.connections))

	s.connections = slices.Insert(s.connections, index, c)
	s.connected[c] = struct{}{}
}

func (s *Store) deleteConnection(c models.Connection) {
	delete(s.connected, c)

	if i := s.connectionIndex(c); i >= 0 {
		s.connections = slices.Delete(s.connections, i, i+1)
	}
}

func clampIndex(index, length int) int {
	if index < 0 || index > length {
		return length
	}

	return index
}

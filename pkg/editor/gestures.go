package editor

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dukex/operion-canvas/pkg/graph"
	"github.com/dukex/operion-canvas/pkg/history"
	"github.com/dukex/operion-canvas/pkg/models"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// AddNodeRequest describes a node to place on the canvas.
type AddNodeRequest struct {
	Type       string           `json:"type" validate:"required"`
	Name       string           `json:"name,omitempty"`
	Position   *models.Position `json:"position,omitempty"`
	Parameters map[string]any   `json:"parameters,omitempty"`
	Disabled   bool             `json:"disabled,omitempty"`

	// After connects the new node to the main output of this node and places
	// it to its right.
	After string `json:"after,omitempty"`
}

// AddNode places a new node. Without a name the node-type display name is
// used, numbered when taken. Without a position the node goes right of After,
// or right of the last node, or at the layout start.
func (c *Canvas) AddNode(ctx context.Context, req AddNodeRequest) (*models.Node, error) {
	if err := validate.Struct(req); err != nil {
		return nil, &GestureError{Gesture: "Add node", Err: fmt.Errorf("%w: %w", graph.ErrInvalidCommand, err)}
	}

	node := c.newNode(req)

	switch {
	case req.Position != nil:
		node.Position = *req.Position
	case req.After != "":
		after, ok := c.store.Node(req.After)
		if !ok {
			return nil, &GestureError{Gesture: "Add node", Err: fmt.Errorf("%w: %w: %s", graph.ErrInvalidCommand, graph.ErrNodeNotFound, req.After)}
		}

		node.Position = after.Position.Add(models.Position{X: c.cfg.Layout.NodeSpacing})
	default:
		node.Position = c.nextPosition()
	}

	_, err := c.record(ctx, "Add node", func(tx *history.Transaction) error {
		if err := addNode(tx, node); err != nil {
			return err
		}

		if req.After == "" {
			return nil
		}

		return addConnection(tx, models.Connect(req.After, node.ID))
	})
	if err != nil {
		return nil, err
	}

	return node.Clone(), nil
}

// InsertNodeBetween splits a connection with a new node. The node takes the
// target's position and the target with everything downstream of it shifts
// right by the node spacing.
func (c *Canvas) InsertNodeBetween(ctx context.Context, conn models.Connection, req AddNodeRequest) (*models.Node, error) {
	const label = "Insert node"

	if err := validate.Struct(req); err != nil {
		return nil, &GestureError{Gesture: label, Err: fmt.Errorf("%w: %w", graph.ErrInvalidCommand, err)}
	}

	target, ok := c.store.Node(conn.TargetNodeID)
	if !ok || !c.store.HasConnection(conn) {
		return nil, &GestureError{Gesture: label, Err: fmt.Errorf("%w: %w: %s", graph.ErrInvalidCommand, graph.ErrConnectionNotFound, conn)}
	}

	node := c.newNode(req)
	node.Position = target.Position

	if req.Position != nil {
		node.Position = *req.Position
	}

	shift := models.Position{X: c.cfg.Layout.NodeSpacing}

	_, err := c.record(ctx, label, func(tx *history.Transaction) error {
		if err := removeConnection(tx, conn); err != nil {
			return err
		}

		for _, id := range c.downstream(conn.TargetNodeID, conn.SourceNodeID) {
			current, _ := tx.Store().Node(id)
			if err := moveNode(tx, id, current.Position.Add(shift)); err != nil {
				return err
			}
		}

		if err := addNode(tx, node); err != nil {
			return err
		}

		if err := addConnection(tx, models.Connection{
			SourceNodeID:      conn.SourceNodeID,
			SourceOutputIndex: conn.SourceOutputIndex,
			TargetNodeID:      node.ID,
		}); err != nil {
			return err
		}

		return addConnection(tx, models.Connection{
			SourceNodeID:     node.ID,
			TargetNodeID:     conn.TargetNodeID,
			TargetInputIndex: conn.TargetInputIndex,
		})
	})
	if err != nil {
		return nil, err
	}

	return node.Clone(), nil
}

// Connect adds a connection.
func (c *Canvas) Connect(ctx context.Context, conn models.Connection) error {
	_, err := c.record(ctx, "Add connection", func(tx *history.Transaction) error {
		return addConnection(tx, conn)
	})

	return err
}

// Disconnect removes a connection.
func (c *Canvas) Disconnect(ctx context.Context, conn models.Connection) error {
	_, err := c.record(ctx, "Delete connection", func(tx *history.Transaction) error {
		return removeConnection(tx, conn)
	})

	return err
}

// DeleteNodes removes the nodes together with their connections. Deleting a
// single node that sits between exactly one parent and one child reconnects
// the parent to the child.
func (c *Canvas) DeleteNodes(ctx context.Context, ids ...string) error {
	ids = c.selection(ids)
	if len(ids) == 0 {
		return &GestureError{Gesture: "Delete nodes", Err: ErrEmptySelection}
	}

	label := "Delete node"
	if len(ids) > 1 {
		label = "Delete nodes"
	}

	_, err := c.record(ctx, label, func(tx *history.Transaction) error {
		var bridge *models.Connection
		if len(ids) == 1 {
			bridge = bridgeOver(tx.Store(), ids[0])
		}

		for _, id := range ids {
			if err := removeNodeWithConnections(tx, id); err != nil {
				return err
			}
		}

		if bridge == nil {
			return nil
		}

		return addConnection(tx, *bridge)
	})

	return err
}

// bridgeOver returns the connection that replaces a node with exactly one
// incoming and one outgoing connection, or nil.
func bridgeOver(s *graph.Store, id string) *models.Connection {
	incoming, outgoing := s.Incoming(id), s.Outgoing(id)
	if len(incoming) != 1 || len(outgoing) != 1 {
		return nil
	}

	bridge := models.Connection{
		SourceNodeID:      incoming[0].SourceNodeID,
		SourceOutputIndex: incoming[0].SourceOutputIndex,
		TargetNodeID:      outgoing[0].TargetNodeID,
		TargetInputIndex:  outgoing[0].TargetInputIndex,
	}

	if bridge.SourceNodeID == bridge.TargetNodeID || s.HasConnection(bridge) {
		return nil
	}

	return &bridge
}

// MoveNodes moves nodes to absolute positions as one entry.
func (c *Canvas) MoveNodes(ctx context.Context, positions map[string]models.Position) error {
	ids := make([]string, 0, len(positions))
	for id := range positions {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	_, err := c.record(ctx, "Move nodes", func(tx *history.Transaction) error {
		for _, id := range c.ordered(ids) {
			if err := moveNode(tx, id, positions[id]); err != nil {
				return err
			}
		}

		return nil
	})

	return err
}

// RenameNode renames a node. Renaming to the current name records nothing.
func (c *Canvas) RenameNode(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)

	_, err := c.record(ctx, "Rename node", func(tx *history.Transaction) error {
		return renameNode(tx, id, name)
	})

	return err
}

// ToggleDisabled enables every selected node when all of them are disabled,
// and disables them all otherwise.
func (c *Canvas) ToggleDisabled(ctx context.Context, ids ...string) error {
	ids = c.selection(ids)
	if len(ids) == 0 {
		return &GestureError{Gesture: "Toggle nodes", Err: ErrEmptySelection}
	}

	disable := false

	for _, id := range ids {
		node, ok := c.store.Node(id)
		if !ok {
			return &GestureError{Gesture: "Toggle nodes", Err: fmt.Errorf("%w: %w: %s", graph.ErrInvalidCommand, graph.ErrNodeNotFound, id)}
		}

		if !node.Disabled {
			disable = true
		}
	}

	label := "Enable nodes"
	if disable {
		label = "Disable nodes"
	}

	_, err := c.record(ctx, label, func(tx *history.Transaction) error {
		for _, id := range ids {
			if err := setDisabled(tx, id, disable); err != nil {
				return err
			}
		}

		return nil
	})

	return err
}

// DuplicateNodes copies the selected nodes next to the originals, with fresh
// ids and numbered names. Connections among the selected nodes are copied
// too. The copies are returned in selection order.
func (c *Canvas) DuplicateNodes(ctx context.Context, ids ...string) ([]*models.Node, error) {
	ids = c.selection(ids)
	if len(ids) == 0 {
		return nil, &GestureError{Gesture: "Duplicate nodes", Err: ErrEmptySelection}
	}

	offset := models.Position{X: c.cfg.Layout.DuplicateOffset, Y: c.cfg.Layout.DuplicateOffset}
	copies := make(map[string]string, len(ids))

	_, err := c.record(ctx, "Duplicate nodes", func(tx *history.Transaction) error {
		for _, id := range ids {
			source, ok := tx.Store().Node(id)
			if !ok {
				return fmt.Errorf("%w: %w: %s", graph.ErrInvalidCommand, graph.ErrNodeNotFound, id)
			}

			newID := c.newID()
			name := UniqueName(source.Name, tx.Store().HasName)

			if err := duplicateNode(tx, id, newID, name, offset); err != nil {
				return err
			}

			copies[id] = newID
		}

		for _, conn := range tx.Store().Connections() {
			source, okSource := copies[conn.SourceNodeID]
			target, okTarget := copies[conn.TargetNodeID]

			if !okSource || !okTarget {
				continue
			}

			conn.SourceNodeID, conn.TargetNodeID = source, target
			if err := addConnection(tx, conn); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	nodes := make([]*models.Node, 0, len(ids))
	for _, id := range ids {
		node, _ := c.store.Node(copies[id])
		nodes = append(nodes, node)
	}

	return nodes, nil
}

func (c *Canvas) newNode(req AddNodeRequest) *models.Node {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = c.cfg.DisplayName(req.Type)
	}

	return &models.Node{
		ID:         c.newID(),
		Type:       req.Type,
		Name:       UniqueName(name, c.store.HasName),
		Disabled:   req.Disabled,
		Parameters: req.Parameters,
	}
}

func (c *Canvas) nextPosition() models.Position {
	nodes := c.store.Nodes()
	if len(nodes) == 0 {
		return models.Position{X: c.cfg.Layout.StartX, Y: c.cfg.Layout.StartY}
	}

	return nodes[len(nodes)-1].Position.Add(models.Position{X: c.cfg.Layout.NodeSpacing})
}

// downstream returns start and every node reachable from it through outgoing
// connections, in node order, never including stop.
func (c *Canvas) downstream(start, stop string) []string {
	seen := map[string]bool{start: true}
	queue := []string{start}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		for _, conn := range c.store.Outgoing(id) {
			next := conn.TargetNodeID
			if next == stop || seen[next] {
				continue
			}

			seen[next] = true
			queue = append(queue, next)
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}

	return c.ordered(ids)
}

// selection drops duplicate ids, keeping the first occurrence.
func (c *Canvas) selection(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}

	return out
}

// ordered sorts ids by node order; unknown ids go last in their given order.
func (c *Canvas) ordered(ids []string) []string {
	out := slices.Clone(ids)
	order := c.store.NodeIDs()

	rank := func(id string) int {
		if i := slices.Index(order, id); i >= 0 {
			return i
		}

		return len(order)
	}

	slices.SortStableFunc(out, func(a, b string) int { return rank(a) - rank(b) })

	return out
}

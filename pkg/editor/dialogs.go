package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukex/operion-canvas/pkg/graph"
	"github.com/dukex/operion-canvas/pkg/history"
	"github.com/dukex/operion-canvas/pkg/models"
)

// NodeDetails is the node editing view. Edits are visible on the canvas as
// soon as they are made and become one history entry when the view closes.
// Undo and redo are refused while it is open.
type NodeDetails struct {
	canvas *Canvas
	tx     *history.Transaction
	nodeID string
}

// OpenNodeDetails opens the editing view of a node.
func (c *Canvas) OpenNodeDetails(id string) (*NodeDetails, error) {
	if !c.store.HasNode(id) {
		return nil, &GestureError{Gesture: "Edit node", Err: fmt.Errorf("%w: %w: %s", graph.ErrInvalidCommand, graph.ErrNodeNotFound, id)}
	}

	tx, err := c.begin("Edit node")
	if err != nil {
		return nil, err
	}

	c.details = &NodeDetails{canvas: c, tx: tx, nodeID: id}

	return c.details, nil
}

// ActiveNodeDetails returns the open editing view, if any.
func (c *Canvas) ActiveNodeDetails() (*NodeDetails, bool) {
	return c.details, c.details != nil
}

// NodeID returns the id of the node being edited.
func (d *NodeDetails) NodeID() string { return d.nodeID }

// Rename previews a new name. Renaming twice records one change from the
// original name to the last one.
func (d *NodeDetails) Rename(ctx context.Context, name string) error {
	if err := d.check(); err != nil {
		return err
	}

	if err := renameNode(d.tx, d.nodeID, strings.TrimSpace(name)); err != nil {
		return &GestureError{Gesture: d.tx.Label(), Err: err}
	}

	d.canvas.controller.previewed(ctx, d.tx.Label())

	return nil
}

// SetDisabled previews the disabled flag.
func (d *NodeDetails) SetDisabled(ctx context.Context, disabled bool) error {
	if err := d.check(); err != nil {
		return err
	}

	if err := setDisabled(d.tx, d.nodeID, disabled); err != nil {
		return &GestureError{Gesture: d.tx.Label(), Err: err}
	}

	d.canvas.controller.previewed(ctx, d.tx.Label())

	return nil
}

// Close keeps the edits as one history entry. Closing without net changes
// records nothing.
func (d *NodeDetails) Close(ctx context.Context) (history.Entry, error) {
	if err := d.check(); err != nil {
		return nil, err
	}

	d.canvas.details = nil

	return d.canvas.finish(ctx, d.tx)
}

// Cancel discards the edits.
func (d *NodeDetails) Cancel(ctx context.Context) error {
	if err := d.check(); err != nil {
		return err
	}

	d.canvas.details = nil

	return d.canvas.abandon(ctx, d.tx)
}

func (d *NodeDetails) check() error {
	if d.canvas.details != d {
		return ErrDialogClosed
	}

	return nil
}

// Drag moves a selection of nodes with live feedback. The whole drag becomes
// one entry with a single move per node.
type Drag struct {
	canvas *Canvas
	tx     *history.Transaction
	ids    []string
}

// BeginDrag starts dragging the nodes.
func (c *Canvas) BeginDrag(ids ...string) (*Drag, error) {
	ids = c.selection(ids)
	if len(ids) == 0 {
		return nil, &GestureError{Gesture: "Move nodes", Err: ErrEmptySelection}
	}

	for _, id := range ids {
		if !c.store.HasNode(id) {
			return nil, &GestureError{Gesture: "Move nodes", Err: fmt.Errorf("%w: %w: %s", graph.ErrInvalidCommand, graph.ErrNodeNotFound, id)}
		}
	}

	tx, err := c.begin("Move nodes")
	if err != nil {
		return nil, err
	}

	c.drag = &Drag{canvas: c, tx: tx, ids: c.ordered(ids)}

	return c.drag, nil
}

// ActiveDrag returns the drag in progress, if any.
func (c *Canvas) ActiveDrag() (*Drag, bool) {
	return c.drag, c.drag != nil
}

// NodeIDs returns the dragged nodes.
func (d *Drag) NodeIDs() []string { return append([]string(nil), d.ids...) }

// MoveBy shifts every dragged node by the offset from where it is now.
func (d *Drag) MoveBy(ctx context.Context, dx, dy int) error {
	if err := d.check(); err != nil {
		return err
	}

	for _, id := range d.ids {
		node, ok := d.tx.Store().Node(id)
		if !ok {
			return &GestureError{Gesture: d.tx.Label(), Err: fmt.Errorf("%w: %s", graph.ErrNodeNotFound, id)}
		}

		if err := moveNode(d.tx, id, node.Position.Add(models.Position{X: dx, Y: dy})); err != nil {
			return &GestureError{Gesture: d.tx.Label(), Err: err}
		}
	}

	d.canvas.controller.previewed(ctx, d.tx.Label())

	return nil
}

// Finish drops the nodes where they are and records the drag.
func (d *Drag) Finish(ctx context.Context) (history.Entry, error) {
	if err := d.check(); err != nil {
		return nil, err
	}

	d.canvas.drag = nil

	return d.canvas.finish(ctx, d.tx)
}

// Cancel puts the nodes back where the drag started.
func (d *Drag) Cancel(ctx context.Context) error {
	if err := d.check(); err != nil {
		return err
	}

	d.canvas.drag = nil

	return d.canvas.abandon(ctx, d.tx)
}

func (d *Drag) check() error {
	if d.canvas.drag != d {
		return ErrDialogClosed
	}

	return nil
}

package editor

import (
	"context"
	"fmt"

	"github.com/dukex/operion-canvas/pkg/clipboard"
	"github.com/dukex/operion-canvas/pkg/graph"
	"github.com/dukex/operion-canvas/pkg/history"
	"github.com/dukex/operion-canvas/pkg/models"
)

// Copy snapshots the selected nodes and the connections among them. An empty
// selection copies the whole canvas.
func (c *Canvas) Copy(ids ...string) (*clipboard.Workflow, error) {
	if len(ids) == 0 {
		return clipboard.FromGraph(c.store.Nodes(), c.store.Connections()), nil
	}

	nodes := make([]*models.Node, 0, len(ids))
	for _, id := range c.ordered(c.selection(ids)) {
		node, ok := c.store.Node(id)
		if !ok {
			return nil, &GestureError{Gesture: "Copy", Err: fmt.Errorf("%w: %w: %s", graph.ErrInvalidCommand, graph.ErrNodeNotFound, id)}
		}

		nodes = append(nodes, node)
	}

	return clipboard.FromGraph(nodes, c.store.Connections()), nil
}

// CopyTo stores the snapshot of the selection in store under key.
func (c *Canvas) CopyTo(ctx context.Context, store clipboard.Store, key string, ids ...string) error {
	wf, err := c.Copy(ids...)
	if err != nil {
		return err
	}

	data, err := clipboard.Encode(wf)
	if err != nil {
		return err
	}

	return store.Put(ctx, key, data)
}

// Paste decodes clipboard data and adds its nodes and connections as one
// entry.
func (c *Canvas) Paste(ctx context.Context, data []byte) ([]*models.Node, error) {
	wf, err := clipboard.Decode(data)
	if err != nil {
		return nil, &GestureError{Gesture: "Paste", Err: fmt.Errorf("%w: %w", graph.ErrInvalidCommand, err)}
	}

	return c.PasteWorkflow(ctx, wf)
}

// PasteFrom pastes what was stored under key.
func (c *Canvas) PasteFrom(ctx context.Context, store clipboard.Store, key string) ([]*models.Node, error) {
	data, err := store.Get(ctx, key)
	if err != nil {
		return nil, &GestureError{Gesture: "Paste", Err: err}
	}

	return c.Paste(ctx, data)
}

// PasteWorkflow adds the snapshot's nodes under fresh ids and free names,
// followed by its connections. Pasting the same snapshot twice yields two
// independent copies.
func (c *Canvas) PasteWorkflow(ctx context.Context, wf *clipboard.Workflow) ([]*models.Node, error) {
	if len(wf.Nodes) == 0 {
		return nil, nil
	}

	ids := make(map[string]string, len(wf.Nodes))
	pasted := make([]*models.Node, 0, len(wf.Nodes))

	_, err := c.record(ctx, "Paste", func(tx *history.Transaction) error {
		for _, n := range wf.Nodes {
			node := &models.Node{
				ID:         c.newID(),
				Type:       n.Type,
				Name:       UniqueName(n.Name, tx.Store().HasName),
				Position:   n.NodePosition(),
				Disabled:   n.Disabled,
				Parameters: n.Parameters,
			}

			if err := addNode(tx, node); err != nil {
				return err
			}

			ids[n.Name] = node.ID
			pasted = append(pasted, node)
		}

		for _, edge := range wf.Edges() {
			if err := addConnection(tx, models.Connection{
				SourceNodeID:      ids[edge.SourceName],
				SourceOutputIndex: edge.SourceOutputIndex,
				TargetNodeID:      ids[edge.TargetName],
				TargetInputIndex:  edge.TargetInputIndex,
			}); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return pasted, nil
}

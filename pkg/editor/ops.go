package editor

import (
	"github.com/dukex/operion-canvas/pkg/graph"
	"github.com/dukex/operion-canvas/pkg/history"
	"github.com/dukex/operion-canvas/pkg/models"
)

// The helpers below build a command against the store as it is at this point
// of the transaction and execute it at once, so later commands of the same
// gesture capture the state their predecessors produced.

func addNode(tx *history.Transaction, node *models.Node) error {
	cmd, err := graph.NewAddNode(tx.Store(), node)
	if err != nil {
		return err
	}

	return tx.Execute(cmd)
}

func removeNode(tx *history.Transaction, id string) error {
	cmd, err := graph.NewRemoveNode(tx.Store(), id)
	if err != nil {
		return err
	}

	return tx.Execute(cmd)
}

func addConnection(tx *history.Transaction, conn models.Connection) error {
	cmd, err := graph.NewAddConnection(tx.Store(), conn)
	if err != nil {
		return err
	}

	return tx.Execute(cmd)
}

func removeConnection(tx *history.Transaction, conn models.Connection) error {
	cmd, err := graph.NewRemoveConnection(tx.Store(), conn)
	if err != nil {
		return err
	}

	return tx.Execute(cmd)
}

func moveNode(tx *history.Transaction, id string, to models.Position) error {
	cmd, err := graph.NewMoveNode(tx.Store(), id, to)
	if err != nil {
		return err
	}

	return tx.Execute(cmd)
}

func renameNode(tx *history.Transaction, id, name string) error {
	cmd, err := graph.NewRenameNode(tx.Store(), id, name)
	if err != nil {
		return err
	}

	return tx.Execute(cmd)
}

func setDisabled(tx *history.Transaction, id string, disabled bool) error {
	cmd, err := graph.NewToggleDisabled(tx.Store(), id, disabled)
	if err != nil {
		return err
	}

	return tx.Execute(cmd)
}

func duplicateNode(tx *history.Transaction, sourceID, newID, name string, offset models.Position) error {
	cmd, err := graph.NewDuplicateNode(tx.Store(), sourceID, newID, name, offset)
	if err != nil {
		return err
	}

	return tx.Execute(cmd)
}

// removeNodeWithConnections removes every connection touching the node, then
// the node itself.
func removeNodeWithConnections(tx *history.Transaction, id string) error {
	for _, conn := range tx.Store().ConnectionsOf(id) {
		if err := removeConnection(tx, conn); err != nil {
			return err
		}
	}

	return removeNode(tx, id)
}

// Package history records graph commands as undoable entries and steps the
// graph backward and forward through them.
package history

import (
	"errors"
	"fmt"

	"github.com/dukex/operion-canvas/pkg/graph"
)

var (
	// ErrEmptyHistory is reported when there is nothing to undo or redo. It
	// marks a no-op rather than a failure.
	ErrEmptyHistory = errors.New("empty history")

	// ErrRecorderConflict is returned when a transaction is already open.
	ErrRecorderConflict = errors.New("a recording transaction is already open")

	// ErrTransactionClosed is returned when using a committed or abandoned
	// transaction.
	ErrTransactionClosed = errors.New("transaction already closed")

	// ErrInconsistentHistory aliases the graph error class so callers can
	// match history failures without importing the graph package.
	ErrInconsistentHistory = graph.ErrInconsistentHistory
)

// HistoryError wraps a failed undo, redo or rollback with context.
type HistoryError struct {
	Op    string // "undo", "redo", "apply", "revert", "abandon"
	Label string // Label of the entry involved
	Err   error
}

func (e *HistoryError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("%s %q: %v", e.Op, e.Label, e.Err)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *HistoryError) Unwrap() error {
	return e.Err
}

// RollbackError reports a failure that could not be rolled back. The graph may
// be left in a state no history entry describes.
type RollbackError struct {
	Cause    error // The failure that triggered the rollback
	Rollback error // The failure during rollback
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("%v; rollback failed: %v", e.Cause, e.Rollback)
}

func (e *RollbackError) Unwrap() []error {
	return []error{e.Cause, e.Rollback}
}

// Is marks every rollback failure as inconsistent history.
func (e *RollbackError) Is(target error) bool {
	return target == ErrInconsistentHistory
}

// IsEmptyHistory checks if an error reports an undo or redo with nothing to do.
func IsEmptyHistory(err error) bool {
	return errors.Is(err, ErrEmptyHistory)
}

// IsRecorderConflict checks if an error reports an already open transaction.
func IsRecorderConflict(err error) bool {
	return errors.Is(err, ErrRecorderConflict)
}

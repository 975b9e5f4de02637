package editor

import (
	"errors"
	"fmt"

	"github.com/dukex/operion-canvas/pkg/graph"
	"github.com/dukex/operion-canvas/pkg/history"
)

var (
	// ErrUnknownShortcut is returned for a key combination bound to nothing.
	ErrUnknownShortcut = errors.New("unknown shortcut")

	// ErrUnknownTrigger is returned for a trigger that is neither undo nor redo.
	ErrUnknownTrigger = errors.New("unknown trigger")

	// ErrCanvasNotFound is returned when no session holds the canvas id.
	ErrCanvasNotFound = errors.New("canvas not found")

	// ErrEmptySelection is returned by gestures that need at least one node.
	ErrEmptySelection = errors.New("no nodes selected")

	// ErrDialogClosed is returned when using a committed or cancelled dialog.
	ErrDialogClosed = errors.New("dialog already closed")

	// ErrNoActiveDialog is returned when no dialog of the requested kind is
	// open on the canvas.
	ErrNoActiveDialog = errors.New("no active dialog")
)

// GestureError wraps a failed gesture with the gesture name.
type GestureError struct {
	Gesture string
	Err     error
}

func (e *GestureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Gesture, e.Err)
}

func (e *GestureError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if an error was caused by a missing canvas, node or
// connection.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCanvasNotFound) || graph.IsNotFound(err)
}

// IsConflict checks if an error was caused by an open gesture or by history
// that no longer matches the graph.
func IsConflict(err error) bool {
	return history.IsRecorderConflict(err) ||
		graph.IsInconsistentHistory(err) ||
		errors.Is(err, ErrNoActiveDialog) ||
		errors.Is(err, ErrDialogClosed)
}

// IsInvalid checks if an error was caused by a request the graph refused.
func IsInvalid(err error) bool {
	return graph.IsInvalidCommand(err) ||
		errors.Is(err, ErrEmptySelection) ||
		errors.Is(err, ErrUnknownShortcut) ||
		errors.Is(err, ErrUnknownTrigger)
}

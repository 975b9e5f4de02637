// Package graph provides the graph state store and the reversible commands
// that are the only way to mutate it.
package graph

import (
	"errors"
	"fmt"
)

// Error classes surfaced by command application.
var (
	// ErrInvalidCommand indicates a command whose forward payload does not fit
	// the current state. The state is left unchanged.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrInconsistentHistory indicates a command whose inverse can no longer
	// restore the prior state because the graph changed out of band.
	ErrInconsistentHistory = errors.New("inconsistent history")
)

// Invariant violations wrapped by the error classes above.
var (
	ErrNodeNotFound       = errors.New("node not found")
	ErrNodeExists         = errors.New("node already exists")
	ErrNameTaken          = errors.New("node name already in use")
	ErrEmptyName          = errors.New("node name cannot be empty")
	ErrMissingType        = errors.New("node type is required")
	ErrNodeConnected      = errors.New("node still has connections")
	ErrConnectionNotFound = errors.New("connection not found")
	ErrConnectionExists   = errors.New("connection already exists")
	ErrSelfConnection     = errors.New("node cannot connect to itself")
	ErrInvalidPort        = errors.New("port index must not be negative")
	ErrStateMismatch      = errors.New("node state differs from recorded value")
	ErrNilCommand         = errors.New("command is nil")
)

// CommandError wraps a failed forward or inverse application with context.
type CommandError struct {
	Op    string // "forward" or "inverse"
	Kind  Kind   // Kind of the failing command
	Class error  // ErrInvalidCommand or ErrInconsistentHistory
	Err   error  // Underlying invariant violation
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Kind, e.Class, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Is matches both the error class and the underlying violation.
func (e *CommandError) Is(target error) bool {
	return errors.Is(e.Class, target) || errors.Is(e.Err, target)
}

func invalid(op string, kind Kind, err error) error {
	return &CommandError{Op: op, Kind: kind, Class: ErrInvalidCommand, Err: err}
}

func inconsistent(op string, kind Kind, err error) error {
	return &CommandError{Op: op, Kind: kind, Class: ErrInconsistentHistory, Err: err}
}

// IsInvalidCommand checks if an error indicates a refused command.
func IsInvalidCommand(err error) bool {
	return errors.Is(err, ErrInvalidCommand)
}

// IsInconsistentHistory checks if an error indicates that history no longer
// matches the graph.
func IsInconsistentHistory(err error) bool {
	return errors.Is(err, ErrInconsistentHistory)
}

// IsNotFound checks if an error was caused by a missing node or connection.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound) || errors.Is(err, ErrConnectionNotFound)
}

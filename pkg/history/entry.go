package history

import (
	"slices"

	"github.com/dukex/operion-canvas/pkg/graph"
)

// Entry is one undoable step: a single command or a bulk of commands that
// were produced by the same user gesture.
type Entry interface {
	Label() string
	Commands() []graph.Command
	// Apply executes the entry's forward effect.
	Apply(s *graph.Store) error
	// Revert executes the entry's inverse effect.
	Revert(s *graph.Store) error
}

// NewEntry wraps the commands of a gesture: a Single for exactly one command,
// a Bulk otherwise. It returns nil when there are no commands.
func NewEntry(label string, cmds []graph.Command) Entry {
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return &Single{label: label, cmd: cmds[0]}
	default:
		return NewBulk(label, cmds...)
	}
}

// Single is an entry holding one command.
type Single struct {
	label string
	cmd   graph.Command
}

// NewSingle wraps one command as an entry.
func NewSingle(label string, cmd graph.Command) *Single {
	return &Single{label: label, cmd: cmd}
}

func (e *Single) Label() string             { return e.label }
func (e *Single) Commands() []graph.Command { return []graph.Command{e.cmd} }

func (e *Single) Apply(s *graph.Store) error {
	if err := s.ApplyForward(e.cmd); err != nil {
		return &HistoryError{Op: "apply", Label: e.label, Err: err}
	}

	return nil
}

func (e *Single) Revert(s *graph.Store) error {
	if err := s.ApplyInverse(e.cmd); err != nil {
		return &HistoryError{Op: "revert", Label: e.label, Err: err}
	}

	return nil
}

// Bulk is an ordered group of commands applied and reverted as one unit.
// Apply runs the commands in recorded order, Revert runs their inverses in
// exactly the reverse order. If any member fails, the members already run are
// rolled back before the error is returned, so the store never reflects a
// partially executed gesture.
type Bulk struct {
	label string
	cmds  []graph.Command
}

// NewBulk groups cmds in the given order.
func NewBulk(label string, cmds ...graph.Command) *Bulk {
	return &Bulk{label: label, cmds: slices.Clone(cmds)}
}

func (b *Bulk) Label() string             { return b.label }
func (b *Bulk) Commands() []graph.Command { return slices.Clone(b.cmds) }
func (b *Bulk) Len() int                  { return len(b.cmds) }

func (b *Bulk) Apply(s *graph.Store) error {
	for i, cmd := range b.cmds {
		if err := s.ApplyForward(cmd); err != nil {
			cause := &HistoryError{Op: "apply", Label: b.label, Err: err}

			if rbErr := revertCommands(s, b.cmds[:i]); rbErr != nil {
				return &RollbackError{Cause: cause, Rollback: rbErr}
			}

			return cause
		}
	}

	return nil
}

func (b *Bulk) Revert(s *graph.Store) error {
	for i := len(b.cmds) - 1; i >= 0; i-- {
		if err := s.ApplyInverse(b.cmds[i]); err != nil {
			cause := &HistoryError{Op: "revert", Label: b.label, Err: err}

			if rbErr := applyCommands(s, b.cmds[i+1:]); rbErr != nil {
				return &RollbackError{Cause: cause, Rollback: rbErr}
			}

			return cause
		}
	}

	return nil
}

// revertCommands undoes cmds, which must all have been applied, last first.
func revertCommands(s *graph.Store, cmds []graph.Command) error {
	for i := len(cmds) - 1; i >= 0; i-- {
		if err := s.ApplyInverse(cmds[i]); err != nil {
			return err
		}
	}

	return nil
}

// applyCommands re-applies cmds, which must all have been reverted, in order.
func applyCommands(s *graph.Store, cmds []graph.Command) error {
	for _, cmd := range cmds {
		if err := s.ApplyForward(cmd); err != nil {
			return err
		}
	}

	return nil
}

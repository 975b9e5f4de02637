package history

import (
	"github.com/dukex/operion-canvas/pkg/graph"
)

// DefaultMaxEntries bounds the undo stack when no limit is configured.
const DefaultMaxEntries = 100

// Stack holds committed entries on an undo stack and undone entries on a
// redo stack. History is linear: any new commit discards the redo stack.
type Stack struct {
	store      *graph.Store
	undo       []Entry
	redo       []Entry
	maxEntries int
}

// NewStack creates a stack bound to store. A maxEntries of zero or less uses
// DefaultMaxEntries.
func NewStack(store *graph.Store, maxEntries int) *Stack {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	return &Stack{
		store:      store,
		undo:       make([]Entry, 0, min(maxEntries, 64)),
		maxEntries: maxEntries,
	}
}

// Commit pushes an entry whose forward effect is already applied to the
// store, and clears the redo stack. When the stack is full the oldest entry
// is evicted.
func (st *Stack) Commit(entry Entry) {
	if entry == nil {
		return
	}

	st.undo = append(st.undo, entry)
	if len(st.undo) > st.maxEntries {
		st.undo = st.undo[len(st.undo)-st.maxEntries:]
	}

	st.redo = nil
}

// Undo reverts the most recent committed entry and moves it to the redo
// stack. It returns ErrEmptyHistory when there is nothing to undo. If the
// revert fails, both stacks are left as they were.
func (st *Stack) Undo() (Entry, error) {
	if len(st.undo) == 0 {
		return nil, ErrEmptyHistory
	}

	entry := st.undo[len(st.undo)-1]
	if err := entry.Revert(st.store); err != nil {
		return nil, &HistoryError{Op: "undo", Label: entry.Label(), Err: err}
	}

	st.undo = st.undo[:len(st.undo)-1]
	st.redo = append(st.redo, entry)

	return entry, nil
}

// Redo re-applies the most recently undone entry and moves it back to the
// undo stack. It returns ErrEmptyHistory when there is nothing to redo.
func (st *Stack) Redo() (Entry, error) {
	if len(st.redo) == 0 {
		return nil, ErrEmptyHistory
	}

	entry := st.redo[len(st.redo)-1]
	if err := entry.Apply(st.store); err != nil {
		return nil, &HistoryError{Op: "redo", Label: entry.Label(), Err: markInconsistent(err)}
	}

	st.redo = st.redo[:len(st.redo)-1]
	st.undo = append(st.undo, entry)

	return entry, nil
}

// Clear empties both stacks.
func (st *Stack) Clear() {
	st.undo = nil
	st.redo = nil
}

// CanUndo reports whether an entry is available to undo.
func (st *Stack) CanUndo() bool { return len(st.undo) > 0 }

// CanRedo reports whether an entry is available to redo.
func (st *Stack) CanRedo() bool { return len(st.redo) > 0 }

// UndoDepth returns the number of entries on the undo stack.
func (st *Stack) UndoDepth() int { return len(st.undo) }

// RedoDepth returns the number of entries on the redo stack.
func (st *Stack) RedoDepth() int { return len(st.redo) }

// PeekUndo returns the entry the next Undo would revert.
func (st *Stack) PeekUndo() (Entry, bool) {
	if len(st.undo) == 0 {
		return nil, false
	}

	return st.undo[len(st.undo)-1], true
}

// PeekRedo returns the entry the next Redo would apply.
func (st *Stack) PeekRedo() (Entry, bool) {
	if len(st.redo) == 0 {
		return nil, false
	}

	return st.redo[len(st.redo)-1], true
}

// Labels returns the labels on the undo stack, oldest first, and on the redo
// stack, next-to-redo first.
func (st *Stack) Labels() (undo, redo []string) {
	undo = make([]string, 0, len(st.undo))
	for _, e := range st.undo {
		undo = append(undo, e.Label())
	}

	redo = make([]string, 0, len(st.redo))
	for i := len(st.redo) - 1; i >= 0; i-- {
		redo = append(redo, st.redo[i].Label())
	}

	return undo, redo
}

// markInconsistent classifies a failed re-application as inconsistent
// history: a redo only fails if the graph changed outside the history.
func markInconsistent(err error) error {
	if graph.IsInconsistentHistory(err) {
		return err
	}

	return &inconsistentError{err: err}
}

type inconsistentError struct {
	err error
}

func (e *inconsistentError) Error() string { return ErrInconsistentHistory.Error() + ": " + e.err.Error() }
func (e *inconsistentError) Unwrap() error { return e.err }
func (e *inconsistentError) Is(target error) bool {
	return target == ErrInconsistentHistory
}

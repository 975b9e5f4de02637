package history

import (
	"fmt"

	"github.com/dukex/operion-canvas/pkg/graph"
)

// Recorder groups the commands of one user gesture into one history entry.
// At most one transaction is open at a time; a gesture that spans
// asynchronous steps (a rename dialog, a drag) keeps its transaction open
// until it is committed or abandoned.
type Recorder struct {
	store *graph.Store
	stack *Stack
	open  *Transaction
}

// NewRecorder creates a recorder that applies commands to store and commits
// entries to stack.
func NewRecorder(store *graph.Store, stack *Stack) *Recorder {
	return &Recorder{store: store, stack: stack}
}

// Begin opens a transaction. It fails with ErrRecorderConflict while another
// transaction is open.
func (r *Recorder) Begin(label string) (*Transaction, error) {
	if r.open != nil {
		return nil, fmt.Errorf("begin %q while %q is open: %w", label, r.open.label, ErrRecorderConflict)
	}

	r.open = &Transaction{recorder: r, label: label}

	return r.open, nil
}

// Active returns the open transaction, if any.
func (r *Recorder) Active() (*Transaction, bool) {
	return r.open, r.open != nil
}

// IsOpen reports whether a transaction is open.
func (r *Recorder) IsOpen() bool {
	return r.open != nil
}

// Record runs a synchronous gesture inside its own transaction. The
// transaction is committed when fn succeeds and abandoned otherwise.
func (r *Recorder) Record(label string, fn func(tx *Transaction) error) (Entry, error) {
	tx, err := r.Begin(label)
	if err != nil {
		return nil, err
	}

	if err := fn(tx); err != nil {
		if abandonErr := tx.Abandon(); abandonErr != nil {
			return nil, &RollbackError{Cause: err, Rollback: abandonErr}
		}

		return nil, err
	}

	return tx.Commit()
}

// Transaction collects the commands of one gesture. Commands take effect on
// the store as soon as they are executed, which is what gives a gesture its
// live preview.
type Transaction struct {
	recorder *Recorder
	label    string
	cmds     []graph.Command
	closed   bool
}

// Label returns the transaction label.
func (tx *Transaction) Label() string { return tx.label }

// Len returns the number of commands executed so far.
func (tx *Transaction) Len() int { return len(tx.cmds) }

// Store returns the store the transaction mutates, for building commands.
func (tx *Transaction) Store() *graph.Store { return tx.recorder.store }

// Execute applies cmd to the store and records it. A refused command leaves
// the store and the transaction unchanged.
func (tx *Transaction) Execute(cmd graph.Command) error {
	if tx.closed {
		return ErrTransactionClosed
	}

	if err := tx.recorder.store.ApplyForward(cmd); err != nil {
		return err
	}

	tx.cmds = append(tx.cmds, cmd)

	return nil
}

// Commit closes the transaction and commits its commands as one entry. An
// empty transaction commits nothing and leaves the redo stack untouched; the
// returned entry is nil in that case.
func (tx *Transaction) Commit() (Entry, error) {
	if tx.closed {
		return nil, ErrTransactionClosed
	}

	tx.close()

	entry := NewEntry(tx.label, graph.Compact(tx.cmds))
	if entry == nil {
		return nil, nil
	}

	tx.recorder.stack.Commit(entry)

	return entry, nil
}

// Abandon closes the transaction, reverting every executed command in
// reverse order. Nothing is pushed to history.
func (tx *Transaction) Abandon() error {
	if tx.closed {
		return ErrTransactionClosed
	}

	tx.close()

	if err := revertCommands(tx.recorder.store, tx.cmds); err != nil {
		return &HistoryError{Op: "abandon", Label: tx.label, Err: err}
	}

	return nil
}

func (tx *Transaction) close() {
	tx.closed = true
	if tx.recorder.open == tx {
		tx.recorder.open = nil
	}
}

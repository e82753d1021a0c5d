// Package history groups buffer changes into transactions and maintains
// the undo and redo stacks. A transaction is the unit of undo: the ordered
// changes applied while it was open, plus the selection snapshot taken the
// moment it was opened.
package history

import (
	"errors"
	"sync"
	"time"

	"github.com/dshills/loom/text"
)

// Errors returned by history operations.
var (
	// ErrTransactionMisuse indicates an unmatched or nested transaction
	// open/close.
	ErrTransactionMisuse = errors.New("transaction misuse")

	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultMaxEntries bounds the undo stack.
const DefaultMaxEntries = 1000

// Transaction is an atomic, undoable group of changes.
type Transaction struct {
	// Changes in application order.
	Changes []text.Change

	// SelectionSet identifies the set whose snapshot was recorded.
	SelectionSet text.SetID

	// SelectionsBefore is the snapshot taken when the transaction opened;
	// undo restores it.
	SelectionsBefore []text.Selection

	// SelectionsAfter is the snapshot taken when the transaction closed;
	// redo restores it.
	SelectionsAfter []text.Selection

	// Start is the buffer version before the first change; End is the
	// version after the last.
	Start text.Version
	End   text.Version

	// When the transaction was closed.
	At time.Time
}

// IsEmpty reports whether the transaction contains no changes.
func (t *Transaction) IsEmpty() bool {
	return len(t.Changes) == 0
}

// InverseChanges returns the changes that undo the transaction, in the
// order they must be applied.
func (t *Transaction) InverseChanges() []text.Change {
	out := make([]text.Change, len(t.Changes))
	for i, c := range t.Changes {
		out[len(t.Changes)-1-i] = c.Invert()
	}
	return out
}

// History holds the undo and redo stacks for one buffer.
//
// Coalescing policy: only changes recorded between one Open/Close pair
// form a single undo step. A change recorded with no open transaction
// becomes its own single-change transaction. There is no time-based
// merging of consecutive keystrokes.
type History struct {
	mu sync.Mutex

	undo []*Transaction
	redo []*Transaction

	open       *Transaction
	maxEntries int
}

// New creates a history with the given undo depth (0 uses the default).
func New(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{maxEntries: maxEntries}
}

// Open starts a transaction, recording the selection snapshot and the
// current buffer version. Opening while a transaction is already open
// returns ErrTransactionMisuse.
func (h *History) Open(set text.SetID, selections []text.Selection, version text.Version) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.open != nil {
		return ErrTransactionMisuse
	}
	snapshot := make([]text.Selection, len(selections))
	copy(snapshot, selections)
	h.open = &Transaction{
		SelectionSet:     set,
		SelectionsBefore: snapshot,
		Start:            version,
		End:              version,
	}
	return nil
}

// IsOpen reports whether a transaction is currently open.
func (h *History) IsOpen() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.open != nil
}

// Record appends a change to the open transaction, or pushes it as a
// single-change transaction when none is open.
func (h *History) Record(c text.Change, selectionsBefore []text.Selection, set text.SetID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.open != nil {
		h.open.Changes = append(h.open.Changes, c)
		h.open.End = c.Version
		return
	}

	snapshot := make([]text.Selection, len(selectionsBefore))
	copy(snapshot, selectionsBefore)
	h.pushLocked(&Transaction{
		Changes:          []text.Change{c},
		SelectionSet:     set,
		SelectionsBefore: snapshot,
		Start:            c.Version - 1,
		End:              c.Version,
		At:               time.Now(),
	})
}

// Close finishes the open transaction and pushes it onto the undo stack.
// The selections argument is recorded for redo. Closing with no open
// transaction returns ErrTransactionMisuse. An empty transaction is
// dropped rather than pushed.
func (h *History) Close(selections []text.Selection, version text.Version) (*Transaction, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.open == nil {
		return nil, ErrTransactionMisuse
	}
	tx := h.open
	h.open = nil

	if tx.IsEmpty() {
		return nil, nil
	}
	tx.SelectionsAfter = make([]text.Selection, len(selections))
	copy(tx.SelectionsAfter, selections)
	tx.End = version
	tx.At = time.Now()
	h.pushLocked(tx)
	return tx, nil
}

// pushLocked pushes onto the undo stack, clearing redo and enforcing the
// depth bound. Caller holds the lock.
func (h *History) pushLocked(tx *Transaction) {
	h.undo = append(h.undo, tx)
	h.redo = nil
	if len(h.undo) > h.maxEntries {
		h.undo = h.undo[len(h.undo)-h.maxEntries:]
	}
}

// Undo pops the most recent transaction. The caller applies its inverse
// changes, then the transaction moves to the redo stack.
func (h *History) Undo() (*Transaction, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.open != nil {
		return nil, ErrTransactionMisuse
	}
	if len(h.undo) == 0 {
		return nil, ErrNothingToUndo
	}
	tx := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, tx)
	return tx, nil
}

// Redo pops the most recently undone transaction back onto the undo stack
// and returns it for reapplication.
func (h *History) Redo() (*Transaction, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.open != nil {
		return nil, ErrTransactionMisuse
	}
	if len(h.redo) == 0 {
		return nil, ErrNothingToRedo
	}
	tx := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, tx)
	return tx, nil
}

// CanUndo reports whether an undo step is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0
}

// CanRedo reports whether a redo step is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// UndoLen returns the undo stack depth.
func (h *History) UndoLen() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo)
}

// RedoLen returns the redo stack depth.
func (h *History) RedoLen() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo)
}

// Clear drops all undo/redo state. Any open transaction is abandoned.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = nil
	h.redo = nil
	h.open = nil
}

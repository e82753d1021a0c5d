// Package buffer ties the engine together: a versioned rope, an edit log,
// undo history, selection sets, background syntax parsing, and
// autoindent, behind a single-writer API.
package buffer

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dshills/loom/history"
	"github.com/dshills/loom/indent"
	"github.com/dshills/loom/internal/logging"
	"github.com/dshills/loom/rope"
	"github.com/dshills/loom/syntax"
	"github.com/dshills/loom/text"
)

// ErrInvalidRange indicates an edit outside the buffer or a multi-edit
// batch that is unsorted or overlapping. The batch is rejected whole.
var ErrInvalidRange = errors.New("buffer: invalid range")

// ErrUnknownSelectionSet indicates a selection set ID the buffer does not
// hold.
var ErrUnknownSelectionSet = errors.New("buffer: unknown selection set")

// Buffer is a text buffer with versioned edits, undo/redo, anchors,
// selection sets, and an incrementally parsed syntax tree.
//
// A Buffer has a single logical writer: all mutation goes through its
// mutex. Only parsing runs concurrently, against immutable snapshots.
type Buffer struct {
	mu sync.Mutex

	id      string
	content rope.Rope
	clock   text.Clock
	log     *text.Log
	hist    *history.History

	lang  *syntax.Language
	sched syntax.Scheduler
	smap  *syntax.Map

	sets    map[text.SetID]*text.SelectionSet
	nextSet text.SetID

	settings         indent.Settings
	syncParseTimeout time.Duration
	autoindent       *autoindentState

	logger *log.Logger

	historyDepth int
	logCapacity  int
}

// FromText builds a buffer from content. Line endings are normalized to
// LF. The id identifies the buffer in logs and to multi-buffer callers.
func FromText(id, content string, opts ...Option) *Buffer {
	b := &Buffer{
		id:               id,
		sets:             make(map[text.SetID]*text.SelectionSet),
		nextSet:          1,
		settings:         indent.Settings{TabWidth: DefaultTabWidth},
		syncParseTimeout: DefaultSyncParseTimeout,
		logger:           logging.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	b.content = rope.FromString(content)
	b.log = text.NewLog(b.logCapacity)
	b.hist = history.New(b.historyDepth)

	if b.lang != nil {
		if b.sched == nil {
			b.sched = syntax.GoroutineScheduler{}
		}
		b.smap = syntax.NewMap(b.lang, b.sched, b.log.Between)
		b.smap.SetLogger(b.logger)
		b.smap.Reset(b.content, b.clock.Current())
		b.autoindent = newAutoindentState()
	}
	return b
}

// ID returns the buffer's identifier.
func (b *Buffer) ID() string { return b.id }

// Text returns the whole buffer as a string.
func (b *Buffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content.String()
}

// Len returns the buffer length in bytes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content.Len()
}

// Version returns the current buffer version.
func (b *Buffer) Version() text.Version {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.clock.Current()
}

// Language returns the attached language, or nil.
func (b *Buffer) Language() *syntax.Language { return b.lang }

// Slice returns the text in [start, end), clamped to the buffer.
func (b *Buffer) Slice(start, end int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content.Slice(start, end)
}

// OffsetToPoint converts a byte offset to a row/column position.
func (b *Buffer) OffsetToPoint(offset int) text.Point {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content.OffsetToPoint(offset)
}

// PointToOffset converts a row/column position to a byte offset.
func (b *Buffer) PointToOffset(p text.Point) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content.PointToOffset(p)
}

// LineIndentSize returns the byte length of a line's leading whitespace.
func (b *Buffer) LineIndentSize(line int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(indent.LeadingWhitespace(b.content, line))
}

// Edit applies a batch of edits atomically. Ranges address the buffer as
// it is now and must be sorted and non-overlapping; a bad batch returns
// ErrInvalidRange with nothing applied. Outside a transaction, the batch
// forms one undo step.
func (b *Buffer) Edit(edits []text.Edit) (text.Version, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.editLocked(edits, false)
}

// EditWithAutoindent applies a batch like Edit and queues the touched
// lines for the autoindent pass, which runs when the enclosing
// transaction ends (immediately for an implicit one). The whitespace
// edits it produces join the same transaction and undo with it.
func (b *Buffer) EditWithAutoindent(edits []text.Edit) (text.Version, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.editLocked(edits, true)
}

func (b *Buffer) editLocked(edits []text.Edit, autoindent bool) (text.Version, error) {
	implicit := !b.hist.IsOpen()
	if implicit {
		// Errors are impossible here: no transaction is open.
		_ = b.hist.Open(0, nil, b.clock.Current())
	}

	changes, err := b.applyLocked(edits)
	if err != nil {
		if implicit {
			_, _ = b.hist.Close(nil, b.clock.Current())
		}
		return b.clock.Current(), err
	}
	if autoindent && b.autoindent != nil {
		b.autoindent.queue(changes)
	}
	if implicit {
		if autoindent {
			b.runAutoindentLocked()
		}
		_, _ = b.hist.Close(nil, b.clock.Current())
	}
	return b.clock.Current(), nil
}

// applyLocked validates and applies a batch: rope replacement, version
// tick, log append, and history record per change, then syntax
// invalidation and selection re-anchoring once for the batch.
func (b *Buffer) applyLocked(edits []text.Edit) ([]text.Change, error) {
	if err := b.validateLocked(edits); err != nil {
		return nil, err
	}

	changes := make([]text.Change, 0, len(edits))
	delta := 0
	for _, e := range edits {
		r := e.Range.Shift(delta)
		old := b.content.Slice(r.Start, r.End)
		b.content = b.content.Replace(r.Start, r.End, e.NewText)
		c := text.Change{
			Range:    r,
			NewRange: text.Range{Start: r.Start, End: r.Start + len(e.NewText)},
			OldText:  old,
			NewText:  e.NewText,
			Version:  b.clock.Tick(),
		}
		b.log.Append(c)
		b.hist.Record(c, nil, 0)
		if b.autoindent != nil {
			b.autoindent.shiftRows(c, b.content)
		}
		changes = append(changes, c)
		delta += c.Delta()
	}

	if b.smap != nil {
		b.smap.Invalidate(changes, b.content, b.clock.Current())
	}
	b.reanchorSetsLocked()
	return changes, nil
}

func (b *Buffer) validateLocked(edits []text.Edit) error {
	length := b.content.Len()
	prevEnd := 0
	for i, e := range edits {
		r := e.Range
		if !r.IsValid() || r.Start < 0 || r.End > length {
			return fmt.Errorf("%w: edit %d range %s outside buffer of length %d", ErrInvalidRange, i, r, length)
		}
		if i > 0 && r.Start < prevEnd {
			return fmt.Errorf("%w: edit %d range %s overlaps or is unsorted", ErrInvalidRange, i, r)
		}
		prevEnd = r.End
	}
	return nil
}

// StartTransaction opens an undo transaction, snapshotting the given
// selection set for restoration on undo. Nested opens return
// history.ErrTransactionMisuse.
func (b *Buffer) StartTransaction(set text.SetID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hist.Open(set, b.selectionsLocked(set), b.clock.Current())
}

// EndTransaction runs any pending autoindent pass, snapshots the set for
// redo, and pushes the transaction. Closing with none open returns
// history.ErrTransactionMisuse; a transaction with no changes is dropped.
func (b *Buffer) EndTransaction(set text.SetID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.hist.IsOpen() {
		b.runAutoindentLocked()
	}
	_, err := b.hist.Close(b.selectionsLocked(set), b.clock.Current())
	return err
}

// Undo reverts the most recent transaction, restores its selection
// snapshot, and marks the syntax tree for reparse before returning.
func (b *Buffer) Undo() (text.Version, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tx, err := b.hist.Undo()
	if err != nil {
		return b.clock.Current(), err
	}
	b.replayLocked(tx.InverseChanges())
	b.restoreSelectionsLocked(tx.SelectionSet, tx.SelectionsBefore)
	b.reanchorSetsLocked()
	return b.clock.Current(), nil
}

// Redo reapplies the most recently undone transaction.
func (b *Buffer) Redo() (text.Version, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tx, err := b.hist.Redo()
	if err != nil {
		return b.clock.Current(), err
	}
	b.replayLocked(forwardChanges(tx))
	b.restoreSelectionsLocked(tx.SelectionSet, tx.SelectionsAfter)
	b.reanchorSetsLocked()
	return b.clock.Current(), nil
}

// CanUndo reports whether an undo step exists.
func (b *Buffer) CanUndo() bool { return b.hist.CanUndo() }

// CanRedo reports whether a redo step exists.
func (b *Buffer) CanRedo() bool { return b.hist.CanRedo() }

// replayLocked applies recorded changes outside history: the rope edit,
// a fresh version per change, and the log append, then invalidates
// syntax. Undo and redo go through here so they never re-record.
func (b *Buffer) replayLocked(changes []text.Change) {
	applied := make([]text.Change, 0, len(changes))
	for _, c := range changes {
		old := b.content.Slice(c.Range.Start, c.Range.End)
		b.content = b.content.Replace(c.Range.Start, c.Range.End, c.NewText)
		ac := text.Change{
			Range:    c.Range,
			NewRange: c.NewRange,
			OldText:  old,
			NewText:  c.NewText,
			Version:  b.clock.Tick(),
		}
		b.log.Append(ac)
		if b.autoindent != nil {
			b.autoindent.shiftRows(ac, b.content)
		}
		applied = append(applied, ac)
	}
	if b.smap != nil && len(applied) > 0 {
		b.smap.Invalidate(applied, b.content, b.clock.Current())
	}
}

func forwardChanges(tx *history.Transaction) []text.Change {
	// A transaction's changes were recorded sequentially, so their
	// ranges are already valid in application order.
	return tx.Changes
}

// AnchorBefore returns an anchor at the grapheme boundary at or before
// offset that stays before text inserted at its position.
func (b *Buffer) AnchorBefore(offset int) text.Anchor {
	b.mu.Lock()
	defer b.mu.Unlock()
	off := b.content.ClipOffset(offset, rope.BiasLeft)
	return text.At(b.clock.Current(), off, text.BiasBefore)
}

// AnchorAfter returns an anchor at the grapheme boundary at or after
// offset that moves past text inserted at its position.
func (b *Buffer) AnchorAfter(offset int) text.Anchor {
	b.mu.Lock()
	defer b.mu.Unlock()
	off := b.content.ClipOffset(offset, rope.BiasRight)
	return text.At(b.clock.Current(), off, text.BiasAfter)
}

// ResolveAnchor maps an anchor created on this buffer to an offset in the
// current text. Anchors from other buffers or versions outside the
// retained log window panic; provenance is the caller's contract.
func (b *Buffer) ResolveAnchor(a text.Anchor) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return a.Resolve(b.log, b.clock.Current(), b.content.Len())
}

// AnchorPoint resolves an anchor to a row/column position.
func (b *Buffer) AnchorPoint(a text.Anchor) text.Point {
	b.mu.Lock()
	defer b.mu.Unlock()
	off := a.Resolve(b.log, b.clock.Current(), b.content.Len())
	return b.content.OffsetToPoint(off)
}

// IsParsing reports whether a background parse is scheduled or running.
func (b *Buffer) IsParsing() bool {
	return b.smap != nil && b.smap.IsParsing()
}

// SyntaxTree returns the most recently installed tree, or nil without a
// language or before the first parse lands.
func (b *Buffer) SyntaxTree() *syntax.Tree {
	if b.smap == nil {
		return nil
	}
	return b.smap.Tree()
}

// SetSyncParseTimeout adjusts how long operations that need a current
// tree wait for the background parse before falling back to a
// foreground parse.
func (b *Buffer) SetSyncParseTimeout(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.syncParseTimeout = d
}

// EnclosingBracketPointRanges finds the innermost bracket pair enclosing
// r, endpoints inclusive. ok is false without a language, when parsing
// fails, or when no pair encloses r.
func (b *Buffer) EnclosingBracketPointRanges(r text.PointRange) (open, closing text.PointRange, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tree := b.currentTreeLocked()
	if tree == nil {
		return text.PointRange{}, text.PointRange{}, false
	}
	rng := text.Range{
		Start: b.content.PointToOffset(r.Start),
		End:   b.content.PointToOffset(r.End),
	}
	openRange, closeRange, found := syntax.EnclosingBrackets(tree, b.lang.Brackets, rng)
	if !found {
		return text.PointRange{}, text.PointRange{}, false
	}
	return b.pointRangeLocked(openRange), b.pointRangeLocked(closeRange), true
}

func (b *Buffer) pointRangeLocked(r text.Range) text.PointRange {
	return text.PointRange{
		Start: b.content.OffsetToPoint(r.Start),
		End:   b.content.OffsetToPoint(r.End),
	}
}

// currentTreeLocked returns a tree matching the current version, waiting
// up to syncParseTimeout for the background parse and then parsing in
// the foreground. Nil without a language or when parsing fails.
func (b *Buffer) currentTreeLocked() *syntax.Tree {
	if b.smap == nil {
		return nil
	}
	version := b.clock.Current()
	if t := b.smap.Tree(); t != nil && t.Version == version && !b.smap.IsParsing() {
		return t
	}
	b.smap.Wait(b.syncParseTimeout)
	if t := b.smap.Tree(); t != nil && t.Version == version {
		return t
	}
	if err := b.smap.ParseSync(); err != nil {
		return nil
	}
	if t := b.smap.Tree(); t != nil && t.Version == version {
		return t
	}
	return nil
}

package buffer

import (
	"github.com/dshills/loom/rope"
	"github.com/dshills/loom/syntax"
	"github.com/dshills/loom/text"
)

// Snapshot is an immutable view of the buffer at one version: the rope,
// the version, and the syntax tree installed at capture time. Reads are
// safe from any goroutine and unaffected by later edits.
type Snapshot struct {
	id      string
	content rope.Rope
	version text.Version
	tree    *syntax.Tree
}

// Snapshot captures the current state.
func (b *Buffer) Snapshot() *Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	var tree *syntax.Tree
	if b.smap != nil {
		tree = b.smap.Tree()
	}
	return &Snapshot{
		id:      b.id,
		content: b.content,
		version: b.clock.Current(),
		tree:    tree,
	}
}

// BufferID returns the source buffer's identifier.
func (s *Snapshot) BufferID() string { return s.id }

// Version returns the version the snapshot was taken at.
func (s *Snapshot) Version() text.Version { return s.version }

// Tree returns the syntax tree installed when the snapshot was taken,
// which may trail the snapshot's version, or nil.
func (s *Snapshot) Tree() *syntax.Tree { return s.tree }

// Text returns the whole snapshot as a string.
func (s *Snapshot) Text() string { return s.content.String() }

// Len returns the snapshot length in bytes.
func (s *Snapshot) Len() int { return s.content.Len() }

// NumLines returns the number of lines.
func (s *Snapshot) NumLines() int { return s.content.NumLines() }

// Line returns a row's text without its newline.
func (s *Snapshot) Line(row int) string { return s.content.Line(row) }

// Slice returns the text in [start, end), clamped to the snapshot.
func (s *Snapshot) Slice(start, end int) string { return s.content.Slice(start, end) }

// OffsetToPoint converts a byte offset to a row/column position.
func (s *Snapshot) OffsetToPoint(offset int) text.Point { return s.content.OffsetToPoint(offset) }

// PointToOffset converts a row/column position to a byte offset.
func (s *Snapshot) PointToOffset(p text.Point) int { return s.content.PointToOffset(p) }

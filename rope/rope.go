// Package rope implements an immutable rope for text storage.
//
// A Rope is a balanced tree of small string chunks. All operations return
// new Rope values and share unchanged subtrees with their inputs, so taking
// a snapshot is a single pointer copy and readers never block a writer.
package rope

import "strings"

// Rope is an immutable rope. The zero value is an empty rope.
type Rope struct {
	root *node
}

// New returns an empty rope.
func New() Rope {
	return Rope{root: newLeaf(nil)}
}

// FromString builds a rope containing s.
func FromString(s string) Rope {
	if len(s) == 0 {
		return New()
	}
	return Rope{root: buildNode(leavesFromChunks(splitIntoChunks(s)))}
}

// Len returns the total length in bytes.
func (r Rope) Len() int {
	if r.root == nil {
		return 0
	}
	return r.root.sum.bytes
}

// IsEmpty reports whether the rope contains no text.
func (r Rope) IsEmpty() bool {
	return r.Len() == 0
}

// NumLines returns the number of lines (newlines + 1).
func (r Rope) NumLines() int {
	if r.root == nil {
		return 1
	}
	return r.root.sum.newlines + 1
}

// String returns the full text. Use sparingly on large ropes.
func (r Rope) String() string {
	if r.root == nil {
		return ""
	}
	var sb strings.Builder
	sb.Grow(r.Len())
	r.root.appendTo(&sb)
	return sb.String()
}

// Slice returns the text in the byte range [start, end).
// The range is clamped to the rope bounds.
func (r Rope) Slice(start, end int) string {
	if r.root == nil {
		return ""
	}
	if start < 0 {
		start = 0
	}
	if end > r.Len() {
		end = r.Len()
	}
	if start >= end {
		return ""
	}
	var sb strings.Builder
	sb.Grow(end - start)
	r.root.appendRange(&sb, start, end)
	return sb.String()
}

// Insert returns a rope with text inserted at the byte offset.
func (r Rope) Insert(offset int, text string) Rope {
	if len(text) == 0 {
		return r
	}
	if r.Len() == 0 {
		return FromString(text)
	}
	if offset <= 0 {
		return FromString(text).Concat(r)
	}
	if offset >= r.Len() {
		return r.Concat(FromString(text))
	}
	left, right := r.Split(offset)
	return left.Concat(FromString(text)).Concat(right)
}

// Delete returns a rope with the byte range [start, end) removed.
func (r Rope) Delete(start, end int) Rope {
	if start < 0 {
		start = 0
	}
	if end > r.Len() {
		end = r.Len()
	}
	if start >= end {
		return r
	}
	if start == 0 && end == r.Len() {
		return New()
	}
	left, rest := r.Split(start)
	_, right := rest.Split(end - start)
	return left.Concat(right)
}

// Replace returns a rope with [start, end) replaced by text.
func (r Rope) Replace(start, end int, text string) Rope {
	if start >= end {
		return r.Insert(start, text)
	}
	if len(text) == 0 {
		return r.Delete(start, end)
	}
	return r.Delete(start, end).Insert(start, text)
}

// Split divides the rope at offset into [0, offset) and [offset, len).
func (r Rope) Split(offset int) (Rope, Rope) {
	if r.root == nil || offset <= 0 {
		return New(), r
	}
	if offset >= r.Len() {
		return r, New()
	}
	left, right := r.root.split(offset)
	return Rope{root: left}, Rope{root: right}
}

// Concat returns the concatenation of r and other.
func (r Rope) Concat(other Rope) Rope {
	if r.Len() == 0 {
		return other
	}
	if other.Len() == 0 {
		return r
	}
	return Rope{root: concat(r.root, other.root)}
}

// LineStart returns the byte offset at which the given 0-indexed row begins.
func (r Rope) LineStart(row int) int {
	if r.root == nil || row <= 0 {
		return 0
	}
	if row > r.root.sum.newlines {
		return r.Len()
	}
	return r.root.nthNewline(row) + 1
}

// LineEnd returns the byte offset of the end of the row, excluding the
// trailing newline.
func (r Rope) LineEnd(row int) int {
	if r.root == nil {
		return 0
	}
	if row >= r.root.sum.newlines {
		return r.Len()
	}
	return r.root.nthNewline(row + 1)
}

// Line returns the text of the given row, without its newline.
func (r Rope) Line(row int) string {
	return r.Slice(r.LineStart(row), r.LineEnd(row))
}

// LineLen returns the byte length of the given row, without its newline.
func (r Rope) LineLen(row int) int {
	return r.LineEnd(row) - r.LineStart(row)
}

// OffsetToPoint converts a byte offset to a row/column position.
// Offsets outside the rope are clamped.
func (r Rope) OffsetToPoint(offset int) Point {
	if r.root == nil || offset <= 0 {
		return Point{}
	}
	if offset > r.Len() {
		offset = r.Len()
	}
	row := r.root.newlinesBefore(offset)
	return Point{Row: row, Column: offset - r.LineStart(row)}
}

// PointToOffset converts a row/column position to a byte offset.
// Positions outside the rope are clamped to the nearest valid offset.
func (r Rope) PointToOffset(p Point) int {
	if r.root == nil || p.Row < 0 {
		return 0
	}
	if p.Row >= r.NumLines() {
		return r.Len()
	}
	start := r.LineStart(p.Row)
	end := r.LineEnd(p.Row)
	if p.Column < 0 {
		return start
	}
	if start+p.Column > end {
		return end
	}
	return start + p.Column
}

// Equal reports whether two ropes contain the same text.
func (r Rope) Equal(other Rope) bool {
	if r.Len() != other.Len() {
		return false
	}
	return r.String() == other.String()
}

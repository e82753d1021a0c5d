// Package text defines the value types shared by the buffer engine:
// offsets, ranges, edits, versions, anchors, and selections, together with
// the bounded edit log that anchor resolution replays.
//
// Everything here is a plain value; no type in this package refers into a
// rope's internals, so values remain meaningful across buffer versions.
package text

import (
	"fmt"

	"github.com/dshills/loom/rope"
)

// Point is a 0-indexed row/column position, column in bytes.
type Point = rope.Point

// Pt is shorthand for constructing a Point.
func Pt(row, column int) Point {
	return Point{Row: row, Column: column}
}

// Range is a byte range [Start, End).
type Range struct {
	Start int
	End   int
}

// String returns "[start:end)".
func (r Range) String() string {
	return fmt.Sprintf("[%d:%d)", r.Start, r.End)
}

// Len returns the length of the range in bytes.
func (r Range) Len() int {
	return r.End - r.Start
}

// IsEmpty reports whether the range has zero length.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// IsValid reports whether Start <= End.
func (r Range) IsValid() bool {
	return r.Start <= r.End
}

// Contains reports whether offset lies in [Start, End).
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// ContainsInclusive reports whether offset lies in [Start, End].
func (r Range) ContainsInclusive(offset int) bool {
	return offset >= r.Start && offset <= r.End
}

// ContainsRange reports whether other lies entirely within r.
func (r Range) ContainsRange(other Range) bool {
	return other.Start >= r.Start && other.End <= r.End
}

// Overlaps reports whether the ranges share at least one byte.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}

// Union returns the smallest range covering both.
func (r Range) Union(other Range) Range {
	out := r
	if other.Start < out.Start {
		out.Start = other.Start
	}
	if other.End > out.End {
		out.End = other.End
	}
	return out
}

// Shift returns the range moved by delta bytes.
func (r Range) Shift(delta int) Range {
	return Range{Start: r.Start + delta, End: r.End + delta}
}

// PointRange is a range expressed in row/column positions.
type PointRange struct {
	Start Point
	End   Point
}

// String returns "[start:end)".
func (r PointRange) String() string {
	return fmt.Sprintf("[%s:%s)", r.Start, r.End)
}

// ContainsInclusive reports whether p lies in [Start, End].
func (r PointRange) ContainsInclusive(p Point) bool {
	return p.Compare(r.Start) >= 0 && p.Compare(r.End) <= 0
}

package text

import "fmt"

// Edit replaces the text in Range with NewText. An empty range is an
// insertion; empty NewText is a deletion.
type Edit struct {
	Range   Range
	NewText string
}

// Insert returns an edit inserting text at offset.
func Insert(offset int, text string) Edit {
	return Edit{Range: Range{Start: offset, End: offset}, NewText: text}
}

// Delete returns an edit removing [start, end).
func Delete(start, end int) Edit {
	return Edit{Range: Range{Start: start, End: end}}
}

// Replace returns an edit replacing [start, end) with text.
func Replace(start, end int, text string) Edit {
	return Edit{Range: Range{Start: start, End: end}, NewText: text}
}

// Delta returns the change in buffer length the edit causes.
func (e Edit) Delta() int {
	return len(e.NewText) - e.Range.Len()
}

// String returns a human-readable form of the edit.
func (e Edit) String() string {
	switch {
	case e.Range.IsEmpty():
		return fmt.Sprintf("insert %q at %d", e.NewText, e.Range.Start)
	case e.NewText == "":
		return fmt.Sprintf("delete %s", e.Range)
	default:
		return fmt.Sprintf("replace %s with %q", e.Range, e.NewText)
	}
}

// Change is an applied edit: the edit itself plus the text it removed and
// the version the buffer reached once it was applied. A Change carries
// enough information to be replayed or inverted.
type Change struct {
	// Range is the replaced range in the pre-change text.
	Range Range
	// NewRange is the resulting range in the post-change text.
	NewRange Range
	// OldText is the text that was removed.
	OldText string
	// NewText is the text that was inserted.
	NewText string
	// Version identifies the buffer state after this change.
	Version Version
}

// Delta returns the byte-length change.
func (c Change) Delta() int {
	return len(c.NewText) - len(c.OldText)
}

// Invert returns the change that undoes c. The caller assigns the inverse
// a fresh version when it is applied.
func (c Change) Invert() Change {
	return Change{
		Range:    c.NewRange,
		NewRange: c.Range,
		OldText:  c.NewText,
		NewText:  c.OldText,
	}
}

// Edit returns the change as a reapplicable edit.
func (c Change) Edit() Edit {
	return Edit{Range: c.Range, NewText: c.NewText}
}

// TransformOffset maps a pre-change offset into post-change coordinates.
// An insertion exactly at the offset leaves it in place when after is
// false and moves it past the inserted text when after is true.
func (c Change) TransformOffset(offset int, after bool) int {
	switch {
	case c.Range.End < offset, c.Range.End == offset && !c.Range.IsEmpty():
		// Change lies strictly before the offset.
		return offset + c.Delta()
	case c.Range.Start == offset && c.Range.IsEmpty():
		if after {
			return offset + len(c.NewText)
		}
		return offset
	case c.Range.Start >= offset:
		return offset
	default:
		// Change spans the offset.
		if after {
			return c.Range.Start + len(c.NewText)
		}
		return c.Range.Start
	}
}

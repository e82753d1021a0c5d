package text

import (
	"fmt"

	"github.com/mattn/go-runewidth"
)

// GoalNone marks a selection with no remembered goal column.
const GoalNone = -1

// Selection is a pair of anchors with movement metadata. Start and End are
// ordered positions; Reversed records that the user extended the selection
// leftward, so the cursor sits at Start. Goal remembers the display column
// targeted by vertical movement so crossing short lines does not lose the
// intended column.
type Selection struct {
	ID       int
	Start    Anchor
	End      Anchor
	Reversed bool
	Goal     int
}

// Caret returns a collapsed selection at the given anchor.
func Caret(id int, a Anchor) Selection {
	return Selection{ID: id, Start: a, End: a, Goal: GoalNone}
}

// Head returns the anchor the cursor sits at.
func (s Selection) Head() Anchor {
	if s.Reversed {
		return s.Start
	}
	return s.End
}

// Tail returns the anchor opposite the cursor.
func (s Selection) Tail() Anchor {
	if s.Reversed {
		return s.End
	}
	return s.Start
}

// String returns a debug form of the selection.
func (s Selection) String() string {
	dir := ""
	if s.Reversed {
		dir = " reversed"
	}
	return fmt.Sprintf("Selection(%d: %s..%s%s)", s.ID, s.Start, s.End, dir)
}

// SetID identifies a selection set within a buffer.
type SetID int

// SelectionSet is an ordered list of selections owned by one editing
// participant (one editor view, one collaborator cursor, ...).
type SelectionSet struct {
	ID         SetID
	Selections []Selection
}

// Clone returns a deep copy of the set.
func (ss SelectionSet) Clone() SelectionSet {
	out := SelectionSet{ID: ss.ID}
	out.Selections = make([]Selection, len(ss.Selections))
	copy(out.Selections, ss.Selections)
	return out
}

// DisplayColumn returns the display width of line's first byteColumn
// bytes, accounting for wide runes. Vertical movement goals are expressed
// in display columns.
func DisplayColumn(line string, byteColumn int) int {
	if byteColumn > len(line) {
		byteColumn = len(line)
	}
	return runewidth.StringWidth(line[:byteColumn])
}

// ColumnForDisplay returns the byte column within line whose display
// column is closest to, without exceeding, the goal.
func ColumnForDisplay(line string, goal int) int {
	width := 0
	for i, r := range line {
		w := runewidth.RuneWidth(r)
		if width+w > goal {
			return i
		}
		width += w
	}
	return len(line)
}

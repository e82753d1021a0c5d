package buffer

import (
	"sort"
	"strings"

	"github.com/dshills/loom/indent"
	"github.com/dshills/loom/rope"
	"github.com/dshills/loom/text"
)

// autoindentState carries the rows queued for the next indent pass and
// the indentation the engine last suggested per row. A row whose current
// whitespace no longer matches its last suggestion has been adjusted by
// hand and is left alone. The record is rekeyed on every change so an
// entry keeps following the line it was recorded for.
type autoindentState struct {
	pending       []pendingSpan
	lastSuggested map[int]string
}

// pendingSpan tracks one change's inserted text by anchors, so the rows
// it covers stay correct under later edits in the same transaction.
type pendingSpan struct {
	start, end text.Anchor
	multiline  bool
}

func newAutoindentState() *autoindentState {
	return &autoindentState{lastSuggested: make(map[int]string)}
}

// shiftRows rekeys the suggestion record across one applied change.
// Rows below a change that adds or removes newlines move with their
// lines; rows whose text the change rewrote lose their entry. content
// is the rope after the change.
func (s *autoindentState) shiftRows(c text.Change, content rope.Rope) {
	if len(s.lastSuggested) == 0 {
		return
	}
	removed := strings.Count(c.OldText, "\n")
	added := strings.Count(c.NewText, "\n")

	start := content.OffsetToPoint(c.NewRange.Start)
	// Text before the change is untouched, so the first row's
	// indentation survives when the change begins after a
	// non-whitespace byte.
	head := content.Slice(content.LineStart(start.Row), c.NewRange.Start)
	headKept := strings.TrimLeft(head, " \t") != ""
	if removed == 0 && added == 0 && headKept {
		return
	}

	out := make(map[int]string, len(s.lastSuggested))
	for row, ws := range s.lastSuggested {
		switch {
		case row < start.Row, row == start.Row && headKept:
			out[row] = ws
		case row > start.Row+removed:
			out[row+added-removed] = ws
		}
	}
	s.lastSuggested = out
}

func (s *autoindentState) queue(changes []text.Change) {
	for _, c := range changes {
		s.pending = append(s.pending, pendingSpan{
			start:     text.At(c.Version, c.NewRange.Start, text.BiasBefore),
			end:       text.At(c.Version, c.NewRange.End, text.BiasAfter),
			multiline: strings.Contains(c.NewText, "\n"),
		})
	}
}

// runAutoindentLocked computes suggestions for the queued rows and
// applies the whitespace edits through the normal pipeline, inside the
// still-open transaction. Rows inserted by the transaction always take
// the suggestion; pre-existing rows only when their indentation is
// exactly what the engine last suggested. Failure to obtain a tree skips
// the pass; the text edits themselves are never rolled back.
func (b *Buffer) runAutoindentLocked() {
	if b.autoindent == nil || len(b.autoindent.pending) == 0 {
		return
	}
	pending := b.autoindent.pending
	b.autoindent.pending = nil

	tree := b.currentTreeLocked()
	if tree == nil {
		b.logger.Warn("autoindent skipped, no syntax tree", "buffer", b.id)
		return
	}

	version := b.clock.Current()
	length := b.content.Len()
	rows := make(map[int]bool)
	inserted := make(map[int]bool)
	for _, p := range pending {
		startPt := b.content.OffsetToPoint(p.start.Resolve(b.log, version, length))
		endRow := b.content.OffsetToPoint(p.end.Resolve(b.log, version, length)).Row
		for row := startPt.Row; row <= endRow; row++ {
			rows[row] = true
			// A multiline insertion at a line start makes its first
			// row wholly new text as well.
			if p.multiline && (row > startPt.Row || startPt.Column == 0) {
				inserted[row] = true
			}
		}
	}
	sorted := make([]int, 0, len(rows))
	for row := range rows {
		sorted = append(sorted, row)
	}
	sort.Ints(sorted)

	sugs := indent.SuggestLines(tree, b.lang.Indents, b.content, sorted)
	eligible := func(line int, current string) bool {
		if inserted[line] {
			return true
		}
		prev, seen := b.autoindent.lastSuggested[line]
		return seen && current == prev
	}
	edits := indent.Apply(b.content, sugs, b.settings, eligible)
	if len(edits) > 0 {
		if _, err := b.applyLocked(edits); err != nil {
			b.logger.Warn("autoindent edits rejected", "buffer", b.id, "err", err)
			return
		}
	}
	for _, sug := range sugs {
		want := b.settings.Text(sug.Level)
		if indent.LeadingWhitespace(b.content, sug.Line) == want {
			b.autoindent.lastSuggested[sug.Line] = want
		}
	}
}

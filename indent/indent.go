// Package indent computes suggested indentation levels from a syntax tree
// and plans the whitespace edits that realize them.
package indent

import (
	"strings"

	"github.com/dshills/loom/rope"
	"github.com/dshills/loom/syntax"
	"github.com/dshills/loom/text"
)

// Suggestion is the computed indent for one line. Level counts indenting
// scopes, not columns; the caller expands it with its tab settings.
// FromLine is the row of the innermost scope that produced the level, or
// -1 when the line is at the top level.
type Suggestion struct {
	Line     int
	Level    int
	FromLine int
}

// Settings expands indent levels into whitespace.
type Settings struct {
	TabWidth int
	HardTabs bool
}

// Unit returns the whitespace for one indent level.
func (s Settings) Unit() string {
	if s.HardTabs {
		return "\t"
	}
	return strings.Repeat(" ", s.TabWidth)
}

// Text returns the leading whitespace for level levels.
func (s Settings) Text(level int) string {
	if level <= 0 {
		return ""
	}
	return strings.Repeat(s.Unit(), level)
}

// SuggestLines computes suggestions for the given lines. A line's level is
// the number of indenting scopes that open strictly before it and stay
// open through it; a line whose first token closes such a scope does not
// count that scope toward its own indent. lines must be valid rows of
// snap.
func SuggestLines(tree *syntax.Tree, query syntax.IndentQuery, snap rope.Rope, lines []int) []Suggestion {
	out := make([]Suggestion, 0, len(lines))
	for _, line := range lines {
		out = append(out, suggestLine(tree, query, snap, line))
	}
	return out
}

func suggestLine(tree *syntax.Tree, query syntax.IndentQuery, snap rope.Rope, line int) Suggestion {
	sug := Suggestion{Line: line, FromLine: -1}
	if tree == nil {
		return sug
	}
	level := 0
	from := -1
	tree.Walk(func(n *syntax.Node) bool {
		if n.IsLeaf() && !query.Indents(n.Kind) {
			return false
		}
		startRow := snap.OffsetToPoint(n.Range.Start).Row
		endRow := snap.OffsetToPoint(n.Range.End).Row
		if startRow >= line {
			// Children start no earlier than the node itself.
			return false
		}
		if !query.Indents(n.Kind) || endRow < line {
			return endRow >= line
		}
		level++
		if startRow > from {
			from = startRow
		}
		return true
	})
	if level > 0 && query.HasEndPrefix(trimmedLine(snap, line)) {
		level--
	}
	sug.Level = level
	sug.FromLine = from
	return sug
}

// trimmedLine returns the line's text with leading whitespace removed.
func trimmedLine(snap rope.Rope, line int) string {
	return strings.TrimLeft(snap.Line(line), " \t")
}

// LeadingWhitespace returns the line's leading run of spaces and tabs.
func LeadingWhitespace(snap rope.Rope, line int) string {
	txt := snap.Line(line)
	return txt[:len(txt)-len(strings.TrimLeft(txt, " \t"))]
}

// Apply plans whitespace edits realizing the suggestions. A line is
// rewritten only when eligible allows it; the buffer gates that on the
// line either carrying exactly the previously suggested indentation or
// having been inserted by the triggering transaction, so manual
// adjustments survive. The returned edits are sorted and non-overlapping.
func Apply(snap rope.Rope, sugs []Suggestion, settings Settings, eligible func(line int, current string) bool) []text.Edit {
	var edits []text.Edit
	for _, sug := range sugs {
		current := LeadingWhitespace(snap, sug.Line)
		want := settings.Text(sug.Level)
		if current == want {
			continue
		}
		if eligible != nil && !eligible(sug.Line, current) {
			continue
		}
		start := snap.LineStart(sug.Line)
		edits = append(edits, text.Edit{
			Range:   text.Range{Start: start, End: start + len(current)},
			NewText: want,
		})
	}
	return edits
}

// ContiguousRanges groups sorted line numbers into half-open ranges,
// splitting runs longer than maxLen.
func ContiguousRanges(lines []int, maxLen int) []text.Range {
	var out []text.Range
	for _, line := range lines {
		if n := len(out); n > 0 {
			last := &out[n-1]
			if line == last.End && last.Len() < maxLen {
				last.End = line + 1
				continue
			}
		}
		out = append(out, text.Range{Start: line, End: line + 1})
	}
	return out
}

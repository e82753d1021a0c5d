package rope

import (
	"fmt"
	"unicode/utf8"
)

// Point is a 0-indexed row/column position. Column is measured in bytes
// from the start of the row.
type Point struct {
	Row    int
	Column int
}

// String returns "(row:column)".
func (p Point) String() string {
	return fmt.Sprintf("(%d:%d)", p.Row, p.Column)
}

// Compare returns -1, 0, or 1 ordering p against other.
func (p Point) Compare(other Point) int {
	switch {
	case p.Row < other.Row:
		return -1
	case p.Row > other.Row:
		return 1
	case p.Column < other.Column:
		return -1
	case p.Column > other.Column:
		return 1
	default:
		return 0
	}
}

// summary holds aggregated metrics for a span of text. Summaries form a
// monoid under add; node summaries are the sums of their children.
type summary struct {
	bytes     int
	newlines  int
	utf16     int
	firstLine int // byte length of the first line (up to the first newline)
	lastLine  int // byte length of the text after the last newline
}

func (s summary) add(o summary) summary {
	out := summary{
		bytes:    s.bytes + o.bytes,
		newlines: s.newlines + o.newlines,
		utf16:    s.utf16 + o.utf16,
	}
	if s.newlines > 0 {
		out.firstLine = s.firstLine
	} else {
		out.firstLine = s.firstLine + o.firstLine
	}
	if o.newlines > 0 {
		out.lastLine = o.lastLine
	} else {
		out.lastLine = o.lastLine + s.lastLine
	}
	return out
}

func computeSummary(s string) summary {
	var sum summary
	sum.bytes = len(s)
	lineLen := 0
	for _, r := range s {
		if r > 0xFFFF {
			sum.utf16 += 2
		} else {
			sum.utf16++
		}
		if r == '\n' {
			sum.newlines++
			if sum.newlines == 1 {
				sum.firstLine = lineLen
			}
			lineLen = 0
		} else {
			lineLen += utf8.RuneLen(r)
		}
	}
	sum.lastLine = lineLen
	if sum.newlines == 0 {
		sum.firstLine = lineLen
	}
	return sum
}

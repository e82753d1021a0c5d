package rope

import "github.com/rivo/uniseg"

// Bias selects which side of an invalid position a clip resolves to.
type Bias int

const (
	// BiasLeft clips to the nearest valid position at or before the input.
	BiasLeft Bias = iota
	// BiasRight clips to the nearest valid position at or after the input.
	BiasRight
)

// ClipOffset clamps offset into the rope and moves it to the nearest
// grapheme-cluster boundary in the direction of bias. Offsets returned by
// rope operations are always valid; ClipOffset exists so positions from
// arbitrary arithmetic can be made safe.
func (r Rope) ClipOffset(offset int, bias Bias) int {
	if offset <= 0 {
		return 0
	}
	if offset >= r.Len() {
		return r.Len()
	}

	// Grapheme clusters never span newlines, so boundaries within the
	// offset's line are sufficient.
	p := r.OffsetToPoint(offset)
	start := r.LineStart(p.Row)
	line := r.Line(p.Row)

	target := offset - start
	pos := 0
	state := -1
	rest := line
	for pos < target && len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		next := pos + len(cluster)
		if next > target {
			if bias == BiasLeft {
				return start + pos
			}
			return start + next
		}
		pos = next
	}
	return start + pos
}

// ClipPoint clamps p into the rope and moves its column to the nearest
// grapheme-cluster boundary in the direction of bias.
func (r Rope) ClipPoint(p Point, bias Bias) Point {
	if p.Row < 0 {
		return Point{}
	}
	if p.Row >= r.NumLines() {
		last := r.NumLines() - 1
		return Point{Row: last, Column: r.LineLen(last)}
	}
	if p.Column < 0 {
		p.Column = 0
	}
	if p.Column > r.LineLen(p.Row) {
		p.Column = r.LineLen(p.Row)
	}
	start := r.LineStart(p.Row)
	clipped := r.ClipOffset(start+p.Column, bias)
	return Point{Row: p.Row, Column: clipped - start}
}

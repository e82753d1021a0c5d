package syntax

import (
	"sort"

	"github.com/dshills/loom/text"
)

// EnclosingBrackets finds the innermost delimited node containing rng,
// endpoints inclusive, and returns the byte ranges of its opening and
// closing tokens. A range sitting exactly on a bracket character matches
// the pair owning that character over a smaller pair it merely touches.
// ok is false when no closed delimited node encloses rng.
//
// Endpoints are inclusive on both sides, so at a boundary between two
// sibling nodes every enclosing pair on either side is considered.
func EnclosingBrackets(tree *Tree, brackets BracketQuery, rng text.Range) (open, closing text.Range, ok bool) {
	if tree == nil || tree.Root == nil {
		return text.Range{}, text.Range{}, false
	}

	type candidate struct {
		size        int
		open, close text.Range
	}
	var cands []candidate
	var visit func(n *Node)
	visit = func(n *Node) {
		if !containsInclusive(n.Range, rng) {
			return
		}
		if pair, found := brackets.Pair(n.Kind); found && n.Closed {
			cands = append(cands, candidate{
				size:  n.Range.Len(),
				open:  text.Range{Start: n.Range.Start, End: n.Range.Start + len(pair.Open)},
				close: text.Range{Start: n.Range.End - len(pair.Close), End: n.Range.End},
			})
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	visit(tree.Root)

	if len(cands) == 0 {
		return text.Range{}, text.Range{}, false
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].size < cands[j].size })

	// Prefer a pair whose bracket token itself contains the range.
	for _, c := range cands {
		if c.open.ContainsRange(rng) || c.close.ContainsRange(rng) {
			return c.open, c.close, true
		}
	}
	return cands[0].open, cands[0].close, true
}

package language

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dshills/loom/syntax"
	"github.com/dshills/loom/text"
)

// grammar is the delimiter-structure parser compiled from a Definition.
// It tokenizes delimiters, words, and punctuation, then builds container
// nodes from nested delimiter pairs. Unterminated pairs extend to the end
// of the text instead of failing.
type grammar struct {
	def    *Definition
	word   *regexp.Regexp
	byOpen map[string]PairDef

	delims []string // all delimiter tokens, longest first
}

type token struct {
	text       string
	start, end int
	delim      bool
	word       bool
}

// Parse implements syntax.Grammar. A previous tree plus the edited ranges
// lets closed top-level container subtrees outside the dirty region be
// reused; everything else is reparsed. It never returns an error: input
// that does not fit the grammar still produces an error-tolerant tree.
func (g *grammar) Parse(src string, old *syntax.Tree, edited []text.Range) (*syntax.Node, error) {
	if old != nil && old.Root != nil && len(edited) > 0 {
		if root, ok := g.parseIncremental(src, old, edited); ok {
			return root, nil
		}
	}
	nodes, _ := g.parseRegion(src, 0)
	return &syntax.Node{
		Kind:     g.def.Root,
		Range:    text.Range{End: len(src)},
		Closed:   true,
		Children: nodes,
	}, nil
}

// parseIncremental reuses closed top-level container nodes strictly before
// the first edited offset and strictly after the last, reparsing only the
// region between them. It reports false when the split would not
// reproduce a from-scratch parse, and the caller falls back.
func (g *grammar) parseIncremental(src string, old *syntax.Tree, edited []text.Range) (*syntax.Node, bool) {
	first, last := edited[0].Start, edited[0].End
	for _, r := range edited[1:] {
		if r.Start < first {
			first = r.Start
		}
		if r.End > last {
			last = r.End
		}
	}
	delta := len(src) - old.Root.Range.End

	children := old.Root.Children
	var prefix []*syntax.Node
	for _, c := range children {
		if !g.reusable(c) || c.Range.End >= first {
			break
		}
		prefix = append(prefix, c)
	}
	var suffix []*syntax.Node
	for i := len(children) - 1; i >= len(prefix); i-- {
		c := children[i]
		if !g.reusable(c) || c.Range.Start+delta < last {
			break
		}
		suffix = append(suffix, c)
	}

	parseStart := 0
	if len(prefix) > 0 {
		parseStart = prefix[len(prefix)-1].Range.End
	}
	parseEnd := len(src)
	if len(suffix) > 0 {
		parseEnd = suffix[len(suffix)-1].Range.Start + delta
	}
	if parseStart > parseEnd {
		return nil, false
	}

	mid, unclosed := g.parseRegion(src[parseStart:parseEnd], parseStart)
	if unclosed {
		// An unterminated pair in the middle would have swallowed the
		// suffix in a from-scratch parse.
		return nil, false
	}

	merged := make([]*syntax.Node, 0, len(prefix)+len(mid)+len(suffix))
	merged = append(merged, prefix...)
	merged = append(merged, mid...)
	for i := len(suffix) - 1; i >= 0; i-- {
		merged = append(merged, shiftSubtree(suffix[i], delta))
	}
	return &syntax.Node{
		Kind:     g.def.Root,
		Range:    text.Range{End: len(src)},
		Closed:   true,
		Children: merged,
	}, true
}

// reusable limits subtree reuse to closed container nodes. Word leaves
// are cheap to relex and their fields depend on the tokens before them.
func (g *grammar) reusable(n *syntax.Node) bool {
	if !n.Closed {
		return false
	}
	for _, p := range g.byOpen {
		if p.Kind == n.Kind {
			return true
		}
	}
	return false
}

func shiftSubtree(n *syntax.Node, delta int) *syntax.Node {
	if delta == 0 {
		return n
	}
	out := *n
	out.Range = n.Range.Shift(delta)
	if len(n.Children) > 0 {
		out.Children = make([]*syntax.Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = shiftSubtree(c, delta)
		}
	}
	return &out
}

// parseRegion parses src, whose first byte sits at offset base in the
// buffer, into a list of top-level nodes. unclosed reports whether any
// delimiter pair was left unterminated; those nodes extend to the end of
// the region.
func (g *grammar) parseRegion(src string, base int) (nodes []*syntax.Node, unclosed bool) {
	type frame struct {
		node *syntax.Node
		pair PairDef
	}
	root := &syntax.Node{}
	stack := []frame{{node: root}}
	pendingField := ""

	for _, tok := range g.lex(src, base) {
		top := &stack[len(stack)-1]
		switch {
		case tok.delim && len(stack) > 1 && tok.text == top.pair.Close:
			top.node.Range.End = tok.end
			top.node.Closed = true
			stack = stack[:len(stack)-1]
		case tok.delim && g.isOpen(tok.text):
			pair := g.byOpen[tok.text]
			n := &syntax.Node{Kind: pair.Kind, Range: text.Range{Start: tok.start}}
			top.node.Children = append(top.node.Children, n)
			stack = append(stack, frame{node: n, pair: pair})
		case tok.delim:
			// Stray close delimiter; drop it.
		case tok.word:
			if rule, isKeyword := g.def.Keywords[tok.text]; isKeyword {
				top.node.Children = append(top.node.Children, &syntax.Node{
					Kind:   tok.text,
					Range:  text.Range{Start: tok.start, End: tok.end},
					Closed: true,
				})
				pendingField = rule.FieldNext
				continue
			}
			top.node.Children = append(top.node.Children, &syntax.Node{
				Kind:   "ident",
				Field:  pendingField,
				Range:  text.Range{Start: tok.start, End: tok.end},
				Closed: true,
			})
			pendingField = ""
		default:
			// Punctuation carries no node.
		}
	}

	end := base + len(src)
	for _, f := range stack[1:] {
		f.node.Range.End = end
	}
	return root.Children, len(stack) > 1
}

func (g *grammar) isOpen(tok string) bool {
	_, ok := g.byOpen[tok]
	return ok
}

// lex splits src into delimiter, word, and punctuation tokens, skipping
// whitespace. Delimiters match longest first.
func (g *grammar) lex(src string, base int) []token {
	var toks []token
	i := 0
	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			i += size
			continue
		}
		if d := g.matchDelim(src[i:]); d != "" {
			toks = append(toks, token{text: d, start: base + i, end: base + i + len(d), delim: true})
			i += len(d)
			continue
		}
		if loc := g.word.FindStringIndex(src[i:]); loc != nil {
			toks = append(toks, token{text: src[i : i+loc[1]], start: base + i, end: base + i + loc[1], word: true})
			i += loc[1]
			continue
		}
		toks = append(toks, token{text: src[i : i+size], start: base + i, end: base + i + size})
		i += size
	}
	return toks
}

func (g *grammar) matchDelim(rest string) string {
	for _, d := range g.delims {
		if strings.HasPrefix(rest, d) {
			return d
		}
	}
	return ""
}

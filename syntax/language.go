package syntax

import (
	"errors"
	"strings"

	"github.com/dshills/loom/text"
)

// ErrParseFailure wraps grammar errors. A failed parse leaves the previous
// tree installed; callers keep editing against the stale tree.
var ErrParseFailure = errors.New("syntax: parse failure")

// Grammar turns source text into a syntax tree. Implementations must be
// safe for concurrent calls: parses run on background goroutines against
// immutable snapshots.
//
// old and edited seed incremental parsing. old is the previously installed
// tree (nil on first parse) and edited lists the byte ranges, in src's
// coordinates, that changed since old was produced. A grammar is free to
// ignore both and parse from scratch.
type Grammar interface {
	Parse(src string, old *Tree, edited []text.Range) (*Node, error)
}

// Language bundles a grammar with the queries the editing layers consume.
type Language struct {
	Name     string
	Grammar  Grammar
	Indents  IndentQuery
	Brackets BracketQuery
}

// IndentQuery names the node kinds that indent their interior and the
// tokens that close them. A line whose first token closes an enclosing
// node does not count that node toward its own indent.
type IndentQuery struct {
	indentKinds map[string]bool
	endTokens   map[string]bool
}

// NewIndentQuery builds an IndentQuery from the kinds that indent and the
// literal tokens that end them.
func NewIndentQuery(indentKinds, endTokens []string) IndentQuery {
	q := IndentQuery{
		indentKinds: make(map[string]bool, len(indentKinds)),
		endTokens:   make(map[string]bool, len(endTokens)),
	}
	for _, k := range indentKinds {
		q.indentKinds[k] = true
	}
	for _, t := range endTokens {
		q.endTokens[t] = true
	}
	return q
}

// Indents reports whether kind indents its interior.
func (q IndentQuery) Indents(kind string) bool { return q.indentKinds[kind] }

// IsEndToken reports whether tok closes an indenting node.
func (q IndentQuery) IsEndToken(tok string) bool { return q.endTokens[tok] }

// HasEndPrefix reports whether s starts with any end token. Callers pass
// a line with its leading whitespace stripped.
func (q IndentQuery) HasEndPrefix(s string) bool {
	for tok := range q.endTokens {
		if strings.HasPrefix(s, tok) {
			return true
		}
	}
	return false
}

// BracketPair describes a delimited node kind and its literal delimiters.
type BracketPair struct {
	Kind  string
	Open  string
	Close string
}

// BracketQuery maps delimited node kinds to their bracket pairs.
type BracketQuery struct {
	pairs map[string]BracketPair
}

// NewBracketQuery builds a BracketQuery from pairs.
func NewBracketQuery(pairs []BracketPair) BracketQuery {
	q := BracketQuery{pairs: make(map[string]BracketPair, len(pairs))}
	for _, p := range pairs {
		q.pairs[p.Kind] = p
	}
	return q
}

// Pair returns the bracket pair for a node kind, if the kind is delimited.
func (q BracketQuery) Pair(kind string) (BracketPair, bool) {
	p, ok := q.pairs[kind]
	return p, ok
}

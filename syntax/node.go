// Package syntax maintains a syntax tree per buffer. Trees are produced by
// an injected Language's grammar, reparsed incrementally in the background
// against immutable snapshots, and merged back on the owner's turn.
package syntax

import (
	"strings"

	"github.com/dshills/loom/text"
)

// Node is a node in a syntax tree. Nodes are immutable once a tree has
// been installed; an incremental parse builds new nodes and shares
// untouched subtrees with the previous tree.
type Node struct {
	// Kind is the grammar-defined node kind ("source", "block", "ident").
	Kind string

	// Field names this node's relation to its parent ("name", "body"),
	// or "" when the grammar defines none.
	Field string

	// Range is the node's byte range in the tree's version of the text.
	Range text.Range

	// Closed reports whether a delimited node's closing token is present.
	// Error-tolerant parses leave unterminated nodes open to the end of
	// the text.
	Closed bool

	Children []*Node
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Tree is a parsed syntax tree tied to the buffer version it reflects.
type Tree struct {
	Root    *Node
	Version text.Version
}

// Sexp renders the tree as a parenthesized s-expression, one node per
// bracket pair, with field prefixes: (source (func name: (ident))).
func (t *Tree) Sexp() string {
	if t == nil || t.Root == nil {
		return ""
	}
	var sb strings.Builder
	writeSexp(&sb, t.Root)
	return sb.String()
}

func writeSexp(sb *strings.Builder, n *Node) {
	sb.WriteByte('(')
	sb.WriteString(n.Kind)
	for _, c := range n.Children {
		sb.WriteByte(' ')
		if c.Field != "" {
			sb.WriteString(c.Field)
			sb.WriteString(": ")
		}
		writeSexp(sb, c)
	}
	sb.WriteByte(')')
}

// PathContaining returns the chain of nodes from the root down to the
// smallest node whose range contains rng, endpoints inclusive. A nil
// result means the root itself does not contain the range.
func (t *Tree) PathContaining(rng text.Range) []*Node {
	if t == nil || t.Root == nil {
		return nil
	}
	if !containsInclusive(t.Root.Range, rng) {
		return nil
	}
	var path []*Node
	n := t.Root
	for {
		path = append(path, n)
		var next *Node
		for _, c := range n.Children {
			if containsInclusive(c.Range, rng) {
				next = c
				break
			}
		}
		if next == nil {
			return path
		}
		n = next
	}
}

func containsInclusive(outer text.Range, inner text.Range) bool {
	return outer.Start <= inner.Start && outer.End >= inner.End
}

// Walk visits every node in depth-first order. Returning false from fn
// skips the node's children.
func (t *Tree) Walk(fn func(*Node) bool) {
	if t == nil || t.Root == nil {
		return
	}
	walk(t.Root, fn)
}

func walk(n *Node, fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		walk(c, fn)
	}
}

// rebase maps the tree's node ranges through a sequence of changes,
// returning a new tree valid at the post-change version. It fails when a
// change cuts into a leaf node or straddles a node boundary; the caller
// then discards the parse instead.
func (t *Tree) rebase(changes []text.Change, version text.Version) (*Tree, bool) {
	root := t.Root
	for _, c := range changes {
		var ok bool
		root, ok = rebaseNode(root, c.Range, c.Delta())
		if !ok {
			return nil, false
		}
	}
	return &Tree{Root: root, Version: version}, true
}

func rebaseNode(n *Node, edited text.Range, delta int) (*Node, bool) {
	switch {
	case n.Range.End <= edited.Start:
		// Entirely before the change.
		return n, true
	case n.Range.Start >= edited.End:
		return shiftNode(n, delta), true
	case n.Range.Start <= edited.Start && n.Range.End >= edited.End && !n.IsLeaf():
		out := *n
		out.Range.End += delta
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			child, ok := rebaseNode(c, edited, delta)
			if !ok {
				return nil, false
			}
			out.Children[i] = child
		}
		return &out, true
	default:
		// The change cuts into a token or straddles this node's boundary.
		return nil, false
	}
}

func shiftNode(n *Node, delta int) *Node {
	if delta == 0 {
		return n
	}
	out := *n
	out.Range = n.Range.Shift(delta)
	if len(n.Children) > 0 {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = shiftNode(c, delta)
		}
	}
	return &out
}

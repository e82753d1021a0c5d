package rope

import "strings"

// Tree fan-out bounds.
const (
	maxChildren   = 8
	maxLeafChunks = 4
)

// node is a node in the rope tree. Leaves (height 0) hold chunks; internal
// nodes hold children. Nodes are never mutated after construction.
type node struct {
	height   int
	sum      summary
	children []*node
	sums     []summary // per-child summaries, parallel to children
	chunks   []chunk
}

func newLeaf(chunks []chunk) *node {
	n := &node{chunks: chunks}
	for _, c := range chunks {
		n.sum = n.sum.add(c.sum)
	}
	return n
}

func newInternal(children []*node) *node {
	n := &node{
		height:   children[0].height + 1,
		children: children,
		sums:     make([]summary, len(children)),
	}
	for i, c := range children {
		n.sums[i] = c.sum
		n.sum = n.sum.add(c.sum)
	}
	return n
}

func leavesFromChunks(chunks []chunk) []*node {
	var leaves []*node
	for len(chunks) > 0 {
		take := maxLeafChunks
		if take > len(chunks) {
			take = len(chunks)
		}
		leaves = append(leaves, newLeaf(chunks[:take:take]))
		chunks = chunks[take:]
	}
	if leaves == nil {
		leaves = []*node{newLeaf(nil)}
	}
	return leaves
}

// buildNode builds a balanced tree over nodes of equal height.
func buildNode(nodes []*node) *node {
	for len(nodes) > 1 {
		var parents []*node
		for len(nodes) > 0 {
			take := maxChildren
			if take > len(nodes) {
				take = len(nodes)
			}
			parents = append(parents, newInternal(nodes[:take:take]))
			nodes = nodes[take:]
		}
		nodes = parents
	}
	return nodes[0]
}

func (n *node) isLeaf() bool { return n.height == 0 }

func (n *node) appendTo(sb *strings.Builder) {
	if n.isLeaf() {
		for _, c := range n.chunks {
			sb.WriteString(c.text)
		}
		return
	}
	for _, c := range n.children {
		c.appendTo(sb)
	}
}

// appendRange appends the text in [start, end) to sb. The range must be
// within the node's bounds.
func (n *node) appendRange(sb *strings.Builder, start, end int) {
	if n.isLeaf() {
		offset := 0
		for _, c := range n.chunks {
			next := offset + c.len()
			if next > start && offset < end {
				lo, hi := start-offset, end-offset
				if lo < 0 {
					lo = 0
				}
				if hi > c.len() {
					hi = c.len()
				}
				sb.WriteString(c.text[lo:hi])
			}
			offset = next
			if offset >= end {
				return
			}
		}
		return
	}
	offset := 0
	for i, c := range n.children {
		next := offset + n.sums[i].bytes
		if next > start && offset < end {
			lo, hi := start-offset, end-offset
			if lo < 0 {
				lo = 0
			}
			if hi > n.sums[i].bytes {
				hi = n.sums[i].bytes
			}
			c.appendRange(sb, lo, hi)
		}
		offset = next
		if offset >= end {
			return
		}
	}
}

// split divides the subtree at offset, returning the left and right halves.
func (n *node) split(offset int) (*node, *node) {
	if offset <= 0 {
		return newLeaf(nil), n
	}
	if offset >= n.sum.bytes {
		return n, newLeaf(nil)
	}
	if n.isLeaf() {
		return n.splitLeaf(offset)
	}

	var left, right []*node
	at := 0
	for i, c := range n.children {
		next := at + n.sums[i].bytes
		switch {
		case next <= offset:
			left = append(left, c)
		case at >= offset:
			right = append(right, c)
		default:
			l, r := c.split(offset - at)
			if l.sum.bytes > 0 {
				left = append(left, l)
			}
			if r.sum.bytes > 0 {
				right = append(right, r)
			}
		}
		at = next
	}
	return concatAll(left), concatAll(right)
}

func (n *node) splitLeaf(offset int) (*node, *node) {
	var left, right []chunk
	at := 0
	for _, c := range n.chunks {
		next := at + c.len()
		switch {
		case next <= offset:
			left = append(left, c)
		case at >= offset:
			right = append(right, c)
		default:
			l, r := c.split(offset - at)
			if l.len() > 0 {
				left = append(left, l)
			}
			if r.len() > 0 {
				right = append(right, r)
			}
		}
		at = next
	}
	return newLeaf(left), newLeaf(right)
}

// concatAll joins a list of nodes of arbitrary heights left to right.
func concatAll(nodes []*node) *node {
	if len(nodes) == 0 {
		return newLeaf(nil)
	}
	out := nodes[0]
	for _, n := range nodes[1:] {
		out = concat(out, n)
	}
	return out
}

// concat joins two subtrees, rebalancing as needed.
func concat(left, right *node) *node {
	if left == nil || left.sum.bytes == 0 {
		if right == nil {
			return newLeaf(nil)
		}
		return right
	}
	if right == nil || right.sum.bytes == 0 {
		return left
	}

	if left.isLeaf() && right.isLeaf() {
		total := len(left.chunks) + len(right.chunks)
		if total <= maxLeafChunks {
			chunks := make([]chunk, 0, total)
			chunks = append(chunks, left.chunks...)
			chunks = append(chunks, right.chunks...)
			return newLeaf(chunks)
		}
		return newInternal([]*node{left, right})
	}

	for left.height < right.height {
		left = newInternal([]*node{left})
	}
	for right.height < left.height {
		right = newInternal([]*node{right})
	}

	if left.isLeaf() {
		return concat(left, right)
	}

	all := make([]*node, 0, len(left.children)+len(right.children))
	all = append(all, left.children...)
	all = append(all, right.children...)
	if len(all) <= maxChildren {
		return newInternal(all)
	}
	return buildNode(all)
}

// newlinesBefore counts the newlines in [0, offset).
func (n *node) newlinesBefore(offset int) int {
	if offset >= n.sum.bytes {
		return n.sum.newlines
	}
	if n.isLeaf() {
		count := 0
		for _, c := range n.chunks {
			if offset >= c.len() {
				count += c.sum.newlines
				offset -= c.len()
				continue
			}
			return count + strings.Count(c.text[:offset], "\n")
		}
		return count
	}
	count := 0
	for i, c := range n.children {
		if offset >= n.sums[i].bytes {
			count += n.sums[i].newlines
			offset -= n.sums[i].bytes
			continue
		}
		return count + c.newlinesBefore(offset)
	}
	return count
}

// nthNewline returns the byte offset of the nth newline, 1-indexed.
// The caller must ensure 1 <= nth <= n.sum.newlines.
func (n *node) nthNewline(nth int) int {
	offset := 0
	if n.isLeaf() {
		for _, c := range n.chunks {
			if nth > c.sum.newlines {
				nth -= c.sum.newlines
				offset += c.len()
				continue
			}
			at := 0
			for {
				i := strings.IndexByte(c.text[at:], '\n')
				at += i
				nth--
				if nth == 0 {
					return offset + at
				}
				at++
			}
		}
		return offset
	}
	for i, c := range n.children {
		if nth > n.sums[i].newlines {
			nth -= n.sums[i].newlines
			offset += n.sums[i].bytes
			continue
		}
		return offset + c.nthNewline(nth)
	}
	return offset
}

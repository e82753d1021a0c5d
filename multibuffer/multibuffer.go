// Package multibuffer stitches anchored excerpts of one or more buffers
// into a single coordinate space, with decoration blocks attached at
// anchors. Excerpt boundaries are anchors in the source buffers, so
// excerpt contents track source edits on read.
package multibuffer

import (
	"sort"
	"strings"
	"sync"

	"github.com/dshills/loom/buffer"
	"github.com/dshills/loom/text"
)

// ExcerptID identifies an excerpt within one MultiBuffer.
type ExcerptID int

// Excerpt is an anchor-bounded slice of a source buffer.
type Excerpt struct {
	ID     ExcerptID
	Buffer *buffer.Buffer

	// Start and End bound the excerpt in the source buffer. Start keeps
	// before-bias and End after-bias, so text inserted at either edge
	// grows the excerpt.
	Start, End text.Anchor
}

// Anchor is a position in the unified space: an excerpt plus an anchor in
// its source buffer.
type Anchor struct {
	Excerpt ExcerptID
	Inner   text.Anchor
}

// BlockDisposition places a block relative to its anchor line.
type BlockDisposition int

const (
	// Above renders the block before the anchor's line.
	Above BlockDisposition = iota
	// Below renders the block after the anchor's line.
	Below
)

// BlockID identifies an inserted block.
type BlockID int

// Block is a decoration anchored into the unified space, such as a
// diagnostic header or an excerpt boundary marker.
type Block struct {
	ID          BlockID
	Anchor      Anchor
	Disposition BlockDisposition

	// Priority orders co-located blocks; lower sorts first.
	Priority int

	// Height is the block's height in display lines.
	Height int

	seq int
}

// MultiBuffer is an ordered list of excerpts presented as one document,
// excerpts separated by newlines.
type MultiBuffer struct {
	mu          sync.Mutex
	excerpts    []*Excerpt
	nextExcerpt ExcerptID
	blocks      []*Block
	nextBlock   BlockID
	nextSeq     int
}

// New creates an empty MultiBuffer.
func New() *MultiBuffer {
	return &MultiBuffer{nextExcerpt: 1, nextBlock: 1}
}

// PushExcerpts appends one excerpt per range, bounded by anchors in buf,
// and returns their IDs in order.
func (m *MultiBuffer) PushExcerpts(buf *buffer.Buffer, ranges []text.Range) []ExcerptID {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]ExcerptID, 0, len(ranges))
	for _, r := range ranges {
		e := &Excerpt{
			ID:     m.nextExcerpt,
			Buffer: buf,
			Start:  buf.AnchorBefore(r.Start),
			End:    buf.AnchorAfter(r.End),
		}
		m.nextExcerpt++
		m.excerpts = append(m.excerpts, e)
		ids = append(ids, e.ID)
	}
	return ids
}

// Excerpts returns the excerpts in order.
func (m *MultiBuffer) Excerpts() []Excerpt {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Excerpt, len(m.excerpts))
	for i, e := range m.excerpts {
		out[i] = *e
	}
	return out
}

// Text returns the unified document: excerpt contents in order, separated
// by newlines. Contents reflect the source buffers as they are now.
func (m *MultiBuffer) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	parts := make([]string, len(m.excerpts))
	for i, e := range m.excerpts {
		parts[i] = excerptText(e)
	}
	return strings.Join(parts, "\n")
}

func excerptText(e *Excerpt) string {
	start := e.Buffer.ResolveAnchor(e.Start)
	end := e.Buffer.ResolveAnchor(e.End)
	if end < start {
		end = start
	}
	return e.Buffer.Slice(start, end)
}

// AnchorInExcerpt maps a source-buffer anchor into the unified space. ok
// is false when the excerpt is unknown or the anchor currently resolves
// outside the excerpt's bounds.
func (m *MultiBuffer) AnchorInExcerpt(id ExcerptID, inner text.Anchor) (Anchor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.excerptLocked(id)
	if e == nil {
		return Anchor{}, false
	}
	off := e.Buffer.ResolveAnchor(inner)
	start := e.Buffer.ResolveAnchor(e.Start)
	end := e.Buffer.ResolveAnchor(e.End)
	if off < start || off > end {
		return Anchor{}, false
	}
	return Anchor{Excerpt: id, Inner: inner}, true
}

// ResolvePoint maps a unified anchor to a row/column in the stitched
// document. ok is false when the anchor's excerpt is gone.
func (m *MultiBuffer) ResolvePoint(a Anchor) (text.Point, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolvePointLocked(a)
}

func (m *MultiBuffer) resolvePointLocked(a Anchor) (text.Point, bool) {
	baseRow := 0
	for _, e := range m.excerpts {
		if e.ID != a.Excerpt {
			baseRow += strings.Count(excerptText(e), "\n") + 1
			continue
		}
		start := e.Buffer.ResolveAnchor(e.Start)
		end := e.Buffer.ResolveAnchor(e.End)
		off := e.Buffer.ResolveAnchor(a.Inner)
		if off < start {
			off = start
		}
		if off > end {
			off = end
		}
		prefix := e.Buffer.Slice(start, off)
		row := strings.Count(prefix, "\n")
		col := len(prefix)
		if i := strings.LastIndexByte(prefix, '\n'); i >= 0 {
			col = len(prefix) - i - 1
		}
		return text.Pt(baseRow+row, col), true
	}
	return text.Point{}, false
}

func (m *MultiBuffer) excerptLocked(id ExcerptID) *Excerpt {
	for _, e := range m.excerpts {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// InsertBlocks registers decoration blocks and returns their IDs in input
// order. A block whose excerpt never resolves is kept but omitted from
// Blocks().
func (m *MultiBuffer) InsertBlocks(blocks []Block) []BlockID {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]BlockID, 0, len(blocks))
	for _, blk := range blocks {
		b := blk
		b.ID = m.nextBlock
		b.seq = m.nextSeq
		m.nextBlock++
		m.nextSeq++
		m.blocks = append(m.blocks, &b)
		ids = append(ids, b.ID)
	}
	return ids
}

// Blocks returns the blocks in unified document order. Co-located blocks
// order by disposition (Above first), then priority (lower first), then
// insertion order. Blocks whose excerpt no longer resolves are omitted.
func (m *MultiBuffer) Blocks() []Block {
	m.mu.Lock()
	defer m.mu.Unlock()

	type placed struct {
		row int
		blk *Block
	}
	out := make([]placed, 0, len(m.blocks))
	for _, b := range m.blocks {
		p, ok := m.resolvePointLocked(b.Anchor)
		if !ok {
			continue
		}
		out = append(out, placed{row: p.Row, blk: b})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.row != b.row {
			return a.row < b.row
		}
		if a.blk.Disposition != b.blk.Disposition {
			return a.blk.Disposition < b.blk.Disposition
		}
		if a.blk.Priority != b.blk.Priority {
			return a.blk.Priority < b.blk.Priority
		}
		return a.blk.seq < b.blk.seq
	})
	result := make([]Block, len(out))
	for i, p := range out {
		result[i] = *p.blk
	}
	return result
}

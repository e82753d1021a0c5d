package buffer

import (
	"fmt"

	"github.com/dshills/loom/text"
)

// AddSelectionSet registers a new selection set and returns its ID.
// Selections are held as anchors and follow subsequent edits.
func (b *Buffer) AddSelectionSet(sels []text.Selection) text.SetID {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextSet
	b.nextSet++
	set := &text.SelectionSet{ID: id}
	set.Selections = append(set.Selections, sels...)
	b.sets[id] = set
	return id
}

// UpdateSelectionSet replaces the selections of an existing set.
func (b *Buffer) UpdateSelectionSet(id text.SetID, sels []text.Selection) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.sets[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSelectionSet, id)
	}
	set.Selections = append(set.Selections[:0], sels...)
	return nil
}

// SelectionSet returns a copy of the set, with its anchors carried
// forward to the current version.
func (b *Buffer) SelectionSet(id text.SetID) (text.SelectionSet, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.sets[id]
	if !ok {
		return text.SelectionSet{}, false
	}
	return set.Clone(), true
}

// RemoveSelectionSet drops a set.
func (b *Buffer) RemoveSelectionSet(id text.SetID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.sets[id]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSelectionSet, id)
	}
	delete(b.sets, id)
	return nil
}

// SelectionPoints resolves a set's selections into row/column ranges in
// the current text.
func (b *Buffer) SelectionPoints(id text.SetID) ([]text.PointRange, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.sets[id]
	if !ok {
		return nil, false
	}
	version := b.clock.Current()
	length := b.content.Len()
	out := make([]text.PointRange, len(set.Selections))
	for i, sel := range set.Selections {
		out[i] = text.PointRange{
			Start: b.content.OffsetToPoint(sel.Start.Resolve(b.log, version, length)),
			End:   b.content.OffsetToPoint(sel.End.Resolve(b.log, version, length)),
		}
	}
	return out, true
}

func (b *Buffer) selectionsLocked(id text.SetID) []text.Selection {
	set, ok := b.sets[id]
	if !ok {
		return nil
	}
	out := make([]text.Selection, len(set.Selections))
	copy(out, set.Selections)
	return out
}

// reanchorSetsLocked re-creates every selection anchor at the current
// version. Anchors must not age past the edit log's retained window, so
// each applied batch refreshes them.
func (b *Buffer) reanchorSetsLocked() {
	version := b.clock.Current()
	length := b.content.Len()
	for _, set := range b.sets {
		for i, sel := range set.Selections {
			if !sel.Start.IsSentinel() {
				off := sel.Start.Resolve(b.log, version, length)
				set.Selections[i].Start = text.At(version, off, sel.Start.Bias)
			}
			if !sel.End.IsSentinel() {
				off := sel.End.Resolve(b.log, version, length)
				set.Selections[i].End = text.At(version, off, sel.End.Bias)
			}
		}
	}
}

// restoreSelectionsLocked installs a history snapshot into its owning
// set, if the set still exists.
func (b *Buffer) restoreSelectionsLocked(id text.SetID, sels []text.Selection) {
	if sels == nil {
		return
	}
	set, ok := b.sets[id]
	if !ok {
		return
	}
	set.Selections = append(set.Selections[:0], sels...)
}

package text

import "testing"

// apply is a test helper that records an edit applied to a string.
func apply(t *testing.T, log *Log, doc string, v Version, e Edit) (string, Version) {
	t.Helper()
	v++
	c := Change{
		Range:    e.Range,
		NewRange: Range{Start: e.Range.Start, End: e.Range.Start + len(e.NewText)},
		OldText:  doc[e.Range.Start:e.Range.End],
		NewText:  e.NewText,
		Version:  v,
	}
	log.Append(c)
	return doc[:e.Range.Start] + e.NewText + doc[e.Range.End:], v
}

func TestAnchorShiftsPastEarlierEdits(t *testing.T) {
	log := NewLog(0)
	doc := "hello world"
	v := Version(0)

	// Anchor on the 'w'.
	a := At(v, 6, BiasBefore)

	doc, v = apply(t, log, doc, v, Insert(0, ">> "))
	doc, v = apply(t, log, doc, v, Delete(3, 5)) // delete "he"

	if got := a.Resolve(log, v, len(doc)); got != 7 {
		t.Errorf("resolved to %d (%q), want 7", got, doc[got:])
	}
	if doc[7:] != "world" {
		t.Fatalf("test setup wrong: %q", doc)
	}
}

func TestAnchorBiasAtInsertionPoint(t *testing.T) {
	log := NewLog(0)
	doc := "ab"
	v := Version(0)

	before := At(v, 1, BiasBefore)
	after := At(v, 1, BiasAfter)

	doc, v = apply(t, log, doc, v, Insert(1, "XY"))

	if got := before.Resolve(log, v, len(doc)); got != 1 {
		t.Errorf("BiasBefore resolved to %d, want 1", got)
	}
	if got := after.Resolve(log, v, len(doc)); got != 3 {
		t.Errorf("BiasAfter resolved to %d, want 3", got)
	}
}

func TestAnchorInsideReplacedRange(t *testing.T) {
	log := NewLog(0)
	doc := "abcdef"
	v := Version(0)

	before := At(v, 3, BiasBefore)
	after := At(v, 3, BiasAfter)

	doc, v = apply(t, log, doc, v, Replace(2, 5, "XY"))

	if got := before.Resolve(log, v, len(doc)); got != 2 {
		t.Errorf("BiasBefore resolved to %d, want 2", got)
	}
	if got := after.Resolve(log, v, len(doc)); got != 4 {
		t.Errorf("BiasAfter resolved to %d, want 4", got)
	}
}

func TestAnchorEditExactlyBefore(t *testing.T) {
	log := NewLog(0)
	doc := "abcdef"
	v := Version(0)

	// Deletion whose exclusive end equals the anchor offset is strictly
	// before the anchor.
	a := At(v, 3, BiasBefore)
	doc, v = apply(t, log, doc, v, Delete(1, 3))

	if got := a.Resolve(log, v, len(doc)); got != 1 {
		t.Errorf("resolved to %d, want 1", got)
	}
}

func TestSentinelAnchors(t *testing.T) {
	log := NewLog(0)
	if got := AnchorStart.Resolve(log, 99, 50); got != 0 {
		t.Errorf("AnchorStart resolved to %d", got)
	}
	if got := AnchorEnd.Resolve(log, 99, 50); got != 50 {
		t.Errorf("AnchorEnd resolved to %d, want 50", got)
	}
}

func TestAnchorStaleVersionPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for resolution against an older version")
		}
	}()
	a := At(5, 0, BiasBefore)
	a.Resolve(NewLog(0), 3, 10)
}

func TestAnchorEvictedWindowPanics(t *testing.T) {
	log := NewLog(4)
	doc := "aaaaaaaaaaaaaaaa"
	v := Version(0)
	a := At(v, 8, BiasBefore)

	for i := 0; i < 8; i++ {
		doc, v = apply(t, log, doc, v, Insert(0, "x"))
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic once the log evicted the anchor's window")
		}
	}()
	a.Resolve(log, v, len(doc))
}

func TestLogBetween(t *testing.T) {
	log := NewLog(0)
	doc := "abc"
	v := Version(0)
	doc, v = apply(t, log, doc, v, Insert(0, "1"))
	mid := v
	doc, v = apply(t, log, doc, v, Insert(0, "2"))
	_, v = apply(t, log, doc, v, Insert(0, "3"))

	changes, ok := log.Between(mid, v)
	if !ok {
		t.Fatal("window should be retained")
	}
	if len(changes) != 2 {
		t.Fatalf("got %d changes, want 2", len(changes))
	}
	if changes[0].NewText != "2" || changes[1].NewText != "3" {
		t.Errorf("changes out of order: %v", changes)
	}
}

func TestDisplayColumns(t *testing.T) {
	line := "a界b"
	if got := DisplayColumn(line, 4); got != 3 {
		t.Errorf("DisplayColumn = %d, want 3", got)
	}
	if got := ColumnForDisplay(line, 3); got != 4 {
		t.Errorf("ColumnForDisplay(3) = %d, want 4", got)
	}
	if got := ColumnForDisplay(line, 2); got != 1 {
		t.Errorf("ColumnForDisplay(2) = %d, want 1", got)
	}
	if got := ColumnForDisplay(line, 99); got != len(line) {
		t.Errorf("ColumnForDisplay(99) = %d, want %d", got, len(line))
	}
}

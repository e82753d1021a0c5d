package text

import "fmt"

// Bias disambiguates an anchor's behavior when text is inserted exactly at
// its position.
type Bias int

const (
	// BiasBefore keeps the anchor before text inserted at its position.
	BiasBefore Bias = iota
	// BiasAfter moves the anchor past text inserted at its position.
	BiasAfter
)

// String returns "before" or "after".
func (b Bias) String() string {
	if b == BiasAfter {
		return "after"
	}
	return "before"
}

type anchorKind uint8

const (
	anchorOffset anchorKind = iota
	anchorMin
	anchorMax
)

// Anchor is a stable logical position: an offset captured at a specific
// buffer version, carried forward by replaying the edit log. The sentinel
// anchors AnchorStart and AnchorEnd always denote the buffer's start and
// end regardless of edits.
type Anchor struct {
	Version Version
	Offset  int
	Bias    Bias
	kind    anchorKind
}

// AnchorStart always resolves to offset 0.
var AnchorStart = Anchor{kind: anchorMin}

// AnchorEnd always resolves to the buffer's length.
var AnchorEnd = Anchor{kind: anchorMax}

// At returns an anchor for the given offset and bias at version v.
func At(v Version, offset int, bias Bias) Anchor {
	return Anchor{Version: v, Offset: offset, Bias: bias}
}

// IsSentinel reports whether the anchor is AnchorStart or AnchorEnd.
func (a Anchor) IsSentinel() bool {
	return a.kind != anchorOffset
}

// String returns a debug form of the anchor.
func (a Anchor) String() string {
	switch a.kind {
	case anchorMin:
		return "Anchor(start)"
	case anchorMax:
		return "Anchor(end)"
	default:
		return fmt.Sprintf("Anchor(v%d@%d,%s)", a.Version, a.Offset, a.Bias)
	}
}

// Resolve maps the anchor to an offset valid at the target version by
// replaying the intervening changes from the log. length is the buffer
// length at the target version, used for the end sentinel and clamping.
//
// Resolving against a version older than the anchor's creation version, or
// against a log that no longer retains the required window, is a caller
// bug and panics: anchor provenance is the caller's contract.
func (a Anchor) Resolve(log *Log, target Version, length int) int {
	switch a.kind {
	case anchorMin:
		return 0
	case anchorMax:
		return length
	}

	if target < a.Version {
		panic(fmt.Sprintf("text: anchor created at version %d resolved against older version %d", a.Version, target))
	}

	changes, ok := log.Between(a.Version, target)
	if !ok {
		panic(fmt.Sprintf("text: edit log no longer covers versions %d..%d", a.Version, target))
	}

	offset := a.Offset
	for _, c := range changes {
		offset = c.TransformOffset(offset, a.Bias == BiasAfter)
	}
	if offset < 0 {
		offset = 0
	}
	if offset > length {
		offset = length
	}
	return offset
}

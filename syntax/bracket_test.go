package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/loom/text"
)

func parenTree(t *testing.T, src string) *Tree {
	t.Helper()
	root, err := parenGrammar{}.Parse(src, nil, nil)
	require.NoError(t, err)
	return &Tree{Root: root}
}

func TestEnclosingBrackets(t *testing.T) {
	// offsets:  0123456789
	src := "(a (bb) c)"
	tree := parenTree(t, src)
	brackets := parenLanguage(false).Brackets

	tests := []struct {
		name        string
		rng         text.Range
		wantOpen    text.Range
		wantClose   text.Range
		wantMissing bool
	}{
		{
			name:      "inside inner group",
			rng:       text.Range{Start: 4, End: 5},
			wantOpen:  text.Range{Start: 3, End: 4},
			wantClose: text.Range{Start: 6, End: 7},
		},
		{
			name:      "between groups picks outer",
			rng:       text.Range{Start: 8, End: 8},
			wantOpen:  text.Range{Start: 0, End: 1},
			wantClose: text.Range{Start: 9, End: 10},
		},
		{
			name:      "caret on inner open bracket",
			rng:       text.Range{Start: 3, End: 3},
			wantOpen:  text.Range{Start: 3, End: 4},
			wantClose: text.Range{Start: 6, End: 7},
		},
		{
			name:      "caret on inner close bracket",
			rng:       text.Range{Start: 6, End: 6},
			wantOpen:  text.Range{Start: 3, End: 4},
			wantClose: text.Range{Start: 6, End: 7},
		},
		{
			name:      "span across inner group picks outer",
			rng:       text.Range{Start: 2, End: 8},
			wantOpen:  text.Range{Start: 0, End: 1},
			wantClose: text.Range{Start: 9, End: 10},
		},
		{
			name:        "past the outer close",
			rng:         text.Range{Start: 10, End: 10},
			wantMissing: false, // end of outer close token, inclusive
			wantOpen:    text.Range{Start: 0, End: 1},
			wantClose:   text.Range{Start: 9, End: 10},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			open, clos, ok := EnclosingBrackets(tree, brackets, tt.rng)
			if tt.wantMissing {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.wantOpen, open)
			assert.Equal(t, tt.wantClose, clos)
		})
	}
}

func TestEnclosingBracketsNoPair(t *testing.T) {
	tree := parenTree(t, "plain words")
	brackets := parenLanguage(false).Brackets

	_, _, ok := EnclosingBrackets(tree, brackets, text.Range{Start: 2, End: 4})
	assert.False(t, ok)
}

func TestEnclosingBracketsUnterminated(t *testing.T) {
	tree := parenTree(t, "(a (b")
	brackets := parenLanguage(false).Brackets

	// Both groups are unterminated, so neither yields a pair.
	_, _, ok := EnclosingBrackets(tree, brackets, text.Range{Start: 4, End: 4})
	assert.False(t, ok)
}

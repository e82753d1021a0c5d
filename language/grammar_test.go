package language

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/loom/syntax"
	"github.com/dshills/loom/text"
)

func loadFnlang(t *testing.T) *syntax.Language {
	t.Helper()
	data, err := os.ReadFile("testdata/fnlang.yaml")
	require.NoError(t, err)
	lang, err := Load(data)
	require.NoError(t, err)
	return lang
}

func parseTree(t *testing.T, lang *syntax.Language, src string) *syntax.Tree {
	t.Helper()
	root, err := lang.Grammar.Parse(src, nil, nil)
	require.NoError(t, err)
	return &syntax.Tree{Root: root}
}

func TestLoadFnlang(t *testing.T) {
	lang := loadFnlang(t)
	assert.Equal(t, "fnlang", lang.Name)

	pair, ok := lang.Brackets.Pair("block")
	require.True(t, ok)
	assert.Equal(t, "{", pair.Open)
	assert.Equal(t, "}", pair.Close)

	assert.True(t, lang.Indents.Indents("block"))
	assert.True(t, lang.Indents.IsEndToken(")"))
	assert.False(t, lang.Indents.IsEndToken(";"))
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no name", "root: source"},
		{"bad word pattern", "name: x\nword_pattern: '['"},
		{
			"incomplete pair",
			"name: x\npairs:\n  - open: '('\n    kind: parens",
		},
		{
			"duplicate kind",
			"name: x\npairs:\n  - {open: '(', close: ')', kind: pair}\n  - {open: '[', close: ']', kind: pair}",
		},
		{
			"duplicate open",
			"name: x\npairs:\n  - {open: '(', close: ')', kind: a}\n  - {open: '(', close: ']', kind: b}",
		},
		{"not yaml", "{unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, syntax.ErrParseFailure)
		})
	}
}

func TestParseFn(t *testing.T) {
	lang := loadFnlang(t)

	tests := []struct {
		src  string
		sexp string
	}{
		{"fn a() {}", "(source (fn) name: (ident) (parens) (block))"},
		{
			"fn a(b: C) { d; }",
			"(source (fn) name: (ident) (parens (ident) (ident)) (block (ident)))",
		},
		{
			"fn a() { fn b() {} }",
			"(source (fn) name: (ident) (parens) (block (fn) name: (ident) (parens) (block)))",
		},
		{"", "(source)"},
		{"x + y", "(source (ident) (ident))"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.sexp, parseTree(t, lang, tt.src).Sexp())
		})
	}
}

func TestParseRanges(t *testing.T) {
	lang := loadFnlang(t)
	//            0123456789
	tree := parseTree(t, lang, "fn a() {}")

	root := tree.Root
	assert.Equal(t, text.Range{Start: 0, End: 9}, root.Range)
	require.Len(t, root.Children, 4)
	assert.Equal(t, text.Range{Start: 0, End: 2}, root.Children[0].Range) // fn
	assert.Equal(t, text.Range{Start: 3, End: 4}, root.Children[1].Range) // a
	assert.Equal(t, "name", root.Children[1].Field)
	assert.Equal(t, text.Range{Start: 4, End: 6}, root.Children[2].Range) // ()
	assert.Equal(t, text.Range{Start: 7, End: 9}, root.Children[3].Range) // {}
	assert.True(t, root.Children[3].Closed)
}

func TestParseUnterminated(t *testing.T) {
	lang := loadFnlang(t)
	tree := parseTree(t, lang, "fn a( {")

	root := tree.Root
	require.Len(t, root.Children, 3)
	parens := root.Children[2]
	assert.Equal(t, "parens", parens.Kind)
	assert.False(t, parens.Closed)
	assert.Equal(t, text.Range{Start: 4, End: 7}, parens.Range)
	require.Len(t, parens.Children, 1)
	block := parens.Children[0]
	assert.Equal(t, "block", block.Kind)
	assert.False(t, block.Closed)
	assert.Equal(t, text.Range{Start: 6, End: 7}, block.Range)
}

func TestParseStrayClose(t *testing.T) {
	lang := loadFnlang(t)
	tree := parseTree(t, lang, ") fn a() {}")
	assert.Equal(t, "(source (fn) name: (ident) (parens) (block))", tree.Sexp())
}

func TestIncrementalMatchesScratch(t *testing.T) {
	lang := loadFnlang(t)
	old := "fn a() { x }\nfn b() { y }\nfn c() { z }"

	oldRoot, err := lang.Grammar.Parse(old, nil, nil)
	require.NoError(t, err)
	oldTree := &syntax.Tree{Root: oldRoot}

	// Replace the "y" in the middle function body with "yy".
	src := "fn a() { x }\nfn b() { yy }\nfn c() { z }"
	edited := []text.Range{{Start: 22, End: 24}}

	incRoot, err := lang.Grammar.Parse(src, oldTree, edited)
	require.NoError(t, err)
	scratchRoot, err := lang.Grammar.Parse(src, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, scratchRoot, incRoot)

	// The trailing function's subtree is positionally shifted.
	last := incRoot.Children[len(incRoot.Children)-1]
	assert.Equal(t, "block", last.Kind)
	assert.Equal(t, text.Range{Start: 34, End: 39}, last.Range)
}

func TestIncrementalUnbalancedFallsBack(t *testing.T) {
	lang := loadFnlang(t)
	old := "fn a() { x }\nfn b() { y }"

	oldRoot, err := lang.Grammar.Parse(old, nil, nil)
	require.NoError(t, err)

	// Delete the first close brace: the unterminated block must swallow
	// everything after it, exactly as a from-scratch parse would.
	src := "fn a() { x \nfn b() { y }"
	edited := []text.Range{{Start: 11, End: 11}}

	incRoot, err := lang.Grammar.Parse(src, &syntax.Tree{Root: oldRoot}, edited)
	require.NoError(t, err)
	scratchRoot, err := lang.Grammar.Parse(src, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, scratchRoot, incRoot)
}

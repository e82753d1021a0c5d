package indent

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/loom/language"
	"github.com/dshills/loom/rope"
	"github.com/dshills/loom/syntax"
	"github.com/dshills/loom/text"
)

func fnlang(t *testing.T) *syntax.Language {
	t.Helper()
	data, err := os.ReadFile("../language/testdata/fnlang.yaml")
	require.NoError(t, err)
	lang, err := language.Load(data)
	require.NoError(t, err)
	return lang
}

func parse(t *testing.T, lang *syntax.Language, src string) *syntax.Tree {
	t.Helper()
	root, err := lang.Grammar.Parse(src, nil, nil)
	require.NoError(t, err)
	return &syntax.Tree{Root: root}
}

func TestSuggestLines(t *testing.T) {
	lang := fnlang(t)
	src := "fn a() {\nx\n}"
	tree := parse(t, lang, src)
	snap := rope.FromString(src)

	sugs := SuggestLines(tree, lang.Indents, snap, []int{0, 1, 2})
	assert.Equal(t, []Suggestion{
		{Line: 0, Level: 0, FromLine: -1},
		{Line: 1, Level: 1, FromLine: 0},
		{Line: 2, Level: 0, FromLine: 0},
	}, sugs)
}

func TestSuggestLinesNested(t *testing.T) {
	lang := fnlang(t)
	src := "fn a() {\nfn b() {\nx\n}\n}"
	tree := parse(t, lang, src)
	snap := rope.FromString(src)

	sugs := SuggestLines(tree, lang.Indents, snap, []int{1, 2, 3, 4})
	assert.Equal(t, []Suggestion{
		{Line: 1, Level: 1, FromLine: 0},
		{Line: 2, Level: 2, FromLine: 1},
		{Line: 3, Level: 1, FromLine: 1},
		{Line: 4, Level: 0, FromLine: 0},
	}, sugs)
}

func TestSuggestLinesUnterminated(t *testing.T) {
	lang := fnlang(t)
	src := "fn a() {\nx"
	tree := parse(t, lang, src)
	snap := rope.FromString(src)

	// The open block extends to the end of the text.
	sugs := SuggestLines(tree, lang.Indents, snap, []int{1})
	assert.Equal(t, []Suggestion{{Line: 1, Level: 1, FromLine: 0}}, sugs)
}

func TestSettings(t *testing.T) {
	soft := Settings{TabWidth: 4}
	assert.Equal(t, "    ", soft.Unit())
	assert.Equal(t, "        ", soft.Text(2))
	assert.Equal(t, "", soft.Text(0))

	hard := Settings{TabWidth: 4, HardTabs: true}
	assert.Equal(t, "\t\t", hard.Text(2))
}

func TestApply(t *testing.T) {
	lang := fnlang(t)
	src := "fn a() {\nx\n}"
	tree := parse(t, lang, src)
	snap := rope.FromString(src)
	sugs := SuggestLines(tree, lang.Indents, snap, []int{1, 2})

	allowAll := func(int, string) bool { return true }
	edits := Apply(snap, sugs, Settings{TabWidth: 4}, allowAll)
	require.Len(t, edits, 1)
	assert.Equal(t, text.Range{Start: 9, End: 9}, edits[0].Range)
	assert.Equal(t, "    ", edits[0].NewText)
}

func TestApplySkipsIneligibleLines(t *testing.T) {
	lang := fnlang(t)
	// Line 1 was hand-indented with two spaces.
	src := "fn a() {\n  x\n}"
	tree := parse(t, lang, src)
	snap := rope.FromString(src)
	sugs := SuggestLines(tree, lang.Indents, snap, []int{1})

	edits := Apply(snap, sugs, Settings{TabWidth: 4}, func(line int, current string) bool {
		return current != "  "
	})
	assert.Empty(t, edits)
}

func TestApplyReplacesStaleIndent(t *testing.T) {
	lang := fnlang(t)
	src := "fn a() {\n        x\n}"
	tree := parse(t, lang, src)
	snap := rope.FromString(src)
	sugs := SuggestLines(tree, lang.Indents, snap, []int{1})

	edits := Apply(snap, sugs, Settings{TabWidth: 4}, func(int, string) bool { return true })
	require.Len(t, edits, 1)
	assert.Equal(t, text.Range{Start: 9, End: 17}, edits[0].Range)
	assert.Equal(t, "    ", edits[0].NewText)
}

func TestLeadingWhitespace(t *testing.T) {
	snap := rope.FromString("a\n\t  b\n   ")
	assert.Equal(t, "", LeadingWhitespace(snap, 0))
	assert.Equal(t, "\t  ", LeadingWhitespace(snap, 1))
	assert.Equal(t, "   ", LeadingWhitespace(snap, 2))
}

func TestContiguousRanges(t *testing.T) {
	lines := []int{1, 2, 3, 5, 6, 9, 10, 11, 12}

	assert.Equal(t, []text.Range{
		{Start: 1, End: 4},
		{Start: 5, End: 7},
		{Start: 9, End: 13},
	}, ContiguousRanges(lines, 100))

	assert.Equal(t, []text.Range{
		{Start: 1, End: 4},
		{Start: 5, End: 7},
		{Start: 9, End: 12},
		{Start: 12, End: 13},
	}, ContiguousRanges(lines, 3))

	assert.Empty(t, ContiguousRanges(nil, 10))
}

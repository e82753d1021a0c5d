package syntax

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/loom/rope"
	"github.com/dshills/loom/text"
)

// parenGrammar parses nested parentheses into "group" nodes and bare
// words into "atom" leaves. It ignores the incremental hints.
type parenGrammar struct {
	fail bool
}

func (g parenGrammar) Parse(src string, _ *Tree, _ []text.Range) (*Node, error) {
	if g.fail {
		return nil, errors.New("grammar rejected input")
	}
	root := &Node{Kind: "source", Range: text.Range{End: len(src)}, Closed: true}
	stack := []*Node{root}
	wordStart := -1
	flush := func(end int) {
		if wordStart < 0 {
			return
		}
		top := stack[len(stack)-1]
		top.Children = append(top.Children, &Node{
			Kind:   "atom",
			Range:  text.Range{Start: wordStart, End: end},
			Closed: true,
		})
		wordStart = -1
	}
	for i, r := range src {
		switch r {
		case '(':
			flush(i)
			n := &Node{Kind: "group", Range: text.Range{Start: i}}
			top := stack[len(stack)-1]
			top.Children = append(top.Children, n)
			stack = append(stack, n)
		case ')':
			flush(i)
			if len(stack) > 1 {
				top := stack[len(stack)-1]
				top.Range.End = i + 1
				top.Closed = true
				stack = stack[:len(stack)-1]
			}
		case ' ', '\n', '\t':
			flush(i)
		default:
			if wordStart < 0 {
				wordStart = i
			}
		}
	}
	flush(len(src))
	// Unterminated groups extend to the end of the text.
	for _, n := range stack[1:] {
		n.Range.End = len(src)
	}
	return root, nil
}

func parenLanguage(fail bool) *Language {
	return &Language{
		Name:    "paren",
		Grammar: parenGrammar{fail: fail},
		Brackets: NewBracketQuery([]BracketPair{
			{Kind: "group", Open: "(", Close: ")"},
		}),
	}
}

func newTestMap(t *testing.T, src string, fail bool) (*Map, *ManualScheduler, *text.Log, *text.Clock, *rope.Rope) {
	t.Helper()
	lg := text.NewLog(64)
	clock := &text.Clock{}
	m := NewMap(parenLanguage(fail), NewManualScheduler(), lg.Between)
	sched := m.sched.(*ManualScheduler)
	r := rope.FromString(src)
	m.Reset(r, clock.Current())
	return m, sched, lg, clock, &r
}

func TestSexp(t *testing.T) {
	tree := &Tree{Root: &Node{
		Kind: "source",
		Children: []*Node{
			{Kind: "func", Children: []*Node{
				{Kind: "ident", Field: "name"},
				{Kind: "block", Field: "body"},
			}},
		},
	}}
	assert.Equal(t, "(source (func name: (ident) body: (block)))", tree.Sexp())
	assert.Equal(t, "", (*Tree)(nil).Sexp())
}

func TestMapInstallsTree(t *testing.T) {
	m, sched, _, _, _ := newTestMap(t, "(a (b))", false)

	assert.True(t, m.IsParsing())
	assert.Nil(t, m.Tree())

	sched.Run()

	assert.False(t, m.IsParsing())
	tree := m.Tree()
	require.NotNil(t, tree)
	assert.Equal(t, "(source (group (atom) (group (atom))))", tree.Sexp())
}

func TestMapStaleResultRebasedThenReparsed(t *testing.T) {
	m, sched, lg, clock, r := newTestMap(t, "(a)", false)

	// Edit while the first parse is still queued: append after the group.
	change := text.Change{
		Range:    text.Range{Start: 3, End: 3},
		NewRange: text.Range{Start: 3, End: 5},
		NewText:  " b",
		Version:  clock.Tick(),
	}
	lg.Append(change)
	*r = r.Insert(3, " b")
	m.Invalidate([]text.Change{change}, *r, change.Version)

	// First run completes the stale parse; its tree is rebased and a
	// follow-up parse is queued for the dirty tail.
	sched.Run()
	assert.False(t, m.IsParsing())
	tree := m.Tree()
	require.NotNil(t, tree)
	assert.Equal(t, change.Version, tree.Version)
	assert.Equal(t, "(source (group (atom)) (atom))", tree.Sexp())
}

func TestMapParseFailureKeepsOldTree(t *testing.T) {
	m, sched, _, clock, r := newTestMap(t, "(a)", false)
	sched.Run()
	old := m.Tree()
	require.NotNil(t, old)

	m.lang.Grammar = parenGrammar{fail: true}
	change := text.Change{
		Range:    text.Range{Start: 1, End: 2},
		NewRange: text.Range{Start: 1, End: 2},
		OldText:  "a",
		NewText:  "z",
		Version:  clock.Tick(),
	}
	*r = r.Replace(1, 2, "z")
	m.Invalidate([]text.Change{change}, *r, change.Version)
	sched.Run()

	assert.Same(t, old, m.Tree())
	require.Error(t, m.Err())
	assert.ErrorIs(t, m.Err(), ErrParseFailure)
}

func TestMapWait(t *testing.T) {
	lg := text.NewLog(64)
	m := NewMap(parenLanguage(false), GoroutineScheduler{}, lg.Between)
	m.Reset(rope.FromString("(a (b (c)))"), 0)

	require.True(t, m.Wait(5*time.Second))
	assert.False(t, m.IsParsing())
	require.NotNil(t, m.Tree())
}

func TestParseSync(t *testing.T) {
	m, _, _, _, _ := newTestMap(t, "(x)", false)

	// The queued background parse never runs; the foreground parse
	// installs directly.
	require.NoError(t, m.ParseSync())
	tree := m.Tree()
	require.NotNil(t, tree)
	assert.Equal(t, "(source (group (atom)))", tree.Sexp())
}

func TestPathContaining(t *testing.T) {
	root, err := parenGrammar{}.Parse("(a (b))", nil, nil)
	require.NoError(t, err)
	tree := &Tree{Root: root}

	path := tree.PathContaining(text.Range{Start: 4, End: 5})
	require.Len(t, path, 4)
	assert.Equal(t, "source", path[0].Kind)
	assert.Equal(t, "group", path[1].Kind)
	assert.Equal(t, "group", path[2].Kind)
	assert.Equal(t, text.Range{Start: 3, End: 6}, path[2].Range)
	assert.Equal(t, "atom", path[3].Kind)
}

func TestRebaseShiftedSubtreeMatchesScratchParse(t *testing.T) {
	root, err := parenGrammar{}.Parse("(a) (b)", nil, nil)
	require.NoError(t, err)
	tree := &Tree{Root: root}

	change := text.Change{
		Range:    text.Range{Start: 3, End: 3},
		NewRange: text.Range{Start: 3, End: 5},
		NewText:  " x",
		Version:  1,
	}
	rebased, ok := tree.rebase([]text.Change{change}, 1)
	require.True(t, ok)

	// The shifted "(b)" subtree deep-equals its from-scratch
	// counterpart; leaf Children stay nil.
	scratch, err := parenGrammar{}.Parse("(a) x (b)", nil, nil)
	require.NoError(t, err)
	require.Len(t, rebased.Root.Children, 2)
	assert.Equal(t, scratch.Children[2], rebased.Root.Children[1])
}

func TestMergeRanges(t *testing.T) {
	got := mergeRanges([]text.Range{
		{Start: 10, End: 12},
		{Start: 0, End: 4},
		{Start: 3, End: 6},
		{Start: 6, End: 8},
	})
	assert.Equal(t, []text.Range{{Start: 0, End: 8}, {Start: 10, End: 12}}, got)
}

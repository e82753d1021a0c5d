// Package language loads language definitions from YAML and compiles them
// into a delimiter-structure grammar. The grammar recognizes nested
// delimiter pairs, keywords, and identifiers; it is error tolerant and
// reuses top-level subtrees across incremental parses.
package language

import (
	"fmt"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/dshills/loom/syntax"
)

// DefaultWordPattern matches identifiers when a definition names none.
const DefaultWordPattern = `[A-Za-z_][A-Za-z0-9_]*`

// Definition is the YAML shape of a language definition.
type Definition struct {
	// Name identifies the language.
	Name string `yaml:"name"`

	// Root is the kind of the root node. Defaults to "source".
	Root string `yaml:"root"`

	// WordPattern is the regexp for word tokens, anchored at the scan
	// position. Defaults to DefaultWordPattern.
	WordPattern string `yaml:"word_pattern"`

	// Keywords maps reserved words to their rules. A keyword becomes a
	// leaf node whose kind is the word itself.
	Keywords map[string]KeywordRule `yaml:"keywords"`

	// Pairs lists the delimiter pairs that form container nodes.
	Pairs []PairDef `yaml:"pairs"`

	Indent IndentDef `yaml:"indent"`
}

// KeywordRule customizes how a keyword shapes the tree around it.
type KeywordRule struct {
	// FieldNext names the field assigned to the next identifier after
	// this keyword, e.g. "name" after "fn".
	FieldNext string `yaml:"field_next"`
}

// PairDef is one delimiter pair.
type PairDef struct {
	Open  string `yaml:"open"`
	Close string `yaml:"close"`
	Kind  string `yaml:"kind"`
}

// IndentDef lists the node kinds that indent their interior and the
// tokens that close them.
type IndentDef struct {
	Kinds []string `yaml:"kinds"`
	Ends  []string `yaml:"ends"`
}

// Load parses a YAML definition and compiles it into a Language backed by
// the delimiter-structure grammar. Malformed definitions return an error
// wrapping syntax.ErrParseFailure.
func Load(data []byte) (*syntax.Language, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: decoding definition: %v", syntax.ErrParseFailure, err)
	}
	return Compile(&def)
}

// Compile validates a definition and builds its Language.
func Compile(def *Definition) (*syntax.Language, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("%w: definition has no name", syntax.ErrParseFailure)
	}
	if def.Root == "" {
		def.Root = "source"
	}
	if def.WordPattern == "" {
		def.WordPattern = DefaultWordPattern
	}
	word, err := regexp.Compile(`\A(?:` + def.WordPattern + `)`)
	if err != nil {
		return nil, fmt.Errorf("%w: word pattern: %v", syntax.ErrParseFailure, err)
	}

	g := &grammar{
		def:    def,
		word:   word,
		byOpen: make(map[string]PairDef, len(def.Pairs)),
	}
	kinds := make(map[string]bool, len(def.Pairs))
	seenDelims := make(map[string]bool, 2*len(def.Pairs))
	brackets := make([]syntax.BracketPair, 0, len(def.Pairs))
	for _, p := range def.Pairs {
		if p.Open == "" || p.Close == "" || p.Kind == "" {
			return nil, fmt.Errorf("%w: pair %q needs open, close, and kind", syntax.ErrParseFailure, p.Kind)
		}
		if kinds[p.Kind] {
			return nil, fmt.Errorf("%w: duplicate pair kind %q", syntax.ErrParseFailure, p.Kind)
		}
		if _, dup := g.byOpen[p.Open]; dup {
			return nil, fmt.Errorf("%w: duplicate open delimiter %q", syntax.ErrParseFailure, p.Open)
		}
		kinds[p.Kind] = true
		g.byOpen[p.Open] = p
		brackets = append(brackets, syntax.BracketPair{Kind: p.Kind, Open: p.Open, Close: p.Close})
		for _, d := range []string{p.Open, p.Close} {
			if !seenDelims[d] {
				seenDelims[d] = true
				g.delims = append(g.delims, d)
			}
		}
	}
	sort.Slice(g.delims, func(i, j int) bool { return len(g.delims[i]) > len(g.delims[j]) })

	return &syntax.Language{
		Name:     def.Name,
		Grammar:  g,
		Indents:  syntax.NewIndentQuery(def.Indent.Kinds, def.Indent.Ends),
		Brackets: syntax.NewBracketQuery(brackets),
	}, nil
}

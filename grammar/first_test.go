package grammar

import (
	"strings"
	"testing"

	"github.com/nihei9/lrgen/spec"
)

type first struct {
	lhs     string
	num     int
	dot     int
	symbols []string
	empty   bool
}

func TestGenFirst(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		first   []first
	}{
		{
			caption: "productions contain only non-empty productions",
			src: `
%name test

expr -> expr add term | term
term -> term mul factor | factor
factor -> lparen expr rparen | id
`,
			first: []first{
				{lhs: "expr'", num: 0, dot: 0, symbols: []string{"lparen", "id"}},
				{lhs: "expr", num: 0, dot: 0, symbols: []string{"lparen", "id"}},
				{lhs: "expr", num: 0, dot: 1, symbols: []string{"add"}},
				{lhs: "expr", num: 0, dot: 2, symbols: []string{"lparen", "id"}},
				{lhs: "expr", num: 1, dot: 0, symbols: []string{"lparen", "id"}},
				{lhs: "term", num: 0, dot: 0, symbols: []string{"lparen", "id"}},
				{lhs: "term", num: 0, dot: 1, symbols: []string{"mul"}},
				{lhs: "term", num: 0, dot: 2, symbols: []string{"lparen", "id"}},
				{lhs: "term", num: 1, dot: 0, symbols: []string{"lparen", "id"}},
				{lhs: "factor", num: 0, dot: 0, symbols: []string{"lparen"}},
				{lhs: "factor", num: 0, dot: 1, symbols: []string{"lparen", "id"}},
				{lhs: "factor", num: 0, dot: 2, symbols: []string{"rparen"}},
				{lhs: "factor", num: 1, dot: 0, symbols: []string{"id"}},
			},
		},
		{
			caption: "productions contain an empty production",
			src: `
%name test

s -> foo bar
foo ->
bar -> baz
`,
			first: []first{
				{lhs: "s'", num: 0, dot: 0, symbols: []string{"baz"}, empty: false},
				{lhs: "s", num: 0, dot: 0, symbols: []string{"baz"}, empty: false},
				{lhs: "foo", num: 0, dot: 0, symbols: []string{}, empty: true},
			},
		},
		{
			caption: "a start production contains a non-empty alternative and an empty alternative",
			src: `
%name test

s -> foo |
`,
			first: []first{
				{lhs: "s'", num: 0, dot: 0, symbols: []string{"foo"}, empty: true},
				{lhs: "s", num: 0, dot: 0, symbols: []string{"foo"}},
				{lhs: "s", num: 1, dot: 0, symbols: []string{}, empty: true},
			},
		},
		{
			caption: "a production contains a non-empty alternative and an empty alternative",
			src: `
%name test

s -> <foo>
foo -> bar |
`,
			first: []first{
				{lhs: "s'", num: 0, dot: 0, symbols: []string{"bar"}, empty: true},
				{lhs: "s", num: 0, dot: 0, symbols: []string{"bar"}, empty: true},
				{lhs: "foo", num: 0, dot: 0, symbols: []string{"bar"}},
				{lhs: "foo", num: 1, dot: 0, symbols: []string{}, empty: true},
			},
		},
		{
			caption: "terminals settle through a chain of unit productions behind a nullable symbol",
			src: `
%name test

z -> a
a -> b c
b -> | e
e -> f
f -> d
d -> g
`,
			first: []first{
				{lhs: "z'", num: 0, dot: 0, symbols: []string{"c", "g"}},
				{lhs: "z", num: 0, dot: 0, symbols: []string{"c", "g"}},
				{lhs: "a", num: 0, dot: 0, symbols: []string{"c", "g"}},
				{lhs: "b", num: 0, dot: 0, symbols: []string{}, empty: true},
				{lhs: "b", num: 1, dot: 0, symbols: []string{"g"}},
				{lhs: "e", num: 0, dot: 0, symbols: []string{"g"}},
				{lhs: "f", num: 0, dot: 0, symbols: []string{"g"}},
				{lhs: "d", num: 0, dot: 0, symbols: []string{"g"}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			fst, gram := genActualFirst(t, tt.src)

			for _, ttFirst := range tt.first {
				lhsSym, ok := gram.symbolTable.toSymbol(ttFirst.lhs)
				if !ok {
					t.Fatalf("a symbol was not found; symbol: %v", ttFirst.lhs)
				}

				prod, ok := gram.productionSet.findByLHS(lhsSym)
				if !ok {
					t.Fatalf("a production was not found; LHS: %v (%v)", ttFirst.lhs, lhsSym)
				}

				actualFirst, err := fst.find(prod[ttFirst.num], ttFirst.dot)
				if err != nil {
					t.Fatalf("failed to get a FIRST set; LHS: %v (%v), num: %v, dot: %v, error: %v", ttFirst.lhs, lhsSym, ttFirst.num, ttFirst.dot, err)
				}

				expectedFirst := genExpectedFirstEntry(t, ttFirst.symbols, ttFirst.empty, gram.symbolTable)

				testFirst(t, actualFirst, expectedFirst)
			}
		})
	}
}

func genGrammar(t *testing.T, src string) *Grammar {
	t.Helper()

	rs, err := spec.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	b := GrammarBuilder{
		RuleSet: rs,
	}
	gram, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return gram
}

func genActualFirst(t *testing.T, src string) (*firstSet, *Grammar) {
	gram := genGrammar(t, src)
	fst, err := genFirstSet(gram.productionSet)
	if err != nil {
		t.Fatal(err)
	}
	if fst == nil {
		t.Fatal("genFirstSet returned nil without any error")
	}

	return fst, gram
}

func genExpectedFirstEntry(t *testing.T, symbols []string, empty bool, symTab *symbolTable) *firstEntry {
	t.Helper()

	entry := newFirstEntry()
	if empty {
		entry.addEmpty()
	}
	for _, sym := range symbols {
		symSym, ok := symTab.toSymbol(sym)
		if !ok {
			t.Fatalf("a symbol was not found; symbol: %v", sym)
		}
		entry.add(symSym)
	}

	return entry
}

func testFirst(t *testing.T, actual, expected *firstEntry) {
	if actual.empty != expected.empty {
		t.Errorf("empty is mismatched\nwant: %v\ngot: %v", expected.empty, actual.empty)
	}

	if len(actual.symbols) != len(expected.symbols) {
		t.Fatalf("invalid FIRST set\nwant: %+v\ngot: %+v", expected.symbols, actual.symbols)
	}

	for eSym := range expected.symbols {
		if _, ok := actual.symbols[eSym]; !ok {
			t.Fatalf("invalid FIRST set\nwant: %+v\ngot: %+v", expected.symbols, actual.symbols)
		}
	}
}

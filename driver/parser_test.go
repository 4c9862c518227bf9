package driver

import (
	"strings"
	"testing"

	"github.com/nihei9/lrgen/grammar"
	"github.com/nihei9/lrgen/spec"
)

func compileGrammar(t *testing.T, src string, opts ...grammar.CompileOption) *spec.CompiledGrammar {
	t.Helper()

	rs, err := spec.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	b := grammar.GrammarBuilder{
		RuleSet: rs,
	}
	gram, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	cgram, _, err := grammar.Compile(gram, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return cgram
}

func kinds(names ...string) []*Token {
	toks := make([]*Token, len(names))
	for i, name := range names {
		toks[i] = &Token{
			Kind:   name,
			Lexeme: name,
		}
	}
	return toks
}

func TestParserAccept(t *testing.T) {
	src := `
%name arith
%start expr

expr -> expr add term | term
term -> term mul factor | factor
factor -> lparen expr rparen | id
`
	tests := []struct {
		caption string
		input   []string
	}{
		{
			caption: "a single token",
			input:   []string{"id"},
		},
		{
			caption: "an expression with both operators",
			input:   []string{"id", "add", "id", "mul", "id"},
		},
		{
			caption: "a parenthesized expression",
			input:   []string{"lparen", "id", "add", "id", "rparen", "mul", "id"},
		},
	}
	for _, class := range []grammar.Class{grammar.ClassLR1, grammar.ClassLALR} {
		cgram := compileGrammar(t, src, grammar.WithClass(class))
		gram := NewGrammar(cgram)
		for _, tt := range tests {
			t.Run(string(class)+"/"+tt.caption, func(t *testing.T) {
				p := NewParser(gram, NewSliceTokenStream(kinds(tt.input...)))
				if err := p.Parse(); err != nil {
					t.Fatal(err)
				}
				tree := p.Tree()
				if tree == nil {
					t.Fatal("a parse tree was not generated")
				}
				if tree.KindName != "expr" {
					t.Fatalf("unexpected root\nwant: %v\ngot: %v", "expr", tree.KindName)
				}
			})
		}
	}
}

func TestParserTreeShape(t *testing.T) {
	src := `
%name arith
%start expr

expr -> expr add term | term
term -> term mul factor | factor
factor -> lparen expr rparen | id
`
	cgram := compileGrammar(t, src)
	p := NewParser(NewGrammar(cgram), NewSliceTokenStream(kinds("id", "add", "id", "mul", "id")))
	if err := p.Parse(); err != nil {
		t.Fatal(err)
	}

	// Multiplication binds tighter, so the root is the addition with
	// the product as its right operand.
	tree := p.Tree()
	if len(tree.Children) != 3 {
		t.Fatalf("unexpected number of children: %v", len(tree.Children))
	}
	if tree.Children[0].KindName != "expr" || tree.Children[1].KindName != "add" || tree.Children[2].KindName != "term" {
		t.Fatalf("unexpected children: %v, %v, %v", tree.Children[0].KindName, tree.Children[1].KindName, tree.Children[2].KindName)
	}
	product := tree.Children[2]
	if len(product.Children) != 3 || product.Children[1].KindName != "mul" {
		t.Fatalf("the right operand must be the product; got: %+v", product)
	}
}

func TestParserSyntaxError(t *testing.T) {
	src := `
%name arith
%start expr

expr -> expr add term | term
term -> term mul factor | factor
factor -> lparen expr rparen | id
`
	cgram := compileGrammar(t, src)
	gram := NewGrammar(cgram)

	tests := []struct {
		caption  string
		input    []string
		expected []string
	}{
		{
			caption:  "an input ending with an operator",
			input:    []string{"id", "add"},
			expected: []string{"lparen", "id"},
		},
		{
			caption:  "two ids in a row",
			input:    []string{"id", "id"},
			expected: []string{"<eof>", "add", "mul"},
		},
		{
			caption:  "an empty input",
			input:    []string{},
			expected: []string{"lparen", "id"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			p := NewParser(gram, NewSliceTokenStream(kinds(tt.input...)))
			err := p.Parse()
			if err == nil {
				t.Fatal("expected a syntax error")
			}
			synErr, ok := err.(*SyntaxError)
			if !ok {
				t.Fatalf("unexpected error type: %T: %v", err, err)
			}
			if synErr != p.SyntaxError() {
				t.Fatal("the returned error and the recorded error must be the same")
			}
			if p.Tree() != nil {
				t.Fatal("a parse tree must not be generated on a syntax error")
			}
			if len(synErr.ExpectedTerminals) != len(tt.expected) {
				t.Fatalf("unexpected expected terminals\nwant: %v\ngot: %v", tt.expected, synErr.ExpectedTerminals)
			}
			for i, kind := range tt.expected {
				if synErr.ExpectedTerminals[i] != kind {
					t.Fatalf("unexpected expected terminals\nwant: %v\ngot: %v", tt.expected, synErr.ExpectedTerminals)
				}
			}
		})
	}
}

func TestParserOptionalTrailingTerminal(t *testing.T) {
	src := `
%name query
%start query

query -> <stmt> semicolon | <stmt>
stmt -> select star from ident
`
	cgram := compileGrammar(t, src)
	gram := NewGrammar(cgram)

	for _, tt := range []struct {
		caption string
		input   []string
	}{
		{
			caption: "with the trailing terminal",
			input:   []string{"select", "star", "from", "ident", "semicolon"},
		},
		{
			caption: "without the trailing terminal",
			input:   []string{"select", "star", "from", "ident"},
		},
	} {
		t.Run(tt.caption, func(t *testing.T) {
			p := NewParser(gram, NewSliceTokenStream(kinds(tt.input...)))
			if err := p.Parse(); err != nil {
				t.Fatal(err)
			}
			if p.Tree() == nil || p.Tree().KindName != "query" {
				t.Fatalf("unexpected parse tree: %+v", p.Tree())
			}
		})
	}
}

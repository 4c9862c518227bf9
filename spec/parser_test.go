package spec

import (
	"errors"
	"strings"
	"testing"

	verr "github.com/nihei9/lrgen/error"
)

func TestParse(t *testing.T) {
	src := `
# Arithmetic expressions.
%name arith
%start expr

expr -> expr add term | term
term -> term mul factor
     | factor
factor -> lparen <expr> rparen
factor -> id
opt ->
`
	rs, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}

	if rs.Name != "arith" {
		t.Errorf("unexpected name\nwant: %v\ngot: %v", "arith", rs.Name)
	}
	if rs.Start != "expr" {
		t.Errorf("unexpected start symbol\nwant: %v\ngot: %v", "expr", rs.Start)
	}

	type flatRule struct {
		lhs string
		rhs []string
	}
	expected := []flatRule{
		{lhs: "expr", rhs: []string{"expr", "add", "term"}},
		{lhs: "expr", rhs: []string{"term"}},
		{lhs: "term", rhs: []string{"term", "mul", "factor"}},
		{lhs: "term", rhs: []string{"factor"}},
		{lhs: "factor", rhs: []string{"lparen", "expr", "rparen"}},
		{lhs: "factor", rhs: []string{"id"}},
		{lhs: "opt", rhs: []string{}},
	}
	if len(rs.Rules) != len(expected) {
		t.Fatalf("unexpected number of rules\nwant: %v\ngot: %v", len(expected), len(rs.Rules))
	}
	for i, e := range expected {
		rule := rs.Rules[i]
		if rule.LHS != e.lhs {
			t.Fatalf("unexpected LHS; rule: %v\nwant: %v\ngot: %v", i, e.lhs, rule.LHS)
		}
		if len(rule.RHS) != len(e.rhs) {
			t.Fatalf("unexpected RHS; rule: %v\nwant: %v\ngot: %+v", i, e.rhs, rule.RHS)
		}
		for j, name := range e.rhs {
			if rule.RHS[j].Name != name {
				t.Fatalf("unexpected RHS symbol; rule: %v\nwant: %v\ngot: %v", i, name, rule.RHS[j].Name)
			}
		}
	}

	// `<expr>` is an explicit non-terminal reference.
	if rs.Rules[4].RHS[1].Kind != SymbolKindNonTerminal {
		t.Errorf("an explicit non-terminal mark was not recognized")
	}
	if rs.Rules[4].RHS[0].Kind != SymbolKindUnspecified {
		t.Errorf("a bare symbol must have an unspecified kind")
	}
}

func TestParseSpecError(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		cause   error
		row     int
	}{
		{
			caption: "an unknown directive",
			src:     "%foo bar",
			cause:   ParseErrInvalidDirective,
			row:     1,
		},
		{
			caption: "a directive with too many parameters",
			src:     "%start a b c",
			cause:   ParseErrInvalidDirective,
			row:     1,
		},
		{
			caption: "a rule without an arrow",
			src:     "expr expr add term",
			cause:   ParseErrInvalidRule,
			row:     1,
		},
		{
			caption: "a rule without an LHS",
			src:     "-> term",
			cause:   ParseErrInvalidRule,
			row:     1,
		},
		{
			caption: "an alternative without a preceding rule",
			src:     "\n| term",
			cause:   ParseErrOrphanedAlt,
			row:     2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			if err == nil {
				t.Fatal("expected an error")
			}
			var specErrs verr.SpecErrors
			if !errors.As(err, &specErrs) {
				t.Fatalf("unexpected error type: %T: %v", err, err)
			}
			if len(specErrs) != 1 {
				t.Fatalf("unexpected number of errors: %v", specErrs)
			}
			if specErrs[0].Cause != tt.cause {
				t.Fatalf("unexpected cause\nwant: %v\ngot: %v", tt.cause, specErrs[0].Cause)
			}
			if specErrs[0].Row != tt.row {
				t.Fatalf("unexpected row\nwant: %v\ngot: %v", tt.row, specErrs[0].Row)
			}
		})
	}
}

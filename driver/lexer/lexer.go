// Package lexer feeds a maleeni-generated lexer into the parser. The
// compiled grammar carries the compiled lexical specification and the
// mapping from lexical kinds to the grammar's terminals.
package lexer

import (
	"fmt"
	"io"

	mldriver "github.com/nihei9/maleeni/driver"

	"github.com/nihei9/lrgen/driver"
	"github.com/nihei9/lrgen/spec"
)

type tokenStream struct {
	lex       *mldriver.Lexer
	terminals []string
	toTerm    []int
	skip      []int
}

func NewTokenStream(g *spec.CompiledGrammar, src io.Reader) (driver.TokenStream, error) {
	if g.Lexical == nil || g.Lexical.Maleeni == nil {
		return nil, fmt.Errorf("a compiled grammar has no lexical specification")
	}
	lex, err := mldriver.NewLexer(mldriver.NewLexSpec(g.Lexical.Maleeni.Spec), src)
	if err != nil {
		return nil, err
	}
	return &tokenStream{
		lex:       lex,
		terminals: g.ParsingTable.Terminals,
		toTerm:    g.Lexical.Maleeni.KindToTerminal,
		skip:      g.Lexical.Maleeni.Skip,
	}, nil
}

func (s *tokenStream) Next() (*driver.Token, error) {
	for {
		tok, err := s.lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF {
			return &driver.Token{
				Row: tok.Row,
				Col: tok.Col,
				EOF: true,
			}, nil
		}
		if tok.Invalid {
			return nil, fmt.Errorf("%v:%v: unrecognized input: %#v", tok.Row, tok.Col, string(tok.Lexeme))
		}
		if s.skip[tok.KindID] > 0 {
			continue
		}
		return &driver.Token{
			Kind:   s.terminals[s.toTerm[tok.KindID]],
			Lexeme: string(tok.Lexeme),
			Row:    tok.Row,
			Col:    tok.Col,
		}, nil
	}
}

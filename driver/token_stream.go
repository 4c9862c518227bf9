package driver

// Token is a terminal symbol occurrence the parser consumes. Kind is
// the terminal's name in the grammar.
type Token struct {
	Kind   string
	Lexeme string
	Row    int
	Col    int
	EOF    bool
}

// TokenStream supplies tokens to the parser one at a time. Once a
// stream has returned a token with EOF set, it must keep doing so.
type TokenStream interface {
	Next() (*Token, error)
}

type sliceTokenStream struct {
	toks []*Token
	pos  int
}

// NewSliceTokenStream wraps a fixed token sequence. The stream yields
// an EOF token after the last element, so callers don't append one
// themselves.
func NewSliceTokenStream(toks []*Token) TokenStream {
	return &sliceTokenStream{
		toks: toks,
	}
}

func (s *sliceTokenStream) Next() (*Token, error) {
	if s.pos >= len(s.toks) {
		return &Token{EOF: true}, nil
	}
	tok := s.toks[s.pos]
	s.pos++
	return tok, nil
}

package driver

import (
	"fmt"
	"io"
)

// Node is a parse tree node. A leaf represents a token and carries its
// text and position; an inner node represents a production's LHS.
type Node struct {
	KindName string
	Text     string
	Row      int
	Col      int
	Children []*Node
}

func PrintTree(w io.Writer, node *Node) {
	printTree(w, node, "", "")
}

func printTree(w io.Writer, node *Node, ruledLine string, childRuledLinePrefix string) {
	if node == nil {
		return
	}

	if node.Text != "" {
		fmt.Fprintf(w, "%v%v %#v\n", ruledLine, node.KindName, node.Text)
	} else {
		fmt.Fprintf(w, "%v%v\n", ruledLine, node.KindName)
	}

	num := len(node.Children)
	for i, child := range node.Children {
		var line string
		if num > 1 && i < num-1 {
			line = "├─ "
		} else {
			line = "└─ "
		}

		var prefix string
		if i >= num-1 {
			prefix = "   "
		} else {
			prefix = "│  "
		}

		printTree(w, child, childRuledLinePrefix+line, childRuledLinePrefix+prefix)
	}
}

type SyntaxError struct {
	Row               int
	Col               int
	Message           string
	Token             *Token
	State             int
	ExpectedTerminals []string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v:%v: %v", e.Row, e.Col, e.Message)
}

type Parser struct {
	gram       Grammar
	toks       TokenStream
	stateStack []int
	treeStack  []*Node
	tree       *Node
	synErr     *SyntaxError
}

func NewParser(gram Grammar, toks TokenStream) *Parser {
	return &Parser{
		gram:       gram,
		toks:       toks,
		stateStack: []int{},
	}
}

// Parse runs the shift-reduce loop until the input is accepted or a
// syntax error occurs. A syntax error is returned as a *SyntaxError
// and is also available via SyntaxError after the call.
func (p *Parser) Parse() error {
	p.push(p.gram.InitialState())
	tok, term, err := p.nextToken()
	if err != nil {
		return err
	}

	for {
		act := p.gram.Action(p.top(), term)
		switch {
		case act < 0: // Shift
			nextState := act * -1
			p.shift(nextState, tok, term)

			tok, term, err = p.nextToken()
			if err != nil {
				return err
			}
		case act > 0: // Reduce
			prodNum := act - 1
			if prodNum == p.gram.StartProduction() {
				// Accept
				p.tree = p.treeStack[len(p.treeStack)-1]
				return nil
			}
			p.reduce(prodNum)
		default: // Error
			p.synErr = &SyntaxError{
				Row:               tok.Row,
				Col:               tok.Col,
				Message:           "unexpected token",
				Token:             tok,
				State:             p.top(),
				ExpectedTerminals: p.searchLookahead(p.top()),
			}
			if tok.EOF {
				p.synErr.Message = "unexpected end of input"
			}
			return p.synErr
		}
	}
}

func (p *Parser) nextToken() (*Token, int, error) {
	tok, err := p.toks.Next()
	if err != nil {
		return nil, 0, err
	}
	if tok.EOF {
		return tok, p.gram.EOF(), nil
	}
	term, ok := p.gram.TerminalByName(tok.Kind)
	if !ok {
		return nil, 0, fmt.Errorf("unknown token kind: %v", tok.Kind)
	}
	return tok, term, nil
}

func (p *Parser) shift(nextState int, tok *Token, term int) {
	p.push(nextState)
	p.treeStack = append(p.treeStack, &Node{
		KindName: p.gram.Terminal(term),
		Text:     tok.Lexeme,
		Row:      tok.Row,
		Col:      tok.Col,
	})
}

func (p *Parser) reduce(prodNum int) {
	lhs := p.gram.LHS(prodNum)

	// When an alternative is empty, `n` is 0 and `children` is an
	// empty slice.
	n := p.gram.AlternativeSymbolCount(prodNum)
	p.pop(n)
	nextState := p.gram.GoTo(p.top(), lhs)
	p.push(nextState)

	children := make([]*Node, n)
	copy(children, p.treeStack[len(p.treeStack)-n:])
	p.treeStack = p.treeStack[:len(p.treeStack)-n]
	p.treeStack = append(p.treeStack, &Node{
		KindName: p.gram.NonTerminal(lhs),
		Children: children,
	})
}

// searchLookahead lists the terminals the current state has any action
// for. They are the tokens that would have allowed parsing to proceed.
func (p *Parser) searchLookahead(state int) []string {
	kinds := []string{}
	termCount := p.gram.TerminalCount()
	for term := 0; term < termCount; term++ {
		if p.gram.Action(state, term) == 0 {
			continue
		}
		if term == p.gram.EOF() {
			kinds = append(kinds, "<eof>")
			continue
		}
		kinds = append(kinds, p.gram.Terminal(term))
	}
	return kinds
}

func (p *Parser) top() int {
	return p.stateStack[len(p.stateStack)-1]
}

func (p *Parser) push(state int) {
	p.stateStack = append(p.stateStack, state)
}

func (p *Parser) pop(n int) {
	p.stateStack = p.stateStack[:len(p.stateStack)-n]
}

// Tree returns the parse tree of the accepted input, or nil when
// parsing has not succeeded.
func (p *Parser) Tree() *Node {
	return p.tree
}

func (p *Parser) SyntaxError() *SyntaxError {
	return p.synErr
}

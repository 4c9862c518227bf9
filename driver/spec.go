package driver

import "github.com/nihei9/lrgen/spec"

// Grammar is the parser's view of a compiled grammar. It hides the
// table encoding behind plain lookups.
type Grammar interface {
	// InitialState returns the state the parser starts in.
	InitialState() int

	// StartProduction returns the number of the augmented production.
	// Reducing it accepts the input.
	StartProduction() int

	// Action returns an ACTION entry. A negative value is a shift to
	// state -n, a positive value a reduce by production n-1, and 0 a
	// syntax error.
	Action(state int, terminal int) int

	// GoTo returns a GOTO entry, or 0 when the entry is empty.
	GoTo(state int, lhs int) int

	// LHS returns the number of a production's LHS symbol.
	LHS(prod int) int

	// AlternativeSymbolCount returns the length of a production's RHS.
	AlternativeSymbolCount(prod int) int

	TerminalCount() int

	// Terminal returns a terminal's name.
	Terminal(terminal int) string

	// TerminalByName returns a terminal's number, or false when no
	// terminal has the name.
	TerminalByName(kind string) (int, bool)

	// NonTerminal returns a non-terminal's name.
	NonTerminal(lhs int) string

	// EOF returns the EOF terminal's number.
	EOF() int
}

type grammarImpl struct {
	g               *spec.CompiledGrammar
	terminalsByName map[string]int
}

func NewGrammar(g *spec.CompiledGrammar) Grammar {
	byName := map[string]int{}
	for term, name := range g.ParsingTable.Terminals {
		if name == "" {
			continue
		}
		byName[name] = term
	}
	return &grammarImpl{
		g:               g,
		terminalsByName: byName,
	}
}

func (g *grammarImpl) InitialState() int {
	return g.g.ParsingTable.InitialState
}

func (g *grammarImpl) StartProduction() int {
	return g.g.ParsingTable.StartProduction
}

func (g *grammarImpl) Action(state int, terminal int) int {
	return g.g.ParsingTable.Action[state*g.g.ParsingTable.TerminalCount+terminal]
}

func (g *grammarImpl) GoTo(state int, lhs int) int {
	return g.g.ParsingTable.GoTo[state*g.g.ParsingTable.NonTerminalCount+lhs]
}

func (g *grammarImpl) LHS(prod int) int {
	return g.g.ParsingTable.LHSSymbols[prod]
}

func (g *grammarImpl) AlternativeSymbolCount(prod int) int {
	return g.g.ParsingTable.AlternativeSymbolCounts[prod]
}

func (g *grammarImpl) TerminalCount() int {
	return g.g.ParsingTable.TerminalCount
}

func (g *grammarImpl) Terminal(terminal int) string {
	return g.g.ParsingTable.Terminals[terminal]
}

func (g *grammarImpl) TerminalByName(kind string) (int, bool) {
	term, ok := g.terminalsByName[kind]
	return term, ok
}

func (g *grammarImpl) NonTerminal(lhs int) string {
	return g.g.ParsingTable.NonTerminals[lhs]
}

func (g *grammarImpl) EOF() int {
	return g.g.ParsingTable.EOFSymbol
}

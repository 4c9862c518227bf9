package spec

import mlspec "github.com/nihei9/maleeni/spec"

// SymbolKind tells the grammar compiler how to treat a symbol appearing
// in a rule. When a symbol's kind is unspecified, the compiler infers it
// from usage: a symbol is a non-terminal iff it appears as the LHS of
// some rule, and a terminal otherwise.
type SymbolKind string

const (
	SymbolKindUnspecified = SymbolKind("")
	SymbolKindTerminal    = SymbolKind("terminal")
	SymbolKindNonTerminal = SymbolKind("non-terminal")
)

type RuleSymbol struct {
	Name string     `json:"name"`
	Kind SymbolKind `json:"kind,omitempty"`
}

type Rule struct {
	LHS string        `json:"lhs"`
	RHS []*RuleSymbol `json:"rhs"`

	// Row is the line number the rule appeared on in its source text.
	// It is zero for rules constructed programmatically.
	Row int `json:"-"`
}

// RuleSet is the already-parsed form of a grammar: a sequence of rules
// plus a start symbol. When Start is empty, the LHS of the first rule is
// the start symbol.
type RuleSet struct {
	Name  string  `json:"name,omitempty"`
	Start string  `json:"start,omitempty"`
	Rules []*Rule `json:"rules"`
}

type CompiledGrammar struct {
	Name         string        `json:"name"`
	Class        string        `json:"class"`
	Lexical      *LexicalSpec  `json:"lexical,omitempty"`
	ParsingTable *ParsingTable `json:"parsing_table"`
}

type LexicalSpec struct {
	Maleeni *Maleeni `json:"maleeni"`
}

type Maleeni struct {
	Spec           *mlspec.CompiledLexSpec `json:"spec"`
	KindToTerminal []int                   `json:"kind_to_terminal"`
	Skip           []int                   `json:"skip"`
}

// ParsingTable is the ACTION/GOTO table pair in a portable encoding.
//
// An ACTION entry is empty (a syntax error) when 0, a shift to state -e
// when negative, and a reduce of production e-1 when positive. Reducing
// the augmented production (number 0) means accept. A GOTO entry is
// empty when 0 because the initial state is never a GOTO target.
type ParsingTable struct {
	Action                  []int    `json:"action"`
	GoTo                    []int    `json:"goto"`
	StateCount              int      `json:"state_count"`
	InitialState            int      `json:"initial_state"`
	StartProduction         int      `json:"start_production"`
	LHSSymbols              []int    `json:"lhs_symbols"`
	AlternativeSymbolCounts []int    `json:"alternative_symbol_counts"`
	Terminals               []string `json:"terminals"`
	TerminalCount           int      `json:"terminal_count"`
	NonTerminals            []string `json:"non_terminals"`
	NonTerminalCount        int      `json:"non_terminal_count"`
	EOFSymbol               int      `json:"eof_symbol"`
}

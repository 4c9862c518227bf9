package grammar

import (
	"fmt"
	"sort"
)

type symbolKind string

const (
	symbolKindNonTerminal = symbolKind("non-terminal")
	symbolKindTerminal    = symbolKind("terminal")
)

func (k symbolKind) String() string {
	return string(k)
}

type symbolNum uint16

func (n symbolNum) Int() int {
	return int(n)
}

// symbol packs a symbol's kind and number into a uint16: the top bit is
// the kind (0: non-terminal, 1: terminal), the next bit marks the
// augmented start symbol or the EOF symbol, and the remaining 14 bits
// are the number.
type symbol uint16

const (
	maskKindPart    = uint16(0x8000)
	maskNonTerminal = uint16(0x0000)
	maskTerminal    = uint16(0x8000)

	maskSubKindPart = uint16(0x4000)
	maskStartOrEOF  = uint16(0x4000)

	maskNumberPart = uint16(0x3fff)

	symbolNil   = symbol(0)
	symbolStart = symbol(maskNonTerminal | maskStartOrEOF | 0x0001)
	symbolEOF   = symbol(maskTerminal | maskStartOrEOF | 0x0001)

	// The EOF symbol's name contains `<` and `>` to avoid conflicting
	// with user-defined symbols. It stands for the `$` end marker.
	symbolNameEOF = "<eof>"

	nonTerminalNumMin = symbolNum(2)
	terminalNumMin    = symbolNum(2)
	symbolNumMax      = symbolNum(0x3fff)
)

func newSymbol(kind symbolKind, num symbolNum) (symbol, error) {
	if num > symbolNumMax {
		return symbolNil, fmt.Errorf("a symbol number exceeds the limit; limit: %v, passed: %v", symbolNumMax, num)
	}
	kindMask := maskNonTerminal
	if kind == symbolKindTerminal {
		kindMask = maskTerminal
	}
	return symbol(kindMask | uint16(num)), nil
}

func (s symbol) String() string {
	kind, isStart, isEOF, num := s.describe()
	var prefix string
	switch {
	case isStart:
		prefix = "s"
	case isEOF:
		prefix = "e"
	case kind == symbolKindNonTerminal:
		prefix = "n"
	default:
		prefix = "t"
	}
	return fmt.Sprintf("%v%v", prefix, num)
}

func (s symbol) num() symbolNum {
	return symbolNum(uint16(s) & maskNumberPart)
}

func (s symbol) byte() []byte {
	return []byte{byte(uint16(s) >> 8), byte(uint16(s) & 0x00ff)}
}

func (s symbol) isNil() bool {
	return s.num() == 0
}

func (s symbol) isStart() bool {
	return s == symbolStart
}

func (s symbol) isEOF() bool {
	return s == symbolEOF
}

func (s symbol) isNonTerminal() bool {
	if s.isNil() {
		return false
	}
	return uint16(s)&maskKindPart == maskNonTerminal
}

func (s symbol) isTerminal() bool {
	if s.isNil() {
		return false
	}
	return !s.isNonTerminal()
}

func (s symbol) describe() (symbolKind, bool, bool, symbolNum) {
	kind := symbolKindNonTerminal
	if uint16(s)&maskKindPart > 0 {
		kind = symbolKindTerminal
	}
	isStart := false
	isEOF := false
	if uint16(s)&maskSubKindPart > 0 {
		if kind == symbolKindNonTerminal {
			isStart = true
		} else {
			isEOF = true
		}
	}
	return kind, isStart, isEOF, s.num()
}

type symbolTable struct {
	text2Sym     map[string]symbol
	sym2Text     map[symbol]string
	nonTermTexts []string
	termTexts    []string
	nonTermNum   symbolNum
	termNum      symbolNum
}

func newSymbolTable() *symbolTable {
	return &symbolTable{
		text2Sym: map[string]symbol{
			symbolNameEOF: symbolEOF,
		},
		sym2Text: map[symbol]string{
			symbolEOF: symbolNameEOF,
		},
		termTexts: []string{
			"",            // Nil
			symbolNameEOF, // EOF
		},
		nonTermTexts: []string{
			"", // Nil
			"", // Start symbol
		},
		nonTermNum: nonTerminalNumMin,
		termNum:    terminalNumMin,
	}
}

func (t *symbolTable) registerStartSymbol(text string) symbol {
	t.text2Sym[text] = symbolStart
	t.sym2Text[symbolStart] = text
	t.nonTermTexts[symbolStart.num().Int()] = text
	return symbolStart
}

func (t *symbolTable) registerNonTerminalSymbol(text string) (symbol, error) {
	if sym, ok := t.text2Sym[text]; ok {
		return sym, nil
	}
	sym, err := newSymbol(symbolKindNonTerminal, t.nonTermNum)
	if err != nil {
		return symbolNil, err
	}
	t.nonTermNum++
	t.text2Sym[text] = sym
	t.sym2Text[sym] = text
	t.nonTermTexts = append(t.nonTermTexts, text)
	return sym, nil
}

func (t *symbolTable) registerTerminalSymbol(text string) (symbol, error) {
	if sym, ok := t.text2Sym[text]; ok {
		return sym, nil
	}
	sym, err := newSymbol(symbolKindTerminal, t.termNum)
	if err != nil {
		return symbolNil, err
	}
	t.termNum++
	t.text2Sym[text] = sym
	t.sym2Text[sym] = text
	t.termTexts = append(t.termTexts, text)
	return sym, nil
}

func (t *symbolTable) toSymbol(text string) (symbol, bool) {
	sym, ok := t.text2Sym[text]
	return sym, ok
}

func (t *symbolTable) toText(sym symbol) (string, bool) {
	text, ok := t.sym2Text[sym]
	return text, ok
}

func (t *symbolTable) terminalSymbols() []symbol {
	syms := make([]symbol, 0, t.termNum.Int()-1)
	for sym := range t.sym2Text {
		if !sym.isTerminal() {
			continue
		}
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i].num() < syms[j].num()
	})
	return syms
}

func (t *symbolTable) nonTerminalSymbols() []symbol {
	syms := make([]symbol, 0, t.nonTermNum.Int()-1)
	for sym := range t.sym2Text {
		if !sym.isNonTerminal() {
			continue
		}
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i].num() < syms[j].num()
	})
	return syms
}

func (t *symbolTable) terminalTexts() ([]string, error) {
	if t.termNum == terminalNumMin {
		return nil, fmt.Errorf("a symbol table has no terminals")
	}
	return t.termTexts, nil
}

func (t *symbolTable) nonTerminalTexts() ([]string, error) {
	if t.nonTermTexts[symbolStart.num().Int()] == "" {
		return nil, fmt.Errorf("a symbol table has no start symbol")
	}
	return t.nonTermTexts, nil
}

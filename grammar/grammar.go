package grammar

import (
	"fmt"

	verr "github.com/nihei9/lrgen/error"
	"github.com/nihei9/lrgen/spec"
)

// Class selects the construction the parsing table is derived from:
// the canonical LR(1) collection, or its LALR(1) merge.
type Class string

const (
	ClassLR1  = Class("lr1")
	ClassLALR = Class("lalr")
)

type Grammar struct {
	name                 string
	symbolTable          *symbolTable
	productionSet        *productionSet
	startSymbol          symbol
	augmentedStartSymbol symbol
}

type GrammarBuilder struct {
	RuleSet *spec.RuleSet

	errs verr.SpecErrors
}

// Build validates the rule set and freezes it into a Grammar. The
// grammar is augmented with a synthetic production `start' -> start`
// numbered 0; user productions are numbered from 1 in declaration
// order.
func (b *GrammarBuilder) Build() (*Grammar, error) {
	rs := b.RuleSet
	if rs == nil || len(rs.Rules) == 0 {
		return nil, verr.SpecErrors{
			&verr.SpecError{
				Cause: semErrNoProduction,
			},
		}
	}

	lhsNames, lhsSet := definedNonTerminals(rs)

	startName := rs.Start
	if startName == "" {
		startName = rs.Rules[0].LHS
	}
	if _, ok := lhsSet[startName]; !ok {
		return nil, verr.SpecErrors{
			&verr.SpecError{
				Cause:  semErrNoStartProduction,
				Detail: startName,
			},
		}
	}

	b.checkRHSSymbols(rs, lhsSet)
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	symTab := newSymbolTable()
	augStartSym := symTab.registerStartSymbol(startName + "'")
	for _, name := range lhsNames {
		if _, err := symTab.registerNonTerminalSymbol(name); err != nil {
			return nil, err
		}
	}
	for _, rule := range rs.Rules {
		for _, elem := range rule.RHS {
			if _, ok := lhsSet[elem.Name]; ok {
				continue
			}
			if _, err := symTab.registerTerminalSymbol(elem.Name); err != nil {
				return nil, err
			}
		}
	}

	prods := newProductionSet()
	{
		startSym, ok := symTab.toSymbol(startName)
		if !ok {
			return nil, fmt.Errorf("a start symbol was not found in a symbol table: %v", startName)
		}
		augProd, err := newProduction(augStartSym, []symbol{startSym})
		if err != nil {
			return nil, err
		}
		prods.append(augProd)

		for _, rule := range rs.Rules {
			lhsSym, ok := symTab.toSymbol(rule.LHS)
			if !ok {
				return nil, fmt.Errorf("a symbol was not found in a symbol table: %v", rule.LHS)
			}
			rhsSyms := make([]symbol, len(rule.RHS))
			for i, elem := range rule.RHS {
				sym, ok := symTab.toSymbol(elem.Name)
				if !ok {
					return nil, fmt.Errorf("a symbol was not found in a symbol table: %v", elem.Name)
				}
				rhsSyms[i] = sym
			}
			prod, err := newProduction(lhsSym, rhsSyms)
			if err != nil {
				return nil, err
			}
			if added := prods.append(prod); !added {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrDuplicateProduction,
					Detail: rule.LHS,
					Row:    rule.Row,
				})
			}
		}
		if len(b.errs) > 0 {
			return nil, b.errs
		}
	}

	name := rs.Name
	if name == "" {
		name = "grammar"
	}
	startSym, _ := symTab.toSymbol(startName)

	return &Grammar{
		name:                 name,
		symbolTable:          symTab,
		productionSet:        prods,
		startSymbol:          startSym,
		augmentedStartSymbol: augStartSym,
	}, nil
}

func definedNonTerminals(rs *spec.RuleSet) ([]string, map[string]struct{}) {
	var names []string
	set := map[string]struct{}{}
	for _, rule := range rs.Rules {
		if _, ok := set[rule.LHS]; ok {
			continue
		}
		set[rule.LHS] = struct{}{}
		names = append(names, rule.LHS)
	}
	return names, set
}

// checkRHSSymbols verifies that every explicitly marked non-terminal
// reference has a defining rule and that no explicitly marked terminal
// shares a name with a non-terminal. Unmarked symbols have their kind
// inferred from usage and thus cannot be undefined.
func (b *GrammarBuilder) checkRHSSymbols(rs *spec.RuleSet, lhsSet map[string]struct{}) {
	for _, rule := range rs.Rules {
		for _, elem := range rule.RHS {
			_, defined := lhsSet[elem.Name]
			switch elem.Kind {
			case spec.SymbolKindNonTerminal:
				if !defined {
					b.errs = append(b.errs, &verr.SpecError{
						Cause:  semErrUndefinedSym,
						Detail: elem.Name,
						Row:    rule.Row,
					})
				}
			case spec.SymbolKindTerminal:
				if defined {
					b.errs = append(b.errs, &verr.SpecError{
						Cause:  semErrDuplicateName,
						Detail: elem.Name,
						Row:    rule.Row,
					})
				}
			}
		}
	}
}

type compileConfig struct {
	isReportingEnabled bool
	class              Class
	resolver           ConflictResolver
}

type CompileOption func(config *compileConfig)

// EnableReporting makes Compile return a Report describing the
// automaton, the tables, FIRST/FOLLOW, and every conflict alongside
// the compiled grammar.
func EnableReporting() CompileOption {
	return func(config *compileConfig) {
		config.isReportingEnabled = true
	}
}

// WithClass selects the table construction. The default is ClassLALR.
func WithClass(class Class) CompileOption {
	return func(config *compileConfig) {
		config.class = class
	}
}

// WithConflictResolver replaces the default conflict resolution policy
// (shift preferred over reduce, lower production number preferred
// between reduces).
func WithConflictResolver(resolver ConflictResolver) CompileOption {
	return func(config *compileConfig) {
		config.resolver = resolver
	}
}

// Compile generates the parsing table for a grammar. Conflicts never
// make Compile fail; they are resolved by the configured policy and
// recorded in the report.
func Compile(gram *Grammar, opts ...CompileOption) (*spec.CompiledGrammar, *spec.Report, error) {
	config := &compileConfig{
		class:    ClassLALR,
		resolver: DeterministicResolution(),
	}
	for _, opt := range opts {
		opt(config)
	}

	terms, err := gram.symbolTable.terminalTexts()
	if err != nil {
		return nil, nil, err
	}
	nonTerms, err := gram.symbolTable.nonTerminalTexts()
	if err != nil {
		return nil, nil, err
	}

	firstSet, err := genFirstSet(gram.productionSet)
	if err != nil {
		return nil, nil, err
	}

	automaton, err := genLR1Automaton(gram.productionSet, gram.augmentedStartSymbol, firstSet)
	if err != nil {
		return nil, nil, err
	}
	if config.class == ClassLALR {
		automaton, err = genLALR1Automaton(automaton, gram.productionSet)
		if err != nil {
			return nil, nil, err
		}
	}
	tracer().Infof("%v automaton of %v has %v states", config.class, gram.name, len(automaton.states))

	b := &lrTableBuilder{
		automaton:    automaton,
		prods:        gram.productionSet,
		termCount:    len(terms),
		nonTermCount: len(nonTerms),
		symTab:       gram.symbolTable,
		resolver:     config.resolver,
	}
	tab, err := b.build()
	if err != nil {
		return nil, nil, err
	}

	action := make([]int, len(tab.actionTable))
	for i, e := range tab.actionTable {
		action[i] = int(e)
	}
	goTo := make([]int, len(tab.goToTable))
	for i, e := range tab.goToTable {
		goTo[i] = int(e)
	}
	lhsSyms := make([]int, gram.productionSet.len())
	altSymCounts := make([]int, gram.productionSet.len())
	for _, p := range gram.productionSet.all() {
		lhsSyms[p.num.Int()] = p.lhs.num().Int()
		altSymCounts[p.num.Int()] = p.rhsLen
	}

	cgram := &spec.CompiledGrammar{
		Name:  gram.name,
		Class: string(config.class),
		ParsingTable: &spec.ParsingTable{
			Action:                  action,
			GoTo:                    goTo,
			StateCount:              tab.stateCount,
			InitialState:            tab.InitialState.Int(),
			StartProduction:         productionNumAugmented.Int(),
			LHSSymbols:              lhsSyms,
			AlternativeSymbolCounts: altSymCounts,
			Terminals:               terms,
			TerminalCount:           len(terms),
			NonTerminals:            nonTerms,
			NonTerminalCount:        len(nonTerms),
			EOFSymbol:               symbolEOF.num().Int(),
		},
	}

	var report *spec.Report
	if config.isReportingEnabled {
		followSet, err := genFollowSet(gram.productionSet, firstSet)
		if err != nil {
			return nil, nil, err
		}
		report, err = b.genReport(tab, firstSet, followSet)
		if err != nil {
			return nil, nil, err
		}
		report.Class = string(config.class)
	}

	return cgram, report, nil
}

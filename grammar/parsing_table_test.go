package grammar

import "testing"

const arithSrc = `
%name arith
%start expr

expr -> expr add term | term
term -> term mul factor | factor
factor -> lparen expr rparen | id
`

const condSrc = `
%name cond

cond -> cond or cond | cond and cond | sc
`

// lalrRRSrc is conflict-free under the canonical LR(1) construction,
// but merging the look-aheads of the states reached on `a c` and `b c`
// produces reduce/reduce conflicts.
const lalrRRSrc = `
%name rr

s -> a A d | b B d | a B e | b A e
A -> c
B -> c
`

func compileSrc(t *testing.T, src string, opts ...CompileOption) (*Grammar, *ParsingTable, []conflict) {
	t.Helper()

	gram := genGrammar(t, src)
	config := &compileConfig{
		class:    ClassLALR,
		resolver: DeterministicResolution(),
	}
	for _, opt := range opts {
		opt(config)
	}

	fst, err := genFirstSet(gram.productionSet)
	if err != nil {
		t.Fatal(err)
	}
	automaton, err := genLR1Automaton(gram.productionSet, gram.augmentedStartSymbol, fst)
	if err != nil {
		t.Fatal(err)
	}
	if config.class == ClassLALR {
		automaton, err = genLALR1Automaton(automaton, gram.productionSet)
		if err != nil {
			t.Fatal(err)
		}
	}
	terms, err := gram.symbolTable.terminalTexts()
	if err != nil {
		t.Fatal(err)
	}
	nonTerms, err := gram.symbolTable.nonTerminalTexts()
	if err != nil {
		t.Fatal(err)
	}
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
		t.Fatal(err)
	}
	return gram, tab, b.conflicts
}

func TestParsingTableConflictFreeGrammar(t *testing.T) {
	for _, class := range []Class{ClassLR1, ClassLALR} {
		t.Run(string(class), func(t *testing.T) {
			gram, tab, conflicts := compileSrc(t, arithSrc, WithClass(class))

			if len(conflicts) != 0 {
				t.Fatalf("unexpected conflicts: %+v", conflicts)
			}

			// The accept entry lives in the state reached from the
			// initial state on the start symbol, at the EOF column.
			startNT, _ := gram.symbolTable.toSymbol("expr")
			ty, next := tab.getGoTo(tab.InitialState, startNT.num())
			if ty != GoToTypeRegistered {
				t.Fatal("the initial state must have a GOTO on the start symbol")
			}
			act, _, prod := tab.getAction(next, symbolEOF.num())
			if act != ActionTypeAccept || prod != productionNumAugmented {
				t.Fatalf("unexpected action\nwant: %v by production 0\ngot: %v by production %v", ActionTypeAccept, act, prod)
			}

			// Every cell must be empty, a shift to a real state, or a
			// reduce by a real production.
			for state := 0; state < tab.stateCount; state++ {
				for term := 0; term < tab.terminalCount; term++ {
					ty, next, prod := tab.getAction(stateNum(state), symbolNum(term))
					switch ty {
					case ActionTypeShift:
						if next.Int() <= 0 || next.Int() >= tab.stateCount {
							t.Fatalf("a shift action points out of the automaton; state: %v, terminal: %v, next: %v", state, term, next)
						}
					case ActionTypeReduce:
						if _, ok := gram.productionSet.findByNum(prod); !ok {
							t.Fatalf("a reduce action uses an unknown production; state: %v, terminal: %v, production: %v", state, term, prod)
						}
					}
				}
			}
		})
	}
}

func TestParsingTableShiftReduceConflict(t *testing.T) {
	_, _, conflicts := compileSrc(t, condSrc)

	if len(conflicts) == 0 {
		t.Fatal("an ambiguous grammar must yield conflicts")
	}
	for _, con := range conflicts {
		sr, ok := con.(*shiftReduceConflict)
		if !ok {
			t.Fatalf("unexpected conflict type: %T", con)
		}
		if sr.resolvedBy != ResolvedByShift {
			t.Fatalf("a shift/reduce conflict must be resolved in favor of the shift; got: %v", sr.resolvedBy)
		}
	}
}

func TestParsingTableReduceReduceConflict(t *testing.T) {
	_, _, lr1Conflicts := compileSrc(t, lalrRRSrc, WithClass(ClassLR1))
	if len(lr1Conflicts) != 0 {
		t.Fatalf("the canonical construction must be conflict-free for this grammar; got: %+v", lr1Conflicts)
	}

	_, tab, lalrConflicts := compileSrc(t, lalrRRSrc, WithClass(ClassLALR))
	if len(lalrConflicts) != 2 {
		t.Fatalf("unexpected number of conflicts\nwant: %v\ngot: %+v", 2, lalrConflicts)
	}
	for _, con := range lalrConflicts {
		rr, ok := con.(*reduceReduceConflict)
		if !ok {
			t.Fatalf("unexpected conflict type: %T", con)
		}
		if rr.resolvedBy != ResolvedByProdOrder {
			t.Fatalf("a reduce/reduce conflict must be resolved by production order; got: %v", rr.resolvedBy)
		}
		if rr.prodNum1 != 5 || rr.prodNum2 != 6 {
			t.Fatalf("unexpected conflicting productions; got: %v and %v", rr.prodNum1, rr.prodNum2)
		}

		// The earlier production must be adopted.
		act, _, prod := tab.getAction(rr.state, rr.sym.num())
		if act != ActionTypeReduce || prod != 5 {
			t.Fatalf("unexpected adopted action; got: %v by production %v", act, prod)
		}
	}
}

type reducePreference struct{}

func (reducePreference) ResolveShiftReduce(state int, terminal int, nextState int, prod int) (ActionType, ConflictResolutionMethod) {
	return ActionTypeReduce, ResolvedByShift
}

func (reducePreference) ResolveReduceReduce(state int, terminal int, prod1 int, prod2 int) (int, ConflictResolutionMethod) {
	return prod1, ResolvedByProdOrder
}

func TestParsingTableCustomResolver(t *testing.T) {
	_, tab, conflicts := compileSrc(t, condSrc, WithConflictResolver(reducePreference{}))

	if len(conflicts) == 0 {
		t.Fatal("an ambiguous grammar must yield conflicts")
	}
	for _, con := range conflicts {
		sr, ok := con.(*shiftReduceConflict)
		if !ok {
			t.Fatalf("unexpected conflict type: %T", con)
		}
		act, _, _ := tab.getAction(sr.state, sr.sym.num())
		if act != ActionTypeReduce {
			t.Fatalf("the resolver's choice must be adopted; got: %v", act)
		}
	}
}

func TestCompileGeneratesReport(t *testing.T) {
	gram := genGrammar(t, arithSrc)
	cgram, report, err := Compile(gram, EnableReporting())
	if err != nil {
		t.Fatal(err)
	}
	if cgram.Class != string(ClassLALR) {
		t.Errorf("unexpected class\nwant: %v\ngot: %v", ClassLALR, cgram.Class)
	}

	ptab := cgram.ParsingTable
	if len(ptab.Action) != ptab.StateCount*ptab.TerminalCount {
		t.Fatalf("the ACTION table has an unexpected size; states: %v, terminals: %v, size: %v", ptab.StateCount, ptab.TerminalCount, len(ptab.Action))
	}
	if len(ptab.GoTo) != ptab.StateCount*ptab.NonTerminalCount {
		t.Fatalf("the GOTO table has an unexpected size; states: %v, non-terminals: %v, size: %v", ptab.StateCount, ptab.NonTerminalCount, len(ptab.GoTo))
	}
	if ptab.StartProduction != 0 {
		t.Errorf("the start production must be 0; got: %v", ptab.StartProduction)
	}
	if len(ptab.LHSSymbols) != 7 || len(ptab.AlternativeSymbolCounts) != 7 {
		t.Fatalf("unexpected per-production tables; LHS: %v, counts: %v", len(ptab.LHSSymbols), len(ptab.AlternativeSymbolCounts))
	}

	if report == nil {
		t.Fatal("a report was not generated")
	}
	if len(report.States) != ptab.StateCount {
		t.Fatalf("unexpected number of states in the report\nwant: %v\ngot: %v", ptab.StateCount, len(report.States))
	}
	for i, state := range report.States {
		if state.Number != i {
			t.Fatalf("report states must be ordered by state number; index: %v, number: %v", i, state.Number)
		}
		if len(state.SRConflict) != 0 || len(state.RRConflict) != 0 {
			t.Fatalf("unexpected conflicts in the report; state: %v", state.Number)
		}
	}
	if len(report.First) == 0 || len(report.Follow) == 0 {
		t.Fatal("the report must contain FIRST and FOLLOW sets")
	}
}

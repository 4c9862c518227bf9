package grammar

import (
	"fmt"
	"sort"

	"github.com/nihei9/lrgen/spec"
)

type ActionType string

const (
	ActionTypeShift  = ActionType("shift")
	ActionTypeReduce = ActionType("reduce")
	ActionTypeAccept = ActionType("accept")
	ActionTypeError  = ActionType("error")
)

// actionEntry is a cell of the ACTION table. 0 means no action, a
// negative value encodes a shift to state -n, and a positive value
// encodes a reduce by production n-1. Reducing by the augmented
// production is the accept action, so the entry value 1 means accept.
type actionEntry int

const actionEntryEmpty = actionEntry(0)

func newShiftActionEntry(state stateNum) actionEntry {
	return actionEntry(state * -1)
}

func newReduceActionEntry(prod productionNum) actionEntry {
	return actionEntry(prod + 1)
}

func (e actionEntry) isEmpty() bool {
	return e == actionEntryEmpty
}

func (e actionEntry) describe() (ActionType, stateNum, productionNum) {
	if e == actionEntryEmpty {
		return ActionTypeError, stateNumInitial, productionNumAugmented
	}
	if e < 0 {
		return ActionTypeShift, stateNum(e * -1), productionNumAugmented
	}
	prod := productionNum(e - 1)
	if prod == productionNumAugmented {
		return ActionTypeAccept, stateNumInitial, prod
	}
	return ActionTypeReduce, stateNumInitial, prod
}

type GoToType string

const (
	GoToTypeRegistered = GoToType("registered")
	GoToTypeError      = GoToType("error")
)

type goToEntry uint

const goToEntryEmpty = goToEntry(0)

func newGoToEntry(state stateNum) goToEntry {
	return goToEntry(state)
}

func (e goToEntry) describe() (GoToType, stateNum) {
	if e == goToEntryEmpty {
		return GoToTypeError, stateNumInitial
	}
	return GoToTypeRegistered, stateNum(e)
}

type ConflictResolutionMethod int

func (m ConflictResolutionMethod) Int() int {
	return int(m)
}

const (
	ResolvedByShift     ConflictResolutionMethod = 1
	ResolvedByProdOrder ConflictResolutionMethod = 2
)

// ConflictResolver decides which action survives when two actions
// compete for the same ACTION cell. Implementations must be pure: the
// builder may consult them in any order.
type ConflictResolver interface {
	// ResolveShiftReduce returns ActionTypeShift or ActionTypeReduce.
	ResolveShiftReduce(state int, terminal int, nextState int, prod int) (ActionType, ConflictResolutionMethod)

	// ResolveReduceReduce returns the production number to adopt,
	// which must be one of prod1 and prod2.
	ResolveReduceReduce(state int, terminal int, prod1 int, prod2 int) (int, ConflictResolutionMethod)
}

type deterministicResolution struct{}

// DeterministicResolution returns the default policy: a shift always
// beats a reduce, and between two reduces the production declared
// earlier wins.
func DeterministicResolution() ConflictResolver {
	return deterministicResolution{}
}

func (deterministicResolution) ResolveShiftReduce(state int, terminal int, nextState int, prod int) (ActionType, ConflictResolutionMethod) {
	return ActionTypeShift, ResolvedByShift
}

func (deterministicResolution) ResolveReduceReduce(state int, terminal int, prod1 int, prod2 int) (int, ConflictResolutionMethod) {
	if prod1 < prod2 {
		return prod1, ResolvedByProdOrder
	}
	return prod2, ResolvedByProdOrder
}

type conflict interface {
	conflict()
}

type shiftReduceConflict struct {
	state      stateNum
	sym        symbol
	nextState  stateNum
	prodNum    productionNum
	resolvedBy ConflictResolutionMethod
}

func (c *shiftReduceConflict) conflict() {
}

type reduceReduceConflict struct {
	state      stateNum
	sym        symbol
	prodNum1   productionNum
	prodNum2   productionNum
	resolvedBy ConflictResolutionMethod
}

func (c *reduceReduceConflict) conflict() {
}

var (
	_ conflict = &shiftReduceConflict{}
	_ conflict = &reduceReduceConflict{}
)

type ParsingTable struct {
	actionTable      []actionEntry
	goToTable        []goToEntry
	stateCount       int
	terminalCount    int
	nonTerminalCount int

	InitialState stateNum
}

func (t *ParsingTable) getAction(state stateNum, sym symbolNum) (ActionType, stateNum, productionNum) {
	pos := state.Int()*t.terminalCount + sym.Int()
	return t.actionTable[pos].describe()
}

func (t *ParsingTable) getGoTo(state stateNum, sym symbolNum) (GoToType, stateNum) {
	pos := state.Int()*t.nonTerminalCount + sym.Int()
	return t.goToTable[pos].describe()
}

func (t *ParsingTable) readAction(row int, col int) actionEntry {
	return t.actionTable[row*t.terminalCount+col]
}

func (t *ParsingTable) writeAction(row int, col int, act actionEntry) {
	t.actionTable[row*t.terminalCount+col] = act
}

func (t *ParsingTable) writeGoTo(state stateNum, sym symbol, nextState stateNum) {
	pos := state.Int()*t.nonTerminalCount + sym.num().Int()
	t.goToTable[pos] = newGoToEntry(nextState)
}

type lrTableBuilder struct {
	automaton    *lrAutomaton
	prods        *productionSet
	termCount    int
	nonTermCount int
	symTab       *symbolTable
	resolver     ConflictResolver

	conflicts []conflict
}

func (b *lrTableBuilder) build() (*ParsingTable, error) {
	var ptab *ParsingTable
	{
		initialState := b.automaton.states[b.automaton.initialState]
		ptab = &ParsingTable{
			actionTable:      make([]actionEntry, len(b.automaton.states)*b.termCount),
			goToTable:        make([]goToEntry, len(b.automaton.states)*b.nonTermCount),
			stateCount:       len(b.automaton.states),
			terminalCount:    b.termCount,
			nonTerminalCount: b.nonTermCount,
			InitialState:     initialState.num,
		}
	}

	for _, state := range b.automaton.orderedStates() {
		for sym, nextID := range state.next {
			nextState := b.automaton.states[nextID]
			if sym.isTerminal() {
				b.writeShiftAction(ptab, state.num, sym, nextState.num)
			} else {
				ptab.writeGoTo(state.num, sym, nextState.num)
			}
		}

		for _, item := range state.reducible {
			prod, ok := b.prods.findByID(item.prod)
			if !ok {
				return nil, fmt.Errorf("reducible production not found: %v", item.prod)
			}
			b.writeReduceAction(ptab, state.num, item.lookAhead, prod.num)
		}
	}

	return ptab, nil
}

// writeShiftAction writes a shift action to the parsing table. A
// competing reduce action is handed to the resolver, and the conflict
// is recorded either way.
func (b *lrTableBuilder) writeShiftAction(tab *ParsingTable, state stateNum, sym symbol, nextState stateNum) {
	act := tab.readAction(state.Int(), sym.num().Int())
	if !act.isEmpty() {
		ty, _, p := act.describe()
		if ty == ActionTypeReduce || ty == ActionTypeAccept {
			adopted, method := b.resolver.ResolveShiftReduce(state.Int(), sym.num().Int(), nextState.Int(), p.Int())
			b.conflicts = append(b.conflicts, &shiftReduceConflict{
				state:      state,
				sym:        sym,
				nextState:  nextState,
				prodNum:    p,
				resolvedBy: method,
			})
			if adopted == ActionTypeShift {
				tab.writeAction(state.Int(), sym.num().Int(), newShiftActionEntry(nextState))
			}
			return
		}
	}
	tab.writeAction(state.Int(), sym.num().Int(), newShiftActionEntry(nextState))
}

// writeReduceAction writes a reduce action to the parsing table.
// Writing the same reduce twice is not a conflict. Competing shift or
// reduce actions are handed to the resolver and recorded.
func (b *lrTableBuilder) writeReduceAction(tab *ParsingTable, state stateNum, sym symbol, prod productionNum) {
	act := tab.readAction(state.Int(), sym.num().Int())
	if !act.isEmpty() {
		ty, s, p := act.describe()
		switch ty {
		case ActionTypeReduce, ActionTypeAccept:
			if p == prod {
				return
			}

			adopted, method := b.resolver.ResolveReduceReduce(state.Int(), sym.num().Int(), p.Int(), prod.Int())
			b.conflicts = append(b.conflicts, &reduceReduceConflict{
				state:      state,
				sym:        sym,
				prodNum1:   p,
				prodNum2:   prod,
				resolvedBy: method,
			})
			tab.writeAction(state.Int(), sym.num().Int(), newReduceActionEntry(productionNum(adopted)))
		case ActionTypeShift:
			adopted, method := b.resolver.ResolveShiftReduce(state.Int(), sym.num().Int(), s.Int(), prod.Int())
			b.conflicts = append(b.conflicts, &shiftReduceConflict{
				state:      state,
				sym:        sym,
				nextState:  s,
				prodNum:    prod,
				resolvedBy: method,
			})
			if adopted == ActionTypeReduce {
				tab.writeAction(state.Int(), sym.num().Int(), newReduceActionEntry(prod))
			}
		}
		return
	}
	tab.writeAction(state.Int(), sym.num().Int(), newReduceActionEntry(prod))
}

func (b *lrTableBuilder) genReport(tab *ParsingTable, first *firstSet, follow *followSet) (*spec.Report, error) {
	var terms []*spec.Terminal
	{
		termSyms := b.symTab.terminalSymbols()
		terms = make([]*spec.Terminal, len(termSyms)+1)
		for _, sym := range termSyms {
			name, ok := b.symTab.toText(sym)
			if !ok {
				return nil, fmt.Errorf("failed to generate terminals: symbol not found: %v", sym)
			}
			terms[sym.num()] = &spec.Terminal{
				Number: sym.num().Int(),
				Name:   name,
			}
		}
	}

	var nonTerms []*spec.NonTerminal
	{
		nonTermSyms := b.symTab.nonTerminalSymbols()
		nonTerms = make([]*spec.NonTerminal, len(nonTermSyms)+1)
		for _, sym := range nonTermSyms {
			name, ok := b.symTab.toText(sym)
			if !ok {
				return nil, fmt.Errorf("failed to generate non-terminals: symbol not found: %v", sym)
			}
			nonTerms[sym.num()] = &spec.NonTerminal{
				Number: sym.num().Int(),
				Name:   name,
			}
		}
	}

	var prods []*spec.Production
	{
		ps := b.prods.all()
		prods = make([]*spec.Production, len(ps))
		for _, p := range ps {
			rhs := make([]int, len(p.rhs))
			for i, e := range p.rhs {
				if e.isTerminal() {
					rhs[i] = e.num().Int()
				} else {
					rhs[i] = e.num().Int() * -1
				}
			}
			prods[p.num.Int()] = &spec.Production{
				Number: p.num.Int(),
				LHS:    p.lhs.num().Int(),
				RHS:    rhs,
			}
		}
	}

	var states []*spec.State
	{
		srConflicts := map[stateNum][]*shiftReduceConflict{}
		rrConflicts := map[stateNum][]*reduceReduceConflict{}
		for _, con := range b.conflicts {
			switch c := con.(type) {
			case *shiftReduceConflict:
				srConflicts[c.state] = append(srConflicts[c.state], c)
			case *reduceReduceConflict:
				rrConflicts[c.state] = append(rrConflicts[c.state], c)
			}
		}

		states = make([]*spec.State, len(b.automaton.states))
		for _, s := range b.automaton.orderedStates() {
			items := make([]*spec.Item, len(s.items))
			for i, item := range s.items {
				p, ok := b.prods.findByID(item.prod)
				if !ok {
					return nil, fmt.Errorf("failed to generate states: production of item not found: %v", item.prod)
				}
				items[i] = &spec.Item{
					Production: p.num.Int(),
					Dot:        item.dot,
					LookAhead:  item.lookAhead.num().Int(),
				}
			}

			var shift []*spec.Transition
			var reduce []*spec.Reduce
			var goTo []*spec.Transition
			{
			TERMINALS_LOOP:
				for _, t := range b.symTab.terminalSymbols() {
					act, next, prod := tab.getAction(s.num, t.num())
					switch act {
					case ActionTypeShift:
						shift = append(shift, &spec.Transition{
							Symbol: t.num().Int(),
							State:  next.Int(),
						})
					case ActionTypeReduce, ActionTypeAccept:
						for _, r := range reduce {
							if r.Production == prod.Int() {
								r.LookAhead = append(r.LookAhead, t.num().Int())
								continue TERMINALS_LOOP
							}
						}
						reduce = append(reduce, &spec.Reduce{
							LookAhead:  []int{t.num().Int()},
							Production: prod.Int(),
						})
					}
				}

				for _, n := range b.symTab.nonTerminalSymbols() {
					ty, next := tab.getGoTo(s.num, n.num())
					if ty == GoToTypeRegistered {
						goTo = append(goTo, &spec.Transition{
							Symbol: n.num().Int(),
							State:  next.Int(),
						})
					}
				}

				sort.Slice(shift, func(i, j int) bool {
					return shift[i].State < shift[j].State
				})
				sort.Slice(reduce, func(i, j int) bool {
					return reduce[i].Production < reduce[j].Production
				})
				sort.Slice(goTo, func(i, j int) bool {
					return goTo[i].State < goTo[j].State
				})
			}

			sr := []*spec.SRConflict{}
			rr := []*spec.RRConflict{}
			{
				for _, c := range srConflicts[s.num] {
					conflict := &spec.SRConflict{
						Symbol:     c.sym.num().Int(),
						State:      c.nextState.Int(),
						Production: c.prodNum.Int(),
						ResolvedBy: c.resolvedBy.Int(),
					}

					ty, next, p := tab.getAction(s.num, c.sym.num())
					switch ty {
					case ActionTypeShift:
						n := next.Int()
						conflict.AdoptedState = &n
					case ActionTypeReduce, ActionTypeAccept:
						n := p.Int()
						conflict.AdoptedProduction = &n
					}

					sr = append(sr, conflict)
				}

				sort.Slice(sr, func(i, j int) bool {
					return sr[i].Symbol < sr[j].Symbol
				})

				for _, c := range rrConflicts[s.num] {
					_, _, p := tab.getAction(s.num, c.sym.num())
					rr = append(rr, &spec.RRConflict{
						Symbol:            c.sym.num().Int(),
						Production1:       c.prodNum1.Int(),
						Production2:       c.prodNum2.Int(),
						AdoptedProduction: p.Int(),
						ResolvedBy:        c.resolvedBy.Int(),
					})
				}

				sort.Slice(rr, func(i, j int) bool {
					return rr[i].Symbol < rr[j].Symbol
				})
			}

			states[s.num.Int()] = &spec.State{
				Number:     s.num.Int(),
				Items:      items,
				Shift:      shift,
				Reduce:     reduce,
				GoTo:       goTo,
				SRConflict: sr,
				RRConflict: rr,
			}
		}
	}

	firstEntries, followEntries, err := b.genFirstFollowEntries(first, follow)
	if err != nil {
		return nil, err
	}

	return &spec.Report{
		Terminals:    terms,
		NonTerminals: nonTerms,
		Productions:  prods,
		States:       states,
		First:        firstEntries,
		Follow:       followEntries,
	}, nil
}

func (b *lrTableBuilder) genFirstFollowEntries(first *firstSet, follow *followSet) ([]*spec.FirstEntry, []*spec.FollowEntry, error) {
	var firstEntries []*spec.FirstEntry
	var followEntries []*spec.FollowEntry
	for _, sym := range b.symTab.nonTerminalSymbols() {
		name, ok := b.symTab.toText(sym)
		if !ok {
			return nil, nil, fmt.Errorf("symbol not found: %v", sym)
		}

		fe := first.findBySymbol(sym)
		if fe == nil {
			return nil, nil, fmt.Errorf("an entry of FIRST was not found; symbol: %v", name)
		}
		firstTerms, err := b.sortedTerminalTexts(fe.symbols)
		if err != nil {
			return nil, nil, err
		}
		firstEntries = append(firstEntries, &spec.FirstEntry{
			Symbol:    name,
			Terminals: firstTerms,
			Empty:     fe.empty,
		})

		we, err := follow.find(sym)
		if err != nil {
			return nil, nil, err
		}
		followTerms, err := b.sortedTerminalTexts(we.symbols)
		if err != nil {
			return nil, nil, err
		}
		followEntries = append(followEntries, &spec.FollowEntry{
			Symbol:    name,
			Terminals: followTerms,
			EOF:       we.eof,
		})
	}
	return firstEntries, followEntries, nil
}

func (b *lrTableBuilder) sortedTerminalTexts(syms map[symbol]struct{}) ([]string, error) {
	sorted := make([]symbol, 0, len(syms))
	for sym := range syms {
		sorted = append(sorted, sym)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].num() < sorted[j].num()
	})
	texts := make([]string, len(sorted))
	for i, sym := range sorted {
		text, ok := b.symTab.toText(sym)
		if !ok {
			return nil, fmt.Errorf("symbol not found: %v", sym)
		}
		texts[i] = text
	}
	return texts, nil
}

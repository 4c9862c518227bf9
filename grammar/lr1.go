package grammar

import (
	"fmt"
	"sort"
)

type lrAutomaton struct {
	initialState stateID
	states       map[stateID]*lrState
}

// orderedStates returns the states sorted by state number.
func (a *lrAutomaton) orderedStates() []*lrState {
	states := make([]*lrState, 0, len(a.states))
	for _, state := range a.states {
		states = append(states, state)
	}
	sort.Slice(states, func(i, j int) bool {
		return states[i].num < states[j].num
	})
	return states
}

// genLR1Automaton constructs the canonical LR(1) collection. The
// initial state is CLOSURE({start' →・start, <eof>}), and new states
// are discovered breadth-first via GOTO. Two states are identified
// only when their full item sets are equal.
func genLR1Automaton(prods *productionSet, startSym symbol, first *firstSet) (*lrAutomaton, error) {
	if !startSym.isStart() {
		return nil, fmt.Errorf("passed symbol is not a start symbol")
	}

	startProds, ok := prods.findByLHS(startSym)
	if !ok || len(startProds) != 1 {
		return nil, fmt.Errorf("a start symbol must have exactly one production")
	}
	initialItem, err := newLR1Item(startProds[0], 0, symbolEOF)
	if err != nil {
		return nil, err
	}

	initialItems, err := genClosure([]*lrItem{initialItem}, prods, first)
	if err != nil {
		return nil, err
	}
	initialID := genStateID(initialItems)

	automaton := &lrAutomaton{
		initialState: initialID,
		states:       map[stateID]*lrState{},
	}

	num := stateNumInitial
	uncheckedStates := []*lrState{
		{
			id:    initialID,
			num:   num,
			items: initialItems,
		},
	}
	automaton.states[initialID] = uncheckedStates[0]
	num = num.next()

	for len(uncheckedStates) > 0 {
		state := uncheckedStates[0]
		uncheckedStates = uncheckedStates[1:]

		dottedSyms := dottedSymbols(state.items)
		next := map[symbol]stateID{}
		for _, sym := range dottedSyms {
			kernelItems, err := genGoTo(state.items, sym, prods)
			if err != nil {
				return nil, err
			}
			nextItems, err := genClosure(kernelItems, prods, first)
			if err != nil {
				return nil, err
			}
			nextID := genStateID(nextItems)
			if _, known := automaton.states[nextID]; !known {
				nextState := &lrState{
					id:    nextID,
					num:   num,
					items: nextItems,
				}
				num = num.next()
				automaton.states[nextID] = nextState
				uncheckedStates = append(uncheckedStates, nextState)
			}
			next[sym] = nextID
		}

		state.next = next
		state.reducible = reducibleItems(state.items)
	}

	return automaton, nil
}

// genClosure expands an item set with one new item per production of
// each dotted non-terminal and each terminal of FIRST(βa), where β is
// the RHS tail after the dotted symbol and a the source item's
// look-ahead. The result is in canonical order.
func genClosure(kernelItems []*lrItem, prods *productionSet, first *firstSet) ([]*lrItem, error) {
	items := map[lrItemID]*lrItem{}
	unchecked := []*lrItem{}
	for _, item := range kernelItems {
		if _, ok := items[item.id]; ok {
			continue
		}
		items[item.id] = item
		unchecked = append(unchecked, item)
	}

	for len(unchecked) > 0 {
		item := unchecked[0]
		unchecked = unchecked[1:]

		if !item.dottedSymbol.isNonTerminal() {
			continue
		}

		prod, ok := prods.findByID(item.prod)
		if !ok {
			return nil, fmt.Errorf("production not found: %v", item.prod)
		}
		fst, err := first.find(prod, item.dot+1)
		if err != nil {
			return nil, err
		}
		lookAheads := make([]symbol, 0, len(fst.symbols)+1)
		for sym := range fst.symbols {
			lookAheads = append(lookAheads, sym)
		}
		if fst.empty {
			lookAheads = append(lookAheads, item.lookAhead)
		}

		ps, _ := prods.findByLHS(item.dottedSymbol)
		for _, p := range ps {
			for _, la := range lookAheads {
				newItem, err := newLR1Item(p, 0, la)
				if err != nil {
					return nil, err
				}
				if _, ok := items[newItem.id]; ok {
					continue
				}
				items[newItem.id] = newItem
				unchecked = append(unchecked, newItem)
			}
		}
	}

	closure := make([]*lrItem, 0, len(items))
	for _, item := range items {
		closure = append(closure, item)
	}
	sortItems(closure)
	return closure, nil
}

// genGoTo generates the kernel of GOTO(items, sym): every item whose
// dot stands before sym, with the dot advanced past it.
func genGoTo(items []*lrItem, sym symbol, prods *productionSet) ([]*lrItem, error) {
	var kernel []*lrItem
	for _, item := range items {
		if item.dottedSymbol != sym {
			continue
		}
		prod, ok := prods.findByID(item.prod)
		if !ok {
			return nil, fmt.Errorf("production not found: %v", item.prod)
		}
		advanced, err := newLR1Item(prod, item.dot+1, item.lookAhead)
		if err != nil {
			return nil, err
		}
		kernel = append(kernel, advanced)
	}
	if len(kernel) == 0 {
		return nil, fmt.Errorf("GOTO on %v yields no items", sym)
	}
	return kernel, nil
}

// dottedSymbols collects the distinct dotted symbols of an item set in
// symbol order so that state discovery is deterministic.
func dottedSymbols(items []*lrItem) []symbol {
	seen := map[symbol]struct{}{}
	var syms []symbol
	for _, item := range items {
		sym := item.dottedSymbol
		if sym.isNil() {
			continue
		}
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i] < syms[j]
	})
	return syms
}

func reducibleItems(items []*lrItem) []*lrItem {
	var reducible []*lrItem
	for _, item := range items {
		if item.reducible {
			reducible = append(reducible, item)
		}
	}
	return reducible
}

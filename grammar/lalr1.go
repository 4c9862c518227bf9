package grammar

import "fmt"

// genLALR1Automaton collapses the canonical LR(1) collection into an
// LALR(1) automaton by merging states that share a core, unioning
// their look-ahead symbols. Merged states are numbered by the first
// appearance of each core in canonical state order, so the initial
// state keeps number 0.
//
// Merging can introduce reduce/reduce conflicts that the canonical
// collection does not have; the table builder detects them the same
// way as native ones.
func genLALR1Automaton(lr1 *lrAutomaton, prods *productionSet) (*lrAutomaton, error) {
	canonicalStates := lr1.orderedStates()

	// Group states by core, preserving first-appearance order.
	coreIDs := map[stateID]stateID{}
	var coreOrder []stateID
	groups := map[stateID][]*lrState{}
	for _, state := range canonicalStates {
		coreID := genCoreID(state.items)
		coreIDs[state.id] = coreID
		if _, ok := groups[coreID]; !ok {
			coreOrder = append(coreOrder, coreID)
		}
		groups[coreID] = append(groups[coreID], state)
	}

	// Union look-aheads per core and rebuild each merged state's
	// item set.
	mergedByCore := map[stateID]*lrState{}
	oldToMerged := map[stateID]stateID{}
	num := stateNumInitial
	for _, coreID := range coreOrder {
		group := groups[coreID]

		lookAheads := map[lrItemCoreID]map[symbol]struct{}{}
		itemProds := map[lrItemCoreID]*lrItem{}
		for _, state := range group {
			for _, item := range state.items {
				las, ok := lookAheads[item.core]
				if !ok {
					las = map[symbol]struct{}{}
					lookAheads[item.core] = las
					itemProds[item.core] = item
				}
				las[item.lookAhead] = struct{}{}
			}
		}

		var items []*lrItem
		for itemCore, las := range lookAheads {
			src := itemProds[itemCore]
			prod, ok := prods.findByID(src.prod)
			if !ok {
				return nil, fmt.Errorf("production not found: %v", src.prod)
			}
			for la := range las {
				item, err := newLR1Item(prod, src.dot, la)
				if err != nil {
					return nil, err
				}
				items = append(items, item)
			}
		}
		sortItems(items)

		merged := &lrState{
			id:    genStateID(items),
			num:   num,
			items: items,
		}
		num = num.next()
		mergedByCore[coreID] = merged
		for _, state := range group {
			oldToMerged[state.id] = merged.id
		}
	}

	mergedByID := map[stateID]*lrState{}
	for _, merged := range mergedByCore {
		mergedByID[merged.id] = merged
	}

	// Rewrite transitions through the old-to-merged map. Members of a
	// group agree on their targets' cores, so any member's next map
	// serves as the source.
	for _, coreID := range coreOrder {
		group := groups[coreID]
		merged := mergedByCore[coreID]
		next := map[symbol]stateID{}
		for sym, oldNext := range group[0].next {
			mergedNext, ok := oldToMerged[oldNext]
			if !ok {
				return nil, fmt.Errorf("transition target was not merged: %v", oldNext)
			}
			next[sym] = mergedNext
		}
		merged.next = next
		merged.reducible = reducibleItems(merged.items)
	}

	initial, ok := oldToMerged[lr1.initialState]
	if !ok {
		return nil, fmt.Errorf("initial state was not merged")
	}
	tracer().Debugf("merged %v canonical states into %v LALR states", len(canonicalStates), len(mergedByID))

	return &lrAutomaton{
		initialState: initial,
		states:       mergedByID,
	}, nil
}

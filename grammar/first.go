package grammar

import "fmt"

type firstEntry struct {
	symbols map[symbol]struct{}
	empty   bool
}

func newFirstEntry() *firstEntry {
	return &firstEntry{
		symbols: map[symbol]struct{}{},
		empty:   false,
	}
}

func (e *firstEntry) add(sym symbol) bool {
	if _, ok := e.symbols[sym]; ok {
		return false
	}
	e.symbols[sym] = struct{}{}
	return true
}

func (e *firstEntry) addEmpty() bool {
	if !e.empty {
		e.empty = true
		return true
	}
	return false
}

func (e *firstEntry) mergeExceptEmpty(target *firstEntry) bool {
	if target == nil {
		return false
	}
	changed := false
	for sym := range target.symbols {
		added := e.add(sym)
		if added {
			changed = true
		}
	}
	return changed
}

type firstSet struct {
	set map[symbol]*firstEntry
}

func newFirstSet(prods *productionSet) *firstSet {
	fst := &firstSet{
		set: map[symbol]*firstEntry{},
	}
	for _, prod := range prods.all() {
		if _, ok := fst.set[prod.lhs]; ok {
			continue
		}
		fst.set[prod.lhs] = newFirstEntry()
	}

	return fst
}

// find returns the FIRST set of the suffix of prod's RHS starting at
// head. The empty flag is set when every symbol of the suffix can
// derive ε, including when the suffix itself is empty.
func (fst *firstSet) find(prod *production, head int) (*firstEntry, error) {
	entry := newFirstEntry()
	if prod.rhsLen <= head {
		entry.addEmpty()
		return entry, nil
	}
	for _, sym := range prod.rhs[head:] {
		if sym.isTerminal() {
			entry.add(sym)
			return entry, nil
		}

		e := fst.findBySymbol(sym)
		if e == nil {
			return nil, fmt.Errorf("an entry of FIRST was not found; symbol: %v", sym)
		}
		for s := range e.symbols {
			entry.add(s)
		}
		if !e.empty {
			return entry, nil
		}
	}
	entry.addEmpty()
	return entry, nil
}

func (fst *firstSet) findBySymbol(sym symbol) *firstEntry {
	return fst.set[sym]
}

// genFirstSet computes FIRST for every non-terminal by iterating over
// all productions until no entry grows.
func genFirstSet(prods *productionSet) (*firstSet, error) {
	fst := newFirstSet(prods)
	for {
		more := false
		for _, prod := range prods.all() {
			e := fst.findBySymbol(prod.lhs)
			changed, err := genProdFirstEntry(fst, e, prod)
			if err != nil {
				return nil, err
			}
			if changed {
				more = true
			}
		}
		if !more {
			break
		}
	}
	return fst, nil
}

func genProdFirstEntry(fst *firstSet, acc *firstEntry, prod *production) (bool, error) {
	if prod.isEmpty() {
		return acc.addEmpty(), nil
	}

	// Collect the change flag over every set operation. Returning only
	// the last one can end a pass early and leave FIRST short of the
	// fixpoint.
	changed := false
	for _, sym := range prod.rhs {
		if sym.isTerminal() {
			if acc.add(sym) {
				changed = true
			}
			return changed, nil
		}

		e := fst.findBySymbol(sym)
		if acc.mergeExceptEmpty(e) {
			changed = true
		}
		if e == nil || !e.empty {
			return changed, nil
		}
	}
	if acc.addEmpty() {
		changed = true
	}
	return changed, nil
}

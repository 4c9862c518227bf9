package grammar

import "fmt"

type followEntry struct {
	symbols map[symbol]struct{}
	eof     bool
}

func newFollowEntry() *followEntry {
	return &followEntry{
		symbols: map[symbol]struct{}{},
		eof:     false,
	}
}

func (e *followEntry) add(sym symbol) bool {
	if _, ok := e.symbols[sym]; ok {
		return false
	}
	e.symbols[sym] = struct{}{}
	return true
}

func (e *followEntry) addEOF() bool {
	if !e.eof {
		e.eof = true
		return true
	}
	return false
}

func (e *followEntry) merge(fst *firstEntry, flw *followEntry) bool {
	changed := false

	if fst != nil {
		for sym := range fst.symbols {
			added := e.add(sym)
			if added {
				changed = true
			}
		}
	}

	if flw != nil {
		for sym := range flw.symbols {
			added := e.add(sym)
			if added {
				changed = true
			}
		}
		if flw.eof {
			added := e.addEOF()
			if added {
				changed = true
			}
		}
	}

	return changed
}

type followSet struct {
	set map[symbol]*followEntry
}

func newFollowSet(prods *productionSet) *followSet {
	flw := &followSet{
		set: map[symbol]*followEntry{},
	}
	for _, prod := range prods.all() {
		if _, ok := flw.set[prod.lhs]; ok {
			continue
		}
		flw.set[prod.lhs] = newFollowEntry()
	}
	return flw
}

func (flw *followSet) find(sym symbol) (*followEntry, error) {
	e, ok := flw.set[sym]
	if !ok {
		return nil, fmt.Errorf("an entry of FOLLOW was not found; symbol: %v", sym)
	}
	return e, nil
}

// genFollowSet computes FOLLOW for every non-terminal. FOLLOW is not
// used to build the tables; it appears only in the report.
func genFollowSet(prods *productionSet, first *firstSet) (*followSet, error) {
	flw := newFollowSet(prods)
	for {
		more := false
		for _, prod := range prods.all() {
			if prod.lhs.isStart() {
				e, err := flw.find(prod.lhs)
				if err != nil {
					return nil, err
				}
				if e.addEOF() {
					more = true
				}
			}
			for i, sym := range prod.rhs {
				if sym.isTerminal() {
					continue
				}
				e, err := flw.find(sym)
				if err != nil {
					return nil, err
				}
				fst, err := first.find(prod, i+1)
				if err != nil {
					return nil, err
				}
				if e.merge(fst, nil) {
					more = true
				}
				if fst.empty {
					lhsFlw, err := flw.find(prod.lhs)
					if err != nil {
						return nil, err
					}
					if e.merge(nil, lhsFlw) {
						more = true
					}
				}
			}
		}
		if !more {
			break
		}
	}

	return flw, nil
}

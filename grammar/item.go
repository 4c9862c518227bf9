package grammar

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"
)

type lrItemID [32]byte

func (id lrItemID) String() string {
	return fmt.Sprintf("%x", id.num())
}

func (id lrItemID) num() uint32 {
	return binary.LittleEndian.Uint32(id[:])
}

// lrItemCoreID identifies an item ignoring its look-ahead symbol.
// States whose item sets share the same set of core IDs are merged by
// the LALR construction.
type lrItemCoreID [32]byte

// lrItem is an LR(1) item: a production, a dot position, and a single
// look-ahead terminal.
//
// E → E + T
//
// Dot | Dotted Symbol | Item
// ----+---------------+------------
// 0   | E             | E →・E + T
// 1   | +             | E → E・+ T
// 2   | T             | E → E +・T
// 3   | Nil           | E → E + T・
type lrItem struct {
	id   lrItemID
	core lrItemCoreID
	prod productionID

	// prodNum duplicates the production's number so that items can be
	// ordered without a lookup into the production set.
	prodNum productionNum

	dot          int
	dottedSymbol symbol

	// When reducible is true, the item looks like E → E + T・, and
	// the parser may reduce by the production when the look-ahead
	// symbol appears as the next input symbol.
	reducible bool

	// lookAhead is a terminal symbol, or the EOF symbol.
	lookAhead symbol
}

func newLR1Item(prod *production, dot int, lookAhead symbol) (*lrItem, error) {
	if prod == nil {
		return nil, fmt.Errorf("production must be non-nil")
	}

	if dot < 0 || dot > prod.rhsLen {
		return nil, fmt.Errorf("dot must be between 0 and %v", prod.rhsLen)
	}

	var core lrItemCoreID
	{
		b := []byte{}
		b = append(b, prod.id[:]...)
		bDot := make([]byte, 8)
		binary.LittleEndian.PutUint64(bDot, uint64(dot))
		b = append(b, bDot...)
		core = sha256.Sum256(b)
	}

	var id lrItemID
	{
		b := []byte{}
		b = append(b, core[:]...)
		bLA := make([]byte, 2)
		binary.LittleEndian.PutUint16(bLA, uint16(lookAhead))
		b = append(b, bLA...)
		id = sha256.Sum256(b)
	}

	dottedSymbol := symbolNil
	if dot < prod.rhsLen {
		dottedSymbol = prod.rhs[dot]
	}

	item := &lrItem{
		id:           id,
		core:         core,
		prod:         prod.id,
		prodNum:      prod.num,
		dot:          dot,
		dottedSymbol: dottedSymbol,
		reducible:    dot == prod.rhsLen,
		lookAhead:    lookAhead,
	}

	return item, nil
}

// sortItems puts an item set into its canonical order: by production
// number, then dot position, then look-ahead symbol.
func sortItems(items []*lrItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].prodNum != items[j].prodNum {
			return items[i].prodNum < items[j].prodNum
		}
		if items[i].dot != items[j].dot {
			return items[i].dot < items[j].dot
		}
		return items[i].lookAhead.num() < items[j].lookAhead.num()
	})
}

type stateID [32]byte

func (id stateID) String() string {
	return fmt.Sprintf("%x", binary.LittleEndian.Uint32(id[:]))
}

// genStateID fingerprints a canonically sorted item set. Two states
// are the same LR(1) state iff their fingerprints match.
func genStateID(items []*lrItem) stateID {
	b := []byte{}
	for _, item := range items {
		b = append(b, item.id[:]...)
	}
	return sha256.Sum256(b)
}

// genCoreID fingerprints the look-ahead-stripped item set. Two states
// with equal core IDs collapse into one LALR(1) state.
func genCoreID(items []*lrItem) stateID {
	cores := make([]lrItemCoreID, 0, len(items))
	seen := map[lrItemCoreID]struct{}{}
	for _, item := range items {
		if _, ok := seen[item.core]; ok {
			continue
		}
		seen[item.core] = struct{}{}
		cores = append(cores, item.core)
	}
	// Order by the full fingerprint so the core ID never depends on
	// how a prefix collision happens to tie-break.
	sort.Slice(cores, func(i, j int) bool {
		return bytes.Compare(cores[i][:], cores[j][:]) < 0
	})
	b := []byte{}
	for _, core := range cores {
		b = append(b, core[:]...)
	}
	return sha256.Sum256(b)
}

type stateNum int

const stateNumInitial = stateNum(0)

func (n stateNum) Int() int {
	return int(n)
}

func (n stateNum) String() string {
	return strconv.Itoa(int(n))
}

func (n stateNum) next() stateNum {
	return stateNum(n + 1)
}

type lrState struct {
	id  stateID
	num stateNum

	// items is the full closure in canonical order, not just the
	// kernel. The LALR merge needs the closure items' look-aheads.
	items []*lrItem

	next      map[symbol]stateID
	reducible []*lrItem
}

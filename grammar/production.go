package grammar

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

type productionID [32]byte

func (id productionID) String() string {
	return hex.EncodeToString(id[:])
}

func genProductionID(lhs symbol, rhs []symbol) productionID {
	seq := lhs.byte()
	for _, sym := range rhs {
		seq = append(seq, sym.byte()...)
	}
	return productionID(sha256.Sum256(seq))
}

// productionNum is a production's declaration number. The augmented
// production is always 0 and precedes every user production, which
// makes it the natural tie-break in reduce/reduce conflicts.
type productionNum uint16

const (
	productionNumAugmented = productionNum(0)
	productionNumMin       = productionNum(1)
)

func (n productionNum) Int() int {
	return int(n)
}

type production struct {
	id     productionID
	num    productionNum
	lhs    symbol
	rhs    []symbol
	rhsLen int
}

func newProduction(lhs symbol, rhs []symbol) (*production, error) {
	if lhs.isNil() {
		return nil, fmt.Errorf("LHS must be a non-nil symbol; LHS: %v, RHS: %v", lhs, rhs)
	}
	for _, sym := range rhs {
		if sym.isNil() {
			return nil, fmt.Errorf("a symbol of RHS must be a non-nil symbol; LHS: %v, RHS: %v", lhs, rhs)
		}
	}

	return &production{
		id:     genProductionID(lhs, rhs),
		lhs:    lhs,
		rhs:    rhs,
		rhsLen: len(rhs),
	}, nil
}

func (p *production) isEmpty() bool {
	return p.rhsLen == 0
}

func (p *production) isAugmented() bool {
	return p.num == productionNumAugmented
}

// productionSet numbers productions in append order. The grammar
// builder appends the augmented production first, so it always takes
// the number 0.
type productionSet struct {
	lhs2Prods map[symbol][]*production
	id2Prod   map[productionID]*production
	prods     []*production
}

func newProductionSet() *productionSet {
	return &productionSet{
		lhs2Prods: map[symbol][]*production{},
		id2Prod:   map[productionID]*production{},
	}
}

func (ps *productionSet) append(prod *production) bool {
	if _, ok := ps.id2Prod[prod.id]; ok {
		return false
	}

	prod.num = productionNum(len(ps.prods))
	ps.prods = append(ps.prods, prod)
	ps.lhs2Prods[prod.lhs] = append(ps.lhs2Prods[prod.lhs], prod)
	ps.id2Prod[prod.id] = prod

	return true
}

func (ps *productionSet) findByID(id productionID) (*production, bool) {
	prod, ok := ps.id2Prod[id]
	return prod, ok
}

func (ps *productionSet) findByLHS(lhs symbol) ([]*production, bool) {
	if lhs.isNil() {
		return nil, false
	}
	prods, ok := ps.lhs2Prods[lhs]
	return prods, ok
}

func (ps *productionSet) findByNum(num productionNum) (*production, bool) {
	if num.Int() >= len(ps.prods) {
		return nil, false
	}
	return ps.prods[num.Int()], true
}

// all returns every production in declaration order.
func (ps *productionSet) all() []*production {
	return ps.prods
}

func (ps *productionSet) len() int {
	return len(ps.prods)
}

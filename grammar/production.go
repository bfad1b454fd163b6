package grammar

import (
	"fmt"

	"github.com/nihei9/tabula/grammar/symbol"
)

// productionKey identifies a production by its content. Every symbol encodes to exactly two
// bytes, so the encoding of the LHS followed by the body is unique per production.
type productionKey string

func keyOf(lhs symbol.Symbol, rhs []symbol.Symbol) productionKey {
	b := make([]byte, 0, 2*(len(rhs)+1))
	b = append(b, lhs.Byte()...)
	for _, sym := range rhs {
		b = append(b, sym.Byte()...)
	}
	return productionKey(b)
}

// productionNum is the index of a production in its set. Number 1 is reserved for the augmented
// start production; the others follow declaration order.
type productionNum uint16

const (
	productionNumNil   = productionNum(0)
	productionNumStart = productionNum(1)
	productionNumMin   = productionNum(2)
	productionNumMax   = productionNum(0xffff)
)

func (n productionNum) Int() int {
	return int(n)
}

type production struct {
	key    productionKey
	num    productionNum
	lhs    symbol.Symbol
	rhs    []symbol.Symbol
	rhsLen int
}

func newProduction(lhs symbol.Symbol, rhs []symbol.Symbol) (*production, error) {
	if !lhs.IsNonTerminal() {
		return nil, &GrammarError{Cause: ErrInvalidLHS, Detail: lhs.String()}
	}
	for _, sym := range rhs {
		if sym.IsNil() {
			return nil, &GrammarError{Cause: ErrUndefinedSymbol, Detail: fmt.Sprintf("RHS of %v", lhs)}
		}
	}

	return &production{
		key:    keyOf(lhs, rhs),
		lhs:    lhs,
		rhs:    rhs,
		rhsLen: len(rhs),
	}, nil
}

func (p *production) isEmpty() bool {
	return p.rhsLen == 0
}

// productionSet is the arena owning all productions. Items and states refer to productions by
// number only.
type productionSet struct {
	byLHS map[symbol.Symbol][]*production
	byKey map[productionKey]*production
	byNum []*production
	next  productionNum
}

func newProductionSet() *productionSet {
	return &productionSet{
		byLHS: map[symbol.Symbol][]*production{},
		byKey: map[productionKey]*production{},
		byNum: []*production{
			nil, // Nil
			nil, // Start
		},
		next: productionNumMin,
	}
}

// add numbers prod and stores it. A production of the augmented start symbol takes number 1.
func (ps *productionSet) add(prod *production) error {
	if _, ok := ps.byKey[prod.key]; ok {
		return &GrammarError{Cause: ErrDuplicateProduction}
	}
	if prod.lhs.IsStart() {
		if ps.byNum[productionNumStart] != nil {
			return &GrammarError{Cause: ErrDuplicateProduction, Detail: "augmented start production"}
		}
		prod.num = productionNumStart
		ps.byNum[productionNumStart] = prod
	} else {
		if ps.next == productionNumMax {
			return &GrammarError{Cause: ErrTooManyProductions, Detail: fmt.Sprintf("limit: %v", productionNumMax-1)}
		}
		prod.num = ps.next
		ps.next++
		ps.byNum = append(ps.byNum, prod)
	}
	ps.byLHS[prod.lhs] = append(ps.byLHS[prod.lhs], prod)
	ps.byKey[prod.key] = prod
	return nil
}

func (ps *productionSet) findByKey(key productionKey) (*production, bool) {
	prod, ok := ps.byKey[key]
	return prod, ok
}

func (ps *productionSet) findByNum(num productionNum) (*production, bool) {
	if num == productionNumNil || num.Int() >= len(ps.byNum) {
		return nil, false
	}
	prod := ps.byNum[num]
	return prod, prod != nil
}

func (ps *productionSet) findByLHS(lhs symbol.Symbol) ([]*production, bool) {
	prods, ok := ps.byLHS[lhs]
	return prods, ok
}

// all returns the productions in number order.
func (ps *productionSet) all() []*production {
	prods := make([]*production, 0, len(ps.byKey))
	for _, p := range ps.byNum {
		if p != nil {
			prods = append(prods, p)
		}
	}
	return prods
}

func (ps *productionSet) count() int {
	return len(ps.byKey)
}

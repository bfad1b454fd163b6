package grammar

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/cnf/structhash"
	"github.com/nihei9/tabula/grammar/symbol"
)

// Item is an LR(0) item: a production number and a dot position in [0, len(RHS)].
type Item struct {
	Production int
	Dot        int
}

// ItemSet is a deduplicated set of items. Two item sets are equal when they contain the same
// (production, dot) pairs, regardless of the order the items were added in.
type ItemSet struct {
	items []Item
	key   string
}

type itemSetKey struct {
	Items []Item
}

func NewItemSet(items ...Item) ItemSet {
	m := map[Item]struct{}{}
	sorted := make([]Item, 0, len(items))
	for _, item := range items {
		if _, ok := m[item]; ok {
			continue
		}
		m[item] = struct{}{}
		sorted = append(sorted, item)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Production != sorted[j].Production {
			return sorted[i].Production < sorted[j].Production
		}
		return sorted[i].Dot < sorted[j].Dot
	})

	return ItemSet{
		items: sorted,
		key:   fmt.Sprintf("%x", structhash.Sha1(itemSetKey{Items: sorted}, 1)),
	}
}

// Items returns the items sorted by production number and then by dot position.
func (s ItemSet) Items() []Item {
	return append([]Item{}, s.items...)
}

func (s ItemSet) Len() int {
	return len(s.items)
}

func (s ItemSet) IsEmpty() bool {
	return len(s.items) == 0
}

// Key returns a structural key of the set. Equal sets have equal keys.
func (s ItemSet) Key() string {
	return s.key
}

func (s ItemSet) Equal(t ItemSet) bool {
	return s.key == t.key
}

func (s ItemSet) Contains(item Item) bool {
	i := sort.Search(len(s.items), func(i int) bool {
		it := s.items[i]
		if it.Production != item.Production {
			return it.Production >= item.Production
		}
		return it.Dot >= item.Dot
	})
	return i < len(s.items) && s.items[i] == item
}

type lrItemID struct {
	prod productionNum
	dot  int
}

func (id lrItemID) String() string {
	return fmt.Sprintf("%v.%v", id.prod, id.dot)
}

type lookAhead struct {
	symbols map[symbol.Symbol]struct{}

	// When propagation is true, an item propagates look-ahead symbols to other items.
	propagation bool
}

func (la *lookAhead) add(sym symbol.Symbol) bool {
	if la.symbols == nil {
		la.symbols = map[symbol.Symbol]struct{}{}
	}
	if _, ok := la.symbols[sym]; ok {
		return false
	}
	la.symbols[sym] = struct{}{}
	return true
}

// sorted returns the look-ahead symbols in number order.
func (la *lookAhead) sorted() []symbol.Symbol {
	syms := make([]symbol.Symbol, 0, len(la.symbols))
	for sym := range la.symbols {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i].Num() < syms[j].Num()
	})
	return syms
}

type lrItem struct {
	id   lrItemID
	prod productionNum

	// E → E + T
	//
	// Dot | Dotted Symbol | Item
	// ----+---------------+------------
	// 0   | E             | E →・E + T
	// 1   | +             | E → E・+ T
	// 2   | T             | E → E +・T
	// 3   | Nil           | E → E + T・
	dot          int
	dottedSymbol symbol.Symbol

	// When initial is true, the LHS of the production is the augmented start symbol and dot is 0.
	// It looks like S' →・S.
	initial bool

	// When reducible is true, the item looks like E → E + T・.
	reducible bool

	// When kernel is true, the item is kernel item.
	kernel bool

	// lookAhead stores look-ahead symbols, and they are terminal symbols.
	// The item is reducible only when the look-ahead symbols appear as the next input symbol.
	lookAhead lookAhead
}

func newLR0Item(prod *production, dot int) (*lrItem, error) {
	if prod == nil {
		return nil, fmt.Errorf("production must be non-nil")
	}

	if dot < 0 || dot > prod.rhsLen {
		return nil, &GrammarError{
			Cause:  ErrDotOutOfRange,
			Detail: fmt.Sprintf("dot must be between 0 and %v; got: %v", prod.rhsLen, dot),
		}
	}

	dottedSymbol := symbol.SymbolNil
	if dot < prod.rhsLen {
		dottedSymbol = prod.rhs[dot]
	}

	initial := false
	if prod.lhs.IsStart() && dot == 0 {
		initial = true
	}

	reducible := false
	if dot == prod.rhsLen {
		reducible = true
	}

	kernel := false
	if initial || dot > 0 {
		kernel = true
	}

	return &lrItem{
		id: lrItemID{
			prod: prod.num,
			dot:  dot,
		},
		prod:         prod.num,
		dot:          dot,
		dottedSymbol: dottedSymbol,
		initial:      initial,
		reducible:    reducible,
		kernel:       kernel,
	}, nil
}

func (i *lrItem) item() Item {
	return Item{
		Production: i.prod.Int(),
		Dot:        i.dot,
	}
}

func resolveItem(prods *productionSet, item Item) (*lrItem, error) {
	if item.Production <= 0 {
		return nil, &GrammarError{Cause: ErrUnknownProduction, Detail: strconv.Itoa(item.Production)}
	}
	prod, ok := prods.findByNum(productionNum(item.Production))
	if !ok {
		return nil, &GrammarError{Cause: ErrUnknownProduction, Detail: strconv.Itoa(item.Production)}
	}
	return newLR0Item(prod, item.Dot)
}

// Closure returns the closure of an item set: for every item whose dotted symbol is a
// non-terminal N, the items N →・α for all productions of N are added. Each non-terminal is
// expanded at most once per call, so the computation stops after at most one expansion per
// non-terminal. Closure is idempotent.
func (g *Grammar) Closure(set ItemSet) (ItemSet, error) {
	return genLR0Closure(set, g.productionSet)
}

// Goto advances the dot past sym in every item of the set whose dotted symbol is sym. The result
// is not closed and is empty when no item matches.
func (g *Grammar) Goto(set ItemSet, sym symbol.Symbol) (ItemSet, error) {
	return genGoTo(set, sym, g.productionSet)
}

func genLR0Closure(set ItemSet, prods *productionSet) (ItemSet, error) {
	items := make([]Item, 0, set.Len())
	expanded := map[symbol.Symbol]struct{}{}
	unchecked := []*lrItem{}
	for _, item := range set.items {
		it, err := resolveItem(prods, item)
		if err != nil {
			return ItemSet{}, err
		}
		items = append(items, item)
		unchecked = append(unchecked, it)
	}
	for len(unchecked) > 0 {
		nextUnchecked := []*lrItem{}
		for _, item := range unchecked {
			if !item.dottedSymbol.IsNonTerminal() {
				continue
			}
			if _, ok := expanded[item.dottedSymbol]; ok {
				continue
			}
			expanded[item.dottedSymbol] = struct{}{}

			ps, _ := prods.findByLHS(item.dottedSymbol)
			for _, prod := range ps {
				it, err := newLR0Item(prod, 0)
				if err != nil {
					return ItemSet{}, err
				}
				items = append(items, it.item())
				nextUnchecked = append(nextUnchecked, it)
			}
		}
		unchecked = nextUnchecked
	}

	return NewItemSet(items...), nil
}

func genGoTo(set ItemSet, sym symbol.Symbol, prods *productionSet) (ItemSet, error) {
	var items []Item
	for _, item := range set.items {
		it, err := resolveItem(prods, item)
		if err != nil {
			return ItemSet{}, err
		}
		if it.dottedSymbol.IsNil() || it.dottedSymbol != sym {
			continue
		}
		items = append(items, Item{
			Production: item.Production,
			Dot:        item.Dot + 1,
		})
	}
	return NewItemSet(items...), nil
}

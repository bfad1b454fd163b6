package grammar

import (
	"fmt"

	"github.com/nihei9/tabula/grammar/symbol"
)

type stateAndLRItem struct {
	state  stateNum
	itemID lrItemID
}

type propagation struct {
	src  *stateAndLRItem
	dest []*stateAndLRItem
}

type lalr1Automaton struct {
	*lr0Automaton
}

// genLALR1Automaton attaches LALR(1) look-ahead symbols to the kernel items of an LR(0)
// automaton. For every kernel item, the closure of the item with a dummy look-ahead shows which
// look-ahead symbols are generated spontaneously in the goto states and which ones propagate from
// the kernel item. Propagation then repeats until no item gains a symbol.
func genLALR1Automaton(lr0 *lr0Automaton, prods *productionSet, first *firstSet) (*lalr1Automaton, error) {
	// Set the look-ahead symbol <EOF> to the initial item: [S' → ・S, $]
	{
		iniState := lr0.states[lr0.initialState]
		var iniItem *lrItem
		for _, item := range iniState.kernel {
			if item.initial {
				iniItem = item
				break
			}
		}
		if iniItem == nil {
			return nil, fmt.Errorf("initial item not found")
		}
		iniItem.lookAhead.add(symbol.SymbolEOF)
	}

	var props []*propagation
	for _, state := range lr0.states {
		for _, kItem := range state.kernel {
			src := *kItem
			src.lookAhead = lookAhead{
				propagation: true,
			}
			items, err := genLALR1Closure(&src, prods, first)
			if err != nil {
				return nil, err
			}

			var propDests []*stateAndLRItem
			for _, item := range items {
				if item.reducible {
					p, ok := prods.findByNum(item.prod)
					if !ok {
						return nil, fmt.Errorf("production not found: %v", item.prod)
					}
					if p.isEmpty() {
						return nil, &UnsupportedError{Cause: ErrNullableUnsupported, Symbol: p.lhs.String()}
					}
					continue
				}

				nextState, ok := state.next[item.dottedSymbol]
				if !ok {
					return nil, fmt.Errorf("transition not found; state: %v, symbol: %v", state.num, item.dottedSymbol)
				}
				nextItemID := lrItemID{
					prod: item.prod,
					dot:  item.dot + 1,
				}

				if item.lookAhead.propagation {
					propDests = append(propDests, &stateAndLRItem{
						state:  nextState,
						itemID: nextItemID,
					})
					continue
				}

				nextItem, ok := lr0.states[nextState].findItem(nextItemID)
				if !ok {
					return nil, fmt.Errorf("item not found: %v", nextItemID)
				}
				for a := range item.lookAhead.symbols {
					nextItem.lookAhead.add(a)
				}
			}
			if len(propDests) == 0 {
				continue
			}

			props = append(props, &propagation{
				src: &stateAndLRItem{
					state:  state.num,
					itemID: kItem.id,
				},
				dest: propDests,
			})
		}
	}

	err := propagateLookAhead(lr0, props)
	if err != nil {
		return nil, fmt.Errorf("failed to propagate look-ahead symbols: %v", err)
	}

	return &lalr1Automaton{
		lr0Automaton: lr0,
	}, nil
}

func genLALR1Closure(srcItem *lrItem, prods *productionSet, first *firstSet) ([]*lrItem, error) {
	items := []*lrItem{}
	knownItems := map[lrItemID]map[symbol.Symbol]struct{}{}
	knownItemsProp := map[lrItemID]struct{}{}
	uncheckedItems := []*lrItem{}
	items = append(items, srcItem)
	uncheckedItems = append(uncheckedItems, srcItem)
	for len(uncheckedItems) > 0 {
		nextUncheckedItems := []*lrItem{}
		for _, item := range uncheckedItems {
			if !item.dottedSymbol.IsNonTerminal() {
				continue
			}

			p, ok := prods.findByNum(item.prod)
			if !ok {
				return nil, fmt.Errorf("production not found: %v", item.prod)
			}

			fst, err := first.find(p, item.dot+1)
			if err != nil {
				return nil, err
			}
			lookAhead := fst.symbols.symbols()
			if fst.empty {
				for a := range item.lookAhead.symbols {
					lookAhead = append(lookAhead, a)
				}
			}

			ps, _ := prods.findByLHS(item.dottedSymbol)
			for _, prod := range ps {
				for _, a := range lookAhead {
					newItem, err := newLR0Item(prod, 0)
					if err != nil {
						return nil, err
					}
					if syms, exist := knownItems[newItem.id]; exist {
						if _, exist := syms[a]; exist {
							continue
						}
					}

					newItem.lookAhead.add(a)

					items = append(items, newItem)
					if knownItems[newItem.id] == nil {
						knownItems[newItem.id] = map[symbol.Symbol]struct{}{}
					}
					knownItems[newItem.id][a] = struct{}{}
					nextUncheckedItems = append(nextUncheckedItems, newItem)
				}

				if fst.empty && item.lookAhead.propagation {
					newItem, err := newLR0Item(prod, 0)
					if err != nil {
						return nil, err
					}
					if _, exist := knownItemsProp[newItem.id]; exist {
						continue
					}

					newItem.lookAhead.propagation = true

					items = append(items, newItem)
					knownItemsProp[newItem.id] = struct{}{}
					nextUncheckedItems = append(nextUncheckedItems, newItem)
				}
			}
		}
		uncheckedItems = nextUncheckedItems
	}

	return items, nil
}

func propagateLookAhead(lr0 *lr0Automaton, props []*propagation) error {
	for {
		changed := false
		for _, prop := range props {
			if prop.src.state.Int() >= len(lr0.states) {
				return fmt.Errorf("source state not found: %v", prop.src.state)
			}
			srcItem, ok := lr0.states[prop.src.state].findItem(prop.src.itemID)
			if !ok {
				return fmt.Errorf("source item not found: %v", prop.src.itemID)
			}

			for _, dest := range prop.dest {
				if dest.state.Int() >= len(lr0.states) {
					return fmt.Errorf("destination state not found: %v", dest.state)
				}
				destItem, ok := lr0.states[dest.state].findItem(dest.itemID)
				if !ok {
					return fmt.Errorf("destination item not found: %v", dest.itemID)
				}

				for a := range srcItem.lookAhead.symbols {
					if destItem.lookAhead.add(a) {
						changed = true
					}
				}
			}
		}
		if !changed {
			break
		}
	}

	return nil
}

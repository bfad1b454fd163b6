package grammar

import "fmt"

type slr1Automaton struct {
	*lr0Automaton
}

// genSLR1Automaton uses FOLLOW of the LHS as the look-ahead symbols of every reducible item.
func genSLR1Automaton(lr0 *lr0Automaton, prods *productionSet, follow *followSet) (*slr1Automaton, error) {
	for _, state := range lr0.states {
		for _, num := range state.reducibleProductions() {
			prod, ok := prods.findByNum(num)
			if !ok {
				return nil, fmt.Errorf("reducible production not found: %v", num)
			}

			flw, err := follow.find(prod.lhs)
			if err != nil {
				return nil, err
			}

			reducibleItem, ok := state.findItem(lrItemID{
				prod: num,
				dot:  prod.rhsLen,
			})
			if !ok {
				return nil, fmt.Errorf("reducible item not found; state: %v, production: %v", state.num, num)
			}

			for _, sym := range flw.symbols() {
				reducibleItem.lookAhead.add(sym)
			}
		}
	}

	return &slr1Automaton{
		lr0Automaton: lr0,
	}, nil
}

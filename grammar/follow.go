package grammar

import (
	"fmt"

	"github.com/nihei9/tabula/grammar/symbol"
)

// followSet holds FOLLOW of every non-terminal. The EOF symbol is stored as an ordinary member.
type followSet struct {
	sets *terminalSets
}

func (flw *followSet) find(sym symbol.Symbol) (*terminalSet, error) {
	e, ok := flw.sets.find(sym)
	if !ok {
		return nil, fmt.Errorf("an entry of FOLLOW was not found; symbol: %s", sym)
	}
	return e, nil
}

// genFollowSet computes FOLLOW of every non-terminal. EOF follows the augmented start symbol; for
// each occurrence of a non-terminal N followed by X in a body, FIRST(X) is added to FOLLOW(N), and
// when N ends the body, FOLLOW of the LHS is added to FOLLOW(N). Passes repeat until nothing
// changes.
func genFollowSet(prods *productionSet, first *firstSet, symTab *symbol.SymbolTableReader) (*followSet, error) {
	flw := &followSet{
		sets: newTerminalSets(prods),
	}
	bound := flw.sets.fixedPointBound(symTab.TerminalCount())
	passes := 0
	for {
		passes++
		if passes > bound {
			return nil, &GrammarError{Cause: ErrFixedPointDiverged, Detail: fmt.Sprintf("FOLLOW: %v passes", passes)}
		}
		more := false
		for _, prod := range prods.all() {
			if prod.lhs.IsStart() {
				e, err := flw.find(prod.lhs)
				if err != nil {
					return nil, err
				}
				if e.add(symbol.SymbolEOF) {
					more = true
				}
			}
			changed, err := genProdFollowEntries(flw, first, prod)
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

	tracer().Debugf("FOLLOW converged after %v passes; %v pairs", passes, flw.sets.pairCount())

	return flw, nil
}

func genProdFollowEntries(flw *followSet, first *firstSet, prod *production) (bool, error) {
	changed := false
	for i, sym := range prod.rhs {
		if !sym.IsNonTerminal() {
			continue
		}
		acc, err := flw.find(sym)
		if err != nil {
			return false, err
		}
		fst, err := first.find(prod, i+1)
		if err != nil {
			return false, err
		}
		if acc.merge(fst.symbols) {
			changed = true
		}
		if fst.empty {
			lhsFlw, err := flw.find(prod.lhs)
			if err != nil {
				return false, err
			}
			if acc.merge(lhsFlw) {
				changed = true
			}
		}
	}
	return changed, nil
}

package grammar

import (
	"fmt"

	"github.com/nihei9/tabula/grammar/symbol"
)

type firstEntry struct {
	symbols *terminalSet

	// empty is true only when the scanned suffix of a production body is empty.
	empty bool
}

type firstSet struct {
	sets *terminalSets
}

// find returns FIRST of the body suffix of prod starting at head.
func (fst *firstSet) find(prod *production, head int) (*firstEntry, error) {
	entry := &firstEntry{
		symbols: newTerminalSet(),
	}
	if prod.rhsLen <= head {
		entry.empty = true
		return entry, nil
	}
	sym := prod.rhs[head]
	if sym.IsTerminal() {
		entry.symbols.add(sym)
		return entry, nil
	}
	e, ok := fst.sets.find(sym)
	if !ok {
		return nil, fmt.Errorf("an entry of FIRST was not found; symbol: %s", sym)
	}
	entry.symbols.merge(e)
	return entry, nil
}

func (fst *firstSet) findBySymbol(sym symbol.Symbol) *terminalSet {
	s, _ := fst.sets.find(sym)
	return s
}

// genFirstSet computes FIRST of every non-terminal by iterating over all productions until a pass
// changes nothing. A body is scanned up to its first symbol only, which is exact as long as no
// symbol derives the empty string; grammars with empty productions are rejected up front.
func genFirstSet(prods *productionSet, symTab *symbol.SymbolTableReader) (*firstSet, error) {
	for _, prod := range prods.all() {
		if !prod.isEmpty() {
			continue
		}
		text, ok := symTab.ToText(prod.lhs)
		if !ok {
			text = prod.lhs.String()
		}
		return nil, &UnsupportedError{
			Cause:  ErrNullableUnsupported,
			Symbol: text,
		}
	}

	fst := &firstSet{
		sets: newTerminalSets(prods),
	}
	bound := fst.sets.fixedPointBound(symTab.TerminalCount())
	passes := 0
	for {
		passes++
		if passes > bound {
			return nil, &GrammarError{Cause: ErrFixedPointDiverged, Detail: fmt.Sprintf("FIRST: %v passes", passes)}
		}
		more := false
		for _, prod := range prods.all() {
			acc := fst.findBySymbol(prod.lhs)
			if genProdFirstEntry(fst, acc, prod) {
				more = true
			}
		}
		if !more {
			break
		}
	}

	tracer().Debugf("FIRST converged after %v passes; %v pairs", passes, fst.sets.pairCount())

	return fst, nil
}

func genProdFirstEntry(fst *firstSet, acc *terminalSet, prod *production) bool {
	sym := prod.rhs[0]
	if sym.IsTerminal() {
		return acc.add(sym)
	}
	return acc.merge(fst.findBySymbol(sym))
}

package grammar

import (
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"github.com/nihei9/tabula/grammar/symbol"
)

func symbolComparator(a, b interface{}) int {
	return utils.IntComparator(int(a.(symbol.Symbol).Num()), int(b.(symbol.Symbol).Num()))
}

// terminalSet is an ordered set of terminal symbols. It only grows.
type terminalSet struct {
	set *treeset.Set
}

func newTerminalSet() *terminalSet {
	return &terminalSet{
		set: treeset.NewWith(symbolComparator),
	}
}

// add is idempotent and reports whether the set grew.
func (s *terminalSet) add(sym symbol.Symbol) bool {
	if s.set.Contains(sym) {
		return false
	}
	s.set.Add(sym)
	return true
}

// merge adds all symbols of t and reports whether the set grew.
func (s *terminalSet) merge(t *terminalSet) bool {
	if t == nil {
		return false
	}
	changed := false
	for _, v := range t.set.Values() {
		if s.add(v.(symbol.Symbol)) {
			changed = true
		}
	}
	return changed
}

func (s *terminalSet) size() int {
	return s.set.Size()
}

// symbols returns the members in number order.
func (s *terminalSet) symbols() []symbol.Symbol {
	vs := s.set.Values()
	syms := make([]symbol.Symbol, len(vs))
	for i, v := range vs {
		syms[i] = v.(symbol.Symbol)
	}
	return syms
}

// terminalSets maps non-terminals to terminal sets. Entries are created once and never replaced.
type terminalSets struct {
	sets map[symbol.Symbol]*terminalSet
}

func newTerminalSets(prods *productionSet) *terminalSets {
	ts := &terminalSets{
		sets: map[symbol.Symbol]*terminalSet{},
	}
	for _, prod := range prods.all() {
		ts.ensure(prod.lhs)
		for _, sym := range prod.rhs {
			if sym.IsNonTerminal() {
				ts.ensure(sym)
			}
		}
	}
	return ts
}

func (ts *terminalSets) ensure(sym symbol.Symbol) {
	if _, ok := ts.sets[sym]; ok {
		return
	}
	ts.sets[sym] = newTerminalSet()
}

func (ts *terminalSets) find(sym symbol.Symbol) (*terminalSet, bool) {
	s, ok := ts.sets[sym]
	return s, ok
}

// pairCount returns the number of (non-terminal, terminal) pairs over all sets.
func (ts *terminalSets) pairCount() int {
	n := 0
	for _, s := range ts.sets {
		n += s.size()
	}
	return n
}

// fixedPointBound returns the maximum number of passes of a fixed-point loop over these sets.
// Every pass that changes something adds at least one (non-terminal, terminal) pair, and one
// more pass confirms that nothing changes.
func (ts *terminalSets) fixedPointBound(termCount int) int {
	return len(ts.sets)*termCount + 1
}

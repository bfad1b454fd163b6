package grammar

import (
	"fmt"
	"sort"

	"github.com/nihei9/tabula/grammar/symbol"
	spec "github.com/nihei9/tabula/spec/grammar"
)

// genReport describes the symbols, the productions, and every state of the automaton together
// with the actions the parsing table holds for it.
func (b *lrTableBuilder) genReport(tab *ParsingTable, gram *Grammar, first *firstSet, follow *followSet) (*spec.Report, error) {
	terms, err := b.reportTerminals(gram)
	if err != nil {
		return nil, err
	}
	nonTerms, err := b.reportNonTerminals(first, follow)
	if err != nil {
		return nil, err
	}

	prods := make([]*spec.Production, b.prods.count()+1)
	for _, p := range b.prods.all() {
		rhs := make([]int, len(p.rhs))
		for i, e := range p.rhs {
			rhs[i] = e.Num().Int()
			if e.IsNonTerminal() {
				rhs[i] *= -1
			}
		}
		prods[p.num] = &spec.Production{
			Number: p.num.Int(),
			LHS:    p.lhs.Num().Int(),
			RHS:    rhs,
		}
	}

	byState := map[stateNum][]*conflict{}
	for _, c := range b.conflicts {
		byState[c.state] = append(byState[c.state], c)
	}
	states := make([]*spec.State, len(b.automaton.states))
	for _, s := range b.automaton.states {
		states[s.num] = b.reportState(tab, s, byState[s.num])
	}

	return &spec.Report{
		Name:         gram.name,
		Terminals:    terms,
		NonTerminals: nonTerms,
		Productions:  prods,
		States:       states,
	}, nil
}

func (b *lrTableBuilder) reportTerminals(gram *Grammar) ([]*spec.Terminal, error) {
	terms := make([]*spec.Terminal, b.termCount)
	for _, sym := range b.symTab.TerminalSymbols() {
		name, ok := b.symTab.ToText(sym)
		if !ok {
			return nil, fmt.Errorf("failed to generate terminals: symbol not found: %v", sym)
		}
		term := &spec.Terminal{
			Number: sym.Num().Int(),
			Name:   name,
		}
		if gram.lexSpec != nil {
			for kind, t := range gram.kindToTerminal {
				if t == sym.Num().Int() {
					term.Pattern = gram.lexSpec.Entries[kind].Pattern
					break
				}
			}
		}
		terms[sym.Num()] = term
	}
	return terms, nil
}

func (b *lrTableBuilder) reportNonTerminals(first *firstSet, follow *followSet) ([]*spec.NonTerminal, error) {
	nonTerms := make([]*spec.NonTerminal, b.nonTermCount)
	for _, sym := range b.symTab.NonTerminalSymbols() {
		name, ok := b.symTab.ToText(sym)
		if !ok {
			return nil, fmt.Errorf("failed to generate non-terminals: symbol not found: %v", sym)
		}
		nonTerm := &spec.NonTerminal{
			Number: sym.Num().Int(),
			Name:   name,
		}
		if fst := first.findBySymbol(sym); fst != nil {
			nonTerm.First = symbolNums(fst.symbols())
		}
		if flw, err := follow.find(sym); err == nil {
			nonTerm.Follow = symbolNums(flw.symbols())
		}
		nonTerms[sym.Num()] = nonTerm
	}
	return nonTerms, nil
}

func (b *lrTableBuilder) reportState(tab *ParsingTable, s *lrState, conflicts []*conflict) *spec.State {
	st := &spec.State{
		Number:     s.num.Int(),
		SRConflict: []*spec.SRConflict{},
		RRConflict: []*spec.RRConflict{},
	}

	for _, item := range s.kernel {
		st.Kernel = append(st.Kernel, &spec.Item{
			Production: item.prod.Int(),
			Dot:        item.dot,
		})
	}
	sort.Slice(st.Kernel, func(i, j int) bool {
		if st.Kernel[i].Production != st.Kernel[j].Production {
			return st.Kernel[i].Production < st.Kernel[j].Production
		}
		return st.Kernel[i].Dot < st.Kernel[j].Dot
	})

	reduceByProd := map[productionNum]*spec.Reduce{}
	for _, t := range b.symTab.TerminalSymbols() {
		ty, next, prod := tab.getAction(s.num, t.Num())
		switch ty {
		case ActionTypeShift:
			st.Shift = append(st.Shift, &spec.Transition{
				Symbol: t.Num().Int(),
				State:  next.Int(),
			})
		case ActionTypeReduce:
			if prod == productionNumStart {
				st.Accept = true
			}
			r, ok := reduceByProd[prod]
			if !ok {
				r = &spec.Reduce{
					Production: prod.Int(),
				}
				reduceByProd[prod] = r
				st.Reduce = append(st.Reduce, r)
			}
			r.LookAhead = append(r.LookAhead, t.Num().Int())
		}
	}
	for _, n := range b.symTab.NonTerminalSymbols() {
		if ty, next := tab.getGoTo(s.num, n.Num()); ty == GoToTypeRegistered {
			st.GoTo = append(st.GoTo, &spec.Transition{
				Symbol: n.Num().Int(),
				State:  next.Int(),
			})
		}
	}
	sort.Slice(st.Shift, func(i, j int) bool {
		return st.Shift[i].State < st.Shift[j].State
	})
	sort.Slice(st.Reduce, func(i, j int) bool {
		return st.Reduce[i].Production < st.Reduce[j].Production
	})
	sort.Slice(st.GoTo, func(i, j int) bool {
		return st.GoTo[i].State < st.GoTo[j].State
	})

	for _, c := range conflicts {
		ty, adoptedState, adoptedProd := tab.getAction(s.num, c.sym.Num())
		switch c.kind {
		case ConflictKindShiftReduce:
			sr := &spec.SRConflict{
				Symbol:     c.sym.Num().Int(),
				State:      c.nextState.Int(),
				Production: c.prod1.Int(),
				ResolvedBy: c.resolvedBy.Int(),
			}
			switch ty {
			case ActionTypeShift:
				n := adoptedState.Int()
				sr.AdoptedState = &n
			case ActionTypeReduce:
				n := adoptedProd.Int()
				sr.AdoptedProduction = &n
			}
			st.SRConflict = append(st.SRConflict, sr)
		case ConflictKindReduceReduce:
			st.RRConflict = append(st.RRConflict, &spec.RRConflict{
				Symbol:            c.sym.Num().Int(),
				Production1:       c.prod1.Int(),
				Production2:       c.prod2.Int(),
				AdoptedProduction: adoptedProd.Int(),
				ResolvedBy:        c.resolvedBy.Int(),
			})
		}
	}
	sort.Slice(st.SRConflict, func(i, j int) bool {
		return st.SRConflict[i].Symbol < st.SRConflict[j].Symbol
	})
	sort.Slice(st.RRConflict, func(i, j int) bool {
		return st.RRConflict[i].Symbol < st.RRConflict[j].Symbol
	})

	return st
}

func symbolNums(syms []symbol.Symbol) []int {
	nums := make([]int, len(syms))
	for i, sym := range syms {
		nums[i] = sym.Num().Int()
	}
	return nums
}

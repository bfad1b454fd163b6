package grammar

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/nihei9/tabula/grammar/symbol"
)

type stateNum int

const stateNumInitial = stateNum(0)

func (n stateNum) Int() int {
	return int(n)
}

func (n stateNum) String() string {
	return strconv.Itoa(int(n))
}

type lrState struct {
	num   stateNum
	items ItemSet

	// kernel holds the kernel items of the state. Look-ahead symbols are attached to these items.
	kernel   []*lrItem
	kernelOf map[lrItemID]*lrItem

	next      map[symbol.Symbol]stateNum
	reducible map[productionNum]struct{}
}

// findItem finds a kernel item. Every reducible item is a kernel item because productions with
// empty bodies are rejected before tables are built.
func (s *lrState) findItem(id lrItemID) (*lrItem, bool) {
	item, ok := s.kernelOf[id]
	return item, ok
}

// nextSymbols returns the symbols having a transition, in number order with terminals first.
func (s *lrState) nextSymbols() []symbol.Symbol {
	syms := make([]symbol.Symbol, 0, len(s.next))
	for sym := range s.next {
		syms = append(syms, sym)
	}
	sortSymbols(syms)
	return syms
}

// reducibleProductions returns the numbers of reducible productions in ascending order.
func (s *lrState) reducibleProductions() []productionNum {
	nums := make([]productionNum, 0, len(s.reducible))
	for num := range s.reducible {
		nums = append(nums, num)
	}
	sort.Slice(nums, func(i, j int) bool {
		return nums[i] < nums[j]
	})
	return nums
}

func sortSymbols(syms []symbol.Symbol) {
	sort.Slice(syms, func(i, j int) bool {
		ti, tj := syms[i].IsTerminal(), syms[j].IsTerminal()
		if ti != tj {
			return ti
		}
		return syms[i].Num() < syms[j].Num()
	})
}

type lr0Automaton struct {
	initialState stateNum

	// states is indexed by state number. State numbers follow discovery order.
	states    []*lrState
	key2State map[string]stateNum
}

func (a *lr0Automaton) acceptStates() []stateNum {
	var nums []stateNum
	for _, s := range a.states {
		for _, item := range s.kernel {
			if item.prod == productionNumStart && item.reducible {
				nums = append(nums, s.num)
				break
			}
		}
	}
	return nums
}

type pendingTransition struct {
	state stateNum
	sym   symbol.Symbol
}

// genLR0Automaton builds the canonical collection of LR(0) item sets. A FIFO worklist holds
// (state, symbol) pairs; each new state enqueues one pair per symbol of the alphabet that it can
// move on, in alphabet order. A pair is enqueued only when its state is first added, so every pair
// is processed once and the loop ends when no new state appears.
func genLR0Automaton(prods *productionSet, startSym symbol.Symbol, alphabet []symbol.Symbol) (*lr0Automaton, error) {
	if !startSym.IsStart() {
		return nil, fmt.Errorf("passed symbold is not a start symbol")
	}

	automaton := &lr0Automaton{
		initialState: stateNumInitial,
		key2State:    map[string]stateNum{},
	}

	var worklist []pendingTransition
	addState := func(items ItemSet) (stateNum, error) {
		if num, ok := automaton.key2State[items.Key()]; ok {
			return num, nil
		}
		state, err := newLRState(stateNum(len(automaton.states)), items, prods)
		if err != nil {
			return 0, err
		}
		automaton.states = append(automaton.states, state)
		automaton.key2State[items.Key()] = state.num

		dotted := map[symbol.Symbol]struct{}{}
		for _, item := range items.items {
			it, err := resolveItem(prods, item)
			if err != nil {
				return 0, err
			}
			if !it.dottedSymbol.IsNil() {
				dotted[it.dottedSymbol] = struct{}{}
			}
		}
		for _, sym := range alphabet {
			if _, ok := dotted[sym]; !ok {
				continue
			}
			worklist = append(worklist, pendingTransition{
				state: state.num,
				sym:   sym,
			})
		}
		return state.num, nil
	}

	{
		ps, ok := prods.findByLHS(startSym)
		if !ok || len(ps) == 0 {
			return nil, &GrammarError{Cause: ErrNoStartProduction}
		}
		initial, err := genLR0Closure(NewItemSet(Item{Production: ps[0].num.Int(), Dot: 0}), prods)
		if err != nil {
			return nil, err
		}
		_, err = addState(initial)
		if err != nil {
			return nil, err
		}
	}

	for len(worklist) > 0 {
		p := worklist[0]
		worklist = worklist[1:]

		from := automaton.states[p.state]
		kernel, err := genGoTo(from.items, p.sym, prods)
		if err != nil {
			return nil, err
		}
		if kernel.IsEmpty() {
			continue
		}
		items, err := genLR0Closure(kernel, prods)
		if err != nil {
			return nil, err
		}
		to, err := addState(items)
		if err != nil {
			return nil, err
		}
		from.next[p.sym] = to
	}

	tracer().Debugf("LR(0) automaton: %v states", len(automaton.states))

	return automaton, nil
}

func newLRState(num stateNum, items ItemSet, prods *productionSet) (*lrState, error) {
	state := &lrState{
		num:       num,
		items:     items,
		kernelOf:  map[lrItemID]*lrItem{},
		next:      map[symbol.Symbol]stateNum{},
		reducible: map[productionNum]struct{}{},
	}
	for _, item := range items.items {
		it, err := resolveItem(prods, item)
		if err != nil {
			return nil, err
		}
		if it.kernel {
			state.kernel = append(state.kernel, it)
			state.kernelOf[it.id] = it
		}
		if it.reducible {
			state.reducible[it.prod] = struct{}{}
		}
	}
	return state, nil
}

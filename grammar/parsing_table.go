package grammar

import (
	"fmt"

	"github.com/nihei9/tabula/grammar/symbol"
)

type ActionType string

const (
	ActionTypeShift  = ActionType("shift")
	ActionTypeReduce = ActionType("reduce")
	ActionTypeError  = ActionType("error")
)

// actionEntry encodes an ACTION table entry: zero is an error, a negative value is a shift to the
// state -n, and a positive value is a reduction of the production n. Reducing the augmented start
// production means accepting the input.
type actionEntry int

const actionEntryEmpty = actionEntry(0)

func newShiftActionEntry(state stateNum) actionEntry {
	return actionEntry(state * -1)
}

func newReduceActionEntry(prod productionNum) actionEntry {
	return actionEntry(prod)
}

func (e actionEntry) describe() (ActionType, stateNum, productionNum) {
	if e == actionEntryEmpty {
		return ActionTypeError, stateNumInitial, productionNumNil
	}
	if e < 0 {
		return ActionTypeShift, stateNum(e * -1), productionNumNil
	}
	return ActionTypeReduce, stateNumInitial, productionNum(e)
}

type GoToType string

const (
	GoToTypeRegistered = GoToType("registered")
	GoToTypeError      = GoToType("error")
)

type goToEntry uint

const goToEntryEmpty = goToEntry(0)

func newGoToEntry(state stateNum) goToEntry {
	return goToEntry(state)
}

func (e goToEntry) describe() (GoToType, stateNum) {
	if e == goToEntryEmpty {
		return GoToTypeError, stateNumInitial
	}
	return GoToTypeRegistered, stateNum(e)
}

type conflictResolutionMethod int

func (m conflictResolutionMethod) Int() int {
	return int(m)
}

const (
	ResolvedByShift     conflictResolutionMethod = 1
	ResolvedByProdOrder conflictResolutionMethod = 2
)

// conflict records two actions competing for one ACTION entry. For a shift/reduce conflict,
// nextState is the shift target and prod1 the reduced production; for a reduce/reduce conflict,
// prod1 and prod2 are the competing productions in the order they were written.
type conflict struct {
	kind       ConflictKind
	state      stateNum
	sym        symbol.Symbol
	nextState  stateNum
	prod1      productionNum
	prod2      productionNum
	resolvedBy conflictResolutionMethod
}

// ParsingTable holds dense ACTION and GOTO tables. Rows are state numbers; ACTION columns are
// terminal numbers and GOTO columns are non-terminal numbers.
type ParsingTable struct {
	actionTable      []actionEntry
	goToTable        []goToEntry
	stateCount       int
	terminalCount    int
	nonTerminalCount int

	InitialState stateNum
}

func (t *ParsingTable) getAction(state stateNum, sym symbol.SymbolNum) (ActionType, stateNum, productionNum) {
	pos := state.Int()*t.terminalCount + sym.Int()
	return t.actionTable[pos].describe()
}

func (t *ParsingTable) getGoTo(state stateNum, sym symbol.SymbolNum) (GoToType, stateNum) {
	pos := state.Int()*t.nonTerminalCount + sym.Int()
	return t.goToTable[pos].describe()
}

func (t *ParsingTable) readAction(row int, col int) actionEntry {
	return t.actionTable[row*t.terminalCount+col]
}

func (t *ParsingTable) writeAction(row int, col int, act actionEntry) {
	t.actionTable[row*t.terminalCount+col] = act
}

func (t *ParsingTable) writeGoTo(state stateNum, sym symbol.Symbol, nextState stateNum) {
	pos := state.Int()*t.nonTerminalCount + sym.Num().Int()
	t.goToTable[pos] = newGoToEntry(nextState)
}

type lrTableBuilder struct {
	automaton    *lr0Automaton
	prods        *productionSet
	termCount    int
	nonTermCount int
	symTab       *symbol.SymbolTableReader

	conflicts []*conflict
}

func (b *lrTableBuilder) build() (*ParsingTable, error) {
	var ptab *ParsingTable
	{
		initialState := b.automaton.states[b.automaton.initialState]
		ptab = &ParsingTable{
			actionTable:      make([]actionEntry, len(b.automaton.states)*b.termCount),
			goToTable:        make([]goToEntry, len(b.automaton.states)*b.nonTermCount),
			stateCount:       len(b.automaton.states),
			terminalCount:    b.termCount,
			nonTerminalCount: b.nonTermCount,
			InitialState:     initialState.num,
		}
	}

	for _, state := range b.automaton.states {
		for _, sym := range state.nextSymbols() {
			nextState := state.next[sym]
			if sym.IsTerminal() {
				b.writeShiftAction(ptab, state.num, sym, nextState)
			} else {
				ptab.writeGoTo(state.num, sym, nextState)
			}
		}

		for _, num := range state.reducibleProductions() {
			reducibleProd, ok := b.prods.findByNum(num)
			if !ok {
				return nil, fmt.Errorf("reducible production not found: %v", num)
			}

			reducibleItem, ok := state.findItem(lrItemID{
				prod: num,
				dot:  reducibleProd.rhsLen,
			})
			if !ok {
				return nil, fmt.Errorf("reducible item not found; state: %v, production: %v", state.num, reducibleProd.num)
			}

			for _, a := range reducibleItem.lookAhead.sorted() {
				b.writeReduceAction(ptab, state.num, a, reducibleProd.num)
			}
		}
	}

	tracer().Debugf("parsing table: %v states, %v conflicts", ptab.stateCount, len(b.conflicts))

	return ptab, nil
}

// writeShiftAction writes a shift action. A reduce action already in the entry loses to it.
func (b *lrTableBuilder) writeShiftAction(tab *ParsingTable, state stateNum, sym symbol.Symbol, nextState stateNum) {
	col := sym.Num().Int()
	if ty, _, p := tab.readAction(state.Int(), col).describe(); ty == ActionTypeReduce {
		b.conflicts = append(b.conflicts, &conflict{
			kind:       ConflictKindShiftReduce,
			state:      state,
			sym:        sym,
			nextState:  nextState,
			prod1:      p,
			resolvedBy: ResolvedByShift,
		})
	}
	tab.writeAction(state.Int(), col, newShiftActionEntry(nextState))
}

// writeReduceAction writes a reduce action unless the entry already holds a shift action or a
// reduction of an earlier production. Productions written earlier in the grammar have lower numbers.
func (b *lrTableBuilder) writeReduceAction(tab *ParsingTable, state stateNum, sym symbol.Symbol, prod productionNum) {
	col := sym.Num().Int()
	ty, s, p := tab.readAction(state.Int(), col).describe()
	switch ty {
	case ActionTypeError:
		tab.writeAction(state.Int(), col, newReduceActionEntry(prod))
	case ActionTypeShift:
		b.conflicts = append(b.conflicts, &conflict{
			kind:       ConflictKindShiftReduce,
			state:      state,
			sym:        sym,
			nextState:  s,
			prod1:      prod,
			resolvedBy: ResolvedByShift,
		})
	case ActionTypeReduce:
		if p == prod {
			return
		}
		b.conflicts = append(b.conflicts, &conflict{
			kind:       ConflictKindReduceReduce,
			state:      state,
			sym:        sym,
			prod1:      p,
			prod2:      prod,
			resolvedBy: ResolvedByProdOrder,
		})
		if prod < p {
			tab.writeAction(state.Int(), col, newReduceActionEntry(prod))
		}
	}
}

// conflictError converts the recorded conflicts into a ConflictError, or returns nil when there
// are none.
func (b *lrTableBuilder) conflictError() *ConflictError {
	if len(b.conflicts) == 0 {
		return nil
	}
	cs := make([]*Conflict, len(b.conflicts))
	for i, c := range b.conflicts {
		text, ok := b.symTab.ToText(c.sym)
		if !ok {
			text = c.sym.String()
		}
		cs[i] = &Conflict{
			Kind:        c.kind,
			State:       c.state.Int(),
			Symbol:      text,
			Production1: c.prod1.Int(),
		}
		switch c.kind {
		case ConflictKindShiftReduce:
			cs[i].NextState = c.nextState.Int()
		case ConflictKindReduceReduce:
			p1, p2 := c.prod1, c.prod2
			if p2 < p1 {
				p1, p2 = p2, p1
			}
			cs[i].Production1 = p1.Int()
			cs[i].Production2 = p2.Int()
		}
	}
	return &ConflictError{
		Conflicts: cs,
	}
}

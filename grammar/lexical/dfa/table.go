package dfa

import (
	"github.com/nihei9/tabula/grammar/lexical/charset"
)

// TransitionTable is a dense form of a DFA. Rows correspond to states in their construction
// order and columns to character classes.
type TransitionTable struct {
	InitialState int

	// AcceptingStates maps a state to the token it accepts, or StateNil.
	AcceptingStates []int
	Classes         []charset.Range

	// ByteClass maps each code point below 256 to its class, or -1.
	ByteClass  [256]int
	RowCount   int
	ColCount   int
	Transition []int
}

func GenTransitionTable(d *DFA) *TransitionTable {
	tab := &TransitionTable{
		InitialState:    0,
		AcceptingStates: make([]int, len(d.States)),
		Classes:         d.Classes,
		RowCount:        len(d.States),
		ColCount:        len(d.Classes),
		Transition:      make([]int, len(d.States)*len(d.Classes)),
	}
	for c := range tab.ByteClass {
		tab.ByteClass[c] = charset.ClassOf(d.Classes, rune(c))
	}
	for _, s := range d.States {
		tab.AcceptingStates[s.ID] = StateNil
		if s.Accept != nil {
			tab.AcceptingStates[s.ID] = s.Accept.Token
		}
		copy(tab.Transition[s.ID*tab.ColCount:], s.Next)
	}
	return tab
}

func (t *TransitionTable) ClassOf(c rune) int {
	if c >= 0 && c < 256 {
		return t.ByteClass[c]
	}
	return charset.ClassOf(t.Classes, c)
}

// Next returns the state reached from state by reading c, or StateNil.
func (t *TransitionTable) Next(state int, c rune) int {
	if state == StateNil {
		return StateNil
	}
	class := t.ClassOf(c)
	if class < 0 {
		return StateNil
	}
	return t.Transition[state*t.ColCount+class]
}

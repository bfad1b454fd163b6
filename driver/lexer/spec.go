package lexer

import (
	"sort"

	spec "github.com/nihei9/tabula/spec/grammar"
)

type lexSpec struct {
	spec *spec.LexicalSpec
}

func newLexSpec(spec *spec.LexicalSpec) *lexSpec {
	return &lexSpec{
		spec: spec,
	}
}

func (s *lexSpec) initialState() StateID {
	return StateID(s.spec.DFA.InitialState)
}

// classOf returns the character class of c, or -1.
func (s *lexSpec) classOf(c rune) int {
	if c >= 0 && int(c) < len(s.spec.ByteClass) {
		return s.spec.ByteClass[c]
	}
	ivs := s.spec.Intervals
	i := sort.Search(len(ivs), func(i int) bool {
		return ivs[i].To >= c
	})
	if i < len(ivs) && ivs[i].From <= c {
		return ivs[i].Class
	}
	return -1
}

func (s *lexSpec) nextState(state StateID, c rune) (StateID, bool) {
	v := s.classOf(c)
	if v < 0 {
		return StateID(spec.StateNil), false
	}

	var next int
	tab := s.spec.DFA
	switch s.spec.CompressionLevel {
	case 2:
		tran := tab.Transition
		rowNum := tran.RowNums[state]
		d := tran.UniqueEntries.RowDisplacement[rowNum]
		if d+v >= len(tran.UniqueEntries.Bounds) || tran.UniqueEntries.Bounds[d+v] != rowNum {
			return StateID(tran.UniqueEntries.EmptyValue), false
		}
		next = tran.UniqueEntries.Entries[d+v]
	case 1:
		tran := tab.Transition
		next = tran.UncompressedUniqueEntries[tran.RowNums[state]*tran.OriginalColCount+v]
	default:
		next = tab.UncompressedTransition[state.Int()*tab.ColCount+v]
	}
	if next == spec.StateNil {
		return StateID(spec.StateNil), false
	}
	return StateID(next), true
}

func (s *lexSpec) accept(state StateID) (KindID, bool) {
	kind := s.spec.DFA.AcceptingStates[state]
	return KindID(kind), kind != spec.StateNil
}

func (s *lexSpec) isIgnored(kind KindID) bool {
	for _, k := range s.spec.Ignore {
		if k == kind.Int() {
			return true
		}
	}
	return false
}

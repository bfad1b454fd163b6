package lexical

import (
	"fmt"

	"github.com/nihei9/tabula/compressor"
	"github.com/nihei9/tabula/grammar/lexical/dfa"
	"github.com/nihei9/tabula/grammar/lexical/nfa"
	"github.com/nihei9/tabula/grammar/lexical/regex"
	spec "github.com/nihei9/tabula/spec/grammar"
)

// Lexicon holds the artifacts Compile constructed up to its target. A kind is identified by its
// index in KindNames, which is the declaration order.
type Lexicon struct {
	KindNames []string
	Ignore    []bool
	Trees     []regex.Node
	EOFToken  int

	NFA   *nfa.NFA
	DFA   *dfa.DFA
	Table *dfa.TransitionTable

	compressionLevel int
}

// Spec converts the transition table into its serializable form.
func (l *Lexicon) Spec() (*spec.LexicalSpec, error) {
	if l.Table == nil {
		return nil, fmt.Errorf("the lexicon has no transition table; compile it with the table target")
	}
	tab := l.Table

	ignore := []int{}
	for i, ig := range l.Ignore {
		if ig {
			ignore = append(ignore, i)
		}
	}

	intervals := make([]*spec.Interval, len(tab.Classes))
	for i, r := range tab.Classes {
		intervals[i] = &spec.Interval{
			From:  r.From,
			To:    r.To,
			Class: i,
		}
	}

	tranTab := &spec.TransitionTable{
		InitialState:    tab.InitialState,
		AcceptingStates: append([]int{}, tab.AcceptingStates...),
		RowCount:        tab.RowCount,
		ColCount:        tab.ColCount,
	}
	dense, err := compressor.NewDenseTable(tab.Transition, tab.ColCount)
	if err != nil {
		return nil, err
	}
	ueTab, rdTab, err := compressor.Compress(dense, l.compressionLevel, spec.StateNil)
	if err != nil {
		return nil, err
	}
	switch {
	case rdTab != nil:
		tranTab.Transition = &spec.UniqueEntriesTable{
			UniqueEntries: &spec.RowDisplacementTable{
				OriginalRowCount: rdTab.OriginalRowCount,
				OriginalColCount: rdTab.OriginalColCount,
				EmptyValue:       rdTab.EmptyValue,
				Entries:          rdTab.Entries,
				Bounds:           rdTab.Bounds,
				RowDisplacement:  rdTab.RowDisplacement,
			},
			RowNums:          ueTab.RowNums,
			OriginalRowCount: ueTab.OriginalRowCount,
			OriginalColCount: ueTab.OriginalColCount,
			EmptyValue:       spec.StateNil,
		}
	case ueTab != nil:
		tranTab.Transition = &spec.UniqueEntriesTable{
			UncompressedUniqueEntries: ueTab.UniqueEntries,
			RowNums:                   ueTab.RowNums,
			OriginalRowCount:          ueTab.OriginalRowCount,
			OriginalColCount:          ueTab.OriginalColCount,
			EmptyValue:                spec.StateNil,
		}
	default:
		tranTab.UncompressedTransition = append([]int{}, tab.Transition...)
	}

	return &spec.LexicalSpec{
		KindNames:        append([]string{}, l.KindNames...),
		Ignore:           ignore,
		EOFToken:         l.EOFToken,
		Intervals:        intervals,
		ByteClass:        append([]int{}, tab.ByteClass[:]...),
		CompressionLevel: l.compressionLevel,
		DFA:              tranTab,
	}, nil
}

package dfa

import (
	"fmt"
	"strings"

	"github.com/nihei9/tabula/grammar/lexical/nfa"
)

// Minimize merges equivalent states by partition refinement. The initial partition has one block
// per winning token plus one block of non-accepting states. A block is split while its states
// disagree on the blocks their transitions lead to. Blocks are numbered by their lowest state, so
// the initial state stays 0.
func Minimize(d *DFA) *DFA {
	block := make([]int, len(d.States))
	blockCount := 0
	{
		key2Block := map[string]int{}
		for i, s := range d.States {
			key := "-"
			if s.Accept != nil {
				key = fmt.Sprintf("%v", s.Accept.Token)
			}
			b, ok := key2Block[key]
			if !ok {
				b = len(key2Block)
				key2Block[key] = b
			}
			block[i] = b
		}
		blockCount = len(key2Block)
	}

	// Each pass either adds a block or ends the refinement, and there are at most as many blocks
	// as states.
	for pass := 0; pass < len(d.States); pass++ {
		next := make([]int, len(d.States))
		sig2Block := map[string]int{}
		for i, s := range d.States {
			sig := signature(block, i, s)
			b, ok := sig2Block[sig]
			if !ok {
				b = len(sig2Block)
				sig2Block[sig] = b
			}
			next[i] = b
		}
		tracer().Debugf("minimization pass %v: %v blocks", pass+1, len(sig2Block))
		if len(sig2Block) == blockCount {
			break
		}
		block = next
		blockCount = len(sig2Block)
	}

	min := &DFA{
		Classes: d.Classes,
		States:  make([]*State, blockCount),
	}
	for i, s := range d.States {
		b := block[i]
		m := min.States[b]
		if m == nil {
			m = &State{
				ID:     b,
				Accept: s.Accept,
				Next:   make([]int, len(s.Next)),
			}
			for c, to := range s.Next {
				if to == StateNil {
					m.Next[c] = StateNil
					continue
				}
				m.Next[c] = block[to]
			}
			min.States[b] = m
		}
		m.NFAStates = mergeIDs(m.NFAStates, s.NFAStates)
	}
	tracer().Infof("minimized a DFA from %v to %v states", len(d.States), len(min.States))
	return min
}

func signature(block []int, state int, s *State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v", block[state])
	for _, to := range s.Next {
		if to == StateNil {
			b.WriteString(",-1")
			continue
		}
		fmt.Fprintf(&b, ",%v", block[to])
	}
	return b.String()
}

func mergeIDs(a, b []nfa.StateID) []nfa.StateID {
	merged := make([]nfa.StateID, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			merged = append(merged, a[i])
			i++
		case a[i] > b[j]:
			merged = append(merged, b[j])
			j++
		default:
			merged = append(merged, a[i])
			i++
			j++
		}
	}
	merged = append(merged, a[i:]...)
	return append(merged, b[j:]...)
}

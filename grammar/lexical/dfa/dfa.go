// Package dfa converts non-deterministic automata into minimal deterministic automata and
// transition tables.
package dfa

import (
	"fmt"

	"github.com/cnf/structhash"
	"github.com/nihei9/tabula/grammar/lexical/charset"
	"github.com/nihei9/tabula/grammar/lexical/nfa"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'tabula.lexical'.
func tracer() tracing.Trace {
	return tracing.Select("tabula.lexical")
}

// StateNil is the implicit dead state. Every transition not leading to a state leads to it.
const StateNil = -1

// State is a set of NFA states. Next maps each character class to the next state or StateNil.
type State struct {
	ID        int
	NFAStates []nfa.StateID
	Next      []int
	Accept    *nfa.Accept
}

// DFA is a deterministic automaton over the character classes of Classes. States are numbered in
// the order they were discovered, and state 0 is the initial state.
type DFA struct {
	Classes []charset.Range
	States  []*State
}

type stateSetKey struct {
	IDs []nfa.StateID
}

func keyOf(ids []nfa.StateID) string {
	return fmt.Sprintf("%x", structhash.Sha1(stateSetKey{IDs: ids}, 1))
}

// FromNFA performs the subset construction. An accepting state takes the winning accept annotation
// among its NFA states.
func FromNFA(n *nfa.NFA) *DFA {
	classes := charset.Partition(n.Ranges())

	d := &DFA{
		Classes: classes,
	}
	key2ID := map[string]int{}
	add := func(ids []nfa.StateID) int {
		key := keyOf(ids)
		if id, ok := key2ID[key]; ok {
			return id
		}
		s := &State{
			ID:        len(d.States),
			NFAStates: ids,
			Accept:    n.Winner(ids),
		}
		key2ID[key] = s.ID
		d.States = append(d.States, s)
		return s.ID
	}

	add(n.EpsilonClosure([]nfa.StateID{n.Start}))
	// d.States grows while it is iterated, which makes it a FIFO worklist.
	for i := 0; i < len(d.States); i++ {
		s := d.States[i]
		moves := make([][]nfa.StateID, len(classes))
		for _, id := range s.NFAStates {
			for _, t := range n.States[id].Trans {
				if t.Epsilon {
					continue
				}
				for _, c := range charset.ClassesOf(classes, t.Range) {
					moves[c] = append(moves[c], t.To)
				}
			}
		}
		next := make([]int, len(classes))
		for c, move := range moves {
			if len(move) == 0 {
				next[c] = StateNil
				continue
			}
			next[c] = add(n.EpsilonClosure(move))
		}
		s.Next = next
	}
	tracer().Debugf("subset construction: %v states over %v classes", len(d.States), len(classes))
	return d
}

// Step returns the state reached from state by reading c.
func (d *DFA) Step(state int, c rune) int {
	if state == StateNil {
		return StateNil
	}
	class := charset.ClassOf(d.Classes, c)
	if class < 0 {
		return StateNil
	}
	return d.States[state].Next[class]
}

// Match runs the automaton on the whole input and returns the accept annotation of the final state.
func (d *DFA) Match(input string) (*nfa.Accept, bool) {
	state := 0
	for _, c := range input {
		state = d.Step(state, c)
		if state == StateNil {
			return nil, false
		}
	}
	a := d.States[state].Accept
	return a, a != nil
}

func (d *DFA) Accepts(input string) bool {
	_, ok := d.Match(input)
	return ok
}

// Longest returns the accept annotation of the longest accepted prefix of input and the length of
// the prefix in bytes.
func (d *DFA) Longest(input string) (*nfa.Accept, int, bool) {
	var accept *nfa.Accept
	length := 0
	state := 0
	for i, c := range input {
		state = d.Step(state, c)
		if state == StateNil {
			break
		}
		if a := d.States[state].Accept; a != nil {
			accept = a
			length = i + len(string(c))
		}
	}
	return accept, length, accept != nil
}

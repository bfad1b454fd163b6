// Package nfa builds non-deterministic automata from pattern trees with Thompson's construction.
package nfa

import (
	"fmt"
	"sort"

	"github.com/nihei9/tabula/grammar/lexical/charset"
	"github.com/nihei9/tabula/grammar/lexical/regex"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'tabula.lexical'.
func tracer() tracing.Trace {
	return tracing.Select("tabula.lexical")
}

type StateID int

// Accept annotates an accepting state with the token it recognizes. A lower Priority wins.
type Accept struct {
	Token    int
	Priority int
	Ignore   bool
}

// Wins reports whether a beats b.
func (a *Accept) Wins(b *Accept) bool {
	if b == nil {
		return true
	}
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.Token < b.Token
}

func (a *Accept) String() string {
	if a.Ignore {
		return fmt.Sprintf("#%v (ignore)", a.Token)
	}
	return fmt.Sprintf("#%v", a.Token)
}

// Transition is either an epsilon transition or a transition on any code point of Range.
type Transition struct {
	Epsilon bool
	Range   charset.Range
	To      StateID
}

type State struct {
	ID     StateID
	Trans  []*Transition
	Accept *Accept
}

type NFA struct {
	States []*State
	Start  StateID
}

type builder struct {
	states []*State
}

func (b *builder) newState() *State {
	s := &State{
		ID: StateID(len(b.states)),
	}
	b.states = append(b.states, s)
	return s
}

func (b *builder) epsilon(from, to *State) {
	from.Trans = append(from.Trans, &Transition{
		Epsilon: true,
		To:      to.ID,
	})
}

// fragment is a partial automaton with a single entry and a single exit.
type fragment struct {
	start *State
	end   *State
}

// Build constructs the automaton of a single pattern. The exit of the automaton accepts with accept.
func Build(ast regex.Node, accept Accept) (*NFA, error) {
	b := &builder{}
	frag, err := b.build(ast)
	if err != nil {
		return nil, err
	}
	a := accept
	frag.end.Accept = &a
	return &NFA{
		States: b.states,
		Start:  frag.start.ID,
	}, nil
}

func (b *builder) build(ast regex.Node) (*fragment, error) {
	switch n := ast.(type) {
	case *regex.Literal:
		return b.buildSet(charset.Char(n.Char)), nil
	case *regex.CharClass:
		if n.Set.IsEmpty() {
			return nil, fmt.Errorf("a character class matches no character: %v", n.Source)
		}
		return b.buildSet(n.Set), nil
	case *regex.Group:
		return b.build(n.Operand)
	case *regex.Concat:
		left, err := b.build(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := b.build(n.Right)
		if err != nil {
			return nil, err
		}
		b.epsilon(left.end, right.start)
		return &fragment{start: left.start, end: right.end}, nil
	case *regex.Alt:
		left, err := b.build(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := b.build(n.Right)
		if err != nil {
			return nil, err
		}
		s := b.newState()
		e := b.newState()
		b.epsilon(s, left.start)
		b.epsilon(s, right.start)
		b.epsilon(left.end, e)
		b.epsilon(right.end, e)
		return &fragment{start: s, end: e}, nil
	case *regex.Star:
		return b.loop(n.Operand, true, true)
	case *regex.Plus:
		return b.loop(n.Operand, false, true)
	case *regex.Optional:
		return b.loop(n.Operand, true, false)
	case *regex.Repeat:
		return b.buildRepeat(n)
	}
	return nil, fmt.Errorf("unknown node: %T", ast)
}

func (b *builder) buildSet(set charset.Set) *fragment {
	s := b.newState()
	e := b.newState()
	for _, r := range set {
		s.Trans = append(s.Trans, &Transition{
			Range: r,
			To:    e.ID,
		})
	}
	return &fragment{start: s, end: e}
}

// loop wraps the operand with epsilon transitions. skippable lets the operand be bypassed and
// repeatable lets it be passed again.
func (b *builder) loop(operand regex.Node, skippable, repeatable bool) (*fragment, error) {
	op, err := b.build(operand)
	if err != nil {
		return nil, err
	}
	s := b.newState()
	e := b.newState()
	b.epsilon(s, op.start)
	if skippable {
		b.epsilon(s, e)
	}
	if repeatable {
		b.epsilon(op.end, op.start)
	}
	b.epsilon(op.end, e)
	return &fragment{start: s, end: e}, nil
}

// buildRepeat chains copies of the operand: Min mandatory copies followed by either a starred copy
// or Max-Min optional copies.
func (b *builder) buildRepeat(n *regex.Repeat) (*fragment, error) {
	var frags []*fragment
	for i := 0; i < n.Min; i++ {
		f, err := b.build(n.Operand)
		if err != nil {
			return nil, err
		}
		frags = append(frags, f)
	}
	if n.Max < 0 {
		f, err := b.loop(n.Operand, true, true)
		if err != nil {
			return nil, err
		}
		frags = append(frags, f)
	} else {
		for i := n.Min; i < n.Max; i++ {
			f, err := b.loop(n.Operand, true, false)
			if err != nil {
				return nil, err
			}
			frags = append(frags, f)
		}
	}
	if len(frags) == 0 {
		return nil, fmt.Errorf("a repetition must match at least one time")
	}
	for i := 1; i < len(frags); i++ {
		b.epsilon(frags[i-1].end, frags[i].start)
	}
	return &fragment{start: frags[0].start, end: frags[len(frags)-1].end}, nil
}

// Merge combines automata under a new start state 0 with epsilon transitions to each of their
// start states. States keep their accept annotations.
func Merge(nfas ...*NFA) *NFA {
	merged := &NFA{
		States: []*State{
			{ID: 0},
		},
		Start: 0,
	}
	for _, n := range nfas {
		offset := StateID(len(merged.States))
		for _, s := range n.States {
			c := &State{
				ID: s.ID + offset,
			}
			if s.Accept != nil {
				a := *s.Accept
				c.Accept = &a
			}
			for _, t := range s.Trans {
				c.Trans = append(c.Trans, &Transition{
					Epsilon: t.Epsilon,
					Range:   t.Range,
					To:      t.To + offset,
				})
			}
			merged.States = append(merged.States, c)
		}
		merged.States[0].Trans = append(merged.States[0].Trans, &Transition{
			Epsilon: true,
			To:      n.Start + offset,
		})
	}
	tracer().Debugf("merged %v automata into %v states", len(nfas), len(merged.States))
	return merged
}

// EpsilonClosure returns the states reachable from set through epsilon transitions, sorted.
func (n *NFA) EpsilonClosure(set []StateID) []StateID {
	seen := map[StateID]struct{}{}
	stack := make([]StateID, 0, len(set))
	for _, id := range set {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		stack = append(stack, id)
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, t := range n.States[id].Trans {
			if !t.Epsilon {
				continue
			}
			if _, ok := seen[t.To]; ok {
				continue
			}
			seen[t.To] = struct{}{}
			stack = append(stack, t.To)
		}
	}
	return sortedIDs(seen)
}

// Move returns the states reachable from set by reading c, sorted and without the epsilon closure.
func (n *NFA) Move(set []StateID, c rune) []StateID {
	seen := map[StateID]struct{}{}
	for _, id := range set {
		for _, t := range n.States[id].Trans {
			if t.Epsilon || !t.Range.Contains(c) {
				continue
			}
			seen[t.To] = struct{}{}
		}
	}
	return sortedIDs(seen)
}

// Winner returns the winning accept annotation among set.
func (n *NFA) Winner(set []StateID) *Accept {
	var win *Accept
	for _, id := range set {
		a := n.States[id].Accept
		if a != nil && a.Wins(win) {
			win = a
		}
	}
	return win
}

// Match simulates the automaton on the whole input and returns the winning accept annotation.
func (n *NFA) Match(input string) (*Accept, bool) {
	cur := n.EpsilonClosure([]StateID{n.Start})
	for _, c := range input {
		cur = n.EpsilonClosure(n.Move(cur, c))
		if len(cur) == 0 {
			return nil, false
		}
	}
	win := n.Winner(cur)
	return win, win != nil
}

func (n *NFA) Accepts(input string) bool {
	_, ok := n.Match(input)
	return ok
}

// Ranges returns the ranges of all non-epsilon transitions.
func (n *NFA) Ranges() []charset.Range {
	var rs []charset.Range
	for _, s := range n.States {
		for _, t := range s.Trans {
			if t.Epsilon {
				continue
			}
			rs = append(rs, t.Range)
		}
	}
	return rs
}

func sortedIDs(m map[StateID]struct{}) []StateID {
	ids := make([]StateID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})
	return ids
}

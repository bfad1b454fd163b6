package dfa

import (
	"fmt"
	"io"
	"strings"

	"github.com/nihei9/tabula/grammar/lexical/charset"
	"github.com/nihei9/tabula/grammar/lexical/nfa"
)

// WriteDot writes the automaton in the Graphviz DOT format. Classes leading to the same state are
// drawn as one edge.
func (d *DFA) WriteDot(w io.Writer) error {
	var b strings.Builder
	b.WriteString(`digraph {
graph [rankdir=LR, fontname=Helvetica, fontsize=10];
node [shape=circle, fontname=Helvetica, fontsize=10];
edge [fontname=Helvetica, fontsize=10];

start [shape=point]
start -> d0
`)
	for _, s := range d.States {
		if s.Accept != nil {
			fmt.Fprintf(&b, "d%v [shape=doublecircle, xlabel=\"%v\"]\n", s.ID, s.Accept)
		}
	}
	for _, s := range d.States {
		var targets []int
		ranges := map[int][]charset.Range{}
		for c, to := range s.Next {
			if to == StateNil {
				continue
			}
			if _, ok := ranges[to]; !ok {
				targets = append(targets, to)
			}
			ranges[to] = append(ranges[to], d.Classes[c])
		}
		for _, to := range targets {
			var labels []string
			for _, r := range charset.NewSet(ranges[to]...) {
				labels = append(labels, nfa.RangeLabel(r))
			}
			fmt.Fprintf(&b, "d%v -> d%v [label=\"%v\"]\n", s.ID, to, strings.Join(labels, ","))
		}
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

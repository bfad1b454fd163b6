package nfa

import (
	"fmt"
	"io"
	"strings"

	"github.com/nihei9/tabula/grammar/lexical/charset"
)

// WriteDot writes the automaton in the Graphviz DOT format.
func (n *NFA) WriteDot(w io.Writer) error {
	var b strings.Builder
	b.WriteString(`digraph {
graph [rankdir=LR, fontname=Helvetica, fontsize=10];
node [shape=circle, fontname=Helvetica, fontsize=10];
edge [fontname=Helvetica, fontsize=10];

`)
	fmt.Fprintf(&b, "start [shape=point]\nstart -> q%v\n", n.Start)
	for _, s := range n.States {
		if s.Accept != nil {
			fmt.Fprintf(&b, "q%v [shape=doublecircle, xlabel=\"%v\"]\n", s.ID, s.Accept)
		}
	}
	for _, s := range n.States {
		for _, t := range s.Trans {
			label := "ε"
			if !t.Epsilon {
				label = RangeLabel(t.Range)
			}
			fmt.Fprintf(&b, "q%v -> q%v [label=\"%v\"]\n", s.ID, t.To, label)
		}
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// RangeLabel renders a range for DOT edge labels.
func RangeLabel(r charset.Range) string {
	if r.From == r.To {
		return runeLabel(r.From)
	}
	return runeLabel(r.From) + "-" + runeLabel(r.To)
}

func runeLabel(c rune) string {
	if c > ' ' && c < 0x7f && c != '"' && c != '\\' {
		return string(c)
	}
	return fmt.Sprintf("U+%04X", c)
}

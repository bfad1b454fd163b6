package regex

import (
	"fmt"
	"io"
	"strings"

	"github.com/nihei9/tabula/grammar/lexical/charset"
)

// Node is a node of the abstract syntax tree of a pattern.
type Node interface {
	fmt.Stringer
	children() []Node
}

type Literal struct {
	Char rune
}

func (n *Literal) String() string {
	return fmt.Sprintf("literal: %q", n.Char)
}

func (n *Literal) children() []Node {
	return nil
}

// CharClass matches one code point of Set. Source keeps the notation the class was written in.
type CharClass struct {
	Set    charset.Set
	Source string
}

func (n *CharClass) String() string {
	return fmt.Sprintf("class: %v %v", n.Source, n.Set)
}

func (n *CharClass) children() []Node {
	return nil
}

type Concat struct {
	Left  Node
	Right Node
}

func (n *Concat) String() string {
	return "concat"
}

func (n *Concat) children() []Node {
	return []Node{n.Left, n.Right}
}

type Alt struct {
	Left  Node
	Right Node
}

func (n *Alt) String() string {
	return "alt"
}

func (n *Alt) children() []Node {
	return []Node{n.Left, n.Right}
}

type Star struct {
	Operand Node
}

func (n *Star) String() string {
	return "star"
}

func (n *Star) children() []Node {
	return []Node{n.Operand}
}

type Plus struct {
	Operand Node
}

func (n *Plus) String() string {
	return "plus"
}

func (n *Plus) children() []Node {
	return []Node{n.Operand}
}

type Optional struct {
	Operand Node
}

func (n *Optional) String() string {
	return "optional"
}

func (n *Optional) children() []Node {
	return []Node{n.Operand}
}

type Group struct {
	Operand Node
}

func (n *Group) String() string {
	return "group"
}

func (n *Group) children() []Node {
	return []Node{n.Operand}
}

// Repeat matches Operand at least Min times and at most Max times. Max is -1 when unbounded.
type Repeat struct {
	Operand Node
	Min     int
	Max     int
}

func (n *Repeat) String() string {
	if n.Max < 0 {
		return fmt.Sprintf("repeat: {%v,}", n.Min)
	}
	return fmt.Sprintf("repeat: {%v,%v}", n.Min, n.Max)
}

func (n *Repeat) children() []Node {
	return []Node{n.Operand}
}

// PrintTree writes a tree in a human-readable form.
func PrintTree(w io.Writer, n Node) {
	printTree(w, n, "", "")
}

func printTree(w io.Writer, n Node, ruledLine string, childRuledLinePrefix string) {
	if n == nil {
		return
	}
	fmt.Fprintf(w, "%v%v\n", ruledLine, n)
	children := n.children()
	for i, c := range children {
		if i == len(children)-1 {
			printTree(w, c, childRuledLinePrefix+"└─ ", childRuledLinePrefix+"   ")
			continue
		}
		printTree(w, c, childRuledLinePrefix+"├─ ", childRuledLinePrefix+"│  ")
	}
}

// Equal reports whether two trees have the same shape and the same characters.
func Equal(a, b Node) bool {
	var sa, sb strings.Builder
	PrintTree(&sa, a)
	PrintTree(&sb, b)
	return sa.String() == sb.String()
}

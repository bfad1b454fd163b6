package grammar

import (
	"fmt"
	"io"
	"strings"

	"github.com/nihei9/tabula/grammar/symbol"
)

// Analysis exposes the LR(0) canonical collection and the FIRST/FOLLOW sets of a grammar.
type Analysis struct {
	gram   *Grammar
	lr0    *lr0Automaton
	first  *firstSet
	follow *followSet
}

func Analyze(gram *Grammar) (*Analysis, error) {
	first, err := genFirstSet(gram.productionSet, gram.symbolTable)
	if err != nil {
		return nil, err
	}
	lr0, err := genLR0Automaton(gram.productionSet, gram.augmentedStartSymbol, gram.Symbols())
	if err != nil {
		return nil, err
	}
	follow, err := genFollowSet(gram.productionSet, first, gram.symbolTable)
	if err != nil {
		return nil, err
	}
	return &Analysis{
		gram:   gram,
		lr0:    lr0,
		first:  first,
		follow: follow,
	}, nil
}

func (a *Analysis) StateCount() int {
	return len(a.lr0.states)
}

// States returns the item sets of the canonical collection indexed by state number.
func (a *Analysis) States() []ItemSet {
	sets := make([]ItemSet, len(a.lr0.states))
	for i, s := range a.lr0.states {
		sets[i] = s.items
	}
	return sets
}

// Transition returns the state reached from state on sym.
func (a *Analysis) Transition(state int, sym symbol.Symbol) (int, bool) {
	if state < 0 || state >= len(a.lr0.states) {
		return 0, false
	}
	next, ok := a.lr0.states[state].next[sym]
	return next.Int(), ok
}

// AcceptState returns the state containing the item S' → S・.
func (a *Analysis) AcceptState() (int, error) {
	nums := a.lr0.acceptStates()
	if len(nums) != 1 {
		return 0, fmt.Errorf("the automaton must have exactly one accepting state; got: %v", len(nums))
	}
	return nums[0].Int(), nil
}

// First returns FIRST of a symbol in number order. FIRST of a terminal is the terminal itself.
func (a *Analysis) First(sym symbol.Symbol) ([]symbol.Symbol, error) {
	if !a.gram.symbolTable.Contains(sym) {
		return nil, &GrammarError{Cause: ErrUndefinedSymbol, Detail: sym.String()}
	}
	if sym.IsTerminal() {
		return []symbol.Symbol{sym}, nil
	}
	fst := a.first.findBySymbol(sym)
	if fst == nil {
		return nil, nil
	}
	return fst.symbols(), nil
}

// Follow returns FOLLOW of a non-terminal in number order. EOF appears as symbol.SymbolEOF.
func (a *Analysis) Follow(sym symbol.Symbol) ([]symbol.Symbol, error) {
	if !a.gram.symbolTable.Contains(sym) || !sym.IsNonTerminal() {
		return nil, &GrammarError{Cause: ErrUndefinedSymbol, Detail: sym.String()}
	}
	flw, err := a.follow.find(sym)
	if err != nil {
		return nil, nil
	}
	return flw.symbols(), nil
}

// WriteDot writes the LR(0) automaton in the Graphviz DOT format.
func (a *Analysis) WriteDot(w io.Writer) error {
	var b strings.Builder
	b.WriteString(`digraph {
graph [splines=true, fontname=Helvetica, fontsize=10];
node [shape=Mrecord, style=filled, fontname=Helvetica, fontsize=10];
edge [fontname=Helvetica, fontsize=10];

`)
	accepts := map[stateNum]struct{}{}
	for _, num := range a.lr0.acceptStates() {
		accepts[num] = struct{}{}
	}
	for _, s := range a.lr0.states {
		color := "white"
		if _, ok := accepts[s.num]; ok {
			color = "lightgray"
		}
		var items []string
		for _, item := range s.items.items {
			items = append(items, a.itemText(item))
		}
		fmt.Fprintf(&b, "s%03d [fillcolor=%s label=\"{%03d | %s}\"]\n", s.num, color, s.num, strings.Join(items, "\\l")+"\\l")
	}
	for _, s := range a.lr0.states {
		for _, sym := range s.nextSymbols() {
			fmt.Fprintf(&b, "s%03d -> s%03d [label=\"%s\"]\n", s.num, s.next[sym], labelEscape(a.gram.symbolText(sym)))
		}
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func (a *Analysis) itemText(item Item) string {
	prod, ok := a.gram.productionSet.findByNum(productionNum(item.Production))
	if !ok {
		return "?"
	}
	var b strings.Builder
	b.WriteString(dotEscape(a.gram.symbolText(prod.lhs)))
	b.WriteString(" →")
	for i, sym := range prod.rhs {
		if i == item.Dot {
			b.WriteString(" ・")
		}
		b.WriteString(" ")
		b.WriteString(dotEscape(a.gram.symbolText(sym)))
	}
	if item.Dot == prod.rhsLen {
		b.WriteString(" ・")
	}
	return b.String()
}

var dotReplacer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`{`, `\{`,
	`}`, `\}`,
	`|`, `\|`,
	`<`, `\<`,
	`>`, `\>`,
)

func dotEscape(s string) string {
	return dotReplacer.Replace(s)
}

var labelReplacer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
)

func labelEscape(s string) string {
	return labelReplacer.Replace(s)
}

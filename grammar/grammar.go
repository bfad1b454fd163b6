package grammar

import (
	"errors"
	"fmt"

	"github.com/nihei9/tabula/grammar/lexical"
	"github.com/nihei9/tabula/grammar/symbol"
)

type Grammar struct {
	name                 string
	symbolTable          *symbol.SymbolTableReader
	productionSet        *productionSet
	augmentedStartSymbol symbol.Symbol
	startSymbol          symbol.Symbol

	// lexSpec is nil when the grammar was declared without token patterns.
	lexSpec *lexical.LexSpec

	// kindToTerminal maps an index of lexSpec.Entries to a terminal number. Ignored kinds map to zero.
	kindToTerminal []int
}

func (g *Grammar) Name() string {
	return g.name
}

func (g *Grammar) SymbolTable() *symbol.SymbolTableReader {
	return g.symbolTable
}

// Start returns the user-designated start symbol.
func (g *Grammar) Start() symbol.Symbol {
	return g.startSymbol
}

// AugmentedStart returns S' of the production S' → S.
func (g *Grammar) AugmentedStart() symbol.Symbol {
	return g.augmentedStartSymbol
}

func (g *Grammar) Terminals() []symbol.Symbol {
	return g.symbolTable.TerminalSymbols()
}

func (g *Grammar) NonTerminals() []symbol.Symbol {
	return g.symbolTable.NonTerminalSymbols()
}

// Symbols returns the grammar alphabet: terminals in number order followed by non-terminals in
// number order. The canonical collection visits symbols in this order.
func (g *Grammar) Symbols() []symbol.Symbol {
	return append(g.Terminals(), g.NonTerminals()...)
}

// Production is a read-only view of a production.
type Production struct {
	Num int
	LHS symbol.Symbol
	RHS []symbol.Symbol
}

// Productions returns all productions, including the augmented start production, in number order.
func (g *Grammar) Productions() []*Production {
	var prods []*Production
	for _, p := range g.productionSet.all() {
		prods = append(prods, &Production{
			Num: p.num.Int(),
			LHS: p.lhs,
			RHS: append([]symbol.Symbol{}, p.rhs...),
		})
	}
	return prods
}

// LexSpec returns the token patterns attached to the grammar, or nil.
func (g *Grammar) LexSpec() *lexical.LexSpec {
	return g.lexSpec
}

// UnreachableNonTerminals returns non-terminals that no derivation of the start symbol uses.
func (g *Grammar) UnreachableNonTerminals() []symbol.Symbol {
	reached := map[symbol.Symbol]struct{}{
		g.augmentedStartSymbol: {},
	}
	stack := []symbol.Symbol{g.augmentedStartSymbol}
	for len(stack) > 0 {
		sym := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		prods, _ := g.productionSet.findByLHS(sym)
		for _, p := range prods {
			for _, s := range p.rhs {
				if !s.IsNonTerminal() {
					continue
				}
				if _, ok := reached[s]; ok {
					continue
				}
				reached[s] = struct{}{}
				stack = append(stack, s)
			}
		}
	}

	var unreached []symbol.Symbol
	for _, sym := range g.NonTerminals() {
		if _, ok := reached[sym]; !ok {
			unreached = append(unreached, sym)
		}
	}
	return unreached
}

func (g *Grammar) symbolText(sym symbol.Symbol) string {
	text, ok := g.symbolTable.ToText(sym)
	if !ok {
		return sym.String()
	}
	return text
}

func (g *Grammar) productionText(prod *production) string {
	s := g.symbolText(prod.lhs) + " →"
	for _, sym := range prod.rhs {
		s += " " + g.symbolText(sym)
	}
	return s
}

type rule struct {
	lhs symbol.Symbol
	rhs []symbol.Symbol
}

// Builder declares the symbols and productions of a grammar. Declarations are closed by Build;
// the returned Grammar is immutable.
type Builder struct {
	name   string
	symTab *symbol.SymbolTable
	rules  []*rule
	start  symbol.Symbol
	closed bool
}

func NewBuilder(name string) *Builder {
	return &Builder{
		name:   name,
		symTab: symbol.NewSymbolTable(),
	}
}

// Terminal declares a new terminal symbol. Each call yields a distinct symbol even when the name
// was used before.
func (b *Builder) Terminal(name string) (symbol.Symbol, error) {
	if b.closed {
		return symbol.SymbolNil, &GrammarError{Cause: ErrClosed, Detail: name}
	}
	return b.symTab.Writer().RegisterTerminalSymbol(name)
}

// NonTerminal declares a new non-terminal symbol.
func (b *Builder) NonTerminal(name string) (symbol.Symbol, error) {
	if b.closed {
		return symbol.SymbolNil, &GrammarError{Cause: ErrClosed, Detail: name}
	}
	return b.symTab.Writer().RegisterNonTerminalSymbol(name)
}

// Rule attaches the production lhs → rhs to the grammar. Every symbol must have been declared by
// this builder.
func (b *Builder) Rule(lhs symbol.Symbol, rhs ...symbol.Symbol) error {
	if b.closed {
		return &GrammarError{Cause: ErrClosed}
	}
	r := b.symTab.Reader()
	if !r.Contains(lhs) || lhs.IsStart() {
		return &GrammarError{Cause: ErrUndefinedSymbol, Detail: fmt.Sprintf("LHS %v", lhs)}
	}
	if !lhs.IsNonTerminal() {
		text, _ := r.ToText(lhs)
		return &GrammarError{Cause: ErrInvalidLHS, Detail: text}
	}
	for _, sym := range rhs {
		if !r.Contains(sym) || sym.IsStart() || sym.IsEOF() {
			return &GrammarError{Cause: ErrUndefinedSymbol, Detail: fmt.Sprintf("RHS %v", sym)}
		}
	}
	b.rules = append(b.rules, &rule{
		lhs: lhs,
		rhs: append([]symbol.Symbol{}, rhs...),
	})
	return nil
}

func (b *Builder) SetStart(sym symbol.Symbol) error {
	if b.closed {
		return &GrammarError{Cause: ErrClosed}
	}
	if !b.symTab.Reader().Contains(sym) || !sym.IsNonTerminal() || sym.IsStart() {
		return &GrammarError{Cause: ErrUndefinedSymbol, Detail: fmt.Sprintf("start symbol %v", sym)}
	}
	b.start = sym
	return nil
}

// Build closes the builder, validates the declarations, and augments the grammar with S' → S.
func (b *Builder) Build() (*Grammar, error) {
	if b.closed {
		return nil, &GrammarError{Cause: ErrClosed}
	}
	b.closed = true

	r := b.symTab.Reader()
	if b.start.IsNil() {
		return nil, &GrammarError{Cause: ErrNoStartSymbol}
	}
	startText, _ := r.ToText(b.start)
	{
		found := false
		for _, rl := range b.rules {
			if rl.lhs == b.start {
				found = true
				break
			}
		}
		if !found {
			return nil, &GrammarError{Cause: ErrNoStartProduction, Detail: startText}
		}
	}

	augStart, err := b.symTab.Writer().RegisterStartSymbol(startText + "'")
	if err != nil {
		return nil, err
	}

	prods := newProductionSet()
	{
		p, err := newProduction(augStart, []symbol.Symbol{b.start})
		if err != nil {
			return nil, err
		}
		if err := prods.add(p); err != nil {
			return nil, err
		}
	}
	for _, rl := range b.rules {
		p, err := newProduction(rl.lhs, rl.rhs)
		if err != nil {
			return nil, err
		}
		if err := prods.add(p); err != nil {
			var gErr *GrammarError
			if errors.As(err, &gErr) && gErr.Detail == "" {
				g := &Grammar{symbolTable: r}
				gErr.Detail = g.productionText(p)
			}
			return nil, err
		}
	}

	tracer().Debugf("grammar %v: %v terminals, %v non-terminals, %v productions",
		b.name, len(r.TerminalSymbols()), len(r.NonTerminalSymbols()), prods.count())

	return &Grammar{
		name:                 b.name,
		symbolTable:          r,
		productionSet:        prods,
		augmentedStartSymbol: augStart,
		startSymbol:          b.start,
	}, nil
}

package grammar

import (
	"errors"
	"strings"
	"testing"

	verr "github.com/nihei9/tabula/error"
	"github.com/nihei9/tabula/grammar/symbol"
	"github.com/nihei9/tabula/spec"
)

func TestBuilder(t *testing.T) {
	gb := NewBuilder("test")
	plus, _ := gb.Terminal("plus")
	id, _ := gb.Terminal("id")
	e, _ := gb.NonTerminal("e")
	tm, _ := gb.NonTerminal("t")
	for _, r := range [][]symbol.Symbol{
		{e, e, plus, tm},
		{e, tm},
		{tm, id},
	} {
		if err := gb.Rule(r[0], r[1:]...); err != nil {
			t.Fatal(err)
		}
	}
	if err := gb.SetStart(e); err != nil {
		t.Fatal(err)
	}
	gram, err := gb.Build()
	if err != nil {
		t.Fatal(err)
	}

	if gram.Name() != "test" {
		t.Fatalf("unexpected name: %v", gram.Name())
	}
	if gram.Start() != e {
		t.Fatalf("unexpected start symbol: %v", gram.Start())
	}
	aug := gram.AugmentedStart()
	if !aug.IsStart() {
		t.Fatalf("the augmented start symbol must be a start symbol: %v", aug)
	}
	if text, _ := gram.SymbolTable().ToText(aug); text != "e'" {
		t.Fatalf("unexpected name of the augmented start symbol: %v", text)
	}

	prods := gram.Productions()
	if len(prods) != 4 {
		t.Fatalf("unexpected production count: %v", len(prods))
	}
	if prods[0].Num != 1 || prods[0].LHS != aug || len(prods[0].RHS) != 1 || prods[0].RHS[0] != e {
		t.Fatalf("the augmented production must be production #1: %+v", prods[0])
	}
	for i, p := range prods {
		if p.Num != i+1 {
			t.Fatalf("productions must be numbered in declaration order: %+v", prods)
		}
	}

	syms := gram.Symbols()
	if len(syms) != len(gram.Terminals())+len(gram.NonTerminals()) {
		t.Fatalf("unexpected alphabet: %v", syms)
	}
	for i, sym := range syms {
		if i < len(gram.Terminals()) && !sym.IsTerminal() {
			t.Fatalf("terminals must precede non-terminals: %v", syms)
		}
	}

	_, err = gb.Terminal("x")
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("a built builder must be closed; got: %v", err)
	}
}

func TestBuilder_Error(t *testing.T) {
	tests := []struct {
		caption string
		build   func(gb *Builder) error
		cause   error
	}{
		{
			caption: "a symbol of another builder is undefined",
			build: func(gb *Builder) error {
				s, _ := gb.NonTerminal("s")
				other := NewBuilder("other")
				_, _ = other.Terminal("a")
				b, _ := other.Terminal("b")
				return gb.Rule(s, b)
			},
			cause: ErrUndefinedSymbol,
		},
		{
			caption: "the LHS must be a non-terminal",
			build: func(gb *Builder) error {
				a, _ := gb.Terminal("a")
				return gb.Rule(a, a)
			},
			cause: ErrInvalidLHS,
		},
		{
			caption: "duplicate productions are rejected",
			build: func(gb *Builder) error {
				a, _ := gb.Terminal("a")
				s, _ := gb.NonTerminal("s")
				_ = gb.Rule(s, a)
				_ = gb.Rule(s, a)
				_ = gb.SetStart(s)
				_, err := gb.Build()
				return err
			},
			cause: ErrDuplicateProduction,
		},
		{
			caption: "a grammar needs a start symbol",
			build: func(gb *Builder) error {
				a, _ := gb.Terminal("a")
				s, _ := gb.NonTerminal("s")
				_ = gb.Rule(s, a)
				_, err := gb.Build()
				return err
			},
			cause: ErrNoStartSymbol,
		},
		{
			caption: "the start symbol needs a production",
			build: func(gb *Builder) error {
				a, _ := gb.Terminal("a")
				s, _ := gb.NonTerminal("s")
				x, _ := gb.NonTerminal("x")
				_ = gb.Rule(x, a)
				_ = gb.SetStart(s)
				_, err := gb.Build()
				return err
			},
			cause: ErrNoStartProduction,
		},
		{
			caption: "a builder can be built only once",
			build: func(gb *Builder) error {
				a, _ := gb.Terminal("a")
				s, _ := gb.NonTerminal("s")
				_ = gb.Rule(s, a)
				_ = gb.SetStart(s)
				if _, err := gb.Build(); err != nil {
					return err
				}
				_, err := gb.Build()
				return err
			},
			cause: ErrClosed,
		},
		{
			caption: "a grammar needs a terminal symbol",
			build: func(gb *Builder) error {
				s, _ := gb.NonTerminal("s")
				x, _ := gb.NonTerminal("x")
				_ = gb.Rule(s, x)
				_ = gb.Rule(x, s)
				_ = gb.SetStart(s)
				gram, err := gb.Build()
				if err != nil {
					return err
				}
				_, _, err = Compile(gram)
				return err
			},
			cause: ErrGrammarHasNoTerminal,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			err := tt.build(NewBuilder("test"))
			if err == nil {
				t.Fatal("an error was not returned")
			}
			if !errors.Is(err, tt.cause) {
				t.Fatalf("unexpected error; want: %v, got: %v", tt.cause, err)
			}
			var gErr *GrammarError
			if !errors.As(err, &gErr) {
				t.Fatalf("the error must be a GrammarError: %T", err)
			}
		})
	}
}

func TestBuilder_SameNameTerminals(t *testing.T) {
	gb := NewBuilder("test")
	a1, _ := gb.Terminal("a")
	a2, _ := gb.Terminal("a")
	if a1 == a2 {
		t.Fatal("terminals declared twice must be distinct symbols")
	}
	s, _ := gb.NonTerminal("s")
	_ = gb.Rule(s, a1, a2)
	_ = gb.SetStart(s)
	gram, err := gb.Build()
	if err != nil {
		t.Fatal(err)
	}
	a, err := Analyze(gram)
	if err != nil {
		t.Fatal(err)
	}
	// 0: s' → ・s, 1: s → a ・a, 2: s' → s ・, 3: s → a a ・
	if a.StateCount() != 4 {
		t.Fatalf("unexpected state count: %v", a.StateCount())
	}
	fst, err := a.First(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(fst) != 1 || fst[0] != a1 {
		t.Fatalf("unexpected FIRST(s): %v", fst)
	}
}

func TestUnreachableNonTerminals(t *testing.T) {
	src := `{
  "name": "test",
  "tokens": [{"name": "a", "pattern": "a"}],
  "rules": [
    {"lhs": "s", "rhs": ["a"]},
    {"lhs": "x", "rhs": ["y"]},
    {"lhs": "y", "rhs": ["a"]}
  ]
}`
	gram := genTestGrammar(t, src)
	unreached := symbolTexts(t, gram.symbolTable, gram.UnreachableNonTerminals())
	if !equalStrings(unreached, []string{"x", "y"}) {
		t.Fatalf("unexpected unreachable non-terminals: %v", unreached)
	}
	if _, _, err := Compile(gram); err != nil {
		t.Fatalf("unreachable non-terminals must not be an error: %v", err)
	}
}

func TestGrammarBuilder_Error(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		cause   error
		row     int
	}{
		{
			caption: "a symbol that is neither a token nor an LHS is undefined",
			src: `{"name": "test", "tokens": [{"name": "a", "pattern": "a"}],
"rules": [{"lhs": "s", "rhs": ["a", "b"]}]}`,
			cause: ErrUndefinedSymbol,
			row:   2,
		},
		{
			caption: "an ignored token cannot appear in productions",
			src: `{"name": "test", "tokens": [{"name": "a", "pattern": "a"}],
"ignore": [{"name": "ws", "pattern": " "}],
"rules": [
  {"lhs": "s", "rhs": ["a", "ws"]}
]}`,
			cause: ErrTermCannotBeIgnored,
			row:   4,
		},
		{
			caption: "a token name cannot be an LHS",
			src: `{"name": "test", "tokens": [{"name": "a", "pattern": "a"}],
"rules": [{"lhs": "s", "rhs": ["a"]}, {"lhs": "a", "rhs": ["a"]}]}`,
			cause: ErrDuplicateName,
			row:   2,
		},
		{
			caption: "the designated start symbol needs a production",
			src: `{"name": "test", "start": "x", "tokens": [{"name": "a", "pattern": "a"}],
"rules": [{"lhs": "s", "rhs": ["a"]}]}`,
			cause: ErrNoStartProduction,
			row:   1,
		},
		{
			caption: "duplicate rules are rejected",
			src: `{"name": "test", "tokens": [{"name": "a", "pattern": "a"}],
"rules": [{"lhs": "s", "rhs": ["a"]}, {"lhs": "s", "rhs": ["a"]}]}`,
			cause: ErrDuplicateProduction,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			def, err := spec.Parse(strings.NewReader(tt.src))
			if err != nil {
				t.Fatal(err)
			}
			b := GrammarBuilder{
				Def: def,
			}
			_, err = b.Build()
			if err == nil {
				t.Fatal("an error was not returned")
			}
			specErrs, ok := err.(verr.SpecErrors)
			if !ok {
				t.Fatalf("unexpected error type: %T (%v)", err, err)
			}
			if !errors.Is(specErrs[0], tt.cause) {
				t.Fatalf("unexpected cause; want: %v, got: %v", tt.cause, specErrs[0].Cause)
			}
			if tt.row != 0 && specErrs[0].Row != tt.row {
				t.Fatalf("unexpected row; want: %v, got: %v", tt.row, specErrs[0].Row)
			}
		})
	}
}

func TestProductionSet(t *testing.T) {
	w := symbol.NewSymbolTable().Writer()
	start, _ := w.RegisterStartSymbol("s'")
	s, _ := w.RegisterNonTerminalSymbol("s")
	a, _ := w.RegisterTerminalSymbol("a")
	b, _ := w.RegisterTerminalSymbol("b")

	newProd := func(lhs symbol.Symbol, rhs ...symbol.Symbol) *production {
		t.Helper()
		p, err := newProduction(lhs, rhs)
		if err != nil {
			t.Fatal(err)
		}
		return p
	}

	ps := newProductionSet()
	for _, p := range []*production{
		newProd(s, a, b),
		newProd(start, s),
		newProd(s, b),
	} {
		if err := ps.add(p); err != nil {
			t.Fatal(err)
		}
	}

	nums := []productionNum{}
	for _, p := range ps.all() {
		nums = append(nums, p.num)
	}
	if len(nums) != 3 || nums[0] != productionNumStart || nums[1] != 2 || nums[2] != 3 {
		t.Fatalf("the augmented production must be #1 and the others must follow declaration order: %v", nums)
	}
	if p, ok := ps.findByKey(keyOf(s, []symbol.Symbol{b})); !ok || p.num != 3 {
		t.Fatalf("a production must be found by its content: %+v", p)
	}
	if _, ok := ps.findByKey(keyOf(s, []symbol.Symbol{b, a})); ok {
		t.Fatal("a body in another order is another production")
	}
	if prods, ok := ps.findByLHS(s); !ok || len(prods) != 2 {
		t.Fatalf("unexpected productions of s: %v", prods)
	}

	err := ps.add(newProd(s, a, b))
	if !errors.Is(err, ErrDuplicateProduction) {
		t.Fatalf("a duplicate production must be rejected; got: %v", err)
	}
	err = ps.add(newProd(start, s, a))
	if !errors.Is(err, ErrDuplicateProduction) {
		t.Fatalf("a second augmented production must be rejected; got: %v", err)
	}

	ps.next = productionNumMax
	err = ps.add(newProd(s, a))
	if !errors.Is(err, ErrTooManyProductions) {
		t.Fatalf("production numbers must not wrap around; got: %v", err)
	}

	if _, err := newProduction(a, []symbol.Symbol{b}); !errors.Is(err, ErrInvalidLHS) {
		t.Fatalf("a terminal cannot be an LHS; got: %v", err)
	}
}

package grammar

import (
	"fmt"
	"testing"

	"github.com/nihei9/tabula/grammar/symbol"
)

// lalrGrammarSrc belongs to the LALR(1) class, not SLR(1).
const lalrGrammarSrc = `{
  "name": "test",
  "tokens": [
    {"name": "eq", "pattern": "="},
    {"name": "ref", "pattern": "\\*"},
    {"name": "id", "pattern": "[A-Za-z0-9_]+"}
  ],
  "rules": [
    {"lhs": "S", "rhs": ["L", "eq", "R"]},
    {"lhs": "S", "rhs": ["R"]},
    {"lhs": "L", "rhs": ["ref", "R"]},
    {"lhs": "L", "rhs": ["id"]},
    {"lhs": "R", "rhs": ["L"]}
  ]
}`

type expectedLookAhead struct {
	item      Item
	lookAhead []string
}

func TestGenLALR1Automaton(t *testing.T) {
	gram := genTestGrammar(t, lalrGrammarSrc)

	var automaton *lalr1Automaton
	{
		lr0, err := genLR0Automaton(gram.productionSet, gram.augmentedStartSymbol, gram.Symbols())
		if err != nil {
			t.Fatalf("failed to create a LR0 automaton: %v", err)
		}

		firstSet, err := genFirstSet(gram.productionSet, gram.symbolTable)
		if err != nil {
			t.Fatalf("failed to create a FIRST set: %v", err)
		}

		automaton, err = genLALR1Automaton(lr0, gram.productionSet, firstSet)
		if err != nil {
			t.Fatalf("failed to create a LALR1 automaton: %v", err)
		}
		if automaton == nil {
			t.Fatalf("genLALR1Automaton returns nil without any error")
		}
	}

	genSym := newTestSymbolGenerator(t, gram.symbolTable)
	genProd := newTestProductionGenerator(t, genSym, gram.productionSet)
	genItem := newTestItemGenerator(t, genProd)

	eof := symbol.SymbolNameEOF
	expected := [][]*expectedLookAhead{
		{
			{genItem("S'", 0, "S"), []string{eof}},
		},
		{
			{genItem("L", 1, "ref", "R"), []string{eof, "eq"}},
		},
		{
			{genItem("L", 1, "id"), []string{eof, "eq"}},
		},
		{
			{genItem("S'", 1, "S"), []string{eof}},
		},
		{
			{genItem("S", 1, "L", "eq", "R"), []string{eof}},
			{genItem("R", 1, "L"), []string{eof}},
		},
		{
			{genItem("S", 1, "R"), []string{eof}},
		},
		{
			{genItem("R", 1, "L"), []string{eof, "eq"}},
		},
		{
			{genItem("L", 2, "ref", "R"), []string{eof, "eq"}},
		},
		{
			{genItem("S", 2, "L", "eq", "R"), []string{eof}},
		},
		{
			{genItem("S", 3, "L", "eq", "R"), []string{eof}},
		},
	}

	testLookAhead(t, gram, automaton.lr0Automaton, expected)
}

func TestGenLALR1Automaton_EmptyProduction(t *testing.T) {
	gb := NewBuilder("test")
	a, _ := gb.Terminal("a")
	s, _ := gb.NonTerminal("s")
	x, _ := gb.NonTerminal("x")
	_ = gb.Rule(s, a, x)
	_ = gb.Rule(x)
	_ = gb.SetStart(s)
	gram, err := gb.Build()
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = Compile(gram)
	if err == nil {
		t.Fatal("an empty production must be rejected")
	}
	if _, ok := err.(*UnsupportedError); !ok {
		t.Fatalf("unexpected error: %T (%v)", err, err)
	}
}

func testLookAhead(t *testing.T, gram *Grammar, automaton *lr0Automaton, expected [][]*expectedLookAhead) {
	t.Helper()

	if len(automaton.states) != len(expected) {
		t.Fatalf("state count is mismatched; want: %v, got: %v", len(expected), len(automaton.states))
	}
	for i, eItems := range expected {
		t.Run(fmt.Sprintf("state #%v", i), func(t *testing.T) {
			state := automaton.states[i]
			for _, e := range eItems {
				item, ok := state.findItem(lrItemID{
					prod: productionNum(e.item.Production),
					dot:  e.item.Dot,
				})
				if !ok {
					t.Fatalf("an item was not found: %v", e.item)
				}
				actual := symbolTexts(t, gram.symbolTable, item.lookAhead.sorted())
				if !equalStrings(actual, e.lookAhead) {
					t.Errorf("look-ahead symbols are mismatched; item: %v\nwant: %v\ngot: %v", e.item, e.lookAhead, actual)
				}
			}
		})
	}
}

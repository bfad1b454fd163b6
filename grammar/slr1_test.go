package grammar

import (
	"testing"

	"github.com/nihei9/tabula/grammar/symbol"
)

func TestGenSLR1Automaton(t *testing.T) {
	gram := genTestGrammar(t, exprGrammarSrc)

	var automaton *slr1Automaton
	{
		lr0, err := genLR0Automaton(gram.productionSet, gram.augmentedStartSymbol, gram.Symbols())
		if err != nil {
			t.Fatalf("failed to create a LR0 automaton: %v", err)
		}

		firstSet, err := genFirstSet(gram.productionSet, gram.symbolTable)
		if err != nil {
			t.Fatalf("failed to create a FIRST set: %v", err)
		}

		followSet, err := genFollowSet(gram.productionSet, firstSet, gram.symbolTable)
		if err != nil {
			t.Fatalf("failed to create a FOLLOW set: %v", err)
		}

		automaton, err = genSLR1Automaton(lr0, gram.productionSet, followSet)
		if err != nil {
			t.Fatalf("failed to create a SLR1 automaton: %v", err)
		}
		if automaton == nil {
			t.Fatalf("genSLR1Automaton returns nil without any error")
		}
	}

	genSym := newTestSymbolGenerator(t, gram.symbolTable)
	genProd := newTestProductionGenerator(t, genSym, gram.productionSet)
	genItem := newTestItemGenerator(t, genProd)

	// Only reducible items get look-ahead symbols.
	eof := symbol.SymbolNameEOF
	followExpr := []string{eof, "add", "r_paren"}
	followTerm := []string{eof, "add", "mul", "r_paren"}
	expected := [][]*expectedLookAhead{
		{
			{genItem("expr'", 0, "expr"), nil},
		},
		{
			{genItem("factor", 1, "l_paren", "expr", "r_paren"), nil},
		},
		{
			{genItem("factor", 1, "id"), followTerm},
		},
		{
			{genItem("expr'", 1, "expr"), []string{eof}},
			{genItem("expr", 1, "expr", "add", "term"), nil},
		},
		{
			{genItem("expr", 1, "term"), followExpr},
			{genItem("term", 1, "term", "mul", "factor"), nil},
		},
		{
			{genItem("term", 1, "factor"), followTerm},
		},
		{
			{genItem("expr", 1, "expr", "add", "term"), nil},
			{genItem("factor", 2, "l_paren", "expr", "r_paren"), nil},
		},
		{
			{genItem("expr", 2, "expr", "add", "term"), nil},
		},
		{
			{genItem("term", 2, "term", "mul", "factor"), nil},
		},
		{
			{genItem("factor", 3, "l_paren", "expr", "r_paren"), followTerm},
		},
		{
			{genItem("expr", 3, "expr", "add", "term"), followExpr},
			{genItem("term", 1, "term", "mul", "factor"), nil},
		},
		{
			{genItem("term", 3, "term", "mul", "factor"), followTerm},
		},
	}

	testLookAhead(t, gram, automaton.lr0Automaton, expected)
}

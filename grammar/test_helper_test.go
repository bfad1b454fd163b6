package grammar

import (
	"strings"
	"testing"

	"github.com/nihei9/tabula/grammar/symbol"
	"github.com/nihei9/tabula/spec"
)

const exprGrammarSrc = `{
  "name": "expr",
  "tokens": [
    {"name": "add", "pattern": "\\+"},
    {"name": "mul", "pattern": "\\*"},
    {"name": "l_paren", "pattern": "\\("},
    {"name": "r_paren", "pattern": "\\)"},
    {"name": "id", "pattern": "[A-Za-z_][0-9A-Za-z_]*"}
  ],
  "ignore": [
    {"name": "ws", "pattern": "[ \\t\\n]+"}
  ],
  "rules": [
    {"lhs": "expr", "rhs": ["expr", "add", "term"]},
    {"lhs": "expr", "rhs": ["term"]},
    {"lhs": "term", "rhs": ["term", "mul", "factor"]},
    {"lhs": "term", "rhs": ["factor"]},
    {"lhs": "factor", "rhs": ["l_paren", "expr", "r_paren"]},
    {"lhs": "factor", "rhs": ["id"]}
  ]
}`

func genTestGrammar(t *testing.T, src string) *Grammar {
	t.Helper()

	def, err := spec.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	b := GrammarBuilder{
		Def: def,
	}
	gram, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return gram
}

type testSymbolGenerator func(text string) symbol.Symbol

func newTestSymbolGenerator(t *testing.T, symTab *symbol.SymbolTableReader) testSymbolGenerator {
	return func(text string) symbol.Symbol {
		t.Helper()

		sym, ok := symTab.ToSymbol(text)
		if !ok {
			t.Fatalf("symbol was not found: %v", text)
		}
		return sym
	}
}

type testProductionGenerator func(lhs string, rhs ...string) *production

// newTestProductionGenerator returns a generator that looks productions up in prods, so the
// generated productions carry their numbers.
func newTestProductionGenerator(t *testing.T, genSym testSymbolGenerator, prods *productionSet) testProductionGenerator {
	return func(lhs string, rhs ...string) *production {
		t.Helper()

		rhsSym := []symbol.Symbol{}
		for _, text := range rhs {
			rhsSym = append(rhsSym, genSym(text))
		}
		prod, ok := prods.findByKey(keyOf(genSym(lhs), rhsSym))
		if !ok {
			t.Fatalf("production was not found: %v → %v", lhs, rhs)
		}

		return prod
	}
}

type testItemGenerator func(lhs string, dot int, rhs ...string) Item

func newTestItemGenerator(t *testing.T, genProd testProductionGenerator) testItemGenerator {
	return func(lhs string, dot int, rhs ...string) Item {
		t.Helper()

		prod := genProd(lhs, rhs...)
		item, err := newLR0Item(prod, dot)
		if err != nil {
			t.Fatalf("failed to create a LR0 item: %v", err)
		}

		return item.item()
	}
}

func symbolTexts(t *testing.T, symTab *symbol.SymbolTableReader, syms []symbol.Symbol) []string {
	t.Helper()

	texts := make([]string, len(syms))
	for i, sym := range syms {
		text, ok := symTab.ToText(sym)
		if !ok {
			t.Fatalf("symbol was not found: %v", sym)
		}
		texts[i] = text
	}
	return texts
}

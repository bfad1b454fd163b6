package main

import (
	"strings"
	"testing"

	"github.com/nihei9/tabula/grammar"
	"github.com/nihei9/tabula/spec"
)

func TestWriteReport(t *testing.T) {
	src := `{
  "name": "expr",
  "tokens": [{"name": "id", "pattern": "[a-z]+"}, {"name": "add", "pattern": "\\+"}],
  "rules": [{"lhs": "expr", "rhs": ["expr", "add", "expr"]}, {"lhs": "expr", "rhs": ["id"]}]
}`
	def, err := spec.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	b := grammar.GrammarBuilder{
		Def: def,
	}
	gram, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	_, report, err := grammar.Compile(gram, grammar.EnableReporting(), grammar.AllowConflicts())
	if err != nil {
		t.Fatal(err)
	}

	var w strings.Builder
	err = writeReport(&w, report)
	if err != nil {
		t.Fatal(err)
	}
	out := w.String()
	for _, s := range []string{
		"# expr (lalr1)",
		"1 shift/reduce and 0 reduce/reduce conflicts",
		"# Terminals",
		"[a-z]+",
		"expr → expr add expr",
		"## State 0",
		"shift/reduce conflict",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("the report doesn't contain %q:\n%v", s, out)
		}
	}
}

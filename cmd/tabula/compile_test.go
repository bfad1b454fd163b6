package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMakeOutputFilePaths(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path       string
		cgramPath  string
		reportPath string
	}{
		{
			path:       "",
			cgramPath:  "",
			reportPath: filepath.Join(wd, "expr-report.json"),
		},
		{
			path:       dir,
			cgramPath:  filepath.Join(dir, "expr.json"),
			reportPath: filepath.Join(dir, "expr-report.json"),
		},
		{
			path:       filepath.Join(dir, "out.json"),
			cgramPath:  filepath.Join(dir, "out.json"),
			reportPath: filepath.Join(dir, "expr-report.json"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			cgramPath, reportPath, err := makeOutputFilePaths("expr", tt.path)
			if err != nil {
				t.Fatal(err)
			}
			if cgramPath != tt.cgramPath {
				t.Errorf("unexpected path of the compiled grammar; want: %v, got: %v", tt.cgramPath, cgramPath)
			}
			if reportPath != tt.reportPath {
				t.Errorf("unexpected path of the report; want: %v, got: %v", tt.reportPath, reportPath)
			}
		})
	}
}

func TestReadGrammar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expr.json")
	src := `{
  "name": "expr",
  "tokens": [{"name": "id", "pattern": "[a-z]+"}, {"name": "add", "pattern": "\\+"}],
  "rules": [{"lhs": "expr", "rhs": ["expr", "add", "id"]}, {"lhs": "expr", "rhs": ["id"]}]
}`
	err := os.WriteFile(path, []byte(src), 0600)
	if err != nil {
		t.Fatal(err)
	}

	gram, err := readGrammar(path)
	if err != nil {
		t.Fatal(err)
	}
	if gram.Name() != "expr" {
		t.Fatalf("unexpected name: %v", gram.Name())
	}
	if gram.LexSpec() == nil || len(gram.LexSpec().Entries) != 2 {
		t.Fatalf("unexpected lexical specification: %v", gram.LexSpec())
	}

	_, err = readGrammar(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("an error must occur")
	}
}

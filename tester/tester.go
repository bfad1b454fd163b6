// Package tester runs lexical test cases against a compiled grammar.
package tester

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nihei9/tabula/driver/lexer"
	spec "github.com/nihei9/tabula/spec/grammar"
)

type TokenDiff struct {
	Index    int
	Expected string
	Actual   string
}

type TestResult struct {
	TestCasePath string
	Error        error
	Diffs        []*TokenDiff
}

func (r *TestResult) String() string {
	if r.Error == nil {
		return fmt.Sprintf("Passed %v", r.TestCasePath)
	}

	const indent = "    "
	var b strings.Builder
	fmt.Fprintf(&b, "Failed %v:", r.TestCasePath)
	for _, line := range strings.Split(r.Error.Error(), "\n") {
		fmt.Fprintf(&b, "\n%v%v", indent, line)
	}
	for _, diff := range r.Diffs {
		fmt.Fprintf(&b, "\n%vtoken #%v", indent+indent, diff.Index)
		fmt.Fprintf(&b, "\n%vexpected: %v", indent+indent+indent, diff.Expected)
		fmt.Fprintf(&b, "\n%vactual:   %v", indent+indent+indent, diff.Actual)
	}
	return b.String()
}

type TestCaseWithMetadata struct {
	TestCase *TestCase
	FilePath string
	Error    error
}

// ListTestCases reads the test case at testPath, or every test case under it when it is a
// directory. A file that cannot be read or parsed is listed with its error.
func ListTestCases(testPath string) []*TestCaseWithMetadata {
	var cases []*TestCaseWithMetadata
	err := filepath.WalkDir(testPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			cases = append(cases, &TestCaseWithMetadata{
				FilePath: path,
				Error:    err,
			})
			return nil
		}
		if d.IsDir() {
			return nil
		}
		c, err := parseTestCase(path)
		cases = append(cases, &TestCaseWithMetadata{
			TestCase: c,
			FilePath: path,
			Error:    err,
		})
		return nil
	})
	if err != nil {
		cases = append(cases, &TestCaseWithMetadata{
			FilePath: testPath,
			Error:    err,
		})
	}
	return cases
}

func parseTestCase(testCasePath string) (*TestCase, error) {
	f, err := os.Open(testCasePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseTestCase(f)
}

type Tester struct {
	Grammar *spec.CompiledGrammar
	Cases   []*TestCaseWithMetadata
}

func (t *Tester) Run() []*TestResult {
	var rs []*TestResult
	for _, c := range t.Cases {
		rs = append(rs, runTest(t.Grammar, c))
	}
	return rs
}

func runTest(g *spec.CompiledGrammar, c *TestCaseWithMetadata) *TestResult {
	res := &TestResult{
		TestCasePath: c.FilePath,
	}
	diffs, err := diffTokens(g, c.TestCase)
	if err != nil {
		res.Error = err
		return res
	}
	if len(diffs) > 0 {
		res.Error = fmt.Errorf("output mismatch")
		res.Diffs = diffs
	}
	return res
}

func diffTokens(g *spec.CompiledGrammar, tc *TestCase) ([]*TokenDiff, error) {
	if g.Lexical == nil {
		return nil, fmt.Errorf("the grammar has no lexical specification")
	}
	l, err := lexer.NewLexer(g.Lexical, bytes.NewReader(tc.Source), lexer.SkipIgnoredTokens())
	if err != nil {
		return nil, err
	}
	toks, err := l.Tokenize()
	if err != nil {
		return nil, err
	}
	// Drop the EOF token.
	toks = toks[:len(toks)-1]

	var diffs []*TokenDiff
	for i := 0; i < len(toks) || i < len(tc.Output); i++ {
		var expected, actual string
		withLexeme := false
		if i < len(tc.Output) {
			expected = tc.Output[i].String()
			withLexeme = tc.Output[i].HasLexeme
		}
		if i < len(toks) {
			actual = describeToken(toks[i], withLexeme)
		}
		if expected != actual {
			diffs = append(diffs, &TokenDiff{
				Index:    i,
				Expected: expected,
				Actual:   actual,
			})
		}
	}
	return diffs, nil
}

func describeToken(tok *lexer.Token, withLexeme bool) string {
	kind := tok.KindName
	if tok.Invalid {
		kind = KindNameInvalid
	}
	e := &ExpectedToken{
		Kind:      kind,
		Lexeme:    string(tok.Lexeme),
		HasLexeme: withLexeme,
	}
	return e.String()
}

package tester

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// TestCase is a lexical test case. The file format is:
//
//	description
//	---
//	source text
//	---
//	kind "lexeme"
//	kind "lexeme"
//
// Each output line names a kind, optionally followed by the quoted lexeme. Tokens of ignored kinds
// are not listed, and an unmatched text is listed with the kind name `<invalid>`.
type TestCase struct {
	Description string
	Source      []byte
	Output      []*ExpectedToken
}

type ExpectedToken struct {
	Kind string

	// Lexeme is checked only when HasLexeme is true.
	Lexeme    string
	HasLexeme bool
}

func (t *ExpectedToken) String() string {
	if t.HasLexeme {
		return fmt.Sprintf("%v %q", t.Kind, t.Lexeme)
	}
	return t.Kind
}

const KindNameInvalid = "<invalid>"

func ParseTestCase(r io.Reader) (*TestCase, error) {
	parts, err := splitIntoParts(r)
	if err != nil {
		return nil, err
	}
	if len(parts) != 3 {
		return nil, fmt.Errorf("too many or too few part delimiters: a test case consists of just tree parts: %v parts found", len(parts))
	}

	var out []*ExpectedToken
	for i, line := range strings.Split(parts[2], "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		tok, err := parseExpectedToken(line)
		if err != nil {
			return nil, fmt.Errorf("output line %v: %w", i+1, err)
		}
		out = append(out, tok)
	}

	return &TestCase{
		Description: parts[0],
		Source:      []byte(parts[1]),
		Output:      out,
	}, nil
}

func parseExpectedToken(line string) (*ExpectedToken, error) {
	kind, rest, found := strings.Cut(line, " ")
	if !found {
		return &ExpectedToken{Kind: kind}, nil
	}
	lexeme, err := strconv.Unquote(strings.TrimSpace(rest))
	if err != nil {
		return nil, fmt.Errorf("a lexeme must be a quoted string: %v", rest)
	}
	return &ExpectedToken{
		Kind:      kind,
		Lexeme:    lexeme,
		HasLexeme: true,
	}, nil
}

func splitIntoParts(r io.Reader) ([]string, error) {
	var parts []string
	var lines []string
	s := bufio.NewScanner(r)
	for s.Scan() {
		if s.Text() == "---" {
			parts = append(parts, strings.Join(lines, "\n"))
			lines = nil
			continue
		}
		lines = append(lines, s.Text())
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return append(parts, strings.Join(lines, "\n")), nil
}

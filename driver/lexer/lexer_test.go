package lexer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nihei9/tabula/grammar/lexical"
	spec "github.com/nihei9/tabula/spec/grammar"
)

func newLexEntry(kind string, pattern string) *lexical.LexEntry {
	return &lexical.LexEntry{
		Kind:    kind,
		Pattern: pattern,
	}
}

func newIgnoreEntry(kind string, pattern string) *lexical.LexEntry {
	return &lexical.LexEntry{
		Kind:    kind,
		Pattern: pattern,
		Ignore:  true,
	}
}

func newToken(kindID KindID, kindName string, lexeme string) *Token {
	return &Token{
		KindID:   kindID,
		KindName: kindName,
		Lexeme:   []byte(lexeme),
	}
}

func withPos(tok *Token, row, col int) *Token {
	tok.Row = row
	tok.Col = col
	return tok
}

func newIgnoredToken(kindID KindID, kindName string, lexeme string) *Token {
	tok := newToken(kindID, kindName, lexeme)
	tok.Ignored = true
	return tok
}

func newEOFToken(kindID KindID) *Token {
	return &Token{
		KindID: kindID,
		EOF:    true,
	}
}

func newInvalidToken(lexeme string) *Token {
	return &Token{
		Lexeme:  []byte(lexeme),
		Invalid: true,
	}
}

func TestLexer_Next(t *testing.T) {
	tests := []struct {
		lspec  *lexical.LexSpec
		opts   []lexical.CompileOption
		src    string
		tokens []*Token
	}{
		{
			lspec: &lexical.LexSpec{
				Entries: []*lexical.LexEntry{
					newLexEntry("t1", "(a|b)*abb"),
					newLexEntry("t2", " +"),
				},
			},
			src: "abb aabb   aaabb babb bbabb abbbabb",
			tokens: []*Token{
				newToken(0, "t1", "abb"),
				newToken(1, "t2", " "),
				newToken(0, "t1", "aabb"),
				newToken(1, "t2", "   "),
				newToken(0, "t1", "aaabb"),
				newToken(1, "t2", " "),
				newToken(0, "t1", "babb"),
				newToken(1, "t2", " "),
				newToken(0, "t1", "bbabb"),
				newToken(1, "t2", " "),
				newToken(0, "t1", "abbbabb"),
				newEOFToken(-1),
			},
		},
		{
			lspec: &lexical.LexSpec{
				Entries: []*lexical.LexEntry{
					newLexEntry("if", "if"),
					newLexEntry("id", "[a-z_][a-z0-9_]*"),
					newLexEntry("num", "[0-9]+"),
					newIgnoreEntry("ws", "[ \t\n]+"),
				},
			},
			opts: []lexical.CompileOption{
				lexical.EOFToken(100),
			},
			src: "if iff x1 42",
			tokens: []*Token{
				newToken(0, "if", "if"),
				newIgnoredToken(3, "ws", " "),
				newToken(1, "id", "iff"),
				newIgnoredToken(3, "ws", " "),
				newToken(1, "id", "x1"),
				newIgnoredToken(3, "ws", " "),
				newToken(2, "num", "42"),
				newEOFToken(100),
			},
		},
		{
			lspec: &lexical.LexSpec{
				Entries: []*lexical.LexEntry{
					newLexEntry("word", "[a-z]+"),
				},
			},
			src: "ab??cd!",
			tokens: []*Token{
				newToken(0, "word", "ab"),
				newInvalidToken("??"),
				newToken(0, "word", "cd"),
				newInvalidToken("!"),
				newEOFToken(-1),
			},
		},
		{
			lspec: &lexical.LexSpec{
				Entries: []*lexical.LexEntry{
					newLexEntry("hira", "[ぁ-ゖ]+"),
					newLexEntry("kata", "[ァ-ヺ]+"),
				},
			},
			src: "ひらがなカタカナ",
			tokens: []*Token{
				newToken(0, "hira", "ひらがな"),
				newToken(1, "kata", "カタカナ"),
				newEOFToken(-1),
			},
		},
		{
			lspec: &lexical.LexSpec{
				Entries: []*lexical.LexEntry{
					newLexEntry("abc", "abc"),
					newLexEntry("a", "a"),
				},
			},
			src: "abab",
			tokens: []*Token{
				newToken(1, "a", "a"),
				newInvalidToken("b"),
				newToken(1, "a", "a"),
				newInvalidToken("b"),
				newEOFToken(-1),
			},
		},
	}
	for i, tt := range tests {
		for compLv := lexical.CompressionLevelMin; compLv <= lexical.CompressionLevelMax; compLv++ {
			t.Run(fmt.Sprintf("#%v-%v", i, compLv), func(t *testing.T) {
				clspec := compileLexSpec(t, tt.lspec, append(tt.opts, lexical.CompressionLevel(compLv))...)
				lexer, err := NewLexer(clspec, strings.NewReader(tt.src))
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				for _, eTok := range tt.tokens {
					tok, err := lexer.Next()
					if err != nil {
						t.Fatal(err)
					}
					testToken(t, eTok, tok, false)
					if tok.EOF {
						break
					}
				}
			})
		}
	}
}

func TestLexer_Position(t *testing.T) {
	clspec := compileLexSpec(t, &lexical.LexSpec{
		Entries: []*lexical.LexEntry{
			newLexEntry("word", "[a-zあ-ん]+"),
			newLexEntry("nl", "\\n"),
			newIgnoreEntry("ws", " +"),
		},
	})
	lexer, err := NewLexer(clspec, strings.NewReader("ab  あい\ncd\n\nx"), SkipIgnoredTokens())
	if err != nil {
		t.Fatal(err)
	}
	expected := []*Token{
		withPos(newToken(0, "word", "ab"), 0, 0),
		withPos(newToken(0, "word", "あい"), 0, 4),
		withPos(newToken(1, "nl", "\n"), 0, 6),
		withPos(newToken(0, "word", "cd"), 1, 0),
		withPos(newToken(1, "nl", "\n"), 1, 2),
		withPos(newToken(1, "nl", "\n"), 2, 0),
		withPos(newToken(0, "word", "x"), 3, 0),
		withPos(newEOFToken(-1), 3, 1),
	}
	toks, err := lexer.Tokenize()
	if err != nil {
		t.Fatal(err)
	}
	if len(toks) != len(expected) {
		t.Fatalf("unexpected token count; want: %v, got: %v", len(expected), len(toks))
	}
	for i, eTok := range expected {
		testToken(t, eTok, toks[i], true)
	}
}

func compileLexSpec(t *testing.T, lspec *lexical.LexSpec, opts ...lexical.CompileOption) *spec.LexicalSpec {
	t.Helper()

	lex, err := lexical.Compile(lspec, opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clspec, err := lex.Spec()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return clspec
}

func testToken(t *testing.T, expected, actual *Token, checkPosition bool) {
	t.Helper()

	if actual.KindID != expected.KindID ||
		actual.KindName != expected.KindName ||
		string(actual.Lexeme) != string(expected.Lexeme) ||
		actual.EOF != expected.EOF ||
		actual.Invalid != expected.Invalid ||
		actual.Ignored != expected.Ignored {
		t.Fatalf(`unexpected token; want: %+v ("%#v"), got: %+v ("%#v")`, expected, string(expected.Lexeme), actual, string(actual.Lexeme))
	}

	if checkPosition {
		if actual.Row != expected.Row || actual.Col != expected.Col {
			t.Fatalf(`unexpected token; want: %v (%v:%v), got: %v (%v:%v)`, string(expected.Lexeme), expected.Row, expected.Col, string(actual.Lexeme), actual.Row, actual.Col)
		}
	}
}

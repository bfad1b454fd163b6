// Package crosscheck compares the tokenization of tabula's table-driven lexer with maleeni and
// lexmachine on the same set of kinds.
package crosscheck

import (
	"fmt"
	"strconv"
	"strings"

	mlcompiler "github.com/nihei9/maleeni/compiler"
	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"
	"github.com/nihei9/tabula/driver/lexer"
	"github.com/nihei9/tabula/grammar/lexical"
	"github.com/npillmayer/schuko/tracing"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// tracer traces with key 'tabula.crosscheck'.
func tracer() tracing.Trace {
	return tracing.Select("tabula.crosscheck")
}

type Engine string

const (
	EngineTabula     = Engine("tabula")
	EngineMaleeni    = Engine("maleeni")
	EngineLexmachine = Engine("lexmachine")
)

// Token is the part of a token all engines agree on. A token list ends with either an invalid
// token or the end of the input; an invalid token has no kind and an empty lexeme.
type Token struct {
	Kind    string
	Lexeme  string
	Offset  int
	Invalid bool
}

func (t *Token) String() string {
	if t == nil {
		return "<eof>"
	}
	if t.Invalid {
		return fmt.Sprintf("<invalid>@%v", t.Offset)
	}
	return fmt.Sprintf("%v %q@%v", t.Kind, t.Lexeme, t.Offset)
}

func (t *Token) equal(o *Token) bool {
	if t == nil || o == nil {
		return t == o
	}
	return *t == *o
}

// Divergence is the first token at which an engine disagrees with tabula. A nil token means the
// token list has already ended.
type Divergence struct {
	Engine   Engine
	Index    int
	Expected *Token
	Actual   *Token
}

func (d *Divergence) String() string {
	return fmt.Sprintf("%v: token #%v: tabula: %v, %v: %v", d.Engine, d.Index, d.Expected, d.Engine, d.Actual)
}

type Result struct {
	Tokens      map[Engine][]*Token
	Divergences []*Divergence
}

func (r *Result) OK() bool {
	return len(r.Divergences) == 0
}

func (r *Result) String() string {
	if r.OK() {
		return fmt.Sprintf("ok: %v tokens", len(r.Tokens[EngineTabula]))
	}
	var b strings.Builder
	for i, d := range r.Divergences {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(d.String())
	}
	return b.String()
}

// Check tokenizes input with the three engines and compares the results with tabula's. Input must
// consist of characters in Alphabet.
func Check(lspec *lexical.LexSpec, input string) (*Result, error) {
	for i, c := range input {
		if !Alphabet.Contains(c) {
			return nil, fmt.Errorf("input contains a character outside the compared alphabet: %q at %v", c, i)
		}
	}

	lex, err := lexical.Compile(lspec)
	if err != nil {
		return nil, err
	}

	maleeniPats := make([]string, len(lex.Trees))
	lexmachinePats := make([]string, len(lex.Trees))
	for i, t := range lex.Trees {
		maleeniPats[i], err = render(t, maleeniSyntax)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", lex.KindNames[i], err)
		}
		lexmachinePats[i], err = render(t, lexmachineSyntax)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", lex.KindNames[i], err)
		}
		tracer().Debugf("%v: maleeni: %v, lexmachine: %v", lex.KindNames[i], maleeniPats[i], lexmachinePats[i])
	}

	res := &Result{
		Tokens: map[Engine][]*Token{},
	}
	res.Tokens[EngineTabula], err = tokenizeWithTabula(lex, input)
	if err != nil {
		return nil, fmt.Errorf("tabula: %w", err)
	}
	res.Tokens[EngineMaleeni], err = tokenizeWithMaleeni(lex.KindNames, maleeniPats, input)
	if err != nil {
		return nil, fmt.Errorf("maleeni: %w", err)
	}
	res.Tokens[EngineLexmachine], err = tokenizeWithLexmachine(lex.KindNames, lexmachinePats, input)
	if err != nil {
		return nil, fmt.Errorf("lexmachine: %w", err)
	}

	for _, e := range []Engine{EngineMaleeni, EngineLexmachine} {
		if d := compare(e, res.Tokens[EngineTabula], res.Tokens[e]); d != nil {
			tracer().Infof("divergence: %v", d)
			res.Divergences = append(res.Divergences, d)
		}
	}
	return res, nil
}

func compare(e Engine, expected, actual []*Token) *Divergence {
	n := len(expected)
	if len(actual) > n {
		n = len(actual)
	}
	for i := 0; i < n; i++ {
		var exp, act *Token
		if i < len(expected) {
			exp = expected[i]
		}
		if i < len(actual) {
			act = actual[i]
		}
		if !exp.equal(act) {
			return &Divergence{
				Engine:   e,
				Index:    i,
				Expected: exp,
				Actual:   act,
			}
		}
	}
	return nil
}

func tokenizeWithTabula(lex *lexical.Lexicon, input string) ([]*Token, error) {
	lspec, err := lex.Spec()
	if err != nil {
		return nil, err
	}
	l, err := lexer.NewLexer(lspec, strings.NewReader(input))
	if err != nil {
		return nil, err
	}
	var toks []*Token
	offset := 0
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF {
			return toks, nil
		}
		if tok.Invalid {
			return append(toks, &Token{Offset: offset, Invalid: true}), nil
		}
		toks = append(toks, &Token{
			Kind:   tok.KindName,
			Lexeme: string(tok.Lexeme),
			Offset: offset,
		})
		offset += len(tok.Lexeme)
	}
}

// maleeni kind names must be identifiers, so kinds are renamed to t<index+1>.
func maleeniKindName(i int) string {
	return "t" + strconv.Itoa(i+1)
}

func tokenizeWithMaleeni(kindNames []string, pats []string, input string) ([]*Token, error) {
	entries := make([]*mlspec.LexEntry, len(pats))
	for i, p := range pats {
		entries[i] = &mlspec.LexEntry{
			Kind:    mlspec.LexKindName(maleeniKindName(i)),
			Pattern: mlspec.LexPattern(p),
		}
	}
	cspec, err, cErrs := mlcompiler.Compile(&mlspec.LexSpec{
		Entries: entries,
	}, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
	if err != nil {
		if len(cErrs) > 0 {
			return nil, fmt.Errorf("%w: %v", err, cErrs[0].Cause)
		}
		return nil, err
	}

	l, err := mldriver.NewLexer(mldriver.NewLexSpec(cspec), strings.NewReader(input))
	if err != nil {
		return nil, err
	}
	var toks []*Token
	offset := 0
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF {
			return toks, nil
		}
		if tok.Invalid {
			return append(toks, &Token{Offset: offset, Invalid: true}), nil
		}
		name := cspec.KindNames[tok.KindID].String()
		i, err := strconv.Atoi(strings.TrimPrefix(name, "t"))
		if err != nil || i < 1 || i > len(kindNames) {
			return nil, fmt.Errorf("unknown kind: %v", name)
		}
		toks = append(toks, &Token{
			Kind:   kindNames[i-1],
			Lexeme: string(tok.Lexeme),
			Offset: offset,
		})
		offset += len(tok.Lexeme)
	}
}

func tokenizeWithLexmachine(kindNames []string, pats []string, input string) ([]*Token, error) {
	lm := lexmachine.NewLexer()
	for i, p := range pats {
		kind := i
		lm.Add([]byte(p), func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
			return s.Token(kind, string(m.Bytes), m), nil
		})
	}
	err := lm.Compile()
	if err != nil {
		return nil, err
	}

	scanner, err := lm.Scanner([]byte(input))
	if err != nil {
		return nil, err
	}
	var toks []*Token
	for {
		tok, err, eof := scanner.Next()
		if eof {
			return toks, nil
		}
		if err != nil {
			if ui, is := err.(*machines.UnconsumedInput); is {
				return append(toks, &Token{Offset: ui.StartTC, Invalid: true}), nil
			}
			return nil, err
		}
		t := tok.(*lexmachine.Token)
		toks = append(toks, &Token{
			Kind:   kindNames[t.Type],
			Lexeme: string(t.Lexeme),
			Offset: t.TC,
		})
	}
}

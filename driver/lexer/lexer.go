// Package lexer tokenizes input with a compiled transition table. It checks compiled tables and
// backs the interactive commands; it is not meant as a production lexer.
package lexer

import (
	"io"
	"unicode/utf8"

	spec "github.com/nihei9/tabula/spec/grammar"
)

type StateID int

func (id StateID) Int() int {
	return int(id)
}

// KindID is the index of a lexical kind in the kind names of a lexical specification.
type KindID int

func (id KindID) Int() int {
	return int(id)
}

// Token representes a token.
type Token struct {
	// KindID is an ID of a kind. The EOF token has the EOF token number of the specification.
	KindID KindID

	// KindName is the name of the kind. It is empty for the EOF and error tokens.
	KindName string

	// Row is a row number where a lexeme appears.
	Row int

	// Col is a column number where a lexeme appears.
	// Note that Col is counted in code points, not bytes.
	Col int

	// Lexeme is a byte sequence matched a pattern of a lexical specification.
	Lexeme []byte

	// When this field is true, it means the token is the EOF token.
	EOF bool

	// When this field is true, it means the token is an error token.
	Invalid bool

	// When this field is true, the token belongs to an ignored kind.
	Ignored bool
}

type LexerOption func(l *Lexer) error

// SkipIgnoredTokens makes the lexer drop the tokens of ignored kinds.
func SkipIgnoredTokens() LexerOption {
	return func(l *Lexer) error {
		l.skipIgnored = true
		return nil
	}
}

type lexerState struct {
	srcPtr int
	row    int
	col    int
}

type Lexer struct {
	spec              *lexSpec
	src               []byte
	state             lexerState
	lastAcceptedState lexerState
	tokBuf            []*Token
	skipIgnored       bool
}

// NewLexer returns a new lexer.
func NewLexer(spec *spec.LexicalSpec, src io.Reader, opts ...LexerOption) (*Lexer, error) {
	b, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	l := &Lexer{
		spec: newLexSpec(spec),
		src:  b,
	}
	for _, opt := range opts {
		err := opt(l)
		if err != nil {
			return nil, err
		}
	}

	return l, nil
}

// Next returns a next token. Consecutive unmatched characters make up a single error token.
func (l *Lexer) Next() (*Token, error) {
	for {
		tok, err := l.nextMerged()
		if err != nil {
			return nil, err
		}
		if tok.Ignored && l.skipIgnored {
			continue
		}
		return tok, nil
	}
}

func (l *Lexer) nextMerged() (*Token, error) {
	if len(l.tokBuf) > 0 {
		tok := l.tokBuf[0]
		l.tokBuf = l.tokBuf[1:]
		return tok, nil
	}

	tok := l.next()
	if !tok.Invalid {
		return tok, nil
	}
	errTok := tok
	for {
		tok = l.next()
		if !tok.Invalid {
			break
		}
		errTok.Lexeme = append(errTok.Lexeme, tok.Lexeme...)
	}
	l.tokBuf = append(l.tokBuf, tok)

	return errTok, nil
}

// Tokenize reads all tokens including the EOF token.
func (l *Lexer) Tokenize() ([]*Token, error) {
	var toks []*Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.EOF {
			return toks, nil
		}
	}
}

func (l *Lexer) next() *Token {
	state := l.spec.initialState()
	buf := []byte{}
	row := l.state.row
	col := l.state.col
	var tok *Token
	for {
		c, raw, eof := l.read()
		if eof {
			if tok != nil {
				l.revert()
				return tok
			}
			// When `buf` has unaccepted data and reads the EOF, the lexer treats the buffered data as an invalid token.
			if len(buf) > 0 {
				return &Token{
					Lexeme:  buf,
					Row:     row,
					Col:     col,
					Invalid: true,
				}
			}
			return &Token{
				KindID: KindID(l.spec.spec.EOFToken),
				Row:    row,
				Col:    col,
				EOF:    true,
			}
		}
		buf = append(buf, raw...)
		nextState, ok := l.spec.nextState(state, c)
		if !ok {
			if tok != nil {
				l.revert()
				return tok
			}
			return &Token{
				Lexeme:  buf,
				Row:     row,
				Col:     col,
				Invalid: true,
			}
		}
		state = nextState
		if kind, ok := l.spec.accept(state); ok {
			tok = &Token{
				KindID:   kind,
				KindName: l.spec.spec.KindNames[kind],
				Lexeme:   append([]byte{}, buf...),
				Row:      row,
				Col:      col,
				Ignored:  l.spec.isIgnored(kind),
			}
			l.accept()
		}
	}
}

// read decodes one code point. A byte that does not start a valid UTF-8 sequence reads as
// utf8.RuneError.
func (l *Lexer) read() (rune, []byte, bool) {
	if l.state.srcPtr >= len(l.src) {
		return 0, nil, true
	}

	c, size := utf8.DecodeRune(l.src[l.state.srcPtr:])
	raw := l.src[l.state.srcPtr : l.state.srcPtr+size]
	l.state.srcPtr += size

	// The lexer treats LF as the end of lines and counts columns in code points.
	if c == '\n' {
		l.state.row++
		l.state.col = 0
	} else {
		l.state.col++
	}

	return c, raw, false
}

// accept saves the current state.
func (l *Lexer) accept() {
	l.lastAcceptedState = l.state
}

// revert reverts the lexer state to the last accepted state.
//
// We must not call this function consecutively.
func (l *Lexer) revert() {
	l.state = l.lastAcceptedState
}

package regex

import (
	"fmt"
	"strconv"

	"github.com/nihei9/tabula/grammar/lexical/charset"
)

type tokenKind string

const (
	tokenKindChar            tokenKind = "char"
	tokenKindClass           tokenKind = "class"
	tokenKindRepeat          tokenKind = "*"
	tokenKindRepeatOneOrMore tokenKind = "+"
	tokenKindOption          tokenKind = "?"
	tokenKindRepeatRange     tokenKind = "{n,m}"
	tokenKindAlt             tokenKind = "|"
	tokenKindGroupOpen       tokenKind = "("
	tokenKindGroupClose      tokenKind = ")"
	tokenKindConcat          tokenKind = "concat"
	tokenKindGroup           tokenKind = "group"
	tokenKindEOF             tokenKind = "eof"
)

const maxRepeat = 1000

type token struct {
	kind tokenKind
	pos  int

	char   rune
	set    charset.Set
	source string
	min    int
	max    int
}

func (t *token) isOperand() bool {
	return t.kind == tokenKindChar || t.kind == tokenKindClass
}

func (t *token) isPostfix() bool {
	switch t.kind {
	case tokenKindRepeat, tokenKindRepeatOneOrMore, tokenKindOption, tokenKindRepeatRange:
		return true
	}
	return false
}

var (
	digitSet = charset.NewSet(charset.Range{From: '0', To: '9'})
	wordSet  = charset.NewSet(
		charset.Range{From: '0', To: '9'},
		charset.Range{From: 'A', To: 'Z'},
		charset.Range{From: '_', To: '_'},
		charset.Range{From: 'a', To: 'z'},
	)
	spaceSet = charset.NewSet(
		charset.Range{From: '\t', To: '\r'},
		charset.Range{From: ' ', To: ' '},
	)
)

type lexer struct {
	src []rune
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{
		src: []rune(src),
	}
}

// tokenize splits the whole pattern into tokens. The last token is always tokenKindEOF.
func (l *lexer) tokenize() []*token {
	var toks []*token
	for {
		tok := l.next()
		toks = append(toks, tok)
		if tok.kind == tokenKindEOF {
			return toks
		}
	}
}

func (l *lexer) next() *token {
	start := l.pos
	c, ok := l.read()
	if !ok {
		return &token{kind: tokenKindEOF, pos: start}
	}
	switch c {
	case '*':
		return &token{kind: tokenKindRepeat, pos: start}
	case '+':
		return &token{kind: tokenKindRepeatOneOrMore, pos: start}
	case '?':
		return &token{kind: tokenKindOption, pos: start}
	case '|':
		return &token{kind: tokenKindAlt, pos: start}
	case '(':
		return &token{kind: tokenKindGroupOpen, pos: start}
	case ')':
		return &token{kind: tokenKindGroupClose, pos: start}
	case '.':
		return &token{kind: tokenKindClass, pos: start, set: charset.Any(), source: "."}
	case '[':
		return l.nextBExp(start)
	case '{':
		return l.nextRepeatRange(start)
	case '\\':
		c, set, isSet := l.readEscape(start)
		if isSet {
			return &token{kind: tokenKindClass, pos: start, set: set, source: string(l.src[start:l.pos])}
		}
		return &token{kind: tokenKindChar, pos: start, char: c}
	}
	return &token{kind: tokenKindChar, pos: start, char: c}
}

// nextBExp reads a bracket expression following `[`.
func (l *lexer) nextBExp(start int) *token {
	inverse := false
	if c, ok := l.peek(); ok && c == '^' {
		l.read()
		inverse = true
	}

	var rs []charset.Range
	first := true
	for {
		elemPos := l.pos
		c, ok := l.read()
		if !ok {
			raiseSyntaxError(start, SynErrBExpUnclosed, "")
		}
		if c == ']' {
			if first {
				raiseSyntaxError(elemPos, SynErrBExpNoElem, "")
			}
			break
		}
		first = false

		from := c
		if c == '\\' {
			esc, set, isSet := l.readEscape(elemPos)
			if isSet {
				if n, ok := l.peek(); ok && n == '-' && !l.followedByClose(1) {
					raiseSyntaxError(l.pos, SynErrRangeInvalidForm, "a shorthand class cannot be a bound of a range")
				}
				rs = append(rs, set...)
				continue
			}
			from = esc
		}

		// A `-` at either end of a bracket expression is a literal.
		if n, ok := l.peek(); !ok || n != '-' || l.followedByClose(1) {
			rs = append(rs, charset.Range{From: from, To: from})
			continue
		}
		dashPos := l.pos
		l.read()
		toPos := l.pos
		to, ok := l.read()
		if !ok {
			raiseSyntaxError(start, SynErrBExpUnclosed, "")
		}
		if to == '\\' {
			esc, _, isSet := l.readEscape(toPos)
			if isSet {
				raiseSyntaxError(toPos, SynErrRangeInvalidForm, "a shorthand class cannot be a bound of a range")
			}
			to = esc
		}
		if from > to {
			raiseSyntaxError(dashPos, SynErrRangeInvalidOrder, fmt.Sprintf("%q-%q", from, to))
		}
		rs = append(rs, charset.Range{From: from, To: to})
	}

	set := charset.NewSet(rs...)
	if inverse {
		set = set.Negate()
	}
	return &token{
		kind:   tokenKindClass,
		pos:    start,
		set:    set,
		source: string(l.src[start:l.pos]),
	}
}

func (l *lexer) followedByClose(offset int) bool {
	i := l.pos + offset
	return i < len(l.src) && l.src[i] == ']'
}

// nextRepeatRange reads `{n}`, `{n,}`, or `{n,m}` following `{`.
func (l *lexer) nextRepeatRange(start int) *token {
	min, ok := l.readNum()
	if !ok {
		raiseSyntaxError(start, SynErrRepInvalidForm, "a repetition needs a lower bound")
	}
	max := min
	c, ok := l.read()
	if ok && c == ',' {
		if n, ok := l.peek(); ok && n == '}' {
			max = -1
		} else {
			max, ok = l.readNum()
			if !ok {
				raiseSyntaxError(start, SynErrRepInvalidForm, "an upper bound must be a number")
			}
		}
		c, ok = l.read()
	}
	if !ok || c != '}' {
		raiseSyntaxError(start, SynErrRepInvalidForm, "unclosed repetition")
	}
	if min > maxRepeat || max > maxRepeat {
		raiseSyntaxError(start, SynErrRepTooLarge, "")
	}
	if max >= 0 && min > max {
		raiseSyntaxError(start, SynErrRepInvalidForm, fmt.Sprintf("{%v,%v}", min, max))
	}
	if max == 0 {
		raiseSyntaxError(start, SynErrRepInvalidForm, "a repetition must match at least one time")
	}
	return &token{
		kind: tokenKindRepeatRange,
		pos:  start,
		min:  min,
		max:  max,
	}
}

func (l *lexer) readNum() (int, bool) {
	from := l.pos
	for {
		c, ok := l.peek()
		if !ok || c < '0' || c > '9' {
			break
		}
		l.read()
	}
	if l.pos == from || l.pos-from > 4 {
		return 0, false
	}
	n, err := strconv.Atoi(string(l.src[from:l.pos]))
	if err != nil {
		return 0, false
	}
	return n, true
}

// readEscape reads an escape sequence following `\`. It returns a set when the sequence is a
// shorthand class.
func (l *lexer) readEscape(start int) (rune, charset.Set, bool) {
	c, ok := l.read()
	if !ok {
		raiseSyntaxError(start, SynErrIncompletedEscSeq, "")
	}
	switch c {
	case 'n':
		return '\n', nil, false
	case 'r':
		return '\r', nil, false
	case 't':
		return '\t', nil, false
	case 'f':
		return '\f', nil, false
	case 'v':
		return '\v', nil, false
	case '0':
		return 0, nil, false
	case 'd':
		return 0, digitSet, true
	case 'D':
		return 0, digitSet.Negate(), true
	case 'w':
		return 0, wordSet, true
	case 'W':
		return 0, wordSet.Negate(), true
	case 's':
		return 0, spaceSet, true
	case 'S':
		return 0, spaceSet.Negate(), true
	case 'u':
		if l.pos+4 > len(l.src) {
			raiseSyntaxError(start, SynErrInvalidCodePoint, "")
		}
		hex := string(l.src[l.pos : l.pos+4])
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			raiseSyntaxError(start, SynErrInvalidCodePoint, hex)
		}
		l.pos += 4
		return rune(n), nil, false
	case '\\', '.', '*', '+', '?', '|', '(', ')', '[', ']', '{', '}', '^', '$', '-', '/', '"', '\'':
		return c, nil, false
	}
	raiseSyntaxError(start, SynErrInvalidEscSeq, fmt.Sprintf("\\%c", c))
	return 0, nil, false
}

func (l *lexer) read() (rune, bool) {
	if l.pos >= len(l.src) {
		return 0, false
	}
	c := l.src[l.pos]
	l.pos++
	return c, true
}

func (l *lexer) peek() (rune, bool) {
	if l.pos >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos], true
}

func raiseSyntaxError(pos int, cause error, detail string) {
	panic(&SyntaxError{
		Pos:    pos,
		Cause:  cause,
		Detail: detail,
	})
}

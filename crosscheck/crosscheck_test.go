package crosscheck

import (
	"errors"
	"testing"

	"github.com/nihei9/tabula/grammar/lexical"
	"github.com/nihei9/tabula/grammar/lexical/regex"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		pattern    string
		maleeni    string
		lexmachine string
	}{
		{
			pattern:    `a+b`,
			maleeni:    `(\u{0061})+\u{0062}`,
			lexmachine: `(a)+b`,
		},
		{
			pattern:    `if|[a-z_]*`,
			maleeni:    `(\u{0069}\u{0066}|([\u{005F}\u{0061}-\u{007A}])*)`,
			lexmachine: `(if|([\_a-z])*)`,
		},
		{
			pattern:    `\+\.`,
			maleeni:    `\u{002B}\u{002E}`,
			lexmachine: `\+\.`,
		},
		{
			pattern:    `x{2,3}`,
			maleeni:    `(\u{0078})(\u{0078})(\u{0078})?`,
			lexmachine: `(x)(x)(x)?`,
		},
		{
			pattern:    `x{1,}`,
			maleeni:    `(\u{0078})(\u{0078})*`,
			lexmachine: `(x)(x)*`,
		},
		{
			pattern:    `[^a-z]`,
			maleeni:    `[\u{0009}-\u{000A}\u{000D}\u{0020}-\u{0060}\u{007B}-\u{007E}]`,
			lexmachine: `[\t-\n\r -\` + "`" + `\{-\~]`,
		},
		{
			pattern:    `.`,
			maleeni:    `[\u{0009}-\u{000A}\u{000D}\u{0020}-\u{007E}]`,
			lexmachine: `[\t-\n\r -\~]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			ast, err := regex.Parse(tt.pattern)
			require.NoError(t, err)

			m, err := render(ast, maleeniSyntax)
			require.NoError(t, err)
			assert.Equal(t, tt.maleeni, m)

			l, err := render(ast, lexmachineSyntax)
			require.NoError(t, err)
			assert.Equal(t, tt.lexmachine, l)
		})
	}
}

func TestRender_Unrenderable(t *testing.T) {
	for _, pattern := range []string{`あ`, `[あ-ん]+`} {
		ast, err := regex.Parse(pattern)
		require.NoError(t, err)

		_, err = render(ast, maleeniSyntax)
		assert.True(t, errors.Is(err, ErrUnrenderable), "pattern: %v, error: %v", pattern, err)
	}
}

func TestCheck(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabula.crosscheck")
	defer teardown()

	lspec := &lexical.LexSpec{
		Entries: []*lexical.LexEntry{
			{Kind: "if", Pattern: `if`},
			{Kind: "id", Pattern: `[a-z_][0-9a-z_]*`},
			{Kind: "int", Pattern: `0|[1-9][0-9]*`},
			{Kind: "float", Pattern: `[0-9]+\.[0-9]+`},
			{Kind: "op", Pattern: `\+|\+\+|-|==|=`},
			{Kind: "str", Pattern: `"[^"\n]*"`},
			{Kind: "ws", Pattern: `[ \t\n\r]+`, Ignore: true},
		},
	}
	tests := []struct {
		input  string
		tokens int
	}{
		{
			input:  `if iffy == 10 x = y ++ 3.14`,
			tokens: 17,
		},
		{
			input:  "\"a string\"\n\t_id0",
			tokens: 3,
		},
		{
			input:  `a # b`,
			tokens: 3,
		},
		{
			input:  ``,
			tokens: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res, err := Check(lspec, tt.input)
			require.NoError(t, err)
			assert.True(t, res.OK(), res.String())
			assert.Len(t, res.Tokens[EngineTabula], tt.tokens)
		})
	}
}

func TestCheck_InvalidToken(t *testing.T) {
	lspec := &lexical.LexSpec{
		Entries: []*lexical.LexEntry{
			{Kind: "a", Pattern: `a+`},
		},
	}
	res, err := Check(lspec, "aa?a")
	require.NoError(t, err)
	assert.True(t, res.OK(), res.String())
	assert.Equal(t, []*Token{
		{Kind: "a", Lexeme: "aa", Offset: 0},
		{Offset: 2, Invalid: true},
	}, res.Tokens[EngineTabula])
}

func TestCheck_Error(t *testing.T) {
	lspec := &lexical.LexSpec{
		Entries: []*lexical.LexEntry{
			{Kind: "a", Pattern: `a`},
		},
	}
	_, err := Check(lspec, "aあ")
	assert.Error(t, err)

	_, err = Check(&lexical.LexSpec{
		Entries: []*lexical.LexEntry{
			{Kind: "hiragana", Pattern: `[あ-ん]`},
		},
	}, "a")
	assert.True(t, errors.Is(err, ErrUnrenderable))

	_, err = Check(&lexical.LexSpec{
		Entries: []*lexical.LexEntry{
			{Kind: "a", Pattern: `(a`},
		},
	}, "a")
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	exp := []*Token{
		{Kind: "a", Lexeme: "a", Offset: 0},
		{Kind: "b", Lexeme: "b", Offset: 1},
	}
	assert.Nil(t, compare(EngineMaleeni, exp, exp))

	d := compare(EngineMaleeni, exp, exp[:1])
	require.NotNil(t, d)
	assert.Equal(t, 1, d.Index)
	assert.Nil(t, d.Actual)
	assert.Equal(t, `maleeni: token #1: tabula: b "b"@1, maleeni: <eof>`, d.String())
}

package lexical

import (
	"errors"
	"testing"

	"github.com/nihei9/tabula/grammar/lexical/regex"
	spec "github.com/nihei9/tabula/spec/grammar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexSpec_Validate(t *testing.T) {
	tests := []struct {
		caption string
		spec    *LexSpec
	}{
		{
			caption: "a specification must have entries",
			spec:    &LexSpec{},
		},
		{
			caption: "an entry must have a kind name",
			spec: &LexSpec{
				Entries: []*LexEntry{
					{Kind: "", Pattern: "a"},
				},
			},
		},
		{
			caption: "kind names must be unique",
			spec: &LexSpec{
				Entries: []*LexEntry{
					{Kind: "foo", Pattern: "a"},
					{Kind: "foo", Pattern: "b", Ignore: true},
				},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			assert.Error(t, tt.spec.Validate())
			_, err := Compile(tt.spec)
			assert.Error(t, err)
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	lspec := &LexSpec{
		Entries: []*LexEntry{
			{Kind: "ok", Pattern: "abc"},
			{Kind: "unclosed", Pattern: "(abc"},
			{Kind: "empty", Pattern: "a*"},
			{Kind: "range", Pattern: "[z-a]"},
		},
	}
	lex, err := Compile(lspec)
	require.Nil(t, lex)
	var cerrs CompileErrors
	require.True(t, errors.As(err, &cerrs), "unexpected error: %v", err)
	require.Len(t, cerrs, 3)

	assert.Equal(t, "unclosed", cerrs[0].Kind)
	assert.ErrorIs(t, cerrs[0], regex.SynErrGroupUnclosed)
	var synErr *regex.SyntaxError
	require.True(t, errors.As(cerrs[0].Cause, &synErr))
	assert.Equal(t, 0, synErr.Pos)

	assert.Equal(t, "empty", cerrs[1].Kind)
	assert.ErrorIs(t, cerrs[1], ErrEmptyMatch)

	assert.Equal(t, "range", cerrs[2].Kind)
	assert.ErrorIs(t, cerrs[2], regex.SynErrRangeInvalidOrder)
}

func TestCompile_InvalidOptions(t *testing.T) {
	lspec := &LexSpec{
		Entries: []*LexEntry{
			{Kind: "a", Pattern: "a"},
		},
	}
	_, err := Compile(lspec, CompressionLevel(CompressionLevelMax+1))
	assert.Error(t, err)
	_, err = Compile(lspec, Target("bytecode"))
	assert.Error(t, err)
}

func genKeywordSpec() *LexSpec {
	return &LexSpec{
		Entries: []*LexEntry{
			{Kind: "if", Pattern: "if"},
			{Kind: "id", Pattern: "[a-z]+"},
			{Kind: "ws", Pattern: "[ \t]+", Ignore: true},
		},
	}
}

func TestCompile_Targets(t *testing.T) {
	lex, err := Compile(genKeywordSpec(), Target(TargetNFA))
	require.NoError(t, err)
	assert.NotNil(t, lex.NFA)
	assert.Nil(t, lex.DFA)
	assert.Nil(t, lex.Table)
	assert.Equal(t, []string{"if", "id", "ws"}, lex.KindNames)
	assert.Equal(t, []bool{false, false, true}, lex.Ignore)
	assert.Equal(t, -1, lex.EOFToken)
	a, ok := lex.NFA.Match("if")
	require.True(t, ok)
	assert.Equal(t, 0, a.Token)

	lex, err = Compile(genKeywordSpec(), Target(TargetDFA), Minimize(false))
	require.NoError(t, err)
	assert.NotNil(t, lex.DFA)
	assert.Nil(t, lex.Table)
	unminimized := len(lex.DFA.States)

	lex, err = Compile(genKeywordSpec(), EOFToken(0))
	require.NoError(t, err)
	require.NotNil(t, lex.Table)
	assert.LessOrEqual(t, len(lex.DFA.States), unminimized)
	assert.Equal(t, 0, lex.EOFToken)
	_, err = lex.Spec()
	assert.NoError(t, err)
}

func TestLexicon_Spec(t *testing.T) {
	for lv := CompressionLevelMin; lv <= CompressionLevelMax; lv++ {
		lex, err := Compile(genKeywordSpec(), CompressionLevel(lv))
		require.NoError(t, err)
		s, err := lex.Spec()
		require.NoError(t, err)

		assert.Equal(t, []string{"if", "id", "ws"}, s.KindNames)
		assert.Equal(t, []int{2}, s.Ignore)
		assert.Equal(t, lv, s.CompressionLevel)
		assert.Len(t, s.ByteClass, 256)
		require.Len(t, s.Intervals, len(lex.Table.Classes))
		for i, iv := range s.Intervals {
			assert.Equal(t, i, iv.Class)
		}

		tab := lex.Table
		for state := 0; state < tab.RowCount; state++ {
			for class := 0; class < tab.ColCount; class++ {
				assert.Equal(t, tab.Transition[state*tab.ColCount+class], lookup(s, state, class), "level: %v, state: %v, class: %v", lv, state, class)
			}
		}
		switch lv {
		case 0:
			assert.Nil(t, s.DFA.Transition)
			assert.NotNil(t, s.DFA.UncompressedTransition)
		case 1:
			assert.NotNil(t, s.DFA.Transition.UncompressedUniqueEntries)
			assert.Nil(t, s.DFA.Transition.UniqueEntries)
		case 2:
			assert.NotNil(t, s.DFA.Transition.UniqueEntries)
		}
	}
}

func TestLexicon_Spec_RequiresTable(t *testing.T) {
	lex, err := Compile(genKeywordSpec(), Target(TargetDFA))
	require.NoError(t, err)
	_, err = lex.Spec()
	assert.Error(t, err)
}

func lookup(s *spec.LexicalSpec, state, class int) int {
	tab := s.DFA
	switch s.CompressionLevel {
	case 2:
		rowNum := tab.Transition.RowNums[state]
		ue := tab.Transition.UniqueEntries
		d := ue.RowDisplacement[rowNum]
		if d+class >= len(ue.Bounds) || ue.Bounds[d+class] != rowNum {
			return ue.EmptyValue
		}
		return ue.Entries[d+class]
	case 1:
		return tab.Transition.UncompressedUniqueEntries[tab.Transition.RowNums[state]*tab.Transition.OriginalColCount+class]
	}
	return tab.UncompressedTransition[state*tab.ColCount+class]
}

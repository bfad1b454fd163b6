package dfa

import (
	"strings"
	"testing"

	"github.com/nihei9/tabula/grammar/lexical/nfa"
	"github.com/nihei9/tabula/grammar/lexical/regex"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pattern struct {
	src    string
	ignore bool
}

func genNFA(t *testing.T, patterns ...pattern) *nfa.NFA {
	t.Helper()
	var nfas []*nfa.NFA
	for i, p := range patterns {
		ast, err := regex.Parse(p.src)
		require.NoError(t, err)
		n, err := nfa.Build(ast, nfa.Accept{Token: i, Priority: i, Ignore: p.ignore})
		require.NoError(t, err)
		nfas = append(nfas, n)
	}
	return nfa.Merge(nfas...)
}

// genInputs returns every string over alphabet up to maxLen characters, including the empty string.
func genInputs(alphabet string, maxLen int) []string {
	inputs := []string{""}
	prev := []string{""}
	for l := 1; l <= maxLen; l++ {
		var cur []string
		for _, s := range prev {
			for _, c := range alphabet {
				cur = append(cur, s+string(c))
			}
		}
		inputs = append(inputs, cur...)
		prev = cur
	}
	return inputs
}

func TestFromNFA(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabula.lexical")
	defer teardown()

	n := genNFA(t, pattern{src: "(a|b)+bcd"})
	d := FromNFA(n)

	for _, s := range []string{"abcd", "aabcd", "bbbcd", "babbcd"} {
		assert.True(t, d.Accepts(s), "must accept %q", s)
	}
	for _, s := range []string{"", "bcd", "abc", "abcda", "xbcd"} {
		assert.False(t, d.Accepts(s), "must reject %q", s)
	}

	for _, s := range d.States {
		require.Len(t, s.Next, len(d.Classes))
	}
	assert.Equal(t, n.EpsilonClosure([]nfa.StateID{n.Start}), d.States[0].NFAStates)
}

func TestFromNFA_Priority(t *testing.T) {
	n := genNFA(t,
		pattern{src: "if"},
		pattern{src: "[a-z]+"},
		pattern{src: "[ \t]+", ignore: true},
	)
	for _, d := range []*DFA{FromNFA(n), Minimize(FromNFA(n))} {
		tests := []struct {
			input string
			token int
		}{
			{input: "if", token: 0},
			{input: "i", token: 1},
			{input: "iff", token: 1},
			{input: "fi", token: 1},
			{input: "  ", token: 2},
		}
		for _, tt := range tests {
			a, ok := d.Match(tt.input)
			require.True(t, ok, "must accept %q", tt.input)
			assert.Equal(t, tt.token, a.Token, "input: %q", tt.input)
		}
		a, _ := d.Match("\t")
		assert.True(t, a.Ignore)
	}
}

func TestFromNFA_LaterDeclarationLoses(t *testing.T) {
	d := FromNFA(genNFA(t,
		pattern{src: "[a-z]+"},
		pattern{src: "if"},
	))
	a, ok := d.Match("if")
	require.True(t, ok)
	assert.Equal(t, 0, a.Token)
}

func TestMinimize(t *testing.T) {
	d := FromNFA(genNFA(t, pattern{src: "(a|b)*abb"}))
	min := Minimize(d)
	assert.GreaterOrEqual(t, len(d.States), len(min.States))
	assert.Len(t, min.States, 4)
	for i, s := range min.States {
		assert.Equal(t, i, s.ID)
	}
	assert.True(t, min.Accepts("abb"))
	assert.True(t, min.Accepts("babaabb"))
	assert.False(t, min.Accepts("abba"))
}

func TestMinimize_KeepsTokensApart(t *testing.T) {
	d := FromNFA(genNFA(t,
		pattern{src: "a"},
		pattern{src: "b", ignore: true},
	))
	min := Minimize(d)
	require.Len(t, min.States, 3)
	a, ok := min.Match("a")
	require.True(t, ok)
	assert.Equal(t, 0, a.Token)
	b, ok := min.Match("b")
	require.True(t, ok)
	assert.Equal(t, 1, b.Token)
}

func TestMinimize_PreservesLanguageAndWinner(t *testing.T) {
	tests := []struct {
		caption  string
		patterns []pattern
		alphabet string
		long     []string
	}{
		{
			caption:  "keywords and identifiers",
			patterns: []pattern{{src: "if"}, {src: "in"}, {src: "[a-z]+"}, {src: "[0-9]+"}, {src: " +", ignore: true}},
			alphabet: "ifn0 ",
			long:     []string{strings.Repeat("f", 100), strings.Repeat("0", 64), strings.Repeat(" ", 33)},
		},
		{
			caption:  "repetitions",
			patterns: []pattern{{src: "a{2,3}"}, {src: "(ab)+"}, {src: "b?c"}},
			alphabet: "abc",
			long:     []string{strings.Repeat("ab", 50)},
		},
		{
			caption:  "overlapping classes",
			patterns: []pattern{{src: `[^"]*"`}, {src: `\d+\.\d*`}, {src: `\w+`}},
			alphabet: `"1.x`,
			long:     []string{strings.Repeat("x", 80) + `"`, strings.Repeat("1", 40) + "." + strings.Repeat("1", 40)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			n := genNFA(t, tt.patterns...)
			d := FromNFA(n)
			min := Minimize(d)
			assert.LessOrEqual(t, len(min.States), len(d.States))

			inputs := append(genInputs(tt.alphabet, 4), tt.long...)
			for _, input := range inputs {
				na, nok := n.Match(input)
				da, dok := d.Match(input)
				ma, mok := min.Match(input)
				require.Equal(t, nok, dok, "input: %q", input)
				require.Equal(t, dok, mok, "input: %q", input)
				if !dok {
					continue
				}
				assert.Equal(t, na.Token, da.Token, "input: %q", input)
				assert.Equal(t, da.Token, ma.Token, "input: %q", input)
			}
		})
	}
}

func TestLongest(t *testing.T) {
	d := Minimize(FromNFA(genNFA(t,
		pattern{src: "if"},
		pattern{src: "[a-z]+"},
		pattern{src: "=|=="},
	)))
	tests := []struct {
		input  string
		token  int
		length int
		ok     bool
	}{
		{input: "iffy x", token: 1, length: 4, ok: true},
		{input: "if(", token: 0, length: 2, ok: true},
		{input: "===", token: 2, length: 2, ok: true},
		{input: "(", ok: false},
		{input: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			a, length, ok := d.Longest(tt.input)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.token, a.Token)
			assert.Equal(t, tt.length, length)
		})
	}
}

func TestGenTransitionTable(t *testing.T) {
	d := Minimize(FromNFA(genNFA(t,
		pattern{src: "if"},
		pattern{src: "[a-z]+"},
		pattern{src: "あ+"},
	)))
	tab := GenTransitionTable(d)
	assert.Equal(t, 0, tab.InitialState)
	assert.Equal(t, len(d.States), tab.RowCount)
	assert.Equal(t, len(d.Classes), tab.ColCount)
	assert.Len(t, tab.Transition, tab.RowCount*tab.ColCount)

	for _, s := range d.States {
		if s.Accept == nil {
			assert.Equal(t, StateNil, tab.AcceptingStates[s.ID])
		} else {
			assert.Equal(t, s.Accept.Token, tab.AcceptingStates[s.ID])
		}
		for _, c := range "aifzあA" {
			assert.Equal(t, d.Step(s.ID, c), tab.Next(s.ID, c), "state: %v, char: %q", s.ID, c)
		}
	}
	assert.Equal(t, -1, tab.ByteClass['A'])
	assert.NotEqual(t, -1, tab.ByteClass['q'])
	assert.Equal(t, tab.ByteClass['a'], tab.ClassOf('q'))
	assert.NotEqual(t, tab.ClassOf('i'), tab.ClassOf('q'))
	assert.Equal(t, StateNil, tab.Next(StateNil, 'a'))
}

func TestWriteDot(t *testing.T) {
	d := Minimize(FromNFA(genNFA(t, pattern{src: "[a-c]x"})))
	var b strings.Builder
	require.NoError(t, d.WriteDot(&b))
	dot := b.String()
	assert.Contains(t, dot, `d0 -> d1 [label="a-c"]`)
	assert.Contains(t, dot, `d1 -> d2 [label="x"]`)
	assert.Contains(t, dot, "d2 [shape=doublecircle")
}

package lexical

import (
	"fmt"

	"github.com/nihei9/tabula/compressor"
	"github.com/nihei9/tabula/grammar/lexical/dfa"
	"github.com/nihei9/tabula/grammar/lexical/nfa"
	"github.com/nihei9/tabula/grammar/lexical/regex"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'tabula.lexical'.
func tracer() tracing.Trace {
	return tracing.Select("tabula.lexical")
}

// Artifact is the last artifact Compile constructs.
type Artifact string

const (
	TargetNFA   Artifact = "nfa"
	TargetDFA   Artifact = "dfa"
	TargetTable Artifact = "table"
)

const (
	CompressionLevelMin = compressor.LevelMin
	CompressionLevelMax = compressor.LevelMax
)

type compileConfig struct {
	target   Artifact
	minimize bool
	compLv   int
	eofToken int
}

type CompileOption func(config *compileConfig)

// Target selects the artifact Compile stops at. The default is TargetTable.
func Target(t Artifact) CompileOption {
	return func(config *compileConfig) {
		config.target = t
	}
}

// Minimize toggles the minimization of the DFA. It is enabled by default.
func Minimize(enabled bool) CompileOption {
	return func(config *compileConfig) {
		config.minimize = enabled
	}
}

func CompressionLevel(lv int) CompileOption {
	return func(config *compileConfig) {
		config.compLv = lv
	}
}

// EOFToken sets the kind number a lexer reports at the end of input.
func EOFToken(num int) CompileOption {
	return func(config *compileConfig) {
		config.eofToken = num
	}
}

// Compile builds one automaton recognizing all entries. An entry declared earlier wins over later
// ones. All malformed patterns are reported together as CompileErrors, and nothing is built then.
func Compile(lexspec *LexSpec, opts ...CompileOption) (*Lexicon, error) {
	config := &compileConfig{
		target:   TargetTable,
		minimize: true,
		compLv:   CompressionLevelMax,
		eofToken: -1,
	}
	for _, opt := range opts {
		opt(config)
	}
	switch config.target {
	case TargetNFA, TargetDFA, TargetTable:
	default:
		return nil, fmt.Errorf("unknown target: %v", config.target)
	}
	if config.compLv < CompressionLevelMin || config.compLv > CompressionLevelMax {
		return nil, fmt.Errorf("a compression level must be between %v and %v: %v", CompressionLevelMin, CompressionLevelMax, config.compLv)
	}

	err := lexspec.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid lexical specification:\n%w", err)
	}

	lex := &Lexicon{
		KindNames:        make([]string, len(lexspec.Entries)),
		Ignore:           make([]bool, len(lexspec.Entries)),
		Trees:            make([]regex.Node, len(lexspec.Entries)),
		EOFToken:         config.eofToken,
		compressionLevel: config.compLv,
	}

	var nfas []*nfa.NFA
	var cerrs CompileErrors
	for i, e := range lexspec.Entries {
		lex.KindNames[i] = e.Kind
		lex.Ignore[i] = e.Ignore

		ast, err := regex.Parse(e.Pattern)
		if err != nil {
			cerrs = append(cerrs, &CompileError{
				Kind:  e.Kind,
				Cause: err,
			})
			continue
		}
		n, err := nfa.Build(ast, nfa.Accept{
			Token:    i,
			Priority: i,
			Ignore:   e.Ignore,
		})
		if err != nil {
			cerrs = append(cerrs, &CompileError{
				Kind:  e.Kind,
				Cause: err,
			})
			continue
		}
		if n.Accepts("") {
			cerrs = append(cerrs, &CompileError{
				Kind:   e.Kind,
				Cause:  ErrEmptyMatch,
				Detail: e.Pattern,
			})
			continue
		}
		lex.Trees[i] = ast
		nfas = append(nfas, n)
	}
	if len(cerrs) > 0 {
		return nil, cerrs
	}

	lex.NFA = nfa.Merge(nfas...)
	tracer().Debugf("NFA: %v states for %v kinds", len(lex.NFA.States), len(nfas))
	if config.target == TargetNFA {
		return lex, nil
	}

	d := dfa.FromNFA(lex.NFA)
	if config.minimize {
		d = dfa.Minimize(d)
	}
	lex.DFA = d
	if config.target == TargetDFA {
		return lex, nil
	}

	lex.Table = dfa.GenTransitionTable(d)
	tracer().Debugf("transition table: %vx%v", lex.Table.RowCount, lex.Table.ColCount)
	return lex, nil
}

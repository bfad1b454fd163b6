package grammar

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nihei9/tabula/grammar/lexical"
	"github.com/nihei9/tabula/grammar/symbol"
	spec "github.com/nihei9/tabula/spec/grammar"
)

const (
	ClassLALR1 = "lalr1"
	ClassSLR1  = "slr1"
)

type compileConfig struct {
	isReportingEnabled bool
	class              string
	allowConflicts     bool
	lexOpts            []lexical.CompileOption
}

type CompileOption func(config *compileConfig)

func EnableReporting() CompileOption {
	return func(config *compileConfig) {
		config.isReportingEnabled = true
	}
}

// SLR makes Compile use FOLLOW sets as look-ahead symbols instead of LALR(1) look-ahead symbols.
func SLR() CompileOption {
	return func(config *compileConfig) {
		config.class = ClassSLR1
	}
}

// AllowConflicts makes Compile produce tables even when the grammar has conflicts. Shift/reduce
// conflicts are resolved as shift and reduce/reduce conflicts as the earlier production.
func AllowConflicts() CompileOption {
	return func(config *compileConfig) {
		config.allowConflicts = true
	}
}

// WithLexicalOptions passes options to the compiler of the token patterns.
func WithLexicalOptions(opts ...lexical.CompileOption) CompileOption {
	return func(config *compileConfig) {
		config.lexOpts = append(config.lexOpts, opts...)
	}
}

// Compile generates the parsing tables of a grammar and, when the grammar has token patterns, the
// transition table of its lexer. A *ConflictError is returned together with the report when the
// grammar has conflicts and AllowConflicts is not set.
func Compile(gram *Grammar, opts ...CompileOption) (*spec.CompiledGrammar, *spec.Report, error) {
	config := &compileConfig{
		class: ClassLALR1,
	}
	for _, opt := range opts {
		opt(config)
	}

	if gram.symbolTable.TerminalCount() <= symbol.SymbolEOF.Num().Int()+1 {
		return nil, nil, &GrammarError{Cause: ErrGrammarHasNoTerminal, Detail: gram.name}
	}

	var lexSpec *spec.LexicalSpec
	if gram.lexSpec != nil {
		lexOpts := append([]lexical.CompileOption{}, config.lexOpts...)
		lexOpts = append(lexOpts, lexical.Target(lexical.TargetTable))
		lexicon, err := lexical.Compile(gram.lexSpec, lexOpts...)
		if err != nil {
			var cErrs lexical.CompileErrors
			if errors.As(err, &cErrs) {
				var b strings.Builder
				writeCompileError(&b, cErrs[0])
				for _, cerr := range cErrs[1:] {
					fmt.Fprintf(&b, "\n")
					writeCompileError(&b, cerr)
				}
				return nil, nil, fmt.Errorf("%v", b.String())
			}
			return nil, nil, err
		}
		lexSpec, err = lexicon.Spec()
		if err != nil {
			return nil, nil, err
		}
	}

	terms, err := gram.symbolTable.TerminalTexts()
	if err != nil {
		return nil, nil, err
	}

	nonTerms, err := gram.symbolTable.NonTerminalTexts()
	if err != nil {
		return nil, nil, err
	}

	firstSet, err := genFirstSet(gram.productionSet, gram.symbolTable)
	if err != nil {
		return nil, nil, err
	}

	lr0, err := genLR0Automaton(gram.productionSet, gram.augmentedStartSymbol, gram.Symbols())
	if err != nil {
		return nil, nil, err
	}

	followSet, err := genFollowSet(gram.productionSet, firstSet, gram.symbolTable)
	if err != nil {
		return nil, nil, err
	}

	var tab *ParsingTable
	var report *spec.Report
	var conflictErr *ConflictError
	{
		var automaton *lr0Automaton
		switch config.class {
		case ClassSLR1:
			slr1, err := genSLR1Automaton(lr0, gram.productionSet, followSet)
			if err != nil {
				return nil, nil, err
			}
			automaton = slr1.lr0Automaton
		default:
			lalr1, err := genLALR1Automaton(lr0, gram.productionSet, firstSet)
			if err != nil {
				return nil, nil, err
			}
			automaton = lalr1.lr0Automaton
		}

		b := &lrTableBuilder{
			automaton:    automaton,
			prods:        gram.productionSet,
			termCount:    len(terms),
			nonTermCount: len(nonTerms),
			symTab:       gram.symbolTable,
		}
		tab, err = b.build()
		if err != nil {
			return nil, nil, err
		}

		if config.isReportingEnabled {
			report, err = b.genReport(tab, gram, firstSet, followSet)
			if err != nil {
				return nil, nil, err
			}
			report.Class = config.class
		}

		conflictErr = b.conflictError()
	}
	if conflictErr != nil {
		tracer().Infof("grammar %v has %v conflicts", gram.name, len(conflictErr.Conflicts))
		if !config.allowConflicts {
			return nil, report, conflictErr
		}
	}

	action := make([]int, len(tab.actionTable))
	for i, e := range tab.actionTable {
		action[i] = int(e)
	}
	goTo := make([]int, len(tab.goToTable))
	for i, e := range tab.goToTable {
		goTo[i] = int(e)
	}

	prods := gram.productionSet.all()
	lhsSyms := make([]int, len(prods)+1)
	altSymCounts := make([]int, len(prods)+1)
	for _, p := range prods {
		lhsSyms[p.num] = p.lhs.Num().Int()
		altSymCounts[p.num] = p.rhsLen
	}

	first := make([][]int, len(nonTerms))
	follow := make([][]int, len(nonTerms))
	for _, sym := range gram.symbolTable.NonTerminalSymbols() {
		if fst := firstSet.findBySymbol(sym); fst != nil {
			first[sym.Num()] = symbolNums(fst.symbols())
		}
		if flw, err := followSet.find(sym); err == nil {
			follow[sym.Num()] = symbolNums(flw.symbols())
		}
	}

	var kindToTerm []int
	if gram.lexSpec != nil {
		kindToTerm = append([]int{}, gram.kindToTerminal...)
	}

	return &spec.CompiledGrammar{
		Name:    gram.name,
		Lexical: lexSpec,
		Syntactic: &spec.SyntacticSpec{
			Class:                   config.class,
			Action:                  action,
			GoTo:                    goTo,
			StateCount:              tab.stateCount,
			InitialState:            tab.InitialState.Int(),
			StartProduction:         productionNumStart.Int(),
			LHSSymbols:              lhsSyms,
			AlternativeSymbolCounts: altSymCounts,
			Terminals:               terms,
			TerminalCount:           tab.terminalCount,
			KindToTerminal:          kindToTerm,
			NonTerminals:            nonTerms,
			NonTerminalCount:        tab.nonTerminalCount,
			EOFSymbol:               symbol.SymbolEOF.Num().Int(),
			First:                   first,
			Follow:                  follow,
		},
	}, report, nil
}

func writeCompileError(w io.Writer, cErr *lexical.CompileError) {
	fmt.Fprintf(w, "%v: %v", cErr.Kind, cErr.Cause)
	if cErr.Detail != "" {
		fmt.Fprintf(w, ": %v", cErr.Detail)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/nihei9/tabula/grammar"
	"github.com/nihei9/tabula/grammar/lexical"
	"github.com/spf13/cobra"
)

const (
	dotNFA    = "nfa"
	dotDFA    = "dfa"
	dotMinDFA = "min-dfa"
	dotLR0    = "lr0"
)

var dotFlags = struct {
	what *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "dot <grammar file path>",
		Short:   "Print an automaton in the Graphviz DOT format",
		Example: `  tabula dot grammar.json --what min-dfa | dot -Tsvg -o min-dfa.svg`,
		Args:    cobra.ExactArgs(1),
		RunE:    runDot,
	}
	dotFlags.what = cmd.Flags().String("what", dotLR0, fmt.Sprintf("automaton to print (%v|%v|%v|%v)", dotNFA, dotDFA, dotMinDFA, dotLR0))
	rootCmd.AddCommand(cmd)
}

func runDot(cmd *cobra.Command, args []string) error {
	gram, err := readGrammar(args[0])
	if err != nil {
		return err
	}

	switch *dotFlags.what {
	case dotLR0:
		a, err := grammar.Analyze(gram)
		if err != nil {
			return err
		}
		return a.WriteDot(os.Stdout)
	case dotNFA:
		lex, err := compileLexSpec(gram, lexical.Target(lexical.TargetNFA))
		if err != nil {
			return err
		}
		return lex.NFA.WriteDot(os.Stdout)
	case dotDFA, dotMinDFA:
		lex, err := compileLexSpec(gram, lexical.Target(lexical.TargetDFA), lexical.Minimize(*dotFlags.what == dotMinDFA))
		if err != nil {
			return err
		}
		return lex.DFA.WriteDot(os.Stdout)
	}
	return fmt.Errorf("unknown automaton: %v", *dotFlags.what)
}

func compileLexSpec(gram *grammar.Grammar, opts ...lexical.CompileOption) (*lexical.Lexicon, error) {
	lexSpec := gram.LexSpec()
	if lexSpec == nil {
		return nil, fmt.Errorf("grammar %v has no token patterns", gram.Name())
	}
	return lexical.Compile(lexSpec, opts...)
}

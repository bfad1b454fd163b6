package main

import (
	"fmt"
	"strings"

	"github.com/chzyer/readline"
	"github.com/nihei9/tabula/driver/lexer"
	"github.com/nihei9/tabula/grammar/lexical"
	"github.com/nihei9/tabula/grammar/lexical/regex"
	spec "github.com/nihei9/tabula/spec/grammar"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "repl <grammar file path>",
		Short:   "Tokenize lines interactively",
		Example: `  tabula repl grammar.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runREPL,
	}
	rootCmd.AddCommand(cmd)
}

// intp tokenizes each line it reads. A line starting with ':' is a command.
type intp struct {
	lexicon *lexical.Lexicon
	entries []*lexical.LexEntry
	lexSpec *spec.LexicalSpec
	repl    *readline.Instance
}

func runREPL(cmd *cobra.Command, args []string) error {
	gram, err := readGrammar(args[0])
	if err != nil {
		return err
	}
	lex, err := compileLexSpec(gram)
	if err != nil {
		return err
	}
	lexSpec, err := lex.Spec()
	if err != nil {
		return err
	}

	repl, err := readline.New(gram.Name() + "> ")
	if err != nil {
		return err
	}
	defer repl.Close()

	in := &intp{
		lexicon: lex,
		entries: gram.LexSpec().Entries,
		lexSpec: lexSpec,
		repl:    repl,
	}
	pterm.Info.Println(fmt.Sprintf("%v kinds, %v DFA states; quit with :quit or <ctrl>D", len(lex.KindNames), len(lex.DFA.States)))
	in.loop()
	return nil
}

func (in *intp) loop() {
	for {
		line, err := in.repl.Readline()
		if err != nil { // io.EOF or interrupt
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		quit, err := in.eval(line)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	fmt.Println("Good bye!")
}

func (in *intp) eval(line string) (bool, error) {
	if strings.HasPrefix(line, ":") {
		fields := strings.Fields(line)
		switch fields[0] {
		case ":quit", ":q":
			return true, nil
		case ":kinds":
			for _, e := range in.entries {
				if e.Ignore {
					pterm.Info.Println(fmt.Sprintf("%v %v (ignored)", e.Kind, e.Pattern))
				} else {
					pterm.Info.Println(fmt.Sprintf("%v %v", e.Kind, e.Pattern))
				}
			}
			return false, nil
		case ":tree":
			if len(fields) != 2 {
				return false, fmt.Errorf("usage: :tree <kind>")
			}
			for i, k := range in.lexicon.KindNames {
				if k == fields[1] {
					var b strings.Builder
					regex.PrintTree(&b, in.lexicon.Trees[i])
					fmt.Print(b.String())
					return false, nil
				}
			}
			return false, fmt.Errorf("unknown kind: %v", fields[1])
		case ":match":
			input := strings.TrimPrefix(strings.TrimPrefix(line, fields[0]), " ")
			acc, ok := in.lexicon.DFA.Match(input)
			if !ok {
				pterm.Warning.Println(fmt.Sprintf("%q matches no kind", input))
				return false, nil
			}
			pterm.Success.Println(fmt.Sprintf("%q matches %v", input, in.lexicon.KindNames[acc.Token]))
			return false, nil
		}
		return false, fmt.Errorf("unknown command: %v (commands: :kinds, :tree <kind>, :match <text>, :quit)", fields[0])
	}

	l, err := lexer.NewLexer(in.lexSpec, strings.NewReader(line))
	if err != nil {
		return false, err
	}
	for {
		tok, err := l.Next()
		if err != nil {
			return false, err
		}
		if tok.EOF {
			break
		}
		switch {
		case tok.Invalid:
			pterm.Error.Println(fmt.Sprintf("%v:%v <invalid> %q", tok.Row+1, tok.Col+1, tok.Lexeme))
		case tok.Ignored:
			pterm.Info.Println(fmt.Sprintf("%v:%v %v %q (ignored)", tok.Row+1, tok.Col+1, tok.KindName, tok.Lexeme))
		default:
			pterm.Info.Println(fmt.Sprintf("%v:%v %v %q", tok.Row+1, tok.Col+1, tok.KindName, tok.Lexeme))
		}
	}
	return false, nil
}

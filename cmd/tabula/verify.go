package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nihei9/tabula/crosscheck"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "verify <grammar file path> <source file path>",
		Short:   "Compare the tokens of a source with maleeni and lexmachine",
		Example: `  tabula verify grammar.json src.txt`,
		Args:    cobra.ExactArgs(2),
		RunE:    runVerify,
	}
	rootCmd.AddCommand(cmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	gram, err := readGrammar(args[0])
	if err != nil {
		return err
	}
	lexSpec := gram.LexSpec()
	if lexSpec == nil {
		return fmt.Errorf("grammar %v has no token patterns", gram.Name())
	}

	src, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("Cannot read the source file %s: %w", args[1], err)
	}

	res, err := crosscheck.Check(lexSpec, string(src))
	if err != nil {
		return err
	}
	if !res.OK() {
		for _, d := range res.Divergences {
			pterm.Error.Println(d.String())
		}
		return errors.New("Verification failed")
	}
	pterm.Success.Println(res.String())
	return nil
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nihei9/tabula/grammar"
	"github.com/nihei9/tabula/tester"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "test <grammar file path> <test file path>|<test directory path>",
		Short:   "Test the token patterns of a grammar",
		Example: `  tabula test grammar.json test`,
		Args:    cobra.ExactArgs(2),
		RunE:    runTest,
	}
	rootCmd.AddCommand(cmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	cs := tester.ListTestCases(args[1])
	var readErrs []error
	for _, c := range cs {
		if c.Error != nil {
			readErrs = append(readErrs, fmt.Errorf("%v: %w", c.FilePath, c.Error))
		}
	}
	if len(readErrs) > 0 {
		return fmt.Errorf("Cannot read test cases:\n%w", errors.Join(readErrs...))
	}

	g, err := readGrammar(args[0])
	if err != nil {
		return fmt.Errorf("Cannot read a grammar: %w", err)
	}
	cg, _, err := grammar.Compile(g, grammar.AllowConflicts())
	if err != nil {
		return fmt.Errorf("Cannot compile the grammar: %w", err)
	}

	t := &tester.Tester{
		Grammar: cg,
		Cases:   cs,
	}
	failed := 0
	for _, r := range t.Run() {
		fmt.Fprintln(os.Stdout, r)
		if r.Error != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%v of %v test cases failed", failed, len(cs))
	}
	return nil
}

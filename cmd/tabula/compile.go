package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	verr "github.com/nihei9/tabula/error"
	"github.com/nihei9/tabula/grammar"
	"github.com/nihei9/tabula/grammar/lexical"
	"github.com/nihei9/tabula/spec"
	gspec "github.com/nihei9/tabula/spec/grammar"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var compileFlags = struct {
	output         *string
	slr            *bool
	allowConflicts *bool
	compression    *int
	noMinimize     *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "compile",
		Short:   "Compile a grammar definition into a parsing table and a lexer table",
		Example: `  tabula compile grammar.json -o grammar-table.json`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runCompile,
	}
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	compileFlags.slr = cmd.Flags().Bool("slr", false, "use SLR(1) instead of LALR(1)")
	compileFlags.allowConflicts = cmd.Flags().Bool("allow-conflicts", false, "resolve conflicts implicitly instead of failing")
	compileFlags.compression = cmd.Flags().Int("compression", lexical.CompressionLevelMax, fmt.Sprintf("compression level of the lexer table (%v-%v)", lexical.CompressionLevelMin, lexical.CompressionLevelMax))
	compileFlags.noMinimize = cmd.Flags().Bool("no-minimize", false, "disable DFA minimization")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	var defPath string
	if len(args) > 0 {
		defPath = args[0]
	}

	gram, err := readGrammar(defPath)
	if err != nil {
		return err
	}

	opts := []grammar.CompileOption{
		grammar.EnableReporting(),
		grammar.WithLexicalOptions(
			lexical.CompressionLevel(*compileFlags.compression),
			lexical.Minimize(!*compileFlags.noMinimize),
		),
	}
	if *compileFlags.slr {
		opts = append(opts, grammar.SLR())
	}
	if *compileFlags.allowConflicts {
		opts = append(opts, grammar.AllowConflicts())
	}

	cgram, report, err := grammar.Compile(gram, opts...)
	if err != nil {
		var conflictErr *grammar.ConflictError
		if errors.As(err, &conflictErr) && report != nil {
			_, reportPath, pathErr := makeOutputFilePaths(gram.Name(), *compileFlags.output)
			if pathErr == nil && writeJSON(reportPath, report) == nil {
				pterm.Info.Println(fmt.Sprintf("the report was written to %v", reportPath))
			}
		}
		return err
	}

	err = writeCompiledGrammarAndReport(cgram, report, *compileFlags.output)
	if err != nil {
		return fmt.Errorf("Cannot write an output files: %w", err)
	}

	sr, rr := report.ConflictCount()
	if sr+rr > 0 {
		pterm.Warning.Println(fmt.Sprintf("%v shift/reduce and %v reduce/reduce conflicts were resolved implicitly", sr, rr))
	}
	if unreachable := gram.UnreachableNonTerminals(); len(unreachable) > 0 {
		names := make([]string, len(unreachable))
		for i, sym := range unreachable {
			names[i], _ = gram.SymbolTable().ToText(sym)
		}
		pterm.Warning.Println(fmt.Sprintf("unreachable non-terminals: %v", names))
	}

	return nil
}

// readGrammar reads a definition from a file, or from the stdin when path is empty.
func readGrammar(path string) (gram *grammar.Grammar, retErr error) {
	src := io.Reader(os.Stdin)
	sourceName := "stdin"
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("Cannot open the grammar file %s: %w", path, err)
		}
		defer f.Close()
		src = f
		sourceName = path
	}
	defer func() {
		if retErr == nil {
			return
		}
		var specErrs verr.SpecErrors
		if errors.As(retErr, &specErrs) {
			for _, err := range specErrs {
				err.FilePath = path
				err.SourceName = sourceName
			}
		}
	}()

	def, err := spec.Parse(src)
	if err != nil {
		return nil, err
	}

	b := grammar.GrammarBuilder{
		Def: def,
	}
	return b.Build()
}

// writeCompiledGrammarAndReport writes a compiled grammar and a report to a files located at a specified path.
// This function selects one of the following output methods depending on how the path is specified.
//
//  1. When the path is a directory path, this function writes the compiled grammar and the report to
//     <path>/<grammar-name>.json and <path>/<grammar-name>-report.json files, respectively.
//  2. When the path is a file path or a non-exitent path, this function asumes that the path represents a file
//     path for the compiled grammar. Then it also writes the report in the same directory as the compiled grammar.
//     The report file is named <grammar-name>-report.json.
//  3. When the path is an empty string, this function writes the compiled grammar to the stdout and writes
//     the report to a file named <current-directory>/<grammar-name>-report.json.
func writeCompiledGrammarAndReport(cgram *gspec.CompiledGrammar, report *gspec.Report, path string) error {
	cgramPath, reportPath, err := makeOutputFilePaths(cgram.Name, path)
	if err != nil {
		return err
	}

	if cgramPath != "" {
		err = writeJSON(cgramPath, cgram)
	} else {
		err = encodeJSON(os.Stdout, cgram)
	}
	if err != nil {
		return err
	}

	return writeJSON(reportPath, report)
}

func writeJSON(path string, v interface{}) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	return encodeJSON(f, v)
}

func encodeJSON(w io.Writer, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%v\n", string(b))
	return err
}

func makeOutputFilePaths(gramName string, path string) (string, string, error) {
	reportFileName := gramName + "-report.json"

	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", "", err
		}
		return "", filepath.Join(wd, reportFileName), nil
	}

	fi, err := os.Stat(path)
	if err != nil && !os.IsNotExist(err) {
		return "", "", err
	}
	if os.IsNotExist(err) || !fi.IsDir() {
		dir, _ := filepath.Split(path)
		return path, filepath.Join(dir, reportFileName), nil
	}

	return filepath.Join(path, gramName+".json"), filepath.Join(path, reportFileName), nil
}

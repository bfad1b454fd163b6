package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nihei9/tabula/grammar"
	spec "github.com/nihei9/tabula/spec/grammar"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "show",
		Short:   "Print a report in a readable format",
		Example: `  tabula show grammar-report.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runShow,
	}
	rootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	report, err := readReport(args[0])
	if err != nil {
		return err
	}

	return writeReport(os.Stdout, report)
}

func readReport(path string) (*spec.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the report %s: %w", path, err)
	}
	defer f.Close()

	d, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	report := &spec.Report{}
	err = json.Unmarshal(d, report)
	if err != nil {
		return nil, err
	}

	return report, nil
}

type reportWriter struct {
	w      io.Writer
	report *spec.Report
}

func writeReport(w io.Writer, report *spec.Report) error {
	rw := &reportWriter{
		w:      w,
		report: report,
	}

	fmt.Fprintf(w, "# %v (%v)\n\n", report.Name, report.Class)

	fmt.Fprintf(w, "# Conflicts\n\n%v\n\n", rw.conflictSummary())

	fmt.Fprintf(w, "# Terminals\n\n")
	err := rw.table([]string{"Number", "Name", "Pattern"}, func(appendRow func(...string)) {
		for _, t := range report.Terminals {
			if t == nil {
				continue
			}
			appendRow(fmt.Sprint(t.Number), t.Name, t.Pattern)
		}
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\n# Non-terminals\n\n")
	err = rw.table([]string{"Number", "Name", "First", "Follow"}, func(appendRow func(...string)) {
		for _, n := range report.NonTerminals {
			if n == nil {
				continue
			}
			appendRow(fmt.Sprint(n.Number), n.Name, rw.termNames(n.First), rw.termNames(n.Follow))
		}
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\n# Productions\n\n")
	err = rw.table([]string{"Number", "Production"}, func(appendRow func(...string)) {
		for _, p := range report.Productions {
			if p == nil {
				continue
			}
			appendRow(fmt.Sprint(p.Number), rw.itemText(p, -1))
		}
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\n# States\n")
	for _, s := range report.States {
		fmt.Fprintf(w, "\n## State %v\n\n", s.Number)
		for _, item := range s.Kernel {
			fmt.Fprintf(w, "%4v %v\n", item.Production, rw.itemText(report.Productions[item.Production], item.Dot))
		}
		fmt.Fprintf(w, "\n")

		err := rw.table([]string{"Action", "Symbol", "Target"}, func(appendRow func(...string)) {
			if s.Accept {
				appendRow("accept", rw.termName(1), "")
			}
			for _, t := range s.Shift {
				appendRow("shift", rw.termName(t.Symbol), fmt.Sprint(t.State))
			}
			for _, r := range s.Reduce {
				appendRow("reduce", rw.termNames(r.LookAhead), fmt.Sprint(r.Production))
			}
			for _, t := range s.GoTo {
				appendRow("goto", rw.nonTermName(t.Symbol), fmt.Sprint(t.State))
			}
		})
		if err != nil {
			return err
		}

		for _, c := range s.SRConflict {
			fmt.Fprintf(w, "%v\n", rw.srConflictText(c))
		}
		for _, c := range s.RRConflict {
			fmt.Fprintf(w, "%v\n", rw.rrConflictText(c))
		}
	}

	return nil
}

func (rw *reportWriter) table(header []string, rows func(appendRow func(...string))) error {
	table := tablewriter.NewWriter(rw.w)
	table.Header(header)
	var err error
	rows(func(cols ...string) {
		if err != nil {
			return
		}
		err = table.Append(cols)
	})
	if err != nil {
		return err
	}
	return table.Render()
}

func (rw *reportWriter) conflictSummary() string {
	sr, rr := rw.report.ConflictCount()
	if sr+rr == 0 {
		return "No conflict"
	}
	return fmt.Sprintf("%v shift/reduce and %v reduce/reduce conflicts occurred and were resolved implicitly.", sr, rr)
}

func (rw *reportWriter) termName(sym int) string {
	if sym < 0 || sym >= len(rw.report.Terminals) || rw.report.Terminals[sym] == nil {
		return fmt.Sprintf("?%v", sym)
	}
	return rw.report.Terminals[sym].Name
}

func (rw *reportWriter) termNames(syms []int) string {
	names := make([]string, len(syms))
	for i, sym := range syms {
		names[i] = rw.termName(sym)
	}
	return strings.Join(names, ", ")
}

func (rw *reportWriter) nonTermName(sym int) string {
	if sym < 0 || sym >= len(rw.report.NonTerminals) || rw.report.NonTerminals[sym] == nil {
		return fmt.Sprintf("?%v", sym)
	}
	return rw.report.NonTerminals[sym].Name
}

// itemText prints a production with a dot before the symbol at position dot. A negative dot
// prints the production alone.
func (rw *reportWriter) itemText(prod *spec.Production, dot int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v →", rw.nonTermName(prod.LHS))
	for i, e := range prod.RHS {
		if i == dot {
			fmt.Fprintf(&b, " ・")
		}
		if e > 0 {
			fmt.Fprintf(&b, " %v", rw.termName(e))
		} else {
			fmt.Fprintf(&b, " %v", rw.nonTermName(e*-1))
		}
	}
	if dot >= len(prod.RHS) {
		fmt.Fprintf(&b, " ・")
	}
	return b.String()
}

func (rw *reportWriter) srConflictText(sr *spec.SRConflict) string {
	var adopted string
	switch {
	case sr.AdoptedState != nil:
		adopted = fmt.Sprintf("shift %v", *sr.AdoptedState)
	case sr.AdoptedProduction != nil:
		adopted = fmt.Sprintf("reduce %v", *sr.AdoptedProduction)
	}
	resolvedBy := "?"
	if sr.ResolvedBy == grammar.ResolvedByShift.Int() {
		resolvedBy = "shift is preferred (default rule)"
	}
	return fmt.Sprintf("shift/reduce conflict (shift %v, reduce %v) on %v: %v adopted because %v", sr.State, sr.Production, rw.termName(sr.Symbol), adopted, resolvedBy)
}

func (rw *reportWriter) rrConflictText(rr *spec.RRConflict) string {
	resolvedBy := "?"
	if rr.ResolvedBy == grammar.ResolvedByProdOrder.Int() {
		resolvedBy = fmt.Sprintf("production %v appears first (default rule)", rr.AdoptedProduction)
	}
	return fmt.Sprintf("reduce/reduce conflict (%v, %v) on %v: reduce %v adopted because %v", rr.Production1, rr.Production2, rw.termName(rr.Symbol), rr.AdoptedProduction, resolvedBy)
}

/*
Package grammar builds LR parsing tables from a context-free grammar.

A grammar is declared with a Builder (or from a definition file with a GrammarBuilder), then
augmented with a start production S' → S. From the augmented grammar the package computes the
canonical collection of LR(0) item sets, the FIRST and FOLLOW sets of every non-terminal, LALR(1)
or SLR(1) look-ahead symbols, and finally dense ACTION/GOTO tables.

Nullable non-terminals are not supported: a grammar containing a production with an empty body is
rejected with an UnsupportedError when FIRST sets are computed.
*/
package grammar

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'tabula.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("tabula.grammar")
}

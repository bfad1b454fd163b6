package grammar

import (
	"fmt"
	"strings"
)

type SemanticError struct {
	message string
}

func newSemanticError(message string) *SemanticError {
	return &SemanticError{
		message: message,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

var (
	ErrUndefinedSymbol      = newSemanticError("undefined symbol")
	ErrInvalidLHS           = newSemanticError("the LHS of a production must be a non-terminal symbol")
	ErrDuplicateProduction  = newSemanticError("duplicate production")
	ErrTooManyProductions   = newSemanticError("too many productions")
	ErrNoStartSymbol        = newSemanticError("a grammar needs a start symbol")
	ErrNoStartProduction    = newSemanticError("the start symbol has no production")
	ErrClosed               = newSemanticError("the grammar is already built")
	ErrDuplicateName        = newSemanticError("duplicate names are not allowed between terminals and non-terminals")
	ErrDuplicateTerminal    = newSemanticError("duplicate terminal")
	ErrTermCannotBeIgnored  = newSemanticError("an ignored token cannot appear in productions")
	ErrNullableUnsupported  = newSemanticError("nullable symbols are not supported")
	ErrFixedPointDiverged   = newSemanticError("a fixed-point computation exceeded its iteration bound")
	ErrUnknownProduction    = newSemanticError("unknown production")
	ErrDotOutOfRange        = newSemanticError("a dot position is out of range")
	ErrGrammarHasNoTerminal = newSemanticError("a grammar needs at least one terminal symbol")
)

// GrammarError reports a malformed grammar. Cause is one of the Err* values of this package.
type GrammarError struct {
	Cause  error
	Detail string
}

func (e *GrammarError) Error() string {
	if e.Detail == "" {
		return e.Cause.Error()
	}
	return fmt.Sprintf("%v: %v", e.Cause, e.Detail)
}

func (e *GrammarError) Unwrap() error {
	return e.Cause
}

// UnsupportedError reports a grammar feature this package cannot handle, such as a nullable
// non-terminal.
type UnsupportedError struct {
	Cause  error
	Symbol string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("not supported: %v: %v", e.Cause, e.Symbol)
}

func (e *UnsupportedError) Unwrap() error {
	return e.Cause
}

type ConflictKind string

const (
	ConflictKindShiftReduce  = ConflictKind("shift/reduce")
	ConflictKindReduceReduce = ConflictKind("reduce/reduce")
)

// Conflict describes two actions competing for the same ACTION table entry.
type Conflict struct {
	Kind   ConflictKind
	State  int
	Symbol string

	// NextState is the target of the shift action in a shift/reduce conflict.
	NextState int

	// Production1 is the production of the reduce action in a shift/reduce conflict, or the
	// earlier production in a reduce/reduce conflict.
	Production1 int
	Production2 int
}

func (c *Conflict) String() string {
	switch c.Kind {
	case ConflictKindShiftReduce:
		return fmt.Sprintf("state %v: %v conflict on %v: shift %v / reduce %v", c.State, c.Kind, c.Symbol, c.NextState, c.Production1)
	default:
		return fmt.Sprintf("state %v: %v conflict on %v: reduce %v / reduce %v", c.State, c.Kind, c.Symbol, c.Production1, c.Production2)
	}
}

// ConflictError is returned when a parsing table has conflicts and conflicts are not allowed.
type ConflictError struct {
	Conflicts []*Conflict
}

func (e *ConflictError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v conflicts", len(e.Conflicts))
	for _, c := range e.Conflicts {
		fmt.Fprintf(&b, "\n%v", c)
	}
	return b.String()
}

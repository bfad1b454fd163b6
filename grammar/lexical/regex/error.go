package regex

import "fmt"

var (
	// lexical errors
	SynErrIncompletedEscSeq = fmt.Errorf("incompleted escape sequence; unexpected EOF following \\")
	SynErrInvalidEscSeq     = fmt.Errorf("invalid escape sequence")
	SynErrInvalidCodePoint  = fmt.Errorf("code points must consist of just 4 hex digits")
	SynErrBExpUnclosed      = fmt.Errorf("unclosed bracket expression")
	SynErrBExpNoElem        = fmt.Errorf("a bracket expression must include at least one character")
	SynErrRangeInvalidOrder = fmt.Errorf("a range expression with invalid order")
	SynErrRangeInvalidForm  = fmt.Errorf("invalid range expression")
	SynErrRepInvalidForm    = fmt.Errorf("invalid repetition expression")
	SynErrRepTooLarge       = fmt.Errorf("a repetition count must be less than or equal to %v", maxRepeat)

	// syntax errors
	SynErrNullPattern      = fmt.Errorf("a pattern must be a non-empty character sequence")
	SynErrAltLackOfOperand = fmt.Errorf("an alternation expression must have operands")
	SynErrRepNoTarget      = fmt.Errorf("a repeat expression must have an operand")
	SynErrGroupNoElem      = fmt.Errorf("a grouping expression must include at least one character")
	SynErrGroupUnclosed    = fmt.Errorf("unclosed grouping expression")
	SynErrGroupNoInitiator = fmt.Errorf(") needs preceding (")
)

// SyntaxError reports a malformed pattern. Pos is the 0-based rune offset of the offending token.
type SyntaxError struct {
	Pos    int
	Cause  error
	Detail string
}

func (e *SyntaxError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%v: %v", e.Pos, e.Cause)
	}
	return fmt.Sprintf("%v: %v: %v", e.Pos, e.Cause, e.Detail)
}

func (e *SyntaxError) Unwrap() error {
	return e.Cause
}

package lexical

import (
	"fmt"
	"strings"
)

var ErrEmptyMatch = fmt.Errorf("a pattern must not match the empty string")

// CompileError reports a pattern that failed to compile. Cause is a *regex.SyntaxError for a
// malformed pattern.
type CompileError struct {
	Kind   string
	Cause  error
	Detail string
}

func (e *CompileError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%v: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("%v: %v: %v", e.Kind, e.Cause, e.Detail)
}

func (e *CompileError) Unwrap() error {
	return e.Cause
}

// CompileErrors collects the errors of all entries of a lexical specification.
type CompileErrors []*CompileError

func (es CompileErrors) Error() string {
	var b strings.Builder
	for i, e := range es {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(e.Error())
	}
	return b.String()
}

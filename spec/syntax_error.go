package spec

import "fmt"

type SyntaxError struct {
	message string
}

func newSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		message: message,
	}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s", e.message)
}

var (
	// JSON errors
	synErrInvalidJSON   = newSyntaxError("invalid JSON")
	synErrInvalidType   = newSyntaxError("a value has an invalid type")
	synErrUnknownField  = newSyntaxError("unknown field")
	synErrTrailingValue = newSyntaxError("a definition must consist of a single JSON object")
	synErrNullElement   = newSyntaxError("an array element must be an object, not null")

	// definition errors
	synErrNoName           = newSyntaxError("a definition needs a name")
	synErrNoToken          = newSyntaxError("a definition must have at least one token")
	synErrNoTokenName      = newSyntaxError("a token name is missing")
	synErrNoPattern        = newSyntaxError("a token pattern is missing")
	synErrDuplicateToken   = newSyntaxError("duplicate token name")
	synErrNoProduction     = newSyntaxError("a grammar must have at least one production")
	synErrNoProductionName = newSyntaxError("a production name is missing")
	synErrEmptySymbolName  = newSyntaxError("a symbol name in an alternative is empty")
)

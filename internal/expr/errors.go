package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax is wrapped by every *SyntaxError.
	ErrSyntax = errors.New("expr: syntax error")

	// ErrUnknownFunction means an identifier was called that is not an operation.
	ErrUnknownFunction = errors.New("expr: unknown function")

	// ErrUndefinedVariable means the environment has no value for a variable.
	ErrUndefinedVariable = errors.New("expr: undefined variable")
)

// SyntaxError reports malformed input at a byte offset.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v at %d: %s", ErrSyntax, e.Pos, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

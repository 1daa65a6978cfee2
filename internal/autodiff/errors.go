package autodiff

import (
	"errors"
	"fmt"
)

// ErrInvalidOperand is returned (or panicked with) when an operation is
// applied to something that is neither a *Value nor a Go number.
var ErrInvalidOperand = errors.New("autodiff: invalid operand")

// OperandError describes a rejected operand.
type OperandError struct {
	Op  string // operation being built, e.g. "add"
	Got any    // the rejected operand
}

func (e *OperandError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%v: cannot use %T as a value", ErrInvalidOperand, e.Got)
	}
	return fmt.Sprintf("%v: %s: cannot use %T as a value", ErrInvalidOperand, e.Op, e.Got)
}

// Unwrap makes errors.Is(err, ErrInvalidOperand) hold.
func (e *OperandError) Unwrap() error {
	return ErrInvalidOperand
}

// ErrInvalidOp is returned by Apply for an op whose kind is not defined.
var ErrInvalidOp = errors.New("autodiff: invalid op")

// ArityError reports an operand count that does not match the op.
type ArityError struct {
	Op   string
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("autodiff: %s expects %d operands, got %d", e.Op, e.Want, e.Got)
}

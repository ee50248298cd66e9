package vm

import (
	"errors"
	"fmt"
)

var (
	ErrStackUnderflow = errors.New("vm: stack underflow")
	ErrInvalidOperand = errors.New("vm: invalid operand kind")
	ErrBadAddress     = errors.New("vm: jump target out of range")
	ErrNoInput        = errors.New("vm: input exhausted")
)

// ExecError aborts an execution. It names the instruction that failed.
type ExecError struct {
	Op   string // lexeme or kind of the failing instruction
	Addr int    // its address in the VCI
	Line int    // its source line, 0 if synthetic
	Err  error
}

func (e *ExecError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("runtime error at %d (%s, line %d): %v", e.Addr, e.Op, e.Line, e.Err)
	}
	return fmt.Sprintf("runtime error at %d (%s): %v", e.Addr, e.Op, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

func invalidOperand(op string, v Value) error {
	return fmt.Errorf("%w: %s cannot take %s", ErrInvalidOperand, op, v.Kind())
}

func invalidOperands(op string, a, b Value) error {
	return fmt.Errorf("%w: %s cannot take %s and %s", ErrInvalidOperand, op, a.Kind(), b.Kind())
}

package vm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/vci/compiler"
)

var log = commonlog.GetLogger("vci.vm")

// Executor runs a VCI directly on an operand stack. Control flow follows
// the absolute addresses embedded in the sequence.
//
// The variable and program tables are supplied by the caller and outlive
// a single Execute call; the operand stack does not.
type Executor struct {
	vars     *VariableTable
	programs *ProgramTable
	out      io.Writer
	in       *bufio.Reader

	code  []compiler.Token
	ip    int
	stack []Value

	// Trace logs each instruction at debug level before it runs.
	Trace bool

	// OnStep, if set, is called with each instruction before it runs.
	OnStep func(ip int, tok compiler.Token)
}

// NewExecutor creates an executor writing printed output to out.
func NewExecutor(vars *VariableTable, programs *ProgramTable, out io.Writer) *Executor {
	return &Executor{
		vars:     vars,
		programs: programs,
		out:      out,
		stack:    make([]Value, 0, 64),
	}
}

// SetInput sets the reader input statements read lines from.
func (e *Executor) SetInput(r io.Reader) {
	if br, ok := r.(*bufio.Reader); ok {
		e.in = br
		return
	}
	e.in = bufio.NewReader(r)
}

// Variables returns the variable table.
func (e *Executor) Variables() *VariableTable {
	return e.vars
}

// Programs returns the program-name table.
func (e *Executor) Programs() *ProgramTable {
	return e.programs
}

// StackDepth returns the number of values left on the operand stack.
func (e *Executor) StackDepth() int {
	return len(e.stack)
}

// Execute runs code from address 0 until the instruction pointer reaches
// the end. The first failing instruction aborts the run; table updates
// made before it are kept.
func (e *Executor) Execute(code []compiler.Token) error {
	e.code = code
	e.ip = 0
	e.stack = e.stack[:0]

	for e.ip < len(e.code) {
		tok := e.code[e.ip]
		if e.OnStep != nil {
			e.OnStep(e.ip, tok)
		}
		if e.Trace {
			log.Debugf("[%04d] %-10s %-12q sp=%d", e.ip, tok.Type, tok.Lexeme, len(e.stack))
		}

		jumped, err := e.step(tok)
		if err != nil {
			op := tok.Lexeme
			if op == "" {
				op = tok.Type.String()
			}
			return &ExecError{Op: op, Addr: e.ip, Line: tok.Line(), Err: err}
		}
		if !jumped {
			e.ip++
		}
	}
	return nil
}

// step executes one instruction and reports whether it moved the
// instruction pointer itself.
func (e *Executor) step(tok compiler.Token) (bool, error) {
	switch tok.Type {
	case compiler.TokenIdentifier:
		if v, ok := e.vars.Get(tok.Lexeme); ok {
			e.push(v.WithRef(tok.Lexeme))
		} else {
			e.push(IdentValue(tok.Lexeme))
		}

	case compiler.TokenNumber, compiler.TokenAddress:
		n, err := numberLiteral(tok)
		if err != nil {
			return false, err
		}
		e.push(NumberValue(n))

	case compiler.TokenString:
		s, ok := tok.Literal.(string)
		if !ok {
			s = strings.Trim(tok.Lexeme, `"`)
		}
		e.push(StringValue(s))

	case compiler.TokenTrue, compiler.TokenFalse:
		b, err := strconv.ParseBool(tok.Lexeme)
		if err != nil {
			b = tok.Type == compiler.TokenTrue
		}
		e.push(BoolValue(b))

	case compiler.TokenNull:
		e.push(Null)

	case compiler.TokenAssign:
		return false, e.assign()

	case compiler.TokenNot, compiler.TokenNegate:
		a, err := e.pop()
		if err != nil {
			return false, err
		}
		r, err := unaryOp(tok, a)
		if err != nil {
			return false, err
		}
		e.push(r)

	case compiler.TokenPrint:
		return false, e.print()

	case compiler.TokenInput:
		return false, e.input()

	case compiler.TokenProgram:
		v, err := e.pop()
		if err != nil {
			return false, err
		}
		name := v.Ref()
		if name == "" {
			return false, invalidOperand("program", v)
		}
		e.programs.Put(Declaration{Name: name, Value: v.Unref(), Line: tok.Line()})

	case compiler.TokenIf, compiler.TokenWhile:
		target, err := e.popAddress()
		if err != nil {
			return false, err
		}
		cond, err := e.pop()
		if err != nil {
			return false, err
		}
		b, ok := cond.Bool()
		if !ok {
			return false, invalidOperand(tok.Lexeme, cond)
		}
		if !b {
			e.ip = target
			return true, nil
		}

	case compiler.TokenElse, compiler.TokenEnd:
		target, err := e.popAddress()
		if err != nil {
			return false, err
		}
		e.ip = target
		return true, nil

	default:
		if !isBinary(tok.Type) {
			return false, nil
		}
		b, err := e.pop()
		if err != nil {
			return false, err
		}
		a, err := e.pop()
		if err != nil {
			return false, err
		}
		r, err := binaryOp(tok, a, b)
		if err != nil {
			return false, err
		}
		e.push(r)
	}
	return false, nil
}

// assign pops the value then the slot it is written to. Nothing is pushed.
func (e *Executor) assign() error {
	b, err := e.pop()
	if err != nil {
		return err
	}
	a, err := e.pop()
	if err != nil {
		return err
	}
	name := a.Ref()
	if name == "" {
		return fmt.Errorf("%w: cannot assign to %s", ErrInvalidOperand, a.Kind())
	}
	if b.Kind() == KindIdent {
		// The right-hand side names a variable that was never assigned.
		return fmt.Errorf("%w: %s has no value", ErrInvalidOperand, b.Ref())
	}
	e.vars.Set(name, b)
	return nil
}

func (e *Executor) print() error {
	v, err := e.pop()
	if err != nil {
		return err
	}
	text := v.String()
	if name, ok := v.Name(); ok {
		if current, ok := e.vars.Get(name); ok {
			text = current.String()
		} else {
			text = Null.String()
		}
	}
	_, err = fmt.Fprintln(e.out, text)
	return err
}

// input reads one line into the variable on top of the stack.
func (e *Executor) input() error {
	v, err := e.pop()
	if err != nil {
		return err
	}
	name := v.Ref()
	if name == "" {
		return invalidOperand("input", v)
	}
	if e.in == nil {
		return ErrNoInput
	}
	line, err := e.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		if errors.Is(err, io.EOF) {
			return ErrNoInput
		}
		return fmt.Errorf("input: %w", err)
	}
	e.vars.Set(name, ParseValue(strings.TrimRight(line, "\r\n")))
	return nil
}

func (e *Executor) push(v Value) {
	e.stack = append(e.stack, v)
}

func (e *Executor) pop() (Value, error) {
	if len(e.stack) == 0 {
		return Null, ErrStackUnderflow
	}
	v := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	return v, nil
}

// popAddress pops a jump target and checks it lies within the sequence.
// The end of the sequence is a valid target.
func (e *Executor) popAddress() (int, error) {
	v, err := e.pop()
	if err != nil {
		return 0, err
	}
	n, ok := v.Number()
	if !ok {
		return 0, fmt.Errorf("%w: %s is not an address", ErrBadAddress, v.Kind())
	}
	if n != math.Trunc(n) || n < 0 || int(n) > len(e.code) {
		return 0, fmt.Errorf("%w: %s", ErrBadAddress, FormatNumber(n))
	}
	return int(n), nil
}

func numberLiteral(tok compiler.Token) (float64, error) {
	if n, ok := tok.Literal.(float64); ok {
		return n, nil
	}
	n, err := strconv.ParseFloat(tok.Lexeme, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad number %q", ErrInvalidOperand, tok.Lexeme)
	}
	return n, nil
}

// Package fault defines the terminal error kinds raised by the HanoiVM core.
// Every fault stops the run it occurs in; the machine performs no retries.
package fault

import (
	"errors"
	"fmt"

	"github.com/copyleftcultivars/hanoivm/object"
)

// Code is the category of a fault.
type Code uint8

const (
	// StackOverflow indicates a push onto a full operand stack.
	StackOverflow Code = iota + 1
	// StackUnderflow indicates a pop or peek on an empty operand stack.
	StackUnderflow
	// TypeMismatch indicates an operand whose tag does not match what the
	// handler requires. Values are never silently reinterpreted.
	TypeMismatch
	// UnknownOpcode indicates an opcode byte with no dispatch table entry.
	UnknownOpcode
	// InsufficientTier indicates an opcode dispatched below its minimum tier.
	InsufficientTier
	// TruncatedOperand indicates an operand read past the end of the buffer.
	TruncatedOperand
	// UnexpectedEnd indicates an opcode fetch at or past the buffer end.
	UnexpectedEnd
	// OutOfBounds indicates a jump target outside the bytecode buffer.
	OutOfBounds
	// DepthExceeded indicates the recursion guard limit was hit.
	DepthExceeded
)

// String returns the string representation of the fault code.
func (c Code) String() string {
	switch c {
	case StackOverflow:
		return "stack overflow"
	case StackUnderflow:
		return "stack underflow"
	case TypeMismatch:
		return "type mismatch"
	case UnknownOpcode:
		return "unknown opcode"
	case InsufficientTier:
		return "insufficient tier"
	case TruncatedOperand:
		return "truncated operand"
	case UnexpectedEnd:
		return "unexpected end of bytecode"
	case OutOfBounds:
		return "out of bounds"
	case DepthExceeded:
		return "recursion depth exceeded"
	default:
		return "fault"
	}
}

// Fault is a structured VM error. The execution loop annotates each fault
// with the instruction pointer, opcode, tier, and call depth at the point of
// failure so a caller can reproduce it.
type Fault struct {
	Code      Code
	IP        int
	Opcode    byte
	Tier      object.Tier
	CallDepth int
	Message   string

	located bool
}

// New creates a fault with the given code and message. Location fields are
// filled in by the execution loop via Locate.
func New(code Code, format string, args ...any) *Fault {
	return &Fault{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (f *Fault) Error() string {
	if !f.located {
		return fmt.Sprintf("%s: %s", f.Code, f.Message)
	}
	return fmt.Sprintf("%s: %s (ip=%d opcode=0x%02x tier=%s depth=%d)",
		f.Code, f.Message, f.IP, f.Opcode, f.Tier, f.CallDepth)
}

// Locate annotates the fault with its position in the run. The first call
// wins: a fault raised by a nested routine keeps the innermost location.
func (f *Fault) Locate(ip int, opcode byte, tier object.Tier, callDepth int) *Fault {
	if f.located {
		return f
	}
	f.located = true
	f.IP = ip
	f.Opcode = opcode
	f.Tier = tier
	f.CallDepth = callDepth
	return f
}

// Located reports whether the fault carries position information.
func (f *Fault) Located() bool { return f.located }

// CodeOf returns the code of the fault wrapped in err, or zero if err is not
// a fault.
func CodeOf(err error) Code {
	var f *Fault
	if errors.As(err, &f) {
		return f.Code
	}
	return 0
}

// AsFault converts err into a *Fault, wrapping foreign errors as the given
// code so no failure escapes the fault taxonomy.
func AsFault(err error, code Code) *Fault {
	var f *Fault
	if errors.As(err, &f) {
		return f
	}
	return New(code, "%s", err.Error())
}

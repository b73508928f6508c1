// Package op defines the opcodes executed by the HanoiVM virtual machine
// and the dispatch table describing them.
package op

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/copyleftcultivars/hanoivm/object"
)

// Code is a byte opcode that indicates an operation to execute.
type Code byte

const (
	// Stack
	Nop  Code = 0x00
	Push Code = 0x01
	Pop  Code = 0x02
	Dup  Code = 0x03
	Swap Code = 0x04

	// Word arithmetic
	Add Code = 0x10
	Sub Code = 0x11
	Mul Code = 0x12
	Neg Code = 0x13

	// Control
	TJmp Code = 0x20
	Call Code = 0x21
	Ret  Code = 0x22

	// Big integers
	BigPush Code = 0x30
	BigAdd  Code = 0x31
	BigMul  Code = 0x32
	Fact    Code = 0x33

	// Tensors
	MatMul    Code = 0x40
	Accum     Code = 0x41
	TensorDot Code = 0x42
	Contract  Code = 0x43
	TNew      Code = 0x44

	// Execution
	Halt Code = 0xFF
)

// Info describes one dispatch table entry.
type Info struct {
	Code Code
	Name string

	// OperandCount is the number of fixed 9-byte Word81 operands that
	// follow the opcode byte.
	OperandCount int

	// Disp is true if a signed 1-byte displacement follows the opcode.
	Disp bool

	// MinTier is the tier required to dispatch the opcode. Tier gates
	// capability, not data: operand tags are checked by handlers.
	MinTier object.Tier

	// TensorClass marks the opcodes whose appearance promotes the tier
	// state machine from T243 to T729.
	TensorClass bool
}

// Width returns the full instruction width in bytes.
func (i Info) Width() int {
	w := 1 + i.OperandCount*object.Word81Size
	if i.Disp {
		w++
	}
	return w
}

var infos [256]Info

// table is the single canonical dispatch table, assembled once at startup.
// Overlapping or repeated entries are a build error, not a later shadow.
var table = []Info{
	{Code: Nop, Name: "NOP", MinTier: object.T81},
	{Code: Push, Name: "PUSH", OperandCount: 1, MinTier: object.T81},
	{Code: Pop, Name: "POP", MinTier: object.T81},
	{Code: Dup, Name: "DUP", MinTier: object.T81},
	{Code: Swap, Name: "SWAP", MinTier: object.T81},
	{Code: Add, Name: "ADD", MinTier: object.T81},
	{Code: Sub, Name: "SUB", MinTier: object.T81},
	{Code: Mul, Name: "MUL", MinTier: object.T81},
	{Code: Neg, Name: "NEG", MinTier: object.T81},
	{Code: TJmp, Name: "TJMP", Disp: true, MinTier: object.T81},
	{Code: Call, Name: "CALL", MinTier: object.T81},
	{Code: Ret, Name: "RET", MinTier: object.T81},
	{Code: BigPush, Name: "BIG_PUSH", OperandCount: 1, MinTier: object.T243},
	{Code: BigAdd, Name: "BIG_ADD", MinTier: object.T243},
	{Code: BigMul, Name: "BIG_MUL", MinTier: object.T243},
	{Code: Fact, Name: "FACT", MinTier: object.T81},
	{Code: MatMul, Name: "MAT_MUL", MinTier: object.T243, TensorClass: true},
	{Code: Accum, Name: "ACCUM", MinTier: object.T243, TensorClass: true},
	{Code: TensorDot, Name: "TENSOR_DOT", MinTier: object.T729},
	{Code: Contract, Name: "CONTRACT", MinTier: object.T729},
	{Code: TNew, Name: "T_NEW", OperandCount: 1, MinTier: object.T243},
	{Code: Halt, Name: "HALT", MinTier: object.T81},
}

func init() {
	if err := Validate(); err != nil {
		panic(err)
	}
	for _, info := range table {
		infos[info.Code] = info
	}
}

// Validate checks the declarative table for duplicate opcodes, missing
// names, and tiers outside the closed enumeration. All problems are
// reported, not just the first.
func Validate() error {
	var result *multierror.Error
	seen := make(map[Code]string, len(table))
	for _, info := range table {
		if prev, ok := seen[info.Code]; ok {
			result = multierror.Append(result, fmt.Errorf(
				"duplicate opcode 0x%02x: %s and %s", byte(info.Code), prev, info.Name))
		}
		seen[info.Code] = info.Name
		if info.Name == "" {
			result = multierror.Append(result, fmt.Errorf(
				"opcode 0x%02x has no name", byte(info.Code)))
		}
		if info.MinTier < object.T81 || info.MinTier > object.T729 {
			result = multierror.Append(result, fmt.Errorf(
				"opcode %s has invalid tier %d", info.Name, info.MinTier))
		}
		if info.OperandCount < 0 || info.OperandCount > 2 {
			result = multierror.Append(result, fmt.Errorf(
				"opcode %s declares %d operands", info.Name, info.OperandCount))
		}
	}
	return result.ErrorOrNil()
}

// GetInfo returns information about the given opcode.
func GetInfo(c Code) Info {
	return infos[c]
}

// Lookup returns the dispatch entry for the opcode, and whether one exists.
func Lookup(c Code) (Info, bool) {
	info := infos[c]
	return info, info.Name != ""
}

// String returns the mnemonic of the opcode, if it has one.
func (c Code) String() string {
	if info, ok := Lookup(c); ok {
		return info.Name
	}
	return fmt.Sprintf("0x%02X", byte(c))
}

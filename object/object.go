// Package object provides the tier model and the tagged operand values that
// move across the HanoiVM stack.
//
// External users will often type assert an object.Value to a specific
// operand type:
//
//	switch v := v.(type) {
//	case object.Word81:
//		// do something with v.Int64()
//	case *object.BigInt:
//		// do something with v.Num()
//	}
//
// The Type() method of each value may also be used to get a string name of
// the operand type, such as "word81" or "tensor".
package object

import (
	"encoding/binary"
	"fmt"
)

// Tier is the capability level the machine is currently operating in.
// Higher tiers unlock wider operand types and operations.
type Tier uint8

// Tier constants, totally ordered: T81 < T243 < T729.
const (
	T81 Tier = iota + 1
	T243
	T729
)

// String returns the conventional name of the tier.
func (t Tier) String() string {
	switch t {
	case T81:
		return "T81"
	case T243:
		return "T243"
	case T729:
		return "T729"
	default:
		return fmt.Sprintf("Tier(%d)", uint8(t))
	}
}

// Type of a value as a string.
type Type string

// Type constants
const (
	WORD81 Type = "word81"
	BIGINT Type = "bigint"
	TENSOR Type = "tensor"
)

// Value is the interface implemented by all operand values.
type Value interface {
	// Type of the value.
	Type() Type

	// Inspect returns a string representation of the value.
	Inspect() string
}

// Releasable is implemented by handle values whose backing storage is owned
// by an external component. A handle popped off the stack transfers
// ownership to the caller, who must either push a value back or Release it.
type Releasable interface {
	Value
	Release()
}

// Word81Size is the wire width of a Word81 operand: two big-endian 32-bit
// segments (low segment first) followed by one tag byte.
const Word81Size = 9

// TagNegative is the sign trit in a Word81 tag byte. The remaining tag bits
// are reserved for a base-81 exponent and pass through arithmetic untouched.
const TagNegative uint8 = 0x01

// Word81 is the compact base-81 scalar used at the base tier. The magnitude
// is a + b<<32; the tag byte carries the sign trit.
type Word81 struct {
	a   uint32
	b   uint32
	tag uint8
}

// NewWord81 creates a Word81 from its raw segments and tag byte.
func NewWord81(a, b uint32, tag uint8) Word81 {
	return Word81{a: a, b: b, tag: tag}
}

// Word81FromInt64 creates a Word81 holding the given value.
func Word81FromInt64(v int64) Word81 {
	var tag uint8
	u := uint64(v)
	if v < 0 {
		tag = TagNegative
		u = uint64(-v)
	}
	return Word81{a: uint32(u), b: uint32(u >> 32), tag: tag}
}

func (w Word81) Type() Type { return WORD81 }

func (w Word81) Inspect() string {
	return fmt.Sprintf("word81(%d)", w.Int64())
}

// A returns the low 32-bit segment.
func (w Word81) A() uint32 { return w.a }

// B returns the high 32-bit segment.
func (w Word81) B() uint32 { return w.b }

// Tag returns the tag byte.
func (w Word81) Tag() uint8 { return w.tag }

// Negative reports whether the sign trit is set.
func (w Word81) Negative() bool { return w.tag&TagNegative != 0 }

// Uint64 returns the magnitude of the word, ignoring the sign trit.
func (w Word81) Uint64() uint64 {
	return uint64(w.a) | uint64(w.b)<<32
}

// Int64 folds the segments and sign trit into a signed integer. Magnitudes
// past the int64 range wrap, matching the word's modular arithmetic.
func (w Word81) Int64() int64 {
	v := int64(w.Uint64())
	if w.Negative() {
		return -v
	}
	return v
}

// Encode appends the 9-byte wire form of the word to dst.
func (w Word81) Encode(dst []byte) []byte {
	var buf [Word81Size]byte
	binary.BigEndian.PutUint32(buf[0:4], w.a)
	binary.BigEndian.PutUint32(buf[4:8], w.b)
	buf[8] = w.tag
	return append(dst, buf[:]...)
}

// DecodeWord81 reads a Word81 from exactly Word81Size bytes.
func DecodeWord81(src []byte) Word81 {
	return Word81{
		a:   binary.BigEndian.Uint32(src[0:4]),
		b:   binary.BigEndian.Uint32(src[4:8]),
		tag: src[8],
	}
}

// BigNum is the contract between the stack and the arbitrary-precision
// component that owns all big-integer storage.
type BigNum interface {
	// Text returns the balanced-ternary text form of the number.
	Text() string

	// Release returns the number's storage to its owner.
	Release()
}

// TensorGrid is the contract between the stack and the tensor component
// that owns all tensor storage.
type TensorGrid interface {
	// Dims returns the row and column counts.
	Dims() (rows, cols int)

	// Release returns the tensor's storage to its owner.
	Release()
}

// BigInt is an ownership handle to an arbitrary-precision ternary integer.
type BigInt struct {
	num BigNum
}

// NewBigInt wraps a big number in a stack handle.
func NewBigInt(num BigNum) *BigInt {
	return &BigInt{num: num}
}

func (b *BigInt) Type() Type { return BIGINT }

func (b *BigInt) Inspect() string {
	return fmt.Sprintf("bigint(0t%s)", b.num.Text())
}

// Num returns the underlying number.
func (b *BigInt) Num() BigNum { return b.num }

// Release returns the underlying storage to the owning component.
func (b *BigInt) Release() { b.num.Release() }

// Tensor is an ownership handle to an n-dimensional tensor value.
type Tensor struct {
	grid TensorGrid
}

// NewTensor wraps a tensor grid in a stack handle.
func NewTensor(grid TensorGrid) *Tensor {
	return &Tensor{grid: grid}
}

func (t *Tensor) Type() Type { return TENSOR }

func (t *Tensor) Inspect() string {
	r, c := t.grid.Dims()
	return fmt.Sprintf("tensor(%dx%d)", r, c)
}

// Grid returns the underlying tensor.
func (t *Tensor) Grid() TensorGrid { return t.grid }

// Release returns the underlying storage to the owning component.
func (t *Tensor) Release() { t.grid.Release() }

var (
	_ Value      = Word81{}
	_ Releasable = (*BigInt)(nil)
	_ Releasable = (*Tensor)(nil)
)

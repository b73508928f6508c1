// Package bytecode provides bounds-checked access to immutable HanoiVM
// instruction streams and a builder for constructing them.
package bytecode

import (
	"github.com/copyleftcultivars/hanoivm/fault"
	"github.com/copyleftcultivars/hanoivm/object"
	"github.com/copyleftcultivars/hanoivm/op"
)

// TritWord is the addressable granularity of ternary jumps, in bytes.
const TritWord = 3

// Reader fetches opcodes and operands from an immutable byte buffer. The
// buffer is loaded once before a run starts and is never mutated.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps a bytecode buffer.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Len returns the buffer length.
func (r *Reader) Len() int { return len(r.buf) }

// Pos returns the current instruction pointer.
func (r *Reader) Pos() int { return r.pos }

// AtEnd reports whether the pointer is at or past the buffer end.
func (r *Reader) AtEnd() bool { return r.pos >= len(r.buf) }

// FetchOpcode returns the next opcode byte and advances the pointer by 1.
func (r *Reader) FetchOpcode() (op.Code, error) {
	if r.AtEnd() {
		return 0, fault.New(fault.UnexpectedEnd, "opcode fetch at %d of %d", r.pos, len(r.buf))
	}
	c := op.Code(r.buf[r.pos])
	r.pos++
	return c, nil
}

// FetchWord81 reads exactly 9 bytes and advances the pointer by 9.
func (r *Reader) FetchWord81() (object.Word81, error) {
	if r.pos+object.Word81Size > len(r.buf) {
		return object.Word81{}, fault.New(fault.TruncatedOperand,
			"word operand needs %d bytes, %d remain", object.Word81Size, len(r.buf)-r.pos)
	}
	w := object.DecodeWord81(r.buf[r.pos : r.pos+object.Word81Size])
	r.pos += object.Word81Size
	return w, nil
}

// FetchDisplacement reads a signed 1-byte jump displacement.
func (r *Reader) FetchDisplacement() (int8, error) {
	if r.AtEnd() {
		return 0, fault.New(fault.TruncatedOperand, "displacement fetch at %d of %d", r.pos, len(r.buf))
	}
	d := int8(r.buf[r.pos])
	r.pos++
	return d, nil
}

// Seek sets the pointer to an absolute target inside the buffer.
func (r *Reader) Seek(pos int) error {
	if pos < 0 || pos >= len(r.buf) {
		return fault.New(fault.OutOfBounds, "jump target %d outside buffer of %d", pos, len(r.buf))
	}
	r.pos = pos
	return nil
}

package bytecode

import (
	"github.com/copyleftcultivars/hanoivm/object"
	"github.com/copyleftcultivars/hanoivm/op"
)

// Builder assembles an instruction stream programmatically. Methods chain:
//
//	code := bytecode.NewBuilder().
//		PushInt(18).
//		PushInt(33).
//		Op(op.Add).
//		Op(op.Halt).
//		Bytes()
type Builder struct {
	buf []byte
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Op appends a bare opcode byte.
func (b *Builder) Op(c op.Code) *Builder {
	b.buf = append(b.buf, byte(c))
	return b
}

// Word appends a 9-byte Word81 operand.
func (b *Builder) Word(w object.Word81) *Builder {
	b.buf = append(b.buf, w.Encode(nil)...)
	return b
}

// Disp appends a signed 1-byte displacement.
func (b *Builder) Disp(d int8) *Builder {
	b.buf = append(b.buf, byte(d))
	return b
}

// Push appends a PUSH of the given word.
func (b *Builder) Push(w object.Word81) *Builder {
	return b.Op(op.Push).Word(w)
}

// PushInt appends a PUSH of the given integer.
func (b *Builder) PushInt(v int64) *Builder {
	return b.Push(object.Word81FromInt64(v))
}

// Calls appends n CALL instructions.
func (b *Builder) Calls(n int) *Builder {
	for i := 0; i < n; i++ {
		b.Op(op.Call)
	}
	return b
}

// Rets appends n RET instructions.
func (b *Builder) Rets(n int) *Builder {
	for i := 0; i < n; i++ {
		b.Op(op.Ret)
	}
	return b
}

// Len returns the current stream length.
func (b *Builder) Len() int { return len(b.buf) }

// Bytes returns the assembled instruction stream.
func (b *Builder) Bytes() []byte {
	out := make([]byte, len(b.buf))
	copy(out, b.buf)
	return out
}

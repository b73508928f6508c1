package bytecode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/copyleftcultivars/hanoivm/fault"
	"github.com/copyleftcultivars/hanoivm/object"
	"github.com/copyleftcultivars/hanoivm/op"
)

func TestFetchSequence(t *testing.T) {
	code := NewBuilder().
		PushInt(18).
		Op(op.Halt).
		Bytes()
	r := NewReader(code)

	c, err := r.FetchOpcode()
	require.Nil(t, err)
	require.Equal(t, op.Push, c)
	require.Equal(t, 1, r.Pos())

	w, err := r.FetchWord81()
	require.Nil(t, err)
	require.Equal(t, int64(18), w.Int64())
	require.Equal(t, 10, r.Pos())

	c, err = r.FetchOpcode()
	require.Nil(t, err)
	require.Equal(t, op.Halt, c)
	require.True(t, r.AtEnd())
}

func TestFetchOpcodeAtEnd(t *testing.T) {
	r := NewReader(nil)
	_, err := r.FetchOpcode()
	require.Equal(t, fault.UnexpectedEnd, fault.CodeOf(err))
}

func TestFetchWord81Truncated(t *testing.T) {
	r := NewReader([]byte{0x01, 0x00, 0x00})
	_, err := r.FetchOpcode()
	require.Nil(t, err)
	_, err = r.FetchWord81()
	require.Equal(t, fault.TruncatedOperand, fault.CodeOf(err))
}

func TestFetchDisplacement(t *testing.T) {
	r := NewReader([]byte{0xFE})
	d, err := r.FetchDisplacement()
	require.Nil(t, err)
	require.Equal(t, int8(-2), d)

	_, err = r.FetchDisplacement()
	require.Equal(t, fault.TruncatedOperand, fault.CodeOf(err))
}

func TestSeek(t *testing.T) {
	r := NewReader(make([]byte, 12))
	require.Nil(t, r.Seek(0))
	require.Nil(t, r.Seek(11))
	require.Equal(t, 11, r.Pos())

	require.Equal(t, fault.OutOfBounds, fault.CodeOf(r.Seek(-3)))
	require.Equal(t, fault.OutOfBounds, fault.CodeOf(r.Seek(12)))
	// A failed seek leaves the pointer unchanged.
	require.Equal(t, 11, r.Pos())
}

func TestBuilderWireFormat(t *testing.T) {
	// The 18+33 program, byte for byte: opcode, two big-endian segments,
	// tag byte.
	code := NewBuilder().
		PushInt(18).
		PushInt(33).
		Op(op.Add).
		Op(op.Halt).
		Bytes()
	want := []byte{
		0x01, 0, 0, 0, 18, 0, 0, 0, 0, 0x00,
		0x01, 0, 0, 0, 33, 0, 0, 0, 0, 0x00,
		0x10,
		0xFF,
	}
	require.Equal(t, want, code)
}

func TestBuilderHelpers(t *testing.T) {
	code := NewBuilder().
		Calls(2).
		Op(op.TJmp).
		Disp(-1).
		Rets(2).
		Word(object.Word81FromInt64(1)).
		Bytes()
	require.Equal(t, 2+2+2+object.Word81Size, len(code))
	require.Equal(t, byte(op.Call), code[0])
	require.Equal(t, byte(0xFF), code[3]) // disp -1
	require.Equal(t, byte(op.Ret), code[4])
}

func TestBuilderBytesCopies(t *testing.T) {
	b := NewBuilder().Op(op.Nop)
	first := b.Bytes()
	b.Op(op.Halt)
	require.Equal(t, 1, len(first))
	require.Equal(t, 2, b.Len())
}

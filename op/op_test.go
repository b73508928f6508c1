package op

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/copyleftcultivars/hanoivm/object"
)

func TestTableValid(t *testing.T) {
	require.Nil(t, Validate())
}

func TestGetInfo(t *testing.T) {
	info := GetInfo(Push)
	require.Equal(t, Push, info.Code)
	require.Equal(t, "PUSH", info.Name)
	require.Equal(t, 1, info.OperandCount)
	require.Equal(t, object.T81, info.MinTier)

	info = GetInfo(TensorDot)
	require.Equal(t, "TENSOR_DOT", info.Name)
	require.Equal(t, object.T729, info.MinTier)
}

func TestLookupUnknown(t *testing.T) {
	_, ok := Lookup(Code(0xEE))
	require.False(t, ok)

	_, ok = Lookup(Halt)
	require.True(t, ok)
}

func TestWidth(t *testing.T) {
	require.Equal(t, 10, GetInfo(Push).Width())
	require.Equal(t, 10, GetInfo(BigPush).Width())
	require.Equal(t, 2, GetInfo(TJmp).Width())
	require.Equal(t, 1, GetInfo(Add).Width())
	require.Equal(t, 1, GetInfo(Halt).Width())
}

func TestTensorClass(t *testing.T) {
	// Only the matrix ops promote T243 to T729. TensorDot and Contract
	// require the machine to already be at T729.
	require.True(t, GetInfo(MatMul).TensorClass)
	require.True(t, GetInfo(Accum).TensorClass)
	require.False(t, GetInfo(TensorDot).TensorClass)
	require.False(t, GetInfo(Contract).TensorClass)
}

func TestMinTiers(t *testing.T) {
	for _, c := range []Code{Nop, Push, Pop, Dup, Swap, Add, Sub, Mul, Neg, TJmp, Call, Ret, Fact, Halt} {
		require.Equal(t, object.T81, GetInfo(c).MinTier, "opcode %s", c)
	}
	for _, c := range []Code{BigPush, BigAdd, BigMul, MatMul, Accum, TNew} {
		require.Equal(t, object.T243, GetInfo(c).MinTier, "opcode %s", c)
	}
	for _, c := range []Code{TensorDot, Contract} {
		require.Equal(t, object.T729, GetInfo(c).MinTier, "opcode %s", c)
	}
}

func TestCodeString(t *testing.T) {
	require.Equal(t, "PUSH", Push.String())
	require.Equal(t, "HALT", Halt.String())
	require.Equal(t, "0xEE", Code(0xEE).String())
}

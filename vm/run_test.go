package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/copyleftcultivars/hanoivm/bytecode"
	"github.com/copyleftcultivars/hanoivm/object"
	"github.com/copyleftcultivars/hanoivm/op"
)

func TestRunConvenience(t *testing.T) {
	code := bytecode.NewBuilder().
		PushInt(2).
		PushInt(3).
		Op(op.Mul).
		Op(op.Halt).
		Bytes()
	out, err := Run(code)
	require.Nil(t, err)
	require.Equal(t, int64(6), out.(object.Word81).Int64())
}

func TestRunConvenienceEmptyStack(t *testing.T) {
	out, err := Run(bytecode.NewBuilder().Op(op.Halt).Bytes())
	require.Nil(t, err)
	require.Nil(t, out)
}

func TestRunConvenienceFault(t *testing.T) {
	_, err := Run([]byte{0xEE})
	require.NotNil(t, err)
}

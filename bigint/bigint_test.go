package bigint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/copyleftcultivars/hanoivm/fault"
	"github.com/copyleftcultivars/hanoivm/object"
)

func TestWordArithmetic(t *testing.T) {
	e := Engine{}

	sum := e.AddWords(object.Word81FromInt64(18), object.Word81FromInt64(33))
	require.Equal(t, int64(51), sum.Int64())
	require.Equal(t, uint32(51), sum.A())

	diff := e.SubWords(object.Word81FromInt64(5), object.Word81FromInt64(9))
	require.Equal(t, int64(-4), diff.Int64())

	prod := e.MulWords(object.Word81FromInt64(-6), object.Word81FromInt64(7))
	require.Equal(t, int64(-42), prod.Int64())

	neg := e.NegWord(object.Word81FromInt64(13))
	require.Equal(t, int64(-13), neg.Int64())
	require.Equal(t, int64(13), e.NegWord(neg).Int64())
}

func TestWordArithmeticReleasesTemporaries(t *testing.T) {
	e := Engine{}
	before := Live()
	e.AddWords(object.Word81FromInt64(1), object.Word81FromInt64(2))
	e.MulWords(object.Word81FromInt64(3), object.Word81FromInt64(4))
	require.Equal(t, before, Live())
}

func TestLift(t *testing.T) {
	e := Engine{}
	n := e.Lift(object.Word81FromInt64(8))
	defer n.Release()
	require.Equal(t, "22", n.Text())
	require.Equal(t, int64(8), n.(*Num).Int64())
}

func TestBigAddMul(t *testing.T) {
	e := Engine{}
	a := FromInt64(40)
	b := FromInt64(2)
	defer a.Release()
	defer b.Release()

	sum, err := e.BigAdd(a, b)
	require.Nil(t, err)
	defer sum.Release()
	require.Equal(t, int64(42), sum.(*Num).Int64())

	prod, err := e.BigMul(a, b)
	require.Nil(t, err)
	defer prod.Release()
	require.Equal(t, int64(80), prod.(*Num).Int64())
}

func TestBigAddForeignOperand(t *testing.T) {
	e := Engine{}
	a := FromInt64(1)
	defer a.Release()
	_, err := e.BigAdd(a, foreignNum{})
	require.Equal(t, fault.TypeMismatch, fault.CodeOf(err))
}

type foreignNum struct{}

func (foreignNum) Text() string { return "" }
func (foreignNum) Release()     {}

func noGuard() (func() error, func()) {
	return func() error { return nil }, func() {}
}

func TestFactorial(t *testing.T) {
	e := Engine{}
	enter, leave := noGuard()

	tests := []struct {
		n    int64
		want int64
	}{
		{0, 1},
		{1, 1},
		{5, 120},
		{10, 3628800},
	}
	for _, tt := range tests {
		in := FromInt64(tt.n)
		out, err := e.Factorial(in, enter, leave)
		require.Nil(t, err)
		require.Equal(t, tt.want, out.(*Num).Int64())
		in.Release()
		out.Release()
	}
}

func TestFactorialNegative(t *testing.T) {
	e := Engine{}
	enter, leave := noGuard()
	in := FromInt64(-3)
	defer in.Release()
	_, err := e.Factorial(in, enter, leave)
	require.Equal(t, fault.TypeMismatch, fault.CodeOf(err))
}

func TestFactorialGuardBalance(t *testing.T) {
	e := Engine{}
	depth := 0
	limit := 4
	enter := func() error {
		if depth+1 > limit {
			return fault.New(fault.DepthExceeded, "limit %d", limit)
		}
		depth++
		return nil
	}
	leave := func() { depth-- }

	in := FromInt64(10)
	defer in.Release()
	before := Live()
	_, err := e.Factorial(in, enter, leave)
	require.Equal(t, fault.DepthExceeded, fault.CodeOf(err))

	// Every enter was matched by a leave and every intermediate released.
	require.Equal(t, 0, depth)
	require.Equal(t, before, Live())
}

func TestFib(t *testing.T) {
	e := Engine{}
	enter, leave := noGuard()

	tests := []struct {
		n    int64
		want int64
	}{
		{0, 0},
		{1, 1},
		{2, 1},
		{10, 55},
		{20, 6765},
	}
	for _, tt := range tests {
		in := FromInt64(tt.n)
		out, err := e.Fib(in, enter, leave)
		require.Nil(t, err)
		require.Equal(t, tt.want, out.(*Num).Int64())
		in.Release()
		out.Release()
	}
}

func TestLiveBalance(t *testing.T) {
	before := Live()
	n := FromInt64(7)
	require.Equal(t, before+1, Live())
	n.Release()
	require.Equal(t, before, Live())
}

func TestWord81Narrowing(t *testing.T) {
	n := FromInt64(-51)
	defer n.Release()
	w := n.Word81()
	require.Equal(t, int64(-51), w.Int64())
	require.True(t, w.Negative())
}

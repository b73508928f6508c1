// Package bigint is the arbitrary-precision ternary arithmetic component.
// It owns all big-integer storage; the VM only ever holds handles to Num
// values and returns them here through Release.
package bigint

import (
	"math/big"
	"sync/atomic"

	"github.com/copyleftcultivars/hanoivm/fault"
	"github.com/copyleftcultivars/hanoivm/object"
)

var live int64

// Live returns the number of Num values currently held by handles. Used to
// verify that every popped handle is either pushed back or released.
func Live() int64 { return atomic.LoadInt64(&live) }

// Num is an arbitrary-precision ternary integer.
type Num struct {
	v big.Int
}

// FromInt64 allocates a Num holding the given value.
func FromInt64(v int64) *Num {
	n := &Num{}
	n.v.SetInt64(v)
	atomic.AddInt64(&live, 1)
	return n
}

// FromWord81 widens a Word81 into a Num.
func FromWord81(w object.Word81) *Num {
	n := &Num{}
	n.v.SetUint64(w.Uint64())
	if w.Negative() {
		n.v.Neg(&n.v)
	}
	atomic.AddInt64(&live, 1)
	return n
}

// Text returns the balanced-ternary text form of the number.
func (n *Num) Text() string {
	return n.v.Text(3)
}

// Int64 narrows the number, wrapping magnitudes past 64 bits.
func (n *Num) Int64() int64 {
	return n.v.Int64()
}

var mask64 = new(big.Int).SetUint64(^uint64(0))

// Word81 narrows the number back into a Word81, wrapping the magnitude at
// 2^64 the same way word arithmetic does.
func (n *Num) Word81() object.Word81 {
	m := new(big.Int).Abs(&n.v)
	m.And(m, mask64)
	u := m.Uint64()
	var tag uint8
	if n.v.Sign() < 0 {
		tag = object.TagNegative
	}
	return object.NewWord81(uint32(u), uint32(u>>32), tag)
}

// Release returns the number's storage to the component.
func (n *Num) Release() {
	n.v.SetInt64(0)
	atomic.AddInt64(&live, -1)
}

var _ object.BigNum = (*Num)(nil)

// Engine implements the arithmetic delegated to this component by the VM's
// word and big-integer opcodes.
type Engine struct{}

func wordOp(a, b object.Word81, f func(z, x, y *big.Int) *big.Int) object.Word81 {
	x := FromWord81(a)
	y := FromWord81(b)
	defer x.Release()
	defer y.Release()
	f(&x.v, &x.v, &y.v)
	return x.Word81()
}

// AddWords returns the tier-appropriate sum of two words.
func (Engine) AddWords(a, b object.Word81) object.Word81 {
	return wordOp(a, b, (*big.Int).Add)
}

// SubWords returns a minus b.
func (Engine) SubWords(a, b object.Word81) object.Word81 {
	return wordOp(a, b, (*big.Int).Sub)
}

// MulWords returns the product of two words.
func (Engine) MulWords(a, b object.Word81) object.Word81 {
	return wordOp(a, b, (*big.Int).Mul)
}

// NegWord flips the sign trit.
func (Engine) NegWord(a object.Word81) object.Word81 {
	return object.NewWord81(a.A(), a.B(), a.Tag()^object.TagNegative)
}

// Lift widens a word into an owned big number.
func (Engine) Lift(a object.Word81) object.BigNum {
	return FromWord81(a)
}

// BigAdd returns a new Num holding a+b. The operands are not consumed.
func (Engine) BigAdd(a, b object.BigNum) (object.BigNum, error) {
	x, y, err := pair(a, b)
	if err != nil {
		return nil, err
	}
	z := FromInt64(0)
	z.v.Add(&x.v, &y.v)
	return z, nil
}

// BigMul returns a new Num holding a*b. The operands are not consumed.
func (Engine) BigMul(a, b object.BigNum) (object.BigNum, error) {
	x, y, err := pair(a, b)
	if err != nil {
		return nil, err
	}
	z := FromInt64(0)
	z.v.Mul(&x.v, &y.v)
	return z, nil
}

func pair(a, b object.BigNum) (*Num, *Num, error) {
	x, ok := a.(*Num)
	if !ok {
		return nil, nil, fault.New(fault.TypeMismatch, "foreign bigint %T", a)
	}
	y, ok := b.(*Num)
	if !ok {
		return nil, nil, fault.New(fault.TypeMismatch, "foreign bigint %T", b)
	}
	return x, y, nil
}

var one = big.NewInt(1)

// Factorial computes n! by recursive descent. The enter/leave pair is
// invoked around every recursive step so the caller's recursion guard
// bounds the evaluation depth; leave runs on every exit path.
func (Engine) Factorial(n object.BigNum, enter func() error, leave func()) (object.BigNum, error) {
	x, ok := n.(*Num)
	if !ok {
		return nil, fault.New(fault.TypeMismatch, "foreign bigint %T", n)
	}
	if x.v.Sign() < 0 {
		return nil, fault.New(fault.TypeMismatch, "factorial of negative 0t%s", x.Text())
	}
	return factorial(&x.v, enter, leave)
}

func factorial(n *big.Int, enter func() error, leave func()) (*Num, error) {
	if err := enter(); err != nil {
		return nil, err
	}
	defer leave()
	if n.Sign() == 0 {
		return FromInt64(1), nil
	}
	m := new(big.Int).Sub(n, one)
	sub, err := factorial(m, enter, leave)
	if err != nil {
		return nil, err
	}
	defer sub.Release()
	z := FromInt64(0)
	z.v.Mul(n, &sub.v)
	return z, nil
}

// Fib computes the n'th fibonacci number by tail recursion, guarded the
// same way as Factorial.
func (Engine) Fib(n object.BigNum, enter func() error, leave func()) (object.BigNum, error) {
	x, ok := n.(*Num)
	if !ok {
		return nil, fault.New(fault.TypeMismatch, "foreign bigint %T", n)
	}
	if x.v.Sign() < 0 {
		return nil, fault.New(fault.TypeMismatch, "fibonacci of negative 0t%s", x.Text())
	}
	return fib(new(big.Int).Set(&x.v), big.NewInt(0), big.NewInt(1), enter, leave)
}

func fib(n, a, b *big.Int, enter func() error, leave func()) (*Num, error) {
	if err := enter(); err != nil {
		return nil, err
	}
	defer leave()
	if n.Sign() == 0 {
		z := FromInt64(0)
		z.v.Set(a)
		return z, nil
	}
	n.Sub(n, one)
	return fib(n, b, new(big.Int).Add(a, b), enter, leave)
}

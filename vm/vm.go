// Package vm implements the HanoiVM execution core: a single-threaded
// bytecode interpreter over a tier-tagged operand stack, with a tier state
// machine gating which opcodes may dispatch and a recursion guard bounding
// recursively-defined opcode semantics.
package vm

import (
	"fmt"
	"sync"

	"github.com/gofrs/uuid"

	"github.com/copyleftcultivars/hanoivm/bigint"
	"github.com/copyleftcultivars/hanoivm/bytecode"
	"github.com/copyleftcultivars/hanoivm/fault"
	"github.com/copyleftcultivars/hanoivm/object"
	"github.com/copyleftcultivars/hanoivm/op"
	"github.com/copyleftcultivars/hanoivm/tensor"
)

// DefaultStackCapacity is the operand stack capacity when no option
// overrides it.
const DefaultStackCapacity = 243

// State is the lifecycle state of a Machine. Halted and Faulted are
// terminal.
type State uint8

const (
	Ready State = iota
	Running
	Halted
	Faulted
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Halted:
		return "halted"
	case Faulted:
		return "faulted"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Arithmetic is the external big-integer component. It owns all bigint
// storage; results are returned as fresh owned values and operands are
// never consumed.
type Arithmetic interface {
	AddWords(a, b object.Word81) object.Word81
	SubWords(a, b object.Word81) object.Word81
	MulWords(a, b object.Word81) object.Word81
	NegWord(a object.Word81) object.Word81

	// Lift widens a word into an owned big number.
	Lift(a object.Word81) object.BigNum

	BigAdd(a, b object.BigNum) (object.BigNum, error)
	BigMul(a, b object.BigNum) (object.BigNum, error)

	// Factorial computes n! recursively, calling the enter/leave pair
	// around every recursive step. Leave must run on every exit path.
	Factorial(n object.BigNum, enter func() error, leave func()) (object.BigNum, error)
}

// TensorEngine is the external tensor component. It owns all tensor
// storage; operands are never consumed.
type TensorEngine interface {
	New(n int) (object.TensorGrid, error)
	MatMul(a, b object.TensorGrid) (object.TensorGrid, error)
	Accum(a, b object.TensorGrid) (object.TensorGrid, error)
	Dot(a, b object.TensorGrid) (object.TensorGrid, error)
	Contract(a, b object.TensorGrid) (object.TensorGrid, error)
}

// Machine executes one bytecode program over one operand stack. A Machine
// is exclusively owned by one run at a time; concurrent instances share
// nothing but read-only bytecode and the stateless components.
type Machine struct {
	rd        *bytecode.Reader
	stack     *stack
	guard     *recursionGuard
	tier      object.Tier
	callDepth int
	halted    bool
	state     State
	session   uuid.UUID
	tracer    Tracer
	arith     Arithmetic
	tensors   TensorEngine

	stackCap     int
	maxRecursion int

	running  bool
	runMutex sync.Mutex
}

// New creates a Machine for the given bytecode buffer. The buffer must not
// be mutated for the lifetime of the Machine.
func New(code []byte, options ...Option) *Machine {
	m := &Machine{
		rd:           bytecode.NewReader(code),
		tier:         object.T81,
		state:        Ready,
		tracer:       NopTracer{},
		arith:        bigint.Engine{},
		tensors:      tensor.Engine{},
		stackCap:     DefaultStackCapacity,
		maxRecursion: DefaultMaxRecursion,
	}
	for _, opt := range options {
		opt(m)
	}
	m.stack = newStack(m.stackCap)
	m.guard = &recursionGuard{max: m.maxRecursion}
	if m.session == uuid.Nil {
		m.session = uuid.Must(uuid.NewV4())
	}
	return m
}

func (m *Machine) start() error {
	m.runMutex.Lock()
	defer m.runMutex.Unlock()
	if m.running {
		return fmt.Errorf("vm is already running")
	}
	if m.state == Halted || m.state == Faulted {
		return fmt.Errorf("vm run already finished (%s)", m.state)
	}
	m.running = true
	return nil
}

func (m *Machine) stop() {
	m.runMutex.Lock()
	defer m.runMutex.Unlock()
	m.running = false
}

// Run executes the program to completion. It returns nil when the program
// halts (HALT or end of buffer) and a *fault.Fault when it faults; the
// fault carries the instruction pointer, opcode, tier, and call depth at
// the faulting instruction. Faults are terminal: the same Machine cannot
// be run again.
func (m *Machine) Run() (err error) {
	// Guarantees: it is an error to run a Machine that is already running
	// or finished; the running flag clears when Run returns; panics are
	// translated to errors.
	if err := m.start(); err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			m.state = Faulted
		}
		m.stop()
	}()

	m.state = Running
	for {
		if m.halted || m.rd.AtEnd() {
			m.state = Halted
			return nil
		}

		ip := m.rd.Pos()
		opcode, ferr := m.rd.FetchOpcode()
		if ferr != nil {
			return m.fail(ferr, ip, 0)
		}

		info, ok := op.Lookup(opcode)
		if !ok {
			return m.fail(fault.New(fault.UnknownOpcode,
				"no dispatch entry for 0x%02x", byte(opcode)), ip, byte(opcode))
		}

		// Tier transitions are evaluated before the gate so a tensor-class
		// instruction can promote itself into range.
		fired := m.applyTier(&info)

		if m.tier < info.MinTier {
			return m.fail(fault.New(fault.InsufficientTier,
				"%s requires %s, tier is %s", info.Name, info.MinTier, m.tier),
				ip, byte(opcode))
		}

		m.tracer.Emit(EventDispatch, int64(opcode))

		if err := m.exec(info); err != nil {
			return m.fail(err, ip, byte(opcode))
		}

		// Second consultation picks up call-depth movement from the
		// instruction just executed; skipped if a transition already fired.
		if !fired {
			m.applyTier(nil)
		}
	}
}

func (m *Machine) fail(err error, ip int, opcode byte) error {
	m.state = Faulted
	return fault.AsFault(err, fault.TypeMismatch).Locate(ip, opcode, m.tier, m.callDepth)
}

func (m *Machine) exec(info op.Info) error {
	switch info.Code {
	case op.Nop:
		return nil

	case op.Push:
		w, err := m.rd.FetchWord81()
		if err != nil {
			return err
		}
		return m.stack.push(w)

	case op.Pop:
		v, err := m.stack.pop()
		if err != nil {
			return err
		}
		release(v)
		return nil

	case op.Dup:
		v, err := m.stack.peek()
		if err != nil {
			return err
		}
		w, ok := v.(object.Word81)
		if !ok {
			// Handles are move-only; duplicating one would fork ownership.
			return fault.New(fault.TypeMismatch, "DUP needs word81, found %s", v.Type())
		}
		return m.stack.push(w)

	case op.Swap:
		return m.stack.swap()

	case op.Add, op.Sub, op.Mul:
		a, b, err := m.popWordPair(info.Name)
		if err != nil {
			return err
		}
		var r object.Word81
		switch info.Code {
		case op.Add:
			r = m.arith.AddWords(a, b)
		case op.Sub:
			r = m.arith.SubWords(a, b)
		case op.Mul:
			r = m.arith.MulWords(a, b)
		}
		return m.stack.push(r)

	case op.Neg:
		v, err := m.stack.pop()
		if err != nil {
			return err
		}
		w, ok := v.(object.Word81)
		if !ok {
			release(v)
			return fault.New(fault.TypeMismatch, "NEG needs word81, found %s", v.Type())
		}
		return m.stack.push(m.arith.NegWord(w))

	case op.TJmp:
		d, err := m.rd.FetchDisplacement()
		if err != nil {
			return err
		}
		// One trit word is 3 bytes of addressable granularity. The target
		// is relative to the position after the displacement byte.
		return m.rd.Seek(m.rd.Pos() + int(d)*bytecode.TritWord)

	case op.Call:
		m.callDepth++
		return nil

	case op.Ret:
		if m.callDepth > 0 {
			m.callDepth--
		}
		return nil

	case op.BigPush:
		w, err := m.rd.FetchWord81()
		if err != nil {
			return err
		}
		return m.stack.push(object.NewBigInt(m.arith.Lift(w)))

	case op.BigAdd, op.BigMul:
		a, b, err := m.popBigPair(info.Name)
		if err != nil {
			return err
		}
		var (
			res  object.BigNum
			oerr error
		)
		if info.Code == op.BigAdd {
			res, oerr = m.arith.BigAdd(a.Num(), b.Num())
		} else {
			res, oerr = m.arith.BigMul(a.Num(), b.Num())
		}
		a.Release()
		b.Release()
		if oerr != nil {
			return oerr
		}
		return m.stack.push(object.NewBigInt(res))

	case op.Fact:
		v, err := m.stack.pop()
		if err != nil {
			return err
		}
		h, ok := v.(*object.BigInt)
		if !ok {
			release(v)
			return fault.New(fault.TypeMismatch, "FACT needs bigint handle, found %s", v.Type())
		}
		res, oerr := m.arith.Factorial(h.Num(), m.guard.Enter, m.guard.Leave)
		h.Release()
		if oerr != nil {
			return oerr
		}
		return m.stack.push(object.NewBigInt(res))

	case op.MatMul, op.Accum, op.TensorDot, op.Contract:
		a, b, err := m.popTensorPair(info.Name)
		if err != nil {
			return err
		}
		var (
			res  object.TensorGrid
			oerr error
		)
		switch info.Code {
		case op.MatMul:
			res, oerr = m.tensors.MatMul(a.Grid(), b.Grid())
		case op.Accum:
			res, oerr = m.tensors.Accum(a.Grid(), b.Grid())
		case op.TensorDot:
			res, oerr = m.tensors.Dot(a.Grid(), b.Grid())
		case op.Contract:
			res, oerr = m.tensors.Contract(a.Grid(), b.Grid())
		}
		a.Release()
		b.Release()
		if oerr != nil {
			return oerr
		}
		return m.stack.push(object.NewTensor(res))

	case op.TNew:
		w, err := m.rd.FetchWord81()
		if err != nil {
			return err
		}
		g, oerr := m.tensors.New(int(w.Int64()))
		if oerr != nil {
			return oerr
		}
		return m.stack.push(object.NewTensor(g))

	case op.Halt:
		m.halted = true
		return nil
	}

	return fault.New(fault.UnknownOpcode, "unhandled opcode %s", info.Name)
}

// popWordPair pops two Word81 operands; a is the deeper of the two.
func (m *Machine) popWordPair(name string) (a, b object.Word81, err error) {
	vb, err := m.stack.pop()
	if err != nil {
		return a, b, err
	}
	va, err := m.stack.pop()
	if err != nil {
		release(vb)
		return a, b, err
	}
	b, ok := vb.(object.Word81)
	if !ok {
		release(va)
		release(vb)
		return a, b, fault.New(fault.TypeMismatch, "%s needs word81, found %s", name, vb.Type())
	}
	a, ok = va.(object.Word81)
	if !ok {
		release(va)
		return a, b, fault.New(fault.TypeMismatch, "%s needs word81, found %s", name, va.Type())
	}
	return a, b, nil
}

// popBigPair pops two bigint handles; ownership transfers to the caller.
func (m *Machine) popBigPair(name string) (a, b *object.BigInt, err error) {
	vb, err := m.stack.pop()
	if err != nil {
		return nil, nil, err
	}
	va, err := m.stack.pop()
	if err != nil {
		release(vb)
		return nil, nil, err
	}
	b, ok := vb.(*object.BigInt)
	if !ok {
		release(va)
		release(vb)
		return nil, nil, fault.New(fault.TypeMismatch, "%s needs bigint handle, found %s", name, vb.Type())
	}
	a, ok = va.(*object.BigInt)
	if !ok {
		release(va)
		b.Release()
		return nil, nil, fault.New(fault.TypeMismatch, "%s needs bigint handle, found %s", name, va.Type())
	}
	return a, b, nil
}

// popTensorPair pops two tensor handles; ownership transfers to the caller.
func (m *Machine) popTensorPair(name string) (a, b *object.Tensor, err error) {
	vb, err := m.stack.pop()
	if err != nil {
		return nil, nil, err
	}
	va, err := m.stack.pop()
	if err != nil {
		release(vb)
		return nil, nil, err
	}
	b, ok := vb.(*object.Tensor)
	if !ok {
		release(va)
		release(vb)
		return nil, nil, fault.New(fault.TypeMismatch, "%s needs tensor handle, found %s", name, vb.Type())
	}
	a, ok = va.(*object.Tensor)
	if !ok {
		release(va)
		b.Release()
		return nil, nil, fault.New(fault.TypeMismatch, "%s needs tensor handle, found %s", name, va.Type())
	}
	return a, b, nil
}

func release(v object.Value) {
	if r, ok := v.(object.Releasable); ok {
		r.Release()
	}
}

// TOS returns the top of the stack without removing it.
func (m *Machine) TOS() (object.Value, bool) {
	v, err := m.stack.peek()
	if err != nil {
		return nil, false
	}
	return v, true
}

// Stack returns a bottom-up copy of the final stack contents.
func (m *Machine) Stack() []object.Value {
	return m.stack.values()
}

// State returns the lifecycle state of the machine.
func (m *Machine) State() State { return m.state }

// Tier returns the current capability tier.
func (m *Machine) Tier() object.Tier { return m.tier }

// CallDepth returns the nesting signal driving tier policy.
func (m *Machine) CallDepth() int { return m.callDepth }

// Session returns the opaque session identifier used for external tracing.
func (m *Machine) Session() uuid.UUID { return m.session }

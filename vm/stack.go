package vm

import (
	"github.com/copyleftcultivars/hanoivm/fault"
	"github.com/copyleftcultivars/hanoivm/object"
)

// stack is the tagged operand stack. Capacity is fixed at construction.
// Entries are moved, not copied: pop clears the slot so the ownership of a
// handle transfers to the caller.
type stack struct {
	items []object.Value
	sp    int
}

func newStack(capacity int) *stack {
	return &stack{items: make([]object.Value, capacity), sp: -1}
}

func (s *stack) size() int { return s.sp + 1 }

func (s *stack) push(v object.Value) error {
	if s.sp+1 >= len(s.items) {
		return fault.New(fault.StackOverflow, "stack capacity %d exceeded", len(s.items))
	}
	s.sp++
	s.items[s.sp] = v
	return nil
}

func (s *stack) pop() (object.Value, error) {
	if s.sp < 0 {
		return nil, fault.New(fault.StackUnderflow, "pop on empty stack")
	}
	v := s.items[s.sp]
	s.items[s.sp] = nil
	s.sp--
	return v, nil
}

func (s *stack) peek() (object.Value, error) {
	if s.sp < 0 {
		return nil, fault.New(fault.StackUnderflow, "peek on empty stack")
	}
	return s.items[s.sp], nil
}

func (s *stack) swap() error {
	if s.sp < 1 {
		return fault.New(fault.StackUnderflow, "swap needs two operands, have %d", s.size())
	}
	s.items[s.sp], s.items[s.sp-1] = s.items[s.sp-1], s.items[s.sp]
	return nil
}

// values returns a bottom-up copy of the live entries.
func (s *stack) values() []object.Value {
	out := make([]object.Value, s.size())
	copy(out, s.items[:s.size()])
	return out
}

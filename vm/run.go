package vm

import (
	"github.com/copyleftcultivars/hanoivm/object"
)

// Run executes the given bytecode in a new Machine and returns the value
// left on top of the stack, or nil if the program halted with an empty
// stack.
func Run(code []byte, options ...Option) (object.Value, error) {
	m := New(code, options...)
	if err := m.Run(); err != nil {
		return nil, err
	}
	if tos, ok := m.TOS(); ok {
		return tos, nil
	}
	return nil, nil
}

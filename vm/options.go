package vm

import "github.com/gofrs/uuid"

// Option is a configuration function for a Machine.
type Option func(*Machine)

// WithTracer sets the trace sink for dispatch and tier-transition events.
func WithTracer(tracer Tracer) Option {
	return func(m *Machine) {
		if tracer != nil {
			m.tracer = tracer
		}
	}
}

// WithStackCapacity sets the operand stack capacity. The default is
// DefaultStackCapacity.
func WithStackCapacity(capacity int) Option {
	return func(m *Machine) {
		if capacity > 0 {
			m.stackCap = capacity
		}
	}
}

// WithMaxRecursion sets the recursion guard limit. The default is
// DefaultMaxRecursion.
func WithMaxRecursion(max int) Option {
	return func(m *Machine) {
		if max > 0 {
			m.maxRecursion = max
		}
	}
}

// WithSession sets the opaque session identifier surfaced through tracing.
// A random identifier is generated when none is provided.
func WithSession(id uuid.UUID) Option {
	return func(m *Machine) {
		m.session = id
	}
}

// WithArithmetic replaces the big-integer arithmetic component.
func WithArithmetic(arith Arithmetic) Option {
	return func(m *Machine) {
		if arith != nil {
			m.arith = arith
		}
	}
}

// WithTensors replaces the tensor component.
func WithTensors(engine TensorEngine) Option {
	return func(m *Machine) {
		if engine != nil {
			m.tensors = engine
		}
	}
}

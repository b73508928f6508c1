package vm

// Trace event names emitted to the Tracer.
const (
	// EventDispatch fires on every opcode dispatch; payload is the opcode
	// byte.
	EventDispatch = "vm.dispatch"

	// EventTierPromote and EventTierDemote fire on tier transitions;
	// payload is the new tier.
	EventTierPromote = "vm.tier.promote"
	EventTierDemote  = "vm.tier.demote"
)

// Tracer receives (event, payload) pairs on every opcode dispatch and every
// tier transition. It is purely observational: it never influences control
// flow and must not fail the machine.
//
// Tracer calls are synchronous with execution; implementations should be
// fast to avoid impacting performance.
type Tracer interface {
	Emit(event string, payload int64)
}

// NopTracer is a Tracer that discards everything.
type NopTracer struct{}

func (NopTracer) Emit(string, int64) {}

var _ Tracer = NopTracer{}

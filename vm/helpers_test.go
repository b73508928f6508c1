package vm

// Shared test fixtures for the vm package.

type traceEvent struct {
	name    string
	payload int64
}

// recorder is a Tracer that captures every emitted event in order.
type recorder struct {
	events []traceEvent
}

func (r *recorder) Emit(name string, payload int64) {
	r.events = append(r.events, traceEvent{name: name, payload: payload})
}

// transitions returns the tier-transition payloads in emission order.
func (r *recorder) transitions() []int64 {
	var out []int64
	for _, e := range r.events {
		if e.name == EventTierPromote || e.name == EventTierDemote {
			out = append(out, e.payload)
		}
	}
	return out
}

// dispatchesBefore counts dispatch events emitted before the first
// occurrence of the named event.
func (r *recorder) dispatchesBefore(name string) int {
	n := 0
	for _, e := range r.events {
		if e.name == name {
			return n
		}
		if e.name == EventDispatch {
			n++
		}
	}
	return n
}

package vm

import (
	"github.com/copyleftcultivars/hanoivm/object"
	"github.com/copyleftcultivars/hanoivm/op"
)

// Tier transition thresholds. Call depth is a proxy for structural
// complexity: deep nesting warrants richer operand machinery, shallow
// nesting falls back to cheaper representations.
const (
	promoteCallDepth    = 10 // T81  -> T243 once exceeded
	demoteT729CallDepth = 5  // T729 -> T243 once below
	demoteT243CallDepth = 2  // T243 -> T81  once below
)

// applyTier evaluates the tier transition rules, in promotion-then-demotion
// order, and fires at most the first that matches. The loop consults the
// machine twice per cycle: before dispatch with the fetched instruction
// (info non-nil, enabling the tensor-class rule) and after dispatch with
// info nil, so a call depth moved by the instruction itself is reflected
// without waiting a cycle. A cycle in which the pre-dispatch check fired
// skips the post-dispatch check, so one instruction never transitions
// twice.
func (m *Machine) applyTier(info *op.Info) bool {
	switch {
	case m.tier == object.T81 && m.callDepth > promoteCallDepth:
		m.setTier(object.T243, EventTierPromote)
	case m.tier == object.T243 && info != nil && info.TensorClass:
		m.setTier(object.T729, EventTierPromote)
	case m.tier == object.T729 && m.callDepth < demoteT729CallDepth:
		m.setTier(object.T243, EventTierDemote)
	case m.tier == object.T243 && m.callDepth < demoteT243CallDepth:
		m.setTier(object.T81, EventTierDemote)
	default:
		return false
	}
	return true
}

func (m *Machine) setTier(t object.Tier, event string) {
	m.tier = t
	m.tracer.Emit(event, int64(t))
}

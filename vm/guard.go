package vm

import (
	"github.com/copyleftcultivars/hanoivm/fault"
)

// DefaultMaxRecursion bounds nested invocation of recursively-defined
// opcode semantics. Independent of the tier machine's call depth.
const DefaultMaxRecursion = 1024

// recursionGuard bounds host-level recursive evaluation inside opcode
// handlers. Enter and Leave are used as a scoped pair around each recursive
// step; Leave must run on every exit path.
type recursionGuard struct {
	depth int
	max   int
}

func (g *recursionGuard) Enter() error {
	if g.depth+1 > g.max {
		return fault.New(fault.DepthExceeded, "recursion depth limit %d", g.max)
	}
	g.depth++
	return nil
}

func (g *recursionGuard) Leave() {
	if g.depth > 0 {
		g.depth--
	}
}

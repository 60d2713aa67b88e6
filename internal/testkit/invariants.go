// Package testkit provides structural invariant checks shared by tests.
package testkit

import (
	"fmt"

	"spvir/internal/ir"
)

// CheckRegionInvariants walks every region reachable from the function
// body and checks the arena/ownership facts the verifier assumes:
// 1) every region block resolves in the arena and is owned by that region
// 2) no block appears twice in the region tree
// 3) every arena block belongs to exactly one reachable region
func CheckRegionInvariants(f *ir.Func) error {
	if f == nil {
		return fmt.Errorf("nil function")
	}
	seen := make(map[ir.BlockID]bool, f.NumBlocks())
	stack := []*ir.Region{f.Body()}
	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if r == nil {
			return fmt.Errorf("nil region in tree")
		}
		if r.Func() != f {
			return fmt.Errorf("region bound to a foreign function")
		}
		for _, id := range r.Blocks() {
			bb := f.Block(id)
			if bb == nil {
				return fmt.Errorf("bb%d: not in the arena", id)
			}
			if bb.Owner() != r {
				return fmt.Errorf("bb%d: owner does not match the region listing it", id)
			}
			if seen[id] {
				return fmt.Errorf("bb%d: listed in more than one region", id)
			}
			seen[id] = true
			for i := range bb.Instrs {
				switch ins := &bb.Instrs[i]; ins.Kind {
				case ir.InstrLoop:
					stack = append(stack, ins.Loop.Region())
				case ir.InstrSelection:
					stack = append(stack, ins.Sel.Region())
				}
			}
		}
	}
	for i := 0; i < f.NumBlocks(); i++ {
		if !seen[ir.BlockID(i)] {
			return fmt.Errorf("bb%d: in the arena but in no region", i)
		}
	}
	return nil
}

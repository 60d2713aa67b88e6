package ir

// Structural verification. Runs once before lowering, is idempotent and
// mutates nothing; VerifyFunc additionally records a verification stamp
// (the current generation) that the lowerer checks. Checks run in a
// fixed order per region — entry, merge, continue, nesting — and the
// first failure is the result.

// VerifyFunc verifies the function body and every structured operation
// nested in it. On success the function is stamped verified until the
// next builder mutation.
func VerifyFunc(f *Func) error {
	if err := verifyRegionBlocks(f, f.body); err != nil {
		return err
	}
	f.verifiedGen = f.gen
	return nil
}

// Verify checks the loop region's structural invariants.
func (l *LoopOp) Verify() error {
	return verifyLoop(l.region.fn, l)
}

// Verify checks the selection region's structural invariants.
func (s *SelectionOp) Verify() error {
	return verifySelection(s.region.fn, s)
}

// verifyRegionBlocks holds the checks shared by all region kinds:
// every block terminated, Merge only where legal, structured operations
// in final position, and the nesting discipline for each nested region.
func verifyRegionBlocks(f *Func, r *Region) error {
	for _, id := range r.blocks {
		bb := f.Block(id)
		if !bb.Terminated() {
			return newError(ErrMalformedBlock, id, "unterminated block")
		}
		if bb.Term.Kind == TermMerge && r.Kind == RegionFunction {
			return newError(ErrIllegalContext, id, "merge terminator outside a loop or selection region")
		}
		for i := range bb.Instrs {
			ins := &bb.Instrs[i]
			var nested *Region
			switch ins.Kind {
			case InstrLoop:
				if err := verifyLoop(f, ins.Loop); err != nil {
					return err
				}
				nested = ins.Loop.region
			case InstrSelection:
				if err := verifySelection(f, ins.Sel); err != nil {
					return err
				}
				nested = ins.Sel.region
			default:
				continue
			}
			if i != len(bb.Instrs)-1 {
				return newError(ErrMalformedBlock, id, "structured operation is not the final instruction")
			}
			// The block's own branch is the continuation target control
			// reaches when the nested region exits through its merge.
			if bb.Term.Kind != TermBranch {
				return newError(ErrMalformedBlock, id, "block with a structured operation must end in an unconditional branch")
			}
			if err := verifyNoEscape(f, nested); err != nil {
				return err
			}
		}
	}
	return nil
}

// verifyNoEscape requires that no edge from inside the nested region
// targets a block outside it. Leaving the region is only expressed by
// branching to its merge block, which is itself inside the region.
func verifyNoEscape(f *Func, r *Region) error {
	inside := make(map[BlockID]struct{}, len(r.blocks))
	for _, id := range r.blocks {
		inside[id] = struct{}{}
	}
	for _, id := range r.blocks {
		for _, succ := range f.Block(id).Term.Successors() {
			if _, ok := inside[succ]; !ok {
				return newError(ErrBrokenNesting, id,
					"edge to bb%d escapes the %s region past its merge block", succ, r.Kind)
			}
		}
	}
	return nil
}

func verifyLoop(f *Func, l *LoopOp) error {
	r := l.region

	// EntryCheck
	if r.Len() < 4 {
		return newError(ErrBadEntry, r.Entry(), "loop region has %d blocks, need at least 4", r.Len())
	}
	entry := f.Block(r.Entry())
	header := r.blocks[1]
	succs := entry.Term.Successors()
	if len(succs) != 1 || succs[0] != header {
		return newError(ErrBadEntry, r.Entry(), "entry block must branch only to the header bb%d", header)
	}

	// MergeCheck
	mergeID := r.Last()
	merge := f.Block(mergeID)
	if len(merge.Instrs) != 0 || merge.Term.Kind != TermMerge {
		return newError(ErrBadMerge, mergeID, "merge block must contain nothing but a merge terminator")
	}

	// ContinueCheck
	backEdges := 0
	for _, id := range r.blocks[1:] {
		if f.Block(id).Term.HasSuccessor(header) {
			backEdges++
		}
	}
	switch {
	case backEdges == 0:
		return newError(ErrMissingContinue, header, "no block carries a back-edge to the header")
	case backEdges > 1:
		return newError(ErrAmbiguousContinue, header, "%d blocks carry a back-edge to the header", backEdges)
	}

	if err := verifyHeaderHostsNoOp(f, header); err != nil {
		return err
	}

	// NestingCheck
	return verifyRegionBlocks(f, r)
}

func verifySelection(f *Func, s *SelectionOp) error {
	r := s.region

	if r.Len() < 3 {
		return newError(ErrBadEntry, r.Entry(), "selection region has %d blocks, need at least 3", r.Len())
	}
	entry := f.Block(r.Entry())
	header := r.blocks[1]
	succs := entry.Term.Successors()
	if len(succs) != 1 || succs[0] != header {
		return newError(ErrBadEntry, r.Entry(), "entry block must branch only to the header bb%d", header)
	}

	mergeID := r.Last()
	merge := f.Block(mergeID)
	if len(merge.Instrs) != 0 || merge.Term.Kind != TermMerge {
		return newError(ErrBadMerge, mergeID, "merge block must contain nothing but a merge terminator")
	}

	if err := verifyHeaderHostsNoOp(f, header); err != nil {
		return err
	}

	return verifyRegionBlocks(f, r)
}

// verifyHeaderHostsNoOp rejects a structured operation inside a header
// block. The lowerer places the merge pseudo-instruction right before
// the header's terminator; a nested region inlined there would claim
// that position.
func verifyHeaderHostsNoOp(f *Func, header BlockID) error {
	bb := f.Block(header)
	for i := range bb.Instrs {
		switch bb.Instrs[i].Kind {
		case InstrLoop, InstrSelection:
			return newError(ErrMalformedBlock, header, "header block may not carry a structured operation")
		}
	}
	return nil
}

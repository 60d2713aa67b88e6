package ir

// LoopOp is a structured loop owning exactly one region. The header,
// continue and merge blocks are roles derived from block order and edge
// shape, never stored fields: the region's shape is the single source
// of truth, so an edit can never leave a stale role pointer behind.
// Role queries are memoized against the function's generation counter.
type LoopOp struct {
	region *Region

	cacheGen uint64
	cont     BlockID
}

// Region returns the loop's body region.
func (l *LoopOp) Region() *Region {
	return l.region
}

// AddEntryAndMergeBlock seeds an empty loop region with its fixed
// skeleton: an entry block branching to a fresh header block, and a
// trailing merge block holding only a Merge terminator. The caller
// populates the header and body between them with NewBodyBlock.
func (l *LoopOp) AddEntryAndMergeBlock(b *Builder) error {
	if l.region.Len() != 0 {
		return newError(ErrMalformedBlock, l.region.Entry(), "loop region is not empty")
	}
	entry := b.NewBlock(l.region)
	header := b.NewBlock(l.region)
	merge := b.NewBlock(l.region)
	if err := b.Seal(entry, NewBranch(header)); err != nil {
		return err
	}
	return b.Seal(merge, NewMerge())
}

// NewBodyBlock allocates a block and inserts it just before the merge
// block, keeping the merge last in structural order.
func (l *LoopOp) NewBodyBlock(b *Builder) BlockID {
	pos := l.region.Len() - 1
	if pos < 0 {
		pos = 0
	}
	return b.newBlockAt(l.region, pos)
}

// HeaderBlock returns the loop header: the block at structural index 1.
func (l *LoopOp) HeaderBlock() BlockID {
	if l.region.Len() < 2 {
		return NoBlockID
	}
	return l.region.blocks[1]
}

// MergeBlock returns the loop's merge block: the last block in
// structural order.
func (l *LoopOp) MergeBlock() BlockID {
	if l.region.Len() < 2 {
		return NoBlockID
	}
	return l.region.Last()
}

// ContinueBlock returns the unique non-entry block with a back-edge to
// the header, or NoBlockID when there is no such block or more than
// one. The scan is memoized until the next mutation.
func (l *LoopOp) ContinueBlock() BlockID {
	fn := l.region.fn
	if l.cacheGen == fn.gen {
		return l.cont
	}
	l.cont = l.findContinue()
	l.cacheGen = fn.gen
	return l.cont
}

func (l *LoopOp) findContinue() BlockID {
	header := l.HeaderBlock()
	if header == NoBlockID {
		return NoBlockID
	}
	fn := l.region.fn
	found := NoBlockID
	for _, id := range l.region.blocks[1:] {
		if !fn.Block(id).Term.HasSuccessor(header) {
			continue
		}
		if found != NoBlockID {
			return NoBlockID // ambiguous; the verifier reports it
		}
		found = id
	}
	return found
}

// SelectionOp is a structured selection (if/switch reconvergence)
// owning exactly one region. Header and merge roles are derived the
// same way as for loops; there is no continue role.
type SelectionOp struct {
	region *Region
}

// Region returns the selection's body region.
func (s *SelectionOp) Region() *Region {
	return s.region
}

// AddEntryAndMergeBlock seeds an empty selection region with an entry
// block branching to a fresh header block and a trailing merge block.
func (s *SelectionOp) AddEntryAndMergeBlock(b *Builder) error {
	if s.region.Len() != 0 {
		return newError(ErrMalformedBlock, s.region.Entry(), "selection region is not empty")
	}
	entry := b.NewBlock(s.region)
	header := b.NewBlock(s.region)
	merge := b.NewBlock(s.region)
	if err := b.Seal(entry, NewBranch(header)); err != nil {
		return err
	}
	return b.Seal(merge, NewMerge())
}

// NewBodyBlock allocates a block and inserts it just before the merge block.
func (s *SelectionOp) NewBodyBlock(b *Builder) BlockID {
	pos := s.region.Len() - 1
	if pos < 0 {
		pos = 0
	}
	return b.newBlockAt(s.region, pos)
}

// HeaderBlock returns the block at structural index 1.
func (s *SelectionOp) HeaderBlock() BlockID {
	if s.region.Len() < 2 {
		return NoBlockID
	}
	return s.region.blocks[1]
}

// MergeBlock returns the last block in structural order.
func (s *SelectionOp) MergeBlock() BlockID {
	if s.region.Len() < 2 {
		return NoBlockID
	}
	return s.region.Last()
}

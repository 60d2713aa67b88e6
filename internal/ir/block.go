package ir

// Block is an ordered instruction list ending in exactly one terminator.
// Blocks live in their function's arena and are identified by index; the
// owning region orders them structurally.
type Block struct {
	ID     BlockID
	Instrs []Instr
	Term   Terminator

	region *Region
}

// Terminated reports whether the block already carries a terminator.
func (b *Block) Terminated() bool {
	if b == nil {
		return true
	}
	return b.Term.Kind != TermNone
}

// Owner returns the region the block belongs to.
func (b *Block) Owner() *Region {
	if b == nil {
		return nil
	}
	return b.region
}

// RegionKind distinguishes the operation owning a region.
type RegionKind uint8

const (
	RegionFunction RegionKind = iota
	RegionLoop
	RegionSelection
)

func (k RegionKind) String() string {
	switch k {
	case RegionFunction:
		return "function"
	case RegionLoop:
		return "loop"
	case RegionSelection:
		return "selection"
	default:
		return "region"
	}
}

// Region is an ordered, non-empty block sequence owned by exactly one
// operation. The first block is the entry. Blocks are referenced by
// arena ID; the slice order, not the ID order, is the structural order.
type Region struct {
	Kind RegionKind

	fn     *Func
	blocks []BlockID
}

// Blocks returns the structural block order. The slice is owned by the
// region; callers must not mutate it.
func (r *Region) Blocks() []BlockID {
	return r.blocks
}

// Len returns the number of blocks in the region.
func (r *Region) Len() int {
	return len(r.blocks)
}

// Entry returns the region's entry block, or NoBlockID for an empty region.
func (r *Region) Entry() BlockID {
	if len(r.blocks) == 0 {
		return NoBlockID
	}
	return r.blocks[0]
}

// Last returns the region's final block, or NoBlockID for an empty region.
func (r *Region) Last() BlockID {
	if len(r.blocks) == 0 {
		return NoBlockID
	}
	return r.blocks[len(r.blocks)-1]
}

// Contains reports whether id is one of the region's blocks.
func (r *Region) Contains(id BlockID) bool {
	for _, b := range r.blocks {
		if b == id {
			return true
		}
	}
	return false
}

// Func returns the function whose arena holds the region's blocks.
func (r *Region) Func() *Func {
	return r.fn
}

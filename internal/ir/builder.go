package ir

import (
	"fmt"

	"fortio.org/safecast"

	"spvir/internal/symbols"
	"spvir/internal/types"
)

// Builder is the only mutation path for a function's blocks and regions.
// It is a scoped session: one builder per function, no concurrent use.
// Every mutation bumps the function's generation counter, invalidating
// memoized role queries and the verification stamp.
type Builder struct {
	fn *Func
}

// NewBuilder opens a builder session for f.
func NewBuilder(f *Func) *Builder {
	return &Builder{fn: f}
}

// Func returns the function under construction.
func (b *Builder) Func() *Func {
	return b.fn
}

func (b *Builder) touch() {
	b.fn.gen++
}

// NewBlock appends a fresh block to the arena and to the end of r.
func (b *Builder) NewBlock(r *Region) BlockID {
	return b.newBlockAt(r, len(r.blocks))
}

// newBlockAt allocates a block and inserts it at position pos in r's
// structural order. The arena ID is always the next free index.
func (b *Builder) newBlockAt(r *Region, pos int) BlockID {
	b.touch()
	lenBlocks, err := safecast.Conv[int32](len(b.fn.blocks))
	if err != nil {
		panic(fmt.Errorf("block arena overflow: %w", err))
	}
	id := BlockID(lenBlocks)
	b.fn.blocks = append(b.fn.blocks, Block{ID: id, region: r})
	r.blocks = append(r.blocks, NoBlockID)
	copy(r.blocks[pos+1:], r.blocks[pos:])
	r.blocks[pos] = id
	return id
}

// Append adds a non-terminator instruction to the block.
// Fails with MalformedBlock if the block is already terminated.
func (b *Builder) Append(id BlockID, ins Instr) error {
	bb := b.fn.Block(id)
	if bb == nil {
		return newError(ErrMalformedBlock, id, "block does not exist")
	}
	if bb.Terminated() {
		return newError(ErrMalformedBlock, id, "append after terminator")
	}
	b.touch()
	bb.Instrs = append(bb.Instrs, ins)
	return nil
}

// Seal installs the block's terminator. Fails with MalformedBlock on
// double termination or a successor outside the arena, and with
// IllegalContext for a Merge outside a loop/selection region.
// Cross-region edges are allowed here; the verifier's nesting check is
// the authority on whether they respect merge boundaries.
func (b *Builder) Seal(id BlockID, t Terminator) error {
	bb := b.fn.Block(id)
	if bb == nil {
		return newError(ErrMalformedBlock, id, "block does not exist")
	}
	if bb.Terminated() {
		return newError(ErrMalformedBlock, id, "block already terminated")
	}
	if t.Kind == TermNone {
		return newError(ErrMalformedBlock, id, "sealing with an empty terminator")
	}
	if t.Kind == TermMerge {
		r := bb.Owner()
		if r == nil || (r.Kind != RegionLoop && r.Kind != RegionSelection) {
			return newError(ErrIllegalContext, id, "merge terminator outside a loop or selection region")
		}
	}
	for _, succ := range t.Successors() {
		if b.fn.Block(succ) == nil {
			return newError(ErrMalformedBlock, id, "successor bb%d does not exist", succ)
		}
	}
	b.touch()
	bb.Term = t
	return nil
}

// NewLoop appends a structured-loop operation to the block and returns
// it with an empty region. Fails with MalformedBlock if the block is
// terminated; the verifier additionally requires the loop to be the
// block's final instruction.
func (b *Builder) NewLoop(at BlockID) (*LoopOp, error) {
	bb := b.fn.Block(at)
	if bb == nil {
		return nil, newError(ErrMalformedBlock, at, "block does not exist")
	}
	if bb.Terminated() {
		return nil, newError(ErrMalformedBlock, at, "append after terminator")
	}
	b.touch()
	loop := &LoopOp{region: &Region{Kind: RegionLoop, fn: b.fn}}
	bb.Instrs = append(bb.Instrs, Instr{Kind: InstrLoop, Loop: loop})
	return loop, nil
}

// NewSelection appends a structured-selection operation to the block.
func (b *Builder) NewSelection(at BlockID) (*SelectionOp, error) {
	bb := b.fn.Block(at)
	if bb == nil {
		return nil, newError(ErrMalformedBlock, at, "block does not exist")
	}
	if bb.Terminated() {
		return nil, newError(ErrMalformedBlock, at, "append after terminator")
	}
	b.touch()
	sel := &SelectionOp{region: &Region{Kind: RegionSelection, fn: b.fn}}
	bb.Instrs = append(bb.Instrs, Instr{Kind: InstrSelection, Sel: sel})
	return sel, nil
}

// NewCall appends a call instruction. When the callee is already
// declared, the result presence is checked against its return type and
// a mismatch fails with SignatureMismatch. An undeclared callee is
// recorded as a pending forward reference in the table; the same check
// runs at resolve time.
func (b *Builder) NewCall(at BlockID, tbl *symbols.Table, typesIn *types.Interner, call CallInstr) error {
	bb := b.fn.Block(at)
	if bb == nil {
		return newError(ErrMalformedBlock, at, "block does not exist")
	}
	if bb.Terminated() {
		return newError(ErrMalformedBlock, at, "append after terminator")
	}
	if sig, ok := tbl.Lookup(call.Callee); ok {
		wantResult := !typesIn.IsVoid(sig.Result)
		if call.HasResult != wantResult {
			return newError(ErrSignatureMismatch, at,
				"call to %q: result presence does not match declared return type", call.Callee)
		}
		if id, ok := tbl.LookupID(call.Callee); ok {
			call.Sym = id
		}
	} else {
		tbl.AddPending(symbols.PendingRef{
			Callee:    call.Callee,
			HasResult: call.HasResult,
			Where:     fmt.Sprintf("%s bb%d", b.fn.Name, at),
		})
	}
	b.touch()
	bb.Instrs = append(bb.Instrs, Instr{Kind: InstrCall, Call: call})
	return nil
}

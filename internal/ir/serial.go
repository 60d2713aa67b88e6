package ir

import (
	"spvir/internal/types"
)

// Wire-shaped mirrors of the IR, used by the module codec. Specs carry
// arena IDs explicitly so a decoded function reproduces the exact block
// identities of the encoded one.

type FuncSpec struct {
	Name   string
	Params []types.TypeID
	Result types.TypeID
	// Blocks in arena order; the index is the BlockID.
	Blocks []BlockSpec
	Body   RegionSpec
}

type RegionSpec struct {
	Kind RegionKind
	// Blocks in structural order, referencing arena IDs.
	Blocks []BlockID
}

type BlockSpec struct {
	Instrs []InstrSpec
	Term   TermSpec
}

type InstrSpec struct {
	Kind InstrKind
	Op   *OpInstr
	Call *CallInstr
	// Region holds the body of a loop/selection instruction.
	Region *RegionSpec
}

type TermSpec struct {
	Kind    TermKind
	Target  BlockID
	Cond    ValueID
	Then    BlockID
	Else    BlockID
	Weights *BranchWeights
	Value   ValueID
}

// Snapshot captures the function as wire-shaped specs.
func Snapshot(f *Func) FuncSpec {
	spec := FuncSpec{
		Name:   f.Name,
		Params: f.Params,
		Result: f.Result,
		Blocks: make([]BlockSpec, len(f.blocks)),
		Body:   snapshotRegion(f.body),
	}
	for i := range f.blocks {
		spec.Blocks[i] = snapshotBlock(&f.blocks[i])
	}
	return spec
}

func snapshotRegion(r *Region) RegionSpec {
	blocks := make([]BlockID, len(r.blocks))
	copy(blocks, r.blocks)
	return RegionSpec{Kind: r.Kind, Blocks: blocks}
}

func snapshotBlock(bb *Block) BlockSpec {
	spec := BlockSpec{Term: snapshotTerm(bb.Term)}
	for i := range bb.Instrs {
		ins := &bb.Instrs[i]
		switch ins.Kind {
		case InstrOp:
			op := ins.Op
			spec.Instrs = append(spec.Instrs, InstrSpec{Kind: InstrOp, Op: &op})
		case InstrCall:
			call := ins.Call
			spec.Instrs = append(spec.Instrs, InstrSpec{Kind: InstrCall, Call: &call})
		case InstrLoop:
			r := snapshotRegion(ins.Loop.region)
			spec.Instrs = append(spec.Instrs, InstrSpec{Kind: InstrLoop, Region: &r})
		case InstrSelection:
			r := snapshotRegion(ins.Sel.region)
			spec.Instrs = append(spec.Instrs, InstrSpec{Kind: InstrSelection, Region: &r})
		}
	}
	return spec
}

func snapshotTerm(t Terminator) TermSpec {
	spec := TermSpec{Kind: t.Kind, Target: NoBlockID, Then: NoBlockID, Else: NoBlockID}
	switch t.Kind {
	case TermBranch:
		spec.Target = t.Branch.Target
	case TermBranchCond:
		spec.Cond = t.BranchCond.Cond
		spec.Then = t.BranchCond.Then
		spec.Else = t.BranchCond.Else
		if t.BranchCond.Weights != nil {
			w := *t.BranchCond.Weights
			spec.Weights = &w
		}
	case TermReturnValue:
		spec.Value = t.ReturnValue.Value
	}
	return spec
}

// BuildFunc rehydrates a function from its spec, reproducing arena IDs
// and region ownership. Construction contracts are re-checked: weights
// go through NewBranchCond and every block must land in exactly one
// region.
func BuildFunc(spec FuncSpec) (*Func, error) {
	f := NewFunc(spec.Name, spec.Params, spec.Result)
	f.blocks = make([]Block, len(spec.Blocks))
	for i := range f.blocks {
		f.blocks[i].ID = BlockID(i)
	}

	f.body.Kind = RegionFunction
	if err := wireRegion(f, f.body, &spec.Body, &spec); err != nil {
		return nil, err
	}

	for i := range f.blocks {
		if f.blocks[i].region == nil {
			return nil, newError(ErrMalformedBlock, BlockID(i), "block belongs to no region")
		}
	}
	return f, nil
}

// wireRegion claims the region's blocks and fills their instructions
// and terminators, recursing into nested loop/selection regions.
func wireRegion(f *Func, r *Region, rs *RegionSpec, fs *FuncSpec) error {
	r.blocks = make([]BlockID, len(rs.Blocks))
	copy(r.blocks, rs.Blocks)

	for _, id := range r.blocks {
		bb := f.Block(id)
		if bb == nil {
			return newError(ErrMalformedBlock, id, "region references a block outside the arena")
		}
		if bb.region != nil {
			return newError(ErrMalformedBlock, id, "block claimed by more than one region")
		}
		bb.region = r

		bs := &fs.Blocks[id]
		for i := range bs.Instrs {
			is := &bs.Instrs[i]
			switch is.Kind {
			case InstrOp:
				if is.Op == nil {
					return newError(ErrMalformedBlock, id, "op instruction without payload")
				}
				bb.Instrs = append(bb.Instrs, Instr{Kind: InstrOp, Op: *is.Op})
			case InstrCall:
				if is.Call == nil {
					return newError(ErrMalformedBlock, id, "call instruction without payload")
				}
				bb.Instrs = append(bb.Instrs, Instr{Kind: InstrCall, Call: *is.Call})
			case InstrLoop:
				if is.Region == nil {
					return newError(ErrMalformedBlock, id, "loop instruction without region")
				}
				loop := &LoopOp{region: &Region{Kind: RegionLoop, fn: f}}
				if err := wireRegion(f, loop.region, is.Region, fs); err != nil {
					return err
				}
				bb.Instrs = append(bb.Instrs, Instr{Kind: InstrLoop, Loop: loop})
			case InstrSelection:
				if is.Region == nil {
					return newError(ErrMalformedBlock, id, "selection instruction without region")
				}
				sel := &SelectionOp{region: &Region{Kind: RegionSelection, fn: f}}
				if err := wireRegion(f, sel.region, is.Region, fs); err != nil {
					return err
				}
				bb.Instrs = append(bb.Instrs, Instr{Kind: InstrSelection, Sel: sel})
			}
		}

		term, err := buildTerm(&bs.Term)
		if err != nil {
			return err
		}
		bb.Term = term
	}
	return nil
}

func buildTerm(ts *TermSpec) (Terminator, error) {
	switch ts.Kind {
	case TermNone:
		return Terminator{}, nil
	case TermBranch:
		return NewBranch(ts.Target), nil
	case TermBranchCond:
		return NewBranchCond(ts.Cond, ts.Then, ts.Else, ts.Weights)
	case TermReturn:
		return NewReturn(), nil
	case TermReturnValue:
		return NewReturnValue(ts.Value), nil
	case TermMerge:
		return NewMerge(), nil
	default:
		return Terminator{}, newError(ErrMalformedBlock, NoBlockID, "unknown terminator kind %d", ts.Kind)
	}
}

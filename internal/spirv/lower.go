package spirv

import (
	"spvir/internal/ir"
	"spvir/internal/symbols"
	"spvir/internal/types"
)

// Lowering walks verified regions in block order and emits one
// instruction group per block. The loop/selection merge
// pseudo-instructions exist only here: they are synthesized from the
// derived header/continue/merge roles immediately before the header
// block's terminator and have no IR representation.

// FuncResult is the lowered form of one function.
type FuncResult struct {
	FuncID       uint32
	Instructions []Instruction
	// Labels maps IR block IDs to the OpLabel result IDs they were
	// assigned, in support of diagnostics and round-trip checks.
	Labels map[ir.BlockID]uint32
}

type funcLowerer struct {
	b       *ModuleBuilder
	typesIn *types.Interner
	fn      *ir.Func

	funcIDs map[string]uint32
	labels  map[ir.BlockID]uint32
	values  map[ir.ValueID]uint32
	voidID  uint32

	out []Instruction
}

// LowerModule verifies nothing itself: every function must already
// carry a verification stamp, otherwise lowering fails with
// UnverifiedRegion. Callees must resolve to functions in the module,
// otherwise UnresolvedSymbol.
func LowerModule(m *ir.Module, tbl *symbols.Table, typesIn *types.Interner, opts Options) ([]byte, error) {
	b := NewModuleBuilder(opts.Version)
	for _, c := range opts.Capabilities {
		b.AddCapability(c)
	}
	b.AddMemoryModel(AddressingLogical, MemoryModelGLSL450)

	// Function IDs are allocated before any body is lowered so that
	// forward-referencing calls resolve regardless of emission order.
	funcIDs := make(map[string]uint32, len(m.Funcs))
	for _, f := range m.Funcs {
		funcIDs[f.Name] = b.AllocID()
	}

	for _, f := range m.Funcs {
		res, err := lowerFunc(b, typesIn, f, funcIDs)
		if err != nil {
			return nil, err
		}
		b.AppendFunction(res.Instructions)
	}
	return b.Build(), nil
}

// LowerFunc lowers a single verified function into its instruction
// stream. Exposed for the driver and for round-trip tests.
func LowerFunc(b *ModuleBuilder, typesIn *types.Interner, f *ir.Func, funcIDs map[string]uint32) (*FuncResult, error) {
	return lowerFunc(b, typesIn, f, funcIDs)
}

func lowerFunc(b *ModuleBuilder, typesIn *types.Interner, f *ir.Func, funcIDs map[string]uint32) (*FuncResult, error) {
	if !f.Verified() {
		return nil, &ir.Error{Kind: ir.ErrUnverifiedRegion, Block: ir.NoBlockID,
			Detail: "function " + f.Name + " has not passed verification since its last mutation"}
	}

	l := &funcLowerer{
		b:       b,
		typesIn: typesIn,
		fn:      f,
		funcIDs: funcIDs,
		labels:  make(map[ir.BlockID]uint32, f.NumBlocks()),
		values:  make(map[ir.ValueID]uint32, 16),
	}
	l.voidID = b.TypeID(typesIn, types.NoTypeID)

	funcID, ok := funcIDs[f.Name]
	if !ok {
		funcID = b.AllocID()
		funcIDs[f.Name] = funcID
	}

	// Every block in the arena gets its label upfront: merge and
	// continue operands may reference blocks emitted later.
	for i := 0; i < f.NumBlocks(); i++ {
		id := ir.BlockID(i)
		l.labels[id] = b.AllocID()
	}

	fnType := b.FunctionTypeID(typesIn, f.Params, f.Result)
	resultType := b.TypeID(typesIn, f.Result)

	header := NewInstructionBuilder()
	header.AddWord(resultType)
	header.AddWord(funcID)
	header.AddWord(0) // function control: none
	header.AddWord(fnType)
	l.emit(header.Build(OpFunction))

	for _, p := range f.Params {
		param := NewInstructionBuilder()
		param.AddWord(b.TypeID(typesIn, p))
		param.AddWord(b.AllocID())
		l.emit(param.Build(OpFunctionParameter))
	}

	if err := l.lowerRegion(f.Body(), 0, nil); err != nil {
		return nil, err
	}

	l.emit(NewInstructionBuilder().Build(OpFunctionEnd))

	return &FuncResult{FuncID: funcID, Instructions: l.out, Labels: l.labels}, nil
}

func (l *funcLowerer) emit(ins Instruction) {
	l.out = append(l.out, ins)
}

// mergeSynth describes the pseudo-instruction to place before one
// block's terminator (the region header).
type mergeSynth struct {
	header ir.BlockID
	build  func() Instruction
}

// lowerRegion emits the region's blocks in structural order. cont is
// the label control reaches when the region exits through its merge
// block; it is zero for the function body, which has no merge.
func (l *funcLowerer) lowerRegion(r *ir.Region, cont uint32, synth *mergeSynth) error {
	for _, id := range r.Blocks() {
		bb := l.fn.Block(id)

		label := NewInstructionBuilder()
		label.AddWord(l.labels[id])
		l.emit(label.Build(OpLabel))

		termConsumed := false
		for i := range bb.Instrs {
			ins := &bb.Instrs[i]
			switch ins.Kind {
			case ir.InstrOp:
				l.lowerOp(&ins.Op)
			case ir.InstrCall:
				if err := l.lowerCall(id, &ins.Call); err != nil {
					return err
				}
			case ir.InstrLoop:
				if err := l.lowerLoop(bb, ins.Loop); err != nil {
					return err
				}
				termConsumed = true
			case ir.InstrSelection:
				if err := l.lowerSelection(bb, ins.Sel); err != nil {
					return err
				}
				termConsumed = true
			}
		}

		if termConsumed {
			continue
		}
		if synth != nil && id == synth.header {
			l.emit(synth.build())
		}
		l.lowerTerminator(bb.Term, cont)
	}
	return nil
}

// lowerLoop inlines the loop region. The owning block has already
// emitted its label and leading instructions; control enters the loop
// through a branch to the region entry, and the loop's merge block
// branches to the owning block's continuation target.
func (l *funcLowerer) lowerLoop(owner *ir.Block, loop *ir.LoopOp) error {
	entry := loop.Region().Entry()
	br := NewInstructionBuilder()
	br.AddWord(l.labels[entry])
	l.emit(br.Build(OpBranch))

	cont := l.labels[owner.Term.Branch.Target]
	mergeLabel := l.labels[loop.MergeBlock()]
	continueLabel := l.labels[loop.ContinueBlock()]
	synth := &mergeSynth{
		header: loop.HeaderBlock(),
		build: func() Instruction {
			b := NewInstructionBuilder()
			b.AddWord(mergeLabel)
			b.AddWord(continueLabel)
			b.AddWord(uint32(LoopControlNone))
			return b.Build(OpLoopMerge)
		},
	}
	return l.lowerRegion(loop.Region(), cont, synth)
}

func (l *funcLowerer) lowerSelection(owner *ir.Block, sel *ir.SelectionOp) error {
	entry := sel.Region().Entry()
	br := NewInstructionBuilder()
	br.AddWord(l.labels[entry])
	l.emit(br.Build(OpBranch))

	cont := l.labels[owner.Term.Branch.Target]
	mergeLabel := l.labels[sel.MergeBlock()]
	synth := &mergeSynth{
		header: sel.HeaderBlock(),
		build: func() Instruction {
			b := NewInstructionBuilder()
			b.AddWord(mergeLabel)
			b.AddWord(uint32(SelectionControlNone))
			return b.Build(OpSelectionMerge)
		},
	}
	return l.lowerRegion(sel.Region(), cont, synth)
}

func (l *funcLowerer) lowerOp(op *ir.OpInstr) {
	b := NewInstructionBuilder()
	if op.Result != ir.NoValueID {
		b.AddWord(l.b.TypeID(l.typesIn, op.Type))
		b.AddWord(l.valueID(op.Result))
	}
	for _, v := range op.Operands {
		b.AddWord(l.valueID(v))
	}
	l.emit(b.Build(OpCode(op.Opcode)))
}

func (l *funcLowerer) lowerCall(block ir.BlockID, call *ir.CallInstr) error {
	calleeID, ok := l.funcIDs[call.Callee]
	if !ok {
		return &ir.Error{Kind: ir.ErrUnresolvedSymbol, Block: block,
			Detail: "call to undeclared function " + call.Callee}
	}
	b := NewInstructionBuilder()
	if call.HasResult {
		b.AddWord(l.b.TypeID(l.typesIn, call.ResultType))
		b.AddWord(l.valueID(call.Result))
	} else {
		// OpFunctionCall always carries a result; void calls get a
		// fresh ID of void type.
		b.AddWord(l.voidID)
		b.AddWord(l.b.AllocID())
	}
	b.AddWord(calleeID)
	for _, arg := range call.Args {
		b.AddWord(l.valueID(arg))
	}
	l.emit(b.Build(OpFunctionCall))
	return nil
}

func (l *funcLowerer) lowerTerminator(t ir.Terminator, cont uint32) {
	switch t.Kind {
	case ir.TermBranch:
		b := NewInstructionBuilder()
		b.AddWord(l.labels[t.Branch.Target])
		l.emit(b.Build(OpBranch))
	case ir.TermBranchCond:
		b := NewInstructionBuilder()
		b.AddWord(l.valueID(t.BranchCond.Cond))
		b.AddWord(l.labels[t.BranchCond.Then])
		b.AddWord(l.labels[t.BranchCond.Else])
		if w := t.BranchCond.Weights; w != nil {
			// Optional literals; advisory only, never semantic.
			b.AddWord(w.True)
			b.AddWord(w.False)
		}
		l.emit(b.Build(OpBranchConditional))
	case ir.TermReturn:
		l.emit(NewInstructionBuilder().Build(OpReturn))
	case ir.TermReturnValue:
		b := NewInstructionBuilder()
		b.AddWord(l.valueID(t.ReturnValue.Value))
		l.emit(b.Build(OpReturnValue))
	case ir.TermMerge:
		// The region's designated exit: rejoin the enclosing block's
		// continuation.
		b := NewInstructionBuilder()
		b.AddWord(cont)
		l.emit(b.Build(OpBranch))
	}
}

// valueID maps an opaque IR value token to a SPIR-V result ID,
// allocating deterministically on first use in emission order.
func (l *funcLowerer) valueID(v ir.ValueID) uint32 {
	if id, ok := l.values[v]; ok {
		return id
	}
	id := l.b.AllocID()
	l.values[v] = id
	return id
}

package ir

import (
	"spvir/internal/symbols"
	"spvir/internal/types"
)

// InstrKind enumerates instruction kinds.
type InstrKind uint8

const (
	// InstrOp is an opaque target instruction: the core forwards its
	// opcode and operand words to the lowerer untouched.
	InstrOp InstrKind = iota
	// InstrCall is a function call resolved through the module symbol table.
	InstrCall
	// InstrLoop is a structured loop owning its own region.
	InstrLoop
	// InstrSelection is a structured selection owning its own region.
	InstrSelection
)

// Instr is a non-terminator operation inside a block.
type Instr struct {
	Kind InstrKind

	Op   OpInstr
	Call CallInstr
	Loop *LoopOp
	Sel  *SelectionOp
}

// OpInstr carries an opaque target instruction. Result is NoValueID for
// instructions that produce no value.
type OpInstr struct {
	Opcode   uint16
	Type     types.TypeID
	Result   ValueID
	Operands []ValueID
}

// CallInstr is a call by name. The callee may be declared after the call
// site; unresolved callees are checked at symbol-resolution time and
// again at lowering.
type CallInstr struct {
	Callee     string
	Sym        symbols.SymbolID
	Args       []ValueID
	HasResult  bool
	Result     ValueID
	ResultType types.TypeID
}

// NewOp builds an opaque instruction record.
func NewOp(opcode uint16, resultType types.TypeID, result ValueID, operands ...ValueID) Instr {
	return Instr{Kind: InstrOp, Op: OpInstr{
		Opcode:   opcode,
		Type:     resultType,
		Result:   result,
		Operands: operands,
	}}
}

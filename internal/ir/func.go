package ir

import (
	"spvir/internal/symbols"
	"spvir/internal/types"
)

// Func is one function: a block arena plus the body region.
// All mutation goes through a Builder, which bumps the generation
// counter; derived role queries and the verification stamp key off it.
type Func struct {
	ID     FuncID
	Name   string
	Sym    symbols.SymbolID
	Params []types.TypeID
	Result types.TypeID

	blocks []Block
	body   *Region

	gen         uint64
	verifiedGen uint64
}

// NewFunc builds a function with an empty body region.
func NewFunc(name string, params []types.TypeID, result types.TypeID) *Func {
	f := &Func{
		Name:   name,
		Sym:    symbols.NoSymbolID,
		Params: params,
		Result: result,
		gen:    1,
	}
	f.body = &Region{Kind: RegionFunction, fn: f}
	return f
}

// Body returns the function's body region.
func (f *Func) Body() *Region {
	return f.body
}

// Block returns the block with the given arena ID. The pointer is
// invalidated by the next builder mutation; do not hold it across calls.
func (f *Func) Block(id BlockID) *Block {
	if id < 0 || int(id) >= len(f.blocks) {
		return nil
	}
	return &f.blocks[id]
}

// NumBlocks returns the arena size.
func (f *Func) NumBlocks() int {
	return len(f.blocks)
}

// Preds returns the predecessors of id, derived by scanning every
// block's terminator successor list. No predecessor index is stored, so
// the answer can never go stale.
func (f *Func) Preds(id BlockID) []BlockID {
	var preds []BlockID
	for i := range f.blocks {
		if f.blocks[i].Term.HasSuccessor(id) {
			preds = append(preds, f.blocks[i].ID)
		}
	}
	return preds
}

// Generation returns the mutation counter.
func (f *Func) Generation() uint64 {
	return f.gen
}

// Verified reports whether the function has passed structural
// verification since its last mutation.
func (f *Func) Verified() bool {
	return f.verifiedGen == f.gen
}

// Module is a set of functions lowered together.
type Module struct {
	Funcs      []*Func
	FuncByName map[string]FuncID
}

// NewModule builds an empty module.
func NewModule() *Module {
	return &Module{FuncByName: make(map[string]FuncID, 8)}
}

// AddFunc appends f to the module and assigns its FuncID.
func (m *Module) AddFunc(f *Func) FuncID {
	id := FuncID(len(m.Funcs))
	f.ID = id
	m.Funcs = append(m.Funcs, f)
	m.FuncByName[f.Name] = id
	return id
}

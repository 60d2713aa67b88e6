package symbols

import (
	"spvir/internal/types"
)

// SymbolID identifies a function symbol inside the table arena.
type SymbolID uint32

const (
	// NoSymbolID marks the absence of a symbol reference.
	NoSymbolID SymbolID = 0
)

// IsValid reports whether the symbol ID refers to an allocated symbol.
func (id SymbolID) IsValid() bool { return id != NoSymbolID }

// Signature describes a callable function as seen by call sites.
type Signature struct {
	Params []types.TypeID
	Result types.TypeID
}

// Symbol is a named function declaration.
type Symbol struct {
	ID   SymbolID
	Name string
	Sig  Signature
}

package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Void  TypeID
	Bool  TypeID
	Int   TypeID
	Float TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
type Interner struct {
	types    []Type
	index    map[Type]TypeID
	builtins Builtins
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[Type]TypeID, 16),
	}
	in.builtins.Void = in.Intern(Type{Kind: KindVoid, Elem: NoTypeID})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool, Elem: NoTypeID})
	in.builtins.Int = in.Intern(MakeInt(32))
	in.builtins.Float = in.Intern(MakeFloat(32))
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[t]; ok {
		return id
	}
	lenTypes, err := safecast.Conv[int32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// IsVoid reports whether id refers to the void type.
// NoTypeID counts as void: a missing result type means no value is produced.
func (in *Interner) IsVoid(id TypeID) bool {
	if id == NoTypeID {
		return true
	}
	tt, ok := in.Lookup(id)
	return ok && tt.Kind == KindVoid
}

// Len returns the number of interned descriptors.
func (in *Interner) Len() int {
	return len(in.types)
}

// Export returns the descriptors in arena order, for serialization.
func (in *Interner) Export() []Type {
	out := make([]Type, len(in.types))
	copy(out, in.types)
	return out
}

// Rebuild reconstructs an interner from exported descriptors.
// Sequential re-interning reproduces the original TypeIDs.
func Rebuild(ts []Type) *Interner {
	in := &Interner{index: make(map[Type]TypeID, len(ts))}
	for _, t := range ts {
		in.Intern(t)
	}
	in.builtins.Void = in.Intern(Type{Kind: KindVoid, Elem: NoTypeID})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool, Elem: NoTypeID})
	in.builtins.Int = in.Intern(MakeInt(32))
	in.builtins.Float = in.Intern(MakeFloat(32))
	return in
}

package types

// TypeID identifies an interned type descriptor.
type TypeID int32

const (
	// NoTypeID marks the absence of a type reference.
	NoTypeID TypeID = -1
)

// IsValid reports whether the ID refers to an interned type.
func (id TypeID) IsValid() bool { return id != NoTypeID }

// Kind enumerates the type shapes the control-flow core can see.
// Consumers treat types as opaque equality-comparable tokens; the
// kinds exist only so the lowerer can map them to target types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindBool
	KindInt
	KindFloat
	KindVector
)

// Type is a structural type descriptor.
// Width is the bit width for Int/Float and the component count for Vector.
type Type struct {
	Kind  Kind
	Elem  TypeID
	Width uint8
}

// MakeInt builds an integer descriptor of the given bit width.
func MakeInt(width uint8) Type {
	return Type{Kind: KindInt, Elem: NoTypeID, Width: width}
}

// MakeFloat builds a float descriptor of the given bit width.
func MakeFloat(width uint8) Type {
	return Type{Kind: KindFloat, Elem: NoTypeID, Width: width}
}

// MakeVector builds a vector descriptor over elem with the given component count.
func MakeVector(elem TypeID, count uint8) Type {
	return Type{Kind: KindVector, Elem: elem, Width: count}
}

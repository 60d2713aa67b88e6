package spirv

import (
	"encoding/binary"

	"spvir/internal/types"
)

// Options configures SPIR-V emission.
type Options struct {
	Version      Version
	Capabilities []Capability
}

// DefaultOptions targets SPIR-V 1.3 with the Shader capability.
func DefaultOptions() Options {
	return Options{
		Version:      Version1_3,
		Capabilities: []Capability{CapabilityShader},
	}
}

// ModuleBuilder assembles the ordered sections of a SPIR-V module and
// allocates result IDs. Type instructions are deduplicated by
// structural key.
type ModuleBuilder struct {
	version   Version
	generator uint32
	schema    uint32

	capabilities []Instruction
	memoryModel  *Instruction
	typesSec     []Instruction
	functions    []Instruction

	typeIDs map[typeKey]uint32
	nextID  uint32
}

type typeKey struct {
	kind  types.Kind
	elem  uint32
	width uint8
	// function type keys pack the signature id list into a string
	sig string
}

// NewModuleBuilder creates a builder targeting the given version.
func NewModuleBuilder(version Version) *ModuleBuilder {
	return &ModuleBuilder{
		version:   version,
		generator: GeneratorID,
		typeIDs:   make(map[typeKey]uint32, 16),
		nextID:    1,
	}
}

// AllocID allocates a fresh result ID.
func (b *ModuleBuilder) AllocID() uint32 {
	id := b.nextID
	b.nextID++
	return id
}

// Bound returns the current ID bound (max allocated ID + 1).
func (b *ModuleBuilder) Bound() uint32 {
	return b.nextID
}

// AddCapability adds OpCapability.
func (b *ModuleBuilder) AddCapability(cap Capability) {
	builder := NewInstructionBuilder()
	builder.AddWord(uint32(cap))
	b.capabilities = append(b.capabilities, builder.Build(OpCapability))
}

// AddMemoryModel sets OpMemoryModel (addressing model, memory model).
func (b *ModuleBuilder) AddMemoryModel(addressing, memory uint32) {
	builder := NewInstructionBuilder()
	builder.AddWord(addressing)
	builder.AddWord(memory)
	ins := builder.Build(OpMemoryModel)
	b.memoryModel = &ins
}

// TypeID interns the OpType* instruction for the given IR type and
// returns its result ID.
func (b *ModuleBuilder) TypeID(typesIn *types.Interner, id types.TypeID) uint32 {
	if typesIn.IsVoid(id) {
		return b.internType(typeKey{kind: types.KindVoid}, func(resultID uint32) Instruction {
			builder := NewInstructionBuilder()
			builder.AddWord(resultID)
			return builder.Build(OpTypeVoid)
		})
	}
	tt := typesIn.MustLookup(id)
	switch tt.Kind {
	case types.KindBool:
		return b.internType(typeKey{kind: types.KindBool}, func(resultID uint32) Instruction {
			builder := NewInstructionBuilder()
			builder.AddWord(resultID)
			return builder.Build(OpTypeBool)
		})
	case types.KindInt:
		return b.internType(typeKey{kind: types.KindInt, width: tt.Width}, func(resultID uint32) Instruction {
			builder := NewInstructionBuilder()
			builder.AddWord(resultID)
			builder.AddWord(uint32(tt.Width))
			builder.AddWord(1) // signed
			return builder.Build(OpTypeInt)
		})
	case types.KindFloat:
		return b.internType(typeKey{kind: types.KindFloat, width: tt.Width}, func(resultID uint32) Instruction {
			builder := NewInstructionBuilder()
			builder.AddWord(resultID)
			builder.AddWord(uint32(tt.Width))
			return builder.Build(OpTypeFloat)
		})
	case types.KindVector:
		elemID := b.TypeID(typesIn, tt.Elem)
		return b.internType(typeKey{kind: types.KindVector, elem: elemID, width: tt.Width}, func(resultID uint32) Instruction {
			builder := NewInstructionBuilder()
			builder.AddWord(resultID)
			builder.AddWord(elemID)
			builder.AddWord(uint32(tt.Width))
			return builder.Build(OpTypeVector)
		})
	default:
		// Unknown kinds collapse to void; the core treats types as opaque.
		return b.TypeID(typesIn, types.NoTypeID)
	}
}

// FunctionTypeID interns OpTypeFunction for the given signature.
func (b *ModuleBuilder) FunctionTypeID(typesIn *types.Interner, params []types.TypeID, result types.TypeID) uint32 {
	resultID := b.TypeID(typesIn, result)
	paramIDs := make([]uint32, len(params))
	for i, p := range params {
		paramIDs[i] = b.TypeID(typesIn, p)
	}
	sig := make([]byte, 0, 4*(len(paramIDs)+1))
	sig = binary.LittleEndian.AppendUint32(sig, resultID)
	for _, p := range paramIDs {
		sig = binary.LittleEndian.AppendUint32(sig, p)
	}
	return b.internType(typeKey{kind: types.KindInvalid, sig: string(sig)}, func(id uint32) Instruction {
		builder := NewInstructionBuilder()
		builder.AddWord(id)
		builder.AddWord(resultID)
		builder.AddWords(paramIDs...)
		return builder.Build(OpTypeFunction)
	})
}

func (b *ModuleBuilder) internType(key typeKey, build func(uint32) Instruction) uint32 {
	if id, ok := b.typeIDs[key]; ok {
		return id
	}
	id := b.AllocID()
	b.typeIDs[key] = id
	b.typesSec = append(b.typesSec, build(id))
	return id
}

// AppendFunction appends a function's instruction stream to the
// functions section.
func (b *ModuleBuilder) AppendFunction(instrs []Instruction) {
	b.functions = append(b.functions, instrs...)
}

// Build produces the final little-endian SPIR-V binary.
func (b *ModuleBuilder) Build() []byte {
	words := make([]uint32, 0, 64)
	words = append(words,
		MagicNumber,
		versionWord(b.version),
		b.generator,
		b.Bound(),
		b.schema,
	)
	words = append(words, EncodeAll(b.capabilities)...)
	if b.memoryModel != nil {
		words = append(words, b.memoryModel.Encode()...)
	}
	words = append(words, EncodeAll(b.typesSec)...)
	words = append(words, EncodeAll(b.functions)...)

	buf := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	return buf
}

func versionWord(v Version) uint32 {
	return uint32(v.Major)<<16 | uint32(v.Minor)<<8
}

// Addressing and memory model operands for OpMemoryModel.
const (
	AddressingLogical  uint32 = 0
	MemoryModelSimple  uint32 = 0
	MemoryModelGLSL450 uint32 = 1
)

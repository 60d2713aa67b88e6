// Package spirv lowers verified control-flow IR into a SPIR-V binary
// instruction stream. Only this package touches the binary format; the
// ir package decides shape and validity, the lowerer decides ordering
// and merge pseudo-instruction placement.
package spirv

// OpCode is a SPIR-V opcode.
type OpCode uint16

const (
	OpNop               OpCode = 0
	OpName              OpCode = 5
	OpMemoryModel       OpCode = 14
	OpEntryPoint        OpCode = 15
	OpCapability        OpCode = 17
	OpTypeVoid          OpCode = 19
	OpTypeBool          OpCode = 20
	OpTypeInt           OpCode = 21
	OpTypeFloat         OpCode = 22
	OpTypeVector        OpCode = 23
	OpTypeFunction      OpCode = 33
	OpFunction          OpCode = 54
	OpFunctionParameter OpCode = 55
	OpFunctionEnd       OpCode = 56
	OpFunctionCall      OpCode = 57
	OpLoopMerge         OpCode = 246
	OpSelectionMerge    OpCode = 247
	OpLabel             OpCode = 248
	OpBranch            OpCode = 249
	OpBranchConditional OpCode = 250
	OpReturn            OpCode = 253
	OpReturnValue       OpCode = 254
	OpUnreachable       OpCode = 255
)

var opcodeNames = map[OpCode]string{
	OpNop:               "OpNop",
	OpName:              "OpName",
	OpMemoryModel:       "OpMemoryModel",
	OpEntryPoint:        "OpEntryPoint",
	OpCapability:        "OpCapability",
	OpTypeVoid:          "OpTypeVoid",
	OpTypeBool:          "OpTypeBool",
	OpTypeInt:           "OpTypeInt",
	OpTypeFloat:         "OpTypeFloat",
	OpTypeVector:        "OpTypeVector",
	OpTypeFunction:      "OpTypeFunction",
	OpFunction:          "OpFunction",
	OpFunctionParameter: "OpFunctionParameter",
	OpFunctionEnd:       "OpFunctionEnd",
	OpFunctionCall:      "OpFunctionCall",
	OpLoopMerge:         "OpLoopMerge",
	OpSelectionMerge:    "OpSelectionMerge",
	OpLabel:             "OpLabel",
	OpBranch:            "OpBranch",
	OpBranchConditional: "OpBranchConditional",
	OpReturn:            "OpReturn",
	OpReturnValue:       "OpReturnValue",
	OpUnreachable:       "OpUnreachable",
}

// Name returns the assembler name of the opcode.
func (op OpCode) Name() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "OpUnknown"
}

// Capability is a SPIR-V capability.
type Capability uint32

const (
	CapabilityMatrix Capability = 0
	CapabilityShader Capability = 1
	CapabilityKernel Capability = 6
)

// LoopControl carries OpLoopMerge control bits.
type LoopControl uint32

const (
	LoopControlNone   LoopControl = 0
	LoopControlUnroll LoopControl = 1
)

// SelectionControl carries OpSelectionMerge control bits.
type SelectionControl uint32

const (
	SelectionControlNone    SelectionControl = 0
	SelectionControlFlatten SelectionControl = 1
)

// Version is a SPIR-V version.
type Version struct {
	Major uint8
	Minor uint8
}

var (
	Version1_0 = Version{1, 0}
	Version1_3 = Version{1, 3}
	Version1_6 = Version{1, 6}
)

// MagicNumber identifies a SPIR-V binary.
const MagicNumber = 0x07230203

// GeneratorID is the tool ID embedded in the header (unregistered).
const GeneratorID = 0x00000000

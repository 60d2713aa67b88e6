// Package ir models structured control flow for a SPIR-V-like target:
// basic blocks with tagged-union terminators, regions owned by loop and
// selection operations, and a structural verifier that gates lowering.
package ir

type FuncID int32
type BlockID int32

// ValueID is an opaque SSA value token. Value definitions live outside
// this subsystem; the core only threads the IDs through to the lowerer.
type ValueID uint32

const (
	NoFuncID  FuncID  = -1
	NoBlockID BlockID = -1
	NoValueID ValueID = 0
)

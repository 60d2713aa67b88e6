package ir

import (
	"fortio.org/safecast"
)

type TermKind uint8

const (
	TermNone TermKind = iota
	TermBranch
	TermBranchCond
	TermReturn
	TermReturnValue
	TermMerge
)

// Terminator is the final operation of a block and fixes its outgoing
// edges. The kind selects which payload field is meaningful.
type Terminator struct {
	Kind TermKind

	Branch      BranchTerm
	BranchCond  BranchCondTerm
	ReturnValue ReturnValueTerm
}

type BranchTerm struct {
	Target BlockID
}

// BranchWeights are advisory probability hints for a conditional branch.
// They never change semantics; the lowerer forwards them as auxiliary
// operands.
type BranchWeights struct {
	True  uint32
	False uint32
}

type BranchCondTerm struct {
	Cond    ValueID
	Then    BlockID
	Else    BlockID
	Weights *BranchWeights
}

type ReturnValueTerm struct {
	Value ValueID
}

// NewBranch builds an unconditional branch terminator.
func NewBranch(target BlockID) Terminator {
	return Terminator{Kind: TermBranch, Branch: BranchTerm{Target: target}}
}

// NewBranchCond builds a conditional branch terminator. Weights are
// optional; when present, at least one must be non-zero and their sum
// must fit in an unsigned 32-bit range.
func NewBranchCond(cond ValueID, then, els BlockID, weights *BranchWeights) (Terminator, error) {
	if weights != nil {
		if weights.True == 0 && weights.False == 0 {
			return Terminator{}, newError(ErrInvalidWeights, NoBlockID, "both branch weights are zero")
		}
		if _, err := safecast.Conv[uint32](uint64(weights.True) + uint64(weights.False)); err != nil {
			return Terminator{}, newError(ErrInvalidWeights, NoBlockID,
				"branch weight sum %d+%d overflows uint32", weights.True, weights.False)
		}
		w := *weights
		weights = &w
	}
	return Terminator{Kind: TermBranchCond, BranchCond: BranchCondTerm{
		Cond:    cond,
		Then:    then,
		Else:    els,
		Weights: weights,
	}}, nil
}

// NewReturn builds a void return terminator.
func NewReturn() Terminator {
	return Terminator{Kind: TermReturn}
}

// NewReturnValue builds a value-carrying return terminator.
func NewReturnValue(v ValueID) Terminator {
	return Terminator{Kind: TermReturnValue, ReturnValue: ReturnValueTerm{Value: v}}
}

// NewMerge builds the synthetic region-exit terminator. The builder
// rejects it outside loop/selection regions.
func NewMerge() Terminator {
	return Terminator{Kind: TermMerge}
}

// Successors returns the outgoing edges of the terminator in a fixed
// order (then before else for conditional branches).
func (t Terminator) Successors() []BlockID {
	switch t.Kind {
	case TermBranch:
		return []BlockID{t.Branch.Target}
	case TermBranchCond:
		return []BlockID{t.BranchCond.Then, t.BranchCond.Else}
	default:
		return nil
	}
}

// HasSuccessor reports whether id is among the terminator's targets.
func (t Terminator) HasSuccessor(id BlockID) bool {
	for _, s := range t.Successors() {
		if s == id {
			return true
		}
	}
	return false
}

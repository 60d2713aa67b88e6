package ir

import (
	"errors"
	"fmt"
)

// ErrorKind classifies structural failures across building, verification
// and lowering.
type ErrorKind uint8

const (
	// ErrMalformedBlock marks builder misuse: appending past a terminator,
	// sealing twice, or a successor that does not exist.
	ErrMalformedBlock ErrorKind = iota
	// ErrInvalidWeights marks a conditional branch whose weight pair is
	// all-zero or overflows an unsigned 32-bit sum.
	ErrInvalidWeights
	// ErrSignatureMismatch marks a call whose result presence disagrees
	// with the callee's declared return type.
	ErrSignatureMismatch
	// ErrIllegalContext marks a Merge terminator outside a loop or
	// selection region.
	ErrIllegalContext
	// ErrBadEntry marks a loop/selection region whose entry block is
	// missing, too small, or does not branch to the header.
	ErrBadEntry
	// ErrBadMerge marks a region whose last block is not a bare Merge.
	ErrBadMerge
	// ErrMissingContinue marks a loop region with no back-edge to the header.
	ErrMissingContinue
	// ErrAmbiguousContinue marks a loop region with more than one back-edge.
	ErrAmbiguousContinue
	// ErrBrokenNesting marks an edge escaping a nested region past its
	// merge block.
	ErrBrokenNesting
	// ErrUnverifiedRegion marks lowering of a region that has not passed
	// verification since its last mutation.
	ErrUnverifiedRegion
	// ErrUnresolvedSymbol marks a call whose callee is still undeclared at
	// lowering time.
	ErrUnresolvedSymbol
)

var errorKindNames = [...]string{
	ErrMalformedBlock:    "malformed block",
	ErrInvalidWeights:    "invalid branch weights",
	ErrSignatureMismatch: "signature mismatch",
	ErrIllegalContext:    "illegal context",
	ErrBadEntry:          "bad entry",
	ErrBadMerge:          "bad merge",
	ErrMissingContinue:   "missing continue",
	ErrAmbiguousContinue: "ambiguous continue",
	ErrBrokenNesting:     "broken nesting",
	ErrUnverifiedRegion:  "unverified region",
	ErrUnresolvedSymbol:  "unresolved symbol",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// Error is a structural failure carrying the offending block identity.
// Block is NoBlockID when the failure is not tied to a single block.
type Error struct {
	Kind   ErrorKind
	Block  BlockID
	Detail string
}

func (e *Error) Error() string {
	if e.Block == NoBlockID {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("bb%d: %s: %s", e.Block, e.Kind, e.Detail)
}

// Is matches another *Error on kind, and on block when the target
// names one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Block == NoBlockID || t.Block == e.Block)
}

func newError(kind ErrorKind, block BlockID, format string, args ...any) *Error {
	return &Error{Kind: kind, Block: block, Detail: fmt.Sprintf(format, args...)}
}

// KindOf extracts the structural error kind from err.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

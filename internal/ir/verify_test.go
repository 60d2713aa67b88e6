package ir_test

import (
	"errors"
	"testing"

	"spvir/internal/ir"
	"spvir/internal/types"
)

// Scenario: region = [entry->header; header->body,merge; body->header; merge].
func TestVerify_WellFormedLoop(t *testing.T) {
	fix := buildLoop(t, true)
	if err := ir.VerifyFunc(fix.fn); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !fix.fn.Verified() {
		t.Error("function not stamped verified")
	}
	if got := fix.loop.ContinueBlock(); got != fix.body {
		t.Errorf("continue = bb%d, want bb%d (body)", got, fix.body)
	}
}

func TestVerify_Idempotent(t *testing.T) {
	valid := buildLoop(t, true)
	first := ir.VerifyFunc(valid.fn)
	second := ir.VerifyFunc(valid.fn)
	if (first == nil) != (second == nil) {
		t.Fatalf("verification not idempotent: %v then %v", first, second)
	}

	broken := buildLoop(t, false)
	if err := broken.b.Seal(broken.body, ir.NewReturn()); err != nil {
		t.Fatalf("seal body: %v", err)
	}
	e1 := ir.VerifyFunc(broken.fn)
	e2 := ir.VerifyFunc(broken.fn)
	if e1 == nil || e2 == nil || !errors.Is(e1, e2.(*ir.Error)) {
		t.Fatalf("failing verification not stable: %v then %v", e1, e2)
	}
}

func TestVerify_TooFewBlocks(t *testing.T) {
	fn := ir.NewFunc("f", nil, types.NoTypeID)
	b := ir.NewBuilder(fn)
	owner := b.NewBlock(fn.Body())
	exit := b.NewBlock(fn.Body())
	loop, err := b.NewLoop(owner)
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}
	if err := b.Seal(owner, ir.NewBranch(exit)); err != nil {
		t.Fatalf("seal owner: %v", err)
	}
	if err := b.Seal(exit, ir.NewReturn()); err != nil {
		t.Fatalf("seal exit: %v", err)
	}
	// Just the skeleton: entry, header, merge - three blocks.
	if err := loop.AddEntryAndMergeBlock(b); err != nil {
		t.Fatalf("AddEntryAndMergeBlock: %v", err)
	}
	header := loop.HeaderBlock()
	if err := b.Seal(header, ir.NewBranch(header)); err != nil {
		t.Fatalf("seal header: %v", err)
	}
	wantKind(t, loop.Verify(), ir.ErrBadEntry)
}

func TestVerify_AmbiguousContinue(t *testing.T) {
	fix := buildLoop(t, true)
	second := fix.loop.NewBodyBlock(fix.b)
	if err := fix.b.Seal(second, ir.NewBranch(fix.header)); err != nil {
		t.Fatalf("seal second body: %v", err)
	}
	wantKind(t, ir.VerifyFunc(fix.fn), ir.ErrAmbiguousContinue)
	if got := fix.loop.ContinueBlock(); got != ir.NoBlockID {
		t.Errorf("continue = bb%d, want NoBlockID for ambiguous shape", got)
	}
}

func TestVerify_MissingContinue(t *testing.T) {
	fix := buildLoop(t, false)
	// Body leaves through the merge instead of looping back.
	if err := fix.b.Seal(fix.body, ir.NewBranch(fix.merge)); err != nil {
		t.Fatalf("seal body: %v", err)
	}
	wantKind(t, ir.VerifyFunc(fix.fn), ir.ErrMissingContinue)
}

func TestVerify_BadMerge(t *testing.T) {
	fn := ir.NewFunc("f", nil, types.NoTypeID)
	b := ir.NewBuilder(fn)
	owner := b.NewBlock(fn.Body())
	exit := b.NewBlock(fn.Body())
	loop, err := b.NewLoop(owner)
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}
	if err := b.Seal(owner, ir.NewBranch(exit)); err != nil {
		t.Fatalf("seal owner: %v", err)
	}
	if err := b.Seal(exit, ir.NewReturn()); err != nil {
		t.Fatalf("seal exit: %v", err)
	}

	// Hand-rolled region whose last block is not a bare Merge.
	r := loop.Region()
	entry := b.NewBlock(r)
	header := b.NewBlock(r)
	body := b.NewBlock(r)
	last := b.NewBlock(r)
	if err := b.Seal(entry, ir.NewBranch(header)); err != nil {
		t.Fatalf("seal entry: %v", err)
	}
	cond, err := ir.NewBranchCond(1, body, last, nil)
	if err != nil {
		t.Fatalf("NewBranchCond: %v", err)
	}
	if err := b.Seal(header, cond); err != nil {
		t.Fatalf("seal header: %v", err)
	}
	if err := b.Seal(body, ir.NewBranch(header)); err != nil {
		t.Fatalf("seal body: %v", err)
	}
	if err := b.Seal(last, ir.NewReturn()); err != nil {
		t.Fatalf("seal last: %v", err)
	}
	wantKind(t, ir.VerifyFunc(fn), ir.ErrBadMerge)
}

func TestVerify_BrokenNesting(t *testing.T) {
	fix := buildLoop(t, true)
	// A region block branching straight to the function's exit block,
	// bypassing the merge boundary.
	escape := fix.loop.NewBodyBlock(fix.b)
	if err := fix.b.Seal(escape, ir.NewBranch(fix.exit)); err != nil {
		t.Fatalf("seal escape: %v", err)
	}
	wantKind(t, ir.VerifyFunc(fix.fn), ir.ErrBrokenNesting)
}

func TestVerify_NestedLoopEscape(t *testing.T) {
	fix := buildLoop(t, false)

	// Inner loop inside the outer body block.
	inner, err := fix.b.NewLoop(fix.body)
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}
	if err := fix.b.Seal(fix.body, ir.NewBranch(fix.header)); err != nil {
		t.Fatalf("seal body: %v", err)
	}
	if err := inner.AddEntryAndMergeBlock(fix.b); err != nil {
		t.Fatalf("inner skeleton: %v", err)
	}
	innerBody := inner.NewBodyBlock(fix.b)
	innerHeader := inner.HeaderBlock()
	cond, err := ir.NewBranchCond(2, innerBody, inner.MergeBlock(), nil)
	if err != nil {
		t.Fatalf("NewBranchCond: %v", err)
	}
	if err := fix.b.Seal(innerHeader, cond); err != nil {
		t.Fatalf("seal inner header: %v", err)
	}
	if err := fix.b.Seal(innerBody, ir.NewBranch(innerHeader)); err != nil {
		t.Fatalf("seal inner body: %v", err)
	}
	// A second inner block jumps to the outer loop's merge directly,
	// bypassing the inner merge boundary.
	innerEscape := inner.NewBodyBlock(fix.b)
	if err := fix.b.Seal(innerEscape, ir.NewBranch(fix.merge)); err != nil {
		t.Fatalf("seal inner escape: %v", err)
	}

	wantKind(t, ir.VerifyFunc(fix.fn), ir.ErrBrokenNesting)
}

func TestVerify_NestedLoopWellFormed(t *testing.T) {
	fix := buildLoop(t, false)

	inner, err := fix.b.NewLoop(fix.body)
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}
	if err := fix.b.Seal(fix.body, ir.NewBranch(fix.header)); err != nil {
		t.Fatalf("seal body: %v", err)
	}
	if err := inner.AddEntryAndMergeBlock(fix.b); err != nil {
		t.Fatalf("inner skeleton: %v", err)
	}
	innerBody := inner.NewBodyBlock(fix.b)
	innerHeader := inner.HeaderBlock()
	cond, err := ir.NewBranchCond(2, innerBody, inner.MergeBlock(), nil)
	if err != nil {
		t.Fatalf("NewBranchCond: %v", err)
	}
	if err := fix.b.Seal(innerHeader, cond); err != nil {
		t.Fatalf("seal inner header: %v", err)
	}
	if err := fix.b.Seal(innerBody, ir.NewBranch(innerHeader)); err != nil {
		t.Fatalf("seal inner body: %v", err)
	}

	if err := ir.VerifyFunc(fix.fn); err != nil {
		t.Fatalf("verify nested: %v", err)
	}
	if got := inner.ContinueBlock(); got != innerBody {
		t.Errorf("inner continue = bb%d, want bb%d", got, innerBody)
	}
}

// A loop nested in the header block would claim the instruction slot
// the lowerer reserves for the merge pseudo-instruction.
func TestVerify_StructuredOpInHeader(t *testing.T) {
	fn := ir.NewFunc("f", nil, types.NoTypeID)
	b := ir.NewBuilder(fn)
	owner := b.NewBlock(fn.Body())
	exit := b.NewBlock(fn.Body())
	outer, err := b.NewLoop(owner)
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}
	if err := b.Seal(owner, ir.NewBranch(exit)); err != nil {
		t.Fatalf("seal owner: %v", err)
	}
	if err := b.Seal(exit, ir.NewReturn()); err != nil {
		t.Fatalf("seal exit: %v", err)
	}
	if err := outer.AddEntryAndMergeBlock(b); err != nil {
		t.Fatalf("outer skeleton: %v", err)
	}
	body := outer.NewBodyBlock(b)
	header := outer.HeaderBlock()

	inner, err := b.NewLoop(header)
	if err != nil {
		t.Fatalf("inner NewLoop: %v", err)
	}
	if err := inner.AddEntryAndMergeBlock(b); err != nil {
		t.Fatalf("inner skeleton: %v", err)
	}
	innerBody := inner.NewBodyBlock(b)
	innerCond, err := ir.NewBranchCond(2, innerBody, inner.MergeBlock(), nil)
	if err != nil {
		t.Fatalf("NewBranchCond: %v", err)
	}
	if err := b.Seal(inner.HeaderBlock(), innerCond); err != nil {
		t.Fatalf("seal inner header: %v", err)
	}
	if err := b.Seal(innerBody, ir.NewBranch(inner.HeaderBlock())); err != nil {
		t.Fatalf("seal inner body: %v", err)
	}

	// Outer header hosts the inner loop and continues into the body; the
	// body carries the sole back-edge.
	if err := b.Seal(header, ir.NewBranch(body)); err != nil {
		t.Fatalf("seal header: %v", err)
	}
	cond, err := ir.NewBranchCond(1, header, outer.MergeBlock(), nil)
	if err != nil {
		t.Fatalf("NewBranchCond: %v", err)
	}
	if err := b.Seal(body, cond); err != nil {
		t.Fatalf("seal body: %v", err)
	}

	wantKind(t, ir.VerifyFunc(fn), ir.ErrMalformedBlock)
}

func TestVerify_UnterminatedBlock(t *testing.T) {
	fn := ir.NewFunc("f", nil, types.NoTypeID)
	b := ir.NewBuilder(fn)
	b.NewBlock(fn.Body())
	wantKind(t, ir.VerifyFunc(fn), ir.ErrMalformedBlock)
}

func TestVerify_Selection(t *testing.T) {
	fn := ir.NewFunc("f", nil, types.NoTypeID)
	b := ir.NewBuilder(fn)
	owner := b.NewBlock(fn.Body())
	exit := b.NewBlock(fn.Body())
	sel, err := b.NewSelection(owner)
	if err != nil {
		t.Fatalf("NewSelection: %v", err)
	}
	if err := b.Seal(owner, ir.NewBranch(exit)); err != nil {
		t.Fatalf("seal owner: %v", err)
	}
	if err := b.Seal(exit, ir.NewReturn()); err != nil {
		t.Fatalf("seal exit: %v", err)
	}

	if err := sel.AddEntryAndMergeBlock(b); err != nil {
		t.Fatalf("skeleton: %v", err)
	}
	thenBlock := sel.NewBodyBlock(b)
	elseBlock := sel.NewBodyBlock(b)
	header := sel.HeaderBlock()
	merge := sel.MergeBlock()
	cond, err := ir.NewBranchCond(1, thenBlock, elseBlock, nil)
	if err != nil {
		t.Fatalf("NewBranchCond: %v", err)
	}
	if err := b.Seal(header, cond); err != nil {
		t.Fatalf("seal header: %v", err)
	}
	if err := b.Seal(thenBlock, ir.NewBranch(merge)); err != nil {
		t.Fatalf("seal then: %v", err)
	}
	if err := b.Seal(elseBlock, ir.NewBranch(merge)); err != nil {
		t.Fatalf("seal else: %v", err)
	}

	if err := ir.VerifyFunc(fn); err != nil {
		t.Fatalf("verify selection: %v", err)
	}
}

func TestVerify_StructuredOpNotLast(t *testing.T) {
	fn := ir.NewFunc("f", nil, types.NoTypeID)
	b := ir.NewBuilder(fn)
	owner := b.NewBlock(fn.Body())
	exit := b.NewBlock(fn.Body())
	loop, err := b.NewLoop(owner)
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}
	if err := b.Append(owner, ir.NewOp(1, types.NoTypeID, ir.NoValueID)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := b.Seal(owner, ir.NewBranch(exit)); err != nil {
		t.Fatalf("seal owner: %v", err)
	}
	if err := b.Seal(exit, ir.NewReturn()); err != nil {
		t.Fatalf("seal exit: %v", err)
	}
	if err := loop.AddEntryAndMergeBlock(b); err != nil {
		t.Fatalf("skeleton: %v", err)
	}
	body := loop.NewBodyBlock(b)
	header := loop.HeaderBlock()
	cond, err := ir.NewBranchCond(1, body, loop.MergeBlock(), nil)
	if err != nil {
		t.Fatalf("NewBranchCond: %v", err)
	}
	if err := b.Seal(header, cond); err != nil {
		t.Fatalf("seal header: %v", err)
	}
	if err := b.Seal(body, ir.NewBranch(header)); err != nil {
		t.Fatalf("seal body: %v", err)
	}
	wantKind(t, ir.VerifyFunc(fn), ir.ErrMalformedBlock)
}

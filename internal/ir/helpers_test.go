package ir_test

import (
	"testing"

	"spvir/internal/ir"
	"spvir/internal/testkit"
	"spvir/internal/types"
)

// loopFixture is the four-block loop of the simplest well-formed shape:
// region = [entry -> header; header -> body, merge; body -> header; merge].
type loopFixture struct {
	fn   *ir.Func
	b    *ir.Builder
	loop *ir.LoopOp

	owner  ir.BlockID // function-body block holding the loop
	exit   ir.BlockID // continuation after the loop
	body   ir.BlockID
	header ir.BlockID
	merge  ir.BlockID
}

// buildLoop constructs the fixture. When sealBody is false the body
// block is left unterminated for the caller to shape.
func buildLoop(t *testing.T, sealBody bool) *loopFixture {
	t.Helper()

	fn := ir.NewFunc("loop_fn", nil, types.NoTypeID)
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

	if err := loop.AddEntryAndMergeBlock(b); err != nil {
		t.Fatalf("AddEntryAndMergeBlock: %v", err)
	}
	body := loop.NewBodyBlock(b)
	header := loop.HeaderBlock()
	merge := loop.MergeBlock()

	cond, err := ir.NewBranchCond(1, body, merge, nil)
	if err != nil {
		t.Fatalf("NewBranchCond: %v", err)
	}
	if err := b.Seal(header, cond); err != nil {
		t.Fatalf("seal header: %v", err)
	}
	if sealBody {
		if err := b.Seal(body, ir.NewBranch(header)); err != nil {
			t.Fatalf("seal body: %v", err)
		}
	}

	if err := testkit.CheckRegionInvariants(fn); err != nil {
		t.Fatalf("region invariants: %v", err)
	}

	return &loopFixture{
		fn:     fn,
		b:      b,
		loop:   loop,
		owner:  owner,
		exit:   exit,
		body:   body,
		header: header,
		merge:  merge,
	}
}

func wantKind(t *testing.T, err error, kind ir.ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil", kind)
	}
	got, ok := ir.KindOf(err)
	if !ok {
		t.Fatalf("expected structural error %v, got %v", kind, err)
	}
	if got != kind {
		t.Fatalf("expected %v, got %v (%v)", kind, got, err)
	}
}

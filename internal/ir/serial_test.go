package ir_test

import (
	"strings"
	"testing"

	"spvir/internal/ir"
)

func TestSnapshotBuildFunc_RoundTrip(t *testing.T) {
	fix := buildLoop(t, true)
	if err := ir.VerifyFunc(fix.fn); err != nil {
		t.Fatalf("verify original: %v", err)
	}

	spec := ir.Snapshot(fix.fn)
	rebuilt, err := ir.BuildFunc(spec)
	if err != nil {
		t.Fatalf("BuildFunc: %v", err)
	}

	if err := ir.VerifyFunc(rebuilt); err != nil {
		t.Fatalf("verify rebuilt: %v", err)
	}

	var a, b strings.Builder
	ir.DumpFunc(&a, fix.fn)
	ir.DumpFunc(&b, rebuilt)
	if a.String() != b.String() {
		t.Errorf("dump mismatch after round trip:\n--- original\n%s--- rebuilt\n%s", a.String(), b.String())
	}
}

func TestBuildFunc_RejectsDoubleOwnership(t *testing.T) {
	fix := buildLoop(t, true)
	spec := ir.Snapshot(fix.fn)
	// Claim the loop entry block for the function body too.
	loopRegion := spec.Blocks[fix.owner].Instrs[0].Region
	spec.Body.Blocks = append(spec.Body.Blocks, loopRegion.Blocks[0])

	_, err := ir.BuildFunc(spec)
	wantKind(t, err, ir.ErrMalformedBlock)
}

func TestBuildFunc_RejectsOrphanBlocks(t *testing.T) {
	fix := buildLoop(t, true)
	spec := ir.Snapshot(fix.fn)
	// Drop the exit block from the body region; it then belongs nowhere.
	blocks := spec.Body.Blocks[:0]
	for _, id := range spec.Body.Blocks {
		if id != fix.exit {
			blocks = append(blocks, id)
		}
	}
	spec.Body.Blocks = blocks

	_, err := ir.BuildFunc(spec)
	wantKind(t, err, ir.ErrMalformedBlock)
}

func TestBuildFunc_RevalidatesWeights(t *testing.T) {
	fix := buildLoop(t, true)
	spec := ir.Snapshot(fix.fn)
	spec.Blocks[fix.header].Term.Weights = &ir.BranchWeights{}

	_, err := ir.BuildFunc(spec)
	wantKind(t, err, ir.ErrInvalidWeights)
}

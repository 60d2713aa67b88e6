package ir_test

import (
	"errors"
	"math"
	"testing"

	"spvir/internal/ir"
)

func TestNewBranchCond_Weights(t *testing.T) {
	tests := []struct {
		name    string
		weights *ir.BranchWeights
		wantErr bool
	}{
		{name: "no_weights", weights: nil},
		{name: "true_only", weights: &ir.BranchWeights{True: 1}},
		{name: "false_only", weights: &ir.BranchWeights{False: 1}},
		{name: "both", weights: &ir.BranchWeights{True: 3, False: 1}},
		{name: "max_sum", weights: &ir.BranchWeights{True: math.MaxUint32 - 1, False: 1}},
		{name: "both_zero", weights: &ir.BranchWeights{}, wantErr: true},
		{name: "overflow", weights: &ir.BranchWeights{True: math.MaxUint32, False: 1}, wantErr: true},
		{name: "overflow_both_max", weights: &ir.BranchWeights{True: math.MaxUint32, False: math.MaxUint32}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, err := ir.NewBranchCond(1, 0, 1, tt.weights)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected InvalidWeights, got nil")
				}
				kind, ok := ir.KindOf(err)
				if !ok || kind != ir.ErrInvalidWeights {
					t.Fatalf("expected InvalidWeights, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if term.Kind != ir.TermBranchCond {
				t.Fatalf("wrong terminator kind %d", term.Kind)
			}
		})
	}
}

func TestNewBranchCond_CopiesWeights(t *testing.T) {
	w := &ir.BranchWeights{True: 2, False: 8}
	term, err := ir.NewBranchCond(1, 0, 1, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w.True = 99
	if term.BranchCond.Weights.True != 2 {
		t.Error("terminator shares the caller's weights struct")
	}
}

func TestTerminator_Successors(t *testing.T) {
	branch := ir.NewBranch(3)
	if got := branch.Successors(); len(got) != 1 || got[0] != 3 {
		t.Errorf("branch successors = %v", got)
	}

	cond, err := ir.NewBranchCond(1, 4, 5, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cond.Successors(); len(got) != 2 || got[0] != 4 || got[1] != 5 {
		t.Errorf("cond successors = %v", got)
	}

	for _, term := range []ir.Terminator{ir.NewReturn(), ir.NewReturnValue(7), ir.NewMerge()} {
		if got := term.Successors(); len(got) != 0 {
			t.Errorf("terminator kind %d has successors %v", term.Kind, got)
		}
	}
}

func TestError_Is(t *testing.T) {
	err := error(&ir.Error{Kind: ir.ErrBadMerge, Block: 3, Detail: "x"})
	if !errors.Is(err, &ir.Error{Kind: ir.ErrBadMerge, Block: ir.NoBlockID}) {
		t.Error("kind-only match failed")
	}
	if errors.Is(err, &ir.Error{Kind: ir.ErrBadEntry, Block: ir.NoBlockID}) {
		t.Error("mismatched kind matched")
	}
	if !errors.Is(err, &ir.Error{Kind: ir.ErrBadMerge, Block: 3}) {
		t.Error("kind+block match failed")
	}
}

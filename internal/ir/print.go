package ir

import (
	"fmt"
	"io"
	"strings"
)

// DumpModule writes a human-readable representation of the module.
func DumpModule(w io.Writer, m *Module) {
	if w == nil || m == nil {
		return
	}
	fmt.Fprintf(w, "funcs=%d\n", len(m.Funcs))
	for _, f := range m.Funcs {
		DumpFunc(w, f)
	}
}

// DumpFunc writes a human-readable representation of one function.
func DumpFunc(w io.Writer, f *Func) {
	if w == nil || f == nil {
		return
	}
	fmt.Fprintf(w, "fn %s: params=%d blocks=%d\n", f.Name, len(f.Params), len(f.blocks))
	dumpRegion(w, f, f.body, 1)
}

func dumpRegion(w io.Writer, f *Func, r *Region, depth int) {
	pad := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s%s region:\n", pad, r.Kind)
	for _, id := range r.blocks {
		bb := f.Block(id)
		fmt.Fprintf(w, "%s  bb%d:\n", pad, id)
		for i := range bb.Instrs {
			ins := &bb.Instrs[i]
			switch ins.Kind {
			case InstrOp:
				fmt.Fprintf(w, "%s    op %d %s\n", pad, ins.Op.Opcode, valueList(ins.Op.Operands))
			case InstrCall:
				fmt.Fprintf(w, "%s    call %s %s\n", pad, ins.Call.Callee, valueList(ins.Call.Args))
			case InstrLoop:
				fmt.Fprintf(w, "%s    loop\n", pad)
				dumpRegion(w, f, ins.Loop.region, depth+2)
			case InstrSelection:
				fmt.Fprintf(w, "%s    selection\n", pad)
				dumpRegion(w, f, ins.Sel.region, depth+2)
			}
		}
		fmt.Fprintf(w, "%s    %s\n", pad, termString(bb.Term))
	}
}

func termString(t Terminator) string {
	switch t.Kind {
	case TermBranch:
		return fmt.Sprintf("br bb%d", t.Branch.Target)
	case TermBranchCond:
		s := fmt.Sprintf("br_if v%d bb%d bb%d", t.BranchCond.Cond, t.BranchCond.Then, t.BranchCond.Else)
		if t.BranchCond.Weights != nil {
			s += fmt.Sprintf(" [%d %d]", t.BranchCond.Weights.True, t.BranchCond.Weights.False)
		}
		return s
	case TermReturn:
		return "ret"
	case TermReturnValue:
		return fmt.Sprintf("ret v%d", t.ReturnValue.Value)
	case TermMerge:
		return "merge"
	default:
		return "<unterminated>"
	}
}

func valueList(vals []ValueID) string {
	if len(vals) == 0 {
		return ""
	}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("v%d", v)
	}
	return strings.Join(parts, " ")
}

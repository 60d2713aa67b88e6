// Package driver coordinates verification and lowering across a module
// set. Functions of one module are verified in parallel; independent
// modules lower in parallel. Lowering within one module is serial
// because SPIR-V result IDs are allocated module-wide.
package driver

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"spvir/internal/ir"
	"spvir/internal/spirv"
	"spvir/internal/symbols"
	"spvir/internal/types"
)

// Options configures a driver run.
type Options struct {
	// Jobs caps worker goroutines; <= 0 means GOMAXPROCS.
	Jobs  int
	SPIRV spirv.Options
}

func (o Options) jobs() int {
	if o.Jobs <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return o.Jobs
}

// VerifyResult reports one function's verification outcome.
type VerifyResult struct {
	Func string
	Err  error
}

// VerifyModule verifies every function concurrently and returns
// per-function outcomes in name order.
func VerifyModule(ctx context.Context, m *ir.Module, opts Options) ([]VerifyResult, error) {
	funcs := sortedFuncs(m)
	results := make([]VerifyResult, len(funcs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(opts.jobs(), max(len(funcs), 1)))
	for i, f := range funcs {
		i, f := i, f
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = VerifyResult{Func: f.Name, Err: ir.VerifyFunc(f)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// LowerModule verifies (in parallel) and lowers (serially) one module.
func LowerModule(ctx context.Context, m *ir.Module, tbl *symbols.Table, typesIn *types.Interner, opts Options) ([]byte, error) {
	if err := tbl.ResolveAll(typesIn); err != nil {
		return nil, err
	}
	results, err := VerifyModule(ctx, m, opts)
	if err != nil {
		return nil, err
	}
	for _, res := range results {
		if res.Err != nil {
			return nil, fmt.Errorf("function %s: %w", res.Func, res.Err)
		}
	}
	return spirv.LowerModule(m, tbl, typesIn, opts.SPIRV)
}

// LowerModules lowers independent modules concurrently. Results are
// ordered like the input.
func LowerModules(ctx context.Context, mods []*ir.Module, tbls []*symbols.Table, typesIn *types.Interner, opts Options) ([][]byte, error) {
	if len(mods) != len(tbls) {
		return nil, fmt.Errorf("modules/tables length mismatch: %d vs %d", len(mods), len(tbls))
	}
	out := make([][]byte, len(mods))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(opts.jobs(), max(len(mods), 1)))
	for i := range mods {
		i := i
		g.Go(func() error {
			bin, err := LowerModule(gctx, mods[i], tbls[i], typesIn, opts)
			if err != nil {
				return err
			}
			out[i] = bin
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// TableFor builds a symbol table declaring every function the module
// defines. Calls to names outside the module stay unresolved and are
// reported by the lowerer.
func TableFor(m *ir.Module) *symbols.Table {
	tbl := symbols.NewTable()
	for _, f := range sortedFuncs(m) {
		_, _ = tbl.Declare(f.Name, symbols.Signature{Params: f.Params, Result: f.Result})
	}
	return tbl
}

func sortedFuncs(m *ir.Module) []*ir.Func {
	funcs := make([]*ir.Func, 0, len(m.Funcs))
	for _, f := range m.Funcs {
		if f != nil {
			funcs = append(funcs, f)
		}
	}
	sort.Slice(funcs, func(i, j int) bool { return funcs[i].Name < funcs[j].Name })
	return funcs
}

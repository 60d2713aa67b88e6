package symbols

import (
	"errors"
	"fmt"
	"sort"

	"fortio.org/safecast"

	"spvir/internal/types"
)

// PendingRef records a call site whose callee was not declared at
// construction time. Resolution happens in a second phase, after all
// declarations have been seen.
type PendingRef struct {
	Callee    string
	HasResult bool
	// Where identifies the call site for diagnostics (function name and
	// block index as assigned by the IR builder).
	Where string
}

// Table maps function names to declared signatures and tracks forward
// references from call sites constructed before their callee.
type Table struct {
	syms    []Symbol // index 0 reserved, SymbolID 0 is invalid
	byName  map[string]SymbolID
	pending []PendingRef
}

// NewTable builds an empty symbol table.
func NewTable() *Table {
	return &Table{
		syms:   make([]Symbol, 1),
		byName: make(map[string]SymbolID, 16),
	}
}

// Declare registers a function signature under name.
// Redeclaring a name is an error.
func (t *Table) Declare(name string, sig Signature) (SymbolID, error) {
	if _, ok := t.byName[name]; ok {
		return NoSymbolID, fmt.Errorf("symbol %q already declared", name)
	}
	lenSyms, err := safecast.Conv[uint32](len(t.syms))
	if err != nil {
		return NoSymbolID, fmt.Errorf("symbol arena overflow: %w", err)
	}
	id := SymbolID(lenSyms)
	t.syms = append(t.syms, Symbol{ID: id, Name: name, Sig: sig})
	t.byName[name] = id
	return id, nil
}

// Lookup returns the declared signature for name.
func (t *Table) Lookup(name string) (Signature, bool) {
	id, ok := t.byName[name]
	if !ok {
		return Signature{}, false
	}
	return t.syms[id].Sig, true
}

// LookupID returns the symbol ID for name.
func (t *Table) LookupID(name string) (SymbolID, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// Symbol returns the symbol record for id.
func (t *Table) Symbol(id SymbolID) (Symbol, bool) {
	if !id.IsValid() || int(id) >= len(t.syms) {
		return Symbol{}, false
	}
	return t.syms[id], true
}

// Names returns all declared names in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.byName))
	for name := range t.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddPending records a forward reference to be checked by ResolveAll.
func (t *Table) AddPending(ref PendingRef) {
	t.pending = append(t.pending, ref)
}

// Pending returns the number of unresolved forward references.
func (t *Table) Pending() int {
	return len(t.pending)
}

// ResolveAll checks every pending forward reference against the
// declarations seen so far. References whose callee is now declared are
// validated (result presence must match the declared return type) and
// removed; the rest stay pending for lowering to report.
func (t *Table) ResolveAll(typesIn *types.Interner) error {
	var errs []error
	remaining := t.pending[:0]
	for _, ref := range t.pending {
		sig, ok := t.Lookup(ref.Callee)
		if !ok {
			remaining = append(remaining, ref)
			continue
		}
		wantResult := !typesIn.IsVoid(sig.Result)
		if ref.HasResult != wantResult {
			errs = append(errs, fmt.Errorf("%s: call to %q: result presence does not match declared return type",
				ref.Where, ref.Callee))
		}
	}
	t.pending = remaining
	return errors.Join(errs...)
}

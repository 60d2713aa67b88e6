// Package encoding reads and writes the serialized module container.
// The textual IR surface lives outside this tool; modules travel as a
// schema-versioned msgpack payload carrying the functions and the type
// arena they reference.
package encoding

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"spvir/internal/ir"
	"spvir/internal/types"
)

// Schema version - increment when the payload format changes.
const Schema uint16 = 1

type payload struct {
	Schema uint16
	Types  []types.Type
	Funcs  []ir.FuncSpec
}

// Encode writes the module and its type arena to w.
func Encode(w io.Writer, m *ir.Module, typesIn *types.Interner) error {
	p := payload{Schema: Schema, Types: typesIn.Export()}
	for _, f := range m.Funcs {
		p.Funcs = append(p.Funcs, ir.Snapshot(f))
	}
	return msgpack.NewEncoder(w).Encode(&p)
}

// Decode reads a module from r, rehydrating every function through the
// IR construction contracts.
func Decode(r io.Reader) (*ir.Module, *types.Interner, error) {
	var p payload
	if err := msgpack.NewDecoder(r).Decode(&p); err != nil {
		return nil, nil, fmt.Errorf("decode module: %w", err)
	}
	if p.Schema != Schema {
		return nil, nil, fmt.Errorf("unsupported module schema %d (want %d)", p.Schema, Schema)
	}
	m := ir.NewModule()
	for i := range p.Funcs {
		f, err := ir.BuildFunc(p.Funcs[i])
		if err != nil {
			return nil, nil, fmt.Errorf("function %s: %w", p.Funcs[i].Name, err)
		}
		m.AddFunc(f)
	}
	return m, types.Rebuild(p.Types), nil
}

// EncodeFile writes the module to path atomically.
func EncodeFile(path string, m *ir.Module, typesIn *types.Interner) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if err := Encode(tmp, m, typesIn); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// DecodeFile reads a module from path.
func DecodeFile(path string) (*ir.Module, *types.Interner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return Decode(f)
}

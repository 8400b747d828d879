package validation

import (
	"github.com/vertexdlt/weaselm/internal/ast"
	"github.com/vertexdlt/weaselm/internal/types"
)

// funcSig is a function's signature, one entry of the combined
// (imports ++ locals) function index space.
type funcSig struct {
	typ types.FuncType
}

// globalEntry is a global's type together with whether it is an imported,
// immutable global — the only kind admissible inside a constant expression.
type globalEntry struct {
	typ      types.GlobalType
	imported bool
}

// Context is an immutable, index-based view over a decoded module, per
// spec.md §4.6. Grounded on wagon's validate.mockVM, which threads the same
// information through *wasm.Module directly; here it is a standalone value
// so the validator can be tested without constructing a full module.
//
// Locals is the only mutable field: internal/validation resets it before
// validating each function body, to params++locals per spec.md §4.9.
type Context struct {
	types   []types.FuncType
	funcs   []funcSig
	tables  []types.TableType
	mems    []types.MemType
	globals []globalEntry

	Locals []types.ValueType
}

// NewContext builds a Context from a decoded module, combining imported and
// locally-defined entities into single index spaces, per spec.md §4.6 (and
// §9 Open Question 7 for tables/memories). It returns an error if any
// function import or declared function names a type index out of range of
// the type section, per spec.md §3's "all index references … are
// bounds-checkable … the validator does [check]".
func NewContext(m *ast.Module) (*Context, error) {
	ctx := &Context{types: m.Types}

	for _, im := range m.Imports {
		switch im.Kind {
		case ast.ImportFunc:
			if int(im.FuncTypeIdx) >= len(m.Types) {
				return nil, newError("invalid type index %d", im.FuncTypeIdx)
			}
			ctx.funcs = append(ctx.funcs, funcSig{typ: m.Types[im.FuncTypeIdx]})
		case ast.ImportTable:
			ctx.tables = append(ctx.tables, im.Table)
		case ast.ImportMem:
			ctx.mems = append(ctx.mems, im.Mem)
		case ast.ImportGlobal:
			ctx.globals = append(ctx.globals, globalEntry{typ: im.Global, imported: true})
		}
	}
	for _, fn := range m.Functions {
		if int(fn.TypeIdx) >= len(m.Types) {
			return nil, newError("invalid type index %d", fn.TypeIdx)
		}
		ctx.funcs = append(ctx.funcs, funcSig{typ: m.Types[fn.TypeIdx]})
	}
	ctx.tables = append(ctx.tables, m.Tables...)
	ctx.mems = append(ctx.mems, m.Mems...)
	for _, g := range m.Globals {
		ctx.globals = append(ctx.globals, globalEntry{typ: g.Type})
	}

	return ctx, nil
}

// FuncType returns the function type at the given type-section index.
func (c *Context) FuncType(idx uint32) (types.FuncType, error) {
	if int(idx) >= len(c.types) {
		return types.FuncType{}, newError("invalid type index %d", idx)
	}
	return c.types[idx], nil
}

// Func returns the signature of the function at idx in the combined
// (imports ++ locals) function index space.
func (c *Context) Func(idx uint32) (types.FuncType, error) {
	if int(idx) >= len(c.funcs) {
		return types.FuncType{}, newError("invalid function index %d", idx)
	}
	return c.funcs[idx].typ, nil
}

// FuncCount returns the size of the combined function index space.
func (c *Context) FuncCount() int {
	return len(c.funcs)
}

// Table returns the table type at idx in the combined table index space.
func (c *Context) Table(idx uint32) (types.TableType, error) {
	if int(idx) >= len(c.tables) {
		return types.TableType{}, newError("invalid table index %d", idx)
	}
	return c.tables[idx], nil
}

// TableCount returns the size of the combined table index space.
func (c *Context) TableCount() int {
	return len(c.tables)
}

// Mem returns the memory type at idx in the combined memory index space.
func (c *Context) Mem(idx uint32) (types.MemType, error) {
	if int(idx) >= len(c.mems) {
		return types.MemType{}, newError("invalid memory index %d", idx)
	}
	return c.mems[idx], nil
}

// MemCount returns the size of the combined memory index space.
func (c *Context) MemCount() int {
	return len(c.mems)
}

// Global returns the type and origin of the global at idx in the combined
// global index space.
func (c *Context) Global(idx uint32) (types.GlobalType, bool, error) {
	if int(idx) >= len(c.globals) {
		return types.GlobalType{}, false, newError("invalid global index %d", idx)
	}
	g := c.globals[idx]
	return g.typ, g.imported, nil
}

// Local returns the value type of the local at idx (params ++ declared
// locals, in that order, matching spec.md §4.9).
func (c *Context) Local(idx uint32) (types.ValueType, error) {
	if int(idx) >= len(c.Locals) {
		return 0, newError("invalid local index %d", idx)
	}
	return c.Locals[idx], nil
}

package validation

import (
	"github.com/vertexdlt/weaselm/internal/ast"
	"github.com/vertexdlt/weaselm/internal/types"
)

// Validate runs every static check spec.md §4.6-§4.9 requires over a decoded
// module: per-entity limits, the single-table/single-memory cardinality rule
// (counting imports, per §9 Open Question 7), the constant-expression
// restriction on every initializer, export-name uniqueness, and a full
// abstract-interpretation pass over every function body.
//
// Grounded on wagon's Module.Verify, the orchestration sibling of mockVM in
// the same file (_examples/other_examples/acce7eef_go-interpreter-wagon__
// validate-validate.go.go), adapted from wagon's single byte-stream pass to
// walking an already-decoded ast.Module.
func Validate(m *ast.Module) error {
	ctx, err := NewContext(m)
	if err != nil {
		return err
	}

	for _, ft := range m.Types {
		if err := checkFuncType(ft); err != nil {
			return err
		}
	}

	if ctx.TableCount() > 1 {
		return newError("module declares %d tables, at most one is allowed", ctx.TableCount())
	}
	if ctx.MemCount() > 1 {
		return newError("module declares %d memories, at most one is allowed", ctx.MemCount())
	}
	for _, im := range m.ImportedTables() {
		if err := checkTableType(im.Table); err != nil {
			return err
		}
	}
	for _, im := range m.ImportedMems() {
		if err := checkMemType(im.Mem); err != nil {
			return err
		}
	}
	for _, t := range m.Tables {
		if err := checkTableType(t); err != nil {
			return err
		}
	}
	for _, mem := range m.Mems {
		if err := checkMemType(mem); err != nil {
			return err
		}
	}

	for i, g := range m.Globals {
		if err := validateConstExpr(ctx, g.Init, g.Type.ValueType); err != nil {
			return newError("global %d: %s", i, err)
		}
	}

	for i, el := range m.Elements {
		if _, err := ctx.Table(el.TableIdx); err != nil {
			return err
		}
		if err := validateConstExpr(ctx, el.Offset, types.I32); err != nil {
			return newError("element %d: %s", i, err)
		}
		for _, idx := range el.FuncIdxs {
			if _, err := ctx.Func(idx); err != nil {
				return err
			}
		}
	}

	for i, d := range m.Data {
		if _, err := ctx.Mem(d.MemIdx); err != nil {
			return err
		}
		if err := validateConstExpr(ctx, d.Offset, types.I32); err != nil {
			return newError("data %d: %s", i, err)
		}
	}

	if m.Start != nil {
		ft, err := ctx.Func(*m.Start)
		if err != nil {
			return err
		}
		if len(ft.Params) != 0 || len(ft.Results) != 0 {
			return newError("start function must take no parameters and return no values")
		}
	}

	seenExports := make(map[string]bool, len(m.Exports))
	for _, ex := range m.Exports {
		if seenExports[ex.Name] {
			return newError("duplicate export name %q", ex.Name)
		}
		seenExports[ex.Name] = true

		var err error
		switch ex.Kind {
		case ast.ExportFunc:
			_, err = ctx.Func(ex.Idx)
		case ast.ExportTable:
			_, err = ctx.Table(ex.Idx)
		case ast.ExportMem:
			_, err = ctx.Mem(ex.Idx)
		case ast.ExportGlobal:
			_, _, err = ctx.Global(ex.Idx)
		}
		if err != nil {
			return err
		}
	}

	numImportedFuncs := ctx.FuncCount() - len(m.Functions)
	for i, fn := range m.Functions {
		ft, err := ctx.FuncType(fn.TypeIdx)
		if err != nil {
			return newError("function %d: %s", numImportedFuncs+i, err)
		}
		ctx.Locals = localsOf(fn, ft)
		if err := ValidateExpression(ctx, fn.Body, ft.Results); err != nil {
			return newError("function %d: %s", numImportedFuncs+i, err)
		}
	}

	return nil
}

// localsOf expands a function's run-length-encoded local declarations into
// one value type per local, prefixed by its parameters (taken from ft, the
// type looked up through the Context rather than the decoder's own
// pre-resolved fn.Type) — the params++locals index space of spec.md §4.9.
func localsOf(fn ast.Function, ft types.FuncType) []types.ValueType {
	locals := append([]types.ValueType{}, ft.Params...)
	for _, entry := range fn.Locals {
		for i := uint32(0); i < entry.Count; i++ {
			locals = append(locals, entry.ValueType)
		}
	}
	return locals
}

// validateConstExpr validates a global/element/data initializer: spec.md
// §4.9 restricts these to exactly one instruction, either a *.const of the
// matching type or global.get of an already-defined, immutable import.
func validateConstExpr(ctx *Context, expr ast.Expression, want types.ValueType) error {
	if len(expr) != 1 {
		return newError("constant expression must be exactly one instruction")
	}
	instr := expr[0]

	var got types.ValueType
	switch instr.Tag {
	case ast.TagI32Const:
		got = types.I32
	case ast.TagI64Const:
		got = types.I64
	case ast.TagF32Const:
		got = types.F32
	case ast.TagF64Const:
		got = types.F64
	case ast.TagGlobalGet:
		gt, imported, err := ctx.Global(instr.GlobalIdx)
		if err != nil {
			return err
		}
		if !imported {
			return newError("constant expression may only reference an imported global")
		}
		if gt.Mutability != types.Const {
			return newError("constant expression may only reference an immutable global")
		}
		got = gt.ValueType
	default:
		return newError("instruction not allowed in a constant expression")
	}

	if got != want {
		return newError("constant expression has type %s, want %s", got, want)
	}
	return nil
}

package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vertexdlt/weaselm/internal/ast"
	"github.com/vertexdlt/weaselm/internal/opcode"
	"github.com/vertexdlt/weaselm/internal/types"
)

func TestModuleImportedFuncs(t *testing.T) {
	m := &ast.Module{
		Imports: []ast.Import{
			{Module: "env", Name: "f", Kind: ast.ImportFunc, FuncTypeIdx: 0},
			{Module: "env", Name: "mem", Kind: ast.ImportMem},
			{Module: "env", Name: "g", Kind: ast.ImportGlobal},
			{Module: "env", Name: "t", Kind: ast.ImportTable},
			{Module: "env", Name: "f2", Kind: ast.ImportFunc, FuncTypeIdx: 1},
		},
	}

	funcs := m.ImportedFuncs()
	assert.Len(t, funcs, 2)
	assert.Equal(t, uint32(0), funcs[0].FuncTypeIdx)
	assert.Equal(t, uint32(1), funcs[1].FuncTypeIdx)

	assert.Len(t, m.ImportedMems(), 1)
	assert.Len(t, m.ImportedGlobals(), 1)
	assert.Len(t, m.ImportedTables(), 1)
}

func TestModuleImportedFuncsEmpty(t *testing.T) {
	m := &ast.Module{}
	assert.Nil(t, m.ImportedFuncs())
	assert.Nil(t, m.ImportedTables())
	assert.Nil(t, m.ImportedMems())
	assert.Nil(t, m.ImportedGlobals())
}

func TestExpressionTreeShape(t *testing.T) {
	// A block containing a single i32.const, mirroring how
	// internal/decoder assembles nested control flow into a tree rather
	// than a flat byte run.
	body := ast.Expression{
		{Tag: ast.TagI32Const, I32: 42},
	}
	block := ast.Instruction{
		Tag:       ast.TagBlock,
		BlockType: types.BlockType{Empty: true},
		Body:      body,
	}
	expr := ast.Expression{block}

	assert.Len(t, expr, 1)
	assert.Equal(t, ast.TagBlock, expr[0].Tag)
	assert.Len(t, expr[0].Body, 1)
	assert.Equal(t, int32(42), expr[0].Body[0].I32)
}

func TestInstructionOpFieldDistinguishesOpFamily(t *testing.T) {
	add := ast.Instruction{Tag: ast.TagOp, Op: opcode.I32Add}
	sub := ast.Instruction{Tag: ast.TagOp, Op: opcode.I32Sub}

	assert.Equal(t, ast.TagOp, add.Tag)
	assert.NotEqual(t, add.Op, sub.Op)
}

func TestCustomSectionPreservesBytes(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03}
	cs := ast.CustomSection{Name: "name", Data: raw}
	assert.Equal(t, raw, cs.Data)
	assert.Equal(t, "name", cs.Name)
}

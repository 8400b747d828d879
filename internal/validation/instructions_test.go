package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertexdlt/weaselm/internal/ast"
	"github.com/vertexdlt/weaselm/internal/opcode"
	"github.com/vertexdlt/weaselm/internal/types"
	"github.com/vertexdlt/weaselm/internal/validation"
)

func i32Const(v int32) ast.Instruction {
	return ast.Instruction{Tag: ast.TagI32Const, I32: v}
}

func op(o opcode.Opcode) ast.Instruction {
	return ast.Instruction{Tag: ast.TagOp, Op: o}
}

func blockType(results ...types.ValueType) types.BlockType {
	if len(results) == 0 {
		return types.Void
	}
	return types.BlockType{Result: results[0]}
}

func TestValidateExpressionSelectUnifiesOperandTypes(t *testing.T) {
	ctx, err := validation.NewContext(&ast.Module{})
	require.NoError(t, err)
	body := ast.Expression{
		i32Const(1),
		i32Const(2),
		i32Const(1),
		{Tag: ast.TagSelect},
	}
	err = validation.ValidateExpression(ctx, body, []types.ValueType{types.I32})
	assert.NoError(t, err)
}

func TestValidateExpressionSelectRejectsMismatchedOperands(t *testing.T) {
	ctx, err := validation.NewContext(&ast.Module{})
	require.NoError(t, err)
	body := ast.Expression{
		i32Const(1),
		{Tag: ast.TagF32Const, F32: 1.5},
		i32Const(1),
		{Tag: ast.TagSelect},
	}
	err = validation.ValidateExpression(ctx, body, []types.ValueType{types.I32})
	assert.Error(t, err)
}

func TestValidateExpressionBrTargetsEnclosingBlock(t *testing.T) {
	ctx, err := validation.NewContext(&ast.Module{})
	require.NoError(t, err)
	// block (i32) i32.const 1 br 0 end
	body := ast.Expression{
		{
			Tag:       ast.TagBlock,
			BlockType: blockType(types.I32),
			Body: []ast.Instruction{
				i32Const(1),
				{Tag: ast.TagBr, LabelIdx: 0},
			},
		},
	}
	err = validation.ValidateExpression(ctx, body, []types.ValueType{types.I32})
	assert.NoError(t, err)
}

func TestValidateExpressionBrTableRejectsDisagreeingLabelTypes(t *testing.T) {
	ctx, err := validation.NewContext(&ast.Module{})
	require.NoError(t, err)
	// An outer (i32) block wrapping an inner (empty) block; br_table naming
	// both as targets must fail since their label types disagree.
	body := ast.Expression{
		{
			Tag:       ast.TagBlock,
			BlockType: blockType(types.I32),
			Body: []ast.Instruction{
				{
					Tag:       ast.TagBlock,
					BlockType: blockType(),
					Body: []ast.Instruction{
						i32Const(0),
						{Tag: ast.TagBrTable, Labels: []uint32{0}, Default: 1},
					},
				},
				i32Const(1),
			},
		},
	}
	err = validation.ValidateExpression(ctx, body, []types.ValueType{types.I32})
	assert.Error(t, err)
}

func TestValidateExpressionReturnBranchesToFunctionResults(t *testing.T) {
	ctx, err := validation.NewContext(&ast.Module{})
	require.NoError(t, err)
	body := ast.Expression{
		i32Const(42),
		{Tag: ast.TagReturn},
	}
	err = validation.ValidateExpression(ctx, body, []types.ValueType{types.I32})
	assert.NoError(t, err)
}

func TestValidateExpressionCallIndirectRequiresTable(t *testing.T) {
	m := &ast.Module{Types: []types.FuncType{{Results: []types.ValueType{types.I32}}}}
	ctx, err := validation.NewContext(m)
	require.NoError(t, err)
	body := ast.Expression{
		i32Const(0),
		{Tag: ast.TagCallIndirect, TypeIdx: 0},
	}
	err = validation.ValidateExpression(ctx, body, []types.ValueType{types.I32})
	assert.Error(t, err)
}

func TestValidateExpressionCallIndirectWithTable(t *testing.T) {
	m := &ast.Module{
		Types:  []types.FuncType{{Results: []types.ValueType{types.I32}}},
		Tables: []types.TableType{{Limits: types.Limits{Min: 1}}},
	}
	ctx, err := validation.NewContext(m)
	require.NoError(t, err)
	body := ast.Expression{
		i32Const(0),
		{Tag: ast.TagCallIndirect, TypeIdx: 0},
	}
	err = validation.ValidateExpression(ctx, body, []types.ValueType{types.I32})
	assert.NoError(t, err)
}

func TestValidateExpressionUnreachableMakesStackPolymorphic(t *testing.T) {
	ctx, err := validation.NewContext(&ast.Module{})
	require.NoError(t, err)
	body := ast.Expression{
		{Tag: ast.TagUnreachable},
	}
	// Unreachable code can produce any result type without actually
	// pushing operands, since the stack becomes polymorphic.
	err = validation.ValidateExpression(ctx, body, []types.ValueType{types.I32, types.I64})
	assert.NoError(t, err)
}

func TestValidateExpressionDetectsStackUnderflow(t *testing.T) {
	ctx, err := validation.NewContext(&ast.Module{})
	require.NoError(t, err)
	body := ast.Expression{
		op(opcode.I32Add),
	}
	err = validation.ValidateExpression(ctx, body, nil)
	assert.Error(t, err)
}

package decoder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertexdlt/weaselm/internal/ast"
	"github.com/vertexdlt/weaselm/internal/cursor"
	"github.com/vertexdlt/weaselm/internal/decoder"
	"github.com/vertexdlt/weaselm/internal/fixtures"
)

func TestDecodeEmptyModule(t *testing.T) {
	m, err := decoder.Decode(fixtures.Empty())
	require.NoError(t, err)
	assert.Empty(t, m.Types)
	assert.Empty(t, m.Functions)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, err := decoder.Decode(fixtures.BadMagic())
	assert.Error(t, err)
}

func TestDecodeRejectsBadVersion(t *testing.T) {
	_, err := decoder.Decode(fixtures.BadVersion())
	assert.Error(t, err)
}

func TestDecodeRejectsTruncatedSection(t *testing.T) {
	_, err := decoder.Decode(fixtures.Truncated())
	assert.Error(t, err)
}

func TestDecodeRejectsHugeVectorCountWithoutCrashing(t *testing.T) {
	// A claimed 0xFFFFFFFF-element vector backed by zero element bytes must
	// fail with a DecoderError on the first missing element, not attempt an
	// allocation sized off the claimed count.
	_, err := decoder.Decode(fixtures.HugeVectorCountTruncated())
	assert.Error(t, err)
}

func TestDecodeAddFunction(t *testing.T) {
	m, err := decoder.Decode(fixtures.AddFunction())
	require.NoError(t, err)
	require.Len(t, m.Functions, 1)
	fn := m.Functions[0]
	assert.Empty(t, fn.Locals)
	require.Len(t, fn.Body, 3)
	assert.Equal(t, ast.TagLocalGet, fn.Body[0].Tag)
	assert.Equal(t, uint32(0), fn.Body[0].LocalIdx)
	assert.Equal(t, ast.TagLocalGet, fn.Body[1].Tag)
	assert.Equal(t, uint32(1), fn.Body[1].LocalIdx)
	assert.Equal(t, ast.TagOp, fn.Body[2].Tag)

	require.Len(t, m.Exports, 1)
	assert.Equal(t, "add", m.Exports[0].Name)
	assert.Equal(t, ast.ExportFunc, m.Exports[0].Kind)
}

func TestDecodeExpressionNestedBlocks(t *testing.T) {
	// block (i32) local.get 0 if (i32) i32.const 1 else i32.const 2 end end end
	body := []byte{
		0x02, 0x7F, // block (i32)
		0x20, 0x00, // local.get 0
		0x04, 0x7F, // if (i32)
		0x41, 0x01, // i32.const 1
		0x05, // else
		0x41, 0x02, // i32.const 2
		0x0B, // end (if)
		0x0B, // end (block)
		0x0B, // end (expression)
	}
	expr, err := decoder.DecodeExpression(cursor.NewCursor(body))
	require.NoError(t, err)
	require.Len(t, expr, 1)
	block := expr[0]
	assert.Equal(t, ast.TagBlock, block.Tag)
	require.Len(t, block.Body, 2)
	ifInstr := block.Body[1]
	assert.Equal(t, ast.TagIf, ifInstr.Tag)
	assert.Len(t, ifInstr.Body, 1)
	assert.Len(t, ifInstr.Else, 1)
}

package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertexdlt/weaselm/internal/cursor"
	"github.com/vertexdlt/weaselm/internal/types"
)

func TestReadValueType(t *testing.T) {
	vt, err := types.ReadValueType(cursor.NewCursor([]byte{0x7F}))
	require.NoError(t, err)
	assert.Equal(t, types.I32, vt)

	_, err = types.ReadValueType(cursor.NewCursor([]byte{0x00}))
	assert.Error(t, err)
}

func TestReadBlockType(t *testing.T) {
	bt, err := types.ReadBlockType(cursor.NewCursor([]byte{0x40}))
	require.NoError(t, err)
	assert.True(t, bt.Empty)
	assert.Nil(t, bt.Results())

	bt, err = types.ReadBlockType(cursor.NewCursor([]byte{0x7E}))
	require.NoError(t, err)
	assert.Equal(t, []types.ValueType{types.I64}, bt.Results())
}

func TestReadFuncType(t *testing.T) {
	// (i32, i32) -> i32
	b := []byte{0x60, 0x02, 0x7F, 0x7F, 0x01, 0x7F}
	ft, err := types.ReadFuncType(cursor.NewCursor(b))
	require.NoError(t, err)
	assert.Equal(t, []types.ValueType{types.I32, types.I32}, ft.Params)
	assert.Equal(t, []types.ValueType{types.I32}, ft.Results)
}

func TestReadFuncTypeBadForm(t *testing.T) {
	_, err := types.ReadFuncType(cursor.NewCursor([]byte{0x61, 0x00, 0x00}))
	assert.Error(t, err)
}

func TestReadLimits(t *testing.T) {
	l, err := types.ReadLimits(cursor.NewCursor([]byte{0x00, 0x01}))
	require.NoError(t, err)
	assert.Equal(t, types.Limits{Min: 1}, l)

	l, err = types.ReadLimits(cursor.NewCursor([]byte{0x01, 0x01, 0x02}))
	require.NoError(t, err)
	assert.Equal(t, types.Limits{Min: 1, Max: 2, HasMax: true}, l)

	_, err = types.ReadLimits(cursor.NewCursor([]byte{0x02}))
	assert.Error(t, err)
}

func TestReadTableType(t *testing.T) {
	tt, err := types.ReadTableType(cursor.NewCursor([]byte{0x70, 0x00, 0x00}))
	require.NoError(t, err)
	assert.Equal(t, byte(0x70), tt.ElemKind)

	_, err = types.ReadTableType(cursor.NewCursor([]byte{0x7F, 0x00, 0x00}))
	assert.Error(t, err)
}

func TestReadGlobalType(t *testing.T) {
	gt, err := types.ReadGlobalType(cursor.NewCursor([]byte{0x7F, 0x01}))
	require.NoError(t, err)
	assert.Equal(t, types.I32, gt.ValueType)
	assert.Equal(t, types.Var, gt.Mutability)

	_, err = types.ReadGlobalType(cursor.NewCursor([]byte{0x7F, 0x02}))
	assert.Error(t, err)
}

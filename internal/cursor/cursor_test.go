package cursor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertexdlt/weaselm/internal/cursor"
)

func TestEatByte(t *testing.T) {
	c := cursor.NewCursor([]byte{0x01, 0x02})
	b, err := c.EatByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), b)
	assert.Equal(t, 1, c.Offset())

	b, err = c.EatByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x02), b)

	_, err = c.EatByte()
	assert.Error(t, err)
}

func TestMatchByte(t *testing.T) {
	c := cursor.NewCursor([]byte{0x0B, 0x00})
	assert.False(t, c.MatchByte(0x00))
	assert.True(t, c.MatchByte(0x0B))
	assert.Equal(t, 1, c.Offset())
}

func TestEatExactRestoresPositionOnMismatch(t *testing.T) {
	c := cursor.NewCursor([]byte{0x00, 0x61, 0x00, 0x00})
	err := c.EatExact([]byte{0x00, 0x61, 0x73, 0x6D}, "invalid magic string")
	require.Error(t, err)
	assert.Equal(t, 0, c.Offset())
}

func TestSubIsBounded(t *testing.T) {
	c := cursor.NewCursor([]byte{0xAA, 0x01, 0x02, 0x03, 0xBB})
	_, err := c.EatByte()
	require.NoError(t, err)

	sub, err := c.Sub(3)
	require.NoError(t, err)
	assert.Equal(t, 3, sub.Len())
	assert.Equal(t, 1, sub.Offset())

	b, err := sub.EatByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), b)
	assert.Equal(t, 2, sub.Offset())

	assert.False(t, sub.Done())
	assert.Equal(t, []byte{0x02, 0x03}, sub.Rest())
	assert.True(t, sub.Done())

	// the parent cursor resumes right after the sub-cursor's bytes.
	b, err = c.EatByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0xBB), b)
}

func TestSubErrorOffsetIsAbsolute(t *testing.T) {
	c := cursor.NewCursor([]byte{0xAA, 0xAA, 0xAA, 0x01})
	_, err := c.Sub(3)
	require.NoError(t, err)
	sub, err := c.Sub(1)
	require.NoError(t, err)
	_, err = sub.EatByte()
	require.NoError(t, err)

	_, err = sub.EatByte()
	require.Error(t, err)
	cerr, ok := err.(*cursor.Error)
	require.True(t, ok)
	assert.Equal(t, 4, cerr.Offset)
}

func TestEatBytesUnexpectedEnd(t *testing.T) {
	c := cursor.NewCursor([]byte{0x01, 0x02})
	_, err := c.EatBytes(5)
	assert.Error(t, err)
}

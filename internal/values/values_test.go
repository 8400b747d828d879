package values_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertexdlt/weaselm/internal/cursor"
	"github.com/vertexdlt/weaselm/internal/values"
)

func TestReadF32LittleEndian(t *testing.T) {
	// 1.0f32 = 0x3F800000, little-endian bytes 00 00 80 3F
	f, err := values.ReadF32(cursor.NewCursor([]byte{0x00, 0x00, 0x80, 0x3F}))
	require.NoError(t, err)
	assert.Equal(t, float32(1.0), f)
}

func TestReadF32TruncatedInput(t *testing.T) {
	_, err := values.ReadF32(cursor.NewCursor([]byte{0x00, 0x00}))
	assert.Error(t, err)
}

func TestReadF64LittleEndian(t *testing.T) {
	// 1.0f64 = 0x3FF0000000000000, little-endian
	f, err := values.ReadF64(cursor.NewCursor([]byte{0, 0, 0, 0, 0, 0, 0xF0, 0x3F}))
	require.NoError(t, err)
	assert.Equal(t, 1.0, f)
}

func TestReadF64SignedZeroAndNaN(t *testing.T) {
	neg := math.Copysign(0, -1)
	bits := math.Float64bits(neg)
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(bits >> (8 * uint(i)))
	}
	f, err := values.ReadF64(cursor.NewCursor(b))
	require.NoError(t, err)
	assert.True(t, math.Signbit(f))

	nanBits := uint64(0x7FF4000000000001)
	for i := 0; i < 8; i++ {
		b[i] = byte(nanBits >> (8 * uint(i)))
	}
	f, err = values.ReadF64(cursor.NewCursor(b))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(f))
	assert.Equal(t, nanBits, math.Float64bits(f))
}

func TestIsCanonicalNaN(t *testing.T) {
	assert.True(t, values.IsCanonicalNaN(float32(math.NaN())))
	assert.False(t, values.IsCanonicalNaN(float32(1.0)))
}

func TestReadNameASCII(t *testing.T) {
	// length 3 + "foo"
	b := []byte{0x03, 'f', 'o', 'o'}
	name, err := values.ReadName(cursor.NewCursor(b))
	require.NoError(t, err)
	assert.Equal(t, "foo", name)
}

func TestReadNameMultiByteUTF8(t *testing.T) {
	// "hé☃": an e-acute (2-byte) and a snowman (3-byte) after plain ASCII
	s := "hé☃"
	b := append([]byte{byte(len(s))}, []byte(s)...)
	name, err := values.ReadName(cursor.NewCursor(b))
	require.NoError(t, err)
	assert.Equal(t, s, name)
}

func TestReadNameInvalidUTF8(t *testing.T) {
	b := []byte{0x01, 0xFF}
	_, err := values.ReadName(cursor.NewCursor(b))
	assert.Error(t, err)
}

func TestReadNameTruncated(t *testing.T) {
	b := []byte{0x05, 'h', 'i'}
	_, err := values.ReadName(cursor.NewCursor(b))
	assert.Error(t, err)
}

package leb128_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertexdlt/weaselm/internal/cursor"
	"github.com/vertexdlt/weaselm/internal/leb128"
)

func TestReadUint32(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want uint32
	}{
		{"zero", []byte{0x00}, 0},
		{"single byte", []byte{0x7F}, 127},
		{"three bytes", []byte{0xE5, 0x8E, 0x26}, 624485},
		{"max", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}, 0xFFFFFFFF},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := leb128.ReadUint32(cursor.NewCursor(c.in))
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestReadUint32RejectsOverflow(t *testing.T) {
	// Encodes a value whose top nibble of the fifth byte sets bits above
	// the 32-bit range.
	_, err := leb128.ReadUint32(cursor.NewCursor([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x1F}))
	assert.Error(t, err)
}

func TestReadUint32RejectsTooManyBytes(t *testing.T) {
	_, err := leb128.ReadUint32(cursor.NewCursor([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x00}))
	assert.Error(t, err)
}

func TestReadInt32(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want int32
	}{
		{"zero", []byte{0x00}, 0},
		{"negative one", []byte{0x7F}, -1},
		{"negative two", []byte{0x7E}, -2},
		{"min", []byte{0x80, 0x80, 0x80, 0x80, 0x78}, -2147483648},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := leb128.ReadInt32(cursor.NewCursor(c.in))
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestReadInt64(t *testing.T) {
	got, err := leb128.ReadInt64(cursor.NewCursor([]byte{0x7F}))
	require.NoError(t, err)
	assert.Equal(t, int64(-1), got)
}

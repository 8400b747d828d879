// Package values decodes the non-integer leaf values of the WebAssembly
// binary format: little-endian IEEE 754 floats and length-prefixed UTF-8
// names.
//
// Grounded on the teacher's wasm.readU32/readU64 (github.com/vertexdlt/
// vertexvm/wasm/read.go), which already use encoding/binary.LittleEndian —
// the correct behavior per spec.md §9 Open Question 2 — reused here for the
// float bit patterns. Name decoding is grounded on the teacher's
// wasm.readName, which validates with unicode/utf8.Valid and so already
// accepts full (1-4 byte) UTF-8 sequences, resolving Open Question 4.
package values

import (
	"math"
	"unicode/utf8"

	"github.com/chewxy/math32"

	"github.com/vertexdlt/weaselm/internal/cursor"
	"github.com/vertexdlt/weaselm/internal/leb128"
)

// ReadF32 reads a little-endian 32-bit IEEE 754 float.
func ReadF32(c *cursor.Cursor) (float32, error) {
	b, err := c.EatBytes(4)
	if err != nil {
		return 0, err
	}
	bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return math.Float32frombits(bits), nil
}

// IsCanonicalNaN reports whether f is the canonical NaN for its width, i.e.
// its payload bits beyond the quiet bit are all clear. Used by the CLI
// collaborator when printing f32 constants and globals.
func IsCanonicalNaN(f float32) bool {
	if !math32.IsNaN(f) {
		return false
	}
	return math32.Float32bits(f)&0x7fffff == 0x400000
}

// ReadF64 reads a little-endian 64-bit IEEE 754 float.
func ReadF64(c *cursor.Cursor) (float64, error) {
	b, err := c.EatBytes(8)
	if err != nil {
		return 0, err
	}
	var bits uint64
	for i := 7; i >= 0; i-- {
		bits = bits<<8 | uint64(b[i])
	}
	return math.Float64frombits(bits), nil
}

// ReadName reads a u32-length-prefixed UTF-8 byte sequence.
func ReadName(c *cursor.Cursor) (string, error) {
	n, err := leb128.ReadUint32(c)
	if err != nil {
		return "", err
	}
	start := c.Offset()
	b, err := c.EatBytes(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", cursor.New(start, "invalid UTF-8 in name")
	}
	return string(b), nil
}

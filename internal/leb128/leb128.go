// Package leb128 decodes the LEB128 variable-length integers used
// throughout the WebAssembly binary format.
//
// This generalizes the teacher's leb128.Read (github.com/vertexdlt/vertexvm/
// leb128), which shares the same byte-group/continuation-bit loop but does
// not reject overflowing encodings. The WebAssembly binary specification
// requires rejecting an encoding whose byte count exceeds ceil(width/7), and
// a final byte whose bits beyond the target width carry information (for
// unsigned values, those bits must be zero; for signed values, they must
// agree with the sign bit) — see spec.md §9 Open Question 1.
package leb128

import "github.com/vertexdlt/weaselm/internal/cursor"

// maxBytes is the number of continuation groups needed to cover width bits.
func maxBytes(width uint) int {
	return (int(width) + 6) / 7
}

// ReadUint32 reads an unsigned LEB128-encoded value into a u32.
func ReadUint32(c *cursor.Cursor) (uint32, error) {
	v, err := readUnsigned(c, 32)
	return uint32(v), err
}

// ReadUint64 reads an unsigned LEB128-encoded value into a u64.
func ReadUint64(c *cursor.Cursor) (uint64, error) {
	return readUnsigned(c, 64)
}

// ReadInt32 reads a signed LEB128-encoded value into an i32.
func ReadInt32(c *cursor.Cursor) (int32, error) {
	v, err := readSigned(c, 32)
	return int32(v), err
}

// ReadInt64 reads a signed LEB128-encoded value into an i64.
func ReadInt64(c *cursor.Cursor) (int64, error) {
	return readSigned(c, 64)
}

func readUnsigned(c *cursor.Cursor, width uint) (uint64, error) {
	start := c.Offset()
	var result uint64
	var shift uint
	limit := maxBytes(width)
	for count := 0; ; count++ {
		if count >= limit {
			return 0, cursor.New(start, "LEB128 value uses more than %d bytes", limit)
		}
		b, err := c.EatByte()
		if err != nil {
			return 0, err
		}
		if shift+7 > width && uint64(b&0x7f)>>(width-shift) != 0 {
			return 0, cursor.New(start, "LEB128 value exceeds %d bits", width)
		}
		result |= uint64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			return result, nil
		}
	}
}

func readSigned(c *cursor.Cursor, width uint) (int64, error) {
	start := c.Offset()
	var result int64
	var shift uint
	var last byte
	limit := maxBytes(width)
	for count := 0; ; count++ {
		if count >= limit {
			return 0, cursor.New(start, "LEB128 value uses more than %d bytes", limit)
		}
		b, err := c.EatByte()
		if err != nil {
			return 0, err
		}
		last = b
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	if shift < 64 && last&0x40 != 0 {
		result |= -1 << shift
	}
	// A tenth byte contributes only bit 63; its six upper payload bits must
	// repeat that sign bit.
	if width == 64 && shift > 64 && last&0x7f != 0 && last&0x7f != 0x7f {
		return 0, cursor.New(start, "LEB128 value exceeds %d bits", width)
	}
	if width < 64 {
		if signExtended := result << (64 - width) >> (64 - width); signExtended != result {
			return 0, cursor.New(start, "LEB128 value exceeds %d bits", width)
		}
	}
	return result, nil
}

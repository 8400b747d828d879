// Package cursor implements the byte-level primitive reads shared by every
// decoder in weaselm. It never allocates beyond the occasional bounded
// sub-cursor, and it never recovers from a read past the end of its slice.
package cursor

import "fmt"

// Error is a decode-time failure tagged with the offset of the byte that
// caused it. Every decoder error in weaselm is one of these.
type Error struct {
	Offset  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Message)
}

// New builds a *Error at the given offset.
func New(offset int, format string, args ...interface{}) *Error {
	return &Error{Offset: offset, Message: fmt.Sprintf(format, args...)}
}

// Cursor holds a borrowed byte slice and a monotonically non-decreasing
// read offset into it. base is the absolute offset of b[0] in the original
// input, so a Cursor opened with Sub still reports file-absolute offsets in
// its errors. The zero value is not usable; use NewCursor.
type Cursor struct {
	b    []byte
	pos  int
	base int
}

// NewCursor constructs a cursor over b starting at absolute offset 0.
func NewCursor(b []byte) *Cursor {
	return &Cursor{b: b}
}

// Offset returns the current read position, absolute within the original
// input even if this cursor was opened as a bounded sub-cursor.
func (c *Cursor) Offset() int {
	return c.base + c.pos
}

// Len returns the number of unread bytes.
func (c *Cursor) Len() int {
	return len(c.b) - c.pos
}

// Done reports whether every byte has been consumed.
func (c *Cursor) Done() bool {
	return c.pos == len(c.b)
}

// Rest consumes and returns every remaining byte, a zero-copy view into the
// cursor's backing slice. Used to preserve custom-section payloads verbatim
// per spec.md §3's ownership note.
func (c *Cursor) Rest() []byte {
	b := c.b[c.pos:]
	c.pos = len(c.b)
	return b
}

// EatByte consumes and returns the next byte, or fails with UnexpectedEnd.
func (c *Cursor) EatByte() (byte, error) {
	if c.pos >= len(c.b) {
		return 0, c.Error("unexpected end of input")
	}
	b := c.b[c.pos]
	c.pos++
	return b, nil
}

// PeekByte returns the next byte without advancing, or (0, false) at end.
func (c *Cursor) PeekByte() (byte, bool) {
	if c.pos >= len(c.b) {
		return 0, false
	}
	return c.b[c.pos], true
}

// MatchByte advances past expected if it is next, reporting whether it did.
func (c *Cursor) MatchByte(expected byte) bool {
	b, ok := c.PeekByte()
	if !ok || b != expected {
		return false
	}
	c.pos++
	return true
}

// EatBytes consumes and returns exactly n bytes.
func (c *Cursor) EatBytes(n uint32) ([]byte, error) {
	if uint64(c.pos)+uint64(n) > uint64(len(c.b)) {
		return nil, c.Error("unexpected end of input")
	}
	b := c.b[c.pos : c.pos+int(n)]
	c.pos += int(n)
	return b, nil
}

// EatExact consumes exactly len(expected) bytes and requires they match.
func (c *Cursor) EatExact(expected []byte, message string) error {
	startPos := c.pos
	got, err := c.EatBytes(uint32(len(expected)))
	if err != nil {
		return err
	}
	for i := range expected {
		if got[i] != expected[i] {
			c.pos = startPos
			return c.Error(message)
		}
	}
	return nil
}

// Error builds a *Error carrying the cursor's current absolute offset.
func (c *Cursor) Error(format string, args ...interface{}) *Error {
	return New(c.Offset(), format, args...)
}

// maxVecHint bounds the initial capacity a decoder reserves for a
// length-prefixed vector based on its raw, unvalidated element count.
const maxVecHint = 64

// VecHint clamps a vector's raw, decoder-read element count to a small
// constant, for use as an initial append capacity rather than an
// allocation size. A malformed or adversarial module can claim a vector of
// up to 2^32-1 elements while supplying only a handful of trailing bytes;
// sizing a slice directly off that count (make([]T, n)) commits to the
// attacker's claimed size before a single element has been read and can
// abort the process with an out-of-memory fatal error rather than
// returning a DecoderError. Every vector-shaped section decoder should
// grow its slice with append as elements are actually decoded, using
// VecHint only to avoid reallocating on the common, well-formed case.
func VecHint(n uint32) int {
	if n > maxVecHint {
		return maxVecHint
	}
	return int(n)
}

// Sub opens a bounded sub-cursor over the next n bytes and advances the
// parent past them. The caller must fully drain the sub-cursor (Done) to
// satisfy section-framing invariants; Sub itself only slices, it does not
// check that the section was consumed exactly.
func (c *Cursor) Sub(n uint32) (*Cursor, error) {
	base := c.Offset()
	b, err := c.EatBytes(n)
	if err != nil {
		return nil, err
	}
	return &Cursor{b: b, base: base}, nil
}

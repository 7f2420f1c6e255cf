// Package bytebuf provides the immutable labeled byte sequence that flows
// through the parity pipeline.
//
// A Buffer carries no text encoding. The comparator, line reporter, and
// snapshot encoder all read it as raw bytes; only the line reporter decodes,
// and it does so lossily on its own copy.
package bytebuf

import "bytes"

// Label tags the origin of a Buffer.
type Label string

const (
	// Expected marks the canonical reference rendering.
	Expected Label = "expected"
	// Actual marks the output captured from the target system.
	Actual Label = "actual"
	// Source marks the unformatted reference source as fetched.
	Source Label = "source"
)

// Buffer is an immutable, ordered sequence of bytes with an origin label.
// The zero value is an empty, unlabeled buffer.
type Buffer struct {
	label Label
	data  []byte
}

// New copies data into a new Buffer labeled l.
func New(l Label, data []byte) Buffer {
	return Buffer{label: l, data: cloneBytes(data)}
}

// Label returns the origin tag.
func (b Buffer) Label() Label {
	return b.label
}

// Len returns the length in bytes.
func (b Buffer) Len() int {
	return len(b.data)
}

// At returns the byte at index i. It panics if i is out of range.
func (b Buffer) At(i int) byte {
	return b.data[i]
}

// Bytes returns a copy of the contents.
func (b Buffer) Bytes() []byte {
	return cloneBytes(b.data)
}

// Slice returns a copy of the half-open range [lo, hi), clipped to the
// buffer bounds. An empty or inverted range yields an empty slice.
func (b Buffer) Slice(lo, hi int) []byte {
	if lo < 0 {
		lo = 0
	}
	if hi > len(b.data) {
		hi = len(b.data)
	}
	if lo >= hi {
		return []byte{}
	}
	return cloneBytes(b.data[lo:hi])
}

// Equal reports whether b and o hold identical bytes. Labels are ignored.
func (b Buffer) Equal(o Buffer) bool {
	return bytes.Equal(b.data, o.data)
}

// Count returns the number of non-overlapping occurrences of c.
func (b Buffer) Count(c byte) int {
	return bytes.Count(b.data, []byte{c})
}

func cloneBytes(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

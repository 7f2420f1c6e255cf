// Package compare decides byte-exact equality between a canonical reference
// rendering and the target system's output, and localizes the first
// divergence when they differ.
//
// Both inputs are opaque byte sequences. Nothing here decodes text.
package compare

import (
	"fmt"

	"github.com/lattice-substrate/refdoc-parity/bytebuf"
)

// ContextRadius bounds each context window: at most ContextRadius bytes
// before the differing offset and at most ContextRadius bytes starting at it.
const ContextRadius = 30

// Kind classifies a comparison outcome.
type Kind int

const (
	// Match means the buffers are identical, length included.
	Match Kind = iota
	// Mismatch means a differing byte exists within the shared prefix.
	Mismatch
	// LengthMismatch means the shorter buffer is a strict prefix of the longer.
	LengthMismatch
)

// String returns the stable name of k.
func (k Kind) String() string {
	switch k {
	case Match:
		return "match"
	case Mismatch:
		return "mismatch"
	case LengthMismatch:
		return "length_mismatch"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Window is a clipped excerpt of one buffer around a differing offset.
type Window struct {
	// Start is the index in the source buffer of Bytes[0].
	Start int
	Bytes []byte
}

// Result is the outcome of Compare.
//
// Offset, Expected, and Actual are set only for Mismatch. Delta is set only
// for LengthMismatch and equals len(expected) - len(actual).
type Result struct {
	Kind     Kind
	Offset   int
	Expected Window
	Actual   Window
	Delta    int
}

// OK reports whether the result is a Match.
func (r Result) OK() bool {
	return r.Kind == Match
}

// Compare returns Match when expected and actual hold identical bytes.
// Otherwise it reports the first differing offset within the shared prefix
// together with context windows, or, when one buffer is a strict prefix of
// the other, the signed length difference.
func Compare(expected, actual bytebuf.Buffer) Result {
	if expected.Equal(actual) {
		return Result{Kind: Match}
	}
	shared := expected.Len()
	if actual.Len() < shared {
		shared = actual.Len()
	}
	for i := 0; i < shared; i++ {
		if expected.At(i) != actual.At(i) {
			return Result{
				Kind:     Mismatch,
				Offset:   i,
				Expected: window(expected, i),
				Actual:   window(actual, i),
			}
		}
	}
	return Result{Kind: LengthMismatch, Delta: expected.Len() - actual.Len()}
}

func window(b bytebuf.Buffer, i int) Window {
	lo := i - ContextRadius
	if lo < 0 {
		lo = 0
	}
	hi := i + ContextRadius
	if hi > b.Len() {
		hi = b.Len()
	}
	return Window{Start: lo, Bytes: b.Slice(lo, hi)}
}

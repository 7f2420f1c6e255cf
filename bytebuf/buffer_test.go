package bytebuf_test

import (
	"bytes"
	"testing"

	"github.com/lattice-substrate/refdoc-parity/bytebuf"
)

func TestNewCopiesInput(t *testing.T) {
	src := []byte("abc")
	b := bytebuf.New(bytebuf.Expected, src)
	src[0] = 'X'
	if b.At(0) != 'a' {
		t.Fatalf("buffer aliased caller slice: got %q", b.Bytes())
	}
}

func TestBytesReturnsCopy(t *testing.T) {
	b := bytebuf.New(bytebuf.Actual, []byte("abc"))
	out := b.Bytes()
	out[0] = 'X'
	if !bytes.Equal(b.Bytes(), []byte("abc")) {
		t.Fatalf("Bytes leaked internal storage: %q", b.Bytes())
	}
}

func TestSliceClipsToBounds(t *testing.T) {
	b := bytebuf.New(bytebuf.Expected, []byte("0123456789"))
	cases := []struct {
		lo, hi int
		want   string
	}{
		{0, 3, "012"},
		{-5, 2, "01"},
		{8, 40, "89"},
		{-1, 100, "0123456789"},
		{5, 5, ""},
		{7, 3, ""},
		{12, 20, ""},
	}
	for _, tc := range cases {
		if got := string(b.Slice(tc.lo, tc.hi)); got != tc.want {
			t.Errorf("Slice(%d, %d) = %q, want %q", tc.lo, tc.hi, got, tc.want)
		}
	}
}

func TestEqualIgnoresLabel(t *testing.T) {
	a := bytebuf.New(bytebuf.Expected, []byte{0x00, 0xff})
	b := bytebuf.New(bytebuf.Actual, []byte{0x00, 0xff})
	if !a.Equal(b) {
		t.Fatal("identical contents with different labels should be equal")
	}
	if a.Equal(bytebuf.New(bytebuf.Actual, []byte{0x00})) {
		t.Fatal("prefix should not be equal")
	}
}

func TestZeroValue(t *testing.T) {
	var b bytebuf.Buffer
	if b.Len() != 0 || b.Label() != "" {
		t.Fatalf("unexpected zero value: len=%d label=%q", b.Len(), b.Label())
	}
	if !b.Equal(bytebuf.New(bytebuf.Expected, nil)) {
		t.Fatal("zero value should equal empty buffer")
	}
}

func TestCount(t *testing.T) {
	b := bytebuf.New(bytebuf.Expected, []byte("one\ntwo\nthree\n"))
	if got := b.Count('\n'); got != 3 {
		t.Fatalf("Count = %d, want 3", got)
	}
}

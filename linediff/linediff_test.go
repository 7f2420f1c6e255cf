package linediff_test

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/lattice-substrate/refdoc-parity/bytebuf"
	"github.com/lattice-substrate/refdoc-parity/linediff"
)

func view(label bytebuf.Label, s string) linediff.LineView {
	return linediff.Split(bytebuf.New(label, []byte(s)))
}

func TestSplitConvention(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", []string{""}},
		{"\n", []string{"", ""}},
		{"abc", []string{"abc"}},
		{"abc\ndef\n", []string{"abc", "def", ""}},
		{"one\ntwo\nthree\n", []string{"one", "two", "three", ""}},
		{"a\r\nb", []string{"a\r", "b"}},
	}
	for _, tc := range cases {
		got := view(bytebuf.Expected, tc.in)
		if !reflect.DeepEqual(got.Lines(), tc.want) {
			t.Errorf("Split(%q) = %q, want %q", tc.in, got.Lines(), tc.want)
		}
		if got.Len() != len(tc.want) {
			t.Errorf("Split(%q).Len() = %d, want %d", tc.in, got.Len(), len(tc.want))
		}
	}
}

func TestSplitLossyDecode(t *testing.T) {
	in := []byte{'o', 'k', 0xff, '\n', 0xc3, '\n', 0xe2, 0x94, 0x80, '\n', 0xe2, 0x94, 'A'}
	got := linediff.Split(bytebuf.New(bytebuf.Actual, in)).Lines()
	want := []string{"ok\uFFFD", "\uFFFD", "\u2500", "\uFFFDA"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSplitBinaryNeverFails(t *testing.T) {
	in := make([]byte, 256)
	for i := range in {
		in[i] = byte(i)
	}
	v := linediff.Split(bytebuf.New(bytebuf.Actual, in))
	if v.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", v.Len())
	}
	if v.Label() != bytebuf.Actual {
		t.Fatalf("label = %q", v.Label())
	}
}

func TestBuildIdentical(t *testing.T) {
	r := linediff.Build(view(bytebuf.Expected, "abc\ndef\n"), view(bytebuf.Actual, "abc\ndef\n"))
	if r.Delta != 0 || len(r.Overflow) != 0 {
		t.Fatalf("delta=%d overflow=%q", r.Delta, r.Overflow)
	}
	if len(r.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(r.Entries))
	}
	for _, e := range r.Entries {
		if e.Expected != e.Actual {
			t.Fatalf("entry %d differs: %+v", e.Index, e)
		}
	}
}

func TestBuildTruncatedActual(t *testing.T) {
	r := linediff.Build(view(bytebuf.Expected, "one\ntwo\nthree\n"), view(bytebuf.Actual, "one\ntwo\n"))
	if r.TotalExpected != 4 || r.TotalActual != 3 || r.Delta != 1 {
		t.Fatalf("totals = %d/%d delta %d", r.TotalExpected, r.TotalActual, r.Delta)
	}
	if !reflect.DeepEqual(r.Overflow, []string{""}) {
		t.Fatalf("overflow = %q", r.Overflow)
	}
	last := r.Entries[3]
	if last.Actual != linediff.Missing || !last.Expected.Present || last.Expected.Text != "" {
		t.Fatalf("entry 3 = %+v", last)
	}
	if r.Entries[2].Expected.Text != "three" || r.Entries[2].Actual.Text != "" {
		t.Fatalf("entry 2 = %+v", r.Entries[2])
	}
}

func TestBuildActualLongerHasNoOverflow(t *testing.T) {
	r := linediff.Build(view(bytebuf.Expected, "a"), view(bytebuf.Actual, "a\nb\nc"))
	if r.Delta != -2 || r.Overflow != nil {
		t.Fatalf("delta=%d overflow=%q", r.Delta, r.Overflow)
	}
	if r.Entries[1].Expected != linediff.Missing || r.Entries[1].Actual.Text != "b" {
		t.Fatalf("entry 1 = %+v", r.Entries[1])
	}
}

func TestBuildWindowsAreBounded(t *testing.T) {
	var long strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&long, "line %d\n", i)
	}
	r := linediff.Build(view(bytebuf.Expected, long.String()), view(bytebuf.Actual, "line 0\nline 1\n"))
	if len(r.Entries) != linediff.PreviewLines {
		t.Fatalf("entries = %d", len(r.Entries))
	}
	if len(r.Overflow) != linediff.OverflowLines {
		t.Fatalf("overflow = %d", len(r.Overflow))
	}
	if r.Overflow[0] != "line 2" || r.Overflow[9] != "line 11" {
		t.Fatalf("overflow = %q", r.Overflow)
	}
	if r.TotalExpected != 41 || r.TotalActual != 3 {
		t.Fatalf("totals = %d/%d", r.TotalExpected, r.TotalActual)
	}
}

func TestBuildOverflowLengthProperty(t *testing.T) {
	for ne := 0; ne < 25; ne++ {
		for na := 0; na < 25; na++ {
			e := view(bytebuf.Expected, strings.Repeat("x\n", ne))
			a := view(bytebuf.Actual, strings.Repeat("y\n", na))
			r := linediff.Build(e, a)
			want := 0
			if r.TotalActual < r.TotalExpected {
				want = min(linediff.OverflowLines, r.TotalExpected-r.TotalActual)
			}
			if len(r.Overflow) != want {
				t.Fatalf("ne=%d na=%d overflow=%d want %d", ne, na, len(r.Overflow), want)
			}
			if len(r.Entries) != min(linediff.PreviewLines, max(e.Len(), a.Len())) {
				t.Fatalf("ne=%d na=%d entries=%d", ne, na, len(r.Entries))
			}
		}
	}
}

func TestLineOutOfRange(t *testing.T) {
	v := view(bytebuf.Expected, "a")
	if _, ok := v.Line(-1); ok {
		t.Fatal("negative index reported present")
	}
	if _, ok := v.Line(1); ok {
		t.Fatal("index past end reported present")
	}
}

// Package linediff produces a bounded, positional, line-oriented preview of
// two buffers. It is a diagnostic aid: lines are paired by index only, with
// no alignment or resynchronization.
//
// Splitting never fails. Bytes that are not valid UTF-8 are replaced with
// U+FFFD, one replacement per maximal invalid subsequence, before the text
// is split on '\n'. A trailing '\n' yields a final empty line, so a buffer with n
// terminators always has n+1 lines and an empty buffer has one empty line.
package linediff

import (
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/lattice-substrate/refdoc-parity/bytebuf"
)

const (
	// PreviewLines bounds Report.Entries.
	PreviewLines = 10
	// OverflowLines bounds Report.Overflow.
	OverflowLines = 10
)

// Placeholder replaces undecodable bytes.
const Placeholder = '\uFFFD'

// LineView is the ordered line sequence derived from one buffer.
type LineView struct {
	label bytebuf.Label
	lines []string
}

// Split decodes buf lossily and splits it on '\n'.
func Split(buf bytebuf.Buffer) LineView {
	return LineView{label: buf.Label(), lines: strings.Split(decodeLossy(buf.Bytes()), "\n")}
}

// Label returns the label of the buffer the view was derived from.
func (v LineView) Label() bytebuf.Label {
	return v.label
}

// Len returns the number of lines.
func (v LineView) Len() int {
	return len(v.lines)
}

// Line returns line i and whether it exists.
func (v LineView) Line(i int) (string, bool) {
	if i < 0 || i >= len(v.lines) {
		return "", false
	}
	return v.lines[i], true
}

// Lines returns a copy of all lines.
func (v LineView) Lines() []string {
	return append([]string(nil), v.lines...)
}

func decodeLossy(b []byte) string {
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), string(Placeholder))
	}
	return string(out)
}

// Line is one side of an Entry. The zero value is Missing.
type Line struct {
	Text    string
	Present bool
}

// Missing is the Line used when an index is past the end of a view.
var Missing = Line{}

// Entry pairs the lines at one index.
type Entry struct {
	Index    int
	Expected Line
	Actual   Line
}

// Report is the bounded positional preview of two line views.
type Report struct {
	// Entries pairs lines 0..min(PreviewLines, max(len(e), len(a))).
	Entries []Entry
	// TotalExpected and TotalActual are the full line counts.
	TotalExpected int
	TotalActual   int
	// Delta is TotalExpected - TotalActual.
	Delta int
	// Overflow holds up to OverflowLines expected lines starting at index
	// TotalActual. It is empty unless the actual view is shorter.
	Overflow []string
}

// Build pairs the first PreviewLines lines of expected and actual by index
// and collects the expected lines that follow the end of actual.
func Build(expected, actual LineView) Report {
	r := Report{
		TotalExpected: expected.Len(),
		TotalActual:   actual.Len(),
		Delta:         expected.Len() - actual.Len(),
	}

	n := max(expected.Len(), actual.Len())
	if n > PreviewLines {
		n = PreviewLines
	}
	r.Entries = make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		r.Entries = append(r.Entries, Entry{
			Index:    i,
			Expected: lineAt(expected, i),
			Actual:   lineAt(actual, i),
		})
	}

	if r.TotalActual < r.TotalExpected {
		end := min(r.TotalActual+OverflowLines, r.TotalExpected)
		r.Overflow = append([]string(nil), expected.lines[r.TotalActual:end]...)
	}
	return r
}

func lineAt(v LineView, i int) Line {
	s, ok := v.Line(i)
	if !ok {
		return Missing
	}
	return Line{Text: s, Present: true}
}

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/lattice-substrate/refdoc-parity/compare"
	"github.com/lattice-substrate/refdoc-parity/linediff"
)

var rule = strings.Repeat("=", 80)

type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	if _, err := fmt.Fprintf(t.w, format, args...); err != nil {
		t.err = fmt.Errorf("write stream: %w", err)
	}
}

func (t *textWriter) banner(title string) {
	t.printf("%s\n%s\n%s\n", rule, title, rule)
}

// WriteVerify renders the verifier's pass/fail report.
func WriteVerify(w io.Writer, s Summary) error {
	t := &textWriter{w: w}
	t.banner("REFERENCE DOCUMENT VERIFICATION")
	writeSizes(t, s)

	if s.Passed() {
		t.printf("\n")
		t.banner("PASS: output matches the reference exactly")
		return t.err
	}

	t.printf("\n")
	t.banner("FAIL: output does not match the reference")
	writeDifference(t, s.Result)
	writeOverflow(t, s.Lines)
	writeSaved(t, s)
	if s.Expected.Path != "" && s.Actual.Path != "" {
		t.printf("\nrun: diff %s %s\n", s.Expected.Path, s.Actual.Path)
	}
	return t.err
}

// WriteCompare renders the generator's diagnostic comparison. It reports
// the same data whether or not the inputs match.
func WriteCompare(w io.Writer, s Summary) error {
	t := &textWriter{w: w}
	writeSizes(t, s)
	t.printf("  difference: %d lines missing\n", s.Expected.Newlines-s.Actual.Newlines)
	if !s.Passed() {
		writeDifference(t, s.Result)
	}

	t.printf("\n")
	t.banner("LINE-BY-LINE COMPARISON")
	for _, e := range s.Lines.Entries {
		t.printf("\nline %d:\n", e.Index+1)
		t.printf("  ORIG: %s\n", previewLine(e.Expected))
		t.printf("  CURR: %s\n", previewLine(e.Actual))
	}

	t.printf("\n")
	t.banner("WHERE CONTENT ENDS")
	t.printf("\ncurrent output ends at line %d\n", s.Lines.TotalActual)
	writeOverflow(t, s.Lines)

	t.printf("\n")
	t.banner("FILES SAVED")
	writePathList(t, s)
	t.printf("%s\n", rule)
	t.printf("\nto regenerate the snapshot, run: refdoc-gen --write\n")
	return t.err
}

func writeSizes(t *textWriter, s Summary) {
	t.printf("\n  expected: %6d bytes, %4d newlines  sha256=%s\n", s.Expected.Bytes, s.Expected.Newlines, s.Expected.SHA256)
	t.printf("  actual:   %6d bytes, %4d newlines  sha256=%s\n", s.Actual.Bytes, s.Actual.Newlines, s.Actual.SHA256)
}

func writeDifference(t *textWriter, r compare.Result) {
	switch r.Kind {
	case compare.Mismatch:
		t.printf("\nfirst difference at byte %d:\n", r.Offset)
		t.printf("  expected: %q\n", r.Expected.Bytes)
		t.printf("  actual:   %q\n", r.Actual.Bytes)
	case compare.LengthMismatch:
		longer := "expected"
		d := r.Delta
		if d < 0 {
			longer = "actual"
			d = -d
		}
		t.printf("\ncontent matches but length differs by %d bytes (%s is longer)\n", d, longer)
	}
}

func writeOverflow(t *textWriter, l linediff.Report) {
	if len(l.Overflow) == 0 {
		return
	}
	t.printf("original has %d more lines\n", l.Delta)
	t.printf("\nnext lines in original (after current ends):\n")
	for i, line := range l.Overflow {
		t.printf("  line %d: %q\n", l.TotalActual+i+1, truncate(line, OverflowWidth))
	}
}

func writeSaved(t *textWriter, s Summary) {
	if s.Expected.Path == "" && s.Actual.Path == "" {
		return
	}
	t.printf("\nsaved files:\n")
	writePathList(t, s)
}

func writePathList(t *textWriter, s Summary) {
	width := max(len(s.Expected.Path), len(s.Actual.Path), len(s.SourcePath))
	if s.SourcePath != "" {
		t.printf("  %-*s - reference source\n", width, s.SourcePath)
	}
	if s.Expected.Path != "" {
		t.printf("  %-*s - expected output\n", width, s.Expected.Path)
	}
	if s.Actual.Path != "" {
		t.printf("  %-*s - actual output\n", width, s.Actual.Path)
	}
}

func previewLine(l linediff.Line) string {
	if !l.Present {
		return "[MISSING]"
	}
	return fmt.Sprintf("%q", truncate(l.Text, PreviewWidth))
}

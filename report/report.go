// Package report assembles the structured outcome of a parity run and renders
// it. Building and rendering are separate so the comparison engine never
// formats output and the rendered text can be tested against fixed data.
package report

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/lattice-substrate/refdoc-parity/bytebuf"
	"github.com/lattice-substrate/refdoc-parity/compare"
	"github.com/lattice-substrate/refdoc-parity/linediff"
)

// Mode names the procedure that produced a Summary.
type Mode string

const (
	// ModeVerify is the strict pass/fail check.
	ModeVerify Mode = "verify"
	// ModeCompare is the generator's diagnostic comparison.
	ModeCompare Mode = "compare"
)

// Preview truncation, in runes.
const (
	PreviewWidth  = 100
	OverflowWidth = 80
)

// Side describes one input buffer.
type Side struct {
	Label    bytebuf.Label
	Bytes    int
	Newlines int
	SHA256   string
	// Path is where the buffer was exported; empty if it was not.
	Path string
}

// Summary is everything a renderer needs.
type Summary struct {
	RunID      string
	Mode       Mode
	SourceURL  string
	SourcePath string
	Expected   Side
	Actual     Side
	Result     compare.Result
	Lines      linediff.Report
}

// Paths locates exported artifacts for a Summary.
type Paths struct {
	Source   string
	Expected string
	Actual   string
}

// New assembles a Summary from the comparison and line report of expected
// and actual.
func New(runID string, mode Mode, sourceURL string, expected, actual bytebuf.Buffer, res compare.Result, lines linediff.Report, paths Paths) Summary {
	return Summary{
		RunID:      runID,
		Mode:       mode,
		SourceURL:  sourceURL,
		SourcePath: paths.Source,
		Expected:   describe(expected, paths.Expected),
		Actual:     describe(actual, paths.Actual),
		Result:     res,
		Lines:      lines,
	}
}

func describe(b bytebuf.Buffer, path string) Side {
	sum := sha256.Sum256(b.Bytes())
	return Side{
		Label:    b.Label(),
		Bytes:    b.Len(),
		Newlines: b.Count('\n'),
		SHA256:   hex.EncodeToString(sum[:]),
		Path:     path,
	}
}

// Passed reports whether the run matched exactly.
func (s Summary) Passed() bool {
	return s.Result.OK()
}

func truncate(s string, width int) string {
	n := 0
	for i := range s {
		if n == width {
			return s[:i]
		}
		n++
	}
	return s
}

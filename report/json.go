package report

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"

	"github.com/lattice-substrate/refdoc-parity/compare"
)

// SchemaVersion identifies the JSON summary layout.
const SchemaVersion = "parity.v1"

type jsonSummary struct {
	SchemaVersion string       `json:"schema_version"`
	RunID         string       `json:"run_id"`
	Mode          string       `json:"mode"`
	SourceURL     string       `json:"source_url"`
	SourcePath    string       `json:"source_path,omitempty"`
	Outcome       string       `json:"outcome"`
	Passed        bool         `json:"passed"`
	Expected      jsonSide     `json:"expected"`
	Actual        jsonSide     `json:"actual"`
	Difference    *jsonDiff    `json:"difference,omitempty"`
	LengthDelta   *int         `json:"length_delta,omitempty"`
	Lines         jsonLineDiff `json:"lines"`
}

type jsonSide struct {
	Bytes    int    `json:"bytes"`
	Newlines int    `json:"newlines"`
	SHA256   string `json:"sha256"`
	Path     string `json:"path,omitempty"`
}

type jsonDiff struct {
	Offset             int    `json:"offset"`
	ExpectedStart      int    `json:"expected_start"`
	ExpectedContextHex string `json:"expected_context_hex"`
	ActualStart        int    `json:"actual_start"`
	ActualContextHex   string `json:"actual_context_hex"`
}

type jsonLineDiff struct {
	TotalExpected int             `json:"total_expected"`
	TotalActual   int             `json:"total_actual"`
	Delta         int             `json:"delta"`
	Entries       []jsonLineEntry `json:"entries"`
	Overflow      []string        `json:"overflow"`
}

// A nil side means the line is missing.
type jsonLineEntry struct {
	Index    int     `json:"index"`
	Expected *string `json:"expected"`
	Actual   *string `json:"actual"`
}

// MarshalCanonical returns the summary as RFC 8785 canonical JSON, so two
// summaries of identical runs are byte-identical.
func MarshalCanonical(s Summary) ([]byte, error) {
	js := jsonSummary{
		SchemaVersion: SchemaVersion,
		RunID:         s.RunID,
		Mode:          string(s.Mode),
		SourceURL:     s.SourceURL,
		SourcePath:    s.SourcePath,
		Outcome:       s.Result.Kind.String(),
		Passed:        s.Passed(),
		Expected:      jsonSide{Bytes: s.Expected.Bytes, Newlines: s.Expected.Newlines, SHA256: s.Expected.SHA256, Path: s.Expected.Path},
		Actual:        jsonSide{Bytes: s.Actual.Bytes, Newlines: s.Actual.Newlines, SHA256: s.Actual.SHA256, Path: s.Actual.Path},
		Lines: jsonLineDiff{
			TotalExpected: s.Lines.TotalExpected,
			TotalActual:   s.Lines.TotalActual,
			Delta:         s.Lines.Delta,
			Entries:       make([]jsonLineEntry, 0, len(s.Lines.Entries)),
			Overflow:      append([]string{}, s.Lines.Overflow...),
		},
	}
	switch s.Result.Kind {
	case compare.Mismatch:
		js.Difference = &jsonDiff{
			Offset:             s.Result.Offset,
			ExpectedStart:      s.Result.Expected.Start,
			ExpectedContextHex: hex.EncodeToString(s.Result.Expected.Bytes),
			ActualStart:        s.Result.Actual.Start,
			ActualContextHex:   hex.EncodeToString(s.Result.Actual.Bytes),
		}
	case compare.LengthMismatch:
		d := s.Result.Delta
		js.LengthDelta = &d
	}
	for _, e := range s.Lines.Entries {
		je := jsonLineEntry{Index: e.Index}
		if e.Expected.Present {
			text := e.Expected.Text
			je.Expected = &text
		}
		if e.Actual.Present {
			text := e.Actual.Text
			je.Actual = &text
		}
		js.Lines.Entries = append(js.Lines.Entries, je)
	}

	raw, err := json.Marshal(js)
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}
	canonical, err := jsoncanonicalizer.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize summary: %w", err)
	}
	return canonical, nil
}

// WriteJSON writes the canonical JSON summary followed by a newline.
func WriteJSON(w io.Writer, s Summary) error {
	data, err := MarshalCanonical(s)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write stream: %w", err)
	}
	return nil
}

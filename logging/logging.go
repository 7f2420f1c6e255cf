// Package logging builds the stderr progress logger shared by the CLIs.
//
// Stdout is reserved for the report. Progress lines go to stderr through
// log/slog: colourized with tint when stderr is a terminal, plain
// key=value text otherwise. Timestamps are dropped in both cases.
package logging

import (
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Options configures New.
type Options struct {
	Verbose bool
	// Quiet suppresses everything below warnings.
	Quiet bool
	// RunID is attached to every record; a random one is generated when
	// empty.
	RunID string
}

// New returns a logger writing to w and the run id it carries.
func New(w io.Writer, opts Options) (*slog.Logger, string) {
	level := slog.LevelInfo
	switch {
	case opts.Verbose:
		level = slog.LevelDebug
	case opts.Quiet:
		level = slog.LevelWarn
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	var h slog.Handler
	if isTerminal(w) {
		h = tint.NewHandler(w, &tint.Options{
			Level:   level,
			NoColor: runtime.GOOS == "windows",
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.Attr{}
				}
				return a
			},
		})
	} else {
		h = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey && len(groups) == 0 {
					return slog.Attr{}
				}
				return a
			},
		})
	}
	return slog.New(h).With(slog.String("run_id", runID)), runID
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
